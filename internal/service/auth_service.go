package service

import (
	"context"
	"time"

	"github.com/spec-kit/ticket-bot/internal/auth"
	"github.com/spec-kit/ticket-bot/internal/config"
	apperrors "github.com/spec-kit/ticket-bot/pkg/util/errorutil"
)

// AuthService coordinates the ops API admin login.
type AuthService struct {
	tokenMgr     *auth.TokenManager
	passwordHash string
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, tokens *auth.TokenManager) *AuthService {
	return &AuthService{
		tokenMgr:     tokens,
		passwordHash: cfg.AdminPasswordHash,
	}
}

// LoginAdmin exchanges the admin password for a bearer token.
func (s *AuthService) LoginAdmin(_ context.Context, password string) (string, time.Time, error) {
	if password == "" {
		return "", time.Time{}, apperrors.NewValidationError("password is required", nil)
	}
	if err := auth.ComparePassword(s.passwordHash, password); err != nil {
		return "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(auth.AdminSubject)
	if err != nil {
		return "", time.Time{}, apperrors.NewInternalError(err)
	}
	return token, exp, nil
}
