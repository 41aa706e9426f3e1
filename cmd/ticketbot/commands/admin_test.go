package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-bot/internal/auth"
	"github.com/spec-kit/ticket-bot/internal/config"
)

func TestHashPassword(t *testing.T) {
	cmd := AdminCommands(&config.Config{})
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader("s3cret\n"))
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"hash-password", "--cost", "4"})

	require.NoError(t, cmd.Execute())
	hash := strings.TrimSpace(out.String())
	assert.NoError(t, auth.ComparePassword(hash, "s3cret"))
}

func TestHashPassword_Empty(t *testing.T) {
	cmd := AdminCommands(&config.Config{})
	cmd.SetIn(strings.NewReader("\n"))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"hash-password"})

	assert.Error(t, cmd.Execute())
}

func TestIssueToken(t *testing.T) {
	cfg := &config.Config{Auth: config.AuthConfig{JWTSecret: "k", AccessTokenTTLMinutes: 5}}
	cmd := AdminCommands(cfg)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"token"})

	require.NoError(t, cmd.Execute())
	token := strings.SplitN(out.String(), "\n", 2)[0]
	claims, err := auth.NewTokenManager("k", 5).ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, auth.AdminSubject, claims.Subject)
}
