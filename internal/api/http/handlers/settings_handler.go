package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-bot/internal/api/dto"
	"github.com/spec-kit/ticket-bot/internal/service"
	apperrors "github.com/spec-kit/ticket-bot/pkg/util/errorutil"
)

// SettingsHandler exposes the guild settings to operators.
type SettingsHandler struct {
	settings *service.SettingsService
}

// NewSettingsHandler constructs handler.
func NewSettingsHandler(settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Get handles GET /admin/settings.
func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": dto.FromSettings(h.settings.Current())})
}

// Put handles PUT /admin/settings.
func (h *SettingsHandler) Put(c *fiber.Ctx) error {
	var req dto.SettingsPayload
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	for _, role := range req.AllowedRoles {
		if strings.TrimSpace(role) == "" {
			return apperrors.NewValidationError("allowedRoles must not contain empty ids", nil)
		}
	}

	updated, err := h.settings.Replace(c.UserContext(), req.ToDomain())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromSettings(updated)})
}
