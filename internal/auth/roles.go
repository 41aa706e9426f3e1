package auth

import "github.com/spec-kit/ticket-bot/internal/domain"

// IsStaff reports whether the actor holds any role in settings.AllowedRoles.
// Evaluated fresh on every call; roles and settings change at runtime.
func IsStaff(actor domain.Actor, settings domain.Settings) bool {
	for _, roleID := range settings.AllowedRoles {
		if actor.HasRole(roleID) {
			return true
		}
	}
	return false
}

// CanRate reports whether the actor holds the configured rating role. An
// unconfigured rating role admits nobody.
func CanRate(actor domain.Actor, settings domain.Settings) bool {
	return actor.HasRole(settings.RatingAllowedRoleID)
}

// CanConfigure gates the setup commands.
func CanConfigure(actor domain.Actor) bool {
	return actor.CanManageGuild
}
