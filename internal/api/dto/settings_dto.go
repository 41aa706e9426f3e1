package dto

import "github.com/spec-kit/ticket-bot/internal/domain"

// SettingsPayload mirrors the persisted settings record.
type SettingsPayload struct {
	PanelChannelID      string   `json:"panelChannelId"`
	CategoryID          string   `json:"categoryId"`
	AllowedRoles        []string `json:"allowedRoles"`
	FeedbackChannelID   string   `json:"feedbackChannelId"`
	TicketLogChannelID  string   `json:"ticketLogChannelId"`
	RatingAllowedRoleID string   `json:"ratingAllowedRoleId"`
}

// FromSettings converts domain settings for output.
func FromSettings(s domain.Settings) SettingsPayload {
	roles := s.AllowedRoles
	if roles == nil {
		roles = []string{}
	}
	return SettingsPayload{
		PanelChannelID:      s.PanelChannelID,
		CategoryID:          s.CategoryID,
		AllowedRoles:        roles,
		FeedbackChannelID:   s.FeedbackChannelID,
		TicketLogChannelID:  s.TicketLogChannelID,
		RatingAllowedRoleID: s.RatingAllowedRoleID,
	}
}

// ToDomain converts the payload to settings.
func (p SettingsPayload) ToDomain() domain.Settings {
	return domain.Settings{
		PanelChannelID:      p.PanelChannelID,
		CategoryID:          p.CategoryID,
		AllowedRoles:        append([]string{}, p.AllowedRoles...),
		FeedbackChannelID:   p.FeedbackChannelID,
		TicketLogChannelID:  p.TicketLogChannelID,
		RatingAllowedRoleID: p.RatingAllowedRoleID,
	}
}
