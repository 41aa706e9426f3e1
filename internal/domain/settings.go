package domain

// Settings is the guild-level routing configuration written by setup commands.
// Empty values mean unconfigured.
type Settings struct {
	PanelChannelID      string   `json:"panelChannelId"`
	CategoryID          string   `json:"categoryId"`
	AllowedRoles        []string `json:"allowedRoles"`
	FeedbackChannelID   string   `json:"feedbackChannelId"`
	TicketLogChannelID  string   `json:"ticketLogChannelId"`
	RatingAllowedRoleID string   `json:"ratingAllowedRoleId"`
}

// Clone returns a deep copy safe to hand out across goroutines.
func (s Settings) Clone() Settings {
	out := s
	out.AllowedRoles = append([]string{}, s.AllowedRoles...)
	return out
}
