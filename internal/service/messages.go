package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/platform"
)

// Control IDs carried by panel and ticket buttons.
const (
	ControlOpenTicket  = "open_ticket"
	ControlClaimTicket = "claim_ticket"
	ControlCloseTicket = "close_ticket_button"
)

const embedColor = 0x2C3E50

func panelMessage(brand string) platform.Message {
	return platform.Message{
		Embed: &platform.Embed{
			Title:       "📩 " + brand,
			Description: "Click below to open a ticket.",
			Color:       embedColor,
		},
		Controls: []platform.Control{
			{ID: ControlOpenTicket, Label: "Open Ticket", Style: platform.ControlPrimary},
		},
	}
}

func ticketEntryMessage(settings domain.Settings) platform.Message {
	mentions := make([]string, 0, len(settings.AllowedRoles))
	for _, roleID := range settings.AllowedRoles {
		mentions = append(mentions, platform.RoleMention(roleID))
	}
	return platform.Message{
		Content: strings.Join(mentions, " "),
		Embed: &platform.Embed{
			Title:       "🎟️ Ticket Created",
			Description: "A staff member will be with you shortly.",
			Color:       embedColor,
		},
		Controls: []platform.Control{
			{ID: ControlClaimTicket, Label: "🎫 Claim", Style: platform.ControlSuccess},
			{ID: ControlCloseTicket, Label: "❌ Close", Style: platform.ControlDanger},
		},
	}
}

func claimEmbed(staffID string) *platform.Embed {
	return &platform.Embed{
		Description: "🎟️ Ticket claimed by " + platform.Mention(staffID),
		Color:       embedColor,
	}
}

func ticketClosedDirect(brand string) platform.Message {
	return platform.Message{
		Embed: &platform.Embed{
			Title:       "📫 Ticket Closed",
			Description: fmt.Sprintf("Thanks for contacting %s!", brand),
			Color:       embedColor,
		},
	}
}

func closeLogMessage(ticket domain.Ticket, closedBy string, at time.Time) platform.Message {
	fields := []platform.EmbedField{
		{Name: "Closed By", Value: platform.Mention(closedBy), Inline: true},
		{Name: "User", Value: platform.Mention(ticket.RequesterID), Inline: true},
	}
	if ticket.ClaimedBy != nil {
		fields = append(fields, platform.EmbedField{Name: "Claimed By", Value: platform.Mention(*ticket.ClaimedBy), Inline: true})
	}
	fields = append(fields, platform.EmbedField{Name: "Channel", Value: ticket.ChannelName})
	return platform.Message{
		Embed: &platform.Embed{
			Title:     "📁 Ticket Closed",
			Color:     embedColor,
			Fields:    fields,
			Timestamp: at,
		},
	}
}

func ratingMessage(rating domain.Rating, at time.Time) platform.Message {
	return platform.Message{
		Embed: &platform.Embed{
			Title: "⭐ New Rating",
			Color: embedColor,
			Fields: []platform.EmbedField{
				{Name: "User", Value: platform.Mention(rating.RaterID), Inline: true},
				{Name: "Score", Value: strconv.Itoa(rating.Score) + "/" + strconv.Itoa(rating.MaxScore), Inline: true},
				{Name: "Feedback", Value: rating.Feedback},
			},
			Timestamp: at,
		},
	}
}

// ChannelName derives the ticket channel name from the requester's username.
// Discord channel names are lowercase and limited to letters, digits, '-' and '_'.
func ChannelName(actor domain.Actor) string {
	var b strings.Builder
	for _, r := range strings.ToLower(actor.Username) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '.':
			b.WriteRune('-')
		}
	}
	name := strings.Trim(b.String(), "-")
	if name == "" {
		name = actor.ID
	}
	const maxLen = 100 - len("ticket-")
	if len(name) > maxLen {
		name = name[:maxLen]
	}
	return "ticket-" + name
}
