package discord

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/spec-kit/ticket-bot/internal/platform"
)

// Notifier is a platform.NotificationSink over channel messages and DMs.
type Notifier struct {
	rest REST
}

// NewNotifier constructs the notifier.
func NewNotifier(rest REST) *Notifier {
	return &Notifier{rest: rest}
}

func (n *Notifier) SendToChannel(ctx context.Context, channelID string, msg platform.Message) error {
	_, err := n.rest.ChannelMessageSendComplex(channelID, toMessageSend(msg), discordgo.WithContext(ctx))
	return err
}

// SendDirect opens (or reuses) the DM channel with userID and posts msg.
func (n *Notifier) SendDirect(ctx context.Context, userID string, msg platform.Message) error {
	dm, err := n.rest.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return err
	}
	_, err = n.rest.ChannelMessageSendComplex(dm.ID, toMessageSend(msg), discordgo.WithContext(ctx))
	return err
}

func toMessageSend(msg platform.Message) *discordgo.MessageSend {
	send := &discordgo.MessageSend{
		Content:    msg.Content,
		Components: toComponents(msg.Controls),
	}
	if msg.Embed != nil {
		send.Embeds = []*discordgo.MessageEmbed{toEmbed(msg.Embed)}
	}
	return send
}

func toEmbed(e *platform.Embed) *discordgo.MessageEmbed {
	if e == nil {
		return nil
	}
	embed := &discordgo.MessageEmbed{
		Title:       e.Title,
		Description: e.Description,
		Color:       e.Color,
	}
	for _, f := range e.Fields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: f.Inline,
		})
	}
	if !e.Timestamp.IsZero() {
		embed.Timestamp = e.Timestamp.UTC().Format(time.RFC3339)
	}
	return embed
}

func toComponents(controls []platform.Control) []discordgo.MessageComponent {
	if len(controls) == 0 {
		return nil
	}
	buttons := make([]discordgo.MessageComponent, 0, len(controls))
	for _, c := range controls {
		buttons = append(buttons, discordgo.Button{
			Label:    c.Label,
			CustomID: c.ID,
			Style:    buttonStyle(c.Style),
		})
	}
	return []discordgo.MessageComponent{discordgo.ActionsRow{Components: buttons}}
}

func buttonStyle(s platform.ControlStyle) discordgo.ButtonStyle {
	switch s {
	case platform.ControlSuccess:
		return discordgo.SuccessButton
	case platform.ControlDanger:
		return discordgo.DangerButton
	default:
		return discordgo.PrimaryButton
	}
}
