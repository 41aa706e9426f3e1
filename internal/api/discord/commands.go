package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Slash command names.
const (
	CommandSetupPanel          = "setup_ticket_panel"
	CommandSetFeedbackChannel  = "set_feedback_channel"
	CommandSetTicketLogChannel = "set_ticket_log_channel"
	CommandSetRatingRole       = "set_rating_role"
	CommandRate                = "rate"
)

// CommandSyncer registers application commands.
type CommandSyncer interface {
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

// Commands returns the guild slash commands. Setup commands default to members
// with Manage Server.
func Commands(brand string, minScore, maxScore int) []*discordgo.ApplicationCommand {
	manageGuild := int64(discordgo.PermissionManageServer)
	textChannels := []discordgo.ChannelType{discordgo.ChannelTypeGuildText}
	minValue := float64(minScore)

	return []*discordgo.ApplicationCommand{
		{
			Name:                     CommandSetupPanel,
			Description:              "Set up the ticket panel",
			DefaultMemberPermissions: &manageGuild,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionChannel, Name: "panel_channel", Description: "Post channel", Required: true, ChannelTypes: textChannels},
				{Type: discordgo.ApplicationCommandOptionChannel, Name: "category", Description: "Ticket category", Required: true, ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildCategory}},
				{Type: discordgo.ApplicationCommandOptionRole, Name: "role", Description: "Staff role", Required: true},
			},
		},
		{
			Name:                     CommandSetFeedbackChannel,
			Description:              "Set the feedback logging channel",
			DefaultMemberPermissions: &manageGuild,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionChannel, Name: "channel", Description: "Feedback channel", Required: true, ChannelTypes: textChannels},
			},
		},
		{
			Name:                     CommandSetTicketLogChannel,
			Description:              "Set the ticket log channel",
			DefaultMemberPermissions: &manageGuild,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionChannel, Name: "channel", Description: "Log channel", Required: true, ChannelTypes: textChannels},
			},
		},
		{
			Name:                     CommandSetRatingRole,
			Description:              "Set who can use /rate",
			DefaultMemberPermissions: &manageGuild,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionRole, Name: "role", Description: "Allowed role", Required: true},
			},
		},
		{
			Name:        CommandRate,
			Description: "Rate the " + brand + " service",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "score",
					Description: fmt.Sprintf("Score %d–%d", minScore, maxScore),
					Required:    true,
					MinValue:    &minValue,
					MaxValue:    float64(maxScore),
				},
				{Type: discordgo.ApplicationCommandOptionString, Name: "feedback", Description: "Feedback", Required: true, MaxLength: 1024},
			},
		},
	}
}

// Sync replaces the guild's commands with commands.
func Sync(syncer CommandSyncer, appID, guildID string, commands []*discordgo.ApplicationCommand) ([]*discordgo.ApplicationCommand, error) {
	if appID == "" {
		return nil, fmt.Errorf("application id is required")
	}
	registered, err := syncer.ApplicationCommandBulkOverwrite(appID, guildID, commands)
	if err != nil {
		return nil, fmt.Errorf("sync commands: %w", err)
	}
	return registered, nil
}
