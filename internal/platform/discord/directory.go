package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/spec-kit/ticket-bot/internal/platform"
)

// Directory is a platform.ChannelDirectory scoped to one guild.
type Directory struct {
	rest    REST
	guildID string
}

// NewDirectory constructs the directory.
func NewDirectory(rest REST, guildID string) *Directory {
	return &Directory{rest: rest, guildID: guildID}
}

// CreateChannel creates a text channel with its topic and overwrites in one call.
func (d *Directory) CreateChannel(ctx context.Context, spec platform.ChannelSpec) (*platform.Channel, error) {
	ch, err := d.rest.GuildChannelCreateComplex(d.guildID, discordgo.GuildChannelCreateData{
		Name:                 spec.Name,
		Type:                 discordgo.ChannelTypeGuildText,
		Topic:                spec.Marker,
		ParentID:             spec.ParentID,
		PermissionOverwrites: d.overwrites(spec.Visibility),
	}, discordgo.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	out := toChannel(ch)
	return &out, nil
}

// ListChannels returns the guild's text channels under parentID.
func (d *Directory) ListChannels(ctx context.Context, parentID string) ([]platform.Channel, error) {
	channels, err := d.rest.GuildChannels(d.guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	out := make([]platform.Channel, 0, len(channels))
	for _, ch := range channels {
		if ch.Type != discordgo.ChannelTypeGuildText || ch.ParentID != parentID {
			continue
		}
		out = append(out, toChannel(ch))
	}
	return out, nil
}

// DeleteChannel treats an already-deleted channel as success.
func (d *Directory) DeleteChannel(ctx context.Context, channelID string) error {
	_, err := d.rest.ChannelDelete(channelID, discordgo.WithContext(ctx))
	if err != nil && !IsNotFound(err) {
		return err
	}
	return nil
}

// FetchChannel returns nil without error when the channel is gone or is not
// text based.
func (d *Directory) FetchChannel(ctx context.Context, channelID string) (*platform.Channel, error) {
	if channelID == "" {
		return nil, nil
	}
	ch, err := d.rest.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if !isTextBased(ch.Type) {
		return nil, nil
	}
	out := toChannel(ch)
	return &out, nil
}

func (d *Directory) overwrites(rules []platform.VisibilityRule) []*discordgo.PermissionOverwrite {
	out := make([]*discordgo.PermissionOverwrite, 0, len(rules))
	for _, rule := range rules {
		ow := &discordgo.PermissionOverwrite{
			ID:    rule.SubjectID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: permissionBits(rule.Allow),
			Deny:  permissionBits(rule.Deny),
		}
		switch rule.Kind {
		case platform.SubjectMember:
			ow.Type = discordgo.PermissionOverwriteTypeMember
		case platform.SubjectEveryone:
			// @everyone shares the guild's ID.
			ow.ID = d.guildID
		}
		out = append(out, ow)
	}
	return out
}

func permissionBits(p platform.Permission) int64 {
	var bits int64
	if p&platform.PermissionView != 0 {
		bits |= discordgo.PermissionViewChannel
	}
	if p&platform.PermissionSend != 0 {
		bits |= discordgo.PermissionSendMessages
	}
	return bits
}

func isTextBased(t discordgo.ChannelType) bool {
	switch t {
	case discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews,
		discordgo.ChannelTypeGuildPublicThread, discordgo.ChannelTypeGuildPrivateThread,
		discordgo.ChannelTypeDM:
		return true
	}
	return false
}

func toChannel(ch *discordgo.Channel) platform.Channel {
	return platform.Channel{
		ID:       ch.ID,
		Name:     ch.Name,
		ParentID: ch.ParentID,
		Topic:    ch.Topic,
	}
}
