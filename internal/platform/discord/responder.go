package discord

import (
	"context"
	"errors"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/spec-kit/ticket-bot/internal/platform"
)

// ErrAlreadyReplied is returned for a second reply to the same interaction.
var ErrAlreadyReplied = errors.New("interaction already acknowledged")

// Responder answers one interaction with a channel message.
type Responder struct {
	rest        REST
	interaction *discordgo.Interaction

	mu      sync.Mutex
	replied bool
}

// NewResponder binds a responder to interaction.
func NewResponder(rest REST, interaction *discordgo.Interaction) *Responder {
	return &Responder{rest: rest, interaction: interaction}
}

func (r *Responder) Reply(ctx context.Context, reply platform.Reply) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.replied {
		return ErrAlreadyReplied
	}

	data := &discordgo.InteractionResponseData{Content: reply.Content}
	if reply.Embed != nil {
		data.Embeds = []*discordgo.MessageEmbed{toEmbed(reply.Embed)}
	}
	if reply.Ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	err := r.rest.InteractionRespond(r.interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return err
	}
	r.replied = true
	return nil
}

func (r *Responder) Replied() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.replied
}
