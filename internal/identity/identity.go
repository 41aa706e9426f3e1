// Package identity binds requesters to their ticket channels.
//
// The channel topic is the durable marker: it is written in the same call that
// creates the channel and read back to resolve the requester at close time.
// Registry keeps an explicit in-process mapping alongside it, and Reservations
// serializes concurrent opens for the same requester.
package identity

import (
	"context"
	"strings"

	"github.com/spec-kit/ticket-bot/internal/platform"
	apperrors "github.com/spec-kit/ticket-bot/pkg/util/errorutil"
)

// Resolver reads and writes identity markers through a ChannelDirectory.
type Resolver struct {
	directory platform.ChannelDirectory
}

// NewResolver constructs a resolver.
func NewResolver(directory platform.ChannelDirectory) *Resolver {
	return &Resolver{directory: directory}
}

// FindOpenTicket scans categoryID for a channel marked with requesterID.
func (r *Resolver) FindOpenTicket(ctx context.Context, requesterID, categoryID string) (*platform.Channel, error) {
	channels, err := r.directory.ListChannels(ctx, categoryID)
	if err != nil {
		return nil, apperrors.NewTransportFailure("list channels", err)
	}
	for i := range channels {
		if channels[i].ParentID == categoryID && markerOf(&channels[i]) == requesterID {
			ch := channels[i]
			return &ch, nil
		}
	}
	return nil, nil
}

// Bind writes requesterID as the marker of a channel about to be created.
func Bind(spec *platform.ChannelSpec, requesterID string) {
	spec.Marker = requesterID
}

// ResolveRequester reads the marker back from ch.
func ResolveRequester(ch *platform.Channel) (string, error) {
	if ch == nil {
		return "", apperrors.NewUnboundChannel("")
	}
	requesterID := markerOf(ch)
	if requesterID == "" {
		return "", apperrors.NewUnboundChannel(ch.ID)
	}
	return requesterID, nil
}

// Lookup fetches channelID and resolves its requester. A missing channel is
// reported as unbound.
func (r *Resolver) Lookup(ctx context.Context, channelID string) (*platform.Channel, string, error) {
	ch, err := r.directory.FetchChannel(ctx, channelID)
	if err != nil {
		return nil, "", apperrors.NewTransportFailure("fetch channel", err)
	}
	if ch == nil {
		return nil, "", apperrors.NewUnboundChannel(channelID)
	}
	requesterID, err := ResolveRequester(ch)
	if err != nil {
		return nil, "", err
	}
	return ch, requesterID, nil
}

func markerOf(ch *platform.Channel) string {
	return strings.TrimSpace(ch.Topic)
}
