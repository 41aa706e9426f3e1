package discord

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-bot/internal/platform"
)

type fakeREST struct {
	created   []discordgo.GuildChannelCreateData
	channels  []*discordgo.Channel
	deleteErr error
	fetchErr  error
	sent      map[string][]*discordgo.MessageSend
	responses []*discordgo.InteractionResponse
}

func newFakeREST() *fakeREST {
	return &fakeREST{sent: map[string][]*discordgo.MessageSend{}}
}

func (f *fakeREST) GuildChannelCreateComplex(_ string, data discordgo.GuildChannelCreateData, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.created = append(f.created, data)
	return &discordgo.Channel{ID: "new", Name: data.Name, ParentID: data.ParentID, Topic: data.Topic, Type: data.Type}, nil
}

func (f *fakeREST) GuildChannels(string, ...discordgo.RequestOption) ([]*discordgo.Channel, error) {
	return f.channels, nil
}

func (f *fakeREST) ChannelDelete(channelID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	return &discordgo.Channel{ID: channelID}, f.deleteErr
}

func (f *fakeREST) Channel(channelID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	for _, ch := range f.channels {
		if ch.ID == channelID {
			return ch, nil
		}
	}
	return nil, notFound()
}

func (f *fakeREST) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.sent[channelID] = append(f.sent[channelID], data)
	return &discordgo.Message{ChannelID: channelID}, nil
}

func (f *fakeREST) UserChannelCreate(recipientID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	return &discordgo.Channel{ID: "dm-" + recipientID, Type: discordgo.ChannelTypeDM}, nil
}

func (f *fakeREST) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.responses = append(f.responses, resp)
	return nil
}

func notFound() error {
	return &discordgo.RESTError{
		Response: &http.Response{StatusCode: http.StatusNotFound},
		Message:  &discordgo.APIErrorMessage{Code: discordgo.ErrCodeUnknownChannel},
	}
}

func TestDirectory_CreateChannelMapsVisibility(t *testing.T) {
	rest := newFakeREST()
	dir := NewDirectory(rest, "guild")

	ch, err := dir.CreateChannel(context.Background(), platform.ChannelSpec{
		Name:     "ticket-u",
		ParentID: "cat",
		Marker:   "U",
		Visibility: []platform.VisibilityRule{
			{Kind: platform.SubjectEveryone, Deny: platform.PermissionView},
			{SubjectID: "U", Kind: platform.SubjectMember, Allow: platform.PermissionView | platform.PermissionSend},
			{SubjectID: "S", Kind: platform.SubjectRole, Allow: platform.PermissionView},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "U", ch.Topic)

	require.Len(t, rest.created, 1)
	data := rest.created[0]
	assert.Equal(t, "U", data.Topic)
	assert.Equal(t, "cat", data.ParentID)
	require.Len(t, data.PermissionOverwrites, 3)
	assert.Equal(t, &discordgo.PermissionOverwrite{ID: "guild", Type: discordgo.PermissionOverwriteTypeRole, Deny: discordgo.PermissionViewChannel}, data.PermissionOverwrites[0])
	assert.Equal(t, &discordgo.PermissionOverwrite{ID: "U", Type: discordgo.PermissionOverwriteTypeMember, Allow: discordgo.PermissionViewChannel | discordgo.PermissionSendMessages}, data.PermissionOverwrites[1])
	assert.Equal(t, &discordgo.PermissionOverwrite{ID: "S", Type: discordgo.PermissionOverwriteTypeRole, Allow: discordgo.PermissionViewChannel}, data.PermissionOverwrites[2])
}

func TestDirectory_ListFiltersByParent(t *testing.T) {
	rest := newFakeREST()
	rest.channels = []*discordgo.Channel{
		{ID: "a", ParentID: "cat", Topic: "U", Type: discordgo.ChannelTypeGuildText},
		{ID: "b", ParentID: "other", Type: discordgo.ChannelTypeGuildText},
		{ID: "cat", Type: discordgo.ChannelTypeGuildCategory},
		{ID: "v", ParentID: "cat", Type: discordgo.ChannelTypeGuildVoice},
	}

	chans, err := NewDirectory(rest, "guild").ListChannels(context.Background(), "cat")
	require.NoError(t, err)
	require.Len(t, chans, 1)
	assert.Equal(t, "a", chans[0].ID)
}

func TestDirectory_NotFoundHandling(t *testing.T) {
	rest := newFakeREST()
	dir := NewDirectory(rest, "guild")
	ctx := context.Background()

	ch, err := dir.FetchChannel(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, ch)

	rest.deleteErr = notFound()
	assert.NoError(t, dir.DeleteChannel(ctx, "missing"))

	rest.deleteErr = errors.New("rate limited")
	assert.Error(t, dir.DeleteChannel(ctx, "x"))

	rest.fetchErr = errors.New("gateway down")
	_, err = dir.FetchChannel(ctx, "x")
	assert.Error(t, err)
}

func TestNotifier_SendDirectUsesDMChannel(t *testing.T) {
	rest := newFakeREST()
	n := NewNotifier(rest)
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	err := n.SendDirect(context.Background(), "U", platform.Message{
		Embed: &platform.Embed{Title: "closed", Timestamp: at},
		Controls: []platform.Control{
			{ID: "claim", Label: "Claim", Style: platform.ControlSuccess},
		},
	})
	require.NoError(t, err)

	sent := rest.sent["dm-U"]
	require.Len(t, sent, 1)
	require.Len(t, sent[0].Embeds, 1)
	assert.Equal(t, "2026-01-02T03:04:05Z", sent[0].Embeds[0].Timestamp)
	require.Len(t, sent[0].Components, 1)
	row, ok := sent[0].Components[0].(discordgo.ActionsRow)
	require.True(t, ok)
	button, ok := row.Components[0].(discordgo.Button)
	require.True(t, ok)
	assert.Equal(t, discordgo.SuccessButton, button.Style)
	assert.Equal(t, "claim", button.CustomID)
}

func TestResponder_RepliesOnce(t *testing.T) {
	rest := newFakeREST()
	r := NewResponder(rest, &discordgo.Interaction{ID: "i1"})
	ctx := context.Background()

	require.NoError(t, r.Reply(ctx, platform.Reply{Content: "hi", Ephemeral: true}))
	assert.True(t, r.Replied())
	assert.ErrorIs(t, r.Reply(ctx, platform.Reply{Content: "again"}), ErrAlreadyReplied)

	require.Len(t, rest.responses, 1)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, rest.responses[0].Data.Flags)
}
