package discord

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/identity"
	"github.com/spec-kit/ticket-bot/internal/observability"
	"github.com/spec-kit/ticket-bot/internal/platform"
	"github.com/spec-kit/ticket-bot/internal/platform/platformtest"
	"github.com/spec-kit/ticket-bot/internal/repository"
	"github.com/spec-kit/ticket-bot/internal/service"
	"github.com/spec-kit/ticket-bot/internal/settings"
	"github.com/spec-kit/ticket-bot/internal/worker"
)

type routerFixture struct {
	router    *Router
	directory *platformtest.Directory
	notifier  *platformtest.Notifier
	metrics   *observability.Metrics
	last      *platformtest.Responder
}

func newRouterFixture(t *testing.T, initial domain.Settings) *routerFixture {
	t.Helper()
	store, err := settings.Load(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	_, err = store.Update(func(s *domain.Settings) { *s = initial })
	require.NoError(t, err)

	f := &routerFixture{
		directory: platformtest.NewDirectory(nil),
		notifier:  platformtest.NewNotifier(nil),
		metrics:   observability.NewMetrics(),
	}
	registry := identity.NewRegistry()
	scheduler := worker.NewDeletionScheduler(worker.DeletionDependencies{
		Repo:      repository.NewMemoryDeletionRepository(),
		Directory: f.directory,
		Registry:  registry,
	})
	tickets := service.NewTicketService(service.TicketDependencies{
		Directory:  f.directory,
		Notifier:   f.notifier,
		Registry:   registry,
		Scheduler:  scheduler,
		BrandName:  "Acme",
		CloseGrace: time.Second,
	})
	f.router = NewRouter(RouterConfig{
		Tickets:  tickets,
		Ratings:  service.NewRatingService(f.directory, f.notifier, nil, nil, 1, 10),
		Settings: service.NewSettingsService(store, f.notifier, nil, nil, "Acme"),
		Metrics:  f.metrics,
		Timeout:  time.Second,
		Responder: func(*discordgo.Interaction) platform.Responder {
			f.last = platformtest.NewResponder(nil)
			return f.last
		},
	})
	return f
}

func button(customID, channelID string, member *discordgo.Member) *discordgo.Interaction {
	return &discordgo.Interaction{
		Type:      discordgo.InteractionMessageComponent,
		ChannelID: channelID,
		Member:    member,
		Data:      discordgo.MessageComponentInteractionData{CustomID: customID},
	}
}

func command(name string, member *discordgo.Member, opts ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.Interaction {
	return &discordgo.Interaction{
		Type:   discordgo.InteractionApplicationCommand,
		Member: member,
		Data:   discordgo.ApplicationCommandInteractionData{Name: name, Options: opts},
	}
}

func member(id string, roles ...string) *discordgo.Member {
	return &discordgo.Member{User: &discordgo.User{ID: id, Username: id}, Roles: roles}
}

func ticketSettings() domain.Settings {
	return domain.Settings{CategoryID: "cat", AllowedRoles: []string{"staff"}, RatingAllowedRoleID: "rater"}
}

func (f *routerFixture) lastReply(t *testing.T) platform.Reply {
	t.Helper()
	require.NotNil(t, f.last)
	reply, ok := f.last.Last()
	require.True(t, ok, "interaction left unanswered")
	return reply
}

func TestRouter_OpenThenDuplicate(t *testing.T) {
	f := newRouterFixture(t, ticketSettings())
	ctx := context.Background()

	f.router.Dispatch(ctx, button(service.ControlOpenTicket, "panel", member("U")))
	assert.Contains(t, f.lastReply(t).Content, "Ticket created")

	f.router.Dispatch(ctx, button(service.ControlOpenTicket, "panel", member("U")))
	reply := f.lastReply(t)
	assert.Equal(t, "⚠️ You already have a ticket.", reply.Content)
	assert.True(t, reply.Ephemeral)
	assert.Equal(t, 1, f.directory.Count("cat"))
	assert.Empty(t, f.metrics.Snapshot().Errors, "duplicates are not errors")
}

func TestRouter_NonStaffClose(t *testing.T) {
	f := newRouterFixture(t, ticketSettings())
	f.directory.Seed(platform.Channel{ID: "t1", ParentID: "cat", Topic: "U"})

	f.router.Dispatch(context.Background(), button(service.ControlCloseTicket, "t1", member("U")))
	assert.Equal(t, "🚫 You're not staff.", f.lastReply(t).Content)
	assert.Empty(t, f.notifier.Sent())
}

func TestRouter_UnboundChannelGetsReply(t *testing.T) {
	f := newRouterFixture(t, ticketSettings())
	f.directory.Seed(platform.Channel{ID: "general", ParentID: "cat"})

	f.router.Dispatch(context.Background(), button(service.ControlCloseTicket, "general", member("S", "staff")))
	assert.Equal(t, "This channel is not a ticket.", f.lastReply(t).Content)
}

func TestRouter_TransportFailureGetsGenericReply(t *testing.T) {
	f := newRouterFixture(t, ticketSettings())
	f.directory.FailCreate = true

	f.router.Dispatch(context.Background(), button(service.ControlOpenTicket, "panel", member("U")))
	assert.Equal(t, genericFailure, f.lastReply(t).Content)
	assert.Len(t, f.metrics.Snapshot().Errors, 1)
}

func TestRouter_PanicIsRecovered(t *testing.T) {
	f := newRouterFixture(t, ticketSettings())
	// Command type with component data makes discordgo's accessor panic.
	bad := &discordgo.Interaction{
		Type:   discordgo.InteractionApplicationCommand,
		Member: member("R", "rater"),
		Data:   discordgo.MessageComponentInteractionData{CustomID: "x"},
	}

	require.NotPanics(t, func() { f.router.Dispatch(context.Background(), bad) })
	assert.Equal(t, genericFailure, f.lastReply(t).Content)
}

func TestRouter_RateCommand(t *testing.T) {
	f := newRouterFixture(t, ticketSettings())

	f.router.Dispatch(context.Background(), command(CommandRate, member("R", "rater"),
		&discordgo.ApplicationCommandInteractionDataOption{Name: "score", Type: discordgo.ApplicationCommandOptionInteger, Value: float64(8)},
		&discordgo.ApplicationCommandInteractionDataOption{Name: "feedback", Type: discordgo.ApplicationCommandOptionString, Value: "nice"},
	))
	assert.Equal(t, "✅ Thanks for your rating!", f.lastReply(t).Content)
}

func TestRouter_SetupPanelRequiresManageGuild(t *testing.T) {
	f := newRouterFixture(t, domain.Settings{})
	opts := []*discordgo.ApplicationCommandInteractionDataOption{
		{Name: "panel_channel", Type: discordgo.ApplicationCommandOptionChannel, Value: "panel"},
		{Name: "category", Type: discordgo.ApplicationCommandOptionChannel, Value: "cat"},
		{Name: "role", Type: discordgo.ApplicationCommandOptionRole, Value: "staff"},
	}

	f.router.Dispatch(context.Background(), command(CommandSetupPanel, member("M"), opts...))
	assert.Contains(t, f.lastReply(t).Content, "Manage Server")

	admin := member("A")
	admin.Permissions = discordgo.PermissionManageServer
	f.router.Dispatch(context.Background(), command(CommandSetupPanel, admin, opts...))
	assert.Equal(t, "✅ Panel sent to <#panel>", f.lastReply(t).Content)
	assert.Len(t, f.notifier.SentTo("panel"), 1)

	// New settings apply to the next interaction.
	f.router.Dispatch(context.Background(), button(service.ControlOpenTicket, "panel", member("U")))
	assert.Contains(t, f.lastReply(t).Content, "Ticket created")
	assert.Equal(t, 1, f.directory.Count("cat"))
}

func TestRouter_UnknownControlIgnored(t *testing.T) {
	f := newRouterFixture(t, ticketSettings())
	f.router.Dispatch(context.Background(), button("something_else", "c", member("U")))
	_, replied := f.last.Last()
	assert.False(t, replied)
}

type fakeSyncer struct {
	appID, guildID string
	commands       []*discordgo.ApplicationCommand
}

func (f *fakeSyncer) ApplicationCommandBulkOverwrite(appID, guildID string, commands []*discordgo.ApplicationCommand, _ ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	f.appID, f.guildID, f.commands = appID, guildID, commands
	return commands, nil
}

func TestSync(t *testing.T) {
	syncer := &fakeSyncer{}
	cmds := Commands("Acme", 1, 10)

	registered, err := Sync(syncer, "app", "guild", cmds)
	require.NoError(t, err)
	assert.Len(t, registered, 5)
	assert.Equal(t, "guild", syncer.guildID)

	names := map[string]bool{}
	for _, c := range cmds {
		names[c.Name] = true
		if c.Name != CommandRate {
			require.NotNil(t, c.DefaultMemberPermissions)
		}
	}
	assert.True(t, names[CommandSetupPanel])
	assert.True(t, names[CommandRate])

	_, err = Sync(syncer, "", "guild", cmds)
	assert.Error(t, err)
}
