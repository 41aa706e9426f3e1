// Package discord routes Discord interactions to the ticket services.
package discord

import (
	"context"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/observability"
	"github.com/spec-kit/ticket-bot/internal/platform"
	"github.com/spec-kit/ticket-bot/internal/service"
	apperrors "github.com/spec-kit/ticket-bot/pkg/util/errorutil"
)

const genericFailure = "⚠️ Something went wrong."

// ResponderFactory builds the responder for one interaction.
type ResponderFactory func(*discordgo.Interaction) platform.Responder

// Router dispatches interactions. Every handler runs with a bounded context,
// recovers panics and leaves no interaction unanswered.
type Router struct {
	tickets  *service.TicketService
	ratings  *service.RatingService
	settings *service.SettingsService
	logger   *zap.Logger
	metrics  *observability.Metrics
	timeout  time.Duration
	respond  ResponderFactory
}

// RouterConfig bundles dependencies for the router.
type RouterConfig struct {
	Tickets   *service.TicketService
	Ratings   *service.RatingService
	Settings  *service.SettingsService
	Logger    *zap.Logger
	Metrics   *observability.Metrics
	Timeout   time.Duration
	Responder ResponderFactory
}

// NewRouter constructs the router.
func NewRouter(cfg RouterConfig) *Router {
	r := &Router{
		tickets:  cfg.Tickets,
		ratings:  cfg.Ratings,
		settings: cfg.Settings,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
		timeout:  cfg.Timeout,
		respond:  cfg.Responder,
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	return r
}

// HandleInteraction is registered with the discordgo session.
func (r *Router) HandleInteraction(_ *discordgo.Session, ic *discordgo.InteractionCreate) {
	r.Dispatch(context.Background(), ic.Interaction)
}

// Dispatch routes one interaction.
func (r *Router) Dispatch(parent context.Context, i *discordgo.Interaction) {
	if i == nil {
		return
	}
	ctx := parent
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parent, r.timeout)
		defer cancel()
	}

	responder := r.respond(i)
	start := time.Now()

	var (
		name string
		err  error
	)
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("panic recovered",
				zap.String("interaction", name),
				zap.Any("panic", rec),
				zap.ByteString("stack", debug.Stack()))
			err = apperrors.NewInternalError(nil)
		}
		r.finish(ctx, name, responder, err, time.Since(start))
	}()

	name = interactionName(i)
	if name == "" {
		return
	}
	err = r.route(ctx, name, i, responder)
}

func (r *Router) route(ctx context.Context, name string, i *discordgo.Interaction, responder platform.Responder) error {
	actor := actorFrom(i)
	settings := r.settings.Current()

	switch name {
	case service.ControlOpenTicket:
		_, err := r.tickets.Open(ctx, settings, actor, responder)
		return err
	case service.ControlClaimTicket:
		_, err := r.tickets.Claim(ctx, settings, actor, i.ChannelID, responder)
		return err
	case service.ControlCloseTicket:
		_, err := r.tickets.Close(ctx, settings, actor, i.ChannelID, responder)
		return err
	case CommandRate:
		opts := optionsOf(i)
		_, err := r.ratings.Rate(ctx, settings, actor, int(opts.integer("score")), opts.str("feedback"), responder)
		return err
	case CommandSetupPanel:
		opts := optionsOf(i)
		_, err := r.settings.SetupPanel(ctx, actor, opts.id("panel_channel"), opts.id("category"), opts.id("role"), responder)
		return err
	case CommandSetFeedbackChannel:
		_, err := r.settings.SetFeedbackChannel(ctx, actor, optionsOf(i).id("channel"), responder)
		return err
	case CommandSetTicketLogChannel:
		_, err := r.settings.SetTicketLogChannel(ctx, actor, optionsOf(i).id("channel"), responder)
		return err
	case CommandSetRatingRole:
		_, err := r.settings.SetRatingRole(ctx, actor, optionsOf(i).id("role"), responder)
		return err
	}
	r.logger.Debug("unhandled interaction", zap.String("interaction", name))
	return nil
}

func (r *Router) finish(ctx context.Context, name string, responder platform.Responder, err error, duration time.Duration) {
	if err == nil {
		r.metrics.RecordRequest(name, "interaction", http.StatusOK, duration)
		return
	}

	domainErr := apperrors.ToDomainError(err)
	r.metrics.RecordRequest(name, "interaction", domainErr.HTTPStatus, duration)

	message := genericFailure
	if apperrors.IsUserFacing(err) {
		message = domainErr.Message
		r.logger.Info("interaction rejected",
			zap.String("interaction", name),
			zap.String("code", domainErr.Code))
	} else {
		r.metrics.RecordError(name, "interaction", domainErr.Code)
		r.logger.Error("interaction failed",
			zap.String("interaction", name),
			zap.String("code", domainErr.Code),
			zap.Error(err))
	}

	if responder.Replied() {
		return
	}
	// The handler context may already be spent.
	replyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if replyErr := responder.Reply(replyCtx, platform.Reply{Content: message, Ephemeral: true}); replyErr != nil {
		r.logger.Warn("failure reply not delivered", zap.String("interaction", name), zap.Error(replyErr))
	}
}

func interactionName(i *discordgo.Interaction) string {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		return i.ApplicationCommandData().Name
	case discordgo.InteractionMessageComponent:
		return i.MessageComponentData().CustomID
	}
	return ""
}

func actorFrom(i *discordgo.Interaction) domain.Actor {
	if i.Member != nil {
		actor := domain.Actor{
			RoleIDs: append([]string{}, i.Member.Roles...),
			CanManageGuild: i.Member.Permissions&discordgo.PermissionManageServer != 0 ||
				i.Member.Permissions&discordgo.PermissionAdministrator != 0,
		}
		if i.Member.User != nil {
			actor.ID = i.Member.User.ID
			actor.Username = i.Member.User.Username
		}
		return actor
	}
	if i.User != nil {
		return domain.Actor{ID: i.User.ID, Username: i.User.Username}
	}
	return domain.Actor{}
}

type commandOptions map[string]*discordgo.ApplicationCommandInteractionDataOption

func optionsOf(i *discordgo.Interaction) commandOptions {
	opts := commandOptions{}
	for _, opt := range i.ApplicationCommandData().Options {
		opts[opt.Name] = opt
	}
	return opts
}

// id reads a channel, role or user option as its snowflake.
func (o commandOptions) id(name string) string {
	opt, ok := o[name]
	if !ok {
		return ""
	}
	v, _ := opt.Value.(string)
	return v
}

func (o commandOptions) str(name string) string {
	return o.id(name)
}

func (o commandOptions) integer(name string) int64 {
	opt, ok := o[name]
	if !ok {
		return 0
	}
	switch v := opt.Value.(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}
