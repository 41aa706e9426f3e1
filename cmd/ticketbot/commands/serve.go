// Package commands provides the ticketbot CLI commands.
package commands

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	discordapi "github.com/spec-kit/ticket-bot/internal/api/discord"
	httptransport "github.com/spec-kit/ticket-bot/internal/api/http"
	"github.com/spec-kit/ticket-bot/internal/api/http/handlers"
	"github.com/spec-kit/ticket-bot/internal/auth"
	"github.com/spec-kit/ticket-bot/internal/config"
	"github.com/spec-kit/ticket-bot/internal/events"
	"github.com/spec-kit/ticket-bot/internal/identity"
	"github.com/spec-kit/ticket-bot/internal/observability"
	"github.com/spec-kit/ticket-bot/internal/persistence"
	"github.com/spec-kit/ticket-bot/internal/platform"
	discordplatform "github.com/spec-kit/ticket-bot/internal/platform/discord"
	"github.com/spec-kit/ticket-bot/internal/repository"
	"github.com/spec-kit/ticket-bot/internal/service"
	"github.com/spec-kit/ticket-bot/internal/settings"
	"github.com/spec-kit/ticket-bot/internal/worker"
)

// ServeCommand runs the bot, the deletion worker and the ops API.
func ServeCommand(cfg *config.Config, logger *zap.Logger) *cobra.Command {
	var syncOnReady bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Connect to Discord and handle ticket interactions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger, syncOnReady)
		},
	}
	cmd.Flags().BoolVar(&syncOnReady, "sync-commands", true, "register slash commands once the gateway is ready")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger, syncOnReady bool) error {
	if cfg.Discord.Token == "" || cfg.Discord.GuildID == "" {
		return errors.New("DISCORD_TOKEN and DISCORD_GUILD_ID are required")
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)
	service.NewActivityService(dispatcher, logger, metrics).RegisterHandlers()

	store, err := settings.Load(cfg.Settings.Path)
	if err != nil {
		return err
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return err
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			return err
		}
	}

	rdb, err := persistence.NewRedis(ctx, cfg.Redis, logger)
	if err != nil {
		return err
	}
	defer rdb.Close()

	var deletions repository.DeletionRepository = repository.NewMemoryDeletionRepository()
	if pg.Enabled() {
		deletions = repository.NewDeletionRepository(pg.PoolHandle())
	}
	reservations := identity.NewMemoryReservations()
	if rdb.Enabled() {
		reservations = identity.NewRedisReservations(rdb.Client, cfg.Tickets.ReservationTTL())
	}

	session, err := discordplatform.NewSession(cfg.Discord.Token)
	if err != nil {
		return err
	}
	directory := discordplatform.NewDirectory(session, cfg.Discord.GuildID)
	notifier := discordplatform.NewNotifier(session)
	registry := identity.NewRegistry()

	scheduler := worker.NewDeletionScheduler(worker.DeletionDependencies{
		Repo:         deletions,
		Directory:    directory,
		Registry:     registry,
		Dispatcher:   dispatcher,
		Logger:       logger.Named("deletions"),
		PollInterval: cfg.Tickets.DeletionPollInterval(),
		MaxAttempts:  cfg.Tickets.DeletionMaxAttempts,
	})
	tickets := service.NewTicketService(service.TicketDependencies{
		Directory:    directory,
		Notifier:     notifier,
		Registry:     registry,
		Reservations: reservations,
		Scheduler:    scheduler,
		Dispatcher:   dispatcher,
		Logger:       logger.Named("tickets"),
		BrandName:    cfg.Discord.BrandName,
		CloseGrace:   cfg.Tickets.CloseGrace(),
	})
	ratings := service.NewRatingService(directory, notifier, dispatcher, logger.Named("ratings"), cfg.Tickets.RatingMin, cfg.Tickets.RatingMax)
	settingsSvc := service.NewSettingsService(store, notifier, dispatcher, logger.Named("settings"), cfg.Discord.BrandName)

	router := discordapi.NewRouter(discordapi.RouterConfig{
		Tickets:  tickets,
		Ratings:  ratings,
		Settings: settingsSvc,
		Logger:   logger.Named("interactions"),
		Metrics:  metrics,
		Timeout:  cfg.Discord.InteractionTimeout(),
		Responder: func(i *discordgo.Interaction) platform.Responder {
			return discordplatform.NewResponder(session, i)
		},
	})
	session.AddHandler(router.HandleInteraction)
	session.AddHandler(onReady(cfg, logger, syncOnReady))

	if err := session.Open(); err != nil {
		return err
	}
	defer session.Close() //nolint:errcheck

	go scheduler.Run(ctx)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Dependency{
			"postgres": pg,
			"redis":    rdb,
		}),
		Metrics:        handlers.NewMetricsHandler(metrics, registry.Len),
		Auth:           handlers.NewAuthHandler(service.NewAuthService(cfg.Auth, tokens)),
		Settings:       handlers.NewSettingsHandler(settingsSvc),
		AuthMiddleware: auth.NewAuthMiddleware(tokens),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Error("fiber listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	return app.Shutdown()
}

func onReady(cfg *config.Config, logger *zap.Logger, syncCommands bool) func(*discordgo.Session, *discordgo.Ready) {
	return func(s *discordgo.Session, r *discordgo.Ready) {
		logger.Info("logged in", zap.String("user", r.User.Username))

		if err := s.UpdateStatusComplex(discordgo.UpdateStatusData{
			Status:     "idle",
			Activities: []*discordgo.Activity{{Name: cfg.Discord.Presence, Type: discordgo.ActivityTypeGame}},
		}); err != nil {
			logger.Warn("set presence", zap.Error(err))
		}

		if !syncCommands {
			return
		}
		appID := cfg.Discord.AppID
		if appID == "" {
			appID = r.User.ID
		}
		cmds := discordapi.Commands(cfg.Discord.BrandName, cfg.Tickets.RatingMin, cfg.Tickets.RatingMax)
		if _, err := discordapi.Sync(s, appID, cfg.Discord.GuildID, cmds); err != nil {
			logger.Error("slash command deploy", zap.Error(err))
			return
		}
		logger.Info("slash commands deployed", zap.Int("count", len(cmds)))
	}
}
