package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/auth"
	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/events"
	"github.com/spec-kit/ticket-bot/internal/platform"
	apperrors "github.com/spec-kit/ticket-bot/pkg/util/errorutil"
)

// SettingsStore is the persisted settings record.
type SettingsStore interface {
	Get() domain.Settings
	Update(mutate func(*domain.Settings)) (domain.Settings, error)
}

// SettingsService handles the privileged setup commands.
type SettingsService struct {
	store      SettingsStore
	notifier   platform.NotificationSink
	dispatcher events.Dispatcher
	logger     *zap.Logger
	brand      string
}

// NewSettingsService constructs the service.
func NewSettingsService(store SettingsStore, notifier platform.NotificationSink, dispatcher events.Dispatcher, logger *zap.Logger, brand string) *SettingsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{
		store:      store,
		notifier:   notifier,
		dispatcher: dispatcher,
		logger:     logger,
		brand:      brand,
	}
}

// Current returns the settings snapshot.
func (s *SettingsService) Current() domain.Settings {
	return s.store.Get()
}

// SetupPanel routes tickets to categoryID, makes roleID the only staff role and
// posts the open-ticket panel.
func (s *SettingsService) SetupPanel(ctx context.Context, actor domain.Actor, panelChannelID, categoryID, roleID string, responder platform.Responder) (domain.Settings, error) {
	if !auth.CanConfigure(actor) {
		return domain.Settings{}, apperrors.NewForbidden("🚫 You need Manage Server to do that.")
	}
	if panelChannelID == "" || categoryID == "" || roleID == "" {
		return domain.Settings{}, apperrors.NewValidationError("Panel channel, category and role are required.", nil)
	}

	updated, err := s.store.Update(func(st *domain.Settings) {
		st.PanelChannelID = panelChannelID
		st.CategoryID = categoryID
		st.AllowedRoles = []string{roleID}
	})
	if err != nil {
		return domain.Settings{}, apperrors.NewInternalError(err)
	}
	s.publishChange(ctx, actor.ID, "panel", panelChannelID)

	if err := s.notifier.SendToChannel(ctx, panelChannelID, panelMessage(s.brand)); err != nil {
		return updated, apperrors.NewTransportFailure("post panel", err)
	}
	if err := responder.Reply(ctx, platform.Reply{
		Content:   "✅ Panel sent to " + platform.ChannelMention(panelChannelID),
		Ephemeral: true,
	}); err != nil {
		return updated, apperrors.NewTransportFailure("confirm panel", err)
	}
	return updated, nil
}

// SetFeedbackChannel sets where ratings are forwarded.
func (s *SettingsService) SetFeedbackChannel(ctx context.Context, actor domain.Actor, channelID string, responder platform.Responder) (domain.Settings, error) {
	return s.setField(ctx, actor, "feedback_channel", channelID, "✅ Feedback channel set.", responder,
		func(st *domain.Settings) { st.FeedbackChannelID = channelID })
}

// SetTicketLogChannel sets where close logs are written.
func (s *SettingsService) SetTicketLogChannel(ctx context.Context, actor domain.Actor, channelID string, responder platform.Responder) (domain.Settings, error) {
	return s.setField(ctx, actor, "ticket_log_channel", channelID, "✅ Ticket log channel set.", responder,
		func(st *domain.Settings) { st.TicketLogChannelID = channelID })
}

// SetRatingRole sets the role allowed to use /rate.
func (s *SettingsService) SetRatingRole(ctx context.Context, actor domain.Actor, roleID string, responder platform.Responder) (domain.Settings, error) {
	return s.setField(ctx, actor, "rating_role", roleID, "✅ Rating role updated.", responder,
		func(st *domain.Settings) { st.RatingAllowedRoleID = roleID })
}

// Replace overwrites the whole record. Used by the admin API, which has its
// own authentication.
func (s *SettingsService) Replace(ctx context.Context, next domain.Settings) (domain.Settings, error) {
	updated, err := s.store.Update(func(st *domain.Settings) {
		*st = next.Clone()
	})
	if err != nil {
		return domain.Settings{}, apperrors.NewInternalError(err)
	}
	s.publishChange(ctx, "", "all", "")
	return updated, nil
}

func (s *SettingsService) setField(ctx context.Context, actor domain.Actor, field, value, confirmation string, responder platform.Responder, mutate func(*domain.Settings)) (domain.Settings, error) {
	if !auth.CanConfigure(actor) {
		return domain.Settings{}, apperrors.NewForbidden("🚫 You need Manage Server to do that.")
	}
	if value == "" {
		return domain.Settings{}, apperrors.NewValidationError(field+" is required", nil)
	}
	updated, err := s.store.Update(mutate)
	if err != nil {
		return domain.Settings{}, apperrors.NewInternalError(err)
	}
	s.publishChange(ctx, actor.ID, field, value)

	if err := responder.Reply(ctx, platform.Reply{Content: confirmation, Ephemeral: true}); err != nil {
		return updated, apperrors.NewTransportFailure("confirm setting", err)
	}
	return updated, nil
}

func (s *SettingsService) publishChange(ctx context.Context, actorID, field, value string) {
	s.logger.Info("settings updated", zap.String("field", field), zap.String("actor_id", actorID))
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventSettingsChanged,
		ActorID:   actorID,
		Timestamp: time.Now(),
		Payload:   events.SettingsChangedPayload{Field: field, Value: value},
	})
}
