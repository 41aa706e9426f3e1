package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/events"
	"github.com/spec-kit/ticket-bot/internal/observability"
)

// ActivityService records lifecycle events in the log and the metrics counters.
type ActivityService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewActivityService creates the service.
func NewActivityService(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    metrics,
	}
}

// RegisterHandlers subscribes to events.
func (a *ActivityService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventTicketOpened, a.record)
	a.dispatcher.Subscribe(events.EventTicketClaimed, a.record)
	a.dispatcher.Subscribe(events.EventTicketClosed, a.handleTicketClosed)
	a.dispatcher.Subscribe(events.EventTicketDeleted, a.handleTicketDeleted)
	a.dispatcher.Subscribe(events.EventRatingSubmitted, a.record)
	a.dispatcher.Subscribe(events.EventSettingsChanged, a.record)
}

func (a *ActivityService) record(_ context.Context, event events.Event) error {
	a.metrics.RecordTicketEvent(string(event.Type))
	a.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.String("channel_id", event.ChannelID),
		zap.String("actor_id", event.ActorID),
		zap.Any("payload", event.Payload))
	return nil
}

func (a *ActivityService) handleTicketClosed(ctx context.Context, event events.Event) error {
	if payload, ok := event.Payload.(events.TicketClosedPayload); ok && !payload.Notified {
		a.metrics.RecordTicketEvent("requester_notification_failed")
	}
	return a.record(ctx, event)
}

func (a *ActivityService) handleTicketDeleted(ctx context.Context, event events.Event) error {
	if payload, ok := event.Payload.(events.TicketDeletedPayload); ok && payload.Err != "" {
		a.metrics.RecordTicketEvent("ticket_deletion_abandoned")
		a.logger.Warn("ticket channel deletion abandoned",
			zap.String("channel_id", event.ChannelID),
			zap.Int("attempts", payload.Attempts),
			zap.String("error", payload.Err))
		return nil
	}
	return a.record(ctx, event)
}
