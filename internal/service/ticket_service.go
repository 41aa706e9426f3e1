package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/auth"
	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/events"
	"github.com/spec-kit/ticket-bot/internal/identity"
	"github.com/spec-kit/ticket-bot/internal/platform"
	apperrors "github.com/spec-kit/ticket-bot/pkg/util/errorutil"
)

// DeletionScheduler defers channel deletion past the close grace period.
type DeletionScheduler interface {
	Schedule(ctx context.Context, channelID string, delay time.Duration) (domain.DeletionTask, error)
}

// TicketService runs the ticket state machine: open, claim, close.
type TicketService struct {
	directory    platform.ChannelDirectory
	notifier     platform.NotificationSink
	resolver     *identity.Resolver
	registry     *identity.Registry
	reservations identity.Reservations
	scheduler    DeletionScheduler
	dispatcher   events.Dispatcher
	logger       *zap.Logger
	brand        string
	closeGrace   time.Duration
	now          func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	Directory    platform.ChannelDirectory
	Notifier     platform.NotificationSink
	Registry     *identity.Registry
	Reservations identity.Reservations
	Scheduler    DeletionScheduler
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
	BrandName    string
	CloseGrace   time.Duration
	Now          func() time.Time
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	s := &TicketService{
		directory:    deps.Directory,
		notifier:     deps.Notifier,
		resolver:     identity.NewResolver(deps.Directory),
		registry:     deps.Registry,
		reservations: deps.Reservations,
		scheduler:    deps.Scheduler,
		dispatcher:   deps.Dispatcher,
		logger:       deps.Logger,
		brand:        deps.BrandName,
		closeGrace:   deps.CloseGrace,
		now:          deps.Now,
	}
	if s.registry == nil {
		s.registry = identity.NewRegistry()
	}
	if s.reservations == nil {
		s.reservations = identity.NewMemoryReservations()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Open creates a ticket channel for the actor unless one already exists.
func (s *TicketService) Open(ctx context.Context, settings domain.Settings, actor domain.Actor, responder platform.Responder) (*domain.Ticket, error) {
	if settings.CategoryID == "" {
		return nil, apperrors.NewValidationError("The ticket system is not set up yet.", nil)
	}

	release, ok, err := s.reservations.Reserve(ctx, actor.ID)
	if err != nil {
		return nil, apperrors.NewTransportFailure("reserve requester", err)
	}
	if !ok {
		s.logger.Info("ticket open already in flight", zap.String("requester_id", actor.ID))
		return nil, apperrors.NewDuplicateTicket(actor.ID, "")
	}
	defer release()

	existing := s.trackedChannel(ctx, actor.ID, settings.CategoryID)
	if existing == nil {
		existing, err = s.resolver.FindOpenTicket(ctx, actor.ID, settings.CategoryID)
		if err != nil {
			return nil, err
		}
	}
	if existing != nil {
		s.logger.Info("duplicate ticket rejected",
			zap.String("requester_id", actor.ID),
			zap.String("channel_id", existing.ID))
		return nil, apperrors.NewDuplicateTicket(actor.ID, existing.ID)
	}

	spec := platform.ChannelSpec{
		Name:       ChannelName(actor),
		ParentID:   settings.CategoryID,
		Visibility: ticketVisibility(settings, actor.ID),
	}
	identity.Bind(&spec, actor.ID)

	ch, err := s.directory.CreateChannel(ctx, spec)
	if err != nil {
		return nil, apperrors.NewTransportFailure("create channel", err)
	}

	ticket := domain.Ticket{
		RequesterID: actor.ID,
		ChannelID:   ch.ID,
		ChannelName: ch.Name,
		CategoryID:  settings.CategoryID,
		State:       domain.TicketStateOpen,
		OpenedAt:    s.now(),
	}
	s.registry.Track(ticket)

	if err := s.notifier.SendToChannel(ctx, ch.ID, ticketEntryMessage(settings)); err != nil {
		return &ticket, apperrors.NewTransportFailure("post ticket entry message", err)
	}
	if err := responder.Reply(ctx, platform.Reply{
		Content:   "✅ Ticket created: " + platform.ChannelMention(ch.ID),
		Ephemeral: true,
	}); err != nil {
		return &ticket, apperrors.NewTransportFailure("confirm ticket", err)
	}

	s.logger.Info("ticket opened",
		zap.String("requester_id", actor.ID),
		zap.String("channel_id", ch.ID))
	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketOpened,
		ChannelID: ch.ID,
		ActorID:   actor.ID,
		Payload: events.TicketOpenedPayload{
			RequesterID: actor.ID,
			CategoryID:  settings.CategoryID,
			ChannelName: ch.Name,
		},
	})
	return &ticket, nil
}

// Claim announces the actor as the ticket's handler. Claims are advisory:
// state does not change and other staff may claim again.
func (s *TicketService) Claim(ctx context.Context, settings domain.Settings, actor domain.Actor, channelID string, responder platform.Responder) (*domain.Ticket, error) {
	if !auth.IsStaff(actor, settings) {
		return nil, apperrors.NewForbidden("🚫 You're not staff.")
	}

	ticket, err := s.ticketFor(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if ticket.IsClosed() {
		return nil, apperrors.NewTicketClosed(channelID)
	}

	s.registry.Claim(channelID, actor.ID)
	if err := responder.Reply(ctx, platform.Reply{Embed: claimEmbed(actor.ID)}); err != nil {
		return nil, apperrors.NewTransportFailure("announce claim", err)
	}

	claimant := actor.ID
	ticket.ClaimedBy = &claimant
	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketClaimed,
		ChannelID: channelID,
		ActorID:   actor.ID,
		Payload: events.TicketClaimedPayload{
			RequesterID: ticket.RequesterID,
			ClaimedBy:   actor.ID,
		},
	})
	return &ticket, nil
}

// Close schedules the channel for deletion, then notifies the requester,
// writes the close log and acknowledges the actor. The deletion is due a grace
// period after the close. A scheduling failure reopens the ticket before any
// message goes out. Notification failures never abort the close.
func (s *TicketService) Close(ctx context.Context, settings domain.Settings, actor domain.Actor, channelID string, responder platform.Responder) (*domain.Ticket, error) {
	if !auth.IsStaff(actor, settings) {
		return nil, apperrors.NewForbidden("🚫 You're not staff.")
	}

	if _, err := s.ticketFor(ctx, channelID); err != nil {
		return nil, err
	}
	closedAt := s.now()
	ticket, ok := s.registry.MarkClosed(channelID, closedAt)
	if !ok {
		return nil, apperrors.NewTicketClosed(channelID)
	}

	task, err := s.scheduler.Schedule(ctx, channelID, s.closeGrace)
	if err != nil {
		s.registry.Reopen(channelID)
		s.logger.Error("ticket deletion not scheduled",
			zap.String("channel_id", channelID),
			zap.Error(err))
		return nil, apperrors.NewInternalError(err)
	}

	notified := s.notifyRequester(ctx, ticket)
	logged := s.writeCloseLog(ctx, settings, ticket, actor.ID, closedAt)

	if err := responder.Reply(ctx, platform.Reply{Content: "🔒 Closing ticket...", Ephemeral: true}); err != nil {
		s.logger.Warn("close acknowledgment failed",
			zap.String("channel_id", channelID),
			zap.Error(err))
	}

	s.logger.Info("ticket closed",
		zap.String("channel_id", channelID),
		zap.String("requester_id", ticket.RequesterID),
		zap.String("closed_by", actor.ID),
		zap.Time("delete_after", task.DueAt))
	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketClosed,
		ChannelID: channelID,
		ActorID:   actor.ID,
		Payload: events.TicketClosedPayload{
			RequesterID: ticket.RequesterID,
			ClosedBy:    actor.ID,
			ClaimedBy:   ticket.ClaimedBy,
			DeleteAfter: task.DueAt,
			Notified:    notified,
			Logged:      logged,
		},
	})
	return &ticket, nil
}

// ticketFor returns the tracked ticket for channelID, resolving and tracking
// it from the channel marker when this process has not seen it yet.
func (s *TicketService) ticketFor(ctx context.Context, channelID string) (domain.Ticket, error) {
	if ticket, ok := s.registry.Lookup(channelID); ok {
		return ticket, nil
	}
	ch, requesterID, err := s.resolver.Lookup(ctx, channelID)
	if err != nil {
		return domain.Ticket{}, err
	}
	ticket := domain.Ticket{
		RequesterID: requesterID,
		ChannelID:   ch.ID,
		ChannelName: ch.Name,
		CategoryID:  ch.ParentID,
		State:       domain.TicketStateOpen,
	}
	s.registry.Track(ticket)
	return ticket, nil
}

// trackedChannel returns the channel this process already tracks for the
// requester in categoryID, or nil when a full scan is needed. Entries whose
// channel is gone are dropped.
func (s *TicketService) trackedChannel(ctx context.Context, requesterID, categoryID string) *platform.Channel {
	channelID, ok := s.registry.ByRequester(requesterID)
	if !ok {
		return nil
	}
	ch, err := s.directory.FetchChannel(ctx, channelID)
	if err != nil {
		s.logger.Warn("tracked ticket lookup failed",
			zap.String("channel_id", channelID),
			zap.Error(err))
		return nil
	}
	if ch == nil {
		s.registry.Forget(channelID)
		return nil
	}
	if ch.ParentID != categoryID {
		return nil
	}
	return ch
}

func (s *TicketService) notifyRequester(ctx context.Context, ticket domain.Ticket) bool {
	if err := s.notifier.SendDirect(ctx, ticket.RequesterID, ticketClosedDirect(s.brand)); err != nil {
		s.logger.Warn("requester notification failed",
			zap.String("requester_id", ticket.RequesterID),
			zap.Error(err))
		return false
	}
	return true
}

func (s *TicketService) writeCloseLog(ctx context.Context, settings domain.Settings, ticket domain.Ticket, closedBy string, at time.Time) bool {
	if settings.TicketLogChannelID == "" {
		return false
	}
	logChannel, err := s.directory.FetchChannel(ctx, settings.TicketLogChannelID)
	if err != nil || logChannel == nil {
		s.logger.Warn("ticket log channel unavailable",
			zap.String("channel_id", settings.TicketLogChannelID),
			zap.Error(err))
		return false
	}
	if err := s.notifier.SendToChannel(ctx, logChannel.ID, closeLogMessage(ticket, closedBy, at)); err != nil {
		s.logger.Warn("ticket log write failed",
			zap.String("channel_id", logChannel.ID),
			zap.Error(err))
		return false
	}
	return true
}

func ticketVisibility(settings domain.Settings, requesterID string) []platform.VisibilityRule {
	rules := []platform.VisibilityRule{
		{Kind: platform.SubjectEveryone, Deny: platform.PermissionView},
		{SubjectID: requesterID, Kind: platform.SubjectMember, Allow: platform.PermissionView | platform.PermissionSend},
	}
	for _, roleID := range settings.AllowedRoles {
		rules = append(rules, platform.VisibilityRule{
			SubjectID: roleID,
			Kind:      platform.SubjectRole,
			Allow:     platform.PermissionView,
		})
	}
	return rules
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
