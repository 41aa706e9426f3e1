package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/events"
	"github.com/spec-kit/ticket-bot/internal/identity"
	"github.com/spec-kit/ticket-bot/internal/platform"
	"github.com/spec-kit/ticket-bot/internal/repository"
)

const (
	defaultBatchSize   = 50
	defaultMaxAttempts = 3
)

// DeletionScheduler turns closed tickets into durable deletion tasks and
// deletes their channels once due.
type DeletionScheduler struct {
	repo        repository.DeletionRepository
	directory   platform.ChannelDirectory
	registry    *identity.Registry
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	interval    time.Duration
	maxAttempts int
	now         func() time.Time
}

// DeletionDependencies bundles collaborators for the scheduler.
type DeletionDependencies struct {
	Repo         repository.DeletionRepository
	Directory    platform.ChannelDirectory
	Registry     *identity.Registry
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
	PollInterval time.Duration
	MaxAttempts  int
	Now          func() time.Time
}

// NewDeletionScheduler constructs the scheduler.
func NewDeletionScheduler(deps DeletionDependencies) *DeletionScheduler {
	s := &DeletionScheduler{
		repo:        deps.Repo,
		directory:   deps.Directory,
		registry:    deps.Registry,
		dispatcher:  deps.Dispatcher,
		logger:      deps.Logger,
		interval:    deps.PollInterval,
		maxAttempts: deps.MaxAttempts,
		now:         deps.Now,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.interval <= 0 {
		s.interval = time.Second
	}
	if s.maxAttempts <= 0 {
		s.maxAttempts = defaultMaxAttempts
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Schedule records that channelID must be deleted after delay.
func (s *DeletionScheduler) Schedule(ctx context.Context, channelID string, delay time.Duration) (domain.DeletionTask, error) {
	task := domain.DeletionTask{
		ID:        uuid.NewString(),
		ChannelID: channelID,
		DueAt:     s.now().Add(delay),
	}
	if err := s.repo.Create(ctx, &task); err != nil {
		return domain.DeletionTask{}, err
	}
	s.logger.Debug("deletion scheduled",
		zap.String("channel_id", channelID),
		zap.Time("due_at", task.DueAt))
	return task, nil
}

// ProcessDue deletes the channels of all due tasks and returns how many tasks
// were settled. Failed deletions are retried until maxAttempts, then dropped.
func (s *DeletionScheduler) ProcessDue(ctx context.Context) (int, error) {
	now := s.now()
	tasks, err := s.repo.ListDue(ctx, now, defaultBatchSize)
	if err != nil {
		return 0, err
	}

	settled := 0
	for _, task := range tasks {
		if ctx.Err() != nil {
			return settled, ctx.Err()
		}
		deleteErr := s.directory.DeleteChannel(ctx, task.ChannelID)
		attempts := task.Attempts + 1

		if deleteErr != nil && attempts < s.maxAttempts {
			retryAt := now.Add(s.backoff(attempts))
			if err := s.repo.Reschedule(ctx, task.ID, retryAt, attempts); err != nil {
				s.logger.Error("reschedule deletion", zap.String("task_id", task.ID), zap.Error(err))
			}
			s.logger.Warn("channel deletion failed; retrying",
				zap.String("channel_id", task.ChannelID),
				zap.Int("attempt", attempts),
				zap.Error(deleteErr))
			continue
		}

		if err := s.repo.Delete(ctx, task.ID); err != nil {
			s.logger.Error("remove deletion task", zap.String("task_id", task.ID), zap.Error(err))
			continue
		}
		settled++
		if s.registry != nil {
			s.registry.Forget(task.ChannelID)
		}

		payload := events.TicketDeletedPayload{TaskID: task.ID, Attempts: attempts}
		if deleteErr != nil {
			payload.Err = deleteErr.Error()
			s.logger.Warn("channel deletion abandoned",
				zap.String("channel_id", task.ChannelID),
				zap.Int("attempts", attempts),
				zap.Error(deleteErr))
		}
		s.publish(ctx, task.ChannelID, payload)
	}
	return settled, nil
}

// Run drains due tasks immediately, then on every poll interval until ctx is
// cancelled. Tasks persisted before a restart are picked up by the first pass.
func (s *DeletionScheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if _, err := s.ProcessDue(ctx); err != nil && ctx.Err() == nil {
			s.logger.Error("process due deletions", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *DeletionScheduler) backoff(attempts int) time.Duration {
	return s.interval * time.Duration(1<<attempts)
}

func (s *DeletionScheduler) publish(ctx context.Context, channelID string, payload events.TicketDeletedPayload) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketDeleted,
		ChannelID: channelID,
		Timestamp: s.now(),
		Payload:   payload,
	})
}
