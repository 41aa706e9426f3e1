package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ticket-bot/internal/domain"
)

type memoryDeletionRepository struct {
	mu    sync.Mutex
	tasks map[string]domain.DeletionTask
}

// NewMemoryDeletionRepository keeps tasks in process memory. Used when no
// Postgres DSN is configured; pending deletions do not survive a restart.
func NewMemoryDeletionRepository() DeletionRepository {
	return &memoryDeletionRepository{tasks: make(map[string]domain.DeletionTask)}
}

func (r *memoryDeletionRepository) Create(_ context.Context, task *domain.DeletionTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.tasks {
		if existing.ChannelID != task.ChannelID {
			continue
		}
		if task.DueAt.Before(existing.DueAt) {
			existing.DueAt = task.DueAt
			r.tasks[id] = existing
		}
		*task = existing
		return nil
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}
	r.tasks[task.ID] = *task
	return nil
}

func (r *memoryDeletionRepository) ListDue(_ context.Context, now time.Time, limit int) ([]domain.DeletionTask, error) {
	if limit <= 0 {
		limit = 50
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var due []domain.DeletionTask
	for _, task := range r.tasks {
		if !task.DueAt.After(now) {
			due = append(due, task)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].DueAt.Before(due[j].DueAt) })
	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (r *memoryDeletionRepository) Reschedule(_ context.Context, id string, dueAt time.Time, attempts int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return pgx.ErrNoRows
	}
	task.DueAt = dueAt
	task.Attempts = attempts
	r.tasks[id] = task
	return nil
}

func (r *memoryDeletionRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tasks, id)
	return nil
}
