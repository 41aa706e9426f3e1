package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-bot/internal/domain"
)

// DeletionRepository persists scheduled channel deletions.
type DeletionRepository interface {
	Create(ctx context.Context, task *domain.DeletionTask) error
	ListDue(ctx context.Context, now time.Time, limit int) ([]domain.DeletionTask, error)
	Reschedule(ctx context.Context, id string, dueAt time.Time, attempts int) error
	Delete(ctx context.Context, id string) error
}

type deletionRepository struct {
	pool *pgxpool.Pool
}

// NewDeletionRepository instantiates the Postgres-backed repository.
func NewDeletionRepository(pool *pgxpool.Pool) DeletionRepository {
	return &deletionRepository{pool: pool}
}

func (r *deletionRepository) Create(ctx context.Context, task *domain.DeletionTask) error {
	const query = `
        INSERT INTO scheduled_deletions (id, channel_id, due_at, attempts)
        VALUES ($1,$2,$3,$4)
        ON CONFLICT (channel_id) DO UPDATE SET due_at = LEAST(scheduled_deletions.due_at, EXCLUDED.due_at)
        RETURNING id, due_at, created_at`
	return r.pool.QueryRow(ctx, query,
		task.ID,
		task.ChannelID,
		task.DueAt,
		task.Attempts,
	).Scan(&task.ID, &task.DueAt, &task.CreatedAt)
}

func (r *deletionRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]domain.DeletionTask, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
        SELECT id, channel_id, due_at, attempts, created_at
        FROM scheduled_deletions
        WHERE due_at <= $1
        ORDER BY due_at ASC
        LIMIT $2`
	rows, err := r.pool.Query(ctx, query, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.DeletionTask
	for rows.Next() {
		var task domain.DeletionTask
		if err := rows.Scan(
			&task.ID,
			&task.ChannelID,
			&task.DueAt,
			&task.Attempts,
			&task.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, task)
	}
	return result, rows.Err()
}

func (r *deletionRepository) Reschedule(ctx context.Context, id string, dueAt time.Time, attempts int) error {
	const query = `UPDATE scheduled_deletions SET due_at=$1, attempts=$2 WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query, dueAt, attempts, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *deletionRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM scheduled_deletions WHERE id=$1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}
