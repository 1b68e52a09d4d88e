package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/neuroflow/backend/internal/models"
)

const createPredictionHistory = `
	CREATE TABLE IF NOT EXISTS prediction_history (
		id                    UUID PRIMARY KEY,
		task_title            TEXT NOT NULL,
		priority_score        DOUBLE PRECISION NOT NULL,
		completion_likelihood DOUBLE PRECISION NOT NULL,
		prediction_source     TEXT NOT NULL,
		confidence            TEXT NOT NULL,
		fallback_reason       TEXT NOT NULL DEFAULT '',
		task                  JSONB NOT NULL,
		user_state            JSONB NOT NULL,
		created_at            TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS prediction_history_created_at_idx ON prediction_history (created_at DESC);
`

// DB is the subset of *pgxpool.Pool the repo uses, so tests can swap it.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ DB = (*pgxpool.Pool)(nil)

// PredictionRepo stores prediction history. It is write-mostly audit data and
// is never consulted to answer a prediction.
type PredictionRepo struct {
	pool DB
}

func NewPredictionRepo(pool DB) *PredictionRepo {
	return &PredictionRepo{pool: pool}
}

// EnsureSchema creates the history table if it does not exist.
func (r *PredictionRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, createPredictionHistory)
	return err
}

// Create inserts a record. Inserting an ID that already exists is a no-op so
// a retried job does not fail on its own earlier write.
func (r *PredictionRepo) Create(ctx context.Context, p *models.PredictionRecord) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO prediction_history (id, task_title, priority_score, completion_likelihood, prediction_source, confidence, fallback_reason, task, user_state)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
		RETURNING created_at
	`, p.ID, p.TaskTitle, p.PriorityScore, p.CompletionLikelihood, p.PredictionSource, p.Confidence, p.FallbackReason, p.Task, p.UserState).Scan(&p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	return err
}

func (r *PredictionRepo) ListRecent(ctx context.Context, limit int) ([]*models.PredictionRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, task_title, priority_score, completion_likelihood, prediction_source, confidence, fallback_reason, task, user_state, created_at
		FROM prediction_history ORDER BY created_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.PredictionRecord
	for rows.Next() {
		var p models.PredictionRecord
		if err := rows.Scan(&p.ID, &p.TaskTitle, &p.PriorityScore, &p.CompletionLikelihood, &p.PredictionSource, &p.Confidence, &p.FallbackReason, &p.Task, &p.UserState, &p.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}
