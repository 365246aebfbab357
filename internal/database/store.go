// Package database provides the PostgreSQL recognition log used when the
// detector is configured with a postgres:// DSN.
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/robocomp/gesturecomp/internal/types"
)

// DefaultLimit is used by Recent when no positive limit is given.
const DefaultLimit = 50

// ErrNotFound is returned when a requested recognition does not exist.
var ErrNotFound = errors.New("not found")

// Store manages the PostgreSQL connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to the database and ensures the schema is initialized.
func New(ctx context.Context, connString string) (*Store, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	return &Store{pool: pool}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	query := `
		CREATE TABLE IF NOT EXISTS recognitions (
			id TEXT PRIMARY KEY,
			gesture_index INT NOT NULL,
			gesture_prob DOUBLE PRECISION NOT NULL,
			num_frames INT NOT NULL,
			height INT NOT NULL,
			width INT NOT NULL,
			depth INT NOT NULL,
			latency_ms BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS recognitions_created_at_idx ON recognitions (created_at);
	`
	_, err := pool.Exec(ctx, query)
	return err
}

// Close releases every pooled connection.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Record inserts a recognition. A zero CreatedAt is set to now.
func (s *Store) Record(ctx context.Context, r *types.Recognition) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO recognitions (id, gesture_index, gesture_prob, num_frames, height, width, depth, latency_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, r.ID, r.GestureIndex, r.GestureProb, r.NumFrames, r.Height, r.Width, r.Depth, r.LatencyMs, r.CreatedAt)
	return err
}

// Get retrieves a recognition by its ID.
func (s *Store) Get(ctx context.Context, id string) (*types.Recognition, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, gesture_index, gesture_prob, num_frames, height, width, depth, latency_ms, created_at
		FROM recognitions WHERE id = $1
	`, id)
	if err != nil {
		return nil, err
	}

	r, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByPos[types.Recognition])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Recent returns up to limit recognitions, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]types.Recognition, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, gesture_index, gesture_prob, num_frames, height, width, depth, latency_ms, created_at
		FROM recognitions ORDER BY created_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, pgx.RowToStructByPos[types.Recognition])
}

// Count returns the number of recorded recognitions.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM recognitions`).Scan(&n)
	return n, err
}
