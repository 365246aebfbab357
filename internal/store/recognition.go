package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/robocomp/gesturecomp/internal/types"
)

// DefaultLimit is used by Recent when no positive limit is given.
const DefaultLimit = 50

// ErrNotFound is returned when a requested recognition does not exist.
var ErrNotFound = errors.New("not found")

// Record inserts a recognition. A zero CreatedAt is set to now.
func (s *Store) Record(ctx context.Context, r *types.Recognition) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO recognitions (id, gesture_index, gesture_prob, num_frames, height, width, depth, latency_ms, created_at_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.GestureIndex, r.GestureProb, r.NumFrames, r.Height, r.Width, r.Depth, r.LatencyMs, r.CreatedAt.UnixMilli(),
	)
	return err
}

// Get retrieves a recognition by its ID.
func (s *Store) Get(ctx context.Context, id string) (*types.Recognition, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, gesture_index, gesture_prob, num_frames, height, width, depth, latency_ms, created_at_ms
		 FROM recognitions WHERE id = ?`,
		id,
	)

	r, err := scanRecognition(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return r, nil
}

// Recent returns up to limit recognitions, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]types.Recognition, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, gesture_index, gesture_prob, num_frames, height, width, depth, latency_ms, created_at_ms
		 FROM recognitions ORDER BY created_at_ms DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.Recognition
	for rows.Next() {
		r, err := scanRecognition(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}

	return out, rows.Err()
}

// Count returns the number of recorded recognitions.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recognitions`).Scan(&n)
	return n, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecognition(sc scanner) (*types.Recognition, error) {
	r := &types.Recognition{}
	var createdMs int64

	err := sc.Scan(&r.ID, &r.GestureIndex, &r.GestureProb, &r.NumFrames,
		&r.Height, &r.Width, &r.Depth, &r.LatencyMs, &createdMs)
	if err != nil {
		return nil, err
	}

	r.CreatedAt = time.UnixMilli(createdMs)
	return r, nil
}
