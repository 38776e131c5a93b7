package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrHeatingNotFound = errors.New("heating activation not found")

// HeatingRecord is a single stored activation. Activations are append-only;
// the authoritative state is the newest non-expired row with decay applied
// at read time.
type HeatingRecord struct {
	ID          int64
	UserID      int64
	Trigger     string
	InitialHeat float64
	TriggeredAt time.Time
	ExpiresAt   time.Time
}

type HeatingRepo struct {
	pool *pgxpool.Pool
}

func NewHeatingRepo(pool *pgxpool.Pool) *HeatingRepo {
	return &HeatingRepo{pool: pool}
}

func (r *HeatingRepo) Insert(ctx context.Context, rec HeatingRecord) (HeatingRecord, error) {
	if rec.UserID <= 0 || rec.Trigger == "" || rec.InitialHeat <= 0 {
		return HeatingRecord{}, fmt.Errorf("invalid heating payload")
	}
	if rec.TriggeredAt.IsZero() || !rec.ExpiresAt.After(rec.TriggeredAt) {
		return HeatingRecord{}, fmt.Errorf("invalid heating window")
	}

	err := r.pool.QueryRow(ctx, `
INSERT INTO heating_states (
	user_id,
	trigger,
	initial_heat,
	triggered_at,
	expires_at
) VALUES ($1, $2, $3, $4, $5)
RETURNING id
`, rec.UserID, rec.Trigger, rec.InitialHeat, rec.TriggeredAt.UTC(), rec.ExpiresAt.UTC()).Scan(&rec.ID)
	if err != nil {
		return HeatingRecord{}, fmt.Errorf("insert heating activation: %w", err)
	}

	return rec, nil
}

// GetLatestActive returns the user's newest activation that has not expired
// as of now, or ErrHeatingNotFound.
func (r *HeatingRepo) GetLatestActive(ctx context.Context, userID int64, now time.Time) (HeatingRecord, error) {
	if userID <= 0 {
		return HeatingRecord{}, fmt.Errorf("invalid user id")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var rec HeatingRecord
	err := r.pool.QueryRow(ctx, `
SELECT id, user_id, trigger, initial_heat, triggered_at, expires_at
FROM heating_states
WHERE user_id = $1 AND expires_at > $2
ORDER BY triggered_at DESC, id DESC
LIMIT 1
`, userID, now.UTC()).Scan(
		&rec.ID,
		&rec.UserID,
		&rec.Trigger,
		&rec.InitialHeat,
		&rec.TriggeredAt,
		&rec.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return HeatingRecord{}, ErrHeatingNotFound
		}
		return HeatingRecord{}, fmt.Errorf("get latest heating activation: %w", err)
	}

	return rec, nil
}

// GetLatestActiveMany loads the newest non-expired activation per user for a
// batch of users.
func (r *HeatingRepo) GetLatestActiveMany(ctx context.Context, userIDs []int64, now time.Time) (map[int64]HeatingRecord, error) {
	if len(userIDs) == 0 {
		return map[int64]HeatingRecord{}, nil
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	rows, err := r.pool.Query(ctx, `
SELECT DISTINCT ON (user_id) id, user_id, trigger, initial_heat, triggered_at, expires_at
FROM heating_states
WHERE user_id = ANY($1) AND expires_at > $2
ORDER BY user_id, triggered_at DESC, id DESC
`, userIDs, now.UTC())
	if err != nil {
		return nil, fmt.Errorf("get heating activations batch: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]HeatingRecord, len(userIDs))
	for rows.Next() {
		var rec HeatingRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.Trigger,
			&rec.InitialHeat,
			&rec.TriggeredAt,
			&rec.ExpiresAt,
		); err != nil {
			return nil, fmt.Errorf("scan heating activation: %w", err)
		}
		out[rec.UserID] = rec
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate heating activations: %w", rows.Err())
	}

	return out, nil
}

// ExpireByUser force-expires every live activation for the user. Used by the
// admin deactivation path.
func (r *HeatingRepo) ExpireByUser(ctx context.Context, userID int64, now time.Time) (int64, error) {
	if userID <= 0 {
		return 0, fmt.Errorf("invalid user id")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	result, err := r.pool.Exec(ctx, `
UPDATE heating_states
SET expires_at = $2
WHERE user_id = $1 AND expires_at > $2
`, userID, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("expire heating activations: %w", err)
	}

	return result.RowsAffected(), nil
}

// DeleteExpiredBefore removes activations that expired before the cutoff.
// Safe to run repeatedly.
func (r *HeatingRepo) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if cutoff.IsZero() {
		return 0, fmt.Errorf("invalid cutoff")
	}

	result, err := r.pool.Exec(ctx, `
DELETE FROM heating_states
WHERE expires_at < $1
`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired heating activations: %w", err)
	}

	return result.RowsAffected(), nil
}

// CountActive counts users with a live activation as of now.
func (r *HeatingRepo) CountActive(ctx context.Context, now time.Time) (int, error) {
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var count int
	err := r.pool.QueryRow(ctx, `
SELECT COUNT(DISTINCT user_id)
FROM heating_states
WHERE expires_at > $1
`, now.UTC()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count active heating users: %w", err)
	}

	return count, nil
}
