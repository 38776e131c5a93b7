package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivankudzin/matchrank/internal/domain/enums"
	"github.com/ivankudzin/matchrank/internal/domain/model"
)

// SignalRepo stores recorded behavioral signals. The table is append-only;
// nothing in the engine updates or deletes a signal row.
type SignalRepo struct {
	pool *pgxpool.Pool
}

func NewSignalRepo(pool *pgxpool.Pool) *SignalRepo {
	return &SignalRepo{pool: pool}
}

func (r *SignalRepo) Insert(ctx context.Context, sig model.Signal) (model.Signal, error) {
	if sig.ID == "" || sig.ActorUserID <= 0 || sig.TargetUserID <= 0 || !sig.Type.Valid() {
		return model.Signal{}, fmt.Errorf("invalid signal payload")
	}
	if sig.CreatedAt.IsZero() {
		sig.CreatedAt = time.Now().UTC()
	}

	_, err := r.pool.Exec(ctx, `
INSERT INTO signals (
	id,
	actor_user_id,
	target_user_id,
	signal_type,
	metadata,
	created_at
) VALUES ($1, $2, $3, $4, $5, $6)
`, sig.ID, sig.ActorUserID, sig.TargetUserID, string(sig.Type), sig.Metadata, sig.CreatedAt.UTC())
	if err != nil {
		return model.Signal{}, fmt.Errorf("insert signal: %w", err)
	}

	return sig, nil
}

// ListRecentByActor returns the actor's newest signals, newest first,
// bounded by limit. This window feeds behavior profile aggregation.
func (r *SignalRepo) ListRecentByActor(ctx context.Context, actorUserID int64, limit int) ([]model.Signal, error) {
	if actorUserID <= 0 {
		return nil, fmt.Errorf("invalid actor user id")
	}
	if limit <= 0 {
		limit = 500
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, actor_user_id, target_user_id, signal_type, metadata, created_at
FROM signals
WHERE actor_user_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2
`, actorUserID, limit)
	if err != nil {
		return nil, fmt.Errorf("list signals by actor: %w", err)
	}
	defer rows.Close()

	items := make([]model.Signal, 0, limit)
	for rows.Next() {
		var (
			sig     model.Signal
			rawType string
		)
		if err := rows.Scan(
			&sig.ID,
			&sig.ActorUserID,
			&sig.TargetUserID,
			&rawType,
			&sig.Metadata,
			&sig.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}
		sig.Type = enums.SignalType(rawType)
		items = append(items, sig)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate signals: %w", rows.Err())
	}

	return items, nil
}

// ListRecentRightSwipeTargets returns the distinct targets of the actor's
// newest right swipes, newest first.
func (r *SignalRepo) ListRecentRightSwipeTargets(ctx context.Context, actorUserID int64, limit int) ([]int64, error) {
	if actorUserID <= 0 {
		return nil, fmt.Errorf("invalid actor user id")
	}
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx, `
SELECT target_user_id
FROM (
	SELECT DISTINCT ON (target_user_id) target_user_id, created_at
	FROM signals
	WHERE actor_user_id = $1 AND signal_type = $2
	ORDER BY target_user_id, created_at DESC
) liked
ORDER BY created_at DESC
LIMIT $3
`, actorUserID, string(enums.SignalRightSwipe), limit)
	if err != nil {
		return nil, fmt.Errorf("list right swipe targets: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0, limit)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan right swipe target: %w", err)
		}
		ids = append(ids, id)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate right swipe targets: %w", rows.Err())
	}

	return ids, nil
}

// HasRightSwipe reports whether actor has ever right-swiped target. Mutual
// match detection is two of these, resolved as one indexed lookup each.
func (r *SignalRepo) HasRightSwipe(ctx context.Context, actorUserID, targetUserID int64) (bool, error) {
	if actorUserID <= 0 || targetUserID <= 0 {
		return false, fmt.Errorf("invalid signal pair")
	}

	var exists bool
	err := r.pool.QueryRow(ctx, `
SELECT EXISTS (
	SELECT 1
	FROM signals
	WHERE actor_user_id = $1
		AND target_user_id = $2
		AND signal_type = $3
)
`, actorUserID, targetUserID, string(enums.SignalRightSwipe)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check right swipe: %w", err)
	}

	return exists, nil
}

// CountMutualRightSwipes counts the actor's right swipes that were
// reciprocated, over the actor's full signal history.
func (r *SignalRepo) CountMutualRightSwipes(ctx context.Context, actorUserID int64) (int, error) {
	if actorUserID <= 0 {
		return 0, fmt.Errorf("invalid actor user id")
	}

	var count int
	err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM (
	SELECT DISTINCT s.target_user_id
	FROM signals s
	WHERE s.actor_user_id = $1
		AND s.signal_type = $2
		AND EXISTS (
			SELECT 1
			FROM signals back
			WHERE back.actor_user_id = s.target_user_id
				AND back.target_user_id = $1
				AND back.signal_type = $2
		)
) mutual
`, actorUserID, string(enums.SignalRightSwipe)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count mutual right swipes: %w", err)
	}

	return count, nil
}

// CountInboundSince counts distinct actors that sent target a signal of the
// given type after the cutoff.
func (r *SignalRepo) CountInboundSince(ctx context.Context, targetUserID int64, signalType enums.SignalType, since time.Time) (int, error) {
	if targetUserID <= 0 {
		return 0, fmt.Errorf("invalid target user id")
	}
	if !signalType.Valid() {
		return 0, fmt.Errorf("invalid signal type")
	}

	var count int
	err := r.pool.QueryRow(ctx, `
SELECT COUNT(DISTINCT actor_user_id)
FROM signals
WHERE target_user_id = $1
	AND signal_type = $2
	AND created_at >= $3
`, targetUserID, string(signalType), since.UTC()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count inbound signals: %w", err)
	}

	return count, nil
}
