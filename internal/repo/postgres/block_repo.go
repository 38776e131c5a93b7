package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// BlockRepo reads the block list maintained by the moderation surface. The
// engine only ever checks pairs; it never creates blocks.
type BlockRepo struct {
	pool *pgxpool.Pool
}

func NewBlockRepo(pool *pgxpool.Pool) *BlockRepo {
	return &BlockRepo{pool: pool}
}

func (r *BlockRepo) Exists(ctx context.Context, actorUserID, targetUserID int64) (bool, error) {
	if actorUserID <= 0 || targetUserID <= 0 {
		return false, fmt.Errorf("invalid block pair")
	}

	var exists bool
	err := r.pool.QueryRow(ctx, `
SELECT EXISTS (
	SELECT 1
	FROM blocks
	WHERE actor_user_id = $1 AND target_user_id = $2
)
`, actorUserID, targetUserID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check block: %w", err)
	}

	return exists, nil
}

// ListBlockedPairs returns every user id blocked by or blocking the given
// user, for bulk feed exclusion.
func (r *BlockRepo) ListBlockedPairs(ctx context.Context, userID int64) (map[int64]struct{}, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}

	rows, err := r.pool.Query(ctx, `
SELECT target_user_id FROM blocks WHERE actor_user_id = $1
UNION
SELECT actor_user_id FROM blocks WHERE target_user_id = $1
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list blocked pairs: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan blocked pair: %w", err)
		}
		out[id] = struct{}{}
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate blocked pairs: %w", rows.Err())
	}

	return out, nil
}
