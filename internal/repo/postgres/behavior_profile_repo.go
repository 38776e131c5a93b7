package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivankudzin/matchrank/internal/domain/model"
)

var ErrBehaviorProfileNotFound = errors.New("behavior profile not found")

type BehaviorProfileRepo struct {
	pool *pgxpool.Pool
}

func NewBehaviorProfileRepo(pool *pgxpool.Pool) *BehaviorProfileRepo {
	return &BehaviorProfileRepo{pool: pool}
}

// Upsert replaces the user's profile row wholesale. Partial updates are
// never issued; the aggregator always recomputes every column.
func (r *BehaviorProfileRepo) Upsert(ctx context.Context, p model.BehaviorProfile) error {
	if p.UserID <= 0 {
		return fmt.Errorf("invalid behavior profile payload")
	}
	if p.RecomputedAt.IsZero() {
		p.RecomputedAt = time.Now().UTC()
	}

	_, err := r.pool.Exec(ctx, `
INSERT INTO behavior_profiles (
	user_id,
	right_swipes,
	left_swipes,
	swipe_right_rate,
	avg_view_duration_ms,
	matches,
	match_rate,
	messages_sent,
	messages_replied,
	response_rate,
	paid_chats,
	calls,
	meetings,
	gifts_sent,
	paid_interactions,
	signals_in_window,
	last_active_at,
	recomputed_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
ON CONFLICT (user_id) DO UPDATE SET
	right_swipes = EXCLUDED.right_swipes,
	left_swipes = EXCLUDED.left_swipes,
	swipe_right_rate = EXCLUDED.swipe_right_rate,
	avg_view_duration_ms = EXCLUDED.avg_view_duration_ms,
	matches = EXCLUDED.matches,
	match_rate = EXCLUDED.match_rate,
	messages_sent = EXCLUDED.messages_sent,
	messages_replied = EXCLUDED.messages_replied,
	response_rate = EXCLUDED.response_rate,
	paid_chats = EXCLUDED.paid_chats,
	calls = EXCLUDED.calls,
	meetings = EXCLUDED.meetings,
	gifts_sent = EXCLUDED.gifts_sent,
	paid_interactions = EXCLUDED.paid_interactions,
	signals_in_window = EXCLUDED.signals_in_window,
	last_active_at = EXCLUDED.last_active_at,
	recomputed_at = EXCLUDED.recomputed_at
`,
		p.UserID,
		p.RightSwipes,
		p.LeftSwipes,
		p.SwipeRightRate,
		p.AvgViewDurationMS,
		p.Matches,
		p.MatchRate,
		p.MessagesSent,
		p.MessagesReplied,
		p.ResponseRate,
		p.PaidChats,
		p.Calls,
		p.Meetings,
		p.GiftsSent,
		p.PaidInteractions,
		p.SignalsInWindow,
		p.LastActiveAt,
		p.RecomputedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert behavior profile: %w", err)
	}

	return nil
}

func (r *BehaviorProfileRepo) Get(ctx context.Context, userID int64) (model.BehaviorProfile, error) {
	if userID <= 0 {
		return model.BehaviorProfile{}, fmt.Errorf("invalid user id")
	}

	var p model.BehaviorProfile
	err := r.pool.QueryRow(ctx, `
SELECT
	bp.user_id,
	bp.right_swipes,
	bp.left_swipes,
	bp.swipe_right_rate,
	bp.avg_view_duration_ms,
	bp.matches,
	bp.match_rate,
	bp.messages_sent,
	bp.messages_replied,
	bp.response_rate,
	bp.paid_chats,
	bp.calls,
	bp.meetings,
	bp.gifts_sent,
	bp.paid_interactions,
	bp.signals_in_window,
	bp.last_active_at,
	bp.recomputed_at,
	EXISTS (
		SELECT 1 FROM learned_preferences lp WHERE lp.user_id = bp.user_id
	) AS has_learned_prefs
FROM behavior_profiles bp
WHERE bp.user_id = $1
`, userID).Scan(
		&p.UserID,
		&p.RightSwipes,
		&p.LeftSwipes,
		&p.SwipeRightRate,
		&p.AvgViewDurationMS,
		&p.Matches,
		&p.MatchRate,
		&p.MessagesSent,
		&p.MessagesReplied,
		&p.ResponseRate,
		&p.PaidChats,
		&p.Calls,
		&p.Meetings,
		&p.GiftsSent,
		&p.PaidInteractions,
		&p.SignalsInWindow,
		&p.LastActiveAt,
		&p.RecomputedAt,
		&p.HasLearnedPrefs,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.BehaviorProfile{}, ErrBehaviorProfileNotFound
		}
		return model.BehaviorProfile{}, fmt.Errorf("get behavior profile: %w", err)
	}

	return p, nil
}
