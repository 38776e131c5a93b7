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

var ErrPreferencesNotFound = errors.New("learned preferences not found")

type PreferenceRepo struct {
	pool *pgxpool.Pool
}

func NewPreferenceRepo(pool *pgxpool.Pool) *PreferenceRepo {
	return &PreferenceRepo{pool: pool}
}

// Upsert replaces the user's learned preferences wholesale. Old clusters are
// never merged into new ones.
func (r *PreferenceRepo) Upsert(ctx context.Context, p model.LearnedPreferences) error {
	if p.UserID <= 0 {
		return fmt.Errorf("invalid preferences payload")
	}
	if p.LearnedAt.IsZero() {
		p.LearnedAt = time.Now().UTC()
	}

	_, err := r.pool.Exec(ctx, `
INSERT INTO learned_preferences (
	user_id,
	age_min,
	age_max,
	max_distance_km,
	body_types,
	styles,
	interests,
	liked_analyzed,
	confidence_level,
	learned_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (user_id) DO UPDATE SET
	age_min = EXCLUDED.age_min,
	age_max = EXCLUDED.age_max,
	max_distance_km = EXCLUDED.max_distance_km,
	body_types = EXCLUDED.body_types,
	styles = EXCLUDED.styles,
	interests = EXCLUDED.interests,
	liked_analyzed = EXCLUDED.liked_analyzed,
	confidence_level = EXCLUDED.confidence_level,
	learned_at = EXCLUDED.learned_at
`,
		p.UserID,
		p.AgeMin,
		p.AgeMax,
		p.MaxDistanceKM,
		p.BodyTypes,
		p.Styles,
		p.Interests,
		p.LikedAnalyzed,
		p.ConfidenceLevel,
		p.LearnedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert learned preferences: %w", err)
	}

	return nil
}

func (r *PreferenceRepo) Get(ctx context.Context, userID int64) (model.LearnedPreferences, error) {
	if userID <= 0 {
		return model.LearnedPreferences{}, fmt.Errorf("invalid user id")
	}

	var p model.LearnedPreferences
	err := r.pool.QueryRow(ctx, `
SELECT
	user_id,
	age_min,
	age_max,
	max_distance_km,
	body_types,
	styles,
	interests,
	liked_analyzed,
	confidence_level,
	learned_at
FROM learned_preferences
WHERE user_id = $1
`, userID).Scan(
		&p.UserID,
		&p.AgeMin,
		&p.AgeMax,
		&p.MaxDistanceKM,
		&p.BodyTypes,
		&p.Styles,
		&p.Interests,
		&p.LikedAnalyzed,
		&p.ConfidenceLevel,
		&p.LearnedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.LearnedPreferences{}, ErrPreferencesNotFound
		}
		return model.LearnedPreferences{}, fmt.Errorf("get learned preferences: %w", err)
	}

	return p, nil
}
