package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivankudzin/matchrank/internal/domain/enums"
)

// EngineDailyMetrics is one rollup row: per-day activity counts plus the
// population averages sampled at rollup time.
type EngineDailyMetrics struct {
	Day                time.Time
	ActiveUsers        int
	SignalsRecorded    int
	RightSwipes        int
	MatchesDetected    int
	HeatingActivations int
	UsersWithProfiles  int
	UsersWithPrefs     int
	AvgMatchRate       float64
	AvgResponseRate    float64
	PreferenceAdoption float64
	CollectedAt        time.Time
}

type EngineMetricsRepo struct {
	pool *pgxpool.Pool
}

func NewEngineMetricsRepo(pool *pgxpool.Pool) *EngineMetricsRepo {
	return &EngineMetricsRepo{pool: pool}
}

// CollectSnapshot aggregates live engine state into a metrics row for the
// given day. Counts cover [day, day+24h); averages sample the current
// population so repeated runs for the same day converge, keeping the rollup
// idempotent.
func (r *EngineMetricsRepo) CollectSnapshot(ctx context.Context, day time.Time, now time.Time) (EngineDailyMetrics, error) {
	if day.IsZero() {
		return EngineDailyMetrics{}, fmt.Errorf("invalid day")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	dayStart := day.UTC().Truncate(24 * time.Hour)
	dayEnd := dayStart.Add(24 * time.Hour)

	m := EngineDailyMetrics{Day: dayStart, CollectedAt: now.UTC()}
	err := r.pool.QueryRow(ctx, `
SELECT
	(SELECT COUNT(DISTINCT actor_user_id) FROM signals
		WHERE created_at >= $1 AND created_at < $2),
	(SELECT COUNT(*) FROM signals
		WHERE created_at >= $1 AND created_at < $2),
	(SELECT COUNT(*) FROM signals
		WHERE signal_type = $3 AND created_at >= $1 AND created_at < $2),
	(SELECT COUNT(*) FROM signals s
		WHERE s.signal_type = $3
			AND s.created_at >= $1 AND s.created_at < $2
			AND EXISTS (
				SELECT 1 FROM signals back
				WHERE back.actor_user_id = s.target_user_id
					AND back.target_user_id = s.actor_user_id
					AND back.signal_type = $3
					AND back.created_at <= s.created_at
			)),
	(SELECT COUNT(*) FROM heating_states
		WHERE triggered_at >= $1 AND triggered_at < $2),
	(SELECT COUNT(*) FROM behavior_profiles),
	(SELECT COUNT(*) FROM learned_preferences),
	(SELECT COALESCE(AVG(match_rate), 0) FROM behavior_profiles),
	(SELECT COALESCE(AVG(response_rate), 0) FROM behavior_profiles
		WHERE messages_sent > 0)
`, dayStart, dayEnd, string(enums.SignalRightSwipe)).Scan(
		&m.ActiveUsers,
		&m.SignalsRecorded,
		&m.RightSwipes,
		&m.MatchesDetected,
		&m.HeatingActivations,
		&m.UsersWithProfiles,
		&m.UsersWithPrefs,
		&m.AvgMatchRate,
		&m.AvgResponseRate,
	)
	if err != nil {
		return EngineDailyMetrics{}, fmt.Errorf("collect engine metrics snapshot: %w", err)
	}

	if m.UsersWithProfiles > 0 {
		m.PreferenceAdoption = float64(m.UsersWithPrefs) / float64(m.UsersWithProfiles)
	}

	return m, nil
}

func (r *EngineMetricsRepo) UpsertDaily(ctx context.Context, m EngineDailyMetrics) error {
	if m.Day.IsZero() {
		return fmt.Errorf("invalid metrics payload")
	}

	_, err := r.pool.Exec(ctx, `
INSERT INTO engine_daily_metrics (
	day,
	active_users,
	signals_recorded,
	right_swipes,
	matches_detected,
	heating_activations,
	users_with_profiles,
	users_with_prefs,
	avg_match_rate,
	avg_response_rate,
	preference_adoption,
	collected_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (day) DO UPDATE SET
	active_users = EXCLUDED.active_users,
	signals_recorded = EXCLUDED.signals_recorded,
	right_swipes = EXCLUDED.right_swipes,
	matches_detected = EXCLUDED.matches_detected,
	heating_activations = EXCLUDED.heating_activations,
	users_with_profiles = EXCLUDED.users_with_profiles,
	users_with_prefs = EXCLUDED.users_with_prefs,
	avg_match_rate = EXCLUDED.avg_match_rate,
	avg_response_rate = EXCLUDED.avg_response_rate,
	preference_adoption = EXCLUDED.preference_adoption,
	collected_at = EXCLUDED.collected_at
`,
		m.Day.UTC().Truncate(24*time.Hour),
		m.ActiveUsers,
		m.SignalsRecorded,
		m.RightSwipes,
		m.MatchesDetected,
		m.HeatingActivations,
		m.UsersWithProfiles,
		m.UsersWithPrefs,
		m.AvgMatchRate,
		m.AvgResponseRate,
		m.PreferenceAdoption,
		m.CollectedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert engine daily metrics: %w", err)
	}

	return nil
}

func (r *EngineMetricsRepo) ListRecent(ctx context.Context, days int) ([]EngineDailyMetrics, error) {
	if days <= 0 {
		days = 7
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	day,
	active_users,
	signals_recorded,
	right_swipes,
	matches_detected,
	heating_activations,
	users_with_profiles,
	users_with_prefs,
	avg_match_rate,
	avg_response_rate,
	preference_adoption,
	collected_at
FROM engine_daily_metrics
ORDER BY day DESC
LIMIT $1
`, days)
	if err != nil {
		return nil, fmt.Errorf("list engine daily metrics: %w", err)
	}
	defer rows.Close()

	items := make([]EngineDailyMetrics, 0, days)
	for rows.Next() {
		var m EngineDailyMetrics
		if err := rows.Scan(
			&m.Day,
			&m.ActiveUsers,
			&m.SignalsRecorded,
			&m.RightSwipes,
			&m.MatchesDetected,
			&m.HeatingActivations,
			&m.UsersWithProfiles,
			&m.UsersWithPrefs,
			&m.AvgMatchRate,
			&m.AvgResponseRate,
			&m.PreferenceAdoption,
			&m.CollectedAt,
		); err != nil {
			return nil, fmt.Errorf("scan engine daily metrics: %w", err)
		}
		items = append(items, m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate engine daily metrics: %w", rows.Err())
	}

	return items, nil
}
