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

var ErrUserNotFound = errors.New("user not found")

// UserRepo is the engine's read view of the user/profile store. The engine
// never writes user rows.
type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

const userColumns = `
	user_id,
	age,
	COALESCE(city_id, ''),
	lat,
	lon,
	photo_count,
	has_bio,
	COALESCE(body_type, ''),
	COALESCE(style, ''),
	COALESCE(interests, '{}'),
	account_status,
	shadow_banned,
	is_royal,
	created_at,
	last_active_at`

func scanUser(row pgx.Row) (model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID,
		&u.Age,
		&u.CityID,
		&u.Lat,
		&u.Lon,
		&u.PhotoCount,
		&u.HasBio,
		&u.BodyType,
		&u.Style,
		&u.Interests,
		&u.AccountStatus,
		&u.ShadowBanned,
		&u.IsRoyal,
		&u.CreatedAt,
		&u.LastActiveAt,
	)
	return u, err
}

func (r *UserRepo) Get(ctx context.Context, userID int64) (model.User, error) {
	if userID <= 0 {
		return model.User{}, fmt.Errorf("invalid user id")
	}

	u, err := scanUser(r.pool.QueryRow(ctx, `
SELECT`+userColumns+`
FROM users
WHERE user_id = $1
`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("get user: %w", err)
	}

	return u, nil
}

// GetMany loads a batch of users keyed by id. Missing ids are simply absent
// from the result.
func (r *UserRepo) GetMany(ctx context.Context, userIDs []int64) (map[int64]model.User, error) {
	if len(userIDs) == 0 {
		return map[int64]model.User{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT`+userColumns+`
FROM users
WHERE user_id = ANY($1)
`, userIDs)
	if err != nil {
		return nil, fmt.Errorf("get users batch: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]model.User, len(userIDs))
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out[u.ID] = u
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate users batch: %w", rows.Err())
	}

	return out, nil
}

type CandidateQuery struct {
	ViewerUserID int64
	ExcludeIDs   []int64
	Limit        int
}

// ListCandidates returns the raw candidate pool for a viewer: active
// accounts, most recently active first. Per-candidate eligibility checks
// (blocks, shadow bans) run downstream so drops stay observable.
func (r *UserRepo) ListCandidates(ctx context.Context, q CandidateQuery) ([]model.User, error) {
	if q.ViewerUserID <= 0 {
		return nil, fmt.Errorf("invalid viewer id")
	}
	if q.Limit <= 0 {
		q.Limit = 100
	}
	exclude := q.ExcludeIDs
	if exclude == nil {
		exclude = []int64{}
	}

	rows, err := r.pool.Query(ctx, `
SELECT`+userColumns+`
FROM users
WHERE account_status = $1
	AND user_id <> $2
	AND user_id <> ALL($3)
ORDER BY last_active_at DESC NULLS LAST, user_id DESC
LIMIT $4
`, model.AccountStatusActive, q.ViewerUserID, exclude, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	items := make([]model.User, 0, q.Limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		items = append(items, u)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate candidates: %w", rows.Err())
	}

	return items, nil
}

// CountActiveSince counts active accounts seen after the cutoff.
func (r *UserRepo) CountActiveSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM users
WHERE account_status = $1
	AND last_active_at >= $2
`, model.AccountStatusActive, since.UTC()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count active users: %w", err)
	}

	return count, nil
}
