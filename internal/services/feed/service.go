package feed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ivankudzin/matchrank/internal/config"
	"github.com/ivankudzin/matchrank/internal/domain/model"
	"github.com/ivankudzin/matchrank/internal/infra/metrics"
	pgrepo "github.com/ivankudzin/matchrank/internal/repo/postgres"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrBadCursor       = errors.New("malformed feed cursor")
	ErrDependenciesNil = errors.New("feed dependencies are not configured")
)

type CandidateStore interface {
	ListCandidates(ctx context.Context, q pgrepo.CandidateQuery) ([]model.User, error)
}

type SafetyFilter interface {
	FilterEligible(ctx context.Context, viewerID int64, candidates []model.User) ([]model.User, map[string]int, error)
}

type Ranker interface {
	Rank(ctx context.Context, viewerID int64, candidates []model.User) ([]model.RankingScore, error)
}

// Service builds feed pages: oversized raw pool, safety filter, ranking,
// sort, truncate, cursor.
type Service struct {
	candidates CandidateStore
	safety     SafetyFilter
	ranker     Ranker
	metrics    *metrics.Metrics
	log        *zap.Logger
	cfg        config.FeedConfig
	now        func() time.Time
}

func NewService(candidates CandidateStore, safety SafetyFilter, ranker Ranker, cfg config.FeedConfig) *Service {
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 20
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 50
	}
	if cfg.PoolFactor <= 0 {
		cfg.PoolFactor = 5
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 3 * time.Second
	}

	return &Service{
		candidates: candidates,
		safety:     safety,
		ranker:     ranker,
		log:        zap.NewNop(),
		cfg:        cfg,
		now:        time.Now,
	}
}

func (s *Service) AttachLogger(log *zap.Logger) {
	if log != nil {
		s.log = log
	}
}

func (s *Service) AttachMetrics(m *metrics.Metrics) {
	s.metrics = m
}

type Page struct {
	Items      []model.RankingScore
	NextCursor string
	HasMore    bool
}

// GetFeed returns one ranked page. The cursor's seen list and the explicit
// exclusions are removed from the pool before ranking; a candidate blocked
// in either direction never reaches the ranker.
func (s *Service) GetFeed(ctx context.Context, viewerID int64, limit int, rawCursor string, excludeIDs []int64) (Page, error) {
	started := s.now()

	page, err := s.getFeed(ctx, viewerID, limit, rawCursor, excludeIDs)
	if s.metrics != nil {
		s.metrics.ObserveFeed(s.now().Sub(started).Seconds(), err == nil)
	}
	return page, err
}

func (s *Service) getFeed(ctx context.Context, viewerID int64, limit int, rawCursor string, excludeIDs []int64) (Page, error) {
	if viewerID <= 0 {
		return Page{}, ErrValidation
	}
	if s.candidates == nil || s.safety == nil || s.ranker == nil {
		return Page{}, ErrDependenciesNil
	}

	if limit <= 0 {
		limit = s.cfg.DefaultPageSize
	}
	if limit > s.cfg.MaxPageSize {
		limit = s.cfg.MaxPageSize
	}

	cur, err := decodeCursor(rawCursor)
	if err != nil {
		return Page{}, fmt.Errorf("%w: %v", ErrBadCursor, err)
	}

	exclude := make([]int64, 0, len(cur.Seen)+len(excludeIDs))
	exclude = append(exclude, cur.Seen...)
	exclude = append(exclude, excludeIDs...)

	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()

	pool, err := s.candidates.ListCandidates(fetchCtx, pgrepo.CandidateQuery{
		ViewerUserID: viewerID,
		ExcludeIDs:   exclude,
		Limit:        limit * s.cfg.PoolFactor,
	})
	if err != nil {
		return Page{}, fmt.Errorf("fetch candidate pool: %w", err)
	}

	eligible, dropped, err := s.safety.FilterEligible(ctx, viewerID, pool)
	if err != nil {
		return Page{}, fmt.Errorf("safety filter: %w", err)
	}
	if s.metrics != nil {
		for reason, n := range dropped {
			for i := 0; i < n; i++ {
				s.metrics.IncCandidateDropped(reason)
			}
		}
	}

	ranked, err := s.ranker.Rank(ctx, viewerID, eligible)
	if err != nil {
		return Page{}, err
	}

	hasMore := len(ranked) > limit
	if hasMore {
		ranked = ranked[:limit]
	}

	page := Page{Items: ranked, HasMore: hasMore}
	if hasMore && len(ranked) > 0 {
		seen := cur.Seen
		for _, item := range ranked {
			seen = append(seen, item.CandidateUserID)
		}
		page.NextCursor = encodeCursor(cursor{
			LastID: ranked[len(ranked)-1].CandidateUserID,
			Seen:   seen,
		})
	}

	return page, nil
}
