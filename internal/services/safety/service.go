package safety

import (
	"context"
	"errors"
	"fmt"

	"github.com/ivankudzin/matchrank/internal/domain/model"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrDependenciesNil = errors.New("safety filter dependencies are not configured")
)

// Exclusion reasons, in check order.
const (
	ReasonBlockedByViewer    = "blocked_by_viewer"
	ReasonBlockedByCandidate = "blocked_by_candidate"
	ReasonShadowBanned       = "shadow_banned"
	ReasonInactive           = "inactive"
)

type BlockStore interface {
	Exists(ctx context.Context, actorUserID, targetUserID int64) (bool, error)
	ListBlockedPairs(ctx context.Context, userID int64) (map[int64]struct{}, error)
}

// Service excludes candidates a viewer must never see. It runs strictly
// before ranking and uses only behavior/safety attributes; filtering on
// anything else is a platform violation.
type Service struct {
	blocks BlockStore
}

func NewService(blocks BlockStore) *Service {
	return &Service{blocks: blocks}
}

type Verdict struct {
	Allowed bool
	Reason  string
}

// IsEligible checks one (viewer, candidate) pair in fixed order: viewer
// block, candidate block, shadow ban, account status.
func (s *Service) IsEligible(ctx context.Context, viewerID int64, candidate model.User) (Verdict, error) {
	if viewerID <= 0 || candidate.ID <= 0 {
		return Verdict{}, ErrValidation
	}
	if s.blocks == nil {
		return Verdict{}, ErrDependenciesNil
	}

	blocked, err := s.blocks.Exists(ctx, viewerID, candidate.ID)
	if err != nil {
		return Verdict{}, fmt.Errorf("check viewer block: %w", err)
	}
	if blocked {
		return Verdict{Reason: ReasonBlockedByViewer}, nil
	}

	blocked, err = s.blocks.Exists(ctx, candidate.ID, viewerID)
	if err != nil {
		return Verdict{}, fmt.Errorf("check candidate block: %w", err)
	}
	if blocked {
		return Verdict{Reason: ReasonBlockedByCandidate}, nil
	}

	return s.verdictFromAttributes(candidate), nil
}

// FilterEligible drops ineligible candidates from a pool with one block-list
// read for the whole batch. Returns the survivors in input order plus drop
// counts per reason.
func (s *Service) FilterEligible(ctx context.Context, viewerID int64, candidates []model.User) ([]model.User, map[string]int, error) {
	if viewerID <= 0 {
		return nil, nil, ErrValidation
	}
	if s.blocks == nil {
		return nil, nil, ErrDependenciesNil
	}

	blockedWith, err := s.blocks.ListBlockedPairs(ctx, viewerID)
	if err != nil {
		return nil, nil, fmt.Errorf("load block pairs: %w", err)
	}

	eligible := make([]model.User, 0, len(candidates))
	dropped := map[string]int{}
	for _, candidate := range candidates {
		if _, ok := blockedWith[candidate.ID]; ok {
			dropped[ReasonBlockedByViewer]++
			continue
		}
		verdict := s.verdictFromAttributes(candidate)
		if !verdict.Allowed {
			dropped[verdict.Reason]++
			continue
		}
		eligible = append(eligible, candidate)
	}

	return eligible, dropped, nil
}

func (s *Service) verdictFromAttributes(candidate model.User) Verdict {
	if candidate.ShadowBanned {
		return Verdict{Reason: ReasonShadowBanned}
	}
	if !candidate.Active() {
		return Verdict{Reason: ReasonInactive}
	}
	return Verdict{Allowed: true}
}
