package ranking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ivankudzin/matchrank/internal/config"
	"github.com/ivankudzin/matchrank/internal/domain/enums"
	"github.com/ivankudzin/matchrank/internal/domain/model"
	pgrepo "github.com/ivankudzin/matchrank/internal/repo/postgres"
	behaviorsvc "github.com/ivankudzin/matchrank/internal/services/behavior"
	prefsvc "github.com/ivankudzin/matchrank/internal/services/preferences"
)

type stubUserStore struct {
	users map[int64]model.User
}

func (s *stubUserStore) Get(_ context.Context, userID int64) (model.User, error) {
	u, ok := s.users[userID]
	if !ok {
		return model.User{}, pgrepo.ErrUserNotFound
	}
	return u, nil
}

type stubProfileSource struct {
	profiles map[int64]model.BehaviorProfile
	fail     map[int64]error
}

func (s *stubProfileSource) Get(_ context.Context, userID int64) (model.BehaviorProfile, error) {
	if err, ok := s.fail[userID]; ok {
		return model.BehaviorProfile{}, err
	}
	p, ok := s.profiles[userID]
	if !ok {
		return model.BehaviorProfile{}, behaviorsvc.ErrProfileNotFound
	}
	return p, nil
}

type stubPreferenceSource struct {
	prefs map[int64]model.LearnedPreferences
}

func (s *stubPreferenceSource) Get(_ context.Context, userID int64) (model.LearnedPreferences, error) {
	p, ok := s.prefs[userID]
	if !ok {
		return model.LearnedPreferences{}, prefsvc.ErrPreferencesNotFound
	}
	return p, nil
}

type stubSignalCounter struct {
	inbound map[int64]int
}

func (s *stubSignalCounter) CountInboundSince(_ context.Context, targetUserID int64, _ enums.SignalType, _ time.Time) (int, error) {
	return s.inbound[targetUserID], nil
}

type stubHeatSource struct {
	states map[int64]model.HeatingState
}

func (s *stubHeatSource) GetCurrent(_ context.Context, userID int64) (model.HeatingState, error) {
	return s.states[userID], nil
}

type stubTierSource struct{}

func (stubTierSource) Classify(_ context.Context, user model.User, _ model.BehaviorProfile) (enums.Tier, error) {
	if user.IsRoyal {
		return enums.TierRoyal, nil
	}
	return enums.TierStandard, nil
}

func (stubTierSource) Multiplier(tier enums.Tier) float64 {
	if tier == enums.TierRoyal {
		return 1.5
	}
	return 1.0
}

func testService(users *stubUserStore, profiles *stubProfileSource, heat *stubHeatSource, inbound map[int64]int) *Service {
	if inbound == nil {
		inbound = map[int64]int{}
	}
	if heat == nil {
		heat = &stubHeatSource{states: map[int64]model.HeatingState{}}
	}
	svc := NewService(Dependencies{
		Users:    users,
		Profiles: profiles,
		Prefs:    &stubPreferenceSource{},
		Signals:  &stubSignalCounter{inbound: inbound},
		Heat:     heat,
		Tiers:    stubTierSource{},
	}, config.RankingConfig{})
	svc.now = func() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestPreviewNeutralBehaviorForUnknownProfile(t *testing.T) {
	users := &stubUserStore{users: map[int64]model.User{
		1: {ID: 1},
		2: {ID: 2},
	}}
	profiles := &stubProfileSource{profiles: map[int64]model.BehaviorProfile{}}
	service := testService(users, profiles, nil, nil)

	score, err := service.Preview(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if score.BehaviorScore != 50 {
		t.Fatalf("unknown profile must score neutral 50, got %v", score.BehaviorScore)
	}
	if score.SimilarityScore != 50 {
		t.Fatalf("unlearned preferences must score neutral 50, got %v", score.SimilarityScore)
	}
	if score.HeatingMultiplier != 1.0 {
		t.Fatalf("cold viewer must not get a heating boost, got %v", score.HeatingMultiplier)
	}
}

func TestPreviewCandidateNotFound(t *testing.T) {
	users := &stubUserStore{users: map[int64]model.User{1: {ID: 1}}}
	service := testService(users, &stubProfileSource{}, nil, nil)

	_, err := service.Preview(context.Background(), 1, 999)
	if !errors.Is(err, ErrCandidateNotFound) {
		t.Fatalf("expected ErrCandidateNotFound, got %v", err)
	}
}

func TestRankViewerNotFoundIsFatal(t *testing.T) {
	service := testService(&stubUserStore{users: map[int64]model.User{}}, &stubProfileSource{}, nil, nil)

	_, err := service.Rank(context.Background(), 1, []model.User{{ID: 2}})
	if !errors.Is(err, ErrViewerNotFound) {
		t.Fatalf("expected ErrViewerNotFound, got %v", err)
	}
}

func TestRankDropsFailingCandidateOnly(t *testing.T) {
	users := &stubUserStore{users: map[int64]model.User{
		1: {ID: 1},
		2: {ID: 2},
		3: {ID: 3},
	}}
	profiles := &stubProfileSource{
		profiles: map[int64]model.BehaviorProfile{},
		fail:     map[int64]error{3: errors.New("profile store timeout")},
	}
	service := testService(users, profiles, nil, nil)

	ranked, err := service.Rank(context.Background(), 1, []model.User{{ID: 2}, {ID: 3}})
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if len(ranked) != 1 || ranked[0].CandidateUserID != 2 {
		t.Fatalf("expected only candidate 2 to survive, got %+v", ranked)
	}
}

func TestRankSortsByFinalScoreDescending(t *testing.T) {
	users := &stubUserStore{users: map[int64]model.User{
		1: {ID: 1},
		2: {ID: 2},
		3: {ID: 3, IsRoyal: true},
	}}
	service := testService(users, &stubProfileSource{}, nil, map[int64]int{2: 1, 3: 1})

	ranked, err := service.Rank(context.Background(), 1, []model.User{{ID: 2}, {ID: 3, IsRoyal: true}})
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if len(ranked) != 2 {
		t.Fatalf("expected 2 scored candidates, got %d", len(ranked))
	}
	if ranked[0].CandidateUserID != 3 {
		t.Fatalf("royal candidate must rank first, got %+v", ranked)
	}
	if ranked[0].FinalScore <= ranked[1].FinalScore {
		t.Fatalf("scores not descending: %v then %v", ranked[0].FinalScore, ranked[1].FinalScore)
	}
}

func TestViewerHeatingBoostsAndCaps(t *testing.T) {
	users := &stubUserStore{users: map[int64]model.User{
		1: {ID: 1},
		2: {ID: 2},
	}}
	heat := &stubHeatSource{states: map[int64]model.HeatingState{
		1: {UserID: 1, IsHeated: true, HeatLevel: 80},
	}}
	service := testService(users, &stubProfileSource{}, heat, nil)

	score, err := service.Preview(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if score.HeatingMultiplier != 1.8 {
		t.Fatalf("unexpected heating multiplier: got %v want 1.8", score.HeatingMultiplier)
	}

	heat.states[1] = model.HeatingState{UserID: 1, IsHeated: true, HeatLevel: 150}
	score, err = service.Preview(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if score.HeatingMultiplier != 2.0 {
		t.Fatalf("heating multiplier must cap at 2.0, got %v", score.HeatingMultiplier)
	}
}

func TestWeightedScoreUsesConfiguredWeights(t *testing.T) {
	users := &stubUserStore{users: map[int64]model.User{
		1: {ID: 1},
		2: {ID: 2},
	}}
	service := testService(users, &stubProfileSource{}, nil, nil)

	score, err := service.Preview(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}

	want := 0.35*score.BehaviorScore +
		0.30*score.SimilarityScore +
		0.15*score.RecencyScore +
		0.10*score.PopularityScore +
		0.10*score.BaseScore
	if diff := score.WeightedScore - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("unexpected weighted score: got %v want %v", score.WeightedScore, want)
	}
	if score.FinalScore != score.WeightedScore*score.TierMultiplier*score.HeatingMultiplier {
		t.Fatalf("final score does not compose multipliers: %+v", score)
	}
}
