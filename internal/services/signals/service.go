package signals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ivankudzin/matchrank/internal/domain/enums"
	"github.com/ivankudzin/matchrank/internal/domain/model"
	"github.com/ivankudzin/matchrank/internal/domain/rules"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrDependenciesNil = errors.New("signal recorder dependencies are not configured")
)

type SignalStore interface {
	Insert(ctx context.Context, sig model.Signal) (model.Signal, error)
	HasRightSwipe(ctx context.Context, actorUserID, targetUserID int64) (bool, error)
}

type RefreshQueue interface {
	EnqueueRefresh(ctx context.Context, userID int64) error
}

// Service is the behavioral signal recorder. A record call appends exactly
// one immutable signal and schedules a profile refresh for the actor; the
// refresh is never awaited and its failures never propagate to the caller.
type Service struct {
	store SignalStore
	queue RefreshQueue
	log   *zap.Logger
	now   func() time.Time
}

func NewService(store SignalStore, queue RefreshQueue) *Service {
	return &Service{
		store: store,
		queue: queue,
		log:   zap.NewNop(),
		now:   time.Now,
	}
}

func (s *Service) AttachLogger(log *zap.Logger) {
	if log != nil {
		s.log = log
	}
}

type RecordInput struct {
	ActorUserID  int64
	TargetUserID int64
	Type         enums.SignalType
	Metadata     map[string]any
}

type RecordResult struct {
	Signal      model.Signal
	MutualMatch bool
}

func (s *Service) Record(ctx context.Context, in RecordInput) (RecordResult, error) {
	if in.ActorUserID <= 0 || in.TargetUserID <= 0 || in.ActorUserID == in.TargetUserID {
		return RecordResult{}, ErrValidation
	}
	if !in.Type.Valid() {
		return RecordResult{}, fmt.Errorf("%w: %s", enums.ErrUnknownSignalType, in.Type)
	}
	if s.store == nil {
		return RecordResult{}, ErrDependenciesNil
	}

	now := s.now().UTC()
	sig, err := s.store.Insert(ctx, model.Signal{
		ID:           uuid.NewString(),
		ActorUserID:  in.ActorUserID,
		TargetUserID: in.TargetUserID,
		Type:         in.Type,
		Metadata:     in.Metadata,
		CreatedAt:    now,
	})
	if err != nil {
		return RecordResult{}, fmt.Errorf("append signal: %w", err)
	}

	result := RecordResult{Signal: sig}
	if in.Type == enums.SignalRightSwipe {
		mutual, err := s.store.HasRightSwipe(ctx, in.TargetUserID, in.ActorUserID)
		if err != nil {
			return RecordResult{}, fmt.Errorf("check reverse right swipe: %w", err)
		}
		result.MutualMatch = mutual
	}

	s.scheduleRefresh(ctx, in.ActorUserID)

	return result, nil
}

// RecordProfileView classifies a view by duration before recording it.
func (s *Service) RecordProfileView(ctx context.Context, actorUserID, targetUserID, durationMS int64) (RecordResult, error) {
	if durationMS < 0 {
		return RecordResult{}, ErrValidation
	}
	return s.Record(ctx, RecordInput{
		ActorUserID:  actorUserID,
		TargetUserID: targetUserID,
		Type:         rules.ClassifyProfileView(durationMS),
		Metadata:     map[string]any{"duration_ms": durationMS},
	})
}

// RecordSwipe records a swipe; a left swipe after a very short view is
// classified as the harsher fast variant.
func (s *Service) RecordSwipe(ctx context.Context, actorUserID, targetUserID int64, direction string, viewDurationMS int64) (RecordResult, error) {
	var signalType enums.SignalType
	switch direction {
	case "right":
		signalType = enums.SignalRightSwipe
	case "left":
		signalType = rules.ClassifyLeftSwipe(viewDurationMS)
	default:
		return RecordResult{}, ErrValidation
	}

	metadata := map[string]any{}
	if viewDurationMS > 0 {
		metadata["view_duration_ms"] = viewDurationMS
	}

	return s.Record(ctx, RecordInput{
		ActorUserID:  actorUserID,
		TargetUserID: targetUserID,
		Type:         signalType,
		Metadata:     metadata,
	})
}

// RecordPaidInteraction maps a purchase sub-type to its fixed signal type.
func (s *Service) RecordPaidInteraction(ctx context.Context, actorUserID, targetUserID int64, kind string) (RecordResult, error) {
	signalType, ok := rules.PaidInteractionSignal(kind)
	if !ok {
		return RecordResult{}, ErrValidation
	}
	return s.Record(ctx, RecordInput{
		ActorUserID:  actorUserID,
		TargetUserID: targetUserID,
		Type:         signalType,
		Metadata:     map[string]any{"kind": kind},
	})
}

func (s *Service) scheduleRefresh(ctx context.Context, userID int64) {
	if s.queue == nil {
		return
	}
	if err := s.queue.EnqueueRefresh(ctx, userID); err != nil {
		s.log.Warn("enqueue profile refresh failed",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}
}
