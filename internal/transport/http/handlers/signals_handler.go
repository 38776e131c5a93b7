package handlers

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ivankudzin/matchrank/internal/domain/enums"
	signalsvc "github.com/ivankudzin/matchrank/internal/services/signals"
	"github.com/ivankudzin/matchrank/internal/transport/http/dto"
	"github.com/ivankudzin/matchrank/internal/transport/http/identity"
)

type signalRecorder interface {
	Record(ctx context.Context, in signalsvc.RecordInput) (signalsvc.RecordResult, error)
	RecordProfileView(ctx context.Context, actorUserID, targetUserID, durationMS int64) (signalsvc.RecordResult, error)
	RecordSwipe(ctx context.Context, actorUserID, targetUserID int64, direction string, viewDurationMS int64) (signalsvc.RecordResult, error)
	RecordPaidInteraction(ctx context.Context, actorUserID, targetUserID int64, kind string) (signalsvc.RecordResult, error)
}

type SignalsHandler struct {
	signals signalRecorder
	log     *zap.Logger
}

func NewSignalsHandler(signals signalRecorder, log *zap.Logger) *SignalsHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &SignalsHandler{signals: signals, log: log}
}

// Record handles POST /signals. Exactly one of type, view, swipe or paid
// selects the signal shape; the actor is always the authenticated viewer.
func (h *SignalsHandler) Record(w http.ResponseWriter, r *http.Request) {
	actorID, ok := identity.FromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "unauthorized", "missing viewer identity")
		return
	}
	if h.signals == nil {
		writeInternal(w, "internal_error", "signal recorder unavailable")
		return
	}

	var req dto.RecordSignalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "bad_request", "invalid JSON body")
		return
	}
	if req.TargetUserID <= 0 {
		writeBadRequest(w, "bad_request", "target_user_id is required")
		return
	}

	result, err := h.dispatch(r.Context(), actorID, req)
	if err != nil {
		switch {
		case errors.Is(err, signalsvc.ErrValidation),
			errors.Is(err, enums.ErrUnknownSignalType):
			writeBadRequest(w, "bad_request", err.Error())
		default:
			h.log.Error("record signal failed",
				zap.Int64("actor_user_id", actorID),
				zap.Int64("target_user_id", req.TargetUserID),
				zap.Error(err),
			)
			writeInternal(w, "internal_error", "failed to record signal")
		}
		return
	}

	writeJSON(w, http.StatusCreated, dto.RecordSignalResponse{
		SignalID:    result.Signal.ID,
		Type:        string(result.Signal.Type),
		MutualMatch: result.MutualMatch,
	})
}

func (h *SignalsHandler) dispatch(ctx context.Context, actorID int64, req dto.RecordSignalRequest) (signalsvc.RecordResult, error) {
	switch {
	case req.View != nil:
		return h.signals.RecordProfileView(ctx, actorID, req.TargetUserID, req.View.DurationMS)
	case req.Swipe != nil:
		return h.signals.RecordSwipe(ctx, actorID, req.TargetUserID, req.Swipe.Direction, req.Swipe.ViewDurationMS)
	case req.Paid != nil:
		return h.signals.RecordPaidInteraction(ctx, actorID, req.TargetUserID, req.Paid.Kind)
	case req.Type != "":
		return h.signals.Record(ctx, signalsvc.RecordInput{
			ActorUserID:  actorID,
			TargetUserID: req.TargetUserID,
			Type:         enums.SignalType(req.Type),
			Metadata:     req.Metadata,
		})
	default:
		return signalsvc.RecordResult{}, signalsvc.ErrValidation
	}
}
