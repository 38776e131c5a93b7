package handlers

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ivankudzin/matchrank/internal/domain/model"
	behaviorsvc "github.com/ivankudzin/matchrank/internal/services/behavior"
	"github.com/ivankudzin/matchrank/internal/transport/http/identity"
)

type behaviorReader interface {
	Get(ctx context.Context, userID int64) (model.BehaviorProfile, error)
}

type BehaviorHandler struct {
	behavior behaviorReader
	log      *zap.Logger
}

func NewBehaviorHandler(behavior behaviorReader, log *zap.Logger) *BehaviorHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &BehaviorHandler{behavior: behavior, log: log}
}

// Get handles GET /users/{id}/behavior. A user may only read their own
// profile; the aggregates expose swipe and messaging habits.
func (h *BehaviorHandler) Get(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := identity.FromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "unauthorized", "missing viewer identity")
		return
	}
	userID, ok := pathUserID(r)
	if !ok {
		writeBadRequest(w, "bad_request", "invalid user id")
		return
	}
	if userID != viewerID {
		writeForbidden(w, "forbidden", "cannot read another user's behavior profile")
		return
	}
	if h.behavior == nil {
		writeInternal(w, "internal_error", "behavior aggregator unavailable")
		return
	}

	profile, err := h.behavior.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, behaviorsvc.ErrProfileNotFound) {
			writeNotFound(w, "profile_not_found", "behavior profile has not been computed yet")
			return
		}
		h.log.Error("load behavior profile failed",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		writeInternal(w, "internal_error", "failed to load behavior profile")
		return
	}

	writeJSON(w, http.StatusOK, profile)
}
