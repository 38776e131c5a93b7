package handlers

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ivankudzin/matchrank/internal/domain/enums"
	"github.com/ivankudzin/matchrank/internal/domain/model"
	heatsvc "github.com/ivankudzin/matchrank/internal/services/heating"
	"github.com/ivankudzin/matchrank/internal/transport/http/dto"
	"github.com/ivankudzin/matchrank/internal/transport/http/identity"
)

type heatingManager interface {
	Activate(ctx context.Context, userID int64, trigger enums.HeatingTrigger) (model.HeatingState, error)
	GetCurrent(ctx context.Context, userID int64) (model.HeatingState, error)
	Deactivate(ctx context.Context, userID int64) (int64, error)
}

type HeatingHandler struct {
	heating heatingManager
	log     *zap.Logger
}

func NewHeatingHandler(heating heatingManager, log *zap.Logger) *HeatingHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &HeatingHandler{heating: heating, log: log}
}

// Get handles GET /users/{id}/heating, self-only. A cold user gets a zero
// state with is_heated false, not a 404.
func (h *HeatingHandler) Get(w http.ResponseWriter, r *http.Request) {
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
		writeForbidden(w, "forbidden", "cannot read another user's heating state")
		return
	}
	if h.heating == nil {
		writeInternal(w, "internal_error", "heating manager unavailable")
		return
	}

	state, err := h.heating.GetCurrent(r.Context(), userID)
	if err != nil {
		if errors.Is(err, heatsvc.ErrValidation) {
			writeBadRequest(w, "bad_request", err.Error())
			return
		}
		h.log.Error("load heating state failed",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		writeInternal(w, "internal_error", "failed to load heating state")
		return
	}

	writeJSON(w, http.StatusOK, state)
}

// Activate handles POST /internal/heating/activate. The route sits behind
// admin auth; trusted backend services call it when a boost-worthy event
// happens outside the engine.
func (h *HeatingHandler) Activate(w http.ResponseWriter, r *http.Request) {
	if h.heating == nil {
		writeInternal(w, "internal_error", "heating manager unavailable")
		return
	}

	var req dto.ActivateHeatingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "bad_request", "invalid JSON body")
		return
	}

	state, err := h.heating.Activate(r.Context(), req.UserID, enums.HeatingTrigger(req.Trigger))
	if err != nil {
		switch {
		case errors.Is(err, heatsvc.ErrValidation),
			errors.Is(err, enums.ErrUnknownHeatingTrigger):
			writeBadRequest(w, "bad_request", err.Error())
		default:
			h.log.Error("heating activation failed",
				zap.Int64("user_id", req.UserID),
				zap.String("trigger", req.Trigger),
				zap.Error(err),
			)
			writeInternal(w, "internal_error", "failed to activate heating")
		}
		return
	}

	writeJSON(w, http.StatusOK, state)
}

// Deactivate handles DELETE /admin/users/{id}/heating.
func (h *HeatingHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUserID(r)
	if !ok {
		writeBadRequest(w, "bad_request", "invalid user id")
		return
	}
	if h.heating == nil {
		writeInternal(w, "internal_error", "heating manager unavailable")
		return
	}

	expired, err := h.heating.Deactivate(r.Context(), userID)
	if err != nil {
		if errors.Is(err, heatsvc.ErrValidation) {
			writeBadRequest(w, "bad_request", err.Error())
			return
		}
		h.log.Error("heating deactivation failed",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		writeInternal(w, "internal_error", "failed to deactivate heating")
		return
	}

	writeJSON(w, http.StatusOK, dto.DeactivateHeatingResponse{Expired: expired})
}
