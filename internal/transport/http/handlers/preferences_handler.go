package handlers

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ivankudzin/matchrank/internal/domain/model"
	prefsvc "github.com/ivankudzin/matchrank/internal/services/preferences"
	"github.com/ivankudzin/matchrank/internal/transport/http/identity"
)

type preferenceReader interface {
	Get(ctx context.Context, userID int64) (model.LearnedPreferences, error)
}

type PreferencesHandler struct {
	preferences preferenceReader
	log         *zap.Logger
}

func NewPreferencesHandler(preferences preferenceReader, log *zap.Logger) *PreferencesHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &PreferencesHandler{preferences: preferences, log: log}
}

// Get handles GET /users/{id}/preferences, self-only.
func (h *PreferencesHandler) Get(w http.ResponseWriter, r *http.Request) {
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
		writeForbidden(w, "forbidden", "cannot read another user's learned preferences")
		return
	}
	if h.preferences == nil {
		writeInternal(w, "internal_error", "preference learner unavailable")
		return
	}

	prefs, err := h.preferences.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, prefsvc.ErrPreferencesNotFound) {
			writeNotFound(w, "preferences_not_found", "preferences have not been learned yet")
			return
		}
		h.log.Error("load learned preferences failed",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		writeInternal(w, "internal_error", "failed to load preferences")
		return
	}

	writeJSON(w, http.StatusOK, prefs)
}
