package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/ivankudzin/matchrank/internal/domain/model"
	rankingsvc "github.com/ivankudzin/matchrank/internal/services/ranking"
	"github.com/ivankudzin/matchrank/internal/transport/http/identity"
)

type scorePreviewer interface {
	Preview(ctx context.Context, viewerID, candidateID int64) (model.RankingScore, error)
}

type RankingHandler struct {
	ranker scorePreviewer
	log    *zap.Logger
}

func NewRankingHandler(ranker scorePreviewer, log *zap.Logger) *RankingHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &RankingHandler{ranker: ranker, log: log}
}

// Preview handles GET /ranking/preview?candidate_id=. It returns the full
// score breakdown for one (viewer, candidate) pair.
func (h *RankingHandler) Preview(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := identity.FromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "unauthorized", "missing viewer identity")
		return
	}
	if h.ranker == nil {
		writeInternal(w, "internal_error", "ranker unavailable")
		return
	}

	candidateID, err := strconv.ParseInt(r.URL.Query().Get("candidate_id"), 10, 64)
	if err != nil || candidateID <= 0 {
		writeBadRequest(w, "bad_request", "candidate_id must be a positive integer")
		return
	}

	score, err := h.ranker.Preview(r.Context(), viewerID, candidateID)
	if err != nil {
		switch {
		case errors.Is(err, rankingsvc.ErrValidation):
			writeBadRequest(w, "bad_request", err.Error())
		case errors.Is(err, rankingsvc.ErrViewerNotFound):
			writeNotFound(w, "viewer_not_found", "viewer does not exist")
		case errors.Is(err, rankingsvc.ErrCandidateNotFound):
			writeNotFound(w, "candidate_not_found", "candidate does not exist")
		default:
			h.log.Error("score preview failed",
				zap.Int64("viewer_user_id", viewerID),
				zap.Int64("candidate_user_id", candidateID),
				zap.Error(err),
			)
			writeInternal(w, "internal_error", "failed to score candidate")
		}
		return
	}

	writeJSON(w, http.StatusOK, score)
}
