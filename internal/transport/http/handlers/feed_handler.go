package handlers

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	feedsvc "github.com/ivankudzin/matchrank/internal/services/feed"
	rankingsvc "github.com/ivankudzin/matchrank/internal/services/ranking"
	"github.com/ivankudzin/matchrank/internal/transport/http/dto"
	"github.com/ivankudzin/matchrank/internal/transport/http/identity"
)

type feedProvider interface {
	GetFeed(ctx context.Context, viewerID int64, limit int, rawCursor string, excludeIDs []int64) (feedsvc.Page, error)
}

type FeedHandler struct {
	feed feedProvider
	log  *zap.Logger
}

func NewFeedHandler(feed feedProvider, log *zap.Logger) *FeedHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &FeedHandler{feed: feed, log: log}
}

// Get handles GET /feed?limit=&cursor=&exclude=1,2,3.
func (h *FeedHandler) Get(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := identity.FromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "unauthorized", "missing viewer identity")
		return
	}
	if h.feed == nil {
		writeInternal(w, "internal_error", "feed unavailable")
		return
	}

	limit := parseIntOrDefault(r.URL.Query().Get("limit"), 0)
	cursor := r.URL.Query().Get("cursor")
	exclude := parseIDList(r.URL.Query().Get("exclude"))

	page, err := h.feed.GetFeed(r.Context(), viewerID, limit, cursor, exclude)
	if err != nil {
		switch {
		case errors.Is(err, feedsvc.ErrBadCursor):
			writeBadRequest(w, "bad_cursor", "cursor is malformed")
		case errors.Is(err, feedsvc.ErrValidation):
			writeBadRequest(w, "bad_request", err.Error())
		case errors.Is(err, rankingsvc.ErrViewerNotFound):
			writeNotFound(w, "viewer_not_found", "viewer does not exist")
		default:
			h.log.Error("build feed failed",
				zap.Int64("viewer_user_id", viewerID),
				zap.Error(err),
			)
			writeInternal(w, "internal_error", "failed to build feed")
		}
		return
	}

	items := make([]dto.FeedItemResponse, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, dto.FeedItemResponse{
			CandidateID: item.CandidateUserID,
			FinalScore:  item.FinalScore,
			Tier:        string(item.Tier),
		})
	}

	writeJSON(w, http.StatusOK, dto.FeedResponse{
		Items:      items,
		NextCursor: page.NextCursor,
		HasMore:    page.HasMore,
	})
}
