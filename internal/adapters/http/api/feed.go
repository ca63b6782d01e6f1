package api

import (
	"net/http"
	"strconv"
)

// FeedHandler serves the ranked feed.
type FeedHandler struct {
	deps   Dependencies
	limits Limits
}

// NewFeedHandler creates a new feed handler.
func NewFeedHandler(deps Dependencies, limits Limits) *FeedHandler {
	return &FeedHandler{deps: deps, limits: limits}
}

// HandleGetFeed handles GET /feed?viewer_id=X&limit=N requests. An absent
// or unknown viewer_id yields the anonymous ranking profile.
func (h *FeedHandler) HandleGetFeed(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_feed"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	limit := h.limits.DefaultFeedLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		if n > h.limits.MaxFeedLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
			return
		}
		limit = n
	}

	viewerID := r.URL.Query().Get("viewer_id")
	items, err := h.deps.Feed(r.Context(), viewerID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, items)
}
