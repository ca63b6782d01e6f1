package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ideastack/ember/internal/domain/model"
)

// IdeasHandler serves catalog writes and quality reads for ideas.
type IdeasHandler struct {
	deps Dependencies
}

// NewIdeasHandler creates a new ideas handler.
func NewIdeasHandler(deps Dependencies) *IdeasHandler {
	return &IdeasHandler{deps: deps}
}

// ideaRequest mirrors the POST /ideas schema.
type ideaRequest struct {
	ID          string   `json:"id"`
	AuthorID    string   `json:"author_id"`
	Category    string   `json:"category"`
	Skills      []string `json:"skills"`
	PublishedAt string   `json:"published_at"`
	ViewCount   int      `json:"view_count"`
	SaveCount   int      `json:"save_count"`
}

func (i ideaRequest) validate() error {
	if strings.TrimSpace(i.ID) == "" {
		return errors.New("missing id")
	}
	if i.PublishedAt != "" {
		if _, err := time.Parse(time.RFC3339, i.PublishedAt); err != nil {
			return errors.New("invalid published_at; must be RFC3339")
		}
	}
	return nil
}

// HandlePutIdea handles POST /ideas requests, registering or updating idea
// metadata in the catalog.
func (h *IdeasHandler) HandlePutIdea(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_idea"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req ideaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	idea := model.Idea{
		ID:        req.ID,
		AuthorID:  req.AuthorID,
		Category:  req.Category,
		Skills:    req.Skills,
		ViewCount: req.ViewCount,
		SaveCount: req.SaveCount,
	}
	if req.PublishedAt != "" {
		idea.PublishedAt, _ = time.Parse(time.RFC3339, req.PublishedAt)
	} else {
		idea.PublishedAt = time.Now().UTC()
	}

	if err := h.deps.PutIdea(r.Context(), idea); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "id": idea.ID})
}

// HandleGetQuality handles GET /ideas/{id}/quality requests. Ideas with no
// recorded events sit at the baseline score; that is not an error.
func (h *IdeasHandler) HandleGetQuality(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_idea_quality"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/ideas/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "quality" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Quality(r.Context(), parts[0]))
}
