package api

import (
	"net/http"
	"strings"
)

// AuthorsHandler serves author reputation reads.
type AuthorsHandler struct {
	deps Dependencies
}

// NewAuthorsHandler creates a new authors handler.
func NewAuthorsHandler(deps Dependencies) *AuthorsHandler {
	return &AuthorsHandler{deps: deps}
}

// HandleGetAuthor handles GET /authors/{id}/spark and
// GET /authors/{id}/trust requests. Unknown authors are not an error:
// they sit at zero spark and initial trust.
func (h *AuthorsHandler) HandleGetAuthor(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_author"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	// Path shape: /authors/{id}/spark or /authors/{id}/trust.
	rest := strings.TrimPrefix(r.URL.Path, "/authors/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	authorID, view := parts[0], parts[1]

	switch view {
	case "spark":
		writeJSON(w, http.StatusOK, h.deps.Spark(r.Context(), authorID))
	case "trust":
		writeJSON(w, http.StatusOK, h.deps.Trust(r.Context(), authorID))
	default:
		writeError(w, http.StatusNotFound, "not_found", NewKind(op, ErrNotFound))
	}
}
