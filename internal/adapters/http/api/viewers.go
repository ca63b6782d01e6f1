package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ideastack/ember/internal/domain/model"
)

// ViewersHandler serves viewer profile writes.
type ViewersHandler struct {
	deps Dependencies
}

// NewViewersHandler creates a new viewers handler.
func NewViewersHandler(deps Dependencies) *ViewersHandler {
	return &ViewersHandler{deps: deps}
}

// viewerRequest mirrors the POST /viewers schema.
type viewerRequest struct {
	ID        string   `json:"id"`
	Interests []string `json:"interests"`
	Following []string `json:"following"`
}

// HandlePutViewer handles POST /viewers requests, registering the profile
// used for the relevance signal.
func (h *ViewersHandler) HandlePutViewer(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_viewer"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req viewerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.ID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing id")))
		return
	}

	v := model.Viewer{ID: req.ID, Interests: req.Interests, Following: req.Following}
	if err := h.deps.PutViewer(r.Context(), v); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "id": v.ID})
}
