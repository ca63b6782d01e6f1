package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ideastack/ember/internal/domain/model"
)

// EventsHandler handles engagement event submissions.
type EventsHandler struct {
	deps Dependencies
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps Dependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

// eventRequest mirrors the POST /events schema.
type eventRequest struct {
	EventID        string `json:"event_id"`
	Type           string `json:"type"`
	IdeaID         string `json:"idea_id"`
	AuthorID       string `json:"author_id"`
	ActorID        string `json:"actor_id"`
	Feedback       string `json:"feedback"`
	FeedbackReason string `json:"feedback_reason"`
	TS             string `json:"ts"`
}

func (e eventRequest) validate() error {
	switch {
	case strings.TrimSpace(e.IdeaID) == "":
		return errors.New("missing idea_id")
	case !model.EventType(e.Type).Known():
		return errors.New("unknown event type")
	}
	if model.EventType(e.Type) == model.EventPromptFeedback {
		switch model.Feedback(e.Feedback) {
		case model.FeedbackWorked, model.FeedbackDidntWork:
		default:
			return errors.New("prompt_feedback requires feedback of worked or didnt_work")
		}
	}
	if e.TS != "" {
		if _, err := time.Parse(time.RFC3339, e.TS); err != nil {
			return errors.New("invalid ts; must be RFC3339")
		}
	}
	return nil
}

func (e eventRequest) toModel() model.Event {
	ev := model.Event{
		EventID:        e.EventID,
		Type:           model.EventType(e.Type),
		IdeaID:         e.IdeaID,
		AuthorID:       e.AuthorID,
		ActorID:        e.ActorID,
		Feedback:       model.Feedback(e.Feedback),
		FeedbackReason: e.FeedbackReason,
	}
	if e.TS != "" {
		ev.TS, _ = time.Parse(time.RFC3339, e.TS)
	}
	return ev
}

// HandlePostEvent handles POST /events requests.
//
// The response is always an acknowledgement: duplicates are reported as
// such, and a full queue silently drops the event. Engagement tracking is
// best-effort and must never block or fail the user-facing action.
func (h *EventsHandler) HandlePostEvent(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_event"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	if req.EventID == "" {
		req.EventID = uuid.NewString()
	}

	// Idempotency safety net against double-clicks and client retries.
	if h.deps.SeenAndRecord(r.Context(), req.EventID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", EventID: req.EventID, Duplicate: true})
		return
	}

	_ = h.deps.Enqueue(r.Context(), req.toModel())
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", EventID: req.EventID, Duplicate: false})
}
