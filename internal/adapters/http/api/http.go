// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ideastack/ember/internal/domain/dedupe"
	"github.com/ideastack/ember/internal/domain/model"
	"github.com/ideastack/ember/internal/domain/quality"
	"github.com/ideastack/ember/internal/domain/spark"
	"github.com/ideastack/ember/internal/domain/trust"
)

// Dependencies required by the HTTP handlers. Using an interface bundle
// keeps the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	dedupe.Deduper

	// Enqueue pushes an event for async processing. Returns false when the
	// queue is full; the event is dropped, never the request.
	Enqueue(ctx context.Context, e model.Event) bool

	// Read operations.
	Feed(ctx context.Context, viewerID string, limit int) ([]model.FeedCandidate, error)
	Spark(ctx context.Context, authorID string) spark.Reputation
	Quality(ctx context.Context, ideaID string) quality.Score
	Trust(ctx context.Context, authorID string) trust.Trust

	// Catalog writes.
	PutIdea(ctx context.Context, idea model.Idea) error
	PutViewer(ctx context.Context, v model.Viewer) error
}

// Limits configures request caps for the read endpoints.
type Limits struct {
	MaxFeedLimit     int
	DefaultFeedLimit int
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	eventsHandler  *EventsHandler
	feedHandler    *FeedHandler
	authorsHandler *AuthorsHandler
	ideasHandler   *IdeasHandler
	viewersHandler *ViewersHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, limits Limits) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		eventsHandler:  NewEventsHandler(deps),
		feedHandler:    NewFeedHandler(deps, limits),
		authorsHandler: NewAuthorsHandler(deps),
		ideasHandler:   NewIdeasHandler(deps),
		viewersHandler: NewViewersHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/events", MetricsMiddleware(s.eventsHandler.HandlePostEvent, "events"))
	mux.HandleFunc("/feed", MetricsMiddleware(s.feedHandler.HandleGetFeed, "feed"))
	mux.HandleFunc("/authors/", MetricsMiddleware(s.authorsHandler.HandleGetAuthor, "authors"))
	mux.HandleFunc("/ideas", MetricsMiddleware(s.ideasHandler.HandlePutIdea, "ideas"))
	mux.HandleFunc("/ideas/", MetricsMiddleware(s.ideasHandler.HandleGetQuality, "idea_quality"))
	mux.HandleFunc("/viewers", MetricsMiddleware(s.viewersHandler.HandlePutViewer, "viewers"))
}

type ackResponse struct {
	Status    string `json:"status"`
	EventID   string `json:"event_id,omitempty"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
