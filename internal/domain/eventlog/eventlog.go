// Package eventlog provides the append-only engagement log facade the
// scoring engines read from.
//
// Writes are fire and forget: a storage failure is logged and counted but
// never surfaces to the caller, so engagement tracking cannot block the
// user-facing request path. Reads degrade to an empty history on failure so
// scoring falls back to baseline values instead of erroring.
package eventlog

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ideastack/ember/internal/domain/model"
	"github.com/ideastack/ember/pkg/logger"
	"github.com/ideastack/ember/pkg/metrics"
)

// Store is the persistence contract the log writes to and reads from.
type Store interface {
	Append(ctx context.Context, e model.Event) error
	ByIdea(ctx context.Context, ideaID string) ([]model.Event, error)
	ByAuthor(ctx context.Context, authorID string) ([]model.Event, error)
}

// Log records engagement events and serves filtered, oldest-first read-back.
type Log struct {
	store Store
	log   logger.Logger
	now   func() time.Time
}

// Option applies a configuration option to the Log.
type Option func(*Log)

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(lg *Log) {
		if l != nil {
			lg.log = l
		}
	}
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(lg *Log) {
		if now != nil {
			lg.now = now
		}
	}
}

// New creates a Log over the given store.
func New(store Store, opts ...Option) *Log {
	l := &Log{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.log == nil {
		l.log = logger.Named("eventlog")
	}
	return l
}

// Record appends e to the log. A missing event id is filled with a random
// uuid so dedupe and storage keys stay usable; a missing timestamp is
// filled with the current time. Failures are swallowed.
func (l *Log) Record(ctx context.Context, e model.Event) {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.TS.IsZero() {
		e.TS = l.now().UTC()
	}
	start := time.Now()
	if err := l.store.Append(ctx, e); err != nil {
		metrics.RecordEventDropped()
		l.log.Warn(ctx, "dropping engagement event",
			logger.String("event_id", e.EventID),
			logger.String("type", string(e.Type)),
			logger.Error(err),
		)
		return
	}
	metrics.RecordEventAppended()
	metrics.RecordAppendLatency(float64(time.Since(start).Milliseconds()))
}

// EventsForIdea returns the idea's events, oldest first. A read failure
// degrades to an empty history.
func (l *Log) EventsForIdea(ctx context.Context, ideaID string) []model.Event {
	evs, err := l.store.ByIdea(ctx, ideaID)
	if err != nil {
		metrics.RecordStoreReadError()
		l.log.Warn(ctx, "event read degraded", logger.String("idea_id", ideaID), logger.Error(err))
		return nil
	}
	return evs
}

// EventsForAuthor returns the author's events, oldest first. A read failure
// degrades to an empty history.
func (l *Log) EventsForAuthor(ctx context.Context, authorID string) []model.Event {
	evs, err := l.store.ByAuthor(ctx, authorID)
	if err != nil {
		metrics.RecordStoreReadError()
		l.log.Warn(ctx, "event read degraded", logger.String("author_id", authorID), logger.Error(err))
		return nil
	}
	return evs
}
