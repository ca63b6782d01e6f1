// Package app provides the core business service that implements the
// dependencies required by the HTTP API: event ingestion, the scoring
// engines, and ranked feed reads.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	eventqueue "github.com/ideastack/ember/internal/adapters/mq/queue"
	workerpool "github.com/ideastack/ember/internal/adapters/mq/worker"
	"github.com/ideastack/ember/internal/adapters/repository"
	"github.com/ideastack/ember/internal/config"
	"github.com/ideastack/ember/internal/domain/dedupe"
	"github.com/ideastack/ember/internal/domain/eventlog"
	"github.com/ideastack/ember/internal/domain/model"
	"github.com/ideastack/ember/internal/domain/quality"
	"github.com/ideastack/ember/internal/domain/ranking"
	"github.com/ideastack/ember/internal/domain/spark"
	"github.com/ideastack/ember/internal/domain/trust"
	"github.com/ideastack/ember/pkg/logger"
	"github.com/ideastack/ember/pkg/metrics"
)

// Service wires the event log, scoring engines, and feed ranking behind
// the narrow interfaces the HTTP layer consumes.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      repository.Store
	eventLog   *eventlog.Log
	deduper    dedupe.Deduper
	eventQueue eventqueue.Queue
	workerPool *workerpool.Pool

	sparkEngine   *spark.Engine
	qualityEngine *quality.Engine
	trustEngine   *trust.Engine
	ranker        *ranking.Ranker

	// Configuration
	storeBackend string
	sqlitePath   string
	queueSize    int
	workerCount  int
	dedupeSize   int
	sparkCfg     spark.Config
	qualityCfg   quality.Config
	trustCfg     trust.Config
	rankingCfg   ranking.Config

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStoreBackend selects the persistence backend ("memory" or "sqlite").
func WithStoreBackend(backend string) Option {
	return func(s *Service) {
		if backend != "" {
			s.storeBackend = backend
		}
	}
}

// WithSQLitePath sets the sqlite database file.
func WithSQLitePath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.sqlitePath = path
		}
	}
}

// WithQueueSize sets the maximum size of the ingest queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithWorkerCount sets the number of append workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithDedupeSize sets the size of the idempotency cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithSparkConfig replaces the spark formula constants.
func WithSparkConfig(cfg spark.Config) Option {
	return func(s *Service) { s.sparkCfg = cfg }
}

// WithQualityConfig replaces the quality formula constants.
func WithQualityConfig(cfg quality.Config) Option {
	return func(s *Service) { s.qualityCfg = cfg }
}

// WithTrustConfig replaces the trust formula constants.
func WithTrustConfig(cfg trust.Config) Option {
	return func(s *Service) { s.trustCfg = cfg }
}

// WithRankingConfig replaces the ranking constants.
func WithRankingConfig(cfg ranking.Config) Option {
	return func(s *Service) { s.rankingCfg = cfg }
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		storeBackend: config.StoreMemory,
		sqlitePath:   "ember.db",
		queueSize:    100_000,
		workerCount:  4,
		dedupeSize:   500_000,
		sparkCfg:     spark.DefaultConfig(),
		qualityCfg:   quality.DefaultConfig(),
		trustCfg:     trust.DefaultConfig(),
		rankingCfg:   ranking.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting feed service...")

	store, err := s.openStore(ctx)
	if err != nil {
		return err
	}
	s.store = store

	s.eventLog = eventlog.New(s.store, eventlog.WithLogger(s.logger.Named("eventlog")))
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.eventQueue = eventqueue.NewInMemoryQueue(
		eventqueue.WithCapacity(s.queueSize),
	)

	s.sparkEngine = spark.New(s.eventLog, spark.WithConfig(s.sparkCfg))
	s.qualityEngine = quality.New(s.eventLog, quality.WithConfig(s.qualityCfg))
	s.trustEngine = trust.New(s.store, s.qualityEngine, trust.WithConfig(s.trustCfg))
	s.ranker = ranking.New(ranking.WithConfig(s.rankingCfg))

	s.workerPool = workerpool.NewPool(s.workerCount, s.eventQueue, s.eventLog,
		workerpool.WithLogger(s.logger.Named("worker")),
	)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "feed service started",
		logger.String("store", s.storeBackend),
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

func (s *Service) openStore(ctx context.Context) (repository.Store, error) {
	switch s.storeBackend {
	case config.StoreMemory:
		s.logger.Info(ctx, "using in-memory store")
		return repository.NewMemStore(), nil
	case config.StoreSQLite:
		s.logger.Info(ctx, "using sqlite store", logger.String("path", s.sqlitePath))
		store, err := repository.NewGormStore(ctx, s.sqlitePath)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: %q", repository.ErrUnknownBackend, s.storeBackend)
	}
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping feed service...")

	if s.eventQueue != nil {
		_ = s.eventQueue.Close()
	}
	if s.workerPool != nil {
		s.workerPool.Stop()
	}
	if closer, ok := s.store.(interface{ Close() error }); ok {
		_ = closer.Close()
	}

	s.started = false
	s.logger.Info(ctx, "feed service stopped")
}

// SeenAndRecord atomically checks if an event id was seen and records it if
// not. Returns true if the event was already seen.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordEventDuplicate()
	}
	return seen
}

// Unrecord removes an event id from the idempotency cache.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Size returns the idempotency cache size.
func (s *Service) Size() int64 {
	return s.deduper.Size()
}

// Enqueue pushes an event for asynchronous append. Returns false when the
// queue is full; the caller still acknowledges, the event is simply lost
// (engagement tracking is best-effort by design).
func (s *Service) Enqueue(ctx context.Context, e model.Event) bool {
	return s.eventQueue.Enqueue(ctx, e)
}

// Spark returns the author's visible reputation.
func (s *Service) Spark(ctx context.Context, authorID string) spark.Reputation {
	return s.sparkEngine.For(ctx, authorID)
}

// Quality returns the idea's invisible quality score.
func (s *Service) Quality(ctx context.Context, ideaID string) quality.Score {
	return s.qualityEngine.For(ctx, ideaID)
}

// Trust returns the author's moderation signal.
func (s *Service) Trust(ctx context.Context, authorID string) trust.Trust {
	return s.trustEngine.For(ctx, authorID)
}

// Feed builds the candidate set, ranks it for the given viewer, and
// truncates to limit. An empty or unknown viewer id selects the anonymous
// weight profile.
func (s *Service) Feed(ctx context.Context, viewerID string, limit int) ([]model.FeedCandidate, error) {
	start := time.Now()
	metrics.RecordFeedRequest()

	ideas, err := s.store.Ideas(ctx)
	if err != nil {
		return nil, fmt.Errorf("list feed candidates: %w", err)
	}

	var viewer *model.Viewer
	if viewerID != "" {
		if v, err := s.store.Viewer(ctx, viewerID); err == nil {
			viewer = &v
		}
	}

	candidates := make([]model.FeedCandidate, 0, len(ideas))
	for _, idea := range ideas {
		q := s.qualityEngine.For(ctx, idea.ID)
		candidates = append(candidates, model.FeedCandidate{
			ID:           idea.ID,
			PublishedAt:  idea.PublishedAt,
			Category:     idea.Category,
			Skills:       idea.Skills,
			AuthorID:     idea.AuthorID,
			SaveCount:    idea.SaveCount,
			ViewCount:    idea.ViewCount,
			QualityScore: q.Score,
		})
	}
	metrics.ObserveFeedCandidates(len(candidates))

	ranked := s.ranker.Rank(candidates, viewer, time.Now())
	if limit > 0 && limit < len(ranked) {
		ranked = ranked[:limit]
	}
	metrics.RecordFeedLatency(float64(time.Since(start).Milliseconds()))
	return ranked, nil
}

// PutIdea registers or updates idea metadata in the catalog.
func (s *Service) PutIdea(ctx context.Context, idea model.Idea) error {
	if err := s.store.PutIdea(ctx, idea); err != nil {
		return fmt.Errorf("register idea: %w", err)
	}
	return nil
}

// PutViewer registers or updates a viewer profile in the catalog.
func (s *Service) PutViewer(ctx context.Context, v model.Viewer) error {
	if err := s.store.PutViewer(ctx, v); err != nil {
		return fmt.Errorf("register viewer: %w", err)
	}
	return nil
}

// GetStats returns an operational snapshot for GET /stats.
func (s *Service) GetStats() map[string]interface{} {
	ctx := context.Background()

	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":      s.started,
		"store":        s.storeBackend,
		"worker_count": s.workerCount,
	}
	if s.store != nil {
		stats["events"] = s.store.Count(ctx)
		if ideas, err := s.store.Ideas(ctx); err == nil {
			stats["ideas"] = len(ideas)
		}
	}
	if s.eventQueue != nil {
		stats["queue_size"] = s.eventQueue.Len(ctx)
	}
	if s.deduper != nil {
		stats["dedupe_size"] = s.deduper.Size()
	}
	return stats
}
