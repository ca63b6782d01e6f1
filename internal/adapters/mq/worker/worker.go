// Package worker drains the ingest queue into the event log. Workers are
// the only writers of the log; append failures are swallowed inside the
// sink, so a worker's loop never stalls on storage trouble.
package worker

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/ideastack/ember/internal/domain/model"
	"github.com/ideastack/ember/pkg/logger"
	"github.com/ideastack/ember/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount  = 4
	poolShutdownTimeout = 30 * time.Second
)

// Sink receives events drained from the queue. Record must not return an
// error; failure handling is the sink's concern.
type Sink interface {
	Record(ctx context.Context, e model.Event)
}

// Queue defines how workers receive events.
type Queue interface {
	Dequeue(ctx context.Context) <-chan model.Event
}

// Pool runs a fixed set of append workers over one queue.
type Pool struct {
	workers int
	queue   Queue
	sink    Sink
	log     logger.Logger

	wg      sync.WaitGroup
	stop    chan struct{}
	mu      sync.Mutex
	started bool
}

// Option applies a configuration option to the Pool.
type Option func(*Pool)

// WithLogger sets a custom logger for the pool.
func WithLogger(l logger.Logger) Option {
	return func(p *Pool) {
		if l != nil {
			p.log = l
		}
	}
}

// NewPool creates a worker pool draining queue into sink.
func NewPool(workers int, queue Queue, sink Sink, opts ...Option) *Pool {
	if workers <= 0 {
		workers = defaultWorkerCount
	}
	p := &Pool{
		workers: workers,
		queue:   queue,
		sink:    sink,
		stop:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = logger.Named("worker")
	}
	return p
}

// Start launches the workers. Calling Start twice is a no-op.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run(ctx, "worker-"+strconv.Itoa(i))
	}
	metrics.UpdateWorkerActive(p.workers)
	p.log.Info(ctx, "append workers started", logger.Int("count", p.workers))
}

func (p *Pool) run(ctx context.Context, name string) {
	defer p.wg.Done()
	events := p.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stop:
			return
		case e, ok := <-events:
			if !ok {
				p.log.Debug(ctx, "queue closed, worker exiting", logger.String("worker", name))
				return
			}
			p.sink.Record(ctx, e)
			metrics.RecordWorkerProcessed()
		}
	}
}

// Stop signals the workers and waits for them to exit, bounded by the pool
// shutdown timeout.
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	select {
	case <-p.stop:
	default:
		close(p.stop)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(poolShutdownTimeout):
	}
	metrics.UpdateWorkerActive(0)
}
