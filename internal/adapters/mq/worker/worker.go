// Package worker runs warmup jobs off the queue with a fixed pool of workers.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/tripmap/internal/adapters/mq/queue"
	"github.com/okian/tripmap/pkg/logger"
	"github.com/okian/tripmap/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultJobTimeout   = 30 * time.Second
	poolShutdownTimeout = 30 * time.Second
)

// Processor does the work of one job.
type Processor interface {
	Process(ctx context.Context, job queue.Job) error
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx context.Context, job queue.Job) error

// Process calls f.
func (f ProcessorFunc) Process(ctx context.Context, job queue.Job) error { return f(ctx, job) }

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker processes jobs until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue      Queue
	processor  Processor
	name       string
	jobTimeout time.Duration

	// callbacks into the owning pool; nil for standalone workers
	onStart func()
	onDone  func(err error)

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, p Processor, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:      q,
		processor:  p,
		name:       "worker",
		jobTimeout: defaultJobTimeout,
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
		logger:     logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.With(logger.String("worker", w.name))
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.processJob(ctx, job); err != nil {
				w.logger.Error(ctx, "error processing job", logger.String("job_id", job.ID), logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processJob runs one job under the job timeout.
func (w *InMemoryWorker) processJob(ctx context.Context, job queue.Job) (err error) {
	start := time.Now()
	if w.onStart != nil {
		w.onStart()
	}
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
		if w.onDone != nil {
			w.onDone(err)
		}
	}()

	jobCtx, cancel := context.WithTimeout(ctx, w.jobTimeout)
	defer cancel()

	if err := w.processor.Process(jobCtx, job); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "process_error")
		return fmt.Errorf("job %s (poi %d): %w", job.ID, job.POI, err)
	}
	w.logger.Debug(ctx, "job processed", logger.String("job_id", job.ID), logger.Int64("poi", job.POI),
		logger.Duration("took", time.Since(start)))
	return nil
}

// Stats is a snapshot of pool progress.
type Stats struct {
	Workers   int   `json:"workers"`
	Active    int64 `json:"active"`
	Processed int64 `json:"processed"`
	Failed    int64 `json:"failed"`
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	active    atomic.Int64
	processed atomic.Int64
	failed    atomic.Int64

	logger logger.Logger
}

// NewPool creates a pool of workerCount workers; a count below one uses
// one worker per CPU.
func NewPool(workerCount int, q Queue, p Processor, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		w := NewInMemoryWorker(q, p, append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)...)
		w.onStart = pool.jobStarted
		w.onDone = pool.jobDone
		pool.workers[i] = w
	}

	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)
	return pool
}

func (p *Pool) jobStarted() {
	metrics.UpdateWorkerActiveCount(int(p.active.Add(1)))
}

func (p *Pool) jobDone(err error) {
	metrics.UpdateWorkerActiveCount(int(p.active.Add(-1)))
	p.processed.Add(1)
	if err != nil {
		p.failed.Add(1)
	}
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Stats returns the current progress counters.
func (p *Pool) Stats() Stats {
	return Stats{
		Workers:   len(p.workers),
		Active:    p.active.Load(),
		Processed: p.processed.Load(),
		Failed:    p.failed.Load(),
	}
}

// Shutdown closes the queue and lets the workers drain it. Workers still
// busy when ctx (or the pool timeout) expires are signalled to stop.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut int
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			w.shutdownOnce.Do(func() { close(w.shutdown) })
			timedOut++
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	if timedOut > 0 {
		return fmt.Errorf("%d workers did not stop: %w", timedOut, shutdownCtx.Err())
	}
	return nil
}
