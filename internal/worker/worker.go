// Package worker runs the enrichment loop that drains the task queue.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/custodia-labs/docdex-core/internal/core/ports/driven"
	"github.com/custodia-labs/docdex-core/internal/core/services"
)

// Worker drains the enrichment queue with a pool of goroutines. Each
// goroutine repeatedly claims the next entry through the Enricher and
// sleeps briefly when the queue is empty.
type Worker struct {
	enricher  *services.Enricher
	taskQueue driven.TaskQueue
	logger    *slog.Logger

	concurrency int
	idleDelay   time.Duration

	mu      sync.RWMutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// Config holds configuration for the worker.
type Config struct {
	Enricher    *services.Enricher
	TaskQueue   driven.TaskQueue
	Logger      *slog.Logger
	Concurrency int           // Number of concurrent enrichment processors
	IdleDelay   time.Duration // How long to sleep when the queue is empty
}

// New creates a new enrichment worker.
func New(cfg Config) *Worker {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	idleDelay := cfg.IdleDelay
	if idleDelay <= 0 {
		idleDelay = 5 * time.Second
	}

	return &Worker{
		enricher:    cfg.Enricher,
		taskQueue:   cfg.TaskQueue,
		logger:      logger,
		concurrency: concurrency,
		idleDelay:   idleDelay,
	}
}

// Start begins the worker loop.
// It runs until Stop is called or the context is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	w.logger.Info("worker starting",
		"concurrency", w.concurrency,
		"idle_delay", w.idleDelay,
	)

	var wg sync.WaitGroup
	for i := 0; i < w.concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			w.processLoop(ctx, workerID)
		}(i)
	}

	go func() {
		wg.Wait()
		close(w.doneCh)
	}()

	return nil
}

// Stop gracefully stops the worker. In-flight enrichments finish; their
// entries are resolved before the goroutine exits.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	close(w.stopCh)
	w.mu.Unlock()

	<-w.doneCh

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	w.logger.Info("worker stopped")
}

// Wait blocks until the worker stops.
func (w *Worker) Wait() {
	<-w.doneCh
}

// processLoop is the main processing loop for a worker goroutine.
func (w *Worker) processLoop(ctx context.Context, workerID int) {
	logger := w.logger.With("worker_id", workerID)
	logger.Info("worker goroutine started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("worker context cancelled")
			return
		case <-w.stopCh:
			logger.Info("worker stop signal received")
			return
		default:
		}

		processed, err := w.enricher.ProcessNext(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			logger.Error("failed to process queue entry", "error", err)
			w.sleep(ctx, time.Second)
			continue
		}

		if !processed {
			// Queue is empty
			w.sleep(ctx, w.idleDelay)
		}
	}
}

// sleep pauses without blocking shutdown.
func (w *Worker) sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-w.stopCh:
	case <-timer.C:
	}
}

// Health returns health status of the worker.
type Health struct {
	Running     bool   `json:"running"`
	QueueHealth bool   `json:"queue_health"`
	Error       string `json:"error,omitempty"`
}

// Health returns the health status of the worker.
func (w *Worker) Health(ctx context.Context) Health {
	w.mu.RLock()
	running := w.running
	w.mu.RUnlock()

	health := Health{
		Running: running,
	}

	if err := w.taskQueue.Ping(ctx); err != nil {
		health.QueueHealth = false
		health.Error = err.Error()
	} else {
		health.QueueHealth = true
	}

	return health
}
