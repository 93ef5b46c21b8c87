// Package worker runs periodic maintenance tasks: closing expired
// feedback requests and pruning expired sessions. Tasks poll the
// database, so running multiple instances is safe (the SQL is
// idempotent), just wasteful.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/tandemhq/tandem/internal/metrics"
)

// Task is a unit of periodic maintenance work. Run returns the number
// of items it processed.
type Task interface {
	Name() string
	Run(ctx context.Context) (int64, error)
}

// Worker runs its tasks on a fixed interval until the context is
// cancelled.
type Worker struct {
	interval time.Duration
	tasks    []Task
	logger   *slog.Logger
}

// New creates a worker. A non-positive interval falls back to a
// minute.
func New(interval time.Duration, logger *slog.Logger, tasks ...Task) *Worker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Worker{
		interval: interval,
		tasks:    tasks,
		logger:   logger,
	}
}

// Start blocks, running all tasks once immediately and then on every
// tick, until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("worker started", "interval", w.interval, "tasks", len(w.tasks))

	w.runAll(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker stopped")
			return
		case <-ticker.C:
			w.runAll(ctx)
		}
	}
}

func (w *Worker) runAll(ctx context.Context) {
	for _, task := range w.tasks {
		if ctx.Err() != nil {
			return
		}

		n, err := task.Run(ctx)
		if err != nil {
			metrics.WorkerRunsTotal.WithLabelValues(task.Name(), "error").Inc()
			w.logger.Error("task failed", "task", task.Name(), "error", err)
			continue
		}

		metrics.WorkerRunsTotal.WithLabelValues(task.Name(), "ok").Inc()
		metrics.WorkerItemsProcessed.WithLabelValues(task.Name()).Add(float64(n))
		if n > 0 {
			w.logger.Info("task completed", "task", task.Name(), "items", n)
		}
	}
}
