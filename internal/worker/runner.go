package worker

import (
	"context"
	"errors"
	"log/slog"

	"github.com/osintlab/intelgraph/internal/pipeline"
	"github.com/osintlab/intelgraph/internal/stream"
)

// Runner is the worker main loop: fetch a batch, fan it across the
// pool, drain, repeat. Shutdown is graceful at batch granularity:
// cancellation stops fetching and lets the in-flight batch finish, so
// no acked message is left half-persisted.
type Runner struct {
	consumer *stream.Consumer
	alerts   *stream.Producer
	orch     *pipeline.Orchestrator
	workers  int
	logger   *slog.Logger
}

func NewRunner(consumer *stream.Consumer, alerts *stream.Producer, orch *pipeline.Orchestrator, workers int, logger *slog.Logger) *Runner {
	if workers <= 0 {
		workers = 1
	}
	return &Runner{
		consumer: consumer,
		alerts:   alerts,
		orch:     orch,
		workers:  workers,
		logger:   logger.With("component", "worker"),
	}
}

// Run blocks until ctx is cancelled
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info("worker started", "workers", r.workers)

	for {
		if ctx.Err() != nil {
			r.logger.Info("worker stopped")
			return nil
		}

		msgs, err := r.consumer.Fetch(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				r.logger.Info("worker stopped")
				return nil
			}
			r.logger.Warn("fetch failed", "error", err)
			continue
		}
		if len(msgs) == 0 {
			continue
		}

		// The batch runs on a background-derived context so an
		// in-flight document is not cut off mid-write by shutdown.
		pool := NewPool(context.WithoutCancel(ctx), r.workers)
		pool.Start()
		for _, msg := range msgs {
			pool.Submit(&DocumentJob{
				Msg:      msg,
				Pipeline: r.orch,
				Alerts:   r.alerts,
				Logger:   r.logger,
			})
		}

		failed := 0
		for _, res := range pool.Wait() {
			if res.Err() != nil {
				failed++
			}
		}
		r.logger.Debug("batch processed", "size", len(msgs), "failed", failed)
	}
}
