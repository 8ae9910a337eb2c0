// Package metrics exposes the Prometheus instrumentation shared by the
// pipeline and the worker runtime.
package metrics

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// DocumentsTotal counts documents by terminal status (complete, failed)
	DocumentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intelgraph_documents_total",
		Help: "Documents processed, by terminal status.",
	}, []string{"status"})

	// ErrorsTotal counts recoverable errors by category
	ErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intelgraph_errors_total",
		Help: "Recoverable errors, by category.",
	}, []string{"category"})

	// StageDuration observes per-stage processing time
	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "intelgraph_stage_duration_seconds",
		Help:    "Pipeline stage duration.",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})

	// AlertsTotal counts published alerts by kind
	AlertsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intelgraph_alerts_total",
		Help: "Alerts published, by kind.",
	}, []string{"kind"})
)

// Serve starts the /metrics listener and blocks until ctx is done
func Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics listener started", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
