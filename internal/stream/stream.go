// Package stream is the JetStream edge of the system: documents come
// in on the raw subject, alerts go out on the alert subject. Delivery
// is at-least-once; the graph's idempotent upserts absorb redelivery.
package stream

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/osintlab/intelgraph/internal/model"
)

// Conn wraps the NATS connection and ensures the stream exists
type Conn struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	cfg    model.NATSConfig
	logger *slog.Logger
}

func Connect(ctx context.Context, cfg model.NATSConfig, logger *slog.Logger) (*Conn, error) {
	nc, err := nats.Connect(cfg.URL,
		nats.Name("intelgraph"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats at %s: %w", cfg.URL, err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("initializing jetstream: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      cfg.Stream,
		Subjects:  []string{cfg.SubjectRaw, cfg.SubjectAlerts},
		Retention: jetstream.LimitsPolicy,
		Storage:   jetstream.FileStorage,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensuring stream %s: %w", cfg.Stream, err)
	}

	logger.Info("connected to nats", "url", cfg.URL, "stream", cfg.Stream)
	return &Conn{nc: nc, js: js, cfg: cfg, logger: logger}, nil
}

func (c *Conn) Close() {
	c.nc.Close()
}
