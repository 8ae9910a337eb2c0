package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/osintlab/intelgraph/internal/metrics"
)

// Alert kinds published to the alert subject
const (
	AlertContradiction = "contradiction"
	AlertHighBias      = "high_bias"
)

// Alert is the message analysts subscribe to. It carries enough to
// triage without a graph query.
type Alert struct {
	Kind           string    `json:"kind"`
	DocumentID     string    `json:"document_id"`
	SourceName     string    `json:"source_name"`
	Title          string    `json:"title,omitempty"`
	Contradictions int       `json:"contradictions,omitempty"`
	BiasLevel      string    `json:"bias_level,omitempty"`
	Summary        string    `json:"summary,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// Producer publishes alerts
type Producer struct {
	conn *Conn
}

func (c *Conn) NewProducer() *Producer {
	return &Producer{conn: c}
}

// PublishAlert sends one alert to the alert subject
func (p *Producer) PublishAlert(ctx context.Context, alert Alert) error {
	if alert.Timestamp.IsZero() {
		alert.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("encoding alert: %w", err)
	}

	if _, err := p.conn.js.Publish(ctx, p.conn.cfg.SubjectAlerts, data); err != nil {
		return fmt.Errorf("publishing alert: %w", err)
	}

	metrics.AlertsTotal.WithLabelValues(alert.Kind).Inc()
	p.conn.logger.Info("alert published",
		"kind", alert.Kind, "document_id", alert.DocumentID, "source", alert.SourceName)
	return nil
}

// PublishDocument injects a raw document onto the ingest subject.
// Used by the CLI for manual ingestion and by tests.
func (p *Producer) PublishDocument(ctx context.Context, doc []byte) error {
	if _, err := p.conn.js.Publish(ctx, p.conn.cfg.SubjectRaw, doc); err != nil {
		return fmt.Errorf("publishing document: %w", err)
	}
	return nil
}
