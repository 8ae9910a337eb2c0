package worker

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/osintlab/intelgraph/internal/model"
	"github.com/osintlab/intelgraph/internal/pipeline"
	"github.com/osintlab/intelgraph/internal/stream"
)

// DocumentJob carries one queue message through the pipeline. The
// message is acknowledged only once the document reaches a terminal
// phase; malformed payloads are acknowledged immediately since
// redelivery cannot fix them.
type DocumentJob struct {
	Msg      jetstream.Msg
	Pipeline *pipeline.Orchestrator
	Alerts   *stream.Producer
	Logger   *slog.Logger
}

// DocumentResult reports one processed document
type DocumentResult struct {
	DocumentID string
	Phase      pipeline.Phase
	Error      error
}

func (r *DocumentResult) Err() error { return r.Error }

func (j *DocumentJob) Execute(ctx context.Context) Result {
	var raw model.RawDocument
	if err := json.Unmarshal(j.Msg.Data(), &raw); err != nil {
		j.Logger.Error("malformed document message", "error", err)
		j.ack()
		return &DocumentResult{Error: err}
	}

	state, err := j.Pipeline.Process(ctx, raw)

	// Terminal either way: ack so the queue moves on
	j.ack()

	if state.ShouldAlert && j.Alerts != nil {
		j.publishAlerts(ctx, state)
	}

	return &DocumentResult{DocumentID: raw.ID, Phase: state.Phase, Error: err}
}

func (j *DocumentJob) publishAlerts(ctx context.Context, state *pipeline.State) {
	contradictions := 0
	for _, c := range state.Claims {
		contradictions += len(c.Contradicts)
	}

	if contradictions > 0 {
		j.publish(ctx, stream.Alert{
			Kind:           stream.AlertContradiction,
			DocumentID:     state.Raw.ID,
			SourceName:     state.Source.Name,
			Title:          state.Raw.Title,
			Contradictions: contradictions,
			Summary:        state.Summary,
		})
	}
	if state.Bias != nil && state.Bias.Recommendation == pipeline.HighBias {
		j.publish(ctx, stream.Alert{
			Kind:       stream.AlertHighBias,
			DocumentID: state.Raw.ID,
			SourceName: state.Source.Name,
			Title:      state.Raw.Title,
			BiasLevel:  state.Bias.Recommendation,
			Summary:    state.Bias.Framing,
		})
	}
}

func (j *DocumentJob) publish(ctx context.Context, alert stream.Alert) {
	if err := j.Alerts.PublishAlert(ctx, alert); err != nil {
		j.Logger.Warn("alert publish failed", "document_id", alert.DocumentID, "error", err)
	}
}

func (j *DocumentJob) ack() {
	if err := j.Msg.Ack(); err != nil {
		j.Logger.Warn("ack failed", "error", err)
	}
}
