package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/osintlab/intelgraph/internal/graph"
	"github.com/osintlab/intelgraph/internal/metrics"
)

// GraphBuilder persists the accumulated state as idempotent graph
// mutations. It is the stage every document reaches, including ones
// whose analysis failed, so it never aborts: each failed write is
// recorded and the rest of the batch continues.
type GraphBuilder struct {
	store  graph.Store
	logger *slog.Logger
}

func NewGraphBuilder(store graph.Store, logger *slog.Logger) *GraphBuilder {
	return &GraphBuilder{store: store, logger: logger.With("stage", "graph")}
}

func (g *GraphBuilder) Name() string { return "graph" }

func (g *GraphBuilder) Run(ctx context.Context, s *State) (Delta, error) {
	var d Delta

	if s.Source.Name != "" {
		d.Ops = append(d.Ops, g.record("UPSERT", "Source", s.Source.URL,
			g.store.UpsertSource(ctx, s.Source)))
	}

	for _, e := range s.Entities {
		d.Ops = append(d.Ops, g.record("UPSERT", "Entity", e.ID,
			g.store.UpsertEntity(ctx, e)))
	}
	for _, ev := range s.Events {
		d.Ops = append(d.Ops, g.record("UPSERT", "Event", ev.ID,
			g.store.UpsertEvent(ctx, ev)))
	}

	now := time.Now().UTC()
	for _, c := range s.Claims {
		d.Ops = append(d.Ops, g.record("UPSERT", "Claim", c.ID,
			g.store.UpsertClaim(ctx, c)))

		for _, entityID := range c.AboutEntities {
			d.Ops = append(d.Ops, g.record("LINK", "Claim->Entity", c.ID,
				g.store.LinkClaimToEntity(ctx, c.ID, entityID)))
		}
		if c.SourceURL != "" {
			d.Ops = append(d.Ops, g.record("LINK", "Claim->Source", c.ID,
				g.store.LinkClaimToSource(ctx, c.ID, c.SourceURL)))
		}
		for _, contra := range c.Contradicts {
			severity := "medium"
			if contra.Confidence > 0.8 {
				severity = "high"
			}
			d.Ops = append(d.Ops, g.record("LINK", "Claim->Claim", c.ID,
				g.store.LinkContradiction(ctx, c.ID, contra.ClaimID,
					contra.Confidence, "cross_reference", severity, now)))
		}
	}

	written, failed := 0, 0
	for _, op := range d.Ops {
		if op.Err == "" {
			written++
		} else {
			failed++
		}
	}
	d.Log = []LogEntry{logEntry("graph", "persisted", map[string]any{
		"operations": written,
		"failed":     failed,
	})}
	return d, nil
}

func (g *GraphBuilder) record(op, nodeType, nodeID string, err error) GraphOp {
	rec := GraphOp{Op: op, NodeType: nodeType, NodeID: nodeID}
	if err != nil {
		rec.Err = err.Error()
		metrics.ErrorsTotal.WithLabelValues("graph_write").Inc()
		g.logger.Warn("graph write failed",
			"op", op, "node_type", nodeType, "node_id", nodeID, "error", err)
	}
	return rec
}
