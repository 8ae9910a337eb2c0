package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/osintlab/intelgraph/internal/graph"
	"github.com/osintlab/intelgraph/internal/llm"
	"github.com/osintlab/intelgraph/internal/metrics"
	"github.com/osintlab/intelgraph/internal/model"
)

// Stage is one pipeline step. A stage reads the state and returns its
// contribution as a delta; it never mutates the state directly.
type Stage interface {
	Name() string
	Run(ctx context.Context, s *State) (Delta, error)
}

// Orchestrator drives a document through the stages. Routing between
// stages is conditional on what each stage produced: documents without
// claims skip cross-referencing, documents without contradiction
// candidates skip bias detection, and any recoverable stage error
// short-circuits to the graph stage so partial results still persist.
type Orchestrator struct {
	collector *Collector
	analyzer  *Analyzer
	crossref  *CrossReferencer
	bias      *BiasDetector
	builder   *GraphBuilder

	biasEnabled bool
	logger      *slog.Logger
}

func NewOrchestrator(store graph.Store, extractor llm.Extractor, classifier llm.BiasClassifier, cfg *model.Config, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		collector:   NewCollector(),
		analyzer:    NewAnalyzer(extractor, cfg.Pipeline, logger),
		crossref:    NewCrossReferencer(store, cfg.Pipeline, logger),
		bias:        NewBiasDetector(classifier, logger),
		builder:     NewGraphBuilder(store, logger),
		biasEnabled: cfg.LLM.EnableBiasAnalysis,
		logger:      logger.With("component", "pipeline"),
	}
}

// Process runs one document to a terminal phase. The returned state is
// always terminal; the error is non-nil only for validation failures.
func (o *Orchestrator) Process(ctx context.Context, raw model.RawDocument) (*State, error) {
	s := NewState(raw)
	var firstErr error

	for !s.Phase.Terminal() {
		stage := o.stageFor(s.Phase)

		start := time.Now()
		delta, err := stage.Run(ctx, s)
		metrics.StageDuration.WithLabelValues(stage.Name()).Observe(time.Since(start).Seconds())

		Merge(s, delta)

		if err != nil {
			var vErr *ValidationError
			if errors.As(err, &vErr) {
				s.Errors = append(s.Errors, vErr.Error())
				s.Phase = PhaseFailed
				if firstErr == nil {
					firstErr = vErr
				}
				break
			}
			// Recoverable: persist whatever we have
			s.Errors = append(s.Errors, err.Error())
			metrics.ErrorsTotal.WithLabelValues(errorCategory(s.Phase)).Inc()
			if s.Phase == PhaseGraphBuilding {
				s.Phase = PhaseComplete
			} else {
				s.Phase = PhaseGraphBuilding
			}
			continue
		}

		s.Phase = o.next(s)
	}

	status := "complete"
	if s.Phase == PhaseFailed {
		status = "failed"
	}
	metrics.DocumentsTotal.WithLabelValues(status).Inc()

	o.logger.Info("document processed",
		"document_id", raw.ID,
		"phase", s.Phase,
		"claims", len(s.Claims),
		"errors", len(s.Errors),
		"duration", time.Since(s.StartedAt))

	return s, firstErr
}

func (o *Orchestrator) stageFor(p Phase) Stage {
	switch p {
	case PhaseCollecting:
		return o.collector
	case PhaseAnalyzing:
		return o.analyzer
	case PhaseCrossReferencing:
		return o.crossref
	case PhaseBiasDetecting:
		return o.bias
	default:
		return o.builder
	}
}

func (o *Orchestrator) next(s *State) Phase {
	switch s.Phase {
	case PhaseCollecting:
		return PhaseAnalyzing
	case PhaseAnalyzing:
		if len(s.Claims) == 0 {
			return PhaseGraphBuilding
		}
		return PhaseCrossReferencing
	case PhaseCrossReferencing:
		if o.biasEnabled && s.HasContradictions() {
			return PhaseBiasDetecting
		}
		return PhaseGraphBuilding
	case PhaseBiasDetecting:
		return PhaseGraphBuilding
	default:
		return PhaseComplete
	}
}

func errorCategory(p Phase) string {
	switch p {
	case PhaseAnalyzing:
		return "extraction"
	case PhaseCrossReferencing:
		return "crossref"
	case PhaseBiasDetecting:
		return "bias"
	default:
		return "pipeline"
	}
}
