package pipeline

import (
	"context"
	"log/slog"

	"github.com/osintlab/intelgraph/internal/llm"
	"github.com/osintlab/intelgraph/internal/model"
)

// Default confidences for extracted items that arrive without one
const (
	defaultEntityConfidence = 0.8
	defaultEventConfidence  = 0.75
	defaultClaimConfidence  = 0.7
)

// Analyzer runs structured extraction over the collected text. An
// extraction failure is recoverable: the document continues to the
// graph stage with empty analysis rather than being dropped.
type Analyzer struct {
	extractor llm.Extractor // nil means heuristic-only operation
	minChars  int
	maxChars  int
	logger    *slog.Logger
}

func NewAnalyzer(extractor llm.Extractor, cfg model.PipelineConfig, logger *slog.Logger) *Analyzer {
	return &Analyzer{
		extractor: extractor,
		minChars:  cfg.MinAnalyzeChars,
		maxChars:  cfg.MaxAnalyzeChars,
		logger:    logger.With("stage", "analyzer"),
	}
}

func (a *Analyzer) Name() string { return "analyzer" }

func (a *Analyzer) Run(ctx context.Context, s *State) (Delta, error) {
	text := s.FullText
	if len(text) < a.minChars {
		return Delta{
			Log: []LogEntry{logEntry("analyzer", "skipped", map[string]any{
				"reason": "document too short", "chars": len(text),
			})},
		}, nil
	}
	if len(text) > a.maxChars {
		text = text[:a.maxChars]
	}

	if a.extractor == nil {
		return Delta{
			Log: []LogEntry{logEntry("analyzer", "skipped", map[string]any{
				"reason": "no extraction service configured",
			})},
		}, nil
	}

	ex, err := a.extractor.Extract(ctx, text)
	if err != nil {
		a.logger.Warn("extraction failed, continuing with empty analysis",
			"document_id", s.Raw.ID, "error", err)
		return Delta{
			Log: []LogEntry{logEntry("analyzer", "extraction_failed", map[string]any{
				"error": err.Error(),
			})},
		}, &ExtractionError{Err: err}
	}

	d := a.toDelta(s, ex)
	d.Log = []LogEntry{logEntry("analyzer", "analyzed", map[string]any{
		"entities": len(d.Entities),
		"events":   len(d.Events),
		"claims":   len(d.Claims),
	})}
	return d, nil
}

// toDelta assigns deterministic ids and source attribution to the
// extraction output and resolves claim/event references to entity ids.
func (a *Analyzer) toDelta(s *State, ex *llm.Extraction) Delta {
	var d Delta

	entityIDs := make(map[string]string, len(ex.Entities)) // name -> id
	for _, e := range ex.Entities {
		typ := model.EntityType(e.Type)
		switch typ {
		case model.EntityPerson, model.EntityOrganization, model.EntityLocation, model.EntityConcept:
		default:
			typ = model.EntityConcept
		}
		conf := e.Confidence
		if conf == 0 {
			conf = defaultEntityConfidence
		}
		id := model.EntityID(e.Name, typ)
		entityIDs[e.Name] = id
		d.Entities = append(d.Entities, model.Entity{
			ID:         id,
			Name:       e.Name,
			Type:       typ,
			Confidence: model.ClampConfidence(conf),
			Context:    e.Context,
			Mentions:   1,
			SourceID:   s.Source.Name,
		})
	}

	eventIDs := make(map[string]string, len(ex.Events)) // description -> id
	for _, ev := range ex.Events {
		conf := ev.Confidence
		if conf == 0 {
			conf = defaultEventConfidence
		}
		id := model.EventID(ev.Description)
		eventIDs[ev.Description] = id
		d.Events = append(d.Events, model.Event{
			ID:           id,
			Description:  ev.Description,
			Type:         ev.Type,
			Timestamp:    ev.Timestamp,
			Location:     ev.Location,
			Participants: resolveRefs(ev.Participants, entityIDs),
			Confidence:   model.ClampConfidence(conf),
			SourceID:     s.Source.Name,
		})
	}

	for _, cl := range ex.Claims {
		if cl.Text == "" {
			continue
		}
		conf := cl.Confidence
		if conf == 0 {
			conf = defaultClaimConfidence
		}
		stance := model.Stance(cl.Stance)
		switch stance {
		case model.StanceSupports, model.StanceRefutes, model.StanceNeutral:
		default:
			stance = model.StanceNeutral
		}
		d.Claims = append(d.Claims, model.Claim{
			ID:            model.ClaimID(cl.Text),
			Text:          cl.Text,
			Context:       cl.Context,
			Stance:        stance,
			Confidence:    model.ClampConfidence(conf),
			AboutEntities: resolveRefs(cl.AboutEntities, entityIDs),
			AboutEvents:   resolveRefs(cl.AboutEvents, eventIDs),
			SourceID:      s.Source.Name,
			SourceURL:     s.Source.URL,
		})
	}

	d.Sentiment = ex.Sentiment
	d.Summary = ex.Summary
	return d
}

// resolveRefs maps extracted names to ids, dropping references the
// extraction did not also return as items.
func resolveRefs(names []string, ids map[string]string) []string {
	var out []string
	for _, name := range names {
		if id, ok := ids[name]; ok {
			out = append(out, id)
		}
	}
	return out
}
