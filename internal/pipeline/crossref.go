package pipeline

import (
	"context"
	"log/slog"
	"math"
	"strings"

	"github.com/osintlab/intelgraph/internal/graph"
	"github.com/osintlab/intelgraph/internal/model"
)

const (
	verifiedBoost        = 0.2
	contradictionPenalty = 0.15
)

var negationTerms = []string{"not", "no", "never", "cannot", "isn't", "aren't", "won't"}

// CrossReferencer checks each new claim against the existing graph:
// lexically similar claims raise or lower confidence, and opposing
// polarity marks a contradiction candidate for the bias stage.
type CrossReferencer struct {
	store        graph.Store
	similarLimit int
	logger       *slog.Logger
}

func NewCrossReferencer(store graph.Store, cfg model.PipelineConfig, logger *slog.Logger) *CrossReferencer {
	limit := cfg.SimilarLimit
	if limit <= 0 {
		limit = 5
	}
	return &CrossReferencer{
		store:        store,
		similarLimit: limit,
		logger:       logger.With("stage", "crossref"),
	}
}

func (c *CrossReferencer) Name() string { return "crossref" }

func (c *CrossReferencer) Run(ctx context.Context, s *State) (Delta, error) {
	var d Delta
	similarTotal, contradictionTotal := 0, 0

	for _, claim := range s.Claims {
		matches, err := c.store.FindSimilarClaims(ctx, claim.Text, c.similarLimit)
		if err != nil {
			c.logger.Warn("similarity lookup failed", "claim_id", claim.ID, "error", err)
			d.Errors = append(d.Errors, "crossref: "+err.Error())
			continue
		}

		patch := ClaimPatch{ClaimID: claim.ID}
		verified := false
		for _, m := range matches {
			if m.ID == claim.ID {
				continue
			}
			patch.Similar = append(patch.Similar, model.SimilarClaim{
				ID:         m.ID,
				Text:       m.Text,
				Confidence: m.Confidence,
				Status:     m.Status,
			})
			if m.Status == "VERIFIED" {
				verified = true
			}
			if opposingPolarity(claim.Text, m.Text) {
				patch.Contradicts = append(patch.Contradicts, model.ClaimContradiction{
					ClaimID:    m.ID,
					Text:       m.Text,
					Confidence: m.Confidence,
					Reason:     "opposing polarity on overlapping statement",
				})
			}
		}

		// The boost saturates at 1.0 before any penalty is taken
		conf := claim.Confidence
		if verified {
			conf = math.Min(1, conf+verifiedBoost)
		}
		conf -= contradictionPenalty * float64(len(patch.Contradicts))
		if conf != claim.Confidence || len(patch.Similar) > 0 {
			patch.Confidence = &conf
			d.ClaimPatches = append(d.ClaimPatches, patch)
		}

		similarTotal += len(patch.Similar)
		contradictionTotal += len(patch.Contradicts)
	}

	if contradictionTotal > 0 {
		d.Alert = true
	}
	d.Log = []LogEntry{logEntry("crossref", "cross_referenced", map[string]any{
		"claims":         len(s.Claims),
		"similar":        similarTotal,
		"contradictions": contradictionTotal,
	})}
	return d, nil
}

// opposingPolarity reports whether exactly one of the two texts is
// negated while they still share enough vocabulary to be about the
// same statement.
func opposingPolarity(a, b string) bool {
	if hasNegation(a) == hasNegation(b) {
		return false
	}
	return wordOverlap(a, b) > 3
}

func hasNegation(text string) bool {
	lower := strings.ToLower(text)
	for _, term := range negationTerms {
		for _, w := range strings.Fields(lower) {
			if strings.Trim(w, ".,;:!?\"'") == term {
				return true
			}
		}
	}
	return false
}

func wordOverlap(a, b string) int {
	seen := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(a)) {
		w = strings.Trim(w, ".,;:!?\"'")
		if len(w) > 3 {
			seen[w] = true
		}
	}
	count := 0
	matched := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(b)) {
		w = strings.Trim(w, ".,;:!?\"'")
		if seen[w] && !matched[w] {
			matched[w] = true
			count++
		}
	}
	return count
}
