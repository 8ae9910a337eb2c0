package pipeline

import (
	"context"
	"log/slog"
	"strings"

	"github.com/osintlab/intelgraph/internal/llm"
	"github.com/osintlab/intelgraph/internal/model"
)

// Bias recommendation labels
const (
	LowBias      = "LOW_BIAS"
	ModerateBias = "MODERATE_BIAS"
	HighBias     = "HIGH_BIAS"
)

// biasIndicators are rhetorical markers counted by the pattern pass
var biasIndicators = map[string][]string{
	"loaded_language": {
		"shocking", "outrageous", "devastating", "disgraceful",
		"radical", "extremist", "corrupt", "disaster",
	},
	"absolute_language": {
		"always", "never", "everyone", "nobody", "all", "none",
		"undeniable", "unquestionable",
	},
	"emotional_appeal": {
		"terrifying", "heartbreaking", "alarming", "horrific",
		"outrage", "fury", "betrayal",
	},
}

// BiasDetector scores rhetorical bias and classifies how well each
// claim is supported by the document's own text. It only runs for
// documents where the cross-reference stage found contradictions.
type BiasDetector struct {
	classifier llm.BiasClassifier // nil means pattern-only operation
	logger     *slog.Logger
}

func NewBiasDetector(classifier llm.BiasClassifier, logger *slog.Logger) *BiasDetector {
	return &BiasDetector{classifier: classifier, logger: logger.With("stage", "bias")}
}

func (b *BiasDetector) Name() string { return "bias" }

func (b *BiasDetector) Run(ctx context.Context, s *State) (Delta, error) {
	var d Delta

	patternScore, matches := patternBias(s.FullText, s.WordCount)

	// The model pass is advisory: on failure we treat the document as
	// neutral-from-the-model and keep the pattern evidence.
	modelScore := 0.5
	var types []string
	framing := ""
	if b.classifier != nil {
		verdict, err := b.classifier.ClassifyBias(ctx, s.FullText)
		if err != nil {
			b.logger.Warn("bias classification failed", "document_id", s.Raw.ID, "error", err)
			d.Errors = append(d.Errors, "bias: "+err.Error())
		} else {
			modelScore = verdict.Score
			types = verdict.Types
			framing = verdict.Framing
		}
	}

	overall := model.ClampConfidence((patternScore + modelScore) / 2)
	d.Bias = &BiasAnalysis{
		OverallScore:   overall,
		PatternScore:   patternScore,
		ModelScore:     modelScore,
		BiasTypes:      types,
		PatternMatches: matches,
		Framing:        framing,
		Recommendation: recommendation(overall),
	}

	supported, unsupported := 0, 0
	for _, claim := range s.Claims {
		v := verifyClaim(claim.Text, s.FullText)
		conf := claim.Confidence - overall*0.2
		switch v.Status {
		case model.VerificationSupported:
			conf += 0.1
			supported++
		case model.VerificationUnsupported:
			conf -= 0.2
			unsupported++
		}
		d.ClaimPatches = append(d.ClaimPatches, ClaimPatch{
			ClaimID:      claim.ID,
			Confidence:   &conf,
			Verification: &v,
		})
	}

	if d.Bias.Recommendation == HighBias {
		d.Alert = true
	}
	d.Log = []LogEntry{logEntry("bias", "bias_detected", map[string]any{
		"overall_score": overall,
		"supported":     supported,
		"unsupported":   unsupported,
	})}
	return d, nil
}

// patternBias scores indicator density per hundred words, capped at 1
func patternBias(text string, wordCount int) (float64, map[string][]string) {
	if wordCount == 0 {
		return 0, nil
	}
	lower := strings.ToLower(text)

	matches := make(map[string][]string)
	total := 0
	for category, terms := range biasIndicators {
		for _, term := range terms {
			if n := strings.Count(lower, term); n > 0 {
				matches[category] = append(matches[category], term)
				total += n
			}
		}
	}
	if total == 0 {
		return 0, nil
	}

	score := float64(total) / float64(wordCount) * 100
	return model.ClampConfidence(score), matches
}

func recommendation(score float64) string {
	switch {
	case score < 0.3:
		return LowBias
	case score < 0.6:
		return ModerateBias
	default:
		return HighBias
	}
}

// verifyClaim measures how much of the claim's vocabulary the document
// itself contains. A claim the document barely supports is downgraded.
func verifyClaim(claimText, docText string) model.Verification {
	docWords := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(docText)) {
		docWords[strings.Trim(w, ".,;:!?\"'")] = true
	}

	significant, found := 0, 0
	for _, w := range strings.Fields(strings.ToLower(claimText)) {
		w = strings.Trim(w, ".,;:!?\"'")
		if len(w) <= 3 {
			continue
		}
		significant++
		if docWords[w] {
			found++
		}
	}

	ratio := 1.0
	if significant > 0 {
		ratio = float64(found) / float64(significant)
	}

	status := model.VerificationPartiallySupported
	switch {
	case ratio >= 0.7:
		status = model.VerificationSupported
	case ratio < 0.4:
		status = model.VerificationUnsupported
	}
	return model.Verification{
		Status:       status,
		SupportRatio: ratio,
		Method:       "lexical_overlap",
	}
}
