package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/osintlab/intelgraph/internal/cache"
	"github.com/osintlab/intelgraph/internal/graph"
	"github.com/osintlab/intelgraph/internal/model"
)

// Component weights for the overall credibility score
const (
	weightAccuracy    = 0.40
	weightConsistency = 0.25
	weightBias        = 0.20
	weightReliability = 0.15
)

// Trend labels for score movement between runs
const (
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendStable    = "stable"
)

// SourceScore is the credibility assessment of one source. All
// components are on a 0-100 scale.
type SourceScore struct {
	SourceName  string    `json:"source_name"`
	Overall     float64   `json:"overall_score"`
	Accuracy    float64   `json:"accuracy"`
	Consistency float64   `json:"consistency"`
	Bias        float64   `json:"bias"`
	Reliability float64   `json:"reliability"`
	Rating      string    `json:"rating"`
	Trend       string    `json:"trend"`
	Strengths   []string  `json:"strengths,omitempty"`
	Weaknesses  []string  `json:"weaknesses,omitempty"`
	TotalClaims int       `json:"total_claims"`
	ScoredAt    time.Time `json:"scored_at"`
}

// CredibilityReport summarizes a scoring run across sources
type CredibilityReport struct {
	GeneratedAt time.Time      `json:"generated_at"`
	WindowDays  int            `json:"window_days"`
	Sources     []SourceScore  `json:"sources"`
	ByRating    map[string]int `json:"by_rating"`
	AvgScore    float64        `json:"avg_score"`
}

// Scorer computes per-source credibility from graph aggregates. The
// score history carries the previous run's result so each score gets a
// movement direction.
type Scorer struct {
	store   graph.Store
	history *cache.ScoreHistory
	cfg     model.AnalyticsConfig
	logger  *slog.Logger
}

func NewScorer(store graph.Store, history *cache.ScoreHistory, cfg model.AnalyticsConfig, logger *slog.Logger) *Scorer {
	return &Scorer{
		store:   store,
		history: history,
		cfg:     cfg,
		logger:  logger.With("component", "credibility"),
	}
}

// ScoreSource computes the credibility of one source over a window
func (s *Scorer) ScoreSource(ctx context.Context, sourceName string, windowDays int) (*SourceScore, error) {
	if windowDays <= 0 {
		windowDays = s.cfg.DefaultDays
	}
	since := time.Now().UTC().Add(-time.Duration(windowDays) * 24 * time.Hour)

	stats, err := s.store.SourceStats(ctx, sourceName, since)
	if err != nil {
		return nil, fmt.Errorf("loading source stats: %w", err)
	}

	score := &SourceScore{
		SourceName:  sourceName,
		TotalClaims: stats.TotalClaims,
		ScoredAt:    time.Now().UTC(),
	}

	if stats.TotalClaims == 0 {
		// A silent source is unknown, not untrustworthy
		score.Overall = 50
		score.Accuracy, score.Consistency, score.Bias, score.Reliability = 50, 50, 50, 50
		score.Rating = ratingFor(50)
		score.Trend = TrendStable
		score.Weaknesses = []string{"Insufficient data for assessment"}
		return score, nil
	}

	score.Accuracy = accuracyScore(stats)
	score.Consistency = consistencyScore(stats)
	score.Bias = biasScore(stats)
	score.Reliability = reliabilityScore(stats)

	score.Overall = weightAccuracy*score.Accuracy +
		weightConsistency*score.Consistency +
		weightBias*score.Bias +
		weightReliability*score.Reliability
	score.Rating = ratingFor(score.Overall)
	score.Trend = s.trend(sourceName, score.Overall)
	score.Strengths, score.Weaknesses = assess(score)

	return score, nil
}

// ScoreAll scores the most active sources, best first
func (s *Scorer) ScoreAll(ctx context.Context, windowDays int) ([]SourceScore, error) {
	names, err := s.store.ActiveSources(ctx, s.cfg.SourceLimit)
	if err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}

	out := make([]SourceScore, 0, len(names))
	for _, name := range names {
		score, err := s.ScoreSource(ctx, name, windowDays)
		if err != nil {
			s.logger.Warn("scoring failed", "source", name, "error", err)
			continue
		}
		out = append(out, *score)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Overall > out[j].Overall })
	return out, nil
}

// Report runs ScoreAll and buckets the results by rating
func (s *Scorer) Report(ctx context.Context, windowDays int) (*CredibilityReport, error) {
	scores, err := s.ScoreAll(ctx, windowDays)
	if err != nil {
		return nil, err
	}

	byRating := make(map[string]int)
	sum := 0.0
	for _, sc := range scores {
		byRating[sc.Rating]++
		sum += sc.Overall
	}
	avg := 0.0
	if len(scores) > 0 {
		avg = sum / float64(len(scores))
	}

	if windowDays <= 0 {
		windowDays = s.cfg.DefaultDays
	}
	return &CredibilityReport{
		GeneratedAt: time.Now().UTC(),
		WindowDays:  windowDays,
		Sources:     scores,
		ByRating:    byRating,
		AvgScore:    avg,
	}, nil
}

// trend compares against the previous run; movement under 5 points is
// noise.
func (s *Scorer) trend(sourceName string, overall float64) string {
	defer func() {
		if err := s.history.Record(sourceName, overall); err != nil {
			s.logger.Warn("recording score history failed", "source", sourceName, "error", err)
		}
	}()

	prev, ok := s.history.Previous(sourceName)
	if !ok {
		return TrendStable
	}
	switch {
	case overall > prev.Score+5:
		return TrendImproving
	case overall < prev.Score-5:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// accuracyScore rewards cross-validation and penalizes contradicted
// claims, capped so a few contradictions cannot zero a source out.
func accuracyScore(stats *graph.SourceStats) float64 {
	base := float64(stats.CrossValidatedClaims) / float64(stats.TotalClaims) * 100
	penalty := math.Min(float64(stats.ContradictedClaims)*5, 30)
	return clamp100(base - penalty)
}

func consistencyScore(stats *graph.SourceStats) float64 {
	ratio := float64(stats.ContradictedClaims) / float64(stats.TotalClaims)
	score := (1 - ratio) * 100
	if stats.AvgConfidence > 0.8 {
		score += 10
	}
	return clamp100(score)
}

// biasScore starts neutral and moves up with independent confirmation
func biasScore(stats *graph.SourceStats) float64 {
	ratio := float64(stats.CrossValidatedClaims) / float64(stats.TotalClaims)
	return clamp100(50 + ratio*50)
}

// reliabilityScore blends claim volume with average extraction
// confidence. Volume saturates: the difference between 50 and 100
// claims matters far less than between 5 and 10.
func reliabilityScore(stats *graph.SourceStats) float64 {
	n := float64(stats.TotalClaims)
	var volume float64
	switch {
	case n < 10:
		volume = 50 + n*2.5
	case n < 50:
		volume = 75 + (n-10)*0.375
	default:
		volume = 90 + math.Min((n-50)*0.1, 10)
	}
	return clamp100(volume*0.6 + stats.AvgConfidence*100*0.4)
}

func ratingFor(overall float64) string {
	switch {
	case overall >= 90:
		return "HIGHLY_RELIABLE"
	case overall >= 75:
		return "RELIABLE"
	case overall >= 60:
		return "MIXED"
	case overall >= 40:
		return "QUESTIONABLE"
	default:
		return "UNRELIABLE"
	}
}

// assess thresholds every component at 80/60 and then adds the
// sharper observations the generic pass cannot phrase.
func assess(score *SourceScore) (strengths, weaknesses []string) {
	components := []struct {
		name  string
		value float64
	}{
		{"accuracy", score.Accuracy},
		{"consistency", score.Consistency},
		{"bias", score.Bias},
		{"reliability", score.Reliability},
	}
	for _, c := range components {
		switch {
		case c.value >= 80:
			strengths = append(strengths, fmt.Sprintf("High %s (%.1f/100)", c.name, c.value))
		case c.value < 60:
			weaknesses = append(weaknesses, fmt.Sprintf("Low %s (%.1f/100)", c.name, c.value))
		}
	}

	if score.Consistency >= 90 {
		strengths = append(strengths, "Very consistent reporting")
	}
	if score.Accuracy >= 85 {
		strengths = append(strengths, "Well cross-validated claims")
	}
	if score.Bias >= 80 {
		strengths = append(strengths, "Balanced perspectives")
	}
	if score.Consistency < 60 {
		weaknesses = append(weaknesses, "Frequent self-contradictions")
	}
	if score.Accuracy < 50 {
		weaknesses = append(weaknesses, "Many claims lack corroboration")
	}
	if score.Reliability < 60 {
		weaknesses = append(weaknesses, "Limited reporting volume")
	}
	return strengths, weaknesses
}

func clamp100(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
