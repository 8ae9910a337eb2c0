package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osintlab/intelgraph/internal/cache"
	"github.com/osintlab/intelgraph/internal/graph"
)

// statsStore serves canned per-source aggregates
type statsStore struct {
	graph.Store
	stats   map[string]*graph.SourceStats
	sources []string
}

func (s *statsStore) SourceStats(_ context.Context, name string, _ time.Time) (*graph.SourceStats, error) {
	if st, ok := s.stats[name]; ok {
		return st, nil
	}
	return &graph.SourceStats{}, nil
}

func (s *statsStore) ActiveSources(context.Context, int) ([]string, error) {
	return s.sources, nil
}

func newScorer(store graph.Store) *Scorer {
	history := cache.NewScoreHistory(cache.NewMemoryCache(time.Hour, time.Hour), time.Hour)
	return NewScorer(store, history, analyticsConfig(), testLogger())
}

func TestScoreSourceComponents(t *testing.T) {
	store := &statsStore{stats: map[string]*graph.SourceStats{
		"Wire": {TotalClaims: 100, ContradictedClaims: 0, CrossValidatedClaims: 80, AvgConfidence: 0.85},
	}}

	score, err := newScorer(store).ScoreSource(context.Background(), "Wire", 30)
	require.NoError(t, err)

	assert.InDelta(t, 80, score.Accuracy, 1e-9)
	assert.InDelta(t, 100, score.Consistency, 1e-9)
	assert.InDelta(t, 90, score.Bias, 1e-9)
	assert.InDelta(t, 91, score.Reliability, 1e-9)
	assert.InDelta(t, 88.65, score.Overall, 1e-9)
	assert.Equal(t, "RELIABLE", score.Rating)

	// Every component at 80+ registers as a strength
	assert.Contains(t, score.Strengths, "High accuracy (80.0/100)")
	assert.Contains(t, score.Strengths, "Very consistent reporting")
	assert.Contains(t, score.Strengths, "Balanced perspectives")
	assert.Empty(t, score.Weaknesses)
}

func TestRatingLadder(t *testing.T) {
	assert.Equal(t, "HIGHLY_RELIABLE", ratingFor(92))
	assert.Equal(t, "RELIABLE", ratingFor(75))
	assert.Equal(t, "MIXED", ratingFor(64))
	assert.Equal(t, "QUESTIONABLE", ratingFor(45))
	assert.Equal(t, "UNRELIABLE", ratingFor(39))
}

func TestScoreSourceContradictionPenaltyIsCapped(t *testing.T) {
	store := &statsStore{stats: map[string]*graph.SourceStats{
		"Tabloid": {TotalClaims: 20, ContradictedClaims: 15, CrossValidatedClaims: 10, AvgConfidence: 0.5},
	}}

	score, err := newScorer(store).ScoreSource(context.Background(), "Tabloid", 30)
	require.NoError(t, err)
	// 50 base minus the 30-point cap, not minus 75
	assert.InDelta(t, 20, score.Accuracy, 1e-9)
	assert.Contains(t, score.Weaknesses, "Low accuracy (20.0/100)")
	assert.Contains(t, score.Weaknesses, "Many claims lack corroboration")
}

func TestScoreSourceNoDataIsNeutral(t *testing.T) {
	store := &statsStore{stats: map[string]*graph.SourceStats{}}

	score, err := newScorer(store).ScoreSource(context.Background(), "Unknown", 30)
	require.NoError(t, err)
	assert.Equal(t, 50.0, score.Overall)
	assert.Equal(t, "QUESTIONABLE", score.Rating)
	assert.Equal(t, TrendStable, score.Trend)
	assert.Equal(t, []string{"Insufficient data for assessment"}, score.Weaknesses)
}

func TestScoreTrendAgainstHistory(t *testing.T) {
	store := &statsStore{stats: map[string]*graph.SourceStats{
		"Wire": {TotalClaims: 100, CrossValidatedClaims: 80, AvgConfidence: 0.85},
	}}
	scorer := newScorer(store)

	first, err := scorer.ScoreSource(context.Background(), "Wire", 30)
	require.NoError(t, err)
	assert.Equal(t, TrendStable, first.Trend)

	// Same stats next run: movement is under the 5-point threshold
	second, err := scorer.ScoreSource(context.Background(), "Wire", 30)
	require.NoError(t, err)
	assert.Equal(t, TrendStable, second.Trend)

	// The source collapses
	store.stats["Wire"] = &graph.SourceStats{TotalClaims: 100, ContradictedClaims: 40, CrossValidatedClaims: 10, AvgConfidence: 0.4}
	third, err := scorer.ScoreSource(context.Background(), "Wire", 30)
	require.NoError(t, err)
	assert.Equal(t, TrendDeclining, third.Trend)
}

func TestScoreAllSortsBestFirst(t *testing.T) {
	store := &statsStore{
		sources: []string{"Weak", "Strong"},
		stats: map[string]*graph.SourceStats{
			"Strong": {TotalClaims: 100, CrossValidatedClaims: 80, AvgConfidence: 0.85},
			"Weak":   {TotalClaims: 10, ContradictedClaims: 6, CrossValidatedClaims: 1, AvgConfidence: 0.4},
		},
	}

	scores, err := newScorer(store).ScoreAll(context.Background(), 30)
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.Equal(t, "Strong", scores[0].SourceName)

	report, err := newScorer(store).Report(context.Background(), 30)
	require.NoError(t, err)
	assert.Equal(t, 1, report.ByRating["RELIABLE"])
	assert.Greater(t, report.AvgScore, 0.0)
}
