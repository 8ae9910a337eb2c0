package analytics

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osintlab/intelgraph/internal/graph"
	"github.com/osintlab/intelgraph/internal/model"
)

func TestParsePeriod(t *testing.T) {
	for in, want := range map[string]int{"24h": 24, "7d": 168, "30d": 720, "": 168} {
		got, err := ParsePeriod(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParsePeriod("30x")
	assert.Error(t, err)
	_, err = ParsePeriod("-2d")
	assert.Error(t, err)
}

func TestTrendsDirections(t *testing.T) {
	store := graph.NewMemoryStore()
	now := time.Now().UTC()

	// Heavily mentioned entity
	for i := 0; i < 12; i++ {
		store.Seed(model.Claim{ID: fmt.Sprintf("hot-%d", i), Text: "hot topic", Confidence: 0.8},
			now.Add(-time.Duration(i)*time.Hour), []string{"HotTopic"}, model.Source{})
	}
	// Barely mentioned entity
	store.Seed(model.Claim{ID: "q1", Text: "quiet", Confidence: 0.7},
		now.Add(-time.Hour), []string{"Quiet"}, model.Source{})

	a := NewTemporalAnalyzer(store, analyticsConfig(), testLogger())
	trends, err := a.Trends(context.Background(), "7d")
	require.NoError(t, err)
	require.Len(t, trends, 2)

	byName := make(map[string]Trend)
	for _, tr := range trends {
		byName[tr.EntityName] = tr
	}
	assert.Equal(t, TrendIncreasingMentions, byName["HotTopic"].Direction)
	assert.Equal(t, 12, byName["HotTopic"].Mentions)
	assert.Equal(t, TrendDecliningMentions, byName["Quiet"].Direction)
	assert.Equal(t, "declining", byName["Quiet"].Direction)
}

func TestConfidenceTrend(t *testing.T) {
	assert.Equal(t, "rising", confidenceTrend([]float64{0.5, 0.5, 0.8, 0.9}))
	assert.Equal(t, "falling", confidenceTrend([]float64{0.9, 0.8, 0.5, 0.5}))
	assert.Equal(t, "flat", confidenceTrend([]float64{0.7, 0.72, 0.69, 0.71}))
	assert.Equal(t, "flat", confidenceTrend([]float64{0.7}))
}

func TestAnomaliesSpikeAndCluster(t *testing.T) {
	store := graph.NewMemoryStore()
	now := time.Now().UTC()
	cutoff := now.Add(-24 * time.Hour)

	// Spike: 1 historical mention, 6 inside the window
	store.Seed(model.Claim{ID: "h1", Text: "old", Confidence: 0.7},
		cutoff.Add(-time.Hour), []string{"Spiky"}, model.Source{})
	for i := 0; i < 6; i++ {
		store.Seed(model.Claim{ID: fmt.Sprintf("r%d", i), Text: "new", Confidence: 0.7},
			now.Add(-time.Duration(i)*time.Minute), []string{"Spiky"}, model.Source{})
	}
	// Cluster: one claim tying four entities together
	store.Seed(model.Claim{ID: "c1", Text: "joint", Confidence: 0.7},
		now, []string{"Hub", "A", "B", "C"}, model.Source{})

	a := NewTemporalAnalyzer(store, analyticsConfig(), testLogger())
	anomalies, err := a.Anomalies(context.Background(), 24)
	require.NoError(t, err)

	byType := make(map[string][]Anomaly)
	for _, an := range anomalies {
		byType[an.Type] = append(byType[an.Type], an)
	}

	require.Len(t, byType[AnomalyMentionSpike], 1)
	// 6 recent vs 1 historical is better than 5x
	assert.Equal(t, SeverityCritical, byType[AnomalyMentionSpike][0].Severity)

	require.NotEmpty(t, byType[AnomalyNewCluster])
	found := false
	for _, an := range byType[AnomalyNewCluster] {
		if an.EntityName == "Hub" {
			found = true
			assert.Equal(t, SeverityMedium, an.Severity)
		}
	}
	assert.True(t, found)
}

func TestAnomaliesConfidenceDrop(t *testing.T) {
	store := graph.NewMemoryStore()
	now := time.Now().UTC()
	cutoff := now.Add(-24 * time.Hour)

	store.Seed(model.Claim{ID: "h1", Text: "a", Confidence: 0.9}, cutoff.Add(-2*time.Hour), []string{"Shaky"}, model.Source{})
	store.Seed(model.Claim{ID: "h2", Text: "b", Confidence: 0.8}, cutoff.Add(-time.Hour), []string{"Shaky"}, model.Source{})
	store.Seed(model.Claim{ID: "r1", Text: "c", Confidence: 0.3}, now, []string{"Shaky"}, model.Source{})

	a := NewTemporalAnalyzer(store, analyticsConfig(), testLogger())
	anomalies, err := a.Anomalies(context.Background(), 24)
	require.NoError(t, err)

	var drop *Anomaly
	for i := range anomalies {
		if anomalies[i].Type == AnomalyConfidenceDrop {
			drop = &anomalies[i]
		}
	}
	require.NotNil(t, drop)
	assert.Equal(t, "Shaky", drop.EntityName)
	assert.Equal(t, SeverityHigh, drop.Severity)
}

func TestSummaryWindows(t *testing.T) {
	store := graph.NewMemoryStore()
	now := time.Now().UTC()
	store.Seed(model.Claim{ID: "new", Text: "recent", Confidence: 0.7}, now.Add(-time.Hour), []string{"X"}, model.Source{})
	store.Seed(model.Claim{ID: "older", Text: "older", Confidence: 0.7}, now.Add(-3*24*time.Hour), []string{"Y"}, model.Source{})

	a := NewTemporalAnalyzer(store, analyticsConfig(), testLogger())
	summary, err := a.Summary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Windows["24h"].TotalClaims)
	assert.Equal(t, 2, summary.Windows["7d"].TotalClaims)
	assert.Equal(t, 2, summary.Windows["30d"].TotalClaims)
}
