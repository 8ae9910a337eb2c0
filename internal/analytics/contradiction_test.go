package analytics

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osintlab/intelgraph/internal/graph"
	"github.com/osintlab/intelgraph/internal/llm"
	"github.com/osintlab/intelgraph/internal/model"
)

func testLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }

func analyticsConfig() model.AnalyticsConfig {
	return model.DefaultConfig().Analytics
}

func seedClaim(s *graph.MemoryStore, text string, conf float64, entity, source string) {
	s.Seed(model.Claim{
		ID: model.ClaimID(text), Text: text, Confidence: conf, SourceID: source,
	}, time.Now().UTC().Add(-time.Hour), []string{entity}, model.Source{URL: "https://" + source, Name: source})
}

func TestDetectNumericalContradiction(t *testing.T) {
	store := graph.NewMemoryStore()
	seedClaim(store, "Inflation rose 5 percent in the third quarter", 0.8, "Inflation", "wire-a")
	seedClaim(store, "Inflation rose 9 percent in the third quarter", 0.8, "Inflation", "wire-b")

	d := NewDetector(store, nil, analyticsConfig(), testLogger())
	got, err := d.Detect(context.Background(), "", 30)
	require.NoError(t, err)
	require.Len(t, got, 1)

	c := got[0]
	assert.Equal(t, MethodNumerical, c.Type)
	assert.Equal(t, 0.8, c.Score)
	assert.Equal(t, SeverityHigh, c.Severity)
	assert.Equal(t, []string{"Inflation"}, c.Entities)
}

func TestDetectNumericalShortClaims(t *testing.T) {
	store := graph.NewMemoryStore()
	seedClaim(store, "Inflation rose to 5%", 0.8, "Inflation", "wire-a")
	seedClaim(store, "Inflation rose to 9%", 0.8, "Inflation", "wire-b")

	d := NewDetector(store, nil, analyticsConfig(), testLogger())
	got, err := d.Detect(context.Background(), "", 30)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, MethodNumerical, got[0].Type)
	assert.Equal(t, 0.8, got[0].Score)
}

func TestDetectTemporalContradiction(t *testing.T) {
	store := graph.NewMemoryStore()
	seedClaim(store, "The evacuation began before the storm made landfall in the coastal region", 0.6, "Evacuation", "wire-a")
	seedClaim(store, "The evacuation began after the storm made landfall in the coastal region", 0.6, "Evacuation", "wire-b")

	d := NewDetector(store, nil, analyticsConfig(), testLogger())
	got, err := d.Detect(context.Background(), "", 30)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, MethodTemporal, got[0].Type)
	assert.Equal(t, 0.75, got[0].Score)
}

func TestDetectFactualContradiction(t *testing.T) {
	store := graph.NewMemoryStore()
	seedClaim(store, "The minister attended the summit meeting in Cairo", 0.6, "Minister", "wire-a")
	seedClaim(store, "The minister never attended the summit meeting in Cairo", 0.6, "Minister", "wire-b")

	d := NewDetector(store, nil, analyticsConfig(), testLogger())
	got, err := d.Detect(context.Background(), "", 30)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, MethodFactual, got[0].Type)
	// Moderate signal, moderate confidence
	assert.Equal(t, SeverityLow, got[0].Severity)
}

func TestDetectRequiresSharedEntity(t *testing.T) {
	store := graph.NewMemoryStore()
	seedClaim(store, "The minister attended the summit meeting in Cairo", 0.6, "Minister", "wire-a")
	seedClaim(store, "The minister never attended the summit meeting in Cairo", 0.6, "Delegation", "wire-b")

	d := NewDetector(store, nil, analyticsConfig(), testLogger())
	got, err := d.Detect(context.Background(), "", 30)
	require.NoError(t, err)
	assert.Empty(t, got)
}

type fakeNLI struct {
	verdict *llm.NLIVerdict
	err     error
}

func (f *fakeNLI) Compare(context.Context, string, string) (*llm.NLIVerdict, error) {
	return f.verdict, f.err
}

func TestDetectSemanticTakesPriority(t *testing.T) {
	store := graph.NewMemoryStore()
	seedClaim(store, "Inflation rose 5 percent in the third quarter", 0.9, "Inflation", "wire-a")
	seedClaim(store, "Inflation rose 9 percent in the third quarter", 0.9, "Inflation", "wire-b")

	nli := &fakeNLI{verdict: &llm.NLIVerdict{Label: llm.LabelContradiction, Confidence: 0.95, Reason: "figures conflict"}}
	d := NewDetector(store, nli, analyticsConfig(), testLogger())

	got, err := d.Detect(context.Background(), "", 30)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, MethodSemantic, got[0].Type)
	assert.Equal(t, 0.95, got[0].Score)
	assert.Equal(t, SeverityCritical, got[0].Severity)
}

func TestDetectEntailmentSuppressesHeuristics(t *testing.T) {
	store := graph.NewMemoryStore()
	seedClaim(store, "Inflation rose 5 percent in the third quarter", 0.9, "Inflation", "wire-a")
	seedClaim(store, "Inflation rose 9 percent in the third quarter", 0.9, "Inflation", "wire-b")

	nli := &fakeNLI{verdict: &llm.NLIVerdict{Label: llm.LabelEntailment, Confidence: 0.9}}
	d := NewDetector(store, nli, analyticsConfig(), testLogger())

	got, err := d.Detect(context.Background(), "", 30)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestComparePairIsSymmetric(t *testing.T) {
	d := NewDetector(graph.NewMemoryStore(), nil, analyticsConfig(), testLogger())
	a := graph.ClaimRecord{ID: "a", Text: "Inflation rose 5 percent in the third quarter", Confidence: 0.8}
	b := graph.ClaimRecord{ID: "b", Text: "Inflation rose 9 percent in the third quarter", Confidence: 0.8}
	shared := []string{"Inflation"}

	ab, okAB := d.comparePair(context.Background(), a, b, shared)
	ba, okBA := d.comparePair(context.Background(), b, a, shared)
	require.True(t, okAB)
	require.True(t, okBA)
	assert.Equal(t, ab.Type, ba.Type)
	assert.Equal(t, ab.Score, ba.Score)
	assert.Equal(t, ab.Severity, ba.Severity)
}

func TestClusterByEntityDropsSingletons(t *testing.T) {
	contradictions := []Contradiction{
		{Entities: []string{"Acme"}, Score: 0.9},
		{Entities: []string{"Acme"}, Score: 0.88},
		{Entities: []string{"Acme"}, Score: 0.7},
		{Entities: []string{"Globex"}, Score: 0.95},
	}

	clusters := ClusterByEntity(contradictions)
	require.Len(t, clusters, 1)
	assert.Equal(t, "Acme", clusters[0].Entity)
	assert.Len(t, clusters[0].Contradictions, 3)
	// mean of 0.9, 0.88, 0.7
	assert.InDelta(t, 0.8266666666666667, clusters[0].Score, 1e-9)
	assert.Equal(t, SeverityHigh, clusters[0].Impact)
}

func TestClusterImpactUsesMeanScore(t *testing.T) {
	// One strong outlier must not drag the whole cluster to critical
	clusters := ClusterByEntity([]Contradiction{
		{Entities: []string{"Acme"}, Score: 0.9},
		{Entities: []string{"Acme"}, Score: 0.66},
		{Entities: []string{"Acme"}, Score: 0.66},
	})
	require.Len(t, clusters, 1)
	assert.InDelta(t, 0.74, clusters[0].Score, 1e-9)
	assert.Equal(t, SeverityMedium, clusters[0].Impact)
}

func TestClustersSortByScore(t *testing.T) {
	clusters := ClusterByEntity([]Contradiction{
		{Entities: []string{"Acme"}, Score: 0.7},
		{Entities: []string{"Acme"}, Score: 0.7},
		{Entities: []string{"Acme"}, Score: 0.7},
		{Entities: []string{"Globex"}, Score: 0.9},
		{Entities: []string{"Globex"}, Score: 0.9},
	})
	require.Len(t, clusters, 2)
	assert.Equal(t, "Globex", clusters[0].Entity)
	assert.Equal(t, "Acme", clusters[1].Entity)
}

func TestSeverityGrid(t *testing.T) {
	assert.Equal(t, SeverityCritical, severity(0.95, 0.85))
	assert.Equal(t, SeverityHigh, severity(0.85, 0.5))
	assert.Equal(t, SeverityHigh, severity(0.72, 0.75))
	assert.Equal(t, SeverityMedium, severity(0.72, 0.5))
	assert.Equal(t, SeverityLow, severity(0.6, 0.5))
}

func TestReportBucketsAndPersist(t *testing.T) {
	store := graph.NewMemoryStore()
	seedClaim(store, "Inflation rose 5 percent in the third quarter", 0.8, "Inflation", "wire-a")
	seedClaim(store, "Inflation rose 9 percent in the third quarter", 0.8, "Inflation", "wire-b")

	d := NewDetector(store, nil, analyticsConfig(), testLogger())
	report, err := d.Report(context.Background(), "", 30)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Total)
	assert.Equal(t, 1, report.BySeverity[SeverityHigh])
	require.Len(t, report.Top, 1)

	require.NoError(t, d.Persist(context.Background(), report.Top))
	others, err := store.FindContradictoryClaims(context.Background(), report.Top[0].ClaimA.ID)
	require.NoError(t, err)
	assert.Len(t, others, 1)
}
