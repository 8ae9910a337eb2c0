package graph

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osintlab/intelgraph/internal/model"
)

var ctx = context.Background()

func TestUpsertEntityIsIdempotent(t *testing.T) {
	s := NewMemoryStore()

	e := model.Entity{ID: model.EntityID("Acme", model.EntityOrganization), Name: "Acme", Type: model.EntityOrganization, Mentions: 1}
	require.NoError(t, s.UpsertEntity(ctx, e))
	require.NoError(t, s.UpsertEntity(ctx, e))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.Entities)
	// Re-extraction accumulates mentions on the single node
	assert.Equal(t, 2, s.entities[e.ID].Mentions)
}

func TestUpsertClaimKeepsFirstTimestamp(t *testing.T) {
	s := NewMemoryStore()
	t0 := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time { return t0 })

	c := model.Claim{ID: "c1", Text: "rates rose", Confidence: 0.7}
	require.NoError(t, s.UpsertClaim(ctx, c))

	s.SetClock(func() time.Time { return t0.Add(48 * time.Hour) })
	c.Confidence = 0.9
	require.NoError(t, s.UpsertClaim(ctx, c))

	assert.Equal(t, t0, s.claims["c1"].ts)
	assert.Equal(t, 0.9, s.claims["c1"].claim.Confidence)
}

func TestFindSimilarClaimsLeadingTerms(t *testing.T) {
	s := NewMemoryStore()
	now := time.Now()
	s.Seed(model.Claim{ID: "c1", Text: "The central bank raised rates", Confidence: 0.8}, now, nil, model.Source{})
	s.Seed(model.Claim{ID: "c2", Text: "Unemployment fell sharply", Confidence: 0.6}, now, nil, model.Source{})

	got, err := s.FindSimilarClaims(ctx, "The central bank held steady", 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c1", got[0].ID)
	assert.Equal(t, "UNVERIFIED", got[0].Status)

	// Capitalization must not hide a match
	got, err = s.FindSimilarClaims(ctx, "THE CENTRAL BANK cut rates", 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestClaimsSinceFiltersAndSorts(t *testing.T) {
	s := NewMemoryStore()
	now := time.Now().UTC()
	s.Seed(model.Claim{ID: "old", Text: "old claim", Confidence: 0.5}, now.Add(-72*time.Hour), []string{"Acme"}, model.Source{})
	s.Seed(model.Claim{ID: "c1", Text: "first", Confidence: 0.7}, now.Add(-2*time.Hour), []string{"Acme"}, model.Source{})
	s.Seed(model.Claim{ID: "c2", Text: "second", Confidence: 0.8}, now.Add(-1*time.Hour), []string{"Globex"}, model.Source{})

	got, err := s.ClaimsSince(ctx, "", now.Add(-24*time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Newest first
	assert.Equal(t, "c2", got[0].ID)
	assert.Equal(t, []string{"Globex"}, got[0].Entities)

	got, err = s.ClaimsSince(ctx, "Acme", now.Add(-24*time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c1", got[0].ID)
}

func TestSourceStatsCountsCrossValidation(t *testing.T) {
	s := NewMemoryStore()
	now := time.Now().UTC()
	wire := model.Source{URL: "https://wire.example.com", Name: "Wire"}
	other := model.Source{URL: "https://other.example.com", Name: "Other"}

	s.Seed(model.Claim{ID: "c1", Text: "a", Confidence: 0.8, SourceID: "Wire"}, now, []string{"Acme"}, wire)
	s.Seed(model.Claim{ID: "c2", Text: "b", Confidence: 0.6, SourceID: "Wire"}, now, []string{"Orphan"}, wire)
	// Same entity, different source: cross-validates c1
	s.Seed(model.Claim{ID: "c3", Text: "c", Confidence: 0.9, SourceID: "Other"}, now, []string{"Acme"}, other)
	require.NoError(t, s.LinkContradiction(ctx, "c2", "c3", 0.8, "factual", "high", now))

	stats, err := s.SourceStats(ctx, "Wire", now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalClaims)
	assert.Equal(t, 1, stats.ContradictedClaims)
	assert.Equal(t, 1, stats.CrossValidatedClaims)
	assert.InDelta(t, 0.7, stats.AvgConfidence, 1e-9)
}

func TestMentionSpikes(t *testing.T) {
	s := NewMemoryStore()
	now := time.Now().UTC()
	cutoff := now.Add(-24 * time.Hour)

	// One historical mention, six recent: a spike
	s.Seed(model.Claim{ID: "h1", Text: "old", Confidence: 0.7}, cutoff.Add(-time.Hour), []string{"Acme"}, model.Source{})
	for i := 0; i < 6; i++ {
		s.Seed(model.Claim{ID: string(rune('a' + i)), Text: "new", Confidence: 0.7},
			now.Add(-time.Duration(i)*time.Minute), []string{"Acme"}, model.Source{})
	}
	// Steady entity: no spike
	s.Seed(model.Claim{ID: "s1", Text: "x", Confidence: 0.7}, cutoff.Add(-time.Hour), []string{"Globex"}, model.Source{})
	s.Seed(model.Claim{ID: "s2", Text: "y", Confidence: 0.7}, now, []string{"Globex"}, model.Source{})

	spikes, err := s.MentionSpikes(ctx, cutoff)
	require.NoError(t, err)
	require.Len(t, spikes, 1)
	assert.Equal(t, "Acme", spikes[0].EntityName)
	assert.Equal(t, 6, spikes[0].RecentCount)
	assert.Equal(t, 1, spikes[0].HistoricalCount)
}

func TestConfidenceDrops(t *testing.T) {
	s := NewMemoryStore()
	now := time.Now().UTC()
	cutoff := now.Add(-24 * time.Hour)

	s.Seed(model.Claim{ID: "h1", Text: "a", Confidence: 0.9}, cutoff.Add(-2*time.Hour), []string{"Acme"}, model.Source{})
	s.Seed(model.Claim{ID: "h2", Text: "b", Confidence: 0.8}, cutoff.Add(-time.Hour), []string{"Acme"}, model.Source{})
	s.Seed(model.Claim{ID: "r1", Text: "c", Confidence: 0.3}, now, []string{"Acme"}, model.Source{})

	drops, err := s.ConfidenceDrops(ctx, cutoff)
	require.NoError(t, err)
	require.Len(t, drops, 1)
	assert.Equal(t, "Acme", drops[0].EntityName)
	assert.InDelta(t, 0.3, drops[0].RecentAvg, 1e-9)
	assert.InDelta(t, 0.85, drops[0].HistoricalAvg, 1e-9)
}

func TestEntityClusters(t *testing.T) {
	s := NewMemoryStore()
	now := time.Now().UTC()

	s.Seed(model.Claim{ID: "c1", Text: "a", Confidence: 0.7}, now,
		[]string{"Hub", "Spoke1", "Spoke2"}, model.Source{})
	s.Seed(model.Claim{ID: "c2", Text: "b", Confidence: 0.7}, now,
		[]string{"Hub", "Spoke3"}, model.Source{})

	clusters, err := s.EntityClusters(ctx, now.Add(-time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, clusters, 1)
	assert.Equal(t, "Hub", clusters[0].EntityName)
	assert.Equal(t, 3, clusters[0].NewConnections)
}

func TestLinkContradictionOverwrites(t *testing.T) {
	s := NewMemoryStore()
	now := time.Now()
	require.NoError(t, s.LinkContradiction(ctx, "a", "b", 0.7, "factual", "medium", now))
	require.NoError(t, s.LinkContradiction(ctx, "b", "a", 0.9, "numerical", "high", now))

	require.Len(t, s.edges, 1)
	e := s.edges[edgeKey("a", "b")]
	assert.Equal(t, 0.9, e.score)
	assert.Equal(t, "numerical", e.typ)
}

func TestLeadingTerms(t *testing.T) {
	assert.Equal(t, "the central bank", leadingTerms("The Central Bank raised rates", 3))
	assert.Equal(t, "two words", leadingTerms("Two Words", 3))
	assert.Equal(t, "", leadingTerms("   ", 3))
}
