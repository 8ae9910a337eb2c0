// Package graph defines the knowledge-graph read/write contract and its
// backends. All writes are idempotent upserts keyed by deterministic id,
// so concurrent workers writing overlapping nodes converge without
// duplicates; last-writer-wins on mutable fields.
package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/osintlab/intelgraph/internal/model"
)

// StoredClaim is a claim read back from the graph
type StoredClaim struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	Confidence float64   `json:"confidence"`
	Status     string    `json:"status,omitempty"` // VERIFIED, UNVERIFIED
	Timestamp  time.Time `json:"timestamp"`
}

// ClaimRecord is a claim with its linked entity names, for pairwise analysis
type ClaimRecord struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
	Entities   []string  `json:"entities"`
}

// SourceStats are the aggregate counts behind credibility scoring
type SourceStats struct {
	TotalClaims          int     `json:"total_claims"`
	ContradictedClaims   int     `json:"contradicted_claims"`
	CrossValidatedClaims int     `json:"cross_validated_claims"`
	AvgConfidence        float64 `json:"avg_confidence"`
}

// EntityActivity is a windowed per-entity aggregate for trend detection.
// Confidences are ordered oldest first.
type EntityActivity struct {
	EntityName  string    `json:"entity_name"`
	EntityType  string    `json:"entity_type"`
	Mentions    int       `json:"mention_count"`
	Confidences []float64 `json:"confidences"`
	FirstSeen   time.Time `json:"first_seen"`
	LastSeen    time.Time `json:"last_seen"`
}

// MentionSpike compares recent vs pre-window mention counts
type MentionSpike struct {
	EntityName      string `json:"entity_name"`
	EntityType      string `json:"entity_type"`
	RecentCount     int    `json:"recent_count"`
	HistoricalCount int    `json:"historical_count"`
}

// ConfidenceShift compares recent vs pre-window mean confidence
type ConfidenceShift struct {
	EntityName    string  `json:"entity_name"`
	EntityType    string  `json:"entity_type"`
	RecentAvg     float64 `json:"recent_confidence"`
	HistoricalAvg float64 `json:"historical_confidence"`
}

// EntityCluster counts new co-occurrence edges formed within a window
type EntityCluster struct {
	EntityName     string `json:"entity_name"`
	EntityType     string `json:"entity_type"`
	NewConnections int    `json:"new_connections"`
}

// TimelineMention is one claim mention on an entity timeline
type TimelineMention struct {
	Timestamp  time.Time `json:"timestamp"`
	ClaimText  string    `json:"claim_text"`
	Confidence float64   `json:"confidence"`
}

// ActivityStats are windowed totals across the whole graph
type ActivityStats struct {
	TotalClaims    int `json:"total_claims"`
	ActiveEntities int `json:"active_entities"`
}

// Stats are whole-graph node counts
type Stats struct {
	Entities int64 `json:"entities"`
	Claims   int64 `json:"claims"`
	Sources  int64 `json:"sources"`
	Events   int64 `json:"events"`
}

// Store is the knowledge-graph contract used by the pipeline and the
// analytics engines. Read results are best-effort snapshots; the store
// may be concurrently mutated by other workers.
type Store interface {
	// Writes (idempotent upserts)
	UpsertSource(ctx context.Context, s model.Source) error
	UpsertEntity(ctx context.Context, e model.Entity) error
	UpsertClaim(ctx context.Context, c model.Claim) error
	UpsertEvent(ctx context.Context, e model.Event) error
	LinkClaimToEntity(ctx context.Context, claimID, entityID string) error
	LinkClaimToSource(ctx context.Context, claimID, sourceURL string) error
	// LinkContradiction overwrites the edge content with the latest
	// detection; contradiction edges are never accumulated.
	LinkContradiction(ctx context.Context, claimAID, claimBID string, score float64, typ, severity string, detectedAt time.Time) error

	// Reads
	FindSimilarClaims(ctx context.Context, text string, limit int) ([]StoredClaim, error)
	FindContradictoryClaims(ctx context.Context, claimID string) ([]StoredClaim, error)
	ClaimsSince(ctx context.Context, entityName string, since time.Time, limit int) ([]ClaimRecord, error)
	SourceStats(ctx context.Context, sourceName string, since time.Time) (*SourceStats, error)
	ActiveSources(ctx context.Context, limit int) ([]string, error)
	EntityActivity(ctx context.Context, since time.Time, limit int) ([]EntityActivity, error)
	MentionSpikes(ctx context.Context, since time.Time) ([]MentionSpike, error)
	ConfidenceDrops(ctx context.Context, since time.Time) ([]ConfidenceShift, error)
	EntityClusters(ctx context.Context, since time.Time, limit int) ([]EntityCluster, error)
	EntityTimeline(ctx context.Context, entityName string, since time.Time) ([]TimelineMention, error)
	WindowStats(ctx context.Context, since time.Time) (*ActivityStats, error)
	Stats(ctx context.Context) (*Stats, error)

	Close(ctx context.Context) error
}

// WriteError marks a failed graph mutation. Individual write failures
// are logged and counted; they never abort a GraphBuilder batch.
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string { return fmt.Sprintf("graph write %s: %v", e.Op, e.Err) }
func (e *WriteError) Unwrap() error { return e.Err }

// ReadError marks a failed analytics query. The affected analysis run
// returns empty results and retries next cycle.
type ReadError struct {
	Op  string
	Err error
}

func (e *ReadError) Error() string { return fmt.Sprintf("graph read %s: %v", e.Op, e.Err) }
func (e *ReadError) Unwrap() error { return e.Err }
