// Package analytics holds the engines that read the knowledge graph
// after ingestion: contradiction detection, source credibility
// scoring, and temporal trend analysis. Engines never mutate pipeline
// state; their only writes are contradiction edges and score history.
package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/osintlab/intelgraph/internal/graph"
	"github.com/osintlab/intelgraph/internal/llm"
	"github.com/osintlab/intelgraph/internal/model"
)

// Contradiction detection methods, in the order they are tried
const (
	MethodSemantic  = "semantic"
	MethodNumerical = "numerical"
	MethodTemporal  = "temporal"
	MethodFactual   = "factual"
)

// Severity levels shared by contradictions and anomalies
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
)

// ClaimRef identifies one side of a contradiction
type ClaimRef struct {
	ID         string  `json:"id"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Contradiction is one detected conflicting claim pair
type Contradiction struct {
	ClaimA      ClaimRef  `json:"claim_a"`
	ClaimB      ClaimRef  `json:"claim_b"`
	Type        string    `json:"type"`
	Score       float64   `json:"score"`
	Severity    string    `json:"severity"`
	Entities    []string  `json:"entities"`
	Explanation string    `json:"explanation"`
	DetectedAt  time.Time `json:"detected_at"`
}

// Cluster groups contradictions around one entity. Score is the mean
// of the member scores.
type Cluster struct {
	Entity         string          `json:"entity"`
	Contradictions []Contradiction `json:"contradictions"`
	Score          float64         `json:"cluster_score"`
	Impact         string          `json:"impact"`
}

// ContradictionReport is the exportable result of one detection run
type ContradictionReport struct {
	GeneratedAt time.Time       `json:"generated_at"`
	WindowDays  int             `json:"window_days"`
	EntityName  string          `json:"entity_name,omitempty"`
	Total       int             `json:"total_contradictions"`
	BySeverity  map[string]int  `json:"by_severity"`
	Clusters    []Cluster       `json:"clusters"`
	Top         []Contradiction `json:"top_contradictions"`
}

// Detector finds conflicting claim pairs among recent graph claims.
// The semantic method needs a model; without one the detector runs on
// the numerical, temporal, and factual heuristics alone.
type Detector struct {
	store  graph.Store
	nli    llm.NLIClassifier
	cfg    model.AnalyticsConfig
	logger *slog.Logger
}

func NewDetector(store graph.Store, nli llm.NLIClassifier, cfg model.AnalyticsConfig, logger *slog.Logger) *Detector {
	return &Detector{
		store:  store,
		nli:    nli,
		cfg:    cfg,
		logger: logger.With("component", "contradictions"),
	}
}

// Detect compares recent claims pairwise, restricted to pairs that
// share at least one entity. entityName narrows the run to one
// entity; empty means graph-wide. Results are sorted by score.
func (d *Detector) Detect(ctx context.Context, entityName string, windowDays int) ([]Contradiction, error) {
	if windowDays <= 0 {
		windowDays = d.cfg.DefaultDays
	}
	since := time.Now().UTC().Add(-time.Duration(windowDays) * 24 * time.Hour)

	claims, err := d.store.ClaimsSince(ctx, entityName, since, d.cfg.ClaimLimit)
	if err != nil {
		return nil, fmt.Errorf("loading claims: %w", err)
	}
	d.logger.Debug("claims loaded", "count", len(claims), "entity", entityName)

	var out []Contradiction
	for i := 0; i < len(claims); i++ {
		for j := i + 1; j < len(claims); j++ {
			shared := sharedEntities(claims[i].Entities, claims[j].Entities)
			if len(shared) == 0 {
				continue
			}
			if c, ok := d.comparePair(ctx, claims[i], claims[j], shared); ok {
				out = append(out, c)
			}
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

// comparePair tries each detection method in priority order and stops
// at the first hit.
func (d *Detector) comparePair(ctx context.Context, a, b graph.ClaimRecord, shared []string) (Contradiction, bool) {
	if d.nli != nil {
		verdict, err := d.nli.Compare(ctx, a.Text, b.Text)
		if err != nil {
			d.logger.Warn("nli comparison failed", "error", err)
		} else if verdict.Label == llm.LabelContradiction && verdict.Confidence >= 0.7 {
			return d.build(a, b, shared, MethodSemantic, verdict.Confidence, verdict.Reason), true
		} else if verdict.Label == llm.LabelEntailment {
			// The model says both can be true; trust it over the heuristics
			return Contradiction{}, false
		}
	}

	if ok, explanation := numericalConflict(a.Text, b.Text); ok {
		return d.build(a, b, shared, MethodNumerical, 0.8, explanation), true
	}
	if ok, explanation := temporalConflict(a.Text, b.Text); ok {
		return d.build(a, b, shared, MethodTemporal, 0.75, explanation), true
	}
	if ok, explanation := factualConflict(a.Text, b.Text); ok {
		return d.build(a, b, shared, MethodFactual, 0.7, explanation), true
	}
	return Contradiction{}, false
}

func (d *Detector) build(a, b graph.ClaimRecord, shared []string, method string, score float64, explanation string) Contradiction {
	return Contradiction{
		ClaimA:      ClaimRef{ID: a.ID, Text: a.Text, Confidence: a.Confidence},
		ClaimB:      ClaimRef{ID: b.ID, Text: b.Text, Confidence: b.Confidence},
		Type:        method,
		Score:       score,
		Severity:    severity(score, (a.Confidence+b.Confidence)/2),
		Entities:    shared,
		Explanation: explanation,
		DetectedAt:  time.Now().UTC(),
	}
}

// severity weighs how strong the conflict signal is against how much
// confidence the graph has in both claims.
func severity(score, avgConfidence float64) string {
	switch {
	case score > 0.9 && avgConfidence > 0.8:
		return SeverityCritical
	case score > 0.8 || avgConfidence > 0.7:
		return SeverityHigh
	case score > 0.7:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// ClusterByEntity groups contradictions around their shared entities.
// Entities with a single contradiction are dropped; a cluster means a
// contested subject, not a one-off disagreement.
func ClusterByEntity(contradictions []Contradiction) []Cluster {
	byEntity := make(map[string][]Contradiction)
	for _, c := range contradictions {
		for _, e := range c.Entities {
			byEntity[e] = append(byEntity[e], c)
		}
	}

	var out []Cluster
	for entity, group := range byEntity {
		if len(group) < 2 {
			continue
		}
		sum := 0.0
		for _, c := range group {
			sum += c.Score
		}
		score := sum / float64(len(group))
		out = append(out, Cluster{
			Entity:         entity,
			Contradictions: group,
			Score:          score,
			Impact:         clusterImpact(score, len(group)),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func clusterImpact(score float64, size int) string {
	switch {
	case score > 0.85 && size >= 3:
		return SeverityCritical
	case score > 0.75 || size >= 5:
		return SeverityHigh
	case score > 0.65:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// Report runs detection and packages the result for export
func (d *Detector) Report(ctx context.Context, entityName string, windowDays int) (*ContradictionReport, error) {
	contradictions, err := d.Detect(ctx, entityName, windowDays)
	if err != nil {
		return nil, err
	}

	bySeverity := make(map[string]int)
	for _, c := range contradictions {
		bySeverity[c.Severity]++
	}

	clusters := ClusterByEntity(contradictions)
	if len(clusters) > d.cfg.TopClusters {
		clusters = clusters[:d.cfg.TopClusters]
	}
	top := contradictions
	if len(top) > d.cfg.TopItems {
		top = top[:d.cfg.TopItems]
	}

	if windowDays <= 0 {
		windowDays = d.cfg.DefaultDays
	}
	return &ContradictionReport{
		GeneratedAt: time.Now().UTC(),
		WindowDays:  windowDays,
		EntityName:  entityName,
		Total:       len(contradictions),
		BySeverity:  bySeverity,
		Clusters:    clusters,
		Top:         top,
	}, nil
}

// Persist writes detected contradictions back as graph edges
func (d *Detector) Persist(ctx context.Context, contradictions []Contradiction) error {
	for _, c := range contradictions {
		err := d.store.LinkContradiction(ctx, c.ClaimA.ID, c.ClaimB.ID,
			c.Score, c.Type, c.Severity, c.DetectedAt)
		if err != nil {
			return fmt.Errorf("persisting contradiction: %w", err)
		}
	}
	return nil
}

// ==================== Heuristics ====================

var numberPattern = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// numericalConflict fires when two claims about the same subject carry
// figures that differ by more than 20 percent. Relatedness is already
// established by the shared-entity requirement upstream.
func numericalConflict(a, b string) (bool, string) {
	numsA := extractNumbers(a)
	numsB := extractNumbers(b)
	if len(numsA) == 0 || len(numsB) == 0 {
		return false, ""
	}

	for _, x := range numsA {
		for _, y := range numsB {
			if x == y {
				continue
			}
			larger := math.Max(math.Abs(x), math.Abs(y))
			if larger == 0 {
				continue
			}
			if math.Abs(x-y)/larger > 0.2 {
				return true, fmt.Sprintf("figures disagree: %g vs %g", x, y)
			}
		}
	}
	return false, ""
}

var temporalPairs = [][2]string{
	{"before", "after"},
	{"earlier", "later"},
	{"began", "ended"},
	{"started", "stopped"},
}

// temporalConflict fires when the claims place the same events in
// opposite order.
func temporalConflict(a, b string) (bool, string) {
	if nonNumericOverlap(a, b) < 3 {
		return false, ""
	}
	lowerA, lowerB := strings.ToLower(a), strings.ToLower(b)
	for _, pair := range temporalPairs {
		if strings.Contains(lowerA, pair[0]) && strings.Contains(lowerB, pair[1]) {
			return true, fmt.Sprintf("opposite ordering: %q vs %q", pair[0], pair[1])
		}
		if strings.Contains(lowerA, pair[1]) && strings.Contains(lowerB, pair[0]) {
			return true, fmt.Sprintf("opposite ordering: %q vs %q", pair[1], pair[0])
		}
	}
	return false, ""
}

var negations = []string{"not", "no", "never", "cannot", "isn't", "aren't", "won't", "didn't", "doesn't"}

// factualConflict fires when one claim negates a statement the other
// asserts.
func factualConflict(a, b string) (bool, string) {
	if negated(a) == negated(b) {
		return false, ""
	}
	if nonNumericOverlap(a, b) < 4 {
		return false, ""
	}
	return true, "one claim negates the other's assertion"
}

func negated(text string) bool {
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,;:!?\"'")
		for _, n := range negations {
			if w == n {
				return true
			}
		}
	}
	return false
}

func extractNumbers(text string) []float64 {
	var out []float64
	for _, m := range numberPattern.FindAllString(text, -1) {
		if v, err := strconv.ParseFloat(m, 64); err == nil {
			out = append(out, v)
		}
	}
	return out
}

// nonNumericOverlap counts distinct significant words the two texts
// share, ignoring figures.
func nonNumericOverlap(a, b string) int {
	words := func(text string) map[string]bool {
		out := make(map[string]bool)
		for _, w := range strings.Fields(strings.ToLower(text)) {
			w = strings.Trim(w, ".,;:!?\"'%")
			if len(w) > 3 && !numberPattern.MatchString(w) {
				out[w] = true
			}
		}
		return out
	}

	setA := words(a)
	count := 0
	for w := range words(b) {
		if setA[w] {
			count++
		}
	}
	return count
}

func sharedEntities(a, b []string) []string {
	seen := make(map[string]bool, len(a))
	for _, e := range a {
		seen[e] = true
	}
	var out []string
	for _, e := range b {
		if seen[e] {
			out = append(out, e)
		}
	}
	sort.Strings(out)
	return out
}
