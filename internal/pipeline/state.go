package pipeline

import (
	"time"

	"github.com/osintlab/intelgraph/internal/model"
)

// Phase identifies where a document is in the pipeline
type Phase string

const (
	PhaseCollecting       Phase = "Collecting"
	PhaseAnalyzing        Phase = "Analyzing"
	PhaseCrossReferencing Phase = "CrossReferencing"
	PhaseBiasDetecting    Phase = "BiasDetecting"
	PhaseGraphBuilding    Phase = "GraphBuilding"
	PhaseComplete         Phase = "Complete"
	PhaseFailed           Phase = "Failed"
)

// Terminal reports whether the phase ends the pipeline
func (p Phase) Terminal() bool {
	return p == PhaseComplete || p == PhaseFailed
}

// LogEntry is one processing-log record appended by each stage
type LogEntry struct {
	Stage     string         `json:"stage"`
	Action    string         `json:"action"`
	Timestamp time.Time      `json:"timestamp"`
	Detail    map[string]any `json:"detail,omitempty"`
}

// BiasAnalysis is the document-level bias assessment
type BiasAnalysis struct {
	OverallScore   float64             `json:"overall_bias_score"` // 0-1
	PatternScore   float64             `json:"pattern_score"`
	ModelScore     float64             `json:"model_score"`
	BiasTypes      []string            `json:"bias_types,omitempty"`
	PatternMatches map[string][]string `json:"pattern_matches,omitempty"`
	Framing        string              `json:"framing"`
	Recommendation string              `json:"recommendation"` // LOW_BIAS, MODERATE_BIAS, HIGH_BIAS
}

// GraphOp records one store mutation for observability
type GraphOp struct {
	Op       string `json:"op"`        // UPSERT, LINK
	NodeType string `json:"node_type"` // Source, Entity, Claim, Event, Claim->Entity, Claim->Claim
	NodeID   string `json:"node_id"`
	Err      string `json:"error,omitempty"`
}

// State is the working record for one in-flight document. It is owned
// exclusively by a single pipeline execution and discarded after the
// terminal stage writes to the graph store.
type State struct {
	Raw       model.RawDocument
	FullText  string
	WordCount int
	Source    model.Source

	Entities []model.Entity
	Events   []model.Event
	Claims   []model.Claim

	Sentiment *model.Sentiment
	Summary   string
	Bias      *BiasAnalysis

	Ops    []GraphOp
	Log    []LogEntry
	Errors []string

	Phase       Phase
	ShouldAlert bool
	StartedAt   time.Time
}

// NewState builds the initial state for a raw document
func NewState(raw model.RawDocument) *State {
	return &State{
		Raw:       raw,
		Phase:     PhaseCollecting,
		StartedAt: time.Now().UTC(),
	}
}

// HasContradictions reports whether any claim acquired contradiction candidates
func (s *State) HasContradictions() bool {
	for _, c := range s.Claims {
		if len(c.Contradicts) > 0 {
			return true
		}
	}
	return false
}

// ClaimPatch updates an existing claim in place, keyed by claim id.
// List fields append; Confidence replaces (clamped on merge).
type ClaimPatch struct {
	ClaimID      string
	Confidence   *float64
	Similar      []model.SimilarClaim
	Contradicts  []model.ClaimContradiction
	Verification *model.Verification
}

// Delta is the contribution of one stage. List fields follow the
// append-only reducer contract: merging concatenates, never overwrites,
// so contributions stay intact even if applied out of order.
type Delta struct {
	FullText  string
	WordCount int
	Source    *model.Source

	Entities []model.Entity
	Events   []model.Event
	Claims   []model.Claim

	Sentiment *model.Sentiment
	Summary   string
	Bias      *BiasAnalysis

	ClaimPatches []ClaimPatch

	Ops    []GraphOp
	Log    []LogEntry
	Errors []string

	Alert bool
}

// Merge applies a stage delta to the state. This is the single place
// state is mutated between stages.
func Merge(s *State, d Delta) {
	if d.FullText != "" {
		s.FullText = d.FullText
	}
	if d.WordCount > 0 {
		s.WordCount = d.WordCount
	}
	if d.Source != nil {
		s.Source = *d.Source
	}

	s.Entities = append(s.Entities, d.Entities...)
	s.Events = append(s.Events, d.Events...)
	s.Claims = append(s.Claims, d.Claims...)

	if d.Sentiment != nil {
		s.Sentiment = d.Sentiment
	}
	if d.Summary != "" {
		s.Summary = d.Summary
	}
	if d.Bias != nil {
		s.Bias = d.Bias
	}

	for _, p := range d.ClaimPatches {
		applyPatch(s, p)
	}

	s.Ops = append(s.Ops, d.Ops...)
	s.Log = append(s.Log, d.Log...)
	s.Errors = append(s.Errors, d.Errors...)

	if d.Alert {
		s.ShouldAlert = true
	}
}

func applyPatch(s *State, p ClaimPatch) {
	for i := range s.Claims {
		if s.Claims[i].ID != p.ClaimID {
			continue
		}
		c := &s.Claims[i]
		if p.Confidence != nil {
			c.Confidence = model.ClampConfidence(*p.Confidence)
		}
		c.Similar = append(c.Similar, p.Similar...)
		c.Contradicts = append(c.Contradicts, p.Contradicts...)
		if p.Verification != nil {
			c.Verification = p.Verification
		}
		return
	}
}

// logEntry builds a processing-log record for a stage
func logEntry(stage, action string, detail map[string]any) LogEntry {
	return LogEntry{
		Stage:     stage,
		Action:    action,
		Timestamp: time.Now().UTC(),
		Detail:    detail,
	}
}
