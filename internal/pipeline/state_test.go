package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/osintlab/intelgraph/internal/model"
)

func TestMergeAppendsLists(t *testing.T) {
	s := NewState(model.RawDocument{ID: "doc-1"})

	Merge(s, Delta{
		Entities: []model.Entity{{ID: "e1", Name: "Acme"}},
		Claims:   []model.Claim{{ID: "c1", Text: "first", Confidence: 0.7}},
		Log:      []LogEntry{logEntry("analyzer", "analyzed", nil)},
	})
	Merge(s, Delta{
		Entities: []model.Entity{{ID: "e2", Name: "Globex"}},
		Claims:   []model.Claim{{ID: "c2", Text: "second", Confidence: 0.6}},
		Log:      []LogEntry{logEntry("crossref", "cross_referenced", nil)},
	})

	assert.Len(t, s.Entities, 2)
	assert.Len(t, s.Claims, 2)
	assert.Len(t, s.Log, 2)
	assert.Equal(t, "c1", s.Claims[0].ID)
}

func TestMergePatchClampsConfidence(t *testing.T) {
	s := NewState(model.RawDocument{})
	Merge(s, Delta{Claims: []model.Claim{{ID: "c1", Confidence: 0.9}}})

	over := 1.4
	Merge(s, Delta{ClaimPatches: []ClaimPatch{{ClaimID: "c1", Confidence: &over}}})
	assert.Equal(t, 1.0, s.Claims[0].Confidence)

	under := -0.3
	Merge(s, Delta{ClaimPatches: []ClaimPatch{{ClaimID: "c1", Confidence: &under}}})
	assert.Equal(t, 0.0, s.Claims[0].Confidence)
}

func TestMergePatchAppendsContradictions(t *testing.T) {
	s := NewState(model.RawDocument{})
	Merge(s, Delta{Claims: []model.Claim{{ID: "c1", Confidence: 0.7}}})

	Merge(s, Delta{ClaimPatches: []ClaimPatch{{
		ClaimID:     "c1",
		Contradicts: []model.ClaimContradiction{{ClaimID: "c9", Reason: "opposing polarity on overlapping statement"}},
	}}})
	Merge(s, Delta{ClaimPatches: []ClaimPatch{{
		ClaimID:     "c1",
		Contradicts: []model.ClaimContradiction{{ClaimID: "c8"}},
	}}})

	assert.Len(t, s.Claims[0].Contradicts, 2)
	assert.True(t, s.HasContradictions())
}

func TestMergeUnknownPatchIsNoop(t *testing.T) {
	s := NewState(model.RawDocument{})
	Merge(s, Delta{Claims: []model.Claim{{ID: "c1", Confidence: 0.7}}})

	conf := 0.2
	Merge(s, Delta{ClaimPatches: []ClaimPatch{{ClaimID: "missing", Confidence: &conf}}})
	assert.Equal(t, 0.7, s.Claims[0].Confidence)
}

func TestMergeAlertSticks(t *testing.T) {
	s := NewState(model.RawDocument{})
	Merge(s, Delta{Alert: true})
	Merge(s, Delta{})
	assert.True(t, s.ShouldAlert)
}
