package cache

import (
	"encoding/json"
	"time"
)

// ScoredAt wraps a credibility score with when it was computed, so the
// next scoring run can report whether a source is improving or declining.
type ScoredAt struct {
	Score    float64   `json:"score"`
	ScoredAt time.Time `json:"scored_at"`
}

// ScoreHistory remembers the last credibility score per source across
// scoring runs. Entries expire with the cache TTL, so a source that
// goes quiet eventually starts fresh.
type ScoreHistory struct {
	cache Cache
	ttl   time.Duration
}

func NewScoreHistory(c Cache, ttl time.Duration) *ScoreHistory {
	return &ScoreHistory{cache: c, ttl: ttl}
}

// Previous returns the last recorded score for a source
func (h *ScoreHistory) Previous(sourceName string) (ScoredAt, bool) {
	data, ok := h.cache.Get(Key("score", sourceName))
	if !ok {
		return ScoredAt{}, false
	}
	var s ScoredAt
	if err := json.Unmarshal(data, &s); err != nil {
		return ScoredAt{}, false
	}
	return s, true
}

// Record stores the score just computed for a source
func (h *ScoreHistory) Record(sourceName string, score float64) error {
	data, err := json.Marshal(ScoredAt{Score: score, ScoredAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	return h.cache.Set(Key("score", sourceName), data, h.ttl)
}
