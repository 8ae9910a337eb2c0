package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreHistoryRoundTrip(t *testing.T) {
	h := NewScoreHistory(NewMemoryCache(time.Hour, time.Hour), time.Hour)

	_, ok := h.Previous("Example News")
	assert.False(t, ok)

	require.NoError(t, h.Record("Example News", 72.5))

	prev, ok := h.Previous("Example News")
	require.True(t, ok)
	assert.Equal(t, 72.5, prev.Score)
	assert.False(t, prev.ScoredAt.IsZero())
}

func TestScoreHistorySurvivesRestart(t *testing.T) {
	dir := t.TempDir()

	h := NewScoreHistory(NewDiskCache(dir, time.Hour), time.Hour)
	require.NoError(t, h.Record("Wire", 64))

	// New instance over the same state dir
	h2 := NewScoreHistory(NewDiskCache(dir, time.Hour), time.Hour)
	prev, ok := h2.Previous("Wire")
	require.True(t, ok)
	assert.Equal(t, 64.0, prev.Score)
}

func TestLayeredPromotesFromDisk(t *testing.T) {
	dir := t.TempDir()

	seed := NewDiskCache(dir, time.Hour)
	require.NoError(t, seed.Set(Key("score", "X"), []byte(`{"score":1}`), time.Hour))

	layered := NewLayeredCache(time.Hour, dir, time.Hour)
	val, ok := layered.Get(Key("score", "X"))
	require.True(t, ok)
	assert.JSONEq(t, `{"score":1}`, string(val))
}
