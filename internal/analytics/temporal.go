package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/osintlab/intelgraph/internal/graph"
	"github.com/osintlab/intelgraph/internal/model"
)

// Trend directions
const (
	TrendIncreasingMentions   = "increasing_mentions"
	TrendDecliningMentions    = "declining"
	TrendDecreasingConfidence = "decreasing_confidence"
	TrendEmerging             = "emerging"
)

// Anomaly types
const (
	AnomalyMentionSpike   = "mention_spike"
	AnomalyConfidenceDrop = "confidence_drop"
	AnomalyNewCluster     = "new_cluster"
)

// Trend describes how one entity's coverage moved over a window
type Trend struct {
	EntityName      string    `json:"entity_name"`
	EntityType      string    `json:"entity_type"`
	Mentions        int       `json:"mentions"`
	Direction       string    `json:"direction"`
	ConfidenceTrend string    `json:"confidence_trend"` // rising, falling, flat
	FirstSeen       time.Time `json:"first_seen"`
	LastSeen        time.Time `json:"last_seen"`
}

// Anomaly is one abnormal pattern worth an analyst's attention
type Anomaly struct {
	Type       string    `json:"type"`
	EntityName string    `json:"entity_name"`
	EntityType string    `json:"entity_type"`
	Severity   string    `json:"severity"`
	Detail     string    `json:"detail"`
	DetectedAt time.Time `json:"detected_at"`
}

// ActivitySummary compares graph activity across standard windows
type ActivitySummary struct {
	GeneratedAt time.Time                      `json:"generated_at"`
	Windows     map[string]graph.ActivityStats `json:"windows"`
}

// TemporalAnalyzer reads windowed graph aggregates and classifies
// entity trajectories and anomalies.
type TemporalAnalyzer struct {
	store  graph.Store
	cfg    model.AnalyticsConfig
	logger *slog.Logger
}

func NewTemporalAnalyzer(store graph.Store, cfg model.AnalyticsConfig, logger *slog.Logger) *TemporalAnalyzer {
	return &TemporalAnalyzer{
		store:  store,
		cfg:    cfg,
		logger: logger.With("component", "temporal"),
	}
}

// ParsePeriod converts "24h", "7d", "30d" style periods to hours
func ParsePeriod(period string) (int, error) {
	period = strings.TrimSpace(strings.ToLower(period))
	if period == "" {
		return 7 * 24, nil
	}
	unit := period[len(period)-1]
	n, err := strconv.Atoi(period[:len(period)-1])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid period %q", period)
	}
	switch unit {
	case 'h':
		return n, nil
	case 'd':
		return n * 24, nil
	default:
		return 0, fmt.Errorf("invalid period %q: use h or d", period)
	}
}

// Trends classifies the trajectory of the most active entities in a
// period ("24h", "7d", "30d").
func (t *TemporalAnalyzer) Trends(ctx context.Context, period string) ([]Trend, error) {
	hours, err := ParsePeriod(period)
	if err != nil {
		return nil, err
	}
	since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)

	activity, err := t.store.EntityActivity(ctx, since, t.cfg.TrendLimit)
	if err != nil {
		return nil, fmt.Errorf("loading entity activity: %w", err)
	}

	out := make([]Trend, 0, len(activity))
	for _, a := range activity {
		out = append(out, Trend{
			EntityName:      a.EntityName,
			EntityType:      a.EntityType,
			Mentions:        a.Mentions,
			Direction:       direction(a),
			ConfidenceTrend: confidenceTrend(a.Confidences),
			FirstSeen:       a.FirstSeen,
			LastSeen:        a.LastSeen,
		})
	}
	return out, nil
}

func direction(a graph.EntityActivity) string {
	switch {
	case a.Mentions >= 10:
		return TrendIncreasingMentions
	case a.Mentions <= 2:
		return TrendDecliningMentions
	case len(a.Confidences) >= 5 &&
		a.Confidences[len(a.Confidences)-1] < a.Confidences[0]-0.2:
		return TrendDecreasingConfidence
	default:
		return TrendEmerging
	}
}

// confidenceTrend compares the mean of the first half of the samples
// against the second half; movement under 0.1 is flat.
func confidenceTrend(confidences []float64) string {
	if len(confidences) < 2 {
		return "flat"
	}
	mid := len(confidences) / 2
	first := mean(confidences[:mid])
	second := mean(confidences[mid:])
	switch {
	case second > first+0.1:
		return "rising"
	case second < first-0.1:
		return "falling"
	default:
		return "flat"
	}
}

// Anomalies detects abnormal activity inside the last N hours,
// compared against everything before the window.
func (t *TemporalAnalyzer) Anomalies(ctx context.Context, hours int) ([]Anomaly, error) {
	if hours <= 0 {
		hours = t.cfg.AnomalyHours
	}
	since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	now := time.Now().UTC()

	var out []Anomaly

	spikes, err := t.store.MentionSpikes(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("loading mention spikes: %w", err)
	}
	for _, s := range spikes {
		ratio := float64(s.RecentCount) / math.Max(float64(s.HistoricalCount), 1)
		sev := SeverityHigh
		if ratio > 5 {
			sev = SeverityCritical
		}
		out = append(out, Anomaly{
			Type:       AnomalyMentionSpike,
			EntityName: s.EntityName,
			EntityType: s.EntityType,
			Severity:   sev,
			Detail:     fmt.Sprintf("%d mentions in window vs %d before", s.RecentCount, s.HistoricalCount),
			DetectedAt: now,
		})
	}

	drops, err := t.store.ConfidenceDrops(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("loading confidence drops: %w", err)
	}
	for _, d := range drops {
		out = append(out, Anomaly{
			Type:       AnomalyConfidenceDrop,
			EntityName: d.EntityName,
			EntityType: d.EntityType,
			Severity:   SeverityHigh,
			Detail:     fmt.Sprintf("confidence fell from %.2f to %.2f", d.HistoricalAvg, d.RecentAvg),
			DetectedAt: now,
		})
	}

	clusters, err := t.store.EntityClusters(ctx, since, t.cfg.TopClusters)
	if err != nil {
		return nil, fmt.Errorf("loading entity clusters: %w", err)
	}
	for _, c := range clusters {
		sev := SeverityMedium
		if c.NewConnections >= 10 {
			sev = SeverityHigh
		}
		out = append(out, Anomaly{
			Type:       AnomalyNewCluster,
			EntityName: c.EntityName,
			EntityType: c.EntityType,
			Severity:   sev,
			Detail:     fmt.Sprintf("%d new connections formed in window", c.NewConnections),
			DetectedAt: now,
		})
	}

	return out, nil
}

// Timeline returns the mention history for one entity
func (t *TemporalAnalyzer) Timeline(ctx context.Context, entityName string, days int) ([]graph.TimelineMention, error) {
	if days <= 0 {
		days = t.cfg.DefaultDays
	}
	since := time.Now().UTC().Add(-time.Duration(days) * 24 * time.Hour)
	return t.store.EntityTimeline(ctx, entityName, since)
}

// Summary reports activity over the standard 24h/7d/30d windows
func (t *TemporalAnalyzer) Summary(ctx context.Context) (*ActivitySummary, error) {
	now := time.Now().UTC()
	windows := map[string]time.Duration{
		"24h": 24 * time.Hour,
		"7d":  7 * 24 * time.Hour,
		"30d": 30 * 24 * time.Hour,
	}

	out := &ActivitySummary{GeneratedAt: now, Windows: make(map[string]graph.ActivityStats, len(windows))}
	for label, window := range windows {
		stats, err := t.store.WindowStats(ctx, now.Add(-window))
		if err != nil {
			return nil, fmt.Errorf("loading %s window: %w", label, err)
		}
		out.Windows[label] = *stats
	}
	return out, nil
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
