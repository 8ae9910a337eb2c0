package graph

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/osintlab/intelgraph/internal/model"
)

// MemoryStore is an in-process Store backend. It implements the same
// contract as the Neo4j backend and is used for tests and local runs
// without a database.
type MemoryStore struct {
	mu sync.RWMutex

	entities map[string]model.Entity
	events   map[string]model.Event
	sources  map[string]model.Source // keyed by URL
	claims   map[string]*memClaim

	claimEntities map[string]map[string]bool // claim id -> entity ids
	claimSources  map[string]string          // claim id -> source url
	edges         map[string]*contradictionEdge

	now func() time.Time
}

type memClaim struct {
	claim model.Claim
	ts    time.Time
}

type contradictionEdge struct {
	a, b       string
	score      float64
	typ        string
	severity   string
	detectedAt time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entities:      make(map[string]model.Entity),
		events:        make(map[string]model.Event),
		sources:       make(map[string]model.Source),
		claims:        make(map[string]*memClaim),
		claimEntities: make(map[string]map[string]bool),
		claimSources:  make(map[string]string),
		edges:         make(map[string]*contradictionEdge),
		now:           time.Now,
	}
}

// SetClock overrides the clock used to timestamp new claims (tests)
func (s *MemoryStore) SetClock(now func() time.Time) { s.now = now }

func (s *MemoryStore) Close(context.Context) error { return nil }

// ==================== Writes ====================

func (s *MemoryStore) UpsertSource(_ context.Context, src model.Source) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources[src.URL] = src
	return nil
}

func (s *MemoryStore) UpsertEntity(_ context.Context, e model.Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.entities[e.ID]; ok {
		e.Mentions += existing.Mentions
	}
	s.entities[e.ID] = e
	return nil
}

func (s *MemoryStore) UpsertClaim(_ context.Context, c model.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.claims[c.ID]; ok {
		existing.claim = c
		return nil
	}
	s.claims[c.ID] = &memClaim{claim: c, ts: s.now().UTC()}
	return nil
}

func (s *MemoryStore) UpsertEvent(_ context.Context, e model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[e.ID] = e
	return nil
}

func (s *MemoryStore) LinkClaimToEntity(_ context.Context, claimID, entityID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	links := s.claimEntities[claimID]
	if links == nil {
		links = make(map[string]bool)
		s.claimEntities[claimID] = links
	}
	links[entityID] = true
	return nil
}

func (s *MemoryStore) LinkClaimToSource(_ context.Context, claimID, sourceURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.claimSources[claimID] = sourceURL
	return nil
}

func (s *MemoryStore) LinkContradiction(_ context.Context, a, b string, score float64, typ, severity string, detectedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := edgeKey(a, b)
	s.edges[key] = &contradictionEdge{
		a: a, b: b,
		score: score, typ: typ, severity: severity,
		detectedAt: detectedAt,
	}
	return nil
}

func edgeKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

// Seed inserts a claim with explicit timestamp, entity links, and
// source link in one call. Test and local-seeding convenience.
func (s *MemoryStore) Seed(c model.Claim, ts time.Time, entityNames []string, src model.Source) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.claims[c.ID] = &memClaim{claim: c, ts: ts.UTC()}
	if src.URL != "" {
		s.sources[src.URL] = src
		s.claimSources[c.ID] = src.URL
	}

	links := make(map[string]bool, len(entityNames))
	for _, name := range entityNames {
		id := model.EntityID(name, model.EntityConcept)
		if _, ok := s.entities[id]; !ok {
			s.entities[id] = model.Entity{
				ID: id, Name: name, Type: model.EntityConcept,
				Confidence: c.Confidence, Mentions: 1,
			}
		}
		links[id] = true
	}
	s.claimEntities[c.ID] = links
}

// ==================== Reads ====================

func (s *MemoryStore) FindSimilarClaims(_ context.Context, text string, limit int) ([]StoredClaim, error) {
	keyword := leadingTerms(text, 3)
	if keyword == "" {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []StoredClaim
	for _, mc := range s.claims {
		if !strings.Contains(strings.ToLower(mc.claim.Text), keyword) {
			continue
		}
		out = append(out, s.storedClaim(mc))
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) FindContradictoryClaims(_ context.Context, claimID string) ([]StoredClaim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []StoredClaim
	for _, e := range s.edges {
		other := ""
		switch claimID {
		case e.a:
			other = e.b
		case e.b:
			other = e.a
		default:
			continue
		}
		if mc, ok := s.claims[other]; ok {
			out = append(out, s.storedClaim(mc))
		}
	}
	return out, nil
}

func (s *MemoryStore) ClaimsSince(_ context.Context, entityName string, since time.Time, limit int) ([]ClaimRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []ClaimRecord
	for id, mc := range s.claims {
		if mc.ts.Before(since) {
			continue
		}
		names := s.entityNames(id)
		if len(names) == 0 {
			continue
		}
		if entityName != "" && !containsString(names, entityName) {
			continue
		}
		out = append(out, ClaimRecord{
			ID:         id,
			Text:       mc.claim.Text,
			Confidence: mc.claim.Confidence,
			Timestamp:  mc.ts,
			Entities:   names,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) SourceStats(_ context.Context, sourceName string, since time.Time) (*SourceStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	url := ""
	for u, src := range s.sources {
		if src.Name == sourceName {
			url = u
			break
		}
	}

	stats := &SourceStats{}
	var confSum float64
	for id, mc := range s.claims {
		if s.claimSources[id] != url || url == "" || mc.ts.Before(since) {
			continue
		}
		stats.TotalClaims++
		confSum += mc.claim.Confidence
		if s.hasEdge(id) {
			stats.ContradictedClaims++
		}
		if s.crossValidated(id) {
			stats.CrossValidatedClaims++
		}
	}
	if stats.TotalClaims > 0 {
		stats.AvgConfidence = confSum / float64(stats.TotalClaims)
	}
	return stats, nil
}

func (s *MemoryStore) ActiveSources(_ context.Context, limit int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for id := range s.claims {
		if url, ok := s.claimSources[id]; ok {
			if src, ok := s.sources[url]; ok && src.Name != "" {
				counts[src.Name]++
			}
		}
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return counts[names[i]] > counts[names[j]] })
	if len(names) > limit {
		names = names[:limit]
	}
	return names, nil
}

func (s *MemoryStore) EntityActivity(_ context.Context, since time.Time, limit int) ([]EntityActivity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type bucket struct {
		act    EntityActivity
		points []TimelineMention
	}
	buckets := make(map[string]*bucket)

	for id, mc := range s.claims {
		if mc.ts.Before(since) {
			continue
		}
		for _, name := range s.entityNames(id) {
			b := buckets[name]
			if b == nil {
				b = &bucket{act: EntityActivity{EntityName: name, EntityType: s.entityType(name)}}
				buckets[name] = b
			}
			b.points = append(b.points, TimelineMention{Timestamp: mc.ts, Confidence: mc.claim.Confidence})
		}
	}

	out := make([]EntityActivity, 0, len(buckets))
	for _, b := range buckets {
		sort.Slice(b.points, func(i, j int) bool { return b.points[i].Timestamp.Before(b.points[j].Timestamp) })
		b.act.Mentions = len(b.points)
		b.act.FirstSeen = b.points[0].Timestamp
		b.act.LastSeen = b.points[len(b.points)-1].Timestamp
		for _, p := range b.points {
			b.act.Confidences = append(b.act.Confidences, p.Confidence)
		}
		out = append(out, b.act)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Mentions > out[j].Mentions })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) MentionSpikes(_ context.Context, since time.Time) ([]MentionSpike, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recent := make(map[string]int)
	historical := make(map[string]int)
	for id, mc := range s.claims {
		for _, name := range s.entityNames(id) {
			if mc.ts.Before(since) {
				historical[name]++
			} else {
				recent[name]++
			}
		}
	}

	var out []MentionSpike
	for name, rc := range recent {
		hc := historical[name]
		if rc >= 5 && hc > 0 && rc > hc*3 {
			out = append(out, MentionSpike{
				EntityName:      name,
				EntityType:      s.entityType(name),
				RecentCount:     rc,
				HistoricalCount: hc,
			})
		}
	}
	return out, nil
}

func (s *MemoryStore) ConfidenceDrops(_ context.Context, since time.Time) ([]ConfidenceShift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type sums struct {
		recentSum, histSum     float64
		recentCount, histCount int
	}
	byEntity := make(map[string]*sums)
	for id, mc := range s.claims {
		for _, name := range s.entityNames(id) {
			b := byEntity[name]
			if b == nil {
				b = &sums{}
				byEntity[name] = b
			}
			if mc.ts.Before(since) {
				b.histSum += mc.claim.Confidence
				b.histCount++
			} else {
				b.recentSum += mc.claim.Confidence
				b.recentCount++
			}
		}
	}

	var out []ConfidenceShift
	for name, b := range byEntity {
		if b.recentCount == 0 || b.histCount == 0 {
			continue
		}
		recent := b.recentSum / float64(b.recentCount)
		hist := b.histSum / float64(b.histCount)
		if recent < 0.5 && hist > 0.7 && recent < hist-0.3 {
			out = append(out, ConfidenceShift{
				EntityName:    name,
				EntityType:    s.entityType(name),
				RecentAvg:     recent,
				HistoricalAvg: hist,
			})
		}
	}
	return out, nil
}

func (s *MemoryStore) EntityClusters(_ context.Context, since time.Time, limit int) ([]EntityCluster, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	connections := make(map[string]map[string]bool)
	for id, mc := range s.claims {
		if mc.ts.Before(since) {
			continue
		}
		names := s.entityNames(id)
		for _, a := range names {
			for _, b := range names {
				if a == b {
					continue
				}
				if connections[a] == nil {
					connections[a] = make(map[string]bool)
				}
				connections[a][b] = true
			}
		}
	}

	var out []EntityCluster
	for name, peers := range connections {
		if len(peers) >= 3 {
			out = append(out, EntityCluster{
				EntityName:     name,
				EntityType:     s.entityType(name),
				NewConnections: len(peers),
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NewConnections > out[j].NewConnections })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) EntityTimeline(_ context.Context, entityName string, since time.Time) ([]TimelineMention, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []TimelineMention
	for id, mc := range s.claims {
		if mc.ts.Before(since) || !containsString(s.entityNames(id), entityName) {
			continue
		}
		out = append(out, TimelineMention{
			Timestamp:  mc.ts,
			ClaimText:  mc.claim.Text,
			Confidence: mc.claim.Confidence,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (s *MemoryStore) WindowStats(_ context.Context, since time.Time) (*ActivityStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &ActivityStats{}
	active := make(map[string]bool)
	for id, mc := range s.claims {
		if mc.ts.Before(since) {
			continue
		}
		stats.TotalClaims++
		for _, name := range s.entityNames(id) {
			active[name] = true
		}
	}
	stats.ActiveEntities = len(active)
	return stats, nil
}

func (s *MemoryStore) Stats(context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &Stats{
		Entities: int64(len(s.entities)),
		Claims:   int64(len(s.claims)),
		Sources:  int64(len(s.sources)),
		Events:   int64(len(s.events)),
	}, nil
}

// ==================== Helpers (callers hold the lock) ====================

func (s *MemoryStore) storedClaim(mc *memClaim) StoredClaim {
	status := "UNVERIFIED"
	if v := mc.claim.Verification; v != nil && v.Status == model.VerificationSupported {
		status = "VERIFIED"
	}
	return StoredClaim{
		ID:         mc.claim.ID,
		Text:       mc.claim.Text,
		Confidence: mc.claim.Confidence,
		Status:     status,
		Timestamp:  mc.ts,
	}
}

func (s *MemoryStore) entityNames(claimID string) []string {
	links := s.claimEntities[claimID]
	if len(links) == 0 {
		return nil
	}
	names := make([]string, 0, len(links))
	for id := range links {
		if e, ok := s.entities[id]; ok {
			names = append(names, e.Name)
		}
	}
	sort.Strings(names)
	return names
}

func (s *MemoryStore) entityType(name string) string {
	for _, e := range s.entities {
		if e.Name == name {
			return string(e.Type)
		}
	}
	return ""
}

func (s *MemoryStore) hasEdge(claimID string) bool {
	for _, e := range s.edges {
		if e.a == claimID || e.b == claimID {
			return true
		}
	}
	return false
}

func (s *MemoryStore) crossValidated(claimID string) bool {
	mine := s.claimEntities[claimID]
	mySource := s.claims[claimID].claim.SourceID
	for otherID, links := range s.claimEntities {
		if otherID == claimID {
			continue
		}
		other, ok := s.claims[otherID]
		if !ok || other.claim.SourceID == mySource {
			continue
		}
		for id := range links {
			if mine[id] {
				return true
			}
		}
	}
	return false
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
