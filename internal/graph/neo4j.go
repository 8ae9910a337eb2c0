package graph

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/osintlab/intelgraph/internal/model"
)

// Timestamps are stored as RFC3339 UTC strings so windowed queries can
// compare them lexically.
const tsFormat = time.RFC3339

// Neo4jStore implements Store against a Neo4j database
type Neo4jStore struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *slog.Logger
}

// NewNeo4jStore connects to Neo4j and verifies connectivity
func NewNeo4jStore(ctx context.Context, cfg model.GraphConfig, logger *slog.Logger) (*Neo4jStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("neo4j connectivity: %w", err)
	}

	logger.Info("connected to graph store", slog.String("uri", cfg.URI))

	return &Neo4jStore{
		driver:   driver,
		database: cfg.Database,
		logger:   logger,
	}, nil
}

// Close shuts down the driver
func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func (s *Neo4jStore) write(ctx context.Context, op, query string, params map[string]any) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: s.database,
		AccessMode:   neo4j.AccessModeWrite,
	})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, query, params)
		return nil, err
	})
	if err != nil {
		return &WriteError{Op: op, Err: err}
	}
	return nil
}

func (s *Neo4jStore) read(ctx context.Context, op, query string, params map[string]any) ([]*neo4j.Record, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: s.database,
		AccessMode:   neo4j.AccessModeRead,
	})
	defer session.Close(ctx)

	records, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, &ReadError{Op: op, Err: err}
	}
	return records.([]*neo4j.Record), nil
}

// ==================== Writes ====================

func (s *Neo4jStore) UpsertSource(ctx context.Context, src model.Source) error {
	query := `
	MERGE (s:Source {url: $url})
	SET s.name = $name,
	    s.type = $type,
	    s.credibility_score = $credibility,
	    s.last_updated = $now`
	return s.write(ctx, "upsert source", query, map[string]any{
		"url":         src.URL,
		"name":        src.Name,
		"type":        src.Type,
		"credibility": src.CredibilityScore,
		"now":         time.Now().UTC().Format(tsFormat),
	})
}

func (s *Neo4jStore) UpsertEntity(ctx context.Context, e model.Entity) error {
	query := `
	MERGE (e:Entity {id: $id})
	ON CREATE SET e.created_at = $now, e.mentions = 0
	SET e.name = $name,
	    e.type = $type,
	    e.confidence = $confidence,
	    e.context = $context,
	    e.mentions = e.mentions + $mentions,
	    e.last_updated = $now`
	return s.write(ctx, "upsert entity", query, map[string]any{
		"id":         e.ID,
		"name":       e.Name,
		"type":       string(e.Type),
		"confidence": e.Confidence,
		"context":    e.Context,
		"mentions":   e.Mentions,
		"now":        time.Now().UTC().Format(tsFormat),
	})
}

func (s *Neo4jStore) UpsertClaim(ctx context.Context, c model.Claim) error {
	status := "UNVERIFIED"
	if c.Verification != nil && c.Verification.Status == model.VerificationSupported {
		status = "VERIFIED"
	}
	query := `
	MERGE (c:Claim {id: $id})
	ON CREATE SET c.timestamp = $now
	SET c.text = $text,
	    c.context = $context,
	    c.stance = $stance,
	    c.confidence_score = $confidence,
	    c.verification_status = $status,
	    c.source_id = $source_id,
	    c.source_url = $source_url`
	return s.write(ctx, "upsert claim", query, map[string]any{
		"id":         c.ID,
		"text":       c.Text,
		"context":    c.Context,
		"stance":     string(c.Stance),
		"confidence": c.Confidence,
		"status":     status,
		"source_id":  c.SourceID,
		"source_url": c.SourceURL,
		"now":        time.Now().UTC().Format(tsFormat),
	})
}

func (s *Neo4jStore) UpsertEvent(ctx context.Context, e model.Event) error {
	query := `
	MERGE (ev:Event {id: $id})
	SET ev.description = $description,
	    ev.type = $type,
	    ev.timestamp = $timestamp,
	    ev.location = $location,
	    ev.confidence = $confidence,
	    ev.last_updated = $now`
	return s.write(ctx, "upsert event", query, map[string]any{
		"id":          e.ID,
		"description": e.Description,
		"type":        e.Type,
		"timestamp":   e.Timestamp,
		"location":    e.Location,
		"confidence":  e.Confidence,
		"now":         time.Now().UTC().Format(tsFormat),
	})
}

func (s *Neo4jStore) LinkClaimToEntity(ctx context.Context, claimID, entityID string) error {
	query := `
	MATCH (c:Claim {id: $claim_id})
	MATCH (e:Entity {id: $entity_id})
	MERGE (c)-[:ABOUT]->(e)`
	return s.write(ctx, "link claim->entity", query, map[string]any{
		"claim_id":  claimID,
		"entity_id": entityID,
	})
}

func (s *Neo4jStore) LinkClaimToSource(ctx context.Context, claimID, sourceURL string) error {
	query := `
	MATCH (c:Claim {id: $claim_id})
	MATCH (s:Source {url: $source_url})
	MERGE (c)-[:FROM]->(s)`
	return s.write(ctx, "link claim->source", query, map[string]any{
		"claim_id":   claimID,
		"source_url": sourceURL,
	})
}

func (s *Neo4jStore) LinkContradiction(ctx context.Context, claimAID, claimBID string, score float64, typ, severity string, detectedAt time.Time) error {
	query := `
	MATCH (a:Claim {id: $a})
	MATCH (b:Claim {id: $b})
	MERGE (a)-[r:CONTRADICTS]-(b)
	SET r.score = $score,
	    r.type = $type,
	    r.severity = $severity,
	    r.detected_at = $detected_at`
	return s.write(ctx, "link contradiction", query, map[string]any{
		"a":           claimAID,
		"b":           claimBID,
		"score":       score,
		"type":        typ,
		"severity":    severity,
		"detected_at": detectedAt.UTC().Format(tsFormat),
	})
}

// ==================== Reads ====================

func (s *Neo4jStore) FindSimilarClaims(ctx context.Context, text string, limit int) ([]StoredClaim, error) {
	// Lexical overlap on the claim's leading terms, a cheap similarity
	// proxy rather than semantic search.
	keyword := leadingTerms(text, 3)
	if keyword == "" {
		return nil, nil
	}

	query := `
	MATCH (c:Claim)
	WHERE toLower(c.text) CONTAINS $keyword
	RETURN c.id as id, c.text as text, c.confidence_score as confidence,
	       c.verification_status as status, c.timestamp as timestamp
	LIMIT $limit`
	records, err := s.read(ctx, "find similar claims", query, map[string]any{
		"keyword": keyword,
		"limit":   limit,
	})
	if err != nil {
		return nil, err
	}
	return storedClaims(records), nil
}

func (s *Neo4jStore) FindContradictoryClaims(ctx context.Context, claimID string) ([]StoredClaim, error) {
	query := `
	MATCH (c1:Claim {id: $claim_id})-[r:CONTRADICTS]-(c2:Claim)
	RETURN c2.id as id, c2.text as text, c2.confidence_score as confidence,
	       c2.verification_status as status, c2.timestamp as timestamp`
	records, err := s.read(ctx, "find contradictory claims", query, map[string]any{
		"claim_id": claimID,
	})
	if err != nil {
		return nil, err
	}
	return storedClaims(records), nil
}

func (s *Neo4jStore) ClaimsSince(ctx context.Context, entityName string, since time.Time, limit int) ([]ClaimRecord, error) {
	var query string
	params := map[string]any{
		"cutoff": since.UTC().Format(tsFormat),
		"limit":  limit,
	}
	if entityName != "" {
		query = `
		MATCH (e:Entity {name: $entity_name})<-[:ABOUT]-(c:Claim)
		WHERE c.timestamp >= $cutoff
		WITH c
		MATCH (c)-[:ABOUT]->(e2:Entity)
		WITH c, collect(e2.name) as entities
		RETURN c.id as id, c.text as text, c.confidence_score as confidence,
		       c.timestamp as timestamp, entities
		ORDER BY c.timestamp DESC
		LIMIT $limit`
		params["entity_name"] = entityName
	} else {
		query = `
		MATCH (c:Claim)
		WHERE c.timestamp >= $cutoff
		OPTIONAL MATCH (c)-[:ABOUT]->(e:Entity)
		WITH c, collect(e.name) as entities
		WHERE size(entities) > 0
		RETURN c.id as id, c.text as text, c.confidence_score as confidence,
		       c.timestamp as timestamp, entities
		ORDER BY c.timestamp DESC
		LIMIT $limit`
	}

	records, err := s.read(ctx, "claims since", query, params)
	if err != nil {
		return nil, err
	}

	out := make([]ClaimRecord, 0, len(records))
	for _, rec := range records {
		m := rec.AsMap()
		out = append(out, ClaimRecord{
			ID:         asString(m["id"]),
			Text:       asString(m["text"]),
			Confidence: asFloat(m["confidence"]),
			Timestamp:  asTime(m["timestamp"]),
			Entities:   asStrings(m["entities"]),
		})
	}
	return out, nil
}

func (s *Neo4jStore) SourceStats(ctx context.Context, sourceName string, since time.Time) (*SourceStats, error) {
	params := map[string]any{
		"source_name": sourceName,
		"cutoff":      since.UTC().Format(tsFormat),
	}

	totals := `
	MATCH (s:Source {name: $source_name})<-[:FROM]-(c:Claim)
	WHERE c.timestamp >= $cutoff
	RETURN count(c) as total, avg(c.confidence_score) as avg_conf`
	records, err := s.read(ctx, "source stats totals", totals, params)
	if err != nil {
		return nil, err
	}
	stats := &SourceStats{}
	if len(records) > 0 {
		m := records[0].AsMap()
		stats.TotalClaims = asInt(m["total"])
		stats.AvgConfidence = asFloat(m["avg_conf"])
	}
	if stats.TotalClaims == 0 {
		return stats, nil
	}

	contradicted := `
	MATCH (s:Source {name: $source_name})<-[:FROM]-(c:Claim)-[:CONTRADICTS]-(:Claim)
	WHERE c.timestamp >= $cutoff
	RETURN count(DISTINCT c) as contradicted`
	records, err = s.read(ctx, "source stats contradicted", contradicted, params)
	if err != nil {
		return nil, err
	}
	if len(records) > 0 {
		stats.ContradictedClaims = asInt(records[0].AsMap()["contradicted"])
	}

	// Cross-validation proxy: the claim touches an entity another
	// source also made claims about.
	crossValidated := `
	MATCH (s:Source {name: $source_name})<-[:FROM]-(c:Claim)-[:ABOUT]->(:Entity)<-[:ABOUT]-(peer:Claim)
	WHERE c.timestamp >= $cutoff AND peer.source_id <> c.source_id
	RETURN count(DISTINCT c) as cross_validated`
	records, err = s.read(ctx, "source stats cross-validated", crossValidated, params)
	if err != nil {
		return nil, err
	}
	if len(records) > 0 {
		stats.CrossValidatedClaims = asInt(records[0].AsMap()["cross_validated"])
	}

	return stats, nil
}

func (s *Neo4jStore) ActiveSources(ctx context.Context, limit int) ([]string, error) {
	query := `
	MATCH (s:Source)<-[:FROM]-(c:Claim)
	WITH s.name as source, count(c) as claim_count
	WHERE claim_count > 0
	RETURN DISTINCT source
	ORDER BY claim_count DESC
	LIMIT $limit`
	records, err := s.read(ctx, "active sources", query, map[string]any{"limit": limit})
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(records))
	for _, rec := range records {
		if name := asString(rec.AsMap()["source"]); name != "" {
			out = append(out, name)
		}
	}
	return out, nil
}

func (s *Neo4jStore) EntityActivity(ctx context.Context, since time.Time, limit int) ([]EntityActivity, error) {
	query := `
	MATCH (e:Entity)<-[:ABOUT]-(c:Claim)
	WHERE c.timestamp >= $cutoff
	WITH e, c ORDER BY c.timestamp
	WITH e,
	     count(c) as mention_count,
	     collect(c.confidence_score) as confidences,
	     min(c.timestamp) as first_seen,
	     max(c.timestamp) as last_seen
	RETURN e.name as entity_name, e.type as entity_type,
	       mention_count, confidences, first_seen, last_seen
	ORDER BY mention_count DESC
	LIMIT $limit`
	records, err := s.read(ctx, "entity activity", query, map[string]any{
		"cutoff": since.UTC().Format(tsFormat),
		"limit":  limit,
	})
	if err != nil {
		return nil, err
	}

	out := make([]EntityActivity, 0, len(records))
	for _, rec := range records {
		m := rec.AsMap()
		out = append(out, EntityActivity{
			EntityName:  asString(m["entity_name"]),
			EntityType:  asString(m["entity_type"]),
			Mentions:    asInt(m["mention_count"]),
			Confidences: asFloats(m["confidences"]),
			FirstSeen:   asTime(m["first_seen"]),
			LastSeen:    asTime(m["last_seen"]),
		})
	}
	return out, nil
}

func (s *Neo4jStore) MentionSpikes(ctx context.Context, since time.Time) ([]MentionSpike, error) {
	query := `
	MATCH (e:Entity)<-[:ABOUT]-(c:Claim)
	WHERE c.timestamp >= $cutoff
	WITH e, count(c) as recent_count
	WHERE recent_count >= 5
	MATCH (e)<-[:ABOUT]-(c2:Claim)
	WHERE c2.timestamp < $cutoff
	WITH e, recent_count, count(c2) as historical_count
	WHERE historical_count > 0 AND recent_count > historical_count * 3
	RETURN e.name as entity_name, e.type as entity_type, recent_count, historical_count`
	records, err := s.read(ctx, "mention spikes", query, map[string]any{
		"cutoff": since.UTC().Format(tsFormat),
	})
	if err != nil {
		return nil, err
	}

	out := make([]MentionSpike, 0, len(records))
	for _, rec := range records {
		m := rec.AsMap()
		out = append(out, MentionSpike{
			EntityName:      asString(m["entity_name"]),
			EntityType:      asString(m["entity_type"]),
			RecentCount:     asInt(m["recent_count"]),
			HistoricalCount: asInt(m["historical_count"]),
		})
	}
	return out, nil
}

func (s *Neo4jStore) ConfidenceDrops(ctx context.Context, since time.Time) ([]ConfidenceShift, error) {
	query := `
	MATCH (e:Entity)<-[:ABOUT]-(c:Claim)
	WHERE c.timestamp >= $cutoff
	WITH e, avg(c.confidence_score) as recent_confidence
	WHERE recent_confidence < 0.5
	MATCH (e)<-[:ABOUT]-(c2:Claim)
	WHERE c2.timestamp < $cutoff
	WITH e, recent_confidence, avg(c2.confidence_score) as historical_confidence
	WHERE historical_confidence > 0.7 AND recent_confidence < historical_confidence - 0.3
	RETURN e.name as entity_name, e.type as entity_type, recent_confidence, historical_confidence`
	records, err := s.read(ctx, "confidence drops", query, map[string]any{
		"cutoff": since.UTC().Format(tsFormat),
	})
	if err != nil {
		return nil, err
	}

	out := make([]ConfidenceShift, 0, len(records))
	for _, rec := range records {
		m := rec.AsMap()
		out = append(out, ConfidenceShift{
			EntityName:    asString(m["entity_name"]),
			EntityType:    asString(m["entity_type"]),
			RecentAvg:     asFloat(m["recent_confidence"]),
			HistoricalAvg: asFloat(m["historical_confidence"]),
		})
	}
	return out, nil
}

func (s *Neo4jStore) EntityClusters(ctx context.Context, since time.Time, limit int) ([]EntityCluster, error) {
	query := `
	MATCH (e1:Entity)<-[:ABOUT]-(c:Claim)-[:ABOUT]->(e2:Entity)
	WHERE c.timestamp >= $cutoff AND e1 <> e2
	WITH e1, count(DISTINCT e2) as new_connections
	WHERE new_connections >= 3
	RETURN e1.name as entity_name, e1.type as entity_type, new_connections
	ORDER BY new_connections DESC
	LIMIT $limit`
	records, err := s.read(ctx, "entity clusters", query, map[string]any{
		"cutoff": since.UTC().Format(tsFormat),
		"limit":  limit,
	})
	if err != nil {
		return nil, err
	}

	out := make([]EntityCluster, 0, len(records))
	for _, rec := range records {
		m := rec.AsMap()
		out = append(out, EntityCluster{
			EntityName:     asString(m["entity_name"]),
			EntityType:     asString(m["entity_type"]),
			NewConnections: asInt(m["new_connections"]),
		})
	}
	return out, nil
}

func (s *Neo4jStore) EntityTimeline(ctx context.Context, entityName string, since time.Time) ([]TimelineMention, error) {
	query := `
	MATCH (e:Entity {name: $entity_name})<-[:ABOUT]-(c:Claim)
	WHERE c.timestamp >= $cutoff
	RETURN c.timestamp as timestamp, c.text as claim_text, c.confidence_score as confidence
	ORDER BY c.timestamp`
	records, err := s.read(ctx, "entity timeline", query, map[string]any{
		"entity_name": entityName,
		"cutoff":      since.UTC().Format(tsFormat),
	})
	if err != nil {
		return nil, err
	}

	out := make([]TimelineMention, 0, len(records))
	for _, rec := range records {
		m := rec.AsMap()
		out = append(out, TimelineMention{
			Timestamp:  asTime(m["timestamp"]),
			ClaimText:  asString(m["claim_text"]),
			Confidence: asFloat(m["confidence"]),
		})
	}
	return out, nil
}

func (s *Neo4jStore) WindowStats(ctx context.Context, since time.Time) (*ActivityStats, error) {
	query := `
	MATCH (c:Claim)
	WHERE c.timestamp >= $cutoff
	WITH count(c) as total_claims
	OPTIONAL MATCH (e:Entity)<-[:ABOUT]-(c2:Claim)
	WHERE c2.timestamp >= $cutoff
	RETURN total_claims, count(DISTINCT e) as active_entities`
	records, err := s.read(ctx, "window stats", query, map[string]any{
		"cutoff": since.UTC().Format(tsFormat),
	})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return &ActivityStats{}, nil
	}

	m := records[0].AsMap()
	return &ActivityStats{
		TotalClaims:    asInt(m["total_claims"]),
		ActiveEntities: asInt(m["active_entities"]),
	}, nil
}

func (s *Neo4jStore) Stats(ctx context.Context) (*Stats, error) {
	query := `
	OPTIONAL MATCH (e:Entity)
	WITH count(e) as entities
	OPTIONAL MATCH (c:Claim)
	WITH entities, count(c) as claims
	OPTIONAL MATCH (s:Source)
	WITH entities, claims, count(s) as sources
	OPTIONAL MATCH (ev:Event)
	RETURN entities, claims, sources, count(ev) as events`
	records, err := s.read(ctx, "stats", query, nil)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return &Stats{}, nil
	}

	m := records[0].AsMap()
	return &Stats{
		Entities: int64(asInt(m["entities"])),
		Claims:   int64(asInt(m["claims"])),
		Sources:  int64(asInt(m["sources"])),
		Events:   int64(asInt(m["events"])),
	}, nil
}

// ==================== Record helpers ====================

func storedClaims(records []*neo4j.Record) []StoredClaim {
	out := make([]StoredClaim, 0, len(records))
	for _, rec := range records {
		m := rec.AsMap()
		out = append(out, StoredClaim{
			ID:         asString(m["id"]),
			Text:       asString(m["text"]),
			Confidence: asFloat(m["confidence"]),
			Status:     asString(m["status"]),
			Timestamp:  asTime(m["timestamp"]),
		})
	}
	return out
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	}
	return 0
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	}
	return 0
}

func asTime(v any) time.Time {
	s, ok := v.(string)
	if !ok {
		return time.Time{}
	}
	t, err := time.Parse(tsFormat, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func asStrings(v any) []string {
	vals, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(vals))
	for _, val := range vals {
		if s, ok := val.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

func asFloats(v any) []float64 {
	vals, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]float64, 0, len(vals))
	for _, val := range vals {
		out = append(out, asFloat(val))
	}
	return out
}

// leadingTerms returns the first n whitespace-separated terms of text,
// lowercased, as a single search keyword.
func leadingTerms(text string, n int) string {
	fields := strings.Fields(strings.ToLower(text))
	if len(fields) > n {
		fields = fields[:n]
	}
	return strings.Join(fields, " ")
}
