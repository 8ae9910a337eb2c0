package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// hashID derives a stable 16-character hex id from text, so repeated
// extraction of the same fact produces the same node id (idempotent upserts).
func hashID(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])[:16]
}

// EntityID derives the deterministic id for an entity from (name, type)
func EntityID(name string, typ EntityType) string {
	return hashID(strings.ToLower(strings.TrimSpace(name)) + "_" + string(typ))
}

// EventID derives the deterministic id for an event from its description prefix
func EventID(description string) string {
	d := strings.TrimSpace(description)
	if len(d) > 100 {
		d = d[:100]
	}
	return hashID(d)
}

// ClaimID derives the deterministic id for a claim from its text
func ClaimID(text string) string {
	return hashID(strings.TrimSpace(text))
}
