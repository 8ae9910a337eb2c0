// Package cache provides the small persistent memory the analytics
// engines keep between runs, layered as in-process storage backed by
// disk so score history survives restarts.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is a byte-oriented cache with per-entry TTL
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a filename-safe cache key from a namespace and an
// arbitrary identifier (source name, entity name, ...).
func Key(namespace, id string) string {
	hash := sha256.Sum256([]byte(id))
	return "intelgraph-v1-" + namespace + "-" + hex.EncodeToString(hash[:16])
}
