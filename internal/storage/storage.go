package storage

import (
	"context"
	"encoding/json"
	"log"
	"time"
)

// Store is the opaque key-value capability everything persists through.
// Semantics are last-write-wins with no transactional guarantee; in-memory
// state stays authoritative and a failed write is simply retried on the
// next snapshot.
type Store interface {
	// Get returns the value at key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set writes the value; a zero ttl means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Remove(ctx context.Context, key string) error
}

// GetJSON decodes the value at key into out. Missing, unreadable or corrupt
// values are all reported as absent: the gateway fails open, never fatal.
// Corrupt values are removed so they do not shadow later writes.
func GetJSON(ctx context.Context, s Store, key string, out any) bool {
	value, ok, err := s.Get(ctx, key)
	if err != nil {
		log.Printf("[storage] read of %q failed: %v", key, err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(value, out); err != nil {
		log.Printf("[storage] corrupt value at %q, discarding: %v", key, err)
		_ = s.Remove(ctx, key)
		return false
	}
	return true
}

// SetJSON serializes v and writes it at key.
func SetJSON(ctx context.Context, s Store, key string, v any, ttl time.Duration) error {
	value, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, value, ttl)
}
