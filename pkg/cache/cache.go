// Package cache stores rendered score artifacts between runs.
//
// Keys are derived from the SHA-256 of the score file content plus the
// options that influence the output, so editing a score or changing a
// render flag never serves a stale artifact. [FileCache] backs the CLI;
// [NullCache] disables caching.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional expiry.
type Cache interface {
	// Get returns the stored value and whether it was found. A missing or
	// expired entry is a miss, not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error

	Close() error
}

// Default lifetimes per artifact kind.
const (
	TTLArtifact = 7 * 24 * time.Hour
	TTLMIDI     = 7 * 24 * time.Hour
	TTLGraph    = 7 * 24 * time.Hour
)
