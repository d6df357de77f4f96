// Package cache stores computed node outputs between runs.
//
// The Cache interface is a plain byte store with per-entry TTLs. Backends:
//   - FileCache: one JSON file per entry, for the CLI
//   - RedisCache: shared cache for servers
//   - MongoCache: shared cache with a TTL index
//   - NullCache: stores nothing, for --no-cache runs
//
// Keys come from a Keyer so that callers never build key strings by hand.
// Values are usually msgpack-encoded with GetValue and SetValue.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional expiry.
type Cache interface {
	// Get returns the stored data and whether the key was present and fresh.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Clear empties c if it supports clearing.
func Clear(ctx context.Context, c Cache) error {
	if cl, ok := c.(Clearer); ok {
		return cl.Clear(ctx)
	}
	return nil
}

// ====================================================================
// Keys
// ====================================================================

// Keyer builds cache keys.
type Keyer interface {
	// OutputKey addresses the outputs of one node, identified by its
	// fingerprint (declaration plus everything upstream).
	OutputKey(fingerprint string) string

	// ArtifactKey addresses a rendered artifact of a scene.
	ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts are the render options an artifact depends on.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Detailed bool   `json:"detailed"`
}

// DefaultKeyer is the unscoped Keyer.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default Keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// OutputKey returns "output:<fingerprint>".
func (DefaultKeyer) OutputKey(fingerprint string) string {
	return "output:" + fingerprint
}

// ArtifactKey hashes the scene hash together with the options.
func (DefaultKeyer) ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", sceneHash, opts)
}

// Default TTLs per entry type.
const (
	TTLOutput   = 7 * 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)
