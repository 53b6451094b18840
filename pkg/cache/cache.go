// Package cache stores rendered artifacts keyed by document content and
// render options.
//
// The CLI uses [FileCache] under ~/.cache/arbor so repeated renders of an
// unchanged tree document skip the layout and export work. [NullCache]
// disables caching (--no-cache). Keys come from a [Keyer]; the HTTP server
// scopes keys per instance with [NewScopedKeyer].
package cache

import (
	"context"
	"strings"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the stored value and whether it was found. Expired and
	// corrupt entries count as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// keyType extracts the key category ("artifact", "tree", ...) used in
// observability events.
func keyType(key string) string {
	parts := strings.Split(key, ":")
	for _, p := range parts {
		switch p {
		case prefixTree, prefixLayout, prefixArtifact:
			return p
		}
	}
	return "other"
}
