// Package cache stores divergence scores keyed by frame content so repeated
// analyses of unchanged captures skip the expensive SSIM pass.
//
// Keys are derived from the SHA-256 content hashes of the two compared
// frames plus the scoring parameters, so a cache entry can never be served
// for a retouched capture. Backends: a file cache under the user cache
// directory (default), a Redis cache for shared CI runners, and a null
// cache for --no-cache runs.
package cache

import (
	"context"
	"time"
)

// Cache is the storage interface shared by all backends.
type Cache interface {
	// Get retrieves a value. The bool reports whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a time-to-live. A non-positive ttl stores
	// the entry without expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// ScoreKey builds the cache key for a pairwise divergence score.
// The two content hashes are ordered so the key is symmetric in its inputs,
// matching the symmetry of the score itself.
func ScoreKey(hashA, hashB string, windowRadius int) string {
	if hashB < hashA {
		hashA, hashB = hashB, hashA
	}
	return hashKey("score", hashA, hashB, windowRadius)
}
