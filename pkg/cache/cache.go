// Package cache stores computed verdicts so that repeated checks of the same
// pipeline skip the traversal.
//
// Editors typically re-validate the whole graph after every change, and many
// of those submissions are identical. Verdicts are keyed by a hash of the
// graph structure (see [Keyer]), never by the raw request body, and the
// submitted graph itself is never stored.
//
// # Backends
//
//   - [NullCache]: caching disabled
//   - [FileCache]: one file per entry, used by the CLI
//   - [RedisCache]: shared cache for multi-instance servers
//
// All backends are safe for concurrent use.
package cache

import (
	"context"
	"time"
)

// TTLVerdict is the default lifetime of a cached verdict.
const TTLVerdict = 24 * time.Hour

// Cache is a byte-oriented key-value store with expiration.
type Cache interface {
	// Get returns the value for key. A miss is reported as (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer generates cache keys.
type Keyer interface {
	// VerdictKey returns the key for the verdict of the graph with the given
	// structural hash and options.
	VerdictKey(graphHash string, opts VerdictKeyOpts) string
}

// VerdictKeyOpts holds the options that change a verdict for the same graph.
type VerdictKeyOpts struct {
	MaxNodes int `json:"max_nodes,omitempty"`
	MaxEdges int `json:"max_edges,omitempty"`
}

// DefaultKeyer produces unprefixed keys of the form "verdict:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// VerdictKey implements Keyer.
func (DefaultKeyer) VerdictKey(graphHash string, opts VerdictKeyOpts) string {
	return hashKey("verdict", graphHash, opts)
}
