// Package cache provides content-addressed caching of rendered artifacts.
//
// The pipeline keys every artifact by a hash of the input document and the
// options that produced it, so re-rendering an unchanged flow is a cache
// hit. Two backends exist: [FileCache] for persistent CLI usage and
// [NullCache] to disable caching entirely.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"time"
)

// Cache is the storage interface for rendered artifacts.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves the value for key. The second return value reports
	// whether the key was found; a miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes the value for key. Deleting a missing key is not an
	// error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// ArtifactKeyOpts are the render options that participate in an artifact
// cache key. Artifacts rendered with different options must not collide.
type ArtifactKeyOpts struct {
	Format      string
	Title       string
	CurveOffset int
	Detailed    bool
}

// ArtifactKey builds the cache key for a rendered artifact from the input
// document hash and the render options. Each field is hashed behind a NUL
// separator so adjacent fields cannot run together and collide.
func ArtifactKey(inputHash string, opts ArtifactKeyOpts) string {
	h := sha256.New()
	io.WriteString(h, inputHash)
	io.WriteString(h, "\x00"+opts.Format)
	io.WriteString(h, "\x00"+opts.Title)
	fmt.Fprintf(h, "\x00%d\x00%t", opts.CurveOffset, opts.Detailed)
	return "artifact:" + hex.EncodeToString(h.Sum(nil))
}

// Hash computes the full 64-character hex SHA-256 of data. It is the
// content hash used for artifact keys and for file sharding.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// NullCache discards every write and reports every read as a miss. It
// backs the --no-cache flag and degraded startup when the cache directory
// cannot be created.
type NullCache struct{}

// NewNullCache creates a null cache.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (NullCache) Delete(context.Context, string) error { return nil }

func (NullCache) Close() error { return nil }

var _ Cache = NullCache{}
