package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// TTLAxis and TTLSnap bound how long a pipeline memoizes its two
// expensive stages. A day is long enough to cover a batch re-run over
// the same building within a work session without risking a stale
// result surviving a config change that isn't reflected in the key.
const (
	TTLAxis = 24 * time.Hour
	TTLSnap = 24 * time.Hour
)

// Cache is the storage contract every backend implements: byte-slice
// values addressed by string key, with an optional TTL.
type Cache interface {
	// Get retrieves a value. hit is false on a cache miss; err is non-nil
	// only for a genuine storage failure.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores a value. ttl of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// AxisKeyOpts are the config.Config fields that change Axis Discovery's
// output for the same vertex set.
type AxisKeyOpts struct {
	RoundingPrecision float64
	ClusterRadius     float64
	MinFloors         int
}

// SnapKeyOpts are the config.Config fields that change the Snap Engine's
// output for the same discovered axis set.
type SnapKeyOpts struct {
	MaxSnapDistance     float64
	OutlierSnapDistance float64
}

// Keyer derives cache keys for the pipeline's memoizable stages.
type Keyer interface {
	// AxisKey keys an Axis Discovery result by a hash of the input vertex
	// set plus the tunables that affect it.
	AxisKey(vertexSetHash string, opts AxisKeyOpts) string

	// SnapKey keys a Snap Engine result by a hash of the discovered axis
	// set plus the tunables that affect it.
	SnapKey(axisSetHash string, opts SnapKeyOpts) string
}

// DefaultKeyer is the standard Keyer implementation, hashing the key
// components together so a config change never collides with a stale
// cache entry from a different tuning.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard Keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

func (DefaultKeyer) AxisKey(vertexSetHash string, opts AxisKeyOpts) string {
	return hashKey("axis", vertexSetHash, opts)
}

func (DefaultKeyer) SnapKey(axisSetHash string, opts SnapKeyOpts) string {
	return hashKey("snap", axisSetHash, opts)
}

// HashVertexSet derives the input hash AxisKey expects: a SHA-256 digest
// over every vertex's rounded coordinates, independent of ingestion order.
func HashVertexSet(coords [][3]float64) string {
	parts := make([]string, len(coords))
	for i, c := range coords {
		parts[i] = fmt.Sprintf("%.6f,%.6f,%.6f", c[0], c[1], c[2])
	}
	sort.Strings(parts)
	data, _ := json.Marshal(parts)
	return Hash(data)
}
