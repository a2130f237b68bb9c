// Package cache stores computed escape-time charts.
//
// A [Cache] is a plain byte store with per-entry TTL. Four backends are
// provided: [NullCache] (disabled), [FileCache] (local CLI use), [RedisCache]
// and [MongoCache] (shared by server instances). [Open] builds one from a
// backend name.
//
// Keys are produced by a [Keyer] so that every parameter that affects a chart
// also affects its key. [ScopedKeyer] namespaces keys for multi-tenant stores.
package cache

import (
	"context"
	"time"
)

// TTLChart is the default lifetime of a cached chart.
const TTLChart = 7 * 24 * time.Hour

// Cache is a key/value store for serialized charts.
//
// Get reports a miss with ok == false and a nil error. Implementations must be
// safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// ChartKeyOpts lists every input that determines a chart's counts.
type ChartKeyOpts struct {
	Mode      string  `json:"mode"`
	JuliaRe   float64 `json:"julia_re"`
	JuliaIm   float64 `json:"julia_im"`
	XMin      float64 `json:"x_min"`
	XMax      float64 `json:"x_max"`
	YMin      float64 `json:"y_min"`
	YMax      float64 `json:"y_max"`
	Points    int     `json:"points"`
	Threshold int     `json:"threshold"`
	Criterion string  `json:"criterion"`
	MaskZero  bool    `json:"mask_zero"`
}

// Keyer generates cache keys.
type Keyer interface {
	ChartKey(opts ChartKeyOpts) string
}

// DefaultKeyer produces "chart:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ChartKey hashes opts into a key.
func (DefaultKeyer) ChartKey(opts ChartKeyOpts) string {
	return hashKey("chart", opts)
}
