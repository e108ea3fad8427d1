// Package cache stores finished simulation artifacts keyed by input hash.
//
// Simulations are deterministic, so a report or a rendered timeline for a
// given set of input lines never changes. The pipeline looks artifacts up
// here before running the scheduler and writes them back afterwards.
//
// Three backends implement [Cache]:
//   - [FileCache]: one JSON file per key under a directory, for the CLI.
//   - [RedisCache]: a shared Redis instance, for the HTTP API.
//   - [NullCache]: stores nothing, for --no-cache and tests.
//
// Keys come from a [Keyer]; [ScopedKeyer] prefixes them so several
// deployments can share one Redis instance.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is a byte-oriented key/value cache with per-entry TTL.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the cached value and whether it was found.
	// A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// Default lifetimes of cached artifacts.
const (
	TTLReport   = 30 * 24 * time.Hour
	TTLTimeline = 30 * 24 * time.Hour
)

// Keyer builds cache keys for pipeline artifacts.
type Keyer interface {
	// ReportKey returns the key of the report for the given input hash.
	ReportKey(inputHash string) string

	// TimelineKey returns the key of a rendered timeline.
	TimelineKey(inputHash string, opts TimelineKeyOpts) string
}

// TimelineKeyOpts holds the rendering options that affect a timeline.
type TimelineKeyOpts struct {
	Format   string `json:"format"`
	Detailed bool   `json:"detailed,omitempty"`
}

// keyVersion is bumped whenever the encoding of cached artifacts changes.
const keyVersion = "v1"

// DefaultKeyer produces unscoped keys of the form "kind:version:hash".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ReportKey implements Keyer.
func (DefaultKeyer) ReportKey(inputHash string) string {
	return fmt.Sprintf("report:%s:%s", keyVersion, inputHash)
}

// TimelineKey implements Keyer.
func (DefaultKeyer) TimelineKey(inputHash string, opts TimelineKeyOpts) string {
	return hashKey("timeline:"+keyVersion, inputHash, opts)
}
