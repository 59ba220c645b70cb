// Package cache provides the storage layer for rendered charts and mockups.
//
// Rendering is deterministic: the same events, style, format and target size
// always produce the same PNG. The cache stores encoded images under a key
// derived from a content hash of those inputs, so repeated downloads of an
// unchanged timeline skip rasterization entirely.
//
// # Backends
//
//   - [MemoryCache]: in-process map with TTL and a size bound (HTTP service)
//   - [FileCache]: one file per entry under a directory (CLI)
//   - [NullCache]: never stores anything (caching disabled)
//
// # Keys
//
// A [Keyer] turns a content hash plus output options into a key string.
// [ScopedKeyer] prefixes every key, e.g. with a session ID, so entries of
// different sessions never collide.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values by key.
type Cache interface {
	// Get returns the value for key. The bool reports whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Default time-to-live values per artifact kind.
const (
	TTLChart  = 24 * time.Hour
	TTLMockup = 24 * time.Hour
)

// Keyer generates cache keys.
type Keyer interface {
	// ChartKey is the key of a rasterized chart PNG.
	ChartKey(contentHash string) string

	// MockupKey is the key of a composited mockup PNG.
	MockupKey(contentHash string, opts MockupKeyOpts) string
}

// MockupKeyOpts holds the compositing options that affect the output.
type MockupKeyOpts struct {
	Format       string `json:"format"`
	TargetWidth  int    `json:"target_width"`
	TargetHeight int    `json:"target_height"`
}

// DefaultKeyer builds keys of the form "<kind>:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ChartKey implements [Keyer].
func (DefaultKeyer) ChartKey(contentHash string) string {
	return hashKey("chart", contentHash)
}

// MockupKey implements [Keyer].
func (DefaultKeyer) MockupKey(contentHash string, opts MockupKeyOpts) string {
	return hashKey("mockup", contentHash, opts)
}
