// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cache provides the caching layer behind the localized catalog
// projections and the on-demand site-copy translations. Two backends
// implement the same interface: an in-memory cache for single-node
// deployments and a Redis cache for shared ones.
package cache

import (
	"context"
	"time"
)

// Cacher is the byte-level cache interface. All implementations must be
// safe for concurrent use.
type Cacher interface {
	// Get retrieves a value. Returns ErrCacheMiss when the key is
	// absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL. A zero TTL uses the
	// backend's default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key.
	Delete(ctx context.Context, key string) error

	// DeleteByPrefix removes every key starting with prefix. Version
	// bumps use this to drop all projections of one collection at once.
	DeleteByPrefix(ctx context.Context, prefix string) error

	// Clear removes all entries.
	Clear(ctx context.Context) error

	// Has reports whether a key exists and is not expired.
	Has(ctx context.Context, key string) (bool, error)

	// Close releases backend resources.
	Close() error
}

// StatsProvider is an optional interface for caches that track hit
// statistics.
type StatsProvider interface {
	Stats() Stats
	ResetStats()
}

// Stats holds cache statistics for the admin console.
type Stats struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	Sets    int64   `json:"sets"`
	Items   int     `json:"items"`
	HitRate float64 `json:"hit_rate"`
}

// Error is the error type for cache operations.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	// ErrCacheMiss indicates the key was not found or has expired.
	ErrCacheMiss Error = "cache miss"

	// ErrCacheClosed indicates the cache has been closed.
	ErrCacheClosed Error = "cache closed"
)
