// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"time"
)

// Config selects and tunes the cache backend.
type Config struct {
	// RedisURL selects the Redis backend when non-empty. Otherwise the
	// in-memory backend is used.
	RedisURL string

	// Prefix is the key prefix for Redis.
	Prefix string

	// DefaultTTL is the default TTL for cache entries.
	DefaultTTL time.Duration

	// MaxSize is the maximum number of entries for the memory backend
	// (0 = unlimited).
	MaxSize int

	// CleanupInterval is the expired-entry sweep interval for the
	// memory backend.
	CleanupInterval time.Duration
}

// DefaultConfig returns the default cache configuration.
func DefaultConfig() Config {
	return Config{
		DefaultTTL:      time.Hour,
		MaxSize:         10000,
		CleanupInterval: time.Minute,
	}
}

// NewCache creates the backend selected by the configuration.
func NewCache(cfg Config) (Cacher, error) {
	if cfg.RedisURL != "" {
		opts := DefaultRedisCacheOptions()
		opts.URL = cfg.RedisURL
		if cfg.Prefix != "" {
			opts.Prefix = cfg.Prefix
		}
		if cfg.DefaultTTL > 0 {
			opts.DefaultTTL = cfg.DefaultTTL
		}
		return NewRedisCache(opts)
	}

	return NewMemoryCache(MemoryCacheOptions{
		DefaultTTL:      cfg.DefaultTTL,
		MaxSize:         cfg.MaxSize,
		CleanupInterval: cfg.CleanupInterval,
	}), nil
}

// NewCacheWithTTL creates an in-memory cache with the specified TTL.
func NewCacheWithTTL(ttl time.Duration) Cacher {
	return NewMemoryCache(MemoryCacheOptions{
		DefaultTTL:      ttl,
		CleanupInterval: time.Minute,
	})
}
