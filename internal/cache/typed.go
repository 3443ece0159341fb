// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"encoding/json"
	"time"
)

// TypedCache wraps a Cacher with JSON serialization for one value type.
type TypedCache[T any] struct {
	cache      Cacher
	defaultTTL time.Duration
}

// NewTypedCache creates a TypedCache over the given backend.
func NewTypedCache[T any](cache Cacher, defaultTTL time.Duration) *TypedCache[T] {
	return &TypedCache[T]{
		cache:      cache,
		defaultTTL: defaultTTL,
	}
}

// Get retrieves a value. Returns the value and true if found, nil and
// false otherwise. A value that fails to decode counts as a miss.
func (c *TypedCache[T]) Get(ctx context.Context, key string) (*T, bool) {
	data, err := c.cache.Get(ctx, key)
	if err != nil {
		return nil, false
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, false
	}
	return &value, true
}

// Set stores a value with the default TTL.
func (c *TypedCache[T]) Set(ctx context.Context, key string, value *T) error {
	return c.SetWithTTL(ctx, key, value, c.defaultTTL)
}

// SetWithTTL stores a value with a custom TTL.
func (c *TypedCache[T]) SetWithTTL(ctx context.Context, key string, value *T, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.cache.Set(ctx, key, data, ttl)
}

// Delete removes a key.
func (c *TypedCache[T]) Delete(ctx context.Context, key string) error {
	return c.cache.Delete(ctx, key)
}

// DeleteByPrefix removes every key under a prefix.
func (c *TypedCache[T]) DeleteByPrefix(ctx context.Context, prefix string) error {
	return c.cache.DeleteByPrefix(ctx, prefix)
}

// GetOrSet retrieves a value, or computes and stores it on a miss. A
// failed cache write is ignored since the computed value is still valid.
func (c *TypedCache[T]) GetOrSet(ctx context.Context, key string, fn func() (*T, error)) (*T, error) {
	if value, ok := c.Get(ctx, key); ok {
		return value, nil
	}

	value, err := fn()
	if err != nil {
		return nil, err
	}

	_ = c.SetWithTTL(ctx, key, value, c.defaultTTL)
	return value, nil
}
