// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type projection struct {
	Title string `json:"title"`
	Lang  string `json:"lang"`
}

func TestTypedCacheRoundTrip(t *testing.T) {
	c := NewTypedCache[projection](newTestCache(), time.Minute)
	ctx := context.Background()

	want := &projection{Title: "رياضيات التوجيهي", Lang: "ar"}
	if err := c.Set(ctx, "courses:v3:ar", want); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, ok := c.Get(ctx, "courses:v3:ar")
	if !ok {
		t.Fatal("expected hit")
	}
	if got.Title != want.Title || got.Lang != want.Lang {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestTypedCacheGetOrSet(t *testing.T) {
	c := NewTypedCache[projection](newTestCache(), time.Minute)
	ctx := context.Background()

	calls := 0
	compute := func() (*projection, error) {
		calls++
		return &projection{Title: "t", Lang: "en"}, nil
	}

	for i := 0; i < 3; i++ {
		if _, err := c.GetOrSet(ctx, "key", compute); err != nil {
			t.Fatalf("GetOrSet: %v", err)
		}
	}
	if calls != 1 {
		t.Errorf("compute called %d times, want 1", calls)
	}
}

func TestTypedCacheGetOrSetError(t *testing.T) {
	c := NewTypedCache[projection](newTestCache(), time.Minute)

	wantErr := errors.New("load failed")
	_, err := c.GetOrSet(context.Background(), "key", func() (*projection, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
}
