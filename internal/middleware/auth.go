// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, language detection and request context handling.
package middleware

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/jotutor/jotutor/internal/model"
	"github.com/jotutor/jotutor/internal/store"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Context keys for user data.
const (
	ContextKeyUser ContextKey = "user"
)

// Session keys.
const (
	SessionKeyUserID   = "user_id"
	SessionKeyLang     = "lang"
	SessionKeyNavState = "nav_state"
)

// OptionalLoadUser loads the current user into context when a session
// exists, without redirecting anonymous visitors. Route access is
// decided downstream by the page gate, which denies in place; there is
// no auth middleware that redirects, so a denied navigation is still
// recorded against the target page.
func OptionalLoadUser(sm *scs.SessionManager, db *sql.DB) func(http.Handler) http.Handler {
	queries := store.New(db)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := sm.GetInt64(r.Context(), SessionKeyUserID)
			if userID == 0 {
				next.ServeHTTP(w, r)
				return
			}

			user, err := queries.GetUserByID(r.Context(), userID)
			if err != nil {
				// Stale session for a deleted user.
				_ = sm.Destroy(r.Context())
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser retrieves the current user from the request context. Returns
// nil for anonymous visitors.
func GetUser(r *http.Request) *model.User {
	user, ok := r.Context().Value(ContextKeyUser).(model.User)
	if !ok {
		return nil
	}
	return &user
}

// GetUserID returns the current user's ID, or 0 for anonymous visitors.
func GetUserID(r *http.Request) int64 {
	if user := GetUser(r); user != nil {
		return user.ID
	}
	return 0
}
