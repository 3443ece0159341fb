// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session configures the server-side session store. The session
// carries the signed-in user, the chosen language and the navigation
// state, so its lifetime bounds how long a browsing trail survives.
package session

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

const (
	// Lifetime caps a session absolutely. A checkout started near the
	// end of it still has ample room to finish.
	Lifetime = 7 * 24 * time.Hour

	// IdleTimeout expires abandoned sessions well before Lifetime.
	IdleTimeout = 24 * time.Hour
)

// New returns a session manager backed by the application database.
// Cookies are Lax so the gateway's redirect back to the result page
// keeps the session, and Secure everywhere but local development.
func New(db *sql.DB, isDev bool) *scs.SessionManager {
	sm := scs.New()
	sm.Store = sqlite3store.New(db)
	sm.Lifetime = Lifetime
	sm.IdleTimeout = IdleTimeout
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = !isDev
	return sm
}
