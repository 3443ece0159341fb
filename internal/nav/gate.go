// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

package nav

// Role names for console users. Public visitors have no role.
const (
	RoleAdmin        = "admin"
	RoleEnglishAdmin = "english_admin"
	RoleEditor       = "editor"
)

// Viewer holds the session flags the route gate is evaluated against.
// The flags are owned by the auth layer; the gate is a stateless
// predicate over them.
type Viewer struct {
	LoggedIn bool
	Role     string
}

// IsAdmin reports whether the viewer may use the admin console. The
// English admin edits the same records through the _en shadow fields and
// counts as console access.
func (v Viewer) IsAdmin() bool {
	return v.LoggedIn && (v.Role == RoleAdmin || v.Role == RoleEnglishAdmin || v.Role == RoleEditor)
}

// Allowed reports whether the viewer may see the content of the target
// page. There are exactly two outcomes: render the page, or render the
// access-denied placeholder. Navigation itself is not refused either
// way - the caller still records the target page as current (see
// State.Navigate), and denial only replaces the rendered content.
func (v Viewer) Allowed(p Page) bool {
	switch p {
	case PageDashboard:
		return v.LoggedIn
	case PageAdminDashboard:
		return v.IsAdmin()
	default:
		return true
	}
}
