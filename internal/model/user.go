// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Console user roles. The English admin edits only the _en shadow
// fields of the same records the Arabic console owns.
const (
	RoleAdmin        = "admin"
	RoleEnglishAdmin = "english_admin"
	RoleEditor       = "editor"
)

// User represents a console user.
type User struct {
	ID           int64        `json:"id"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"` // Never expose in JSON
	Role         string       `json:"role"`
	Name         string       `json:"name"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	LastLoginAt  sql.NullTime `json:"last_login_at,omitempty"`
}

// IsAdmin returns true if the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsEnglishAdmin returns true for the split-locale English console role.
func (u *User) IsEnglishAdmin() bool {
	return u.Role == RoleEnglishAdmin
}
