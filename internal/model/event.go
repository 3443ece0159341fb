// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Event levels
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// Event categories
const (
	EventCategoryAuth    = "auth"
	EventCategoryContent = "content"
	EventCategoryPayment = "payment"
	EventCategorySystem  = "system"
)

// Event represents a system event log entry, visible in the admin
// console.
type Event struct {
	ID        int64
	Level     string
	Category  string
	Message   string
	UserID    sql.NullInt64
	Metadata  string // JSON string
	CreatedAt time.Time
}

// Visit is one recorded page view for the lightweight analytics module.
type Visit struct {
	ID        int64
	Path      string
	Page      string
	Lang      string
	Browser   string
	OS        string
	Country   string
	CreatedAt time.Time
}
