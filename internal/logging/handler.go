// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a slog handler that forwards WARN and above
// to the database-backed event log shown in the admin console.
package logging

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"

	"github.com/jotutor/jotutor/internal/model"
	"github.com/jotutor/jotutor/internal/store"
)

// EventLogHandler wraps another slog.Handler and also writes records at
// or above its threshold to the event log.
type EventLogHandler struct {
	inner   slog.Handler
	queries *store.Queries
	level   slog.Level
}

// NewEventLogHandler creates an EventLogHandler with a WARN threshold.
func NewEventLogHandler(inner slog.Handler, db *sql.DB) *EventLogHandler {
	return &EventLogHandler{
		inner:   inner,
		queries: store.New(db),
		level:   slog.LevelWarn,
	}
}

// NewEventLogHandlerWithLevel creates an EventLogHandler with a custom
// threshold.
func NewEventLogHandlerWithLevel(inner slog.Handler, db *sql.DB, level slog.Level) *EventLogHandler {
	return &EventLogHandler{
		inner:   inner,
		queries: store.New(db),
		level:   level,
	}
}

// Enabled implements slog.Handler.
func (h *EventLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *EventLogHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}
	if r.Level >= h.level {
		h.writeToEventLog(r)
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *EventLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &EventLogHandler{
		inner:   h.inner.WithAttrs(attrs),
		queries: h.queries,
		level:   h.level,
	}
}

// WithGroup implements slog.Handler.
func (h *EventLogHandler) WithGroup(name string) slog.Handler {
	return &EventLogHandler{
		inner:   h.inner.WithGroup(name),
		queries: h.queries,
		level:   h.level,
	}
}

// writeToEventLog persists one record. A background context is used so
// the event lands even when the request context is already cancelled.
func (h *EventLogHandler) writeToEventLog(r slog.Record) {
	_, _ = h.queries.CreateEvent(context.Background(), store.CreateEventParams{
		Level:     slogLevelToEventLevel(r.Level),
		Category:  extractCategory(r),
		Message:   r.Message,
		UserID:    sql.NullInt64{},
		Metadata:  extractMetadata(r),
		CreatedAt: r.Time,
	})
}

func slogLevelToEventLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return model.EventLevelError
	case level >= slog.LevelWarn:
		return model.EventLevelWarning
	default:
		return model.EventLevelInfo
	}
}

// extractCategory reads the "category" attribute, falling back to
// keyword inference over the message.
func extractCategory(r slog.Record) string {
	var category string
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "category" {
			category = a.Value.String()
			return false
		}
		return true
	})
	if category != "" {
		return category
	}

	msg := strings.ToLower(r.Message)
	switch {
	case strings.Contains(msg, "auth") || strings.Contains(msg, "login") || strings.Contains(msg, "logout"):
		return model.EventCategoryAuth
	case strings.Contains(msg, "payment") || strings.Contains(msg, "checkout") || strings.Contains(msg, "gateway"):
		return model.EventCategoryPayment
	case strings.Contains(msg, "content") || strings.Contains(msg, "translat") || strings.Contains(msg, "catalog"):
		return model.EventCategoryContent
	default:
		return model.EventCategorySystem
	}
}

// extractMetadata collects remaining attributes into a flat JSON object.
func extractMetadata(r slog.Record) string {
	if r.NumAttrs() == 0 {
		return "{}"
	}

	var sb strings.Builder
	sb.WriteString("{")
	first := true
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "category" {
			return true
		}
		if !first {
			sb.WriteString(",")
		}
		first = false
		sb.WriteString(`"`)
		sb.WriteString(escapeJSON(a.Key))
		sb.WriteString(`":"`)
		sb.WriteString(escapeJSON(a.Value.String()))
		sb.WriteString(`"`)
		return true
	})
	sb.WriteString("}")
	return sb.String()
}

func escapeJSON(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
