// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jotutor/jotutor/internal/middleware"
)

// The JSON API serves the same locale-resolved projections as the
// rendered pages. Responses vary by the session language.

func (h *Handler) APITeachers(w http.ResponseWriter, r *http.Request) {
	teachers, err := h.catalog.Teachers(r.Context(), middleware.GetLang(r))
	if err != nil {
		h.writeAPIError(w, err)
		return
	}
	h.writeJSON(w, teachers)
}

func (h *Handler) APICourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.catalog.Courses(r.Context(), middleware.GetLang(r))
	if err != nil {
		h.writeAPIError(w, err)
		return
	}
	h.writeJSON(w, courses)
}

func (h *Handler) APIOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.catalog.Options(r.Context(), middleware.GetLang(r))
	if err != nil {
		h.writeAPIError(w, err)
		return
	}
	h.writeJSON(w, opts)
}

func (h *Handler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeAPIError(w http.ResponseWriter, err error) {
	slog.Error("api request failed", "category", "api", "error", err)
	w.Header().Set("Content-Type", "application/json")
	http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
}
