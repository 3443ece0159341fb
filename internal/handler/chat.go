// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jotutor/jotutor/internal/middleware"
	"github.com/jotutor/jotutor/internal/translate"
)

// ChatPage renders the assistant overlay. The overlay does not change
// the navigation state; the page underneath stays current.
func (h *Handler) ChatPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "site/chat", h.pageData(r, t(r, "chat.title"), nil))
}

type chatAPIRequest struct {
	Message string `json:"message"`
}

type chatAPICourse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type chatAPIResponse struct {
	Reply   string          `json:"reply"`
	Courses []chatAPICourse `json:"courses"`
}

// ChatAPI answers one assistant message with an optional list of
// recommended courses.
func (h *Handler) ChatAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if h.assistant == nil {
		http.Error(w, `{"error":"assistant not configured"}`, http.StatusServiceUnavailable)
		return
	}

	var req chatAPIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		http.Error(w, `{"error":"bad request"}`, http.StatusBadRequest)
		return
	}

	lang := middleware.GetLang(r)
	summaries, err := h.courseSummaries(r)
	if err != nil {
		h.writeChatError(w, err)
		return
	}

	reply, err := h.assistant.Chat(r.Context(), translate.ChatRequest{
		Message: req.Message,
		Lang:    lang,
		Courses: summaries,
	})
	if err != nil {
		h.writeChatError(w, err)
		return
	}

	resp := chatAPIResponse{Reply: reply.Reply, Courses: []chatAPICourse{}}
	for _, id := range reply.CourseIDs {
		for _, s := range summaries {
			if s.ID == id {
				resp.Courses = append(resp.Courses, chatAPICourse{ID: s.ID, Title: s.Title})
				break
			}
		}
	}

	_ = json.NewEncoder(w).Encode(resp)
}

// courseSummaries snapshots the published catalog for the assistant
// prompt, joining each course to its teacher's subject.
func (h *Handler) courseSummaries(r *http.Request) ([]translate.CourseSummary, error) {
	lang := middleware.GetLang(r)
	ctx := r.Context()

	courses, err := h.catalog.Courses(ctx, lang)
	if err != nil {
		return nil, err
	}
	teachers, err := h.catalog.Teachers(ctx, lang)
	if err != nil {
		return nil, err
	}

	subjects := make(map[string]string, len(teachers))
	for _, te := range teachers {
		subjects[te.ID] = te.Subject
	}

	summaries := make([]translate.CourseSummary, 0, len(courses))
	for _, c := range courses {
		summaries = append(summaries, translate.CourseSummary{
			ID:          c.ID,
			Title:       c.Title,
			TeacherName: c.TeacherName,
			Subject:     subjects[c.TeacherID],
			Stage:       c.Stage,
			PriceJOD:    strconv.FormatFloat(c.PriceJOD, 'f', 2, 64),
		})
	}
	return summaries, nil
}

func (h *Handler) writeChatError(w http.ResponseWriter, err error) {
	slog.Error("chat request failed", "category", "chat", "error", err)
	http.Error(w, `{"error":"assistant unavailable"}`, http.StatusBadGateway)
}
