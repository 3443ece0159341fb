// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jotutor/jotutor/internal/analytics"
	"github.com/jotutor/jotutor/internal/model"
	"github.com/jotutor/jotutor/internal/nav"
)

const eventsPerPage = 50

// RequireConsole gates the admin routes. The console navigates like any
// other page: the visit is recorded first and a viewer without console
// access gets the access-denied placeholder, never a redirect, so /back
// still walks out of a denied console attempt.
func (h *Handler) RequireConsole(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.visit(r, nav.PageAdminDashboard, "") {
			h.renderDenied(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole blocks a route for users below the given role.
func (h *Handler) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if v := h.viewer(r); !v.LoggedIn || v.Role != role {
				h.renderDenied(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AdminDashboard shows the content and payment counters. The console
// gate in RequireConsole has already recorded the visit.
func (h *Handler) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	teachers, err := h.queries.ListTeachers(ctx)
	if err != nil {
		h.renderServerError(w, r, err)
		return
	}
	courses, err := h.queries.ListCourses(ctx)
	if err != nil {
		h.renderServerError(w, r, err)
		return
	}
	posts, err := h.queries.ListPosts(ctx)
	if err != nil {
		h.renderServerError(w, r, err)
		return
	}
	paymentCounts, err := h.queries.CountPaymentsByStatus(ctx)
	if err != nil {
		h.renderServerError(w, r, err)
		return
	}

	var visitsToday int64
	if h.tracker != nil {
		today := time.Now().UTC().Truncate(24 * time.Hour)
		if s, err := h.tracker.Summarize(ctx, today); err == nil && s != nil {
			visitsToday = s.Total
		}
	}

	data := struct {
		TeacherCount  int
		CourseCount   int
		PostCount     int
		VisitsToday   int64
		PaymentCounts map[string]int64
	}{len(teachers), len(courses), len(posts), visitsToday, paymentCounts}

	h.render(w, r, "admin/dashboard", h.adminData(r, t(r, "admin.dashboard"), data))
}

// AdminPayments lists payment attempts, newest first.
func (h *Handler) AdminPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.queries.ListPayments(r.Context(), 200, 0)
	if err != nil {
		h.renderServerError(w, r, err)
		return
	}

	h.render(w, r, "admin/payments", h.adminData(r, t(r, "admin.payments"), struct {
		Payments []model.Payment
	}{payments}))
}

// AdminConfirmPayment settles an initiated bank transfer as successful
// once the money arrived. Already-settled payments are left alone.
func (h *Handler) AdminConfirmPayment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "paymentID")
	if err := h.payments.Finalize(r.Context(), id, model.PaymentStatusSuccess, ""); err != nil {
		h.renderer.SetFlash(r, t(r, "payment.error"), "error")
	} else {
		h.renderer.SetFlash(r, t(r, "admin.saved"), "success")
	}
	http.Redirect(w, r, "/admin/payments", http.StatusSeeOther)
}

// AdminEvents shows the persisted warning and error log.
func (h *Handler) AdminEvents(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	total, err := h.queries.CountEvents(r.Context())
	if err != nil {
		h.renderServerError(w, r, err)
		return
	}
	events, err := h.queries.ListEvents(r.Context(), eventsPerPage, int64(page-1)*eventsPerPage)
	if err != nil {
		h.renderServerError(w, r, err)
		return
	}

	pages := int((total + eventsPerPage - 1) / eventsPerPage)
	data := struct {
		Events []model.Event
		Page   int
		Pages  int
	}{events, page, pages}

	h.render(w, r, "admin/events", h.adminData(r, t(r, "admin.events"), data))
}

// AdminAnalytics shows the visit summary for the last N days.
func (h *Handler) AdminAnalytics(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	if days < 1 || days > 365 {
		days = 30
	}

	var summary analytics.Summary
	if h.tracker != nil {
		s, err := h.tracker.Summarize(r.Context(), time.Now().UTC().AddDate(0, 0, -days))
		if err != nil {
			h.renderServerError(w, r, err)
			return
		}
		summary = *s
	}

	data := struct {
		Days    int
		Summary analytics.Summary
	}{days, summary}

	h.render(w, r, "admin/analytics", h.adminData(r, t(r, "admin.analytics"), data))
}
