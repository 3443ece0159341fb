// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler implements the HTTP surface: the public site, the
// checkout flow, the chat assistant API, and the admin console.
package handler

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/jotutor/jotutor/internal/analytics"
	"github.com/jotutor/jotutor/internal/catalog"
	"github.com/jotutor/jotutor/internal/i18n"
	"github.com/jotutor/jotutor/internal/media"
	"github.com/jotutor/jotutor/internal/middleware"
	"github.com/jotutor/jotutor/internal/model"
	"github.com/jotutor/jotutor/internal/nav"
	"github.com/jotutor/jotutor/internal/payment"
	"github.com/jotutor/jotutor/internal/render"
	"github.com/jotutor/jotutor/internal/store"
	"github.com/jotutor/jotutor/internal/translate"
)

// Handler carries the service dependencies for all routes.
type Handler struct {
	db         *sql.DB
	queries    *store.Queries
	renderer   *render.Renderer
	sessions   *scs.SessionManager
	catalog    *catalog.Service
	payments   *payment.Service
	assistant  *translate.Client
	media      *media.Store
	tracker    *analytics.Tracker
	loginProt  *middleware.LoginProtection
	bank       payment.BankAccount
}

// Config bundles the handler dependencies.
type Config struct {
	DB              *sql.DB
	Renderer        *render.Renderer
	Sessions        *scs.SessionManager
	Catalog         *catalog.Service
	Payments        *payment.Service
	Assistant       *translate.Client
	Media           *media.Store
	Tracker         *analytics.Tracker
	LoginProtection *middleware.LoginProtection
	BankAccount     payment.BankAccount
}

// New builds the handler set.
func New(cfg Config) *Handler {
	return &Handler{
		db:        cfg.DB,
		queries:   store.New(cfg.DB),
		renderer:  cfg.Renderer,
		sessions:  cfg.Sessions,
		catalog:   cfg.Catalog,
		payments:  cfg.Payments,
		assistant: cfg.Assistant,
		media:     cfg.Media,
		tracker:   cfg.Tracker,
		loginProt: cfg.LoginProtection,
		bank:      cfg.BankAccount,
	}
}

// navState loads the per-session navigation state, creating the
// initial (home, "") state on first use.
func (h *Handler) navState(r *http.Request) *nav.State {
	data := h.sessions.GetBytes(r.Context(), middleware.SessionKeyNavState)
	return nav.Decode(data)
}

func (h *Handler) saveNavState(r *http.Request, s *nav.State) {
	data, err := s.Encode()
	if err != nil {
		slog.Error("encode nav state", "error", err)
		return
	}
	h.sessions.Put(r.Context(), middleware.SessionKeyNavState, data)
}

// viewer builds the gate input from the session user.
func (h *Handler) viewer(r *http.Request) nav.Viewer {
	user := middleware.GetUser(r)
	if user == nil {
		return nav.Viewer{}
	}
	return nav.Viewer{LoggedIn: true, Role: user.Role}
}

// visit switches the session navigation state to the target page and
// reports whether the viewer may see its content. Navigation is always
// recorded; denial only swaps what gets rendered.
func (h *Handler) visit(r *http.Request, page nav.Page, selectedID string) bool {
	state := h.navState(r)
	state.Navigate(page, selectedID)
	h.saveNavState(r, state)
	return h.viewer(r).Allowed(page)
}

// pageData assembles the common template payload for a site page.
func (h *Handler) pageData(r *http.Request, title string, data any) render.TemplateData {
	lang := middleware.GetLang(r)

	copyDoc, copyLang, err := h.catalog.SiteCopy(r.Context(), lang)
	if err != nil {
		slog.Error("load site copy", "category", "content", "error", err)
	}

	return render.TemplateData{
		Title:     title,
		Lang:      lang,
		User:      middleware.GetUser(r),
		Nav:       h.navState(r),
		Copy:      copyDoc,
		CopyLang:  copyLang,
		Data:      data,
		CSRFToken: h.sessions.Token(r.Context()),
	}
}

// adminData assembles the template payload for a console page. The
// console does not touch the public navigation state.
func (h *Handler) adminData(r *http.Request, title string, data any) render.TemplateData {
	return render.TemplateData{
		Title:     title,
		Lang:      middleware.GetLang(r),
		User:      middleware.GetUser(r),
		Data:      data,
		CSRFToken: h.sessions.Token(r.Context()),
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, data render.TemplateData) {
	if err := h.renderer.Render(w, r, name, data); err != nil {
		slog.Error("render template", "template", name, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// renderDenied renders the access-denied placeholder in place of the
// page content.
func (h *Handler) renderDenied(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusForbidden)
	h.render(w, r, "site/denied", h.pageData(r, "", nil))
}

func (h *Handler) renderNotFound(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotFound)
	h.render(w, r, "site/error", h.pageData(r, "", struct{ Status int }{http.StatusNotFound}))
}

func (h *Handler) renderServerError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("request failed", "path", r.URL.Path, "error", err)
	w.WriteHeader(http.StatusInternalServerError)
	h.render(w, r, "site/error", h.pageData(r, "", struct{ Status int }{http.StatusInternalServerError}))
}

// englishOnly reports whether the current user is restricted to the
// English shadow fields.
func englishOnly(r *http.Request) bool {
	user := middleware.GetUser(r)
	return user != nil && user.Role == model.RoleEnglishAdmin
}

// t translates a message key in the request language.
func t(r *http.Request, key string, args ...any) string {
	return i18n.T(middleware.GetLang(r), key, args...)
}
