// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jotutor/jotutor/internal/auth"
	"github.com/jotutor/jotutor/internal/middleware"
	"github.com/jotutor/jotutor/internal/nav"
)

// LoginForm renders the console login page.
func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if middleware.GetUser(r) != nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	h.render(w, r, "site/login", h.pageData(r, t(r, "nav.login"), nil))
}

// Login checks the credentials and opens a session. Failed attempts
// feed the per-account lockout; the response for a wrong password and
// an unknown email is identical.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	email := strings.ToLower(strings.TrimSpace(r.PostFormValue("email")))
	password := r.PostFormValue("password")
	ip := middleware.ClientIP(r)

	if h.loginProt != nil {
		if !h.loginProt.CheckIPRateLimit(ip) {
			h.failLogin(w, r, "auth.locked")
			return
		}
		if locked, _ := h.loginProt.IsAccountLocked(email); locked {
			h.failLogin(w, r, "auth.locked")
			return
		}
	}

	user, err := h.queries.GetUserByEmail(r.Context(), email)
	if err != nil {
		h.recordFailure(w, r, email)
		return
	}

	valid, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil || !valid {
		slog.Warn("login failed", "category", "auth", "email", email, "ip", ip)
		h.recordFailure(w, r, email)
		return
	}

	if h.loginProt != nil {
		h.loginProt.RecordSuccessfulLogin(email)
	}

	if err := h.queries.TouchUserLogin(r.Context(), user.ID, time.Now().UTC()); err != nil {
		slog.Error("record last login", "category", "auth", "error", err, "user_id", user.ID)
	}

	// New session id so the login cannot be fixated.
	if err := h.sessions.RenewToken(r.Context()); err != nil {
		h.renderServerError(w, r, err)
		return
	}
	h.sessions.Put(r.Context(), middleware.SessionKeyUserID, user.ID)

	slog.Info("user logged in", "category", "auth", "user_id", user.ID, "email", user.Email)

	if (nav.Viewer{LoggedIn: true, Role: user.Role}).IsAdmin() {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *Handler) recordFailure(w http.ResponseWriter, r *http.Request, email string) {
	if h.loginProt != nil {
		if locked, _ := h.loginProt.RecordFailedAttempt(email); locked {
			h.failLogin(w, r, "auth.locked")
			return
		}
	}
	h.failLogin(w, r, "auth.invalid_credentials")
}

func (h *Handler) failLogin(w http.ResponseWriter, r *http.Request, key string) {
	h.renderer.SetFlash(r, t(r, key), "error")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// Logout destroys the session, navigation state included.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := h.sessions.GetInt64(r.Context(), middleware.SessionKeyUserID)
	if err := h.sessions.Destroy(r.Context()); err != nil {
		slog.Error("destroy session", "category", "auth", "error", err)
	}
	if userID > 0 {
		slog.Info("user logged out", "category", "auth", "user_id", userID)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
