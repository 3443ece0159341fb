// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jotutor/jotutor/internal/auth"
	"github.com/jotutor/jotutor/internal/middleware"
	"github.com/jotutor/jotutor/internal/model"
	"github.com/jotutor/jotutor/internal/store"
)

// AdminUsers lists the console users. The route is restricted to the
// admin role.
func (h *Handler) AdminUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.queries.ListUsers(r.Context())
	if err != nil {
		h.renderServerError(w, r, err)
		return
	}
	h.render(w, r, "admin/users", h.adminData(r, t(r, "admin.users"), struct {
		Users []model.User
	}{users}))
}

// AdminUserForm renders the create or edit form.
func (h *Handler) AdminUserForm(w http.ResponseWriter, r *http.Request) {
	var target model.User
	if raw := chi.URLParam(r, "id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.renderNotFound(w, r)
			return
		}
		target, err = h.queries.GetUserByID(r.Context(), id)
		if err != nil {
			h.renderNotFound(w, r)
			return
		}
	}

	h.render(w, r, "admin/user_form", h.adminData(r, t(r, "admin.users"), struct {
		Target model.User
	}{target}))
}

// AdminSaveUser creates or updates a console user. The password is
// replaced only when a new one is submitted.
func (h *Handler) AdminSaveUser(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(r.PostFormValue("name"))
	email := strings.ToLower(strings.TrimSpace(r.PostFormValue("email")))
	password := r.PostFormValue("password")
	role := r.PostFormValue("role")
	switch role {
	case model.RoleAdmin, model.RoleEditor, model.RoleEnglishAdmin:
	default:
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	now := time.Now().UTC()

	if raw := chi.URLParam(r, "id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.renderNotFound(w, r)
			return
		}
		existing, err := h.queries.GetUserByID(r.Context(), id)
		if err != nil {
			h.renderNotFound(w, r)
			return
		}

		hash := existing.PasswordHash
		if password != "" {
			if hash, err = auth.HashPassword(password); err != nil {
				h.renderServerError(w, r, err)
				return
			}
		}

		err = h.queries.UpdateUser(r.Context(), store.UpdateUserParams{
			ID:           id,
			Email:        email,
			PasswordHash: hash,
			Role:         role,
			Name:         name,
			UpdatedAt:    now,
		})
		if err != nil {
			h.renderServerError(w, r, err)
			return
		}
		h.savedAndBack(w, r, "/admin/users")
		return
	}

	if password == "" {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		h.renderServerError(w, r, err)
		return
	}

	_, err = h.queries.CreateUser(r.Context(), store.CreateUserParams{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Name:         name,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		h.renderServerError(w, r, err)
		return
	}
	h.savedAndBack(w, r, "/admin/users")
}

// AdminDeleteUser removes a console user. Self-deletion is refused so
// the console cannot lock itself out.
func (h *Handler) AdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.renderNotFound(w, r)
		return
	}
	if current := middleware.GetUser(r); current != nil && current.ID == id {
		h.renderDenied(w, r)
		return
	}
	if err := h.queries.DeleteUser(r.Context(), id); err != nil {
		h.renderServerError(w, r, err)
		return
	}
	h.savedAndBack(w, r, "/admin/users")
}
