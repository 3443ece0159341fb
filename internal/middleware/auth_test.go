// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jotutor/jotutor/internal/model"
)

func requestWithUser(role string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/admin", nil)
	user := model.User{ID: 1, Email: "u@jotutor.local", Role: role}
	return r.WithContext(context.WithValue(r.Context(), ContextKeyUser, user))
}

func TestGetUserFromContext(t *testing.T) {
	r := requestWithUser(model.RoleEditor)

	user := GetUser(r)
	if user == nil {
		t.Fatal("GetUser returned nil for a populated context")
	}
	if user.Role != model.RoleEditor {
		t.Errorf("Role = %q, want editor", user.Role)
	}
	if GetUserID(r) != 1 {
		t.Errorf("GetUserID = %d, want 1", GetUserID(r))
	}
}

func TestGetUserWithoutContext(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if GetUser(r) != nil {
		t.Error("GetUser should return nil for anonymous request")
	}
	if GetUserID(r) != 0 {
		t.Error("GetUserID should return 0 for anonymous request")
	}
}
