// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/jotutor/jotutor/internal/i18n"
	"github.com/jotutor/jotutor/internal/locale"
)

// Context key for the resolved language.
const ContextKeyLang ContextKey = "lang"

// LanguageCookieName is the cookie name for the language preference.
const LanguageCookieName = "jotutor_lang"

// Language creates middleware that resolves the request language.
// Priority order:
//  1. Query parameter ?lang=XX (explicit switch, persisted to session
//     and cookie)
//  2. Session preference
//  3. Cookie preference
//  4. Accept-Language header
//  5. Arabic
func Language(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang := resolveLang(sm, w, r)
			ctx := context.WithValue(r.Context(), ContextKeyLang, lang)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveLang(sm *scs.SessionManager, w http.ResponseWriter, r *http.Request) locale.Lang {
	if q := r.URL.Query().Get("lang"); q != "" && i18n.IsSupported(q) {
		lang := locale.Parse(q)
		sm.Put(r.Context(), SessionKeyLang, string(lang))
		SetLanguageCookie(w, string(lang))
		return lang
	}

	if s := sm.GetString(r.Context(), SessionKeyLang); s != "" && i18n.IsSupported(s) {
		return locale.Parse(s)
	}

	if cookie, err := r.Cookie(LanguageCookieName); err == nil && i18n.IsSupported(cookie.Value) {
		return locale.Parse(cookie.Value)
	}

	if accept := r.Header.Get("Accept-Language"); accept != "" {
		return locale.Parse(i18n.MatchLanguage(accept))
	}

	return locale.Arabic
}

// GetLang retrieves the resolved language from the request context,
// defaulting to Arabic.
func GetLang(r *http.Request) locale.Lang {
	lang, ok := r.Context().Value(ContextKeyLang).(locale.Lang)
	if !ok {
		return locale.Arabic
	}
	return lang
}

// SetLanguageCookie persists the language preference for a year.
func SetLanguageCookie(w http.ResponseWriter, langCode string) {
	http.SetCookie(w, &http.Cookie{
		Name:     LanguageCookieName,
		Value:    langCode,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
