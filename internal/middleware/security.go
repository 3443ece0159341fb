// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// SecurityHeadersConfig holds configuration for security headers.
type SecurityHeadersConfig struct {
	// IsDevelopment disables HSTS and loosens the CSP.
	IsDevelopment bool

	// ContentSecurityPolicy is the CSP header value. Empty uses the
	// default policy.
	ContentSecurityPolicy string

	// HSTSMaxAge is the Strict-Transport-Security max-age in seconds.
	// 0 disables HSTS.
	HSTSMaxAge int

	// HSTSIncludeSubDomains includes subdomains in the HSTS policy.
	HSTSIncludeSubDomains bool

	// FrameOptions is the X-Frame-Options value, empty to disable.
	FrameOptions string

	// ReferrerPolicy is the Referrer-Policy value.
	ReferrerPolicy string

	// PermissionsPolicy is the Permissions-Policy value.
	PermissionsPolicy string
}

// DefaultSecurityHeadersConfig returns defaults for the site. The CSP
// allows self-hosted assets plus the payment gateway's hosted form and
// embedded course videos.
func DefaultSecurityHeadersConfig(isDev bool) SecurityHeadersConfig {
	cfg := SecurityHeadersConfig{
		IsDevelopment:  isDev,
		HSTSMaxAge:     31536000,
		FrameOptions:   "SAMEORIGIN",
		ReferrerPolicy: "strict-origin-when-cross-origin",
	}

	directives := map[string]string{
		"default-src": "'self'",
		"script-src":  "'self' 'unsafe-inline'",
		"style-src":   "'self' 'unsafe-inline'",
		"img-src":     "'self' data: blob: https:",
		"font-src":    "'self' data:",
		"connect-src": "'self'",
		"frame-src":   "'self' https://www.youtube-nocookie.com https://player.vimeo.com",
		"object-src":  "'none'",
		"base-uri":    "'self'",
		"form-action": "'self'",
	}
	if isDev {
		directives["script-src"] = "'self' 'unsafe-inline' 'unsafe-eval'"
	} else {
		cfg.HSTSIncludeSubDomains = true
	}
	cfg.ContentSecurityPolicy = buildCSP(directives)

	cfg.PermissionsPolicy = strings.Join([]string{
		"accelerometer=()",
		"camera=()",
		"geolocation=()",
		"microphone=()",
		"usb=()",
		"interest-cohort=()",
	}, ", ")

	return cfg
}

func buildCSP(directives map[string]string) string {
	order := []string{
		"default-src", "script-src", "style-src", "img-src", "font-src",
		"connect-src", "frame-src", "object-src", "base-uri", "form-action",
	}

	parts := make([]string, 0, len(directives))
	for _, key := range order {
		if value, ok := directives[key]; ok {
			parts = append(parts, key+" "+value)
		}
	}
	return strings.Join(parts, "; ")
}

// SecurityHeaders returns middleware that adds security headers.
func SecurityHeaders(cfg SecurityHeadersConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.ContentSecurityPolicy != "" {
				w.Header().Set("Content-Security-Policy", cfg.ContentSecurityPolicy)
			}

			if !cfg.IsDevelopment && cfg.HSTSMaxAge > 0 {
				hsts := "max-age=" + strconv.Itoa(cfg.HSTSMaxAge)
				if cfg.HSTSIncludeSubDomains {
					hsts += "; includeSubDomains"
				}
				w.Header().Set("Strict-Transport-Security", hsts)
			}

			if cfg.FrameOptions != "" {
				w.Header().Set("X-Frame-Options", cfg.FrameOptions)
			}
			w.Header().Set("X-Content-Type-Options", "nosniff")
			if cfg.ReferrerPolicy != "" {
				w.Header().Set("Referrer-Policy", cfg.ReferrerPolicy)
			}
			if cfg.PermissionsPolicy != "" {
				w.Header().Set("Permissions-Policy", cfg.PermissionsPolicy)
			}

			next.ServeHTTP(w, r)
		})
	}
}
