// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

// Package analytics records lightweight page-view rows (page, browser,
// country, language) for the admin dashboard.
package analytics

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mileusna/useragent"

	"github.com/jotutor/jotutor/internal/geoip"
	"github.com/jotutor/jotutor/internal/middleware"
	"github.com/jotutor/jotutor/internal/nav"
	"github.com/jotutor/jotutor/internal/store"
)

const recordTimeout = 5 * time.Second

// Tracker writes visit rows. Recording happens off the request path.
type Tracker struct {
	queries *store.Queries
	geo     *geoip.Lookup
}

// NewTracker wires the tracker. geo may be nil.
func NewTracker(db *sql.DB, geo *geoip.Lookup) *Tracker {
	return &Tracker{queries: store.New(db), geo: geo}
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.status = http.StatusOK
		w.wroteHeader = true
	}
	return w.ResponseWriter.Write(b)
}

// visitSample holds the request fields the recorder needs. They are
// copied out before the goroutine starts; the *http.Request itself must
// not outlive the handler.
type visitSample struct {
	path      string
	userAgent string
	clientIP  string
	lang      string
}

// Middleware records successful GET page views without blocking the
// response.
func (t *Tracker) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !shouldTrack(r) {
				next.ServeHTTP(w, r)
				return
			}

			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			if sw.status == http.StatusOK {
				sample := visitSample{
					path:      r.URL.Path,
					userAgent: r.UserAgent(),
					clientIP:  middleware.ClientIP(r),
					lang:      string(middleware.GetLang(r)),
				}
				go t.record(sample)
			}
		})
	}
}

func (t *Tracker) record(v visitSample) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	ua := useragent.Parse(v.userAgent)
	browser := ua.Name
	if browser == "" {
		browser = "Unknown"
	}
	osName := ua.OS
	if osName == "" {
		osName = "Unknown"
	}

	country := ""
	if t.geo != nil {
		country = t.geo.Country(v.clientIP)
	}

	err := t.queries.CreateVisit(ctx, store.CreateVisitParams{
		Path:      v.path,
		Page:      string(PageForPath(v.path)),
		Lang:      v.lang,
		Browser:   browser,
		OS:        osName,
		Country:   country,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		slog.Error("record visit", "error", err, "path", v.path)
	}
}

// shouldTrack skips non-GET requests, bots, and non-page paths.
func shouldTrack(r *http.Request) bool {
	if r.Method != http.MethodGet {
		return false
	}
	if useragent.Parse(r.UserAgent()).Bot {
		return false
	}
	path := r.URL.Path
	for _, prefix := range []string{
		"/static/", "/uploads/", "/admin", "/api/",
		"/favicon.", "/robots.txt", "/sitemap", "/.well-known/",
	} {
		if strings.HasPrefix(path, prefix) {
			return false
		}
	}
	return true
}

// PageForPath classifies a URL path as one of the site pages. Unknown
// paths count as home so the dashboard never shows phantom pages.
func PageForPath(path string) nav.Page {
	path = strings.TrimSuffix(path, "/")
	switch {
	case path == "" || path == "/":
		return nav.PageHome
	case path == "/teachers":
		return nav.PageTeachers
	case strings.HasPrefix(path, "/teachers/"):
		return nav.PageTeacherProfile
	case path == "/courses":
		return nav.PageCourses
	case strings.HasPrefix(path, "/courses/"):
		return nav.PageCourseProfile
	case strings.HasPrefix(path, "/checkout"):
		return nav.PagePayment
	case path == "/videos":
		return nav.PageVideos
	case strings.HasPrefix(path, "/videos/"):
		return nav.PageShortPlayer
	case path == "/blog":
		return nav.PageBlog
	case strings.HasPrefix(path, "/blog/"):
		return nav.PageArticle
	case path == "/about":
		return nav.PageAbout
	case path == "/contact":
		return nav.PageContact
	case path == "/faq":
		return nav.PageFAQ
	case path == "/privacy":
		return nav.PagePrivacy
	case path == "/terms":
		return nav.PageTerms
	case path == "/payment-refund":
		return nav.PagePaymentRefund
	case path == "/dashboard":
		return nav.PageDashboard
	default:
		return nav.PageHome
	}
}

// Summary is the dashboard rollup for one time window.
type Summary struct {
	Total     int64
	ByPage    []store.VisitCount
	ByCountry []store.VisitCount
	ByLang    []store.VisitCount
}

// Summarize aggregates visits since the given time.
func (t *Tracker) Summarize(ctx context.Context, since time.Time) (*Summary, error) {
	total, err := t.queries.CountVisits(ctx, since)
	if err != nil {
		return nil, err
	}
	byPage, err := t.queries.CountVisitsByPage(ctx, since)
	if err != nil {
		return nil, err
	}
	byCountry, err := t.queries.CountVisitsByCountry(ctx, since)
	if err != nil {
		return nil, err
	}
	byLang, err := t.queries.CountVisitsByLang(ctx, since)
	if err != nil {
		return nil, err
	}
	return &Summary{Total: total, ByPage: byPage, ByCountry: byCountry, ByLang: byLang}, nil
}

// Prune deletes raw visit rows older than the retention window.
func (t *Tracker) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	return t.queries.DeleteVisitsBefore(ctx, time.Now().UTC().Add(-retention))
}
