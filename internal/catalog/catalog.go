// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

// Package catalog projects the stored bilingual catalog into
// single-language views. Projections are pure functions over the stored
// records; the service memoizes them keyed by collection version and
// language, so an admin write (which bumps the version) naturally
// produces fresh keys and the stale ones age out.
package catalog

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"

	"github.com/jotutor/jotutor/internal/cache"
	"github.com/jotutor/jotutor/internal/locale"
	"github.com/jotutor/jotutor/internal/model"
	"github.com/jotutor/jotutor/internal/store"
)

// htmlSanitizer strips unsafe HTML from rendered post bodies.
var htmlSanitizer = bluemonday.UGCPolicy()

// projectionTTL bounds cache entries. Version-keyed entries never serve
// stale data, so the TTL only caps memory.
const projectionTTL = time.Hour

// TeacherView is a teacher resolved to one language.
type TeacherView struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Subject         string `json:"subject"`
	Bio             string `json:"bio"`
	PhotoURL        string `json:"photo_url"`
	YearsExperience int    `json:"years_experience"`
}

// CourseView is a course resolved to one language.
type CourseView struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Stage       string  `json:"stage"`
	TeacherID   string  `json:"teacher_id"`
	TeacherName string  `json:"teacher_name"`
	PriceJOD    float64 `json:"price_jod"`
	VideoURL    string  `json:"video_url"`
}

// TestimonialView is a testimonial resolved to one language.
type TestimonialView struct {
	ID     string `json:"id"`
	Author string `json:"author"`
	Quote  string `json:"quote"`
	Rating int    `json:"rating"`
}

// PostView is a blog post resolved to one language, body rendered from
// markdown and sanitized.
type PostView struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Excerpt  string        `json:"excerpt"`
	BodyHTML template.HTML `json:"body_html"`
	CoverURL string        `json:"cover_url"`
}

// ProjectTeachers resolves teachers to one language. Records whose name
// is blank in the resolved language are dropped rather than shown
// half-empty; a record hidden in English can still be visible in Arabic.
func ProjectTeachers(teachers []model.Teacher, lang locale.Lang) []TeacherView {
	views := make([]TeacherView, 0, len(teachers))
	for _, t := range teachers {
		if !t.Published || !t.Name.Visible(lang) {
			continue
		}
		views = append(views, TeacherView{
			ID:              t.ID,
			Name:            t.Name.Resolve(lang),
			Subject:         t.Subject.Resolve(lang),
			Bio:             t.Bio.Resolve(lang),
			PhotoURL:        t.PhotoURL,
			YearsExperience: t.YearsExperience,
		})
	}
	return views
}

// ProjectCourses resolves courses to one language, joining the teacher
// name from the given teacher set.
func ProjectCourses(courses []model.Course, teachers []model.Teacher, lang locale.Lang) []CourseView {
	names := make(map[string]string, len(teachers))
	for _, t := range teachers {
		names[t.ID] = t.Name.Resolve(lang)
	}

	views := make([]CourseView, 0, len(courses))
	for _, c := range courses {
		if !c.Published || !c.Title.Visible(lang) {
			continue
		}
		views = append(views, CourseView{
			ID:          c.ID,
			Title:       c.Title.Resolve(lang),
			Description: c.Description.Resolve(lang),
			Stage:       c.Stage.Resolve(lang),
			TeacherID:   c.TeacherID,
			TeacherName: names[c.TeacherID],
			PriceJOD:    c.PriceJOD,
			VideoURL:    c.VideoURL,
		})
	}
	return views
}

// ProjectTestimonials resolves testimonials to one language.
func ProjectTestimonials(items []model.Testimonial, lang locale.Lang) []TestimonialView {
	views := make([]TestimonialView, 0, len(items))
	for _, t := range items {
		if !t.Published || !t.Author.Visible(lang) {
			continue
		}
		views = append(views, TestimonialView{
			ID:     t.ID,
			Author: t.Author.Resolve(lang),
			Quote:  t.Quote.Resolve(lang),
			Rating: t.Rating,
		})
	}
	return views
}

// ProjectPosts resolves posts to one language and renders their bodies.
func ProjectPosts(posts []model.Post, lang locale.Lang) []PostView {
	views := make([]PostView, 0, len(posts))
	for _, p := range posts {
		if !p.Published || !p.Title.Visible(lang) {
			continue
		}
		views = append(views, PostView{
			ID:       p.ID,
			Title:    p.Title.Resolve(lang),
			Excerpt:  p.Excerpt.Resolve(lang),
			BodyHTML: RenderMarkdown(p.Body.Resolve(lang)),
			CoverURL: p.CoverURL,
		})
	}
	return views
}

// RenderMarkdown converts markdown to sanitized HTML.
func RenderMarkdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(src), &buf); err != nil {
		// Fall back to the sanitized source text.
		return template.HTML(htmlSanitizer.Sanitize(src)) //nolint:gosec // sanitized
	}
	return template.HTML(htmlSanitizer.Sanitize(buf.String())) //nolint:gosec // sanitized
}

// Service serves memoized single-language projections of the catalog.
type Service struct {
	db      *sql.DB
	queries *store.Queries
	backend cache.Cacher

	teachers     *cache.TypedCache[[]TeacherView]
	courses      *cache.TypedCache[[]CourseView]
	testimonials *cache.TypedCache[[]TestimonialView]
	posts        *cache.TypedCache[[]PostView]
	options      *cache.TypedCache[model.ResolvedOptions]
	sitecopy     *cache.TypedCache[model.SiteContent]

	translator Translator
}

// NewService creates the projection service over a cache backend. The
// translator may be nil, in which case English site copy falls back to
// Arabic.
func NewService(db *sql.DB, backend cache.Cacher, translator Translator) *Service {
	return &Service{
		db:           db,
		queries:      store.New(db),
		backend:      backend,
		teachers:     cache.NewTypedCache[[]TeacherView](backend, projectionTTL),
		courses:      cache.NewTypedCache[[]CourseView](backend, projectionTTL),
		testimonials: cache.NewTypedCache[[]TestimonialView](backend, projectionTTL),
		posts:        cache.NewTypedCache[[]PostView](backend, projectionTTL),
		options:      cache.NewTypedCache[model.ResolvedOptions](backend, projectionTTL),
		sitecopy:     cache.NewTypedCache[model.SiteContent](backend, projectionTTL),
		translator:   translator,
	}
}

func (s *Service) projectionKey(ctx context.Context, collection string, lang locale.Lang) (string, error) {
	version, err := s.queries.GetCollectionVersion(ctx, collection)
	if err != nil {
		return "", fmt.Errorf("collection version for %s: %w", collection, err)
	}
	return fmt.Sprintf("%s:v%d:%s", collection, version, lang), nil
}

// Teachers returns the teacher list for one language.
func (s *Service) Teachers(ctx context.Context, lang locale.Lang) ([]TeacherView, error) {
	key, err := s.projectionKey(ctx, store.CollectionTeachers, lang)
	if err != nil {
		return nil, err
	}
	views, err := s.teachers.GetOrSet(ctx, key, func() (*[]TeacherView, error) {
		teachers, err := s.queries.ListPublishedTeachers(ctx)
		if err != nil {
			return nil, err
		}
		v := ProjectTeachers(teachers, lang)
		return &v, nil
	})
	if err != nil {
		return nil, err
	}
	return *views, nil
}

// Teacher returns one teacher profile, reporting found=false when the
// record is absent, unpublished or hidden in the requested language.
func (s *Service) Teacher(ctx context.Context, id string, lang locale.Lang) (TeacherView, bool, error) {
	t, err := s.queries.GetTeacherByID(ctx, id)
	if err == sql.ErrNoRows {
		return TeacherView{}, false, nil
	}
	if err != nil {
		return TeacherView{}, false, err
	}
	views := ProjectTeachers([]model.Teacher{t}, lang)
	if len(views) == 0 {
		return TeacherView{}, false, nil
	}
	return views[0], true, nil
}

// Courses returns the course list for one language.
func (s *Service) Courses(ctx context.Context, lang locale.Lang) ([]CourseView, error) {
	key, err := s.projectionKey(ctx, store.CollectionCourses, lang)
	if err != nil {
		return nil, err
	}
	views, err := s.courses.GetOrSet(ctx, key, func() (*[]CourseView, error) {
		courses, err := s.queries.ListPublishedCourses(ctx)
		if err != nil {
			return nil, err
		}
		teachers, err := s.queries.ListPublishedTeachers(ctx)
		if err != nil {
			return nil, err
		}
		v := ProjectCourses(courses, teachers, lang)
		return &v, nil
	})
	if err != nil {
		return nil, err
	}
	return *views, nil
}

// Course returns one course, reporting found=false when the record is
// absent, unpublished or hidden in the requested language.
func (s *Service) Course(ctx context.Context, id string, lang locale.Lang) (CourseView, bool, error) {
	c, err := s.queries.GetCourseByID(ctx, id)
	if err == sql.ErrNoRows {
		return CourseView{}, false, nil
	}
	if err != nil {
		return CourseView{}, false, err
	}
	teachers, err := s.queries.ListPublishedTeachers(ctx)
	if err != nil {
		return CourseView{}, false, err
	}
	views := ProjectCourses([]model.Course{c}, teachers, lang)
	if len(views) == 0 {
		return CourseView{}, false, nil
	}
	return views[0], true, nil
}

// CoursesByTeacher returns the published courses of one teacher.
func (s *Service) CoursesByTeacher(ctx context.Context, teacherID string, lang locale.Lang) ([]CourseView, error) {
	courses, err := s.queries.ListCoursesByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	teachers, err := s.queries.ListPublishedTeachers(ctx)
	if err != nil {
		return nil, err
	}
	return ProjectCourses(courses, teachers, lang), nil
}

// Testimonials returns the testimonial list for one language.
func (s *Service) Testimonials(ctx context.Context, lang locale.Lang) ([]TestimonialView, error) {
	key, err := s.projectionKey(ctx, store.CollectionTestimonials, lang)
	if err != nil {
		return nil, err
	}
	views, err := s.testimonials.GetOrSet(ctx, key, func() (*[]TestimonialView, error) {
		items, err := s.queries.ListPublishedTestimonials(ctx)
		if err != nil {
			return nil, err
		}
		v := ProjectTestimonials(items, lang)
		return &v, nil
	})
	if err != nil {
		return nil, err
	}
	return *views, nil
}

// Posts returns the blog list for one language.
func (s *Service) Posts(ctx context.Context, lang locale.Lang) ([]PostView, error) {
	key, err := s.projectionKey(ctx, store.CollectionPosts, lang)
	if err != nil {
		return nil, err
	}
	views, err := s.posts.GetOrSet(ctx, key, func() (*[]PostView, error) {
		posts, err := s.queries.ListPublishedPosts(ctx)
		if err != nil {
			return nil, err
		}
		v := ProjectPosts(posts, lang)
		return &v, nil
	})
	if err != nil {
		return nil, err
	}
	return *views, nil
}

// Post returns one article, reporting found=false when the record is
// absent, unpublished or hidden in the requested language.
func (s *Service) Post(ctx context.Context, id string, lang locale.Lang) (PostView, bool, error) {
	p, err := s.queries.GetPostByID(ctx, id)
	if err == sql.ErrNoRows {
		return PostView{}, false, nil
	}
	if err != nil {
		return PostView{}, false, err
	}
	views := ProjectPosts([]model.Post{p}, lang)
	if len(views) == 0 {
		return PostView{}, false, nil
	}
	return views[0], true, nil
}

// Options returns the onboarding option lists for one language. Lists
// are swapped wholesale, so an item count mismatch between languages is
// acceptable.
func (s *Service) Options(ctx context.Context, lang locale.Lang) (model.ResolvedOptions, error) {
	key, err := s.projectionKey(ctx, store.CollectionOptions, lang)
	if err != nil {
		return model.ResolvedOptions{}, err
	}
	resolved, err := s.options.GetOrSet(ctx, key, func() (*model.ResolvedOptions, error) {
		opts, err := s.queries.GetOnboardingOptions(ctx)
		if err != nil {
			return nil, err
		}
		r := opts.Resolve(lang)
		return &r, nil
	})
	if err != nil {
		return model.ResolvedOptions{}, err
	}
	return *resolved, nil
}

// Invalidate drops every cached projection of one collection. Version
// keys already prevent stale reads; this just frees the dead entries
// right after an admin write.
func (s *Service) Invalidate(ctx context.Context, collection string) {
	if err := s.backend.DeleteByPrefix(ctx, collection+":"); err != nil {
		slog.Warn("cache invalidation failed", "collection", collection, "error", err)
	}
}
