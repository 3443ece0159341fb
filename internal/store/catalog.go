// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jotutor/jotutor/internal/locale"
	"github.com/jotutor/jotutor/internal/model"
)

// Collection names used for version tracking and cache keys.
const (
	CollectionTeachers     = "teachers"
	CollectionCourses      = "courses"
	CollectionTestimonials = "testimonials"
	CollectionPosts        = "posts"
	CollectionOptions      = "onboarding_options"
	CollectionSiteContent  = "site_content"
)

// -----------------------------------------------------------------------------
// Teachers
// -----------------------------------------------------------------------------

const teacherColumns = `id, name, name_en, subject, subject_en, bio, bio_en,
	photo_url, years_experience, published, position, created_at, updated_at`

func scanTeacher(row interface{ Scan(...any) error }) (model.Teacher, error) {
	var t model.Teacher
	err := row.Scan(&t.ID, &t.Name.Ar, &t.Name.En, &t.Subject.Ar, &t.Subject.En,
		&t.Bio.Ar, &t.Bio.En, &t.PhotoURL, &t.YearsExperience,
		&t.Published, &t.Position, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (q *Queries) listTeachers(ctx context.Context, where string) ([]model.Teacher, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+teacherColumns+` FROM teachers `+where+` ORDER BY position, created_at`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var teachers []model.Teacher
	for rows.Next() {
		t, err := scanTeacher(rows)
		if err != nil {
			return nil, err
		}
		teachers = append(teachers, t)
	}
	return teachers, rows.Err()
}

// ListTeachers returns every teacher, including unpublished ones.
func (q *Queries) ListTeachers(ctx context.Context) ([]model.Teacher, error) {
	return q.listTeachers(ctx, "")
}

// ListPublishedTeachers returns teachers visible on the site.
func (q *Queries) ListPublishedTeachers(ctx context.Context) ([]model.Teacher, error) {
	return q.listTeachers(ctx, "WHERE published = 1")
}

// GetTeacherByID fetches one teacher.
func (q *Queries) GetTeacherByID(ctx context.Context, id string) (model.Teacher, error) {
	return scanTeacher(q.db.QueryRowContext(ctx,
		`SELECT `+teacherColumns+` FROM teachers WHERE id = ?`, id))
}

// UpsertTeacher writes a teacher by id, overwriting any existing row.
func (q *Queries) UpsertTeacher(ctx context.Context, t model.Teacher) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO teachers (id, name, name_en, subject, subject_en, bio, bio_en,
			photo_url, years_experience, published, position, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, name_en = excluded.name_en,
			subject = excluded.subject, subject_en = excluded.subject_en,
			bio = excluded.bio, bio_en = excluded.bio_en,
			photo_url = excluded.photo_url,
			years_experience = excluded.years_experience,
			published = excluded.published, position = excluded.position,
			updated_at = excluded.updated_at`,
		t.ID, t.Name.Ar, t.Name.En, t.Subject.Ar, t.Subject.En, t.Bio.Ar, t.Bio.En,
		t.PhotoURL, t.YearsExperience, t.Published, t.Position, t.CreatedAt, t.UpdatedAt)
	return err
}

// DeleteTeacher removes a teacher by id.
func (q *Queries) DeleteTeacher(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM teachers WHERE id = ?`, id)
	return err
}

// -----------------------------------------------------------------------------
// Courses
// -----------------------------------------------------------------------------

const courseColumns = `id, title, title_en, description, description_en,
	stage, stage_en, teacher_id, price_jod, video_url, published, position,
	created_at, updated_at`

func scanCourse(row interface{ Scan(...any) error }) (model.Course, error) {
	var c model.Course
	err := row.Scan(&c.ID, &c.Title.Ar, &c.Title.En, &c.Description.Ar, &c.Description.En,
		&c.Stage.Ar, &c.Stage.En, &c.TeacherID, &c.PriceJOD, &c.VideoURL,
		&c.Published, &c.Position, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (q *Queries) listCourses(ctx context.Context, where string, args ...any) ([]model.Course, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+courseColumns+` FROM courses `+where+` ORDER BY position, created_at`, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var courses []model.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// ListCourses returns every course, including unpublished ones.
func (q *Queries) ListCourses(ctx context.Context) ([]model.Course, error) {
	return q.listCourses(ctx, "")
}

// ListPublishedCourses returns courses visible on the site.
func (q *Queries) ListPublishedCourses(ctx context.Context) ([]model.Course, error) {
	return q.listCourses(ctx, "WHERE published = 1")
}

// ListCoursesByTeacher returns the published courses taught by one teacher.
func (q *Queries) ListCoursesByTeacher(ctx context.Context, teacherID string) ([]model.Course, error) {
	return q.listCourses(ctx, "WHERE published = 1 AND teacher_id = ?", teacherID)
}

// GetCourseByID fetches one course.
func (q *Queries) GetCourseByID(ctx context.Context, id string) (model.Course, error) {
	return scanCourse(q.db.QueryRowContext(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE id = ?`, id))
}

// UpsertCourse writes a course by id, overwriting any existing row.
func (q *Queries) UpsertCourse(ctx context.Context, c model.Course) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO courses (id, title, title_en, description, description_en,
			stage, stage_en, teacher_id, price_jod, video_url, published, position,
			created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title = excluded.title, title_en = excluded.title_en,
			description = excluded.description, description_en = excluded.description_en,
			stage = excluded.stage, stage_en = excluded.stage_en,
			teacher_id = excluded.teacher_id, price_jod = excluded.price_jod,
			video_url = excluded.video_url,
			published = excluded.published, position = excluded.position,
			updated_at = excluded.updated_at`,
		c.ID, c.Title.Ar, c.Title.En, c.Description.Ar, c.Description.En,
		c.Stage.Ar, c.Stage.En, c.TeacherID, c.PriceJOD, c.VideoURL,
		c.Published, c.Position, c.CreatedAt, c.UpdatedAt)
	return err
}

// DeleteCourse removes a course by id.
func (q *Queries) DeleteCourse(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM courses WHERE id = ?`, id)
	return err
}

// -----------------------------------------------------------------------------
// Testimonials
// -----------------------------------------------------------------------------

const testimonialColumns = `id, author, author_en, quote, quote_en, rating,
	published, position, created_at, updated_at`

func scanTestimonial(row interface{ Scan(...any) error }) (model.Testimonial, error) {
	var t model.Testimonial
	err := row.Scan(&t.ID, &t.Author.Ar, &t.Author.En, &t.Quote.Ar, &t.Quote.En,
		&t.Rating, &t.Published, &t.Position, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (q *Queries) listTestimonials(ctx context.Context, where string) ([]model.Testimonial, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+testimonialColumns+` FROM testimonials `+where+` ORDER BY position, created_at`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []model.Testimonial
	for rows.Next() {
		t, err := scanTestimonial(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

// ListTestimonials returns every testimonial, including unpublished ones.
func (q *Queries) ListTestimonials(ctx context.Context) ([]model.Testimonial, error) {
	return q.listTestimonials(ctx, "")
}

// ListPublishedTestimonials returns testimonials visible on the site.
func (q *Queries) ListPublishedTestimonials(ctx context.Context) ([]model.Testimonial, error) {
	return q.listTestimonials(ctx, "WHERE published = 1")
}

// GetTestimonialByID fetches one testimonial.
func (q *Queries) GetTestimonialByID(ctx context.Context, id string) (model.Testimonial, error) {
	return scanTestimonial(q.db.QueryRowContext(ctx,
		`SELECT `+testimonialColumns+` FROM testimonials WHERE id = ?`, id))
}

// UpsertTestimonial writes a testimonial by id, overwriting any existing row.
func (q *Queries) UpsertTestimonial(ctx context.Context, t model.Testimonial) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO testimonials (id, author, author_en, quote, quote_en, rating,
			published, position, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			author = excluded.author, author_en = excluded.author_en,
			quote = excluded.quote, quote_en = excluded.quote_en,
			rating = excluded.rating,
			published = excluded.published, position = excluded.position,
			updated_at = excluded.updated_at`,
		t.ID, t.Author.Ar, t.Author.En, t.Quote.Ar, t.Quote.En, t.Rating,
		t.Published, t.Position, t.CreatedAt, t.UpdatedAt)
	return err
}

// DeleteTestimonial removes a testimonial by id.
func (q *Queries) DeleteTestimonial(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM testimonials WHERE id = ?`, id)
	return err
}

// -----------------------------------------------------------------------------
// Posts
// -----------------------------------------------------------------------------

const postColumns = `id, title, title_en, excerpt, excerpt_en, body, body_en,
	cover_url, published, position, created_at, updated_at`

func scanPost(row interface{ Scan(...any) error }) (model.Post, error) {
	var p model.Post
	err := row.Scan(&p.ID, &p.Title.Ar, &p.Title.En, &p.Excerpt.Ar, &p.Excerpt.En,
		&p.Body.Ar, &p.Body.En, &p.CoverURL, &p.Published, &p.Position,
		&p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (q *Queries) listPosts(ctx context.Context, where string) ([]model.Post, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+postColumns+` FROM posts `+where+` ORDER BY position, created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var posts []model.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// ListPosts returns every post, including unpublished ones.
func (q *Queries) ListPosts(ctx context.Context) ([]model.Post, error) {
	return q.listPosts(ctx, "")
}

// ListPublishedPosts returns posts visible on the site.
func (q *Queries) ListPublishedPosts(ctx context.Context) ([]model.Post, error) {
	return q.listPosts(ctx, "WHERE published = 1")
}

// GetPostByID fetches one post.
func (q *Queries) GetPostByID(ctx context.Context, id string) (model.Post, error) {
	return scanPost(q.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = ?`, id))
}

// UpsertPost writes a post by id, overwriting any existing row.
func (q *Queries) UpsertPost(ctx context.Context, p model.Post) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO posts (id, title, title_en, excerpt, excerpt_en, body, body_en,
			cover_url, published, position, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title = excluded.title, title_en = excluded.title_en,
			excerpt = excluded.excerpt, excerpt_en = excluded.excerpt_en,
			body = excluded.body, body_en = excluded.body_en,
			cover_url = excluded.cover_url,
			published = excluded.published, position = excluded.position,
			updated_at = excluded.updated_at`,
		p.ID, p.Title.Ar, p.Title.En, p.Excerpt.Ar, p.Excerpt.En, p.Body.Ar, p.Body.En,
		p.CoverURL, p.Published, p.Position, p.CreatedAt, p.UpdatedAt)
	return err
}

// DeletePost removes a post by id.
func (q *Queries) DeletePost(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	return err
}

// -----------------------------------------------------------------------------
// Reconcile
// -----------------------------------------------------------------------------

func deleteMissing(ctx context.Context, q *Queries, table string, keep []string) error {
	if len(keep) == 0 {
		_, err := q.db.ExecContext(ctx, `DELETE FROM `+table)
		return err
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keep)), ",")
	args := make([]any, len(keep))
	for i, id := range keep {
		args[i] = id
	}
	_, err := q.db.ExecContext(ctx,
		`DELETE FROM `+table+` WHERE id NOT IN (`+placeholders+`)`, args...)
	return err
}

func inTx(ctx context.Context, db *sql.DB, fn func(*Queries) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(New(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// ReplaceTeachers makes the teachers table exactly match the given set,
// reconciling by id: rows absent from the set are deleted, the rest are
// written whole. The collection version is bumped in the same
// transaction.
func ReplaceTeachers(ctx context.Context, db *sql.DB, teachers []model.Teacher) error {
	return inTx(ctx, db, func(q *Queries) error {
		ids := make([]string, 0, len(teachers))
		for _, t := range teachers {
			ids = append(ids, t.ID)
		}
		if err := deleteMissing(ctx, q, "teachers", ids); err != nil {
			return err
		}
		for _, t := range teachers {
			if err := q.UpsertTeacher(ctx, t); err != nil {
				return err
			}
		}
		return q.BumpCollectionVersion(ctx, CollectionTeachers)
	})
}

// ReplaceCourses makes the courses table exactly match the given set,
// reconciling by id.
func ReplaceCourses(ctx context.Context, db *sql.DB, courses []model.Course) error {
	return inTx(ctx, db, func(q *Queries) error {
		ids := make([]string, 0, len(courses))
		for _, c := range courses {
			ids = append(ids, c.ID)
		}
		if err := deleteMissing(ctx, q, "courses", ids); err != nil {
			return err
		}
		for _, c := range courses {
			if err := q.UpsertCourse(ctx, c); err != nil {
				return err
			}
		}
		return q.BumpCollectionVersion(ctx, CollectionCourses)
	})
}

// ReplaceTestimonials makes the testimonials table exactly match the
// given set, reconciling by id.
func ReplaceTestimonials(ctx context.Context, db *sql.DB, items []model.Testimonial) error {
	return inTx(ctx, db, func(q *Queries) error {
		ids := make([]string, 0, len(items))
		for _, t := range items {
			ids = append(ids, t.ID)
		}
		if err := deleteMissing(ctx, q, "testimonials", ids); err != nil {
			return err
		}
		for _, t := range items {
			if err := q.UpsertTestimonial(ctx, t); err != nil {
				return err
			}
		}
		return q.BumpCollectionVersion(ctx, CollectionTestimonials)
	})
}

// ReplacePosts makes the posts table exactly match the given set,
// reconciling by id.
func ReplacePosts(ctx context.Context, db *sql.DB, posts []model.Post) error {
	return inTx(ctx, db, func(q *Queries) error {
		ids := make([]string, 0, len(posts))
		for _, p := range posts {
			ids = append(ids, p.ID)
		}
		if err := deleteMissing(ctx, q, "posts", ids); err != nil {
			return err
		}
		for _, p := range posts {
			if err := q.UpsertPost(ctx, p); err != nil {
				return err
			}
		}
		return q.BumpCollectionVersion(ctx, CollectionPosts)
	})
}

// -----------------------------------------------------------------------------
// Onboarding options
// -----------------------------------------------------------------------------

// Option list keys stored in onboarding_options.
const (
	OptionKeyServiceTypes    = "service_types"
	OptionKeyEducationStages = "education_stages"
	OptionKeyCurriculums     = "curriculums"
	OptionKeySubjects        = "subjects"
)

func (q *Queries) getOptionList(ctx context.Context, key string) (locale.List, error) {
	var itemsJSON, itemsEnJSON string
	err := q.db.QueryRowContext(ctx,
		`SELECT items, items_en FROM onboarding_options WHERE key = ?`, key).
		Scan(&itemsJSON, &itemsEnJSON)
	if err == sql.ErrNoRows {
		return locale.List{}, nil
	}
	if err != nil {
		return locale.List{}, err
	}
	var list locale.List
	if err := json.Unmarshal([]byte(itemsJSON), &list.Ar); err != nil {
		return locale.List{}, fmt.Errorf("option list %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(itemsEnJSON), &list.En); err != nil {
		return locale.List{}, fmt.Errorf("option list %s (en): %w", key, err)
	}
	return list, nil
}

// GetOnboardingOptions loads all four option lists for the signup wizard.
func (q *Queries) GetOnboardingOptions(ctx context.Context) (model.OnboardingOptions, error) {
	var opts model.OnboardingOptions
	var err error
	if opts.ServiceTypes, err = q.getOptionList(ctx, OptionKeyServiceTypes); err != nil {
		return opts, err
	}
	if opts.EducationStages, err = q.getOptionList(ctx, OptionKeyEducationStages); err != nil {
		return opts, err
	}
	if opts.Curriculums, err = q.getOptionList(ctx, OptionKeyCurriculums); err != nil {
		return opts, err
	}
	opts.Subjects, err = q.getOptionList(ctx, OptionKeySubjects)
	return opts, err
}

// SetOptionList writes one option list pair under a key.
func (q *Queries) SetOptionList(ctx context.Context, key string, list locale.List, now time.Time) error {
	itemsJSON, err := json.Marshal(emptyToSlice(list.Ar))
	if err != nil {
		return err
	}
	itemsEnJSON, err := json.Marshal(emptyToSlice(list.En))
	if err != nil {
		return err
	}
	_, err = q.db.ExecContext(ctx,
		`INSERT INTO onboarding_options (key, items, items_en, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
			items = excluded.items, items_en = excluded.items_en,
			updated_at = excluded.updated_at`,
		key, string(itemsJSON), string(itemsEnJSON), now)
	return err
}

func emptyToSlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// ReplaceOnboardingOptions overwrites all four option lists and bumps
// the collection version in one transaction.
func ReplaceOnboardingOptions(ctx context.Context, db *sql.DB, opts model.OnboardingOptions, now time.Time) error {
	return inTx(ctx, db, func(q *Queries) error {
		pairs := []struct {
			key  string
			list locale.List
		}{
			{OptionKeyServiceTypes, opts.ServiceTypes},
			{OptionKeyEducationStages, opts.EducationStages},
			{OptionKeyCurriculums, opts.Curriculums},
			{OptionKeySubjects, opts.Subjects},
		}
		for _, p := range pairs {
			if err := q.SetOptionList(ctx, p.key, p.list, now); err != nil {
				return err
			}
		}
		return q.BumpCollectionVersion(ctx, CollectionOptions)
	})
}

// -----------------------------------------------------------------------------
// Site content
// -----------------------------------------------------------------------------

// GetSiteContent loads the site-copy document with its version. A
// missing row yields an empty document at version 1.
func (q *Queries) GetSiteContent(ctx context.Context) (model.SiteContentRecord, error) {
	var rec model.SiteContentRecord
	var raw string
	err := q.db.QueryRowContext(ctx,
		`SELECT content, version, updated_at FROM site_content WHERE id = 1`).
		Scan(&raw, &rec.Version, &rec.UpdatedAt)
	if err == sql.ErrNoRows {
		rec.Version = 1
		return rec, nil
	}
	if err != nil {
		return rec, err
	}
	if err := json.Unmarshal([]byte(raw), &rec.Content); err != nil {
		return rec, fmt.Errorf("site content: %w", err)
	}
	return rec, nil
}

// UpdateSiteContent overwrites the site-copy document and bumps its
// version. The returned version keys the translation cache.
func UpdateSiteContent(ctx context.Context, db *sql.DB, content model.SiteContent, now time.Time) (int64, error) {
	raw, err := json.Marshal(content)
	if err != nil {
		return 0, err
	}
	var version int64
	err = inTx(ctx, db, func(q *Queries) error {
		if _, err := q.db.ExecContext(ctx,
			`INSERT INTO site_content (id, content, version, updated_at)
			 VALUES (1, ?, 2, ?)
			 ON CONFLICT(id) DO UPDATE SET
				content = excluded.content,
				version = site_content.version + 1,
				updated_at = excluded.updated_at`,
			string(raw), now); err != nil {
			return err
		}
		return q.db.QueryRowContext(ctx,
			`SELECT version FROM site_content WHERE id = 1`).Scan(&version)
	})
	return version, err
}
