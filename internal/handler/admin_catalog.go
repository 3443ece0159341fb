// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jotutor/jotutor/internal/model"
	"github.com/jotutor/jotutor/internal/store"
)

// invalidateCollection bumps the collection version and drops the
// memoized projections so the site serves the new content immediately.
func (h *Handler) invalidateCollection(r *http.Request, collection string) {
	if err := h.queries.BumpCollectionVersion(r.Context(), collection); err != nil {
		slog.Error("bump collection version", "category", "content", "collection", collection, "error", err)
	}
	h.catalog.Invalidate(r.Context(), collection)
}

func (h *Handler) savedAndBack(w http.ResponseWriter, r *http.Request, to string) {
	h.renderer.SetFlash(r, t(r, "admin.saved"), "success")
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// uploadImage stores an optional image field and returns its public URL.
// An absent file returns the empty string with no error.
func (h *Handler) uploadImage(r *http.Request, field, variant string) (string, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	up, err := h.media.Save(file, header.Filename)
	if err != nil {
		return "", err
	}
	if path, ok := up.Paths[variant]; ok {
		return path, nil
	}
	return up.Paths["original"], nil
}

// -----------------------------------------------------------------------------
// Teachers
// -----------------------------------------------------------------------------

// AdminTeachers lists every teacher, drafts included.
func (h *Handler) AdminTeachers(w http.ResponseWriter, r *http.Request) {
	teachers, err := h.queries.ListTeachers(r.Context())
	if err != nil {
		h.renderServerError(w, r, err)
		return
	}
	h.render(w, r, "admin/teachers", h.adminData(r, t(r, "admin.teachers"), struct {
		Teachers    []model.Teacher
		EnglishOnly bool
	}{teachers, englishOnly(r)}))
}

// AdminTeacherForm renders the create or edit form.
func (h *Handler) AdminTeacherForm(w http.ResponseWriter, r *http.Request) {
	var teacher model.Teacher
	if id := chi.URLParam(r, "id"); id != "" {
		var err error
		teacher, err = h.queries.GetTeacherByID(r.Context(), id)
		if err != nil {
			h.renderNotFound(w, r)
			return
		}
	} else if englishOnly(r) {
		h.renderDenied(w, r)
		return
	}

	h.render(w, r, "admin/teacher_form", h.adminData(r, t(r, "admin.teachers"), struct {
		Teacher     model.Teacher
		EnglishOnly bool
	}{teacher, englishOnly(r)}))
}

// AdminSaveTeacher writes a teacher from the form. The English admin
// may only change the _en shadow fields of an existing record; any
// other submitted field is ignored for that role.
func (h *Handler) AdminSaveTeacher(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	id := chi.URLParam(r, "id")
	now := time.Now().UTC()

	var teacher model.Teacher
	if id != "" {
		var err error
		teacher, err = h.queries.GetTeacherByID(r.Context(), id)
		if err != nil {
			h.renderNotFound(w, r)
			return
		}
	} else {
		if englishOnly(r) {
			h.renderDenied(w, r)
			return
		}
		teacher = model.Teacher{ID: uuid.NewString(), CreatedAt: now}
	}

	teacher.Name.En = strings.TrimSpace(r.PostFormValue("name_en"))
	teacher.Subject.En = strings.TrimSpace(r.PostFormValue("subject_en"))
	teacher.Bio.En = strings.TrimSpace(r.PostFormValue("bio_en"))

	if !englishOnly(r) {
		teacher.Name.Ar = strings.TrimSpace(r.PostFormValue("name_ar"))
		teacher.Subject.Ar = strings.TrimSpace(r.PostFormValue("subject_ar"))
		teacher.Bio.Ar = strings.TrimSpace(r.PostFormValue("bio_ar"))
		teacher.YearsExperience, _ = strconv.Atoi(r.PostFormValue("years_experience"))
		teacher.Published = r.PostFormValue("published") == "1"

		photo, err := h.uploadImage(r, "photo", "card")
		if err != nil {
			h.renderServerError(w, r, err)
			return
		}
		if photo != "" {
			teacher.PhotoURL = photo
		}
	}
	teacher.UpdatedAt = now

	if err := h.queries.UpsertTeacher(r.Context(), teacher); err != nil {
		h.renderServerError(w, r, err)
		return
	}
	h.invalidateCollection(r, store.CollectionTeachers)
	h.savedAndBack(w, r, "/admin/teachers")
}

// AdminDeleteTeacher removes a teacher.
func (h *Handler) AdminDeleteTeacher(w http.ResponseWriter, r *http.Request) {
	if englishOnly(r) {
		h.renderDenied(w, r)
		return
	}
	if err := h.queries.DeleteTeacher(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.renderServerError(w, r, err)
		return
	}
	h.invalidateCollection(r, store.CollectionTeachers)
	h.savedAndBack(w, r, "/admin/teachers")
}

// -----------------------------------------------------------------------------
// Courses
// -----------------------------------------------------------------------------

// AdminCourses lists every course, drafts included.
func (h *Handler) AdminCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.queries.ListCourses(r.Context())
	if err != nil {
		h.renderServerError(w, r, err)
		return
	}
	h.render(w, r, "admin/courses", h.adminData(r, t(r, "admin.courses"), struct {
		Courses     []model.Course
		EnglishOnly bool
	}{courses, englishOnly(r)}))
}

// AdminCourseForm renders the create or edit form.
func (h *Handler) AdminCourseForm(w http.ResponseWriter, r *http.Request) {
	var course model.Course
	if id := chi.URLParam(r, "id"); id != "" {
		var err error
		course, err = h.queries.GetCourseByID(r.Context(), id)
		if err != nil {
			h.renderNotFound(w, r)
			return
		}
	} else if englishOnly(r) {
		h.renderDenied(w, r)
		return
	}

	teachers, err := h.queries.ListTeachers(r.Context())
	if err != nil {
		h.renderServerError(w, r, err)
		return
	}

	h.render(w, r, "admin/course_form", h.adminData(r, t(r, "admin.courses"), struct {
		Course      model.Course
		Teachers    []model.Teacher
		EnglishOnly bool
	}{course, teachers, englishOnly(r)}))
}

// AdminSaveCourse writes a course from the form.
func (h *Handler) AdminSaveCourse(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	id := chi.URLParam(r, "id")
	now := time.Now().UTC()

	var course model.Course
	if id != "" {
		var err error
		course, err = h.queries.GetCourseByID(r.Context(), id)
		if err != nil {
			h.renderNotFound(w, r)
			return
		}
	} else {
		if englishOnly(r) {
			h.renderDenied(w, r)
			return
		}
		course = model.Course{ID: uuid.NewString(), CreatedAt: now}
	}

	course.Title.En = strings.TrimSpace(r.PostFormValue("title_en"))
	course.Description.En = strings.TrimSpace(r.PostFormValue("description_en"))
	course.Stage.En = strings.TrimSpace(r.PostFormValue("stage_en"))

	if !englishOnly(r) {
		course.Title.Ar = strings.TrimSpace(r.PostFormValue("title_ar"))
		course.Description.Ar = strings.TrimSpace(r.PostFormValue("description_ar"))
		course.Stage.Ar = strings.TrimSpace(r.PostFormValue("stage_ar"))
		course.TeacherID = r.PostFormValue("teacher_id")
		course.PriceJOD, _ = strconv.ParseFloat(r.PostFormValue("price_jod"), 64)
		course.VideoURL = strings.TrimSpace(r.PostFormValue("video_url"))
		course.Published = r.PostFormValue("published") == "1"
	}
	course.UpdatedAt = now

	if err := h.queries.UpsertCourse(r.Context(), course); err != nil {
		h.renderServerError(w, r, err)
		return
	}
	h.invalidateCollection(r, store.CollectionCourses)
	h.savedAndBack(w, r, "/admin/courses")
}

// AdminDeleteCourse removes a course.
func (h *Handler) AdminDeleteCourse(w http.ResponseWriter, r *http.Request) {
	if englishOnly(r) {
		h.renderDenied(w, r)
		return
	}
	if err := h.queries.DeleteCourse(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.renderServerError(w, r, err)
		return
	}
	h.invalidateCollection(r, store.CollectionCourses)
	h.savedAndBack(w, r, "/admin/courses")
}

// -----------------------------------------------------------------------------
// Testimonials
// -----------------------------------------------------------------------------

// AdminTestimonials lists every testimonial.
func (h *Handler) AdminTestimonials(w http.ResponseWriter, r *http.Request) {
	testimonials, err := h.queries.ListTestimonials(r.Context())
	if err != nil {
		h.renderServerError(w, r, err)
		return
	}
	h.render(w, r, "admin/testimonials", h.adminData(r, t(r, "admin.testimonials"), struct {
		Testimonials []model.Testimonial
		EnglishOnly  bool
	}{testimonials, englishOnly(r)}))
}

// AdminTestimonialForm renders the create or edit form.
func (h *Handler) AdminTestimonialForm(w http.ResponseWriter, r *http.Request) {
	var tm model.Testimonial
	if id := chi.URLParam(r, "id"); id != "" {
		var err error
		tm, err = h.queries.GetTestimonialByID(r.Context(), id)
		if err != nil {
			h.renderNotFound(w, r)
			return
		}
	} else if englishOnly(r) {
		h.renderDenied(w, r)
		return
	}

	h.render(w, r, "admin/testimonial_form", h.adminData(r, t(r, "admin.testimonials"), struct {
		Testimonial model.Testimonial
		EnglishOnly bool
	}{tm, englishOnly(r)}))
}

// AdminSaveTestimonial writes a testimonial from the form.
func (h *Handler) AdminSaveTestimonial(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	id := chi.URLParam(r, "id")
	now := time.Now().UTC()

	var tm model.Testimonial
	if id != "" {
		var err error
		tm, err = h.queries.GetTestimonialByID(r.Context(), id)
		if err != nil {
			h.renderNotFound(w, r)
			return
		}
	} else {
		if englishOnly(r) {
			h.renderDenied(w, r)
			return
		}
		tm = model.Testimonial{ID: uuid.NewString(), CreatedAt: now}
	}

	tm.Author.En = strings.TrimSpace(r.PostFormValue("author_en"))
	tm.Quote.En = strings.TrimSpace(r.PostFormValue("quote_en"))

	if !englishOnly(r) {
		tm.Author.Ar = strings.TrimSpace(r.PostFormValue("author_ar"))
		tm.Quote.Ar = strings.TrimSpace(r.PostFormValue("quote_ar"))
		tm.Rating, _ = strconv.Atoi(r.PostFormValue("rating"))
		tm.Published = r.PostFormValue("published") == "1"
	}
	tm.UpdatedAt = now

	if err := h.queries.UpsertTestimonial(r.Context(), tm); err != nil {
		h.renderServerError(w, r, err)
		return
	}
	h.invalidateCollection(r, store.CollectionTestimonials)
	h.savedAndBack(w, r, "/admin/testimonials")
}

// AdminDeleteTestimonial removes a testimonial.
func (h *Handler) AdminDeleteTestimonial(w http.ResponseWriter, r *http.Request) {
	if englishOnly(r) {
		h.renderDenied(w, r)
		return
	}
	if err := h.queries.DeleteTestimonial(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.renderServerError(w, r, err)
		return
	}
	h.invalidateCollection(r, store.CollectionTestimonials)
	h.savedAndBack(w, r, "/admin/testimonials")
}

// -----------------------------------------------------------------------------
// Posts
// -----------------------------------------------------------------------------

// AdminPosts lists every post.
func (h *Handler) AdminPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.queries.ListPosts(r.Context())
	if err != nil {
		h.renderServerError(w, r, err)
		return
	}
	h.render(w, r, "admin/posts", h.adminData(r, t(r, "admin.posts"), struct {
		Posts       []model.Post
		EnglishOnly bool
	}{posts, englishOnly(r)}))
}

// AdminPostForm renders the create or edit form.
func (h *Handler) AdminPostForm(w http.ResponseWriter, r *http.Request) {
	var post model.Post
	if id := chi.URLParam(r, "id"); id != "" {
		var err error
		post, err = h.queries.GetPostByID(r.Context(), id)
		if err != nil {
			h.renderNotFound(w, r)
			return
		}
	} else if englishOnly(r) {
		h.renderDenied(w, r)
		return
	}

	h.render(w, r, "admin/post_form", h.adminData(r, t(r, "admin.posts"), struct {
		Post        model.Post
		EnglishOnly bool
	}{post, englishOnly(r)}))
}

// AdminSavePost writes a post from the form.
func (h *Handler) AdminSavePost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	id := chi.URLParam(r, "id")
	now := time.Now().UTC()

	var post model.Post
	if id != "" {
		var err error
		post, err = h.queries.GetPostByID(r.Context(), id)
		if err != nil {
			h.renderNotFound(w, r)
			return
		}
	} else {
		if englishOnly(r) {
			h.renderDenied(w, r)
			return
		}
		post = model.Post{ID: uuid.NewString(), CreatedAt: now}
	}

	post.Title.En = strings.TrimSpace(r.PostFormValue("title_en"))
	post.Excerpt.En = strings.TrimSpace(r.PostFormValue("excerpt_en"))
	post.Body.En = r.PostFormValue("body_en")

	if !englishOnly(r) {
		post.Title.Ar = strings.TrimSpace(r.PostFormValue("title_ar"))
		post.Excerpt.Ar = strings.TrimSpace(r.PostFormValue("excerpt_ar"))
		post.Body.Ar = r.PostFormValue("body_ar")
		post.Published = r.PostFormValue("published") == "1"

		cover, err := h.uploadImage(r, "cover", "hero")
		if err != nil {
			h.renderServerError(w, r, err)
			return
		}
		if cover != "" {
			post.CoverURL = cover
		}
	}
	post.UpdatedAt = now

	if err := h.queries.UpsertPost(r.Context(), post); err != nil {
		h.renderServerError(w, r, err)
		return
	}
	h.invalidateCollection(r, store.CollectionPosts)
	h.savedAndBack(w, r, "/admin/posts")
}

// AdminDeletePost removes a post.
func (h *Handler) AdminDeletePost(w http.ResponseWriter, r *http.Request) {
	if englishOnly(r) {
		h.renderDenied(w, r)
		return
	}
	if err := h.queries.DeletePost(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.renderServerError(w, r, err)
		return
	}
	h.invalidateCollection(r, store.CollectionPosts)
	h.savedAndBack(w, r, "/admin/posts")
}
