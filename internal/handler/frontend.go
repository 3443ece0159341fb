// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jotutor/jotutor/internal/catalog"
	"github.com/jotutor/jotutor/internal/middleware"
	"github.com/jotutor/jotutor/internal/model"
	"github.com/jotutor/jotutor/internal/nav"
)

// Home renders the landing page with the published teachers, courses
// and testimonials.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	if !h.visit(r, nav.PageHome, "") {
		h.renderDenied(w, r)
		return
	}

	lang := middleware.GetLang(r)
	ctx := r.Context()

	teachers, err := h.catalog.Teachers(ctx, lang)
	if err != nil {
		h.renderServerError(w, r, err)
		return
	}
	courses, err := h.catalog.Courses(ctx, lang)
	if err != nil {
		h.renderServerError(w, r, err)
		return
	}
	testimonials, err := h.catalog.Testimonials(ctx, lang)
	if err != nil {
		h.renderServerError(w, r, err)
		return
	}

	data := struct {
		Teachers     []catalog.TeacherView
		Courses      []catalog.CourseView
		Testimonials []catalog.TestimonialView
	}{teachers, courses, testimonials}

	h.render(w, r, "site/home", h.pageData(r, t(r, "nav.home"), data))
}

// Teachers renders the teacher directory.
func (h *Handler) Teachers(w http.ResponseWriter, r *http.Request) {
	if !h.visit(r, nav.PageTeachers, "") {
		h.renderDenied(w, r)
		return
	}

	teachers, err := h.catalog.Teachers(r.Context(), middleware.GetLang(r))
	if err != nil {
		h.renderServerError(w, r, err)
		return
	}

	h.render(w, r, "site/teachers", h.pageData(r, t(r, "nav.teachers"), struct {
		Teachers []catalog.TeacherView
	}{teachers}))
}

// TeacherProfile renders one teacher with their courses.
func (h *Handler) TeacherProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.visit(r, nav.PageTeacherProfile, id) {
		h.renderDenied(w, r)
		return
	}

	lang := middleware.GetLang(r)
	teacher, ok, err := h.catalog.Teacher(r.Context(), id, lang)
	if err != nil {
		h.renderServerError(w, r, err)
		return
	}
	if !ok {
		h.renderNotFound(w, r)
		return
	}

	courses, err := h.catalog.CoursesByTeacher(r.Context(), id, lang)
	if err != nil {
		h.renderServerError(w, r, err)
		return
	}

	data := struct {
		Teacher catalog.TeacherView
		Courses []catalog.CourseView
	}{teacher, courses}

	h.render(w, r, "site/teacher", h.pageData(r, teacher.Name, data))
}

// Courses renders the course catalog, optionally filtered to one
// education stage (the onboarding wizard links here with a stage).
func (h *Handler) Courses(w http.ResponseWriter, r *http.Request) {
	if !h.visit(r, nav.PageCourses, "") {
		h.renderDenied(w, r)
		return
	}

	courses, err := h.catalog.Courses(r.Context(), middleware.GetLang(r))
	if err != nil {
		h.renderServerError(w, r, err)
		return
	}

	if stage := r.URL.Query().Get("stage"); stage != "" {
		filtered := courses[:0]
		for _, c := range courses {
			if c.Stage == stage {
				filtered = append(filtered, c)
			}
		}
		courses = filtered
	}

	h.render(w, r, "site/courses", h.pageData(r, t(r, "nav.courses"), struct {
		Courses []catalog.CourseView
	}{courses}))
}

// CourseProfile renders one course with its enroll action.
func (h *Handler) CourseProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.visit(r, nav.PageCourseProfile, id) {
		h.renderDenied(w, r)
		return
	}

	course, ok, err := h.catalog.Course(r.Context(), id, middleware.GetLang(r))
	if err != nil {
		h.renderServerError(w, r, err)
		return
	}
	if !ok {
		h.renderNotFound(w, r)
		return
	}

	h.render(w, r, "site/course", h.pageData(r, course.Title, struct {
		Course catalog.CourseView
	}{course}))
}

// Videos lists the courses that carry an intro video.
func (h *Handler) Videos(w http.ResponseWriter, r *http.Request) {
	if !h.visit(r, nav.PageVideos, "") {
		h.renderDenied(w, r)
		return
	}

	courses, err := h.catalog.Courses(r.Context(), middleware.GetLang(r))
	if err != nil {
		h.renderServerError(w, r, err)
		return
	}

	withVideo := courses[:0]
	for _, c := range courses {
		if c.VideoURL != "" {
			withVideo = append(withVideo, c)
		}
	}

	h.render(w, r, "site/videos", h.pageData(r, t(r, "nav.videos"), struct {
		Courses []catalog.CourseView
	}{withVideo}))
}

// Video renders the short-player page for one course video.
func (h *Handler) Video(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.visit(r, nav.PageShortPlayer, id) {
		h.renderDenied(w, r)
		return
	}

	course, ok, err := h.catalog.Course(r.Context(), id, middleware.GetLang(r))
	if err != nil {
		h.renderServerError(w, r, err)
		return
	}
	if !ok || course.VideoURL == "" {
		h.renderNotFound(w, r)
		return
	}

	h.render(w, r, "site/video", h.pageData(r, course.Title, struct {
		Course catalog.CourseView
	}{course}))
}

// Blog renders the article index.
func (h *Handler) Blog(w http.ResponseWriter, r *http.Request) {
	if !h.visit(r, nav.PageBlog, "") {
		h.renderDenied(w, r)
		return
	}

	posts, err := h.catalog.Posts(r.Context(), middleware.GetLang(r))
	if err != nil {
		h.renderServerError(w, r, err)
		return
	}

	h.render(w, r, "site/blog", h.pageData(r, t(r, "nav.blog"), struct {
		Posts []catalog.PostView
	}{posts}))
}

// Article renders one blog post.
func (h *Handler) Article(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.visit(r, nav.PageArticle, id) {
		h.renderDenied(w, r)
		return
	}

	post, ok, err := h.catalog.Post(r.Context(), id, middleware.GetLang(r))
	if err != nil {
		h.renderServerError(w, r, err)
		return
	}
	if !ok {
		h.renderNotFound(w, r)
		return
	}

	h.render(w, r, "site/article", h.pageData(r, post.Title, struct {
		Post catalog.PostView
	}{post}))
}

// About renders the about page from the editable site copy.
func (h *Handler) About(w http.ResponseWriter, r *http.Request) {
	if !h.visit(r, nav.PageAbout, "") {
		h.renderDenied(w, r)
		return
	}
	h.render(w, r, "site/about", h.pageData(r, t(r, "nav.about"), nil))
}

// Contact renders the contact details page.
func (h *Handler) Contact(w http.ResponseWriter, r *http.Request) {
	if !h.visit(r, nav.PageContact, "") {
		h.renderDenied(w, r)
		return
	}
	h.render(w, r, "site/contact", h.pageData(r, t(r, "nav.contact"), nil))
}

// FAQ renders the question list from the editable site copy.
func (h *Handler) FAQ(w http.ResponseWriter, r *http.Request) {
	if !h.visit(r, nav.PageFAQ, "") {
		h.renderDenied(w, r)
		return
	}
	h.render(w, r, "site/faq", h.pageData(r, t(r, "nav.faq"), nil))
}

// legalPage renders one of the legal text pages.
func (h *Handler) legalPage(w http.ResponseWriter, r *http.Request, page nav.Page, titleKey string, body func(model.LegalCopy) string) {
	if !h.visit(r, page, "") {
		h.renderDenied(w, r)
		return
	}

	data := h.pageData(r, t(r, titleKey), nil)
	data.Data = struct {
		Title string
		Body  string
	}{t(r, titleKey), body(data.Copy.Legal)}

	h.render(w, r, "site/legal", data)
}

// Privacy renders the privacy policy.
func (h *Handler) Privacy(w http.ResponseWriter, r *http.Request) {
	h.legalPage(w, r, nav.PagePrivacy, "nav.privacy", func(l model.LegalCopy) string { return l.Privacy })
}

// Terms renders the terms of service.
func (h *Handler) Terms(w http.ResponseWriter, r *http.Request) {
	h.legalPage(w, r, nav.PageTerms, "nav.terms", func(l model.LegalCopy) string { return l.Terms })
}

// PaymentRefund renders the payment and refund policy.
func (h *Handler) PaymentRefund(w http.ResponseWriter, r *http.Request) {
	h.legalPage(w, r, nav.PagePaymentRefund, "nav.payment_refund", func(l model.LegalCopy) string { return l.PaymentRefund })
}

// Dashboard renders the student dashboard. The gate requires a login;
// anonymous visitors get the denied placeholder, not a redirect.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if !h.visit(r, nav.PageDashboard, "") {
		h.renderDenied(w, r)
		return
	}

	h.render(w, r, "site/dashboard", h.pageData(r, t(r, "nav.dashboard"), struct {
		IsAdmin bool
	}{h.viewer(r).IsAdmin()}))
}

// Back pops the navigation history and redirects to the page that
// becomes current. At the bottom of the stack it stays put.
func (h *Handler) Back(w http.ResponseWriter, r *http.Request) {
	state := h.navState(r)
	state.Back()
	h.saveNavState(r, state)
	http.Redirect(w, r, pathFor(state.Current, state.SelectedID), http.StatusSeeOther)
}

// pathFor maps a navigation state back to its canonical URL.
func pathFor(page nav.Page, id string) string {
	switch page {
	case nav.PageTeachers:
		return "/teachers"
	case nav.PageTeacherProfile:
		return "/teachers/" + id
	case nav.PageCourses:
		return "/courses"
	case nav.PageCourseProfile:
		return "/courses/" + id
	case nav.PagePayment:
		return "/checkout/" + id
	case nav.PageVideos:
		return "/videos"
	case nav.PageShortPlayer:
		return "/videos/" + id
	case nav.PageBlog:
		return "/blog"
	case nav.PageArticle:
		return "/blog/" + id
	case nav.PageAbout:
		return "/about"
	case nav.PageContact:
		return "/contact"
	case nav.PageFAQ:
		return "/faq"
	case nav.PagePrivacy:
		return "/privacy"
	case nav.PageTerms:
		return "/terms"
	case nav.PagePaymentRefund:
		return "/payment-refund"
	case nav.PageDashboard:
		return "/dashboard"
	case nav.PageAdminDashboard:
		return "/admin"
	default:
		return "/"
	}
}

// onboardingData carries the wizard state between steps. Earlier
// answers ride along as hidden fields.
type onboardingData struct {
	Step        int
	ServiceType string
	Stage       string
	Curriculum  string
	Options     model.ResolvedOptions
}

// Onboarding renders the first step of the matching wizard.
func (h *Handler) Onboarding(w http.ResponseWriter, r *http.Request) {
	if !h.visit(r, nav.PageHome, "") {
		h.renderDenied(w, r)
		return
	}

	opts, err := h.catalog.Options(r.Context(), middleware.GetLang(r))
	if err != nil {
		h.renderServerError(w, r, err)
		return
	}

	h.render(w, r, "site/onboarding", h.pageData(r, t(r, "onboarding.title"), onboardingData{
		Step:    1,
		Options: opts,
	}))
}

// OnboardingStep advances the wizard. The final step redirects to the
// course catalog filtered to the chosen stage.
func (h *Handler) OnboardingStep(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	step, _ := strconv.Atoi(r.PostFormValue("step"))
	if step < 1 || step > 4 {
		step = 1
	}

	data := onboardingData{
		ServiceType: r.PostFormValue("service_type"),
		Stage:       r.PostFormValue("stage"),
		Curriculum:  r.PostFormValue("curriculum"),
	}

	if step == 4 {
		target := "/courses"
		if data.Stage != "" {
			target += "?stage=" + url.QueryEscape(data.Stage)
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}

	opts, err := h.catalog.Options(r.Context(), middleware.GetLang(r))
	if err != nil {
		h.renderServerError(w, r, err)
		return
	}
	data.Step = step + 1
	data.Options = opts

	h.render(w, r, "site/onboarding", h.pageData(r, t(r, "onboarding.title"), data))
}
