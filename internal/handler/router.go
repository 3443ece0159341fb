// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/jotutor/jotutor/internal/middleware"
	"github.com/jotutor/jotutor/internal/model"
)

// RouterConfig holds the cross-cutting route settings.
type RouterConfig struct {
	SessionSecret string
	IsDev         bool
	UploadsDir    string
	StaticFS      http.FileSystem
}

// Routes builds the full route tree: public site, checkout, chat API,
// auth and the admin console.
func (h *Handler) Routes(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.StripSlashes)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDev)))
	r.Use(h.sessions.LoadAndSave)
	r.Use(middleware.Language(h.sessions))
	r.Use(middleware.OptionalLoadUser(h.sessions, h.db))

	csrf := middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDev))

	// Static assets and uploads sit outside the session-aware groups.
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(cfg.StaticFS)))
	if cfg.UploadsDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir))))
	}

	// The gateway callback authenticates by order id, not by session.
	r.Group(func(r chi.Router) {
		r.Use(middleware.SkipCSRF("/payments/callback"))
		r.Use(csrf)
		r.Post("/payments/callback", h.PaymentCallback)
	})

	// Public site.
	r.Group(func(r chi.Router) {
		r.Use(csrf)
		if h.tracker != nil {
			r.Use(h.tracker.Middleware())
		}

		r.Get("/", h.Home)
		r.Get("/teachers", h.Teachers)
		r.Get("/teachers/{id}", h.TeacherProfile)
		r.Get("/courses", h.Courses)
		r.Get("/courses/{id}", h.CourseProfile)
		r.Get("/videos", h.Videos)
		r.Get("/videos/{id}", h.Video)
		r.Get("/blog", h.Blog)
		r.Get("/blog/{id}", h.Article)
		r.Get("/about", h.About)
		r.Get("/contact", h.Contact)
		r.Get("/faq", h.FAQ)
		r.Get("/privacy", h.Privacy)
		r.Get("/terms", h.Terms)
		r.Get("/payment-refund", h.PaymentRefund)
		r.Get("/dashboard", h.Dashboard)
		r.Post("/back", h.Back)

		r.Get("/onboarding", h.Onboarding)
		r.Post("/onboarding", h.OnboardingStep)

		r.Get("/checkout/{courseID}", h.Checkout)
		r.Post("/checkout/{courseID}", h.SubmitCheckout)
		r.Get("/checkout/transfer/{paymentID}", h.BankTransfer)
		r.Get("/checkout/result/{paymentID}", h.PaymentResult)
		r.Get("/checkout/qr/{paymentID}", h.TransferQR)

		r.Get("/chat", h.ChatPage)
		r.Post("/api/chat", h.ChatAPI)
		r.Get("/api/teachers", h.APITeachers)
		r.Get("/api/courses", h.APICourses)
		r.Get("/api/options", h.APIOptions)

		r.Get("/login", h.LoginForm)
		if h.loginProt != nil {
			r.With(h.loginProt.Middleware()).Post("/login", h.Login)
		} else {
			r.Post("/login", h.Login)
		}
		r.Post("/logout", h.Logout)
	})

	// Admin console. The user is already in context via
	// OptionalLoadUser; the console gate denies in place rather than
	// redirecting so the navigation trail stays intact.
	r.Route("/admin", func(r chi.Router) {
		r.Use(csrf)
		r.Use(h.RequireConsole)

		r.Get("/", h.AdminDashboard)
		r.Get("/events", h.AdminEvents)
		r.Get("/analytics", h.AdminAnalytics)

		r.Get("/payments", h.AdminPayments)
		r.Post("/payments/{paymentID}/confirm", h.AdminConfirmPayment)

		r.Get("/teachers", h.AdminTeachers)
		r.Get("/teachers/new", h.AdminTeacherForm)
		r.Post("/teachers", h.AdminSaveTeacher)
		r.Get("/teachers/{id}", h.AdminTeacherForm)
		r.Post("/teachers/{id}", h.AdminSaveTeacher)
		r.Post("/teachers/{id}/delete", h.AdminDeleteTeacher)

		r.Get("/courses", h.AdminCourses)
		r.Get("/courses/new", h.AdminCourseForm)
		r.Post("/courses", h.AdminSaveCourse)
		r.Get("/courses/{id}", h.AdminCourseForm)
		r.Post("/courses/{id}", h.AdminSaveCourse)
		r.Post("/courses/{id}/delete", h.AdminDeleteCourse)

		r.Get("/testimonials", h.AdminTestimonials)
		r.Get("/testimonials/new", h.AdminTestimonialForm)
		r.Post("/testimonials", h.AdminSaveTestimonial)
		r.Get("/testimonials/{id}", h.AdminTestimonialForm)
		r.Post("/testimonials/{id}", h.AdminSaveTestimonial)
		r.Post("/testimonials/{id}/delete", h.AdminDeleteTestimonial)

		r.Get("/posts", h.AdminPosts)
		r.Get("/posts/new", h.AdminPostForm)
		r.Post("/posts", h.AdminSavePost)
		r.Get("/posts/{id}", h.AdminPostForm)
		r.Post("/posts/{id}", h.AdminSavePost)
		r.Post("/posts/{id}/delete", h.AdminDeletePost)

		r.Get("/options", h.AdminOptions)
		r.Post("/options", h.AdminSaveOptions)
		r.Get("/site-content", h.AdminSiteContent)
		r.Post("/site-content", h.AdminSaveSiteContent)

		// User management is for the full admin role only.
		r.Group(func(r chi.Router) {
			r.Use(h.RequireRole(model.RoleAdmin))
			r.Get("/users", h.AdminUsers)
			r.Get("/users/new", h.AdminUserForm)
			r.Post("/users", h.AdminSaveUser)
			r.Get("/users/{id}", h.AdminUserForm)
			r.Post("/users/{id}", h.AdminSaveUser)
			r.Post("/users/{id}/delete", h.AdminDeleteUser)
		})
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		h.renderNotFound(w, req)
	})

	return r
}
