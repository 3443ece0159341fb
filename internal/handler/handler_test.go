// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jotutor/jotutor/internal/cache"
	"github.com/jotutor/jotutor/internal/catalog"
	"github.com/jotutor/jotutor/internal/i18n"
	"github.com/jotutor/jotutor/internal/locale"
	"github.com/jotutor/jotutor/internal/middleware"
	"github.com/jotutor/jotutor/internal/model"
	"github.com/jotutor/jotutor/internal/nav"
	"github.com/jotutor/jotutor/internal/payment"
	"github.com/jotutor/jotutor/internal/render"
	"github.com/jotutor/jotutor/internal/session"
	"github.com/jotutor/jotutor/internal/store"
	"github.com/jotutor/jotutor/web"
)

// newTestHandler builds a handler over a fresh database with the real
// templates, an in-memory cache and no gateway, tracker or assistant.
func newTestHandler(t *testing.T) *Handler {
	t.Helper()

	if err := i18n.Init(slog.Default()); err != nil {
		t.Fatalf("i18n.Init: %v", err)
	}

	db, err := store.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := store.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	sm := session.New(db, true)

	templates, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		t.Fatalf("fs.Sub: %v", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templates,
		SessionManager: sm,
		IsDev:          true,
	})
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	backend := cache.NewCacheWithTTL(time.Minute)
	return New(Config{
		DB:       db,
		Renderer: renderer,
		Sessions: sm,
		Catalog:  catalog.NewService(db, backend, nil),
		Payments: payment.NewService(db, nil),
	})
}

// newTestSite mounts the public pages without CSRF so form posts in
// tests stay plain.
func newTestSite(t *testing.T, h *Handler) *httptest.Server {
	t.Helper()

	r := chi.NewRouter()
	r.Use(h.sessions.LoadAndSave)
	r.Use(middleware.Language(h.sessions))
	r.Use(middleware.OptionalLoadUser(h.sessions, h.db))

	r.Get("/", h.Home)
	r.Get("/teachers", h.Teachers)
	r.Get("/teachers/{id}", h.TeacherProfile)
	r.Get("/courses", h.Courses)
	r.Get("/courses/{id}", h.CourseProfile)
	r.Get("/dashboard", h.Dashboard)
	r.Post("/back", h.Back)
	r.Get("/checkout/{courseID}", h.Checkout)
	r.Post("/checkout/{courseID}", h.SubmitCheckout)
	r.Get("/checkout/transfer/{paymentID}", h.BankTransfer)
	r.Route("/admin", func(r chi.Router) {
		r.Use(h.RequireConsole)
		r.Get("/", h.AdminDashboard)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

// newTestClient returns a client that keeps the session cookie and
// does not follow redirects.
func newTestClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func get(t *testing.T, c *http.Client, url string) (*http.Response, string) {
	t.Helper()
	resp, err := c.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, string(body)
}

func seedTeacher(t *testing.T, h *Handler, id string) {
	t.Helper()
	now := time.Now().UTC()
	err := h.queries.UpsertTeacher(context.Background(), model.Teacher{
		ID:        id,
		Name:      locale.T("أحمد", "Ahmad"),
		Subject:   locale.T("رياضيات", "Math"),
		Published: true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("UpsertTeacher: %v", err)
	}
}

func seedCourse(t *testing.T, h *Handler, id, teacherID string) {
	t.Helper()
	now := time.Now().UTC()
	err := h.queries.UpsertCourse(context.Background(), model.Course{
		ID:        id,
		Title:     locale.T("رياضيات توجيهي", "Tawjihi Math"),
		Stage:     locale.T("توجيهي", "Tawjihi"),
		TeacherID: teacherID,
		PriceJOD:  25,
		Published: true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("UpsertCourse: %v", err)
	}
}

func TestHomeRenders(t *testing.T) {
	h := newTestHandler(t)
	srv := newTestSite(t, h)
	c := newTestClient(t)

	resp, body := get(t, c, srv.URL+"/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(body, `lang="ar"`) || !strings.Contains(body, `dir="rtl"`) {
		t.Error("expected an Arabic RTL document by default")
	}
}

func TestLanguageQuerySwitchesToEnglish(t *testing.T) {
	h := newTestHandler(t)
	srv := newTestSite(t, h)
	c := newTestClient(t)

	_, body := get(t, c, srv.URL+"/?lang=en")
	if !strings.Contains(body, `lang="en"`) || !strings.Contains(body, `dir="ltr"`) {
		t.Error("expected an English LTR document")
	}

	// The choice sticks for the session.
	_, body = get(t, c, srv.URL+"/teachers")
	if !strings.Contains(body, `lang="en"`) {
		t.Error("language choice did not persist across requests")
	}
}

func TestTeacherProfileShownAndMissingIs404(t *testing.T) {
	h := newTestHandler(t)
	seedTeacher(t, h, "t-ahmad")
	srv := newTestSite(t, h)
	c := newTestClient(t)

	resp, body := get(t, c, srv.URL+"/teachers/t-ahmad")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(body, "أحمد") {
		t.Error("teacher name missing from profile page")
	}

	resp, _ = get(t, c, srv.URL+"/teachers/nope")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing teacher status = %d, want 404", resp.StatusCode)
	}
}

func TestDashboardDeniedForAnonymous(t *testing.T) {
	h := newTestHandler(t)
	srv := newTestSite(t, h)
	c := newTestClient(t)

	resp, _ := get(t, c, srv.URL+"/dashboard")
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}
}

// A denied page is still recorded as the current navigation target, so
// going back from it returns to the page visited before it.
func TestBackAfterDeniedPage(t *testing.T) {
	h := newTestHandler(t)
	srv := newTestSite(t, h)
	c := newTestClient(t)

	get(t, c, srv.URL+"/")
	get(t, c, srv.URL+"/teachers")
	get(t, c, srv.URL+"/dashboard")

	resp, err := c.PostForm(srv.URL+"/back", url.Values{})
	if err != nil {
		t.Fatalf("POST /back: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/teachers" {
		t.Errorf("Location = %q, want /teachers", loc)
	}
}

// The console denies in place like any gated page: no login redirect,
// the visit is recorded, and /back walks out of the denied attempt.
func TestAdminDeniedInPlaceAndBackRecovers(t *testing.T) {
	h := newTestHandler(t)
	srv := newTestSite(t, h)
	c := newTestClient(t)

	get(t, c, srv.URL+"/")
	get(t, c, srv.URL+"/teachers")

	resp, _ := get(t, c, srv.URL+"/admin")
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want 403 placeholder, not a redirect", resp.StatusCode)
	}

	resp, err := c.PostForm(srv.URL+"/back", url.Values{})
	if err != nil {
		t.Fatalf("POST /back: %v", err)
	}
	_ = resp.Body.Close()
	if loc := resp.Header.Get("Location"); loc != "/teachers" {
		t.Errorf("Location = %q, want /teachers", loc)
	}
}

func TestBackAtHistoryBottomStaysHome(t *testing.T) {
	h := newTestHandler(t)
	srv := newTestSite(t, h)
	c := newTestClient(t)

	get(t, c, srv.URL+"/")

	resp, err := c.PostForm(srv.URL+"/back", url.Values{})
	if err != nil {
		t.Fatalf("POST /back: %v", err)
	}
	_ = resp.Body.Close()
	if loc := resp.Header.Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want /", loc)
	}
}

func TestBankTransferCheckout(t *testing.T) {
	h := newTestHandler(t)
	seedTeacher(t, h, "t-ahmad")
	seedCourse(t, h, "c-tawjihi-math", "t-ahmad")
	srv := newTestSite(t, h)
	c := newTestClient(t)

	resp, err := c.PostForm(srv.URL+"/checkout/c-tawjihi-math", url.Values{
		"student_name":  {"سارة"},
		"student_email": {"sara@example.com"},
		"method":        {model.PaymentMethodBank},
	})
	if err != nil {
		t.Fatalf("POST checkout: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", resp.StatusCode)
	}
	loc := resp.Header.Get("Location")
	if !strings.HasPrefix(loc, "/checkout/transfer/") {
		t.Fatalf("Location = %q, want a transfer page", loc)
	}

	id := strings.TrimPrefix(loc, "/checkout/transfer/")
	p, err := h.payments.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get payment: %v", err)
	}
	if p.Status != model.PaymentStatusInitiated {
		t.Errorf("Status = %q, want initiated", p.Status)
	}

	resp, body := get(t, c, srv.URL+loc)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("transfer page status = %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(body, p.OrderID.String) {
		t.Error("transfer page missing the order reference")
	}
}

func TestCourseSummariesFormatsPrice(t *testing.T) {
	h := newTestHandler(t)
	seedTeacher(t, h, "t-ahmad")
	seedCourse(t, h, "c-tawjihi-math", "t-ahmad")

	req := httptest.NewRequest(http.MethodGet, "/api/chat", nil)
	summaries, err := h.courseSummaries(req)
	if err != nil {
		t.Fatalf("courseSummaries: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("got %d summaries, want 1", len(summaries))
	}
	if summaries[0].PriceJOD != "25.00" {
		t.Errorf("PriceJOD = %q, want 25.00", summaries[0].PriceJOD)
	}
	if summaries[0].Subject != "رياضيات" {
		t.Errorf("Subject = %q, want the teacher's subject", summaries[0].Subject)
	}
}

func TestPathFor(t *testing.T) {
	tests := []struct {
		page nav.Page
		id   string
		want string
	}{
		{nav.PageHome, "", "/"},
		{nav.PageTeachers, "", "/teachers"},
		{nav.PageTeacherProfile, "t1", "/teachers/t1"},
		{nav.PageCourseProfile, "c1", "/courses/c1"},
		{nav.PagePayment, "c1", "/checkout/c1"},
		{nav.PageShortPlayer, "c2", "/videos/c2"},
		{nav.PageArticle, "p1", "/blog/p1"},
		{nav.PagePaymentRefund, "", "/payment-refund"},
		{nav.PageAdminDashboard, "", "/admin"},
	}
	for _, tt := range tests {
		if got := pathFor(tt.page, tt.id); got != tt.want {
			t.Errorf("pathFor(%s, %q) = %q, want %q", tt.page, tt.id, got, tt.want)
		}
	}
}

func TestCardFromForm(t *testing.T) {
	form := url.Values{
		"card_holder": {"Ahmad K"},
		"card_number": {"4111 1111 1111 1111"},
		"card_expiry": {"09/27"},
		"card_cvv":    {"123"},
	}
	req := httptest.NewRequest(http.MethodPost, "/checkout/c1", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	card := cardFromForm(req)
	if card.Number != "4111111111111111" {
		t.Errorf("Number = %q, want digits only", card.Number)
	}
	if card.ExpiryMonth != 9 || card.ExpiryYear != 2027 {
		t.Errorf("expiry = %d/%d, want 9/2027", card.ExpiryMonth, card.ExpiryYear)
	}
}

func TestFAQTextRoundTrip(t *testing.T) {
	items := []model.FAQItem{
		{Question: "كيف أسجل؟", Answer: "من صفحة الانطلاق."},
		{Question: "هل الدفع آمن؟", Answer: "نعم.\nنستخدم بوابة معتمدة."},
	}

	parsed := faqFromText(faqToText(items))
	if len(parsed) != len(items) {
		t.Fatalf("parsed %d items, want %d", len(parsed), len(items))
	}
	for i := range items {
		if parsed[i] != items[i] {
			t.Errorf("item %d = %+v, want %+v", i, parsed[i], items[i])
		}
	}
}

func TestSplitLines(t *testing.T) {
	got := splitLines("  a \n\n b\r\nc\n")
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}
