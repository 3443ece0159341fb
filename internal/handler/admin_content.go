// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/jotutor/jotutor/internal/model"
	"github.com/jotutor/jotutor/internal/store"
)

// optionsFormData flattens the option lists into one textarea per list
// and language, one option per line.
type optionsFormData struct {
	ServiceTypesAr    string
	ServiceTypesEn    string
	EducationStagesAr string
	EducationStagesEn string
	CurriculumsAr     string
	CurriculumsEn     string
	SubjectsAr        string
	SubjectsEn        string
	EnglishOnly       bool
}

// AdminOptions renders the onboarding option lists.
func (h *Handler) AdminOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.queries.GetOnboardingOptions(r.Context())
	if err != nil {
		h.renderServerError(w, r, err)
		return
	}

	data := optionsFormData{
		ServiceTypesAr:    strings.Join(opts.ServiceTypes.Ar, "\n"),
		ServiceTypesEn:    strings.Join(opts.ServiceTypes.En, "\n"),
		EducationStagesAr: strings.Join(opts.EducationStages.Ar, "\n"),
		EducationStagesEn: strings.Join(opts.EducationStages.En, "\n"),
		CurriculumsAr:     strings.Join(opts.Curriculums.Ar, "\n"),
		CurriculumsEn:     strings.Join(opts.Curriculums.En, "\n"),
		SubjectsAr:        strings.Join(opts.Subjects.Ar, "\n"),
		SubjectsEn:        strings.Join(opts.Subjects.En, "\n"),
		EnglishOnly:       englishOnly(r),
	}

	h.render(w, r, "admin/options", h.adminData(r, t(r, "admin.options"), data))
}

// AdminSaveOptions replaces the option lists wholesale. Each list is a
// parallel Arabic/English pair; the wizard swaps language by swapping
// the whole list. The English admin may only change the English halves.
func (h *Handler) AdminSaveOptions(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	opts, err := h.queries.GetOnboardingOptions(r.Context())
	if err != nil {
		h.renderServerError(w, r, err)
		return
	}

	opts.ServiceTypes.En = splitLines(r.PostFormValue("service_types_en"))
	opts.EducationStages.En = splitLines(r.PostFormValue("education_stages_en"))
	opts.Curriculums.En = splitLines(r.PostFormValue("curriculums_en"))
	opts.Subjects.En = splitLines(r.PostFormValue("subjects_en"))

	if !englishOnly(r) {
		opts.ServiceTypes.Ar = splitLines(r.PostFormValue("service_types_ar"))
		opts.EducationStages.Ar = splitLines(r.PostFormValue("education_stages_ar"))
		opts.Curriculums.Ar = splitLines(r.PostFormValue("curriculums_ar"))
		opts.Subjects.Ar = splitLines(r.PostFormValue("subjects_ar"))
	}

	if err := store.ReplaceOnboardingOptions(r.Context(), h.db, opts, time.Now().UTC()); err != nil {
		h.renderServerError(w, r, err)
		return
	}
	h.catalog.Invalidate(r.Context(), store.CollectionOptions)
	h.savedAndBack(w, r, "/admin/options")
}

// splitLines parses a one-option-per-line textarea.
func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// AdminSiteContent renders the site-copy document editor. The document
// is Arabic-first; the English rendition is machine translated on read.
func (h *Handler) AdminSiteContent(w http.ResponseWriter, r *http.Request) {
	rec, err := h.queries.GetSiteContent(r.Context())
	if err != nil {
		h.renderServerError(w, r, err)
		return
	}

	data := struct {
		Content     model.SiteContent
		Version     int64
		FAQText     string
		EnglishOnly bool
	}{rec.Content, rec.Version, faqToText(rec.Content.FAQ), englishOnly(r)}

	h.render(w, r, "admin/site_content", h.adminData(r, t(r, "admin.site_content"), data))
}

// AdminSaveSiteContent overwrites the site-copy document, bumps its
// version and drops the cached translations so the English rendition is
// redone from the new Arabic text.
func (h *Handler) AdminSaveSiteContent(w http.ResponseWriter, r *http.Request) {
	if englishOnly(r) {
		h.renderDenied(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	content := model.SiteContent{
		Homepage: model.HomepageCopy{
			HeroTitle:       strings.TrimSpace(r.PostFormValue("hero_title")),
			HeroSubtitle:    strings.TrimSpace(r.PostFormValue("hero_subtitle")),
			TeachersHeading: strings.TrimSpace(r.PostFormValue("teachers_heading")),
			CoursesHeading:  strings.TrimSpace(r.PostFormValue("courses_heading")),
			CTALabel:        strings.TrimSpace(r.PostFormValue("cta_label")),
		},
		About: model.AboutCopy{
			Title:   strings.TrimSpace(r.PostFormValue("about_title")),
			Mission: strings.TrimSpace(r.PostFormValue("about_mission")),
			Story:   strings.TrimSpace(r.PostFormValue("about_story")),
		},
		FAQ: faqFromText(r.PostFormValue("faq")),
		Contact: model.ContactInfo{
			Email:    strings.TrimSpace(r.PostFormValue("contact_email")),
			Phone:    strings.TrimSpace(r.PostFormValue("contact_phone")),
			WhatsApp: strings.TrimSpace(r.PostFormValue("contact_whatsapp")),
			Address:  strings.TrimSpace(r.PostFormValue("contact_address")),
		},
		Legal: model.LegalCopy{
			Privacy:       strings.TrimSpace(r.PostFormValue("legal_privacy")),
			Terms:         strings.TrimSpace(r.PostFormValue("legal_terms")),
			PaymentRefund: strings.TrimSpace(r.PostFormValue("legal_payment_refund")),
		},
	}

	if _, err := store.UpdateSiteContent(r.Context(), h.db, content, time.Now().UTC()); err != nil {
		h.renderServerError(w, r, err)
		return
	}
	h.catalog.InvalidateSiteCopy(r.Context())
	h.savedAndBack(w, r, "/admin/site-content")
}

// faqToText serializes the FAQ items for the textarea: question line,
// answer line, blank separator line.
func faqToText(items []model.FAQItem) string {
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(item.Question)
		b.WriteString("\n")
		b.WriteString(item.Answer)
	}
	return b.String()
}

// faqFromText parses the textarea format back into FAQ items. The
// answer may span multiple lines up to the next blank line.
func faqFromText(s string) []model.FAQItem {
	var items []model.FAQItem
	for _, block := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n\n") {
		lines := splitLines(block)
		if len(lines) < 2 {
			continue
		}
		items = append(items, model.FAQItem{
			Question: lines[0],
			Answer:   strings.Join(lines[1:], "\n"),
		})
	}
	return items
}
