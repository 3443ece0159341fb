// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// SiteContent is the nested site-copy document. Only the Arabic version
// is first-class; the English rendition is produced on demand by the
// translation service and cached per content version.
type SiteContent struct {
	Homepage HomepageCopy `json:"homepage"`
	About    AboutCopy    `json:"about"`
	FAQ      []FAQItem    `json:"faq"`
	Contact  ContactInfo  `json:"contact"`
	Legal    LegalCopy    `json:"legal"`
}

// HomepageCopy holds the hero and section headings on the homepage.
type HomepageCopy struct {
	HeroTitle       string `json:"hero_title"`
	HeroSubtitle    string `json:"hero_subtitle"`
	TeachersHeading string `json:"teachers_heading"`
	CoursesHeading  string `json:"courses_heading"`
	CTALabel        string `json:"cta_label"`
}

// AboutCopy holds the about-page copy.
type AboutCopy struct {
	Title   string `json:"title"`
	Mission string `json:"mission"`
	Story   string `json:"story"`
}

// FAQItem is one question/answer pair.
type FAQItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ContactInfo holds the contact-page details.
type ContactInfo struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	WhatsApp string `json:"whatsapp"`
	Address  string `json:"address"`
}

// LegalCopy holds the legal text pages.
type LegalCopy struct {
	Privacy       string `json:"privacy"`
	Terms         string `json:"terms"`
	PaymentRefund string `json:"payment_refund"`
}

// SiteContentRecord is the stored document plus its version counter.
// The version is bumped on every admin edit and keys both the projection
// cache and the on-demand translation cache.
type SiteContentRecord struct {
	Content   SiteContent
	Version   int64
	UpdatedAt time.Time
}
