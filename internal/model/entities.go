// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models and types used throughout the
// application: the localizable marketplace entities (Teacher, Course,
// Testimonial, Post), onboarding option lists, site copy, payments and
// console users.
package model

import (
	"time"

	"github.com/jotutor/jotutor/internal/locale"
)

// Teacher represents a tutor listed on the marketplace. Name gates the
// record's visibility per language.
type Teacher struct {
	ID              string      `json:"id"`
	Name            locale.Text `json:"name"`
	Subject         locale.Text `json:"subject"`
	Bio             locale.Text `json:"bio"`
	PhotoURL        string      `json:"photo_url"`
	YearsExperience int         `json:"years_experience"`
	Published       bool        `json:"published"`
	Position        int         `json:"position"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// TitleField returns the visibility-gating field for the teacher.
func (t Teacher) TitleField() locale.Text { return t.Name }

// Course represents a purchasable course. Title gates visibility.
type Course struct {
	ID          string      `json:"id"`
	Title       locale.Text `json:"title"`
	Description locale.Text `json:"description"`
	Stage       locale.Text `json:"stage"`
	TeacherID   string      `json:"teacher_id"`
	PriceJOD    float64     `json:"price_jod"`
	VideoURL    string      `json:"video_url"`
	Published   bool        `json:"published"`
	Position    int         `json:"position"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// TitleField returns the visibility-gating field for the course.
func (c Course) TitleField() locale.Text { return c.Title }

// Testimonial is a student quote shown on the homepage. The author name
// gates visibility.
type Testimonial struct {
	ID        string      `json:"id"`
	Author    locale.Text `json:"author"`
	Quote     locale.Text `json:"quote"`
	Rating    int         `json:"rating"`
	Published bool        `json:"published"`
	Position  int         `json:"position"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// TitleField returns the visibility-gating field for the testimonial.
func (t Testimonial) TitleField() locale.Text { return t.Author }

// Post is a blog article. The body is markdown, rendered and sanitized
// at view time. Title gates visibility.
type Post struct {
	ID        string      `json:"id"`
	Title     locale.Text `json:"title"`
	Excerpt   locale.Text `json:"excerpt"`
	Body      locale.Text `json:"body"`
	CoverURL  string      `json:"cover_url"`
	Published bool        `json:"published"`
	Position  int         `json:"position"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// TitleField returns the visibility-gating field for the post.
func (p Post) TitleField() locale.Text { return p.Title }

// OnboardingOptions holds the parallel option lists consumed by the
// signup wizard. Lists are swapped wholesale per language, with no
// per-item visibility gating.
type OnboardingOptions struct {
	ServiceTypes    locale.List `json:"service_types"`
	EducationStages locale.List `json:"education_stages"`
	Curriculums     locale.List `json:"curriculums"`
	Subjects        locale.List `json:"subjects"`
}

// Resolve returns the option lists for one language.
func (o OnboardingOptions) Resolve(lang locale.Lang) ResolvedOptions {
	return ResolvedOptions{
		ServiceTypes:    o.ServiceTypes.Resolve(lang),
		EducationStages: o.EducationStages.Resolve(lang),
		Curriculums:     o.Curriculums.Resolve(lang),
		Subjects:        o.Subjects.Resolve(lang),
	}
}

// ResolvedOptions is the single-language projection of OnboardingOptions.
type ResolvedOptions struct {
	ServiceTypes    []string `json:"service_types"`
	EducationStages []string `json:"education_stages"`
	Curriculums     []string `json:"curriculums"`
	Subjects        []string `json:"subjects"`
}
