// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

// Package locale defines the bilingual text model used across the site.
// Arabic is the primary language: a record exists only if its Arabic
// title-equivalent field is populated. English is an optional overlay
// resolved field by field with a fallback to the Arabic value.
package locale

import "strings"

// Lang identifies one of the two site languages.
type Lang string

// Site languages. Arabic is primary, English secondary.
const (
	Arabic  Lang = "ar"
	English Lang = "en"
)

// Parse returns the Lang for a code, defaulting to Arabic for anything
// that is not a recognized language code.
func Parse(code string) Lang {
	if strings.ToLower(code) == string(English) {
		return English
	}
	return Arabic
}

// Valid reports whether l is one of the two site languages.
func (l Lang) Valid() bool {
	return l == Arabic || l == English
}

// Direction returns "rtl" for Arabic and "ltr" for English.
func (l Lang) Direction() string {
	if l == English {
		return "ltr"
	}
	return "rtl"
}

// Text is a typed pair of language variants for a single field.
// The zero value is an empty field in both languages.
type Text struct {
	Ar string `json:"ar"`
	En string `json:"en,omitempty"`
}

// T is a convenience constructor for a Text with both variants set.
func T(ar, en string) Text {
	return Text{Ar: ar, En: en}
}

// Resolve returns the value for the given language, falling back to the
// Arabic value when the English variant was never authored. The fallback
// is per field: a record may show an English title next to an Arabic
// description.
func (t Text) Resolve(lang Lang) string {
	if lang == English && t.En != "" {
		return t.En
	}
	return t.Ar
}

// Visible reports whether this field gates the record into the given
// language. Used on title-equivalent fields only: a record is visible in
// a language exactly when its title in that language is non-blank.
func (t Text) Visible(lang Lang) bool {
	if lang == English {
		return strings.TrimSpace(t.En) != ""
	}
	return strings.TrimSpace(t.Ar) != ""
}

// Empty reports whether the field is blank in both languages.
func (t Text) Empty() bool {
	return strings.TrimSpace(t.Ar) == "" && strings.TrimSpace(t.En) == ""
}

// List is a pair of flat option lists, one per language. Unlike Text it
// is swapped wholesale: the English list replaces the Arabic one outright
// when present, with no per-item fallback.
type List struct {
	Ar []string `json:"ar"`
	En []string `json:"en,omitempty"`
}

// Resolve returns the list for the given language. The English list is
// used only when it is non-empty; otherwise the Arabic list serves both
// languages.
func (l List) Resolve(lang Lang) []string {
	if lang == English && len(l.En) > 0 {
		return l.En
	}
	return l.Ar
}
