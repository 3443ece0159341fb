// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

// Package nav owns the per-session navigation state: the page currently
// on screen, an optional selected entity id, and the back-history stack.
// All page transitions go through Navigate and Back; the state itself is
// never persisted to the database, only serialized into the session.
package nav

import "encoding/json"

// Page identifies one of the site's pages.
type Page string

// The closed set of page identifiers.
const (
	PageHome           Page = "home"
	PageTeachers       Page = "teachers"
	PageTeacherProfile Page = "teacher-profile"
	PageCourses        Page = "courses"
	PageCourseProfile  Page = "course-profile"
	PagePayment        Page = "payment"
	PageVideos         Page = "videos"
	PageShortPlayer    Page = "short-player"
	PageBlog           Page = "blog"
	PageArticle        Page = "article"
	PageAbout          Page = "about"
	PageContact        Page = "contact"
	PageFAQ            Page = "faq"
	PagePrivacy        Page = "privacy"
	PageTerms          Page = "terms"
	PagePaymentRefund  Page = "payment-refund"
	PageDashboard      Page = "dashboard"
	PageAdminDashboard Page = "admin-dashboard"
)

var allPages = map[Page]bool{
	PageHome: true, PageTeachers: true, PageTeacherProfile: true,
	PageCourses: true, PageCourseProfile: true, PagePayment: true,
	PageVideos: true, PageShortPlayer: true, PageBlog: true,
	PageArticle: true, PageAbout: true, PageContact: true,
	PageFAQ: true, PagePrivacy: true, PageTerms: true,
	PagePaymentRefund: true, PageDashboard: true, PageAdminDashboard: true,
}

// idBearing marks the pages for which SelectedID is meaningful.
var idBearing = map[Page]bool{
	PageTeacherProfile: true,
	PageCourseProfile:  true,
	PagePayment:        true,
	PageShortPlayer:    true,
	PageArticle:        true,
}

// Valid reports whether p is a known page identifier.
func (p Page) Valid() bool {
	return allPages[p]
}

// BearsID reports whether the page carries a selected entity id.
func (p Page) BearsID() bool {
	return idBearing[p]
}

// Entry is one previously-active (page, id) pair on the history stack.
type Entry struct {
	Page Page   `json:"page"`
	ID   string `json:"id,omitempty"`
}

// State holds the navigation state for one session. The history stack
// stores only previous states: the active (Current, SelectedID) pair is
// never an element of History.
type State struct {
	Current    Page    `json:"current"`
	SelectedID string  `json:"selected_id,omitempty"`
	History    []Entry `json:"history,omitempty"`
}

// NewState returns the initial navigation state: the home page with no
// selection and an empty history.
func NewState() *State {
	return &State{Current: PageHome}
}

// Navigate moves to the target page, pushing the state that was active
// onto the history stack. Navigating to the exact state that is already
// active is a no-op, so repeated clicks on the same link never grow the
// stack. Returns true if the state changed.
func (s *State) Navigate(target Page, id string) bool {
	if !target.Valid() {
		return false
	}
	if !target.BearsID() {
		id = ""
	}
	if target == s.Current && id == s.SelectedID {
		return false
	}
	s.History = append(s.History, Entry{Page: s.Current, ID: s.SelectedID})
	s.Current = target
	s.SelectedID = id
	return true
}

// Back pops the most recent entry off the history stack and makes it the
// active state. At the bottom of the stack it is a no-op. Returns true
// if the state changed.
func (s *State) Back() bool {
	if len(s.History) == 0 {
		return false
	}
	last := s.History[len(s.History)-1]
	s.History = s.History[:len(s.History)-1]
	s.Current = last.Page
	s.SelectedID = last.ID
	return true
}

// Depth returns the number of entries on the history stack.
func (s *State) Depth() int {
	return len(s.History)
}

// Encode serializes the state for session storage.
func (s *State) Encode() ([]byte, error) {
	return json.Marshal(s)
}

// Decode restores a state serialized by Encode. Corrupt or empty data
// yields a fresh initial state rather than an error: navigation state is
// ephemeral and safe to reset.
func Decode(data []byte) *State {
	if len(data) == 0 {
		return NewState()
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil || !s.Current.Valid() {
		return NewState()
	}
	return &s
}
