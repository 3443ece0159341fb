// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/jotutor/jotutor/internal/locale"
	"github.com/jotutor/jotutor/internal/model"
)

// testDB creates a temporary test database.
func testDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	f, err := os.CreateTemp("", "jotutor-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	f.Close()

	db, err := NewDB(dbPath)
	if err != nil {
		os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}

	return db, cleanup
}

func TestCreateUser(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	now := time.Now()
	user, err := q.CreateUser(ctx, CreateUserParams{
		Email:        "test@jotutor.local",
		PasswordHash: "hashed-password",
		Role:         model.RoleEditor,
		Name:         "Test User",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.ID == 0 {
		t.Error("expected non-zero user ID")
	}
	if user.Email != "test@jotutor.local" {
		t.Errorf("Email = %q, want test@jotutor.local", user.Email)
	}

	got, err := q.GetUserByEmail(ctx, "test@jotutor.local")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("GetUserByEmail ID = %d, want %d", got.ID, user.ID)
	}
}

func TestGetUserByEmailNotFound(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	_, err := New(db).GetUserByEmail(context.Background(), "nobody@jotutor.local")
	if err != sql.ErrNoRows {
		t.Errorf("err = %v, want sql.ErrNoRows", err)
	}
}

func demoTeacher(id, name string, pos int) model.Teacher {
	now := time.Now()
	return model.Teacher{
		ID:        id,
		Name:      locale.Text{Ar: name},
		Subject:   locale.Text{Ar: "رياضيات", En: "Mathematics"},
		Published: true,
		Position:  pos,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestReplaceTeachersReconcilesByID(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	// First write: three teachers.
	first := []model.Teacher{
		demoTeacher("t-a", "أحمد", 1),
		demoTeacher("t-b", "بسام", 2),
		demoTeacher("t-c", "جمانة", 3),
	}
	if err := ReplaceTeachers(ctx, db, first); err != nil {
		t.Fatalf("ReplaceTeachers: %v", err)
	}

	// Second write: t-b removed, t-a renamed, t-d added. The stored set
	// must exactly match the new set afterwards.
	renamed := demoTeacher("t-a", "أحمد المحدث", 1)
	second := []model.Teacher{
		renamed,
		demoTeacher("t-c", "جمانة", 2),
		demoTeacher("t-d", "دانا", 3),
	}
	if err := ReplaceTeachers(ctx, db, second); err != nil {
		t.Fatalf("ReplaceTeachers (second): %v", err)
	}

	got, err := q.ListTeachers(ctx)
	if err != nil {
		t.Fatalf("ListTeachers: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d teachers, want 3", len(got))
	}
	ids := map[string]bool{}
	for _, tc := range got {
		ids[tc.ID] = true
	}
	if ids["t-b"] {
		t.Error("t-b should have been deleted by reconcile")
	}
	if !ids["t-d"] {
		t.Error("t-d should have been inserted by reconcile")
	}

	updated, err := q.GetTeacherByID(ctx, "t-a")
	if err != nil {
		t.Fatalf("GetTeacherByID: %v", err)
	}
	if updated.Name.Ar != "أحمد المحدث" {
		t.Errorf("t-a name = %q, want overwrite to أحمد المحدث", updated.Name.Ar)
	}
}

func TestReplaceTeachersEmptySetClearsTable(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	if err := ReplaceTeachers(ctx, db, []model.Teacher{demoTeacher("t-a", "أحمد", 1)}); err != nil {
		t.Fatalf("ReplaceTeachers: %v", err)
	}
	if err := ReplaceTeachers(ctx, db, nil); err != nil {
		t.Fatalf("ReplaceTeachers (empty): %v", err)
	}
	got, err := New(db).ListTeachers(ctx)
	if err != nil {
		t.Fatalf("ListTeachers: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d teachers, want 0", len(got))
	}
}

func TestReplaceBumpsCollectionVersion(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	v0, err := q.GetCollectionVersion(ctx, CollectionTeachers)
	if err != nil {
		t.Fatalf("GetCollectionVersion: %v", err)
	}
	if v0 != 1 {
		t.Errorf("initial version = %d, want 1", v0)
	}

	if err := ReplaceTeachers(ctx, db, []model.Teacher{demoTeacher("t-a", "أحمد", 1)}); err != nil {
		t.Fatalf("ReplaceTeachers: %v", err)
	}
	v1, err := q.GetCollectionVersion(ctx, CollectionTeachers)
	if err != nil {
		t.Fatalf("GetCollectionVersion: %v", err)
	}
	if v1 <= v0 {
		t.Errorf("version after write = %d, want > %d", v1, v0)
	}

	if err := ReplaceTeachers(ctx, db, nil); err != nil {
		t.Fatalf("ReplaceTeachers: %v", err)
	}
	v2, err := q.GetCollectionVersion(ctx, CollectionTeachers)
	if err != nil {
		t.Fatalf("GetCollectionVersion: %v", err)
	}
	if v2 <= v1 {
		t.Errorf("version after second write = %d, want > %d", v2, v1)
	}
}

func TestOnboardingOptionsRoundTrip(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	opts := model.OnboardingOptions{
		ServiceTypes: locale.List{
			Ar: []string{"دروس خصوصية"},
			En: []string{"Private lessons"},
		},
		Subjects: locale.List{
			Ar: []string{"رياضيات", "فيزياء"},
		},
	}
	if err := ReplaceOnboardingOptions(ctx, db, opts, time.Now()); err != nil {
		t.Fatalf("ReplaceOnboardingOptions: %v", err)
	}

	got, err := New(db).GetOnboardingOptions(ctx)
	if err != nil {
		t.Fatalf("GetOnboardingOptions: %v", err)
	}
	if len(got.ServiceTypes.Ar) != 1 || got.ServiceTypes.Ar[0] != "دروس خصوصية" {
		t.Errorf("ServiceTypes.Ar = %v", got.ServiceTypes.Ar)
	}
	if len(got.Subjects.En) != 0 {
		t.Errorf("Subjects.En = %v, want empty", got.Subjects.En)
	}
}

func TestSiteContentVersioning(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	rec, err := q.GetSiteContent(ctx)
	if err != nil {
		t.Fatalf("GetSiteContent: %v", err)
	}
	if rec.Version != 1 {
		t.Errorf("empty store version = %d, want 1", rec.Version)
	}

	content := model.SiteContent{
		Homepage: model.HomepageCopy{HeroTitle: "تعلّم معنا"},
	}
	v, err := UpdateSiteContent(ctx, db, content, time.Now())
	if err != nil {
		t.Fatalf("UpdateSiteContent: %v", err)
	}

	content.Homepage.HeroTitle = "تعلّم مع الأفضل"
	v2, err := UpdateSiteContent(ctx, db, content, time.Now())
	if err != nil {
		t.Fatalf("UpdateSiteContent (second): %v", err)
	}
	if v2 <= v {
		t.Errorf("version after edit = %d, want > %d", v2, v)
	}

	rec, err = q.GetSiteContent(ctx)
	if err != nil {
		t.Fatalf("GetSiteContent: %v", err)
	}
	if rec.Content.Homepage.HeroTitle != "تعلّم مع الأفضل" {
		t.Errorf("HeroTitle = %q", rec.Content.Homepage.HeroTitle)
	}
	if rec.Version != v2 {
		t.Errorf("stored version = %d, want %d", rec.Version, v2)
	}
}
