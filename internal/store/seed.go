// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jotutor/jotutor/internal/auth"
	"github.com/jotutor/jotutor/internal/locale"
	"github.com/jotutor/jotutor/internal/model"
)

// Default admin credentials
const (
	DefaultAdminEmail    = "admin@jotutor.local"
	DefaultAdminPassword = "changeme"
	DefaultAdminName     = "Administrator"
)

// Seed creates the initial admin user and the empty site-copy document.
func Seed(ctx context.Context, db *sql.DB) error {
	queries := New(db)

	_, err := queries.GetUserByEmail(ctx, DefaultAdminEmail)
	if err == nil {
		slog.Info("admin user already exists, skipping seed")
		return nil
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("checking for admin user: %w", err)
	}

	passwordHash, err := auth.HashPassword(DefaultAdminPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now()
	user, err := queries.CreateUser(ctx, CreateUserParams{
		Email:        DefaultAdminEmail,
		PasswordHash: passwordHash,
		Role:         model.RoleAdmin,
		Name:         DefaultAdminName,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	slog.Info("created default admin user",
		"id", user.ID,
		"email", user.Email,
		"password", DefaultAdminPassword,
	)

	return nil
}

// SeedDemo fills the catalog with a small Arabic-first data set so a
// fresh install renders a working site. Safe to call more than once.
func SeedDemo(ctx context.Context, db *sql.DB) error {
	queries := New(db)

	teachers, err := queries.ListTeachers(ctx)
	if err != nil {
		return fmt.Errorf("checking for demo data: %w", err)
	}
	if len(teachers) > 0 {
		slog.Info("catalog not empty, skipping demo seed")
		return nil
	}

	now := time.Now()

	demoTeachers := []model.Teacher{
		{
			ID:              "t-rami-haddad",
			Name:            locale.Text{Ar: "رامي حداد", En: "Rami Haddad"},
			Subject:         locale.Text{Ar: "الرياضيات", En: "Mathematics"},
			Bio:             locale.Text{Ar: "مدرس رياضيات لطلبة التوجيهي منذ عشر سنوات."},
			YearsExperience: 10,
			Published:       true,
			Position:        1,
			CreatedAt:       now,
			UpdatedAt:       now,
		},
		{
			ID:              "t-lina-nasser",
			Name:            locale.Text{Ar: "لينا ناصر", En: "Lina Nasser"},
			Subject:         locale.Text{Ar: "اللغة الإنجليزية", En: "English"},
			Bio:             locale.Text{Ar: "متخصصة في تأسيس اللغة الإنجليزية للمرحلة الأساسية.", En: "Specialist in foundational English for primary students."},
			YearsExperience: 6,
			Published:       true,
			Position:        2,
			CreatedAt:       now,
			UpdatedAt:       now,
		},
	}
	if err := ReplaceTeachers(ctx, db, demoTeachers); err != nil {
		return fmt.Errorf("seeding teachers: %w", err)
	}

	demoCourses := []model.Course{
		{
			ID:          "c-tawjihi-math",
			Title:       locale.Text{Ar: "رياضيات التوجيهي", En: "Tawjihi Mathematics"},
			Description: locale.Text{Ar: "دورة شاملة لمنهاج الرياضيات العلمي."},
			Stage:       locale.Text{Ar: "التوجيهي", En: "Tawjihi"},
			TeacherID:   "t-rami-haddad",
			PriceJOD:    45,
			Published:   true,
			Position:    1,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
	if err := ReplaceCourses(ctx, db, demoCourses); err != nil {
		return fmt.Errorf("seeding courses: %w", err)
	}

	opts := model.OnboardingOptions{
		ServiceTypes: locale.List{
			Ar: []string{"دروس خصوصية", "دورات مسجلة"},
			En: []string{"Private lessons", "Recorded courses"},
		},
		EducationStages: locale.List{
			Ar: []string{"أساسي", "ثانوي", "توجيهي"},
			En: []string{"Primary", "Secondary", "Tawjihi"},
		},
		Curriculums: locale.List{
			Ar: []string{"المنهاج الأردني", "المنهاج البريطاني"},
			En: []string{"Jordanian curriculum", "British curriculum"},
		},
		Subjects: locale.List{
			Ar: []string{"رياضيات", "فيزياء", "لغة إنجليزية", "لغة عربية"},
			En: []string{"Mathematics", "Physics", "English", "Arabic"},
		},
	}
	if err := ReplaceOnboardingOptions(ctx, db, opts, now); err != nil {
		return fmt.Errorf("seeding onboarding options: %w", err)
	}

	content := model.SiteContent{
		Homepage: model.HomepageCopy{
			HeroTitle:       "تعلّم مع أفضل المدرسين في الأردن",
			HeroSubtitle:    "دروس خصوصية ودورات مسجلة لكل المراحل الدراسية",
			TeachersHeading: "مدرسونا",
			CoursesHeading:  "الدورات",
			CTALabel:        "ابدأ الآن",
		},
		Contact: model.ContactInfo{
			Email: "info@jotutor.local",
		},
	}
	if _, err := UpdateSiteContent(ctx, db, content, now); err != nil {
		return fmt.Errorf("seeding site content: %w", err)
	}

	slog.Info("seeded demo catalog",
		"teachers", len(demoTeachers),
		"courses", len(demoCourses),
	)

	return nil
}
