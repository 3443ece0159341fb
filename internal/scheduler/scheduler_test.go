// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/jotutor/jotutor/internal/model"
	"github.com/jotutor/jotutor/internal/payment"
	"github.com/jotutor/jotutor/internal/store"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "jotutor-scheduler-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	f.Close()

	db, err := store.NewDB(dbPath)
	if err != nil {
		os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}
	if err := store.Migrate(db); err != nil {
		db.Close()
		os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
		os.Remove(dbPath)
	})
	return db
}

func TestStartAndStop(t *testing.T) {
	db := testDB(t)
	s := New(DefaultConfig(), payment.NewService(db, nil), nil, nil, slog.Default())

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got := len(s.cron.Entries()); got != 1 {
		t.Errorf("jobs = %d, want 1 (payment sweep only)", got)
	}
	s.Stop()
}

func TestRunPaymentSweep(t *testing.T) {
	db := testDB(t)
	queries := store.New(db)

	_, err := queries.CreatePayment(context.Background(), store.CreatePaymentParams{
		ID: "p-stale", CourseID: "c1", StudentName: "A", StudentEmail: "a@example.com",
		Amount: 20, Currency: payment.DefaultCurrency, Method: model.PaymentMethodCard,
		CreatedAt: time.Now().UTC().Add(-3 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}

	s := New(DefaultConfig(), payment.NewService(db, nil), nil, nil, slog.Default())
	s.runPaymentSweep()

	got, err := queries.GetPaymentByID(context.Background(), "p-stale")
	if err != nil {
		t.Fatalf("GetPaymentByID: %v", err)
	}
	if got.Status != model.PaymentStatusFailed {
		t.Errorf("status = %q, want failed", got.Status)
	}
}
