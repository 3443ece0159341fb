// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/jotutor/jotutor/internal/model"
)

func createTestPayment(t *testing.T, q *Queries, id string) model.Payment {
	t.Helper()
	p, err := q.CreatePayment(context.Background(), CreatePaymentParams{
		ID:           id,
		CourseID:     "c-tawjihi-math",
		StudentName:  "سارة",
		StudentEmail: "sara@example.com",
		Amount:       45,
		Currency:     "JOD",
		Method:       model.PaymentMethodCard,
		OrderID:      sql.NullString{String: "ord-" + id, Valid: true},
		CreatedAt:    time.Now(),
	})
	if err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}
	return p
}

func TestCreatePaymentStartsInitiated(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	p := createTestPayment(t, New(db), "pay-1")
	if p.Status != model.PaymentStatusInitiated {
		t.Errorf("Status = %q, want initiated", p.Status)
	}
	if p.IsTerminal() {
		t.Error("new payment must not be terminal")
	}
}

func TestFinalizePaymentIsOneShot(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)
	createTestPayment(t, q, "pay-1")

	err := q.FinalizePayment(ctx, FinalizePaymentParams{
		ID:            "pay-1",
		Status:        model.PaymentStatusSuccess,
		TransactionID: sql.NullString{String: "txn-123", Valid: true},
		CompletedAt:   time.Now(),
	})
	if err != nil {
		t.Fatalf("FinalizePayment: %v", err)
	}

	// A second terminal status must not overwrite the first.
	err = q.FinalizePayment(ctx, FinalizePaymentParams{
		ID:          "pay-1",
		Status:      model.PaymentStatusFailed,
		CompletedAt: time.Now(),
	})
	if err != ErrPaymentFinalized {
		t.Errorf("second finalize err = %v, want ErrPaymentFinalized", err)
	}

	got, err := q.GetPaymentByID(ctx, "pay-1")
	if err != nil {
		t.Fatalf("GetPaymentByID: %v", err)
	}
	if got.Status != model.PaymentStatusSuccess {
		t.Errorf("Status = %q, want success to stick", got.Status)
	}
	if got.TransactionID.String != "txn-123" {
		t.Errorf("TransactionID = %q, want txn-123", got.TransactionID.String)
	}
}

func TestFinalizePaymentPendingIsTerminal(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)
	createTestPayment(t, q, "pay-2")

	// Pending is a terminal outcome here, not a transient state.
	if err := q.FinalizePayment(ctx, FinalizePaymentParams{
		ID:          "pay-2",
		Status:      model.PaymentStatusPending,
		CompletedAt: time.Now(),
	}); err != nil {
		t.Fatalf("FinalizePayment: %v", err)
	}

	err := q.FinalizePayment(ctx, FinalizePaymentParams{
		ID:          "pay-2",
		Status:      model.PaymentStatusSuccess,
		CompletedAt: time.Now(),
	})
	if err != ErrPaymentFinalized {
		t.Errorf("finalize after pending err = %v, want ErrPaymentFinalized", err)
	}
}

func TestListStaleInitiatedPayments(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	old, err := q.CreatePayment(ctx, CreatePaymentParams{
		ID:           "pay-old",
		CourseID:     "c-tawjihi-math",
		StudentName:  "سارة",
		StudentEmail: "sara@example.com",
		Amount:       45,
		Currency:     "JOD",
		Method:       model.PaymentMethodCard,
		CreatedAt:    time.Now().Add(-2 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}
	createTestPayment(t, q, "pay-fresh")

	stale, err := q.ListStaleInitiatedPayments(ctx, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("ListStaleInitiatedPayments: %v", err)
	}
	if len(stale) != 1 || stale[0].ID != old.ID {
		t.Errorf("stale = %v, want only pay-old", stale)
	}
}
