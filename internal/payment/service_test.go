// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

package payment

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jotutor/jotutor/internal/model"
	"github.com/jotutor/jotutor/internal/store"
)

// testDB creates a temporary test database.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "jotutor-payment-test-*.db")
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

// fakeGateway returns a scripted verdict and can block until released
// to let tests observe the in-flight window.
type fakeGateway struct {
	result  *GatewayResult
	err     error
	block   chan struct{}
	calls   int
	callsMu sync.Mutex
}

func (g *fakeGateway) Submit(_ context.Context, req GatewayRequest) (*GatewayResult, error) {
	g.callsMu.Lock()
	g.calls++
	g.callsMu.Unlock()
	if g.block != nil {
		<-g.block
	}
	if g.err != nil {
		return nil, g.err
	}
	result := *g.result
	if result.OrderID == "" {
		result.OrderID = req.OrderID
	}
	return &result, nil
}

func cardRequest() CheckoutRequest {
	return CheckoutRequest{
		CourseID:     "course-1",
		StudentName:  "Lina Haddad",
		StudentEmail: "lina@example.com",
		Amount:       45,
		Method:       model.PaymentMethodCard,
		Card: &CardDetails{
			HolderName:  "Lina Haddad",
			Number:      "4111111111111111",
			ExpiryMonth: 12,
			ExpiryYear:  2028,
			CVV:         "123",
		},
	}
}

func TestCheckoutCardSuccess(t *testing.T) {
	svc := NewService(testDB(t), &fakeGateway{
		result: &GatewayResult{Status: model.PaymentStatusSuccess, TransactionID: "txn-42"},
	})

	p, err := svc.Checkout(context.Background(), cardRequest())
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if p.Status != model.PaymentStatusSuccess {
		t.Errorf("status = %q, want success", p.Status)
	}
	if p.TransactionID.String != "txn-42" {
		t.Errorf("transaction id = %q", p.TransactionID.String)
	}
	if p.Currency != DefaultCurrency {
		t.Errorf("currency = %q", p.Currency)
	}
	if !p.CompletedAt.Valid {
		t.Error("completed_at not set")
	}
}

func TestCheckoutCardPendingIsTerminal(t *testing.T) {
	svc := NewService(testDB(t), &fakeGateway{
		result: &GatewayResult{Status: model.PaymentStatusPending},
	})

	p, err := svc.Checkout(context.Background(), cardRequest())
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if p.Status != model.PaymentStatusPending {
		t.Fatalf("status = %q, want pending", p.Status)
	}

	// A later verdict must not overwrite the terminal status.
	err = svc.Finalize(context.Background(), p.ID, model.PaymentStatusSuccess, "late")
	if !errors.Is(err, store.ErrPaymentFinalized) {
		t.Fatalf("second finalize: err = %v, want ErrPaymentFinalized", err)
	}
}

func TestCheckoutGatewayErrorLeavesInitiated(t *testing.T) {
	db := testDB(t)
	svc := NewService(db, &fakeGateway{err: errors.New("connection refused")})

	p, err := svc.Checkout(context.Background(), cardRequest())
	if err == nil {
		t.Fatal("expected gateway error")
	}

	stored, err := store.New(db).GetPaymentByID(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("GetPaymentByID: %v", err)
	}
	if stored.Status != model.PaymentStatusInitiated {
		t.Errorf("status = %q, want initiated", stored.Status)
	}
}

func TestCheckoutValidation(t *testing.T) {
	svc := NewService(testDB(t), &fakeGateway{result: &GatewayResult{Status: model.PaymentStatusSuccess}})

	tests := []struct {
		name   string
		mutate func(*CheckoutRequest)
	}{
		{"missing course", func(r *CheckoutRequest) { r.CourseID = "" }},
		{"bad email", func(r *CheckoutRequest) { r.StudentEmail = "not-an-email" }},
		{"zero amount", func(r *CheckoutRequest) { r.Amount = 0 }},
		{"unknown method", func(r *CheckoutRequest) { r.Method = "cheque" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := cardRequest()
			tt.mutate(&req)
			if _, err := svc.Checkout(context.Background(), req); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestCheckoutDuplicateSubmissionRejected(t *testing.T) {
	gw := &fakeGateway{
		result: &GatewayResult{Status: model.PaymentStatusSuccess},
		block:  make(chan struct{}),
	}
	svc := NewService(testDB(t), gw)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Checkout(context.Background(), cardRequest())
		done <- err
	}()

	// Wait for the first attempt to reach the gateway.
	deadline := time.After(2 * time.Second)
	for {
		gw.callsMu.Lock()
		calls := gw.calls
		gw.callsMu.Unlock()
		if calls > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("first checkout never reached the gateway")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if _, err := svc.Checkout(context.Background(), cardRequest()); !errors.Is(err, ErrCheckoutInFlight) {
		t.Fatalf("duplicate checkout: err = %v, want ErrCheckoutInFlight", err)
	}

	close(gw.block)
	if err := <-done; err != nil {
		t.Fatalf("first checkout: %v", err)
	}

	// With the first attempt settled the same buyer can try again.
	if _, err := svc.Checkout(context.Background(), cardRequest()); err != nil {
		t.Fatalf("retry after settle: %v", err)
	}
}

func TestCheckoutBankTransferStaysInitiated(t *testing.T) {
	svc := NewService(testDB(t), nil)

	req := cardRequest()
	req.Method = model.PaymentMethodBank
	req.Card = nil

	p, err := svc.Checkout(context.Background(), req)
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if p.Status != model.PaymentStatusInitiated {
		t.Errorf("status = %q, want initiated", p.Status)
	}
	if !p.OrderID.Valid || p.OrderID.String == "" {
		t.Error("bank transfer has no reference")
	}

	instr := NewTransferInstructions(p, BankAccount{
		BankName:    "Jordan Kuwait Bank",
		AccountName: "JoTutor LLC",
		IBAN:        "JO94CBJO0010000000000131000302",
	})
	png, err := instr.QRCodePNG(256)
	if err != nil {
		t.Fatalf("QRCodePNG: %v", err)
	}
	if len(png) == 0 {
		t.Error("empty QR image")
	}
}

func TestHandleCallbackIdempotent(t *testing.T) {
	db := testDB(t)
	svc := NewService(db, nil)

	req := cardRequest()
	req.Method = model.PaymentMethodBank
	req.Card = nil
	p, err := svc.Checkout(context.Background(), req)
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	first, err := svc.HandleCallback(context.Background(), p.OrderID.String, model.PaymentStatusSuccess, "txn-1")
	if err != nil {
		t.Fatalf("first callback: %v", err)
	}
	if first.Status != model.PaymentStatusSuccess {
		t.Fatalf("status = %q", first.Status)
	}

	// A gateway retry with a contradictory verdict is acknowledged but
	// changes nothing.
	second, err := svc.HandleCallback(context.Background(), p.OrderID.String, model.PaymentStatusFailed, "txn-2")
	if err != nil {
		t.Fatalf("second callback: %v", err)
	}
	if second.Status != model.PaymentStatusSuccess || second.TransactionID.String != "txn-1" {
		t.Errorf("retry rewrote payment: %+v", second)
	}
}

func TestSweepStale(t *testing.T) {
	db := testDB(t)
	svc := NewService(db, nil)
	queries := store.New(db)

	old, err := queries.CreatePayment(context.Background(), store.CreatePaymentParams{
		ID: "p-old", CourseID: "c1", StudentName: "A", StudentEmail: "a@example.com",
		Amount: 10, Currency: DefaultCurrency, Method: model.PaymentMethodCard,
		CreatedAt: time.Now().UTC().Add(-2 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}
	fresh, err := queries.CreatePayment(context.Background(), store.CreatePaymentParams{
		ID: "p-fresh", CourseID: "c1", StudentName: "B", StudentEmail: "b@example.com",
		Amount: 10, Currency: DefaultCurrency, Method: model.PaymentMethodCard,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}

	swept, err := svc.SweepStale(context.Background(), time.Hour)
	if err != nil {
		t.Fatalf("SweepStale: %v", err)
	}
	if swept != 1 {
		t.Fatalf("swept = %d, want 1", swept)
	}

	gotOld, _ := queries.GetPaymentByID(context.Background(), old.ID)
	if gotOld.Status != model.PaymentStatusFailed {
		t.Errorf("old status = %q, want failed", gotOld.Status)
	}
	gotFresh, _ := queries.GetPaymentByID(context.Background(), fresh.ID)
	if gotFresh.Status != model.PaymentStatusInitiated {
		t.Errorf("fresh status = %q, want initiated", gotFresh.Status)
	}
}
