// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jotutor/jotutor/internal/model"
	"github.com/jotutor/jotutor/internal/store"
)

// ErrCheckoutInFlight is returned when the same buyer resubmits a
// checkout for the same course while the first attempt is still with
// the gateway.
var ErrCheckoutInFlight = errors.New("payment: checkout already in progress")

// DefaultCurrency is the Jordanian dinar.
const DefaultCurrency = "JOD"

// CheckoutRequest is a validated checkout form submission.
type CheckoutRequest struct {
	CourseID     string  `validate:"required"`
	StudentName  string  `validate:"required,min=2,max=120"`
	StudentEmail string  `validate:"required,email"`
	Amount       float64 `validate:"required,gt=0"`
	Method       string  `validate:"required,oneof=card bank_transfer"`
	Card         *CardDetails
}

// Service runs checkouts and owns all payment writes.
type Service struct {
	db       *sql.DB
	queries  *store.Queries
	gateway  Gateway
	validate *validator.Validate

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewService wires the payment service. gateway may be nil, in which
// case card checkouts fail with a configuration error while the
// bank-transfer flow keeps working.
func NewService(db *sql.DB, gateway Gateway) *Service {
	return &Service{
		db:       db,
		queries:  store.New(db),
		gateway:  gateway,
		validate: validator.New(),
		inflight: make(map[string]struct{}),
	}
}

// inflightKey identifies one buyer/course pair for the resubmission guard.
func inflightKey(req CheckoutRequest) string {
	return strings.ToLower(strings.TrimSpace(req.StudentEmail)) + "|" + req.CourseID
}

func (s *Service) acquire(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[key]; busy {
		return false
	}
	s.inflight[key] = struct{}{}
	return true
}

func (s *Service) release(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, key)
}

// Checkout runs one checkout attempt end to end. For card payments the
// attempt is recorded as initiated, submitted to the gateway, then
// finalized with the gateway's terminal status. For bank transfers the
// attempt stays initiated until the transfer is confirmed out of band.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (model.Payment, error) {
	if err := s.validate.Struct(req); err != nil {
		return model.Payment{}, fmt.Errorf("payment: invalid checkout: %w", err)
	}
	if req.Method == model.PaymentMethodCard && req.Card == nil {
		return model.Payment{}, fmt.Errorf("payment: card details required")
	}

	key := inflightKey(req)
	if !s.acquire(key) {
		return model.Payment{}, ErrCheckoutInFlight
	}
	defer s.release(key)

	orderID := NewTransferReference()
	created, err := s.queries.CreatePayment(ctx, store.CreatePaymentParams{
		ID:           uuid.NewString(),
		CourseID:     req.CourseID,
		StudentName:  strings.TrimSpace(req.StudentName),
		StudentEmail: strings.ToLower(strings.TrimSpace(req.StudentEmail)),
		Amount:       req.Amount,
		Currency:     DefaultCurrency,
		Method:       req.Method,
		OrderID:      sql.NullString{String: orderID, Valid: true},
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return model.Payment{}, fmt.Errorf("payment: create: %w", err)
	}

	if req.Method == model.PaymentMethodBank {
		return created, nil
	}

	return s.submitCard(ctx, created, *req.Card)
}

func (s *Service) submitCard(ctx context.Context, p model.Payment, card CardDetails) (model.Payment, error) {
	if s.gateway == nil {
		return p, fmt.Errorf("payment: card gateway not configured")
	}

	result, err := s.gateway.Submit(ctx, GatewayRequest{
		OrderID:  p.OrderID.String,
		Amount:   p.Amount,
		Currency: p.Currency,
		Card:     card,
	})
	if err != nil {
		// The gateway's verdict is unknown. The attempt stays initiated
		// and is swept to failed if no callback arrives.
		slog.Warn("card gateway unreachable",
			"category", "payment", "payment_id", p.ID, "error", err)
		return p, fmt.Errorf("payment: gateway: %w", err)
	}

	if err := s.Finalize(ctx, p.ID, result.Status, result.TransactionID); err != nil {
		return p, err
	}
	return s.queries.GetPaymentByID(ctx, p.ID)
}

// Finalize records the terminal status for one payment. The write is
// one-shot: a payment that already left the initiated state is never
// touched again and store.ErrPaymentFinalized is returned.
func (s *Service) Finalize(ctx context.Context, id, status, transactionID string) error {
	switch status {
	case model.PaymentStatusSuccess, model.PaymentStatusPending, model.PaymentStatusFailed:
	default:
		return fmt.Errorf("payment: not a terminal status: %q", status)
	}

	err := s.queries.FinalizePayment(ctx, store.FinalizePaymentParams{
		ID:            id,
		Status:        status,
		TransactionID: sql.NullString{String: transactionID, Valid: transactionID != ""},
		CompletedAt:   time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("payment: finalize %s: %w", id, err)
	}

	slog.Info("payment finalized", "category", "payment", "payment_id", id, "status", status)
	return nil
}

// HandleCallback applies a gateway callback addressed by order id.
// A callback for an already-finalized payment is acknowledged without
// effect so gateway retries stay idempotent.
func (s *Service) HandleCallback(ctx context.Context, orderID, status, transactionID string) (model.Payment, error) {
	p, err := s.queries.GetPaymentByOrderID(ctx, orderID)
	if err != nil {
		return model.Payment{}, fmt.Errorf("payment: callback order %q: %w", orderID, err)
	}

	err = s.Finalize(ctx, p.ID, status, transactionID)
	if err != nil && !errors.Is(err, store.ErrPaymentFinalized) {
		return model.Payment{}, err
	}
	return s.queries.GetPaymentByID(ctx, p.ID)
}

// Get fetches one payment.
func (s *Service) Get(ctx context.Context, id string) (model.Payment, error) {
	return s.queries.GetPaymentByID(ctx, id)
}

// SweepStale fails initiated payments older than maxAge. It returns how
// many were swept. Attempts finalized between the listing and the write
// are skipped.
func (s *Service) SweepStale(ctx context.Context, maxAge time.Duration) (int, error) {
	stale, err := s.queries.ListStaleInitiatedPayments(ctx, time.Now().UTC().Add(-maxAge))
	if err != nil {
		return 0, fmt.Errorf("payment: list stale: %w", err)
	}

	swept := 0
	for _, p := range stale {
		err := s.queries.FinalizePayment(ctx, store.FinalizePaymentParams{
			ID:          p.ID,
			Status:      model.PaymentStatusFailed,
			CompletedAt: time.Now().UTC(),
		})
		if errors.Is(err, store.ErrPaymentFinalized) {
			continue
		}
		if err != nil {
			return swept, fmt.Errorf("payment: sweep %s: %w", p.ID, err)
		}
		swept++
	}

	if swept > 0 {
		slog.Warn("stale payments swept to failed", "category", "payment", "count", swept)
	}
	return swept, nil
}
