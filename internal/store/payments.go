// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jotutor/jotutor/internal/model"
)

// ErrPaymentFinalized is returned when a status write targets a payment
// that already left the initiated state.
var ErrPaymentFinalized = errors.New("payment already finalized")

const paymentColumns = `id, course_id, student_name, student_email, amount,
	currency, method, status, order_id, transaction_id, created_at, completed_at`

func scanPayment(row interface{ Scan(...any) error }) (model.Payment, error) {
	var p model.Payment
	err := row.Scan(&p.ID, &p.CourseID, &p.StudentName, &p.StudentEmail, &p.Amount,
		&p.Currency, &p.Method, &p.Status, &p.OrderID, &p.TransactionID,
		&p.CreatedAt, &p.CompletedAt)
	return p, err
}

// CreatePaymentParams holds the fields for a new checkout attempt.
type CreatePaymentParams struct {
	ID           string
	CourseID     string
	StudentName  string
	StudentEmail string
	Amount       float64
	Currency     string
	Method       string
	OrderID      sql.NullString
	CreatedAt    time.Time
}

// CreatePayment records a checkout attempt in the initiated state.
func (q *Queries) CreatePayment(ctx context.Context, p CreatePaymentParams) (model.Payment, error) {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO payments (id, course_id, student_name, student_email, amount,
			currency, method, status, order_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.CourseID, p.StudentName, p.StudentEmail, p.Amount,
		p.Currency, p.Method, model.PaymentStatusInitiated, p.OrderID, p.CreatedAt)
	if err != nil {
		return model.Payment{}, err
	}
	return q.GetPaymentByID(ctx, p.ID)
}

// GetPaymentByID fetches one payment.
func (q *Queries) GetPaymentByID(ctx context.Context, id string) (model.Payment, error) {
	return scanPayment(q.db.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = ?`, id))
}

// GetPaymentByOrderID fetches the payment matching a gateway order id.
func (q *Queries) GetPaymentByOrderID(ctx context.Context, orderID string) (model.Payment, error) {
	return scanPayment(q.db.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE order_id = ?`, orderID))
}

// FinalizePaymentParams carries the terminal status reported by the
// gateway for one payment.
type FinalizePaymentParams struct {
	ID            string
	Status        string
	TransactionID sql.NullString
	CompletedAt   time.Time
}

// FinalizePayment moves a payment from initiated to its terminal status.
// The guard on the current status makes the transition one-shot: a
// payment that already finalized is left untouched and the call returns
// ErrPaymentFinalized.
func (q *Queries) FinalizePayment(ctx context.Context, p FinalizePaymentParams) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE payments SET status = ?, transaction_id = ?, completed_at = ?
		 WHERE id = ? AND status = ?`,
		p.Status, p.TransactionID, p.CompletedAt, p.ID, model.PaymentStatusInitiated)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPaymentFinalized
	}
	return nil
}

// ListPayments returns the most recent payments, newest first.
func (q *Queries) ListPayments(ctx context.Context, limit, offset int64) ([]model.Payment, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+paymentColumns+` FROM payments
		 ORDER BY created_at DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var payments []model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// ListStaleInitiatedPayments returns initiated payments older than the
// cutoff. The scheduler sweeps these into the failed state.
func (q *Queries) ListStaleInitiatedPayments(ctx context.Context, cutoff time.Time) ([]model.Payment, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+paymentColumns+` FROM payments
		 WHERE status = ? AND created_at < ? ORDER BY created_at`,
		model.PaymentStatusInitiated, cutoff)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var payments []model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// CountPaymentsByStatus returns payment counts grouped by status for the
// admin dashboard.
func (q *Queries) CountPaymentsByStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM payments GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
