// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Payment statuses. A payment starts as initiated and moves to exactly
// one terminal status returned by the gateway; it never transitions
// twice.
const (
	PaymentStatusInitiated = "initiated"
	PaymentStatusSuccess   = "success"
	PaymentStatusPending   = "pending"
	PaymentStatusFailed    = "failed"
)

// Payment methods.
const (
	PaymentMethodCard = "card"
	PaymentMethodBank = "bank_transfer"
)

// Payment represents one checkout attempt for a course.
type Payment struct {
	ID            string         `json:"id"`
	CourseID      string         `json:"course_id"`
	StudentName   string         `json:"student_name"`
	StudentEmail  string         `json:"student_email"`
	Amount        float64        `json:"amount"`
	Currency      string         `json:"currency"`
	Method        string         `json:"method"`
	Status        string         `json:"status"`
	OrderID       sql.NullString `json:"order_id,omitempty"`
	TransactionID sql.NullString `json:"transaction_id,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	CompletedAt   sql.NullTime   `json:"completed_at,omitempty"`
}

// IsTerminal reports whether the payment has reached its final status.
func (p *Payment) IsTerminal() bool {
	return p.Status != PaymentStatusInitiated
}
