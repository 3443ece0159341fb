// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

package payment

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/jotutor/jotutor/internal/model"
)

// Bank account the transfer instructions point at.
type BankAccount struct {
	BankName    string
	AccountName string
	IBAN        string
}

// NewTransferReference mints a short order reference the buyer quotes
// on the bank transfer.
func NewTransferReference() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "JT-" + strings.ToUpper(raw[:10])
}

// TransferInstructions is the payload rendered on the bank-transfer
// confirmation page and encoded into its QR code.
type TransferInstructions struct {
	Reference string
	Amount    float64
	Currency  string
	Account   BankAccount
}

// NewTransferInstructions builds the instructions for one initiated
// bank-transfer payment.
func NewTransferInstructions(p model.Payment, account BankAccount) TransferInstructions {
	return TransferInstructions{
		Reference: p.OrderID.String,
		Amount:    p.Amount,
		Currency:  p.Currency,
		Account:   account,
	}
}

// qrText is the machine-readable transfer summary. Banking apps that
// scan arbitrary QR codes show it as text.
func (t TransferInstructions) qrText() string {
	return fmt.Sprintf("JoTutor transfer\nIBAN: %s\nAccount: %s\nAmount: %.2f %s\nReference: %s",
		t.Account.IBAN, t.Account.AccountName, t.Amount, t.Currency, t.Reference)
}

// QRCodePNG renders the transfer details as a PNG QR code.
func (t TransferInstructions) QRCodePNG(size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	png, err := qrcode.Encode(t.qrText(), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("payment: qr encode: %w", err)
	}
	return png, nil
}
