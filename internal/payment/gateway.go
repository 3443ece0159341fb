// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

// Package payment implements checkout against the external card gateway
// and the manual bank-transfer flow. A payment is created as initiated
// and moves to exactly one terminal status.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jotutor/jotutor/internal/model"
)

const gatewayTimeout = 60 * time.Second

// CardDetails is what the checkout form collects for a card payment.
// The PAN is forwarded to the gateway and never stored.
type CardDetails struct {
	HolderName  string `json:"holder_name"`
	Number      string `json:"number"`
	ExpiryMonth int    `json:"expiry_month"`
	ExpiryYear  int    `json:"expiry_year"`
	CVV         string `json:"cvv"`
}

// GatewayRequest is one charge submission.
type GatewayRequest struct {
	OrderID  string      `json:"order_id"`
	Amount   float64     `json:"amount"`
	Currency string      `json:"currency"`
	Card     CardDetails `json:"card"`
}

// GatewayResult is the gateway's three-way verdict for one charge.
type GatewayResult struct {
	Status        string
	OrderID       string
	TransactionID string
}

// Gateway is the external card processor. It is opaque: the service only
// constructs the request and interprets the three-way status.
type Gateway interface {
	Submit(ctx context.Context, req GatewayRequest) (*GatewayResult, error)
}

// GatewayConfig holds the HTTP gateway connection settings.
type GatewayConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// MapGatewayStatus maps the processor's status vocabulary onto the
// local one. An unrecognized status counts as failed.
func MapGatewayStatus(s string) string {
	switch s {
	case "success", "approved", "captured":
		return model.PaymentStatusSuccess
	case "pending", "in_review":
		return model.PaymentStatusPending
	default:
		return model.PaymentStatusFailed
	}
}

// HTTPGateway talks JSON to the card processor.
type HTTPGateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPGateway builds the production gateway client.
func NewHTTPGateway(cfg GatewayConfig) *HTTPGateway {
	if cfg.Timeout <= 0 {
		cfg.Timeout = gatewayTimeout
	}
	return &HTTPGateway{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

// Submit sends one charge and maps the gateway's answer onto the local
// status vocabulary.
func (g *HTTPGateway) Submit(ctx context.Context, req GatewayRequest) (*GatewayResult, error) {
	respBody, err := g.doJSONRequest(ctx, g.baseURL+"/v1/charges", req)
	if err != nil {
		return nil, fmt.Errorf("gateway charge: %w", err)
	}

	var result struct {
		Status        string `json:"status"`
		OrderID       string `json:"order_id"`
		TransactionID string `json:"transaction_id"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("gateway decode: %w", err)
	}

	return &GatewayResult{
		Status:        MapGatewayStatus(result.Status),
		OrderID:       result.OrderID,
		TransactionID: result.TransactionID,
	}, nil
}

func (g *HTTPGateway) doJSONRequest(ctx context.Context, url string, body any) ([]byte, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http call: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway error (status %d): %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}
