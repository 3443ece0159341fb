// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jotutor/jotutor/internal/model"
)

func TestHTTPGatewaySubmit(t *testing.T) {
	tests := []struct {
		name       string
		gwStatus   string
		wantStatus string
	}{
		{"approved maps to success", "approved", model.PaymentStatusSuccess},
		{"success passthrough", "success", model.PaymentStatusSuccess},
		{"in_review maps to pending", "in_review", model.PaymentStatusPending},
		{"declined maps to failed", "declined", model.PaymentStatusFailed},
		{"garbage maps to failed", "wat", model.PaymentStatusFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/v1/charges" {
					t.Errorf("path = %q", r.URL.Path)
				}
				if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
					t.Errorf("auth = %q", got)
				}
				var req GatewayRequest
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					t.Errorf("decode request: %v", err)
				}
				_ = json.NewEncoder(w).Encode(map[string]string{
					"status":         tt.gwStatus,
					"order_id":       req.OrderID,
					"transaction_id": "txn-9",
				})
			}))
			defer srv.Close()

			gw := NewHTTPGateway(GatewayConfig{BaseURL: srv.URL, APIKey: "test-key"})
			result, err := gw.Submit(context.Background(), GatewayRequest{
				OrderID: "JT-ABC", Amount: 30, Currency: DefaultCurrency,
			})
			if err != nil {
				t.Fatalf("Submit: %v", err)
			}
			if result.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", result.Status, tt.wantStatus)
			}
			if result.OrderID != "JT-ABC" || result.TransactionID != "txn-9" {
				t.Errorf("result = %+v", result)
			}
		})
	}
}

func TestHTTPGatewayNon200IsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal", http.StatusBadGateway)
	}))
	defer srv.Close()

	gw := NewHTTPGateway(GatewayConfig{BaseURL: srv.URL, APIKey: "k"})
	if _, err := gw.Submit(context.Background(), GatewayRequest{OrderID: "x"}); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}
