// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

package geoip

import "testing"

func TestDisabledLookup(t *testing.T) {
	l, err := Open("")
	if err != nil {
		t.Fatalf("Open with empty path: %v", err)
	}
	defer l.Close()

	if l.Enabled() {
		t.Error("Enabled() = true without a database")
	}
	if got := l.Country("8.8.8.8"); got != "" {
		t.Errorf("Country(public) = %q, want empty", got)
	}
}

func TestLocalAddresses(t *testing.T) {
	l, _ := Open("")
	defer l.Close()

	tests := []struct {
		ip   string
		want string
	}{
		{"127.0.0.1", "LOCAL"},
		{"::1", "LOCAL"},
		{"10.1.2.3", "LOCAL"},
		{"192.168.1.50", "LOCAL"},
		{"172.20.0.1", "LOCAL"},
		{"fe80::1", "LOCAL"},
		{"not-an-ip", ""},
	}
	for _, tt := range tests {
		if got := l.Country(tt.ip); got != tt.want {
			t.Errorf("Country(%q) = %q, want %q", tt.ip, got, tt.want)
		}
	}
}

func TestOpenMissingFile(t *testing.T) {
	if _, err := Open("/nonexistent/geolite2.mmdb"); err == nil {
		t.Fatal("expected error for missing database file")
	}
}
