// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

// Package geoip resolves visitor IPs to ISO country codes with a
// MaxMind GeoLite2-Country database. Lookups degrade to an empty code
// when no database is configured.
package geoip

import (
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/oschwald/maxminddb-golang"
)

var privateCIDRs []*net.IPNet

func init() {
	for _, block := range []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"fc00::/7",
		"fe80::/10",
	} {
		if _, cidr, err := net.ParseCIDR(block); err == nil {
			privateCIDRs = append(privateCIDRs, cidr)
		}
	}
}

// Lookup wraps the MaxMind reader behind a reloadable handle.
type Lookup struct {
	mu      sync.RWMutex
	db      *maxminddb.Reader
	path    string
	modTime time.Time
}

type countryRecord struct {
	Country struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"country"`
}

// Open loads the database at path. An empty path returns a disabled
// Lookup that answers every query with an empty code.
func Open(path string) (*Lookup, error) {
	l := &Lookup{path: path}
	if path == "" {
		return l, nil
	}
	if err := l.load(); err != nil {
		return nil, err
	}
	return l, nil
}

// load opens or reopens the database file. Caller holds the write lock
// or owns l exclusively.
func (l *Lookup) load() error {
	info, err := os.Stat(l.path)
	if err != nil {
		return fmt.Errorf("geoip: stat %s: %w", l.path, err)
	}
	if l.db != nil && info.ModTime().Equal(l.modTime) {
		return nil
	}

	db, err := maxminddb.Open(l.path)
	if err != nil {
		return fmt.Errorf("geoip: open %s: %w", l.path, err)
	}
	if l.db != nil {
		_ = l.db.Close()
	}
	l.db = db
	l.modTime = info.ModTime()
	return nil
}

// Reload reopens the database when the file on disk changed. Meant to
// be driven by the scheduler after GeoLite2 updates.
func (l *Lookup) Reload() error {
	if l.path == "" {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load()
}

// Country returns the two-letter ISO code for ip, "LOCAL" for private
// and loopback addresses, and "" when undetermined or disabled.
func (l *Lookup) Country(ip string) string {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return ""
	}
	if parsed.IsLoopback() || isPrivate(parsed) {
		return "LOCAL"
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.db == nil {
		return ""
	}

	var record countryRecord
	if err := l.db.Lookup(parsed, &record); err != nil {
		return ""
	}
	return record.Country.ISOCode
}

// Enabled reports whether a database is loaded.
func (l *Lookup) Enabled() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.db != nil
}

// Close releases the reader.
func (l *Lookup) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.db == nil {
		return nil
	}
	err := l.db.Close()
	l.db = nil
	return err
}

func isPrivate(ip net.IP) bool {
	for _, cidr := range privateCIDRs {
		if cidr.Contains(ip) {
			return true
		}
	}
	return false
}
