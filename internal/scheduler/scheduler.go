// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the periodic maintenance jobs: failing stale
// checkout attempts, pruning raw visit rows, and reloading the GeoIP
// database after updates.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jotutor/jotutor/internal/analytics"
	"github.com/jotutor/jotutor/internal/geoip"
	"github.com/jotutor/jotutor/internal/payment"
)

// Config sets the job cadences and retention windows.
type Config struct {
	// PaymentMaxAge is how long an initiated payment may wait for a
	// gateway verdict before the sweep fails it.
	PaymentMaxAge time.Duration
	// VisitRetention is how long raw visit rows are kept.
	VisitRetention time.Duration
}

// DefaultConfig matches the sweep and retention cadences used in
// production.
func DefaultConfig() Config {
	return Config{
		PaymentMaxAge:  time.Hour,
		VisitRetention: 90 * 24 * time.Hour,
	}
}

// Scheduler hosts the cron jobs.
type Scheduler struct {
	cron     *cron.Cron
	cfg      Config
	payments *payment.Service
	tracker  *analytics.Tracker
	geo      *geoip.Lookup
	logger   *slog.Logger
}

// New wires the scheduler. tracker and geo may be nil; their jobs are
// skipped.
func New(cfg Config, payments *payment.Service, tracker *analytics.Tracker, geo *geoip.Lookup, logger *slog.Logger) *Scheduler {
	if cfg.PaymentMaxAge <= 0 {
		cfg.PaymentMaxAge = DefaultConfig().PaymentMaxAge
	}
	if cfg.VisitRetention <= 0 {
		cfg.VisitRetention = DefaultConfig().VisitRetention
	}
	return &Scheduler{
		cron:     cron.New(),
		cfg:      cfg,
		payments: payments,
		tracker:  tracker,
		geo:      geo,
		logger:   logger,
	}
}

// Start registers the jobs and begins the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("*/10 * * * *", s.runPaymentSweep); err != nil {
		return err
	}
	if s.tracker != nil {
		if _, err := s.cron.AddFunc("30 3 * * *", s.runVisitPrune); err != nil {
			return err
		}
	}
	if s.geo != nil {
		if _, err := s.cron.AddFunc("0 4 * * *", s.runGeoIPReload); err != nil {
			return err
		}
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runPaymentSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	swept, err := s.payments.SweepStale(ctx, s.cfg.PaymentMaxAge)
	if err != nil {
		s.logger.Error("payment sweep failed", "category", "payment", "error", err)
		return
	}
	if swept > 0 {
		s.logger.Info("payment sweep", "swept", swept)
	}
}

func (s *Scheduler) runVisitPrune() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	deleted, err := s.tracker.Prune(ctx, s.cfg.VisitRetention)
	if err != nil {
		s.logger.Error("visit prune failed", "error", err)
		return
	}
	if deleted > 0 {
		s.logger.Info("visit prune", "deleted", deleted)
	}
}

func (s *Scheduler) runGeoIPReload() {
	if err := s.geo.Reload(); err != nil {
		s.logger.Error("geoip reload failed", "error", err)
	}
}
