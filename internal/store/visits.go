// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/jotutor/jotutor/internal/model"
)

// CreateVisitParams holds one recorded page view.
type CreateVisitParams struct {
	Path      string
	Page      string
	Lang      string
	Browser   string
	OS        string
	Country   string
	CreatedAt time.Time
}

// CreateVisit records a page view.
func (q *Queries) CreateVisit(ctx context.Context, p CreateVisitParams) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO visits (path, page, lang, browser, os, country, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.Path, p.Page, p.Lang, p.Browser, p.OS, p.Country, p.CreatedAt)
	return err
}

// VisitCount is an aggregate row for the admin analytics view.
type VisitCount struct {
	Key   string
	Count int64
}

func (q *Queries) countVisitsBy(ctx context.Context, column string, since time.Time) ([]VisitCount, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+column+`, COUNT(*) AS n FROM visits
		 WHERE created_at >= ? GROUP BY `+column+` ORDER BY n DESC`, since)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var counts []VisitCount
	for rows.Next() {
		var c VisitCount
		if err := rows.Scan(&c.Key, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// CountVisitsByPage aggregates page views per page since a point in time.
func (q *Queries) CountVisitsByPage(ctx context.Context, since time.Time) ([]VisitCount, error) {
	return q.countVisitsBy(ctx, "page", since)
}

// CountVisitsByCountry aggregates page views per country since a point in time.
func (q *Queries) CountVisitsByCountry(ctx context.Context, since time.Time) ([]VisitCount, error) {
	return q.countVisitsBy(ctx, "country", since)
}

// CountVisitsByLang aggregates page views per language since a point in time.
func (q *Queries) CountVisitsByLang(ctx context.Context, since time.Time) ([]VisitCount, error) {
	return q.countVisitsBy(ctx, "lang", since)
}

// CountVisits returns the total page views since a point in time.
func (q *Queries) CountVisits(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM visits WHERE created_at >= ?`, since).Scan(&n)
	return n, err
}

// ListRecentVisits returns the latest page views for the admin console.
func (q *Queries) ListRecentVisits(ctx context.Context, limit int64) ([]model.Visit, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, path, page, lang, browser, os, country, created_at
		 FROM visits ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var visits []model.Visit
	for rows.Next() {
		var v model.Visit
		if err := rows.Scan(&v.ID, &v.Path, &v.Page, &v.Lang, &v.Browser,
			&v.OS, &v.Country, &v.CreatedAt); err != nil {
			return nil, err
		}
		visits = append(visits, v)
	}
	return visits, rows.Err()
}

// DeleteVisitsBefore prunes page views older than the cutoff.
func (q *Queries) DeleteVisitsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`DELETE FROM visits WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
