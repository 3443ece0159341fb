// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

// Package store provides database access for all collections. Queries
// wraps a database handle with typed methods; content collections use
// string document ids and support a reconcile-by-id overwrite.
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/jotutor/jotutor/internal/model"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries provides typed database access.
type Queries struct {
	db DBTX
}

// New creates Queries backed by the given handle.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns Queries backed by the given transaction.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// -----------------------------------------------------------------------------
// Users
// -----------------------------------------------------------------------------

const userColumns = `id, email, password_hash, role, name, created_at, updated_at, last_login_at`

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.Name,
		&u.CreatedAt, &u.UpdatedAt, &u.LastLoginAt)
	return u, err
}

// CreateUserParams holds the fields for a new console user.
type CreateUserParams struct {
	Email        string
	PasswordHash string
	Role         string
	Name         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateUser inserts a console user and returns it.
func (q *Queries) CreateUser(ctx context.Context, p CreateUserParams) (model.User, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, role, name, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.Email, p.PasswordHash, p.Role, p.Name, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return q.GetUserByID(ctx, id)
}

// GetUserByID fetches a user by id.
func (q *Queries) GetUserByID(ctx context.Context, id int64) (model.User, error) {
	return scanUser(q.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

// GetUserByEmail fetches a user by email.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return scanUser(q.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

// ListUsers returns all console users ordered by creation time.
func (q *Queries) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUserParams holds editable user fields.
type UpdateUserParams struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         string
	Name         string
	UpdatedAt    time.Time
}

// UpdateUser updates a console user.
func (q *Queries) UpdateUser(ctx context.Context, p UpdateUserParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE users SET email = ?, password_hash = ?, role = ?, name = ?, updated_at = ?
		 WHERE id = ?`,
		p.Email, p.PasswordHash, p.Role, p.Name, p.UpdatedAt, p.ID)
	return err
}

// DeleteUser removes a console user.
func (q *Queries) DeleteUser(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	return err
}

// TouchUserLogin records a successful login.
func (q *Queries) TouchUserLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE users SET last_login_at = ? WHERE id = ?`, at, id)
	return err
}

// -----------------------------------------------------------------------------
// Events
// -----------------------------------------------------------------------------

// CreateEventParams holds the fields for a new event-log entry.
type CreateEventParams struct {
	Level     string
	Category  string
	Message   string
	UserID    sql.NullInt64
	Metadata  string
	CreatedAt time.Time
}

// CreateEvent inserts an event-log entry.
func (q *Queries) CreateEvent(ctx context.Context, p CreateEventParams) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO events (level, category, message, user_id, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.Level, p.Category, p.Message, p.UserID, p.Metadata, p.CreatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListEvents returns the most recent events, newest first.
func (q *Queries) ListEvents(ctx context.Context, limit, offset int64) ([]model.Event, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, level, category, message, user_id, metadata, created_at
		 FROM events ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Level, &e.Category, &e.Message,
			&e.UserID, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// CountEvents returns the total number of event-log entries.
func (q *Queries) CountEvents(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n)
	return n, err
}

// -----------------------------------------------------------------------------
// Collection versions
// -----------------------------------------------------------------------------

// GetCollectionVersion returns the version counter for a collection.
// Collections that were never written report version 1.
func (q *Queries) GetCollectionVersion(ctx context.Context, collection string) (int64, error) {
	var v int64
	err := q.db.QueryRowContext(ctx,
		`SELECT version FROM collection_versions WHERE collection = ?`, collection).Scan(&v)
	if err == sql.ErrNoRows {
		return 1, nil
	}
	return v, err
}

// BumpCollectionVersion increments a collection's version counter.
// Every admin write goes through this so the projection cache keyed by
// (collection, version, lang) never serves stale data.
func (q *Queries) BumpCollectionVersion(ctx context.Context, collection string) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO collection_versions (collection, version) VALUES (?, 2)
		 ON CONFLICT(collection) DO UPDATE SET version = version + 1`, collection)
	return err
}
