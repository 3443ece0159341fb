// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

// Package auth provides password hashing and verification for console
// users.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is a deliberate step above the library default; login is
// rare enough that the extra work factor is affordable.
const bcryptCost = 12

// MaxPasswordLength is bcrypt's input limit; longer passwords would be
// silently truncated, so they are rejected instead.
const MaxPasswordLength = 72

// HashPassword creates a bcrypt hash of the password.
func HashPassword(password string) (string, error) {
	if len(password) > MaxPasswordLength {
		return "", fmt.Errorf("password exceeds %d bytes", MaxPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword verifies a password against a stored hash. A mismatch
// returns (false, nil); only malformed hashes produce an error.
func CheckPassword(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("comparing password: %w", err)
}
