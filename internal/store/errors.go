// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a record does not exist or is not visible to
// the requesting user.
var ErrNotFound = errors.New("store: not found")

// WriteError wraps a transport or constraint failure during create/replace.
// No local state is mutated when a WriteError is returned.
type WriteError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *WriteError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *WriteError) Unwrap() error { return e.Err }

// writeErr wraps err into a WriteError unless it is nil.
func writeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &WriteError{Op: op, Err: err}
}

// notFound maps sql.ErrNoRows to ErrNotFound, passing other errors through.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
