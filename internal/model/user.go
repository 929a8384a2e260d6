// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// User roles
const (
	RoleMember = "member"
	RoleGuest  = "guest" // anonymous fallback identity
)

// User represents an account. Guest users have no email or password and are
// created by the anonymous sign-in fallback.
type User struct {
	ID           int64
	Email        sql.NullString
	PasswordHash sql.NullString
	Role         string
	Name         string
	CreatedAt    time.Time
	LastLoginAt  sql.NullTime
}

// IsGuest reports whether the user is an anonymous fallback identity.
func (u User) IsGuest() bool {
	return u.Role == RoleGuest
}
