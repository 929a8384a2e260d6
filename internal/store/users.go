// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"occasio/internal/model"
	"occasio/internal/util"
)

// UserStore provides access to user accounts.
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a new UserStore.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

const userColumns = "id, email, password_hash, role, name, created_at, last_login_at"

// CreateMember creates a regular account with an email and password hash.
func (s *UserStore) CreateMember(ctx context.Context, email, passwordHash, name string) (model.User, error) {
	u := model.User{
		Email:        util.NullStringFromValue(email),
		PasswordHash: util.NullStringFromValue(passwordHash),
		Role:         model.RoleMember,
		Name:         name,
		CreatedAt:    time.Now().UTC(),
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, role, name, created_at) VALUES (?, ?, ?, ?, ?)",
		u.Email, u.PasswordHash, u.Role, u.Name, u.CreatedAt,
	)
	if err != nil {
		return model.User{}, writeErr("create user", err)
	}

	u.ID, err = res.LastInsertId()
	if err != nil {
		return model.User{}, writeErr("create user", err)
	}
	return u, nil
}

// CreateGuest creates an anonymous fallback identity with no credentials.
func (s *UserStore) CreateGuest(ctx context.Context, name string) (model.User, error) {
	u := model.User{
		Role:      model.RoleGuest,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO users (role, name, created_at) VALUES (?, ?, ?)",
		u.Role, u.Name, u.CreatedAt,
	)
	if err != nil {
		return model.User{}, writeErr("create guest", err)
	}

	u.ID, err = res.LastInsertId()
	if err != nil {
		return model.User{}, writeErr("create guest", err)
	}
	return u, nil
}

// GetByID returns the user with the given ID, or ErrNotFound.
func (s *UserStore) GetByID(ctx context.Context, id int64) (model.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	return scanUser(row)
}

// GetByEmail returns the user with the given email, or ErrNotFound.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email)
	return scanUser(row)
}

// TouchLastLogin records a successful sign-in.
func (s *UserStore) TouchLastLogin(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, "UPDATE users SET last_login_at = ? WHERE id = ?", time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("touching last login: %w", err)
	}
	return nil
}

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.Name, &u.CreatedAt, &u.LastLoginAt)
	if err != nil {
		return model.User{}, notFound(err)
	}
	return u, nil
}
