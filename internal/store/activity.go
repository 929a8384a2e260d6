// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"occasio/internal/model"
)

// ActivityStore provides access to the activity (audit) log.
type ActivityStore struct {
	db *sql.DB
}

// NewActivityStore creates a new ActivityStore.
func NewActivityStore(db *sql.DB) *ActivityStore {
	return &ActivityStore{db: db}
}

// Insert writes a new activity log entry.
func (s *ActivityStore) Insert(ctx context.Context, a model.Activity) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	if a.Metadata == "" {
		a.Metadata = "{}"
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO activity_log (level, category, message, user_id, metadata, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		a.Level, a.Category, a.Message, a.UserID, a.Metadata, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting activity: %w", err)
	}
	return nil
}

// ListRecent returns up to limit activity entries, newest first.
func (s *ActivityStore) ListRecent(ctx context.Context, limit int) ([]model.Activity, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, level, category, message, user_id, metadata, created_at FROM activity_log ORDER BY created_at DESC, id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing activity: %w", err)
	}
	return collectActivities(rows)
}

// ListRecentForUser returns up to limit entries attributed to the user,
// newest first. Entries without a user (process-level warnings) are not
// included.
func (s *ActivityStore) ListRecentForUser(ctx context.Context, userID int64, limit int) ([]model.Activity, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, level, category, message, user_id, metadata, created_at FROM activity_log WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?",
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing user activity: %w", err)
	}
	return collectActivities(rows)
}

func collectActivities(rows *sql.Rows) ([]model.Activity, error) {
	defer func() { _ = rows.Close() }()

	var entries []model.Activity
	for rows.Next() {
		var a model.Activity
		var userID sql.NullInt64
		if err := rows.Scan(&a.ID, &a.Level, &a.Category, &a.Message, &userID, &a.Metadata, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning activity: %w", err)
		}
		a.UserID = userID
		entries = append(entries, a)
	}
	return entries, rows.Err()
}

// DeleteOlderThan removes activity entries created before the cutoff.
func (s *ActivityStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM activity_log WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning activity: %w", err)
	}
	return res.RowsAffected()
}
