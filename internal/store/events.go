// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"occasio/internal/model"
)

// EventStore provides access to the per-user events collection. Every query
// is scoped by the owning user's ID; records are never visible across users.
type EventStore struct {
	db *sql.DB
}

// NewEventStore creates a new EventStore.
func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db: db}
}

const eventColumns = "id, public_id, user_id, name, type, starts_at, recipient, plan, gifts, ai_ready, created_at"

// Create writes a new event record with a store-assigned public ID and
// creation timestamp. Plan and gifts start empty with ai_ready false.
func (s *EventStore) Create(ctx context.Context, userID int64, name, eventType string, startsAt time.Time, recipient string) (model.Event, error) {
	ev := model.Event{
		PublicID:  uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Type:      eventType,
		StartsAt:  startsAt,
		Recipient: recipient,
		CreatedAt: time.Now().UTC(),
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO events (public_id, user_id, name, type, starts_at, recipient, plan, gifts, ai_ready, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, '', '', 0, ?)`,
		ev.PublicID, ev.UserID, ev.Name, ev.Type, ev.StartsAt, ev.Recipient, ev.CreatedAt,
	)
	if err != nil {
		return model.Event{}, writeErr("create event", err)
	}

	ev.ID, err = res.LastInsertId()
	if err != nil {
		return model.Event{}, writeErr("create event", err)
	}

	return ev, nil
}

// GetByPublicID returns the event with the given public ID if it belongs to
// userID, or ErrNotFound.
func (s *EventStore) GetByPublicID(ctx context.Context, userID int64, publicID string) (model.Event, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+eventColumns+" FROM events WHERE user_id = ? AND public_id = ?",
		userID, publicID,
	)
	ev, err := scanEvent(row)
	if err != nil {
		return model.Event{}, notFound(err)
	}
	return ev, nil
}

// ListByUser returns all events belonging to userID, ascending by scheduled
// date-time. This is the ordering delivered to the feed and the list view.
func (s *EventStore) ListByUser(ctx context.Context, userID int64) ([]model.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+eventColumns+" FROM events WHERE user_id = ? ORDER BY starts_at ASC, id ASC",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []model.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// ListStartingBetween returns events across all users whose scheduled
// date-time falls in [from, to), ascending. Used by the reminder sweep.
func (s *EventStore) ListStartingBetween(ctx context.Context, from, to time.Time) ([]model.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+eventColumns+" FROM events WHERE starts_at >= ? AND starts_at < ? ORDER BY starts_at ASC, id ASC",
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("listing upcoming events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []model.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// AttachAIContent sets plan, gifts, and the ai_ready flag in a single update.
// Both texts must be non-blank so a partial result is never persisted.
func (s *EventStore) AttachAIContent(ctx context.Context, eventID int64, plan, gifts string) error {
	if plan == "" || gifts == "" {
		return writeErr("attach ai content", fmt.Errorf("plan and gifts must both be non-empty"))
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE events SET plan = ?, gifts = ?, ai_ready = 1 WHERE id = ?",
		plan, gifts, eventID,
	)
	if err != nil {
		return writeErr("attach ai content", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return writeErr("attach ai content", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanEvent.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(r rowScanner) (model.Event, error) {
	var ev model.Event
	err := r.Scan(
		&ev.ID, &ev.PublicID, &ev.UserID, &ev.Name, &ev.Type,
		&ev.StartsAt, &ev.Recipient, &ev.Plan, &ev.Gifts, &ev.AIReady, &ev.CreatedAt,
	)
	return ev, err
}
