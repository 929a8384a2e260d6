// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service provides business logic: the create-event workflow, the
// AI content generation workflow, and activity logging.
package service

import (
	"context"
	"log/slog"

	"occasio/internal/feed"
	"occasio/internal/model"
	"occasio/internal/store"
)

// EventService owns the create-event workflow and list access.
type EventService struct {
	events *store.EventStore
	hub    *feed.Hub
	logger *slog.Logger
}

// NewEventService creates a new EventService. hub may be nil in contexts with
// no live subscribers (tests, CLI tasks).
func NewEventService(events *store.EventStore, hub *feed.Hub, logger *slog.Logger) *EventService {
	return &EventService{events: events, hub: hub, logger: logger}
}

// Create validates the input and writes a new event. Validation failure makes
// no store call; the caller re-renders the form with the entered values.
func (s *EventService) Create(ctx context.Context, userID int64, in model.EventInput) (model.Event, error) {
	if err := in.Validate(); err != nil {
		return model.Event{}, err
	}

	startsAt, err := in.ParseStartsAt()
	if err != nil {
		// Validate already checked the format; this is a safety net.
		return model.Event{}, &model.ValidationError{Fields: map[string]string{"starts_at": "Date and time must be valid"}}
	}

	ev, err := s.events.Create(ctx, userID, in.Name, in.Type, startsAt, in.Recipient)
	if err != nil {
		return model.Event{}, err
	}

	s.logger.Info("event created", "category", model.ActivityCategoryEvent, "event", ev.PublicID, "type", ev.Type)
	s.Notify(ctx, userID)
	return ev, nil
}

// List returns the user's events ascending by scheduled time.
func (s *EventService) List(ctx context.Context, userID int64) ([]model.Event, error) {
	return s.events.ListByUser(ctx, userID)
}

// Get returns one of the user's events by public ID.
func (s *EventService) Get(ctx context.Context, userID int64, publicID string) (model.Event, error) {
	return s.events.GetByPublicID(ctx, userID, publicID)
}

// Notify re-delivers the user's full event list to feed subscribers. A feed
// read failure is delivered as an error frame; the subscription stays active.
func (s *EventService) Notify(ctx context.Context, userID int64) {
	if s.hub == nil {
		return
	}

	events, err := s.events.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Warn("feed delivery failed", "category", model.ActivityCategoryFeed, "error", err)
		s.hub.DeliverError(userID, "could not load events; please retry")
		return
	}
	s.hub.DeliverEvents(userID, events)
}
