// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the typed records persisted by the store and the
// validation applied at the store-adapter boundary.
package model

import (
	"strings"
	"time"
)

// Event types
const (
	EventTypeBirthday    = "Birthday"
	EventTypeWedding     = "Wedding"
	EventTypeCorporate   = "Corporate"
	EventTypeAnniversary = "Anniversary"
	EventTypeGraduation  = "Graduation"
	EventTypeBabyShower  = "Baby Shower"
	EventTypeOther       = "Other"
)

// EventTypes lists all valid event types in display order.
var EventTypes = []string{
	EventTypeBirthday,
	EventTypeWedding,
	EventTypeCorporate,
	EventTypeAnniversary,
	EventTypeGraduation,
	EventTypeBabyShower,
	EventTypeOther,
}

// Event represents a user-created occasion record. Plan and Gifts stay empty
// and AIReady false until the generation workflow persists all three together.
type Event struct {
	ID        int64
	PublicID  string // store-assigned UUID, used in URLs and feed payloads
	UserID    int64
	Name      string
	Type      string
	StartsAt  time.Time
	Recipient string
	Plan      string
	Gifts     string
	AIReady   bool
	CreatedAt time.Time
}

// IsValidEventType reports whether t is one of the fixed event types.
func IsValidEventType(t string) bool {
	for _, et := range EventTypes {
		if t == et {
			return true
		}
	}
	return false
}

// EventInput holds the user-supplied fields for creating an event.
type EventInput struct {
	Name      string
	Type      string
	StartsAt  string // datetime-local form value, e.g. "2025-06-01T18:00"
	Recipient string
}

// StartsAtLayout is the accepted layout for the scheduled date-time field.
const StartsAtLayout = "2006-01-02T15:04"

// Validate checks that all four required fields are present and well-formed.
// It returns a ValidationError listing every failing field, or nil.
func (in EventInput) Validate() error {
	ve := ValidationError{Fields: map[string]string{}}

	if strings.TrimSpace(in.Name) == "" {
		ve.Fields["name"] = "Event name is required"
	}
	if strings.TrimSpace(in.Type) == "" {
		ve.Fields["type"] = "Event type is required"
	} else if !IsValidEventType(in.Type) {
		ve.Fields["type"] = "Unknown event type"
	}
	if strings.TrimSpace(in.StartsAt) == "" {
		ve.Fields["starts_at"] = "Date and time are required"
	} else if _, err := in.ParseStartsAt(); err != nil {
		ve.Fields["starts_at"] = "Date and time must be valid"
	}
	if strings.TrimSpace(in.Recipient) == "" {
		ve.Fields["recipient"] = "Recipient description is required"
	}

	if len(ve.Fields) > 0 {
		return &ve
	}
	return nil
}

// ParseStartsAt resolves the scheduled date-time string to a point in time.
func (in EventInput) ParseStartsAt() (time.Time, error) {
	return time.Parse(StartsAtLayout, strings.TrimSpace(in.StartsAt))
}
