// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package reminder derives the "due soon" view from an event list.
// Reminders are never stored; they are recomputed on every render.
package reminder

import (
	"time"

	"occasio/internal/model"
)

// Horizon is the look-ahead window for upcoming events.
const Horizon = 48 * time.Hour

// DueSoon filters events to those scheduled strictly between now and
// now+Horizon. Both boundaries are excluded. Input ordering is preserved
// (the store already delivers events ascending by scheduled time).
func DueSoon(events []model.Event, now time.Time) []model.Event {
	var due []model.Event
	for _, ev := range events {
		d := ev.StartsAt.Sub(now)
		if d > 0 && d < Horizon {
			due = append(due, ev)
		}
	}
	return due
}
