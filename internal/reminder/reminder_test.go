// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package reminder

import (
	"testing"
	"time"

	"occasio/internal/model"
)

func TestDueSoonWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		offset time.Duration
		want   bool
	}{
		{"in the past", -time.Hour, false},
		{"exactly now", 0, false},
		{"one second ahead", time.Second, true},
		{"one hour ahead", time.Hour, true},
		{"just inside horizon", Horizon - time.Second, true},
		{"exactly at horizon", Horizon, false},
		{"beyond horizon", Horizon + time.Hour, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := []model.Event{{Name: "ev", StartsAt: now.Add(tt.offset)}}
			due := DueSoon(events, now)
			if got := len(due) == 1; got != tt.want {
				t.Errorf("offset %v: included = %v, want %v", tt.offset, got, tt.want)
			}
		})
	}
}

func TestDueSoonPreservesOrder(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	events := []model.Event{
		{Name: "first", StartsAt: now.Add(2 * time.Hour)},
		{Name: "past", StartsAt: now.Add(-time.Hour)},
		{Name: "second", StartsAt: now.Add(20 * time.Hour)},
		{Name: "far", StartsAt: now.Add(100 * time.Hour)},
		{Name: "third", StartsAt: now.Add(47 * time.Hour)},
	}

	due := DueSoon(events, now)
	if len(due) != 3 {
		t.Fatalf("expected 3 due events, got %d", len(due))
	}
	for i, want := range []string{"first", "second", "third"} {
		if due[i].Name != want {
			t.Errorf("due[%d] = %q, want %q", i, due[i].Name, want)
		}
	}
}

func TestDueSoonEmpty(t *testing.T) {
	if due := DueSoon(nil, time.Now()); len(due) != 0 {
		t.Errorf("expected no reminders for empty input, got %d", len(due))
	}
}
