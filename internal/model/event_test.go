// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"errors"
	"testing"
	"time"
)

func TestEventTypesUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, et := range EventTypes {
		if seen[et] {
			t.Errorf("duplicate event type: %q", et)
		}
		seen[et] = true
	}
}

func TestIsValidEventType(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"birthday", "Birthday", true},
		{"baby shower", "Baby Shower", true},
		{"other", "Other", true},
		{"lowercase", "birthday", false},
		{"empty", "", false},
		{"unknown", "Funeral", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidEventType(tt.input); got != tt.want {
				t.Errorf("IsValidEventType(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestEventInputValidate(t *testing.T) {
	valid := EventInput{
		Name:      "Anna's 30th",
		Type:      EventTypeBirthday,
		StartsAt:  "2025-06-01T18:00",
		Recipient: "loves hiking",
	}

	if err := valid.Validate(); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*EventInput)
		field  string
	}{
		{"missing name", func(in *EventInput) { in.Name = "" }, "name"},
		{"blank name", func(in *EventInput) { in.Name = "   " }, "name"},
		{"missing type", func(in *EventInput) { in.Type = "" }, "type"},
		{"unknown type", func(in *EventInput) { in.Type = "Gala" }, "type"},
		{"missing datetime", func(in *EventInput) { in.StartsAt = "" }, "starts_at"},
		{"malformed datetime", func(in *EventInput) { in.StartsAt = "2025-13-45T99:00" }, "starts_at"},
		{"blank recipient", func(in *EventInput) { in.Recipient = "\t\n" }, "recipient"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)

			err := in.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}

			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if _, ok := ve.Fields[tt.field]; !ok {
				t.Errorf("expected error for field %q, got %v", tt.field, ve.Fields)
			}
		})
	}
}

func TestEventInputValidateCollectsAllFields(t *testing.T) {
	in := EventInput{}

	err := in.Validate()
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if len(ve.Fields) != 4 {
		t.Errorf("expected 4 field errors, got %d: %v", len(ve.Fields), ve.Fields)
	}
}

func TestParseStartsAt(t *testing.T) {
	in := EventInput{StartsAt: "2025-06-01T18:00"}

	got, err := in.ParseStartsAt()
	if err != nil {
		t.Fatalf("ParseStartsAt: %v", err)
	}

	want := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ParseStartsAt = %v, want %v", got, want)
	}
}
