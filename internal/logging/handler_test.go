// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"occasio/internal/model"
	"occasio/internal/store"
	"occasio/internal/testutil"
)

func newTestHandler(t *testing.T) (*ActivityLogHandler, *store.ActivityStore) {
	t.Helper()
	db := testutil.TestDB(t)
	inner := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug})
	return NewActivityLogHandler(inner, db), store.NewActivityStore(db)
}

func TestWarnIsWrittenToActivityLog(t *testing.T) {
	h, activity := newTestHandler(t)
	logger := slog.New(h)

	logger.Warn("generation failed", "category", model.ActivityCategoryAI, "status", "500")

	entries, err := activity.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.Equal(t, model.ActivityLevelWarning, entries[0].Level)
	assert.Equal(t, model.ActivityCategoryAI, entries[0].Category)
	assert.Equal(t, "generation failed", entries[0].Message)
	assert.Contains(t, entries[0].Metadata, `"status":"500"`)
}

func TestInfoIsNotWrittenToActivityLog(t *testing.T) {
	h, activity := newTestHandler(t)
	logger := slog.New(h)

	logger.Info("routine message")

	entries, err := activity.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCategoryInference(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{"auth message", "login rejected", model.ActivityCategoryAuth},
		{"ai message", "plan generation stalled", model.ActivityCategoryAI},
		{"feed message", "feed delivery dropped", model.ActivityCategoryFeed},
		{"event message", "event write rejected", model.ActivityCategoryEvent},
		{"fallback", "disk almost full", model.ActivityCategorySystem},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, activity := newTestHandler(t)
			slog.New(h).Error(tt.message)

			entries, err := activity.ListRecent(context.Background(), 1)
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, tt.want, entries[0].Category)
		})
	}
}

func TestErrorLevelMapping(t *testing.T) {
	h, activity := newTestHandler(t)
	slog.New(h).Error("event write rejected")

	entries, err := activity.ListRecent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.ActivityLevelError, entries[0].Level)
}
