// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"occasio/internal/model"
	"occasio/internal/store"
	"occasio/internal/testutil"
)

func newTestScheduler(t *testing.T) (*Scheduler, *store.EventStore, *store.ActivityStore, int64) {
	t.Helper()

	db := testutil.TestDB(t)
	s := New(db, testutil.TestLogger(), 90*24*time.Hour)

	users := store.NewUserStore(db)
	user, err := users.CreateGuest(context.Background(), "Guest")
	require.NoError(t, err)

	return s, store.NewEventStore(db), store.NewActivityStore(db), user.ID
}

func TestPruneActivity(t *testing.T) {
	s, _, activity, _ := newTestScheduler(t)
	ctx := context.Background()

	old := model.Activity{
		Level:     model.ActivityLevelInfo,
		Category:  model.ActivityCategoryAuth,
		Message:   "stale entry",
		Metadata:  "{}",
		CreatedAt: time.Now().UTC().Add(-91 * 24 * time.Hour),
	}
	recent := model.Activity{
		Level:     model.ActivityLevelInfo,
		Category:  model.ActivityCategoryAuth,
		Message:   "fresh entry",
		Metadata:  "{}",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, activity.Insert(ctx, old))
	require.NoError(t, activity.Insert(ctx, recent))

	require.NoError(t, s.PruneActivity(ctx))

	entries, err := activity.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "fresh entry", entries[0].Message)
}

func TestPruneActivityDisabledRetention(t *testing.T) {
	db := testutil.TestDB(t)
	s := New(db, testutil.TestLogger(), 0)
	activity := store.NewActivityStore(db)
	ctx := context.Background()

	require.NoError(t, activity.Insert(ctx, model.Activity{
		Level:     model.ActivityLevelInfo,
		Category:  model.ActivityCategoryAuth,
		Message:   "ancient entry",
		Metadata:  "{}",
		CreatedAt: time.Now().UTC().Add(-365 * 24 * time.Hour),
	}))

	require.NoError(t, s.PruneActivity(ctx))

	entries, err := activity.ListRecent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "retention of zero must not delete anything")
}

func TestSweepReminders(t *testing.T) {
	s, events, activity, userID := newTestScheduler(t)
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := events.Create(ctx, userID, "Dinner party", model.EventTypeBirthday, now.Add(24*time.Hour), "old friends")
	require.NoError(t, err)
	_, err = events.Create(ctx, userID, "Far-off wedding", model.EventTypeWedding, now.Add(30*24*time.Hour), "cousin")
	require.NoError(t, err)
	_, err = events.Create(ctx, userID, "Missed brunch", model.EventTypeOther, now.Add(-2*time.Hour), "nobody")
	require.NoError(t, err)

	require.NoError(t, s.SweepReminders(ctx))

	entries, err := activity.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1, "only the event inside the window gets a reminder")
	assert.True(t, strings.Contains(entries[0].Message, "Dinner party"))
	assert.Equal(t, model.ActivityCategoryEvent, entries[0].Category)
	require.True(t, entries[0].UserID.Valid)
	assert.Equal(t, userID, entries[0].UserID.Int64)
}

func TestSweepRemindersNoUpcoming(t *testing.T) {
	s, _, activity, _ := newTestScheduler(t)
	ctx := context.Background()

	require.NoError(t, s.SweepReminders(ctx))

	entries, err := activity.ListRecent(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStartAndStop(t *testing.T) {
	db := testutil.TestDB(t)
	s := New(db, testutil.TestLogger(), time.Hour)

	require.NoError(t, s.Start())
	assert.Len(t, s.cron.Entries(), 2)
	s.Stop()
}
