// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic maintenance jobs: pruning old activity
// log entries and sweeping for events entering the reminder window.
package scheduler

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"occasio/internal/reminder"
	"occasio/internal/service"
	"occasio/internal/store"
)

// Default schedules. Pruning runs nightly during low traffic; the
// reminder sweep runs hourly so events cross into the window promptly.
const (
	pruneSchedule   = "30 3 * * *"
	ReminderSweep   = "0 * * * *"
	pruneJobName    = "activity-prune"
	reminderJobName = "reminder-sweep"
)

// Scheduler handles recurring background jobs.
type Scheduler struct {
	events            *store.EventStore
	activity          *service.ActivityService
	cron              *cron.Cron
	logger            *slog.Logger
	activityRetention time.Duration
}

// New creates a new scheduler instance.
func New(db *sql.DB, logger *slog.Logger, activityRetention time.Duration) *Scheduler {
	return &Scheduler{
		events:            store.NewEventStore(db),
		activity:          service.NewActivityService(db),
		cron:              cron.New(),
		logger:            logger,
		activityRetention: activityRetention,
	}
}

// Start registers the jobs and begins the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(pruneSchedule, func() {
		if err := s.PruneActivity(context.Background()); err != nil {
			s.logger.Error("scheduled job failed", "job", pruneJobName, "error", err)
		}
	}); err != nil {
		return fmt.Errorf("registering %s: %w", pruneJobName, err)
	}

	if _, err := s.cron.AddFunc(ReminderSweep, func() {
		if err := s.SweepReminders(context.Background()); err != nil {
			s.logger.Error("scheduled job failed", "job", reminderJobName, "error", err)
		}
	}); err != nil {
		return fmt.Errorf("registering %s: %w", reminderJobName, err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// PruneActivity deletes activity entries older than the retention period.
func (s *Scheduler) PruneActivity(ctx context.Context) error {
	if s.activityRetention <= 0 {
		return nil
	}

	removed, err := s.activity.PruneOlderThan(ctx, s.activityRetention)
	if err != nil {
		return fmt.Errorf("pruning activity log: %w", err)
	}

	if removed > 0 {
		s.logger.Info("pruned activity log",
			"removed", removed,
			"retention", s.activityRetention.String(),
		)
	}
	return nil
}

// SweepReminders finds events entering the reminder window and records an
// activity entry per event so owners see the reminder in their history.
// Events exactly at a boundary are excluded, matching the list view.
func (s *Scheduler) SweepReminders(ctx context.Context) error {
	now := time.Now().UTC()
	upcoming, err := s.events.ListStartingBetween(ctx, now, now.Add(reminder.Horizon))
	if err != nil {
		return fmt.Errorf("listing upcoming events: %w", err)
	}

	due := reminder.DueSoon(upcoming, now)
	if len(due) == 0 {
		return nil
	}

	for _, ev := range due {
		userID := ev.UserID
		err := s.activity.LogEvent(ctx,
			"Upcoming event: "+ev.Name,
			&userID,
			map[string]any{
				"event_id":  ev.PublicID,
				"starts_at": ev.StartsAt.Format(time.RFC3339),
				"starts_in": ev.StartsAt.Sub(now).Round(time.Minute).String(),
			},
		)
		if err != nil {
			s.logger.Warn("failed to record reminder",
				"event_id", ev.PublicID,
				"error", err,
			)
		}
	}

	s.logger.Info("reminder sweep complete", "due", len(due))
	return nil
}
