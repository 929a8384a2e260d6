// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/mileusna/useragent"

	"occasio/internal/model"
	"occasio/internal/store"
	"occasio/internal/util"
)

// ActivityService records audit entries for user-facing actions.
type ActivityService struct {
	activity *store.ActivityStore
}

// NewActivityService creates a new ActivityService.
func NewActivityService(db *sql.DB) *ActivityService {
	return &ActivityService{activity: store.NewActivityStore(db)}
}

// Log writes an activity entry.
func (s *ActivityService) Log(ctx context.Context, level, category, message string, userID *int64, metadata map[string]any) error {
	metadataJSON := "{}"
	if metadata != nil {
		if b, err := json.Marshal(metadata); err == nil {
			metadataJSON = string(b)
		}
	}

	return s.activity.Insert(ctx, model.Activity{
		Level:     level,
		Category:  category,
		Message:   message,
		UserID:    util.NullInt64FromPtr(userID),
		Metadata:  metadataJSON,
		CreatedAt: time.Now().UTC(),
	})
}

// LogAuth records a sign-in or sign-out, enriching the entry with the parsed
// browser and OS from the User-Agent header.
func (s *ActivityService) LogAuth(ctx context.Context, message string, userID *int64, userAgentHeader string) error {
	metadata := map[string]any{}
	if userAgentHeader != "" {
		ua := useragent.Parse(userAgentHeader)
		metadata["browser"] = ua.Name
		metadata["os"] = ua.OS
		if ua.Mobile {
			metadata["device"] = "mobile"
		}
	}
	return s.Log(ctx, model.ActivityLevelInfo, model.ActivityCategoryAuth, message, userID, metadata)
}

// LogEvent records an event-related action.
func (s *ActivityService) LogEvent(ctx context.Context, message string, userID *int64, metadata map[string]any) error {
	return s.Log(ctx, model.ActivityLevelInfo, model.ActivityCategoryEvent, message, userID, metadata)
}

// RecentForUser returns the newest activity entries attributed to the user.
func (s *ActivityService) RecentForUser(ctx context.Context, userID int64, limit int) ([]model.Activity, error) {
	return s.activity.ListRecentForUser(ctx, userID, limit)
}

// PruneOlderThan removes entries older than the given age.
func (s *ActivityService) PruneOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	return s.activity.DeleteOlderThan(ctx, time.Now().UTC().Add(-age))
}
