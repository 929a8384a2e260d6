// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a custom slog handler that integrates with the
// activity log. It forwards logs at WARN level and above to the
// database-backed activity log for auditing.
package logging

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"

	"occasio/internal/model"
	"occasio/internal/store"
)

// ActivityLogHandler is a slog.Handler that wraps another handler and also
// writes WARN and ERROR level logs to the activity log.
type ActivityLogHandler struct {
	inner    slog.Handler
	activity *store.ActivityStore
	level    slog.Level // minimum level forwarded to the activity log
}

// NewActivityLogHandler creates a handler that wraps inner. Logs at WARN level
// and above are written to both the wrapped handler and the activity log.
func NewActivityLogHandler(inner slog.Handler, db *sql.DB) *ActivityLogHandler {
	return &ActivityLogHandler{
		inner:    inner,
		activity: store.NewActivityStore(db),
		level:    slog.LevelWarn,
	}
}

// Enabled implements slog.Handler.
func (h *ActivityLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *ActivityLogHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}

	if r.Level >= h.level {
		h.writeToActivityLog(r)
	}

	return nil
}

// WithAttrs implements slog.Handler.
func (h *ActivityLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ActivityLogHandler{
		inner:    h.inner.WithAttrs(attrs),
		activity: h.activity,
		level:    h.level,
	}
}

// WithGroup implements slog.Handler.
func (h *ActivityLogHandler) WithGroup(name string) slog.Handler {
	return &ActivityLogHandler{
		inner:    h.inner.WithGroup(name),
		activity: h.activity,
		level:    h.level,
	}
}

// writeToActivityLog writes a log record to the activity log.
// A background context is used so the entry is written even if the request
// context is cancelled.
func (h *ActivityLogHandler) writeToActivityLog(r slog.Record) {
	_ = h.activity.Insert(context.Background(), model.Activity{
		Level:     slogLevelToActivityLevel(r.Level),
		Category:  extractCategory(r),
		Message:   r.Message,
		Metadata:  extractMetadata(r),
		CreatedAt: r.Time,
	})
}

// slogLevelToActivityLevel converts a slog.Level to an activity log level.
func slogLevelToActivityLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return model.ActivityLevelError
	case level >= slog.LevelWarn:
		return model.ActivityLevelWarning
	default:
		return model.ActivityLevelInfo
	}
}

// extractCategory looks for a "category" attribute or infers one from the
// message.
func extractCategory(r slog.Record) string {
	var category string

	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "category" {
			category = a.Value.String()
			return false
		}
		return true
	})

	if category != "" {
		return category
	}

	msg := strings.ToLower(r.Message)
	switch {
	case strings.Contains(msg, "auth") || strings.Contains(msg, "login") || strings.Contains(msg, "logout"):
		return model.ActivityCategoryAuth
	case strings.Contains(msg, "generat") || strings.Contains(msg, "plan") || strings.Contains(msg, "gift"):
		return model.ActivityCategoryAI
	case strings.Contains(msg, "feed") || strings.Contains(msg, "subscrib"):
		return model.ActivityCategoryFeed
	case strings.Contains(msg, "event"):
		return model.ActivityCategoryEvent
	default:
		return model.ActivityCategorySystem
	}
}

// extractMetadata collects all log attributes into a JSON string.
func extractMetadata(r slog.Record) string {
	if r.NumAttrs() == 0 {
		return "{}"
	}

	var sb strings.Builder
	sb.WriteString("{")
	first := true

	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "category" {
			return true // already extracted
		}
		if !first {
			sb.WriteString(",")
		}
		first = false
		sb.WriteString(`"`)
		sb.WriteString(escapeJSON(a.Key))
		sb.WriteString(`":"`)
		sb.WriteString(escapeJSON(a.Value.String()))
		sb.WriteString(`"`)
		return true
	})

	sb.WriteString("}")
	return sb.String()
}

// escapeJSON escapes special characters in a string for JSON.
func escapeJSON(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
