// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"occasio/internal/middleware"
	"occasio/internal/model"
	"occasio/internal/render"
	"occasio/internal/service"
)

// activityPageLimit caps the entries shown on the activity page.
const activityPageLimit = 50

// ActivityHandler renders the signed-in user's activity history: sign-ins,
// created events, and upcoming-event reminders recorded by the sweep job.
type ActivityHandler struct {
	activity *service.ActivityService
	renderer *render.Renderer
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(activity *service.ActivityService, renderer *render.Renderer) *ActivityHandler {
	return &ActivityHandler{
		activity: activity,
		renderer: renderer,
	}
}

// activityPageData feeds the activity template.
type activityPageData struct {
	Entries []model.Activity
}

// List renders the user's recent activity, newest first.
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		http.Redirect(w, r, redirectLogin, http.StatusSeeOther)
		return
	}

	entries, err := h.activity.RecentForUser(r.Context(), user.ID, activityPageLimit)
	if err != nil {
		logAndInternalError(w, "listing activity", "error", err, "user_id", user.ID)
		return
	}

	if err := h.renderer.Render(w, r, "app/activity", render.TemplateData{
		Title: "Activity",
		User:  user,
		Data:  activityPageData{Entries: entries},
	}); err != nil {
		logAndInternalError(w, "rendering activity page", "error", err)
	}
}
