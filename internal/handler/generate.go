// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"occasio/internal/markdown"
	"occasio/internal/middleware"
	"occasio/internal/service"
	"occasio/internal/store"
)

// GenerateHandler handles the AI content generation endpoints.
type GenerateHandler struct {
	events   *service.EventService
	generate *service.GenerateService
}

// NewGenerateHandler creates a new GenerateHandler.
func NewGenerateHandler(events *service.EventService, generate *service.GenerateService) *GenerateHandler {
	return &GenerateHandler{
		events:   events,
		generate: generate,
	}
}

// Start begins the generation workflow for an event.
// POST /events/{publicID}/generate
func (h *GenerateHandler) Start(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		writeJSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	publicID := chi.URLParam(r, "publicID")
	ev, err := h.events.Get(r.Context(), user.ID, publicID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "event not found")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "could not load event")
		return
	}

	if err := h.generate.Start(r.Context(), ev); err != nil {
		switch {
		case errors.Is(err, service.ErrGenerationInFlight):
			writeJSONError(w, http.StatusConflict, "generation already in progress")
		case errors.Is(err, service.ErrAlreadyGenerated):
			writeJSONError(w, http.StatusConflict, "content already generated")
		default:
			writeJSONError(w, http.StatusInternalServerError, "could not start generation")
		}
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"success": true,
		"state":   service.StateGeneratingPlan,
	})
}

// Status reports the generation workflow state for an event. The plan text is
// included as soon as the plan call returns, before gift suggestions finish.
// GET /events/{publicID}/generation
func (h *GenerateHandler) Status(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		writeJSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	publicID := chi.URLParam(r, "publicID")
	ev, err := h.events.Get(r.Context(), user.ID, publicID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "event not found")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "could not load event")
		return
	}

	status, running := h.generate.Status(ev.ID)
	if !running && ev.AIReady {
		status = service.GenerationStatus{
			State: service.StateReady,
			Plan:  ev.Plan,
			Gifts: ev.Gifts,
		}
	}

	resp := map[string]any{
		"success": true,
		"state":   status.State,
		"plan":    status.Plan,
		"gifts":   status.Gifts,
	}
	if status.Error != "" {
		resp["error"] = status.Error
	}
	if status.Plan != "" {
		resp["plan_html"] = markdown.MustRender(status.Plan)
	}
	if status.Gifts != "" {
		resp["gifts_html"] = markdown.MustRender(status.Gifts)
	}

	writeJSON(w, http.StatusOK, resp)
}
