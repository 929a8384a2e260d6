// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler contains the HTTP handlers: authentication, the events
// pages, the AI generation endpoints, and the WebSocket feed.
package handler

import (
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"occasio/internal/markdown"
	"occasio/internal/middleware"
	"occasio/internal/model"
	"occasio/internal/reminder"
	"occasio/internal/render"
	"occasio/internal/service"
	"occasio/internal/store"
)

// EventsHandler handles the event list, creation, and detail routes.
type EventsHandler struct {
	events   *service.EventService
	generate *service.GenerateService
	renderer *render.Renderer
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(events *service.EventService, generate *service.GenerateService, renderer *render.Renderer) *EventsHandler {
	return &EventsHandler{
		events:   events,
		generate: generate,
		renderer: renderer,
	}
}

// eventListData feeds the events list template.
type eventListData struct {
	Events     []model.Event
	DueSoon    []model.Event
	EventTypes []string
	Form       model.EventInput
	Errors     map[string]string
}

// List renders the user's events, ascending by scheduled time, with the
// due-soon reminder strip.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		http.Redirect(w, r, redirectLogin, http.StatusSeeOther)
		return
	}

	events, err := h.events.List(r.Context(), user.ID)
	if err != nil {
		logAndInternalError(w, "listing events", "error", err, "user_id", user.ID)
		return
	}

	data := eventListData{
		Events:     events,
		DueSoon:    reminder.DueSoon(events, time.Now().UTC()),
		EventTypes: model.EventTypes,
	}

	if err := h.renderer.Render(w, r, "app/events", render.TemplateData{
		Title: "My Events",
		User:  user,
		Data:  data,
	}); err != nil {
		logAndInternalError(w, "rendering events page", "error", err)
	}
}

// Create handles the create-event form submission. Validation failure
// re-renders the form with the entered values and per-field messages;
// nothing is stored.
func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		http.Redirect(w, r, redirectLogin, http.StatusSeeOther)
		return
	}

	if !parseFormOrRedirect(w, r, h.renderer, redirectEvents) {
		return
	}

	in := model.EventInput{
		Name:      r.FormValue("name"),
		Type:      r.FormValue("type"),
		StartsAt:  r.FormValue("starts_at"),
		Recipient: r.FormValue("recipient"),
	}

	ev, err := h.events.Create(r.Context(), user.ID, in)
	if err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			h.renderListWithErrors(w, r, user, in, verr.Fields)
			return
		}
		logAndInternalError(w, "creating event", "error", err, "user_id", user.ID)
		return
	}

	flashSuccess(w, r, h.renderer, RouteEvents+"/"+ev.PublicID, "Event created")
}

// renderListWithErrors re-renders the events page with the submitted form
// values and validation messages.
func (h *EventsHandler) renderListWithErrors(w http.ResponseWriter, r *http.Request, user *model.User, in model.EventInput, fieldErrors map[string]string) {
	events, err := h.events.List(r.Context(), user.ID)
	if err != nil {
		logAndInternalError(w, "listing events", "error", err, "user_id", user.ID)
		return
	}

	w.WriteHeader(http.StatusUnprocessableEntity)
	if err := h.renderer.Render(w, r, "app/events", render.TemplateData{
		Title: "My Events",
		User:  user,
		Data: eventListData{
			Events:     events,
			DueSoon:    reminder.DueSoon(events, time.Now().UTC()),
			EventTypes: model.EventTypes,
			Form:       in,
			Errors:     fieldErrors,
		},
	}); err != nil {
		logAndInternalError(w, "rendering events page", "error", err)
	}
}

// eventDetailData feeds the event detail template.
type eventDetailData struct {
	Event     model.Event
	PlanHTML  template.HTML
	GiftsHTML template.HTML
	State     service.GenerationState
	GenError  string
}

// Detail renders a single event with its generated content, if any.
func (h *EventsHandler) Detail(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		http.Redirect(w, r, redirectLogin, http.StatusSeeOther)
		return
	}

	publicID := chi.URLParam(r, "publicID")
	ev, err := h.events.Get(r.Context(), user.ID, publicID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		logAndInternalError(w, "loading event", "error", err, "public_id", publicID)
		return
	}

	data := eventDetailData{Event: ev, State: service.StateIdle}

	if status, ok := h.generate.Status(ev.ID); ok {
		data.State = status.State
		data.GenError = status.Error
		// The plan is shown as soon as the plan call returns, even while
		// gift suggestions are still being generated.
		if status.Plan != "" {
			data.PlanHTML = markdown.MustRender(status.Plan)
		}
		if status.Gifts != "" {
			data.GiftsHTML = markdown.MustRender(status.Gifts)
		}
	}

	if ev.AIReady {
		data.State = service.StateReady
		data.PlanHTML = markdown.MustRender(ev.Plan)
		data.GiftsHTML = markdown.MustRender(ev.Gifts)
	}

	if err := h.renderer.Render(w, r, "app/event_detail", render.TemplateData{
		Title: ev.Name,
		User:  user,
		Data:  data,
	}); err != nil {
		logAndInternalError(w, "rendering event page", "error", err)
	}
}

// ListJSON returns the user's events as JSON, ascending by scheduled time.
func (h *EventsHandler) ListJSON(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		writeJSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	events, err := h.events.List(r.Context(), user.ID)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "could not load events")
		return
	}

	payload := make([]map[string]any, 0, len(events))
	for _, ev := range events {
		payload = append(payload, map[string]any{
			"id":         ev.PublicID,
			"name":       ev.Name,
			"type":       ev.Type,
			"starts_at":  ev.StartsAt.Format(time.RFC3339),
			"recipient":  ev.Recipient,
			"ai_ready":   ev.AIReady,
			"created_at": ev.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSONSuccess(w, map[string]any{"events": payload})
}
