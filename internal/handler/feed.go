// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"

	"occasio/internal/feed"
	"occasio/internal/middleware"
	"occasio/internal/service"
)

// FeedHandler upgrades connections to the live event feed.
type FeedHandler struct {
	hub    *feed.Hub
	events *service.EventService
	logger *slog.Logger
}

// NewFeedHandler creates a new FeedHandler.
func NewFeedHandler(hub *feed.Hub, events *service.EventService, logger *slog.Logger) *FeedHandler {
	return &FeedHandler{
		hub:    hub,
		events: events,
		logger: logger,
	}
}

// Serve upgrades the request to a WebSocket and subscribes the user to the
// feed. The full event list is delivered immediately on connect, then again
// after every change, until the connection closes.
// GET /ws
func (h *FeedHandler) Serve(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	conn, err := ws.Accept(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.Close(ws.StatusInternalError, "closed")

	client := feed.NewClient(h.hub, conn, user.ID)
	h.hub.Register(client)

	// Full-list delivery on connect, then Run blocks until the
	// connection closes.
	h.events.Notify(r.Context(), user.ID)
	client.Run(r.Context())
	conn.Close(ws.StatusNormalClosure, "")
}
