// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package feed delivers live event-list updates to connected clients.
// The subscription contract: on connect and after every change, the client
// receives the user's full event list, ascending by scheduled time. Feed
// errors are delivered as error frames and do not terminate the subscription.
package feed

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"occasio/internal/model"
)

// Message types sent over the feed.
const (
	MessageTypeEvents = "events"
	MessageTypeError  = "error"
)

// EventPayload is the wire representation of an event.
type EventPayload struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	StartsAt  string `json:"starts_at"`
	Recipient string `json:"recipient"`
	Plan      string `json:"plan"`
	Gifts     string `json:"gifts"`
	AIReady   bool   `json:"ai_ready"`
	CreatedAt string `json:"created_at"`
}

// Message is a single feed frame: either a full event-list delivery or an
// error notice.
type Message struct {
	Type   string         `json:"type"`
	Events []EventPayload `json:"events,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// NewEventsMessage builds a full-list delivery frame.
func NewEventsMessage(events []model.Event) Message {
	payloads := make([]EventPayload, 0, len(events))
	for _, ev := range events {
		payloads = append(payloads, EventPayload{
			ID:        ev.PublicID,
			Name:      ev.Name,
			Type:      ev.Type,
			StartsAt:  ev.StartsAt.Format(time.RFC3339),
			Recipient: ev.Recipient,
			Plan:      ev.Plan,
			Gifts:     ev.Gifts,
			AIReady:   ev.AIReady,
			CreatedAt: ev.CreatedAt.Format(time.RFC3339),
		})
	}
	return Message{Type: MessageTypeEvents, Events: payloads}
}

// Hub maintains the set of active clients per user and delivers frames.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*Client]struct{}
	logger  *slog.Logger
}

// NewHub creates a new Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[int64]map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a client to the hub under its user ID.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if set, ok := h.clients[c.userID]; ok {
		if _, ok := set[c]; ok {
			delete(set, c)
			close(c.send)
		}
		if len(set) == 0 {
			delete(h.clients, c.userID)
		}
	}
	h.mu.Unlock()
}

// DeliverEvents sends the user's full event list to every subscribed client.
func (h *Hub) DeliverEvents(userID int64, events []model.Event) {
	h.deliver(userID, NewEventsMessage(events))
}

// DeliverError sends an error frame to every subscribed client of the user.
// The subscription itself stays active; the caller may retry.
func (h *Hub) DeliverError(userID int64, errMsg string) {
	h.deliver(userID, Message{Type: MessageTypeError, Error: errMsg})
}

func (h *Hub) deliver(userID int64, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal feed frame", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients[userID] {
		select {
		case c.send <- data:
		default:
			// Client buffer full, drop the frame rather than block
		}
	}
}

// SubscriberCount returns the number of connected clients for a user.
func (h *Hub) SubscriberCount(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
