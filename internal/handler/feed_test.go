// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	ws "github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"occasio/internal/feed"
	"occasio/internal/model"
)

func dialFeed(t *testing.T, srvURL string, client *http.Client) *ws.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(srvURL, "http") + RouteFeed

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := ws.Dial(ctx, wsURL, &ws.DialOptions{HTTPClient: client})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close(ws.StatusNormalClosure, "") })
	return conn
}

func readFrame(t *testing.T, conn *ws.Conn) feed.Message {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, data, err := conn.Read(ctx)
	require.NoError(t, err)

	var msg feed.Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestFeedDeliversFullListOnConnect(t *testing.T) {
	_, srv, client := newTestServer(t, nil)
	signInGuest(t, srv, client)

	resp := postForm(t, client, srv.URL+RouteEvents, eventForm("Existing event"))
	_ = resp.Body.Close()

	conn := dialFeed(t, srv.URL, client)

	msg := readFrame(t, conn)
	require.Equal(t, feed.MessageTypeEvents, msg.Type)
	require.Len(t, msg.Events, 1)
	assert.Equal(t, "Existing event", msg.Events[0].Name)
	assert.False(t, msg.Events[0].AIReady)
}

func TestFeedRedeliversOnCreate(t *testing.T) {
	_, srv, client := newTestServer(t, nil)
	signInGuest(t, srv, client)

	conn := dialFeed(t, srv.URL, client)

	// Initial delivery is the empty list
	msg := readFrame(t, conn)
	require.Equal(t, feed.MessageTypeEvents, msg.Type)
	assert.Empty(t, msg.Events)

	// Creating an event pushes the full list again, sorted ascending
	later := eventForm("Later")
	resp := postForm(t, client, srv.URL+RouteEvents, later)
	_ = resp.Body.Close()

	msg = readFrame(t, conn)
	require.Len(t, msg.Events, 1)

	sooner := eventForm("Sooner")
	sooner.Set("starts_at", time.Now().Add(24*time.Hour).Format(model.StartsAtLayout))
	resp = postForm(t, client, srv.URL+RouteEvents, sooner)
	_ = resp.Body.Close()

	msg = readFrame(t, conn)
	require.Len(t, msg.Events, 2)
	assert.Equal(t, "Sooner", msg.Events[0].Name)
	assert.Equal(t, "Later", msg.Events[1].Name)
}

func TestFeedScopedToUser(t *testing.T) {
	_, srv, client := newTestServer(t, nil)
	signInGuest(t, srv, client)

	otherClient := newSessionClient(t)
	signInGuest(t, srv, otherClient)

	conn := dialFeed(t, srv.URL, client)
	_ = readFrame(t, conn) // initial empty list

	// The other user's create must not reach this feed
	resp := postForm(t, otherClient, srv.URL+RouteEvents, eventForm("Not yours"))
	_ = resp.Body.Close()

	// Our own create arrives, and contains only our event
	resp = postForm(t, client, srv.URL+RouteEvents, eventForm("Mine"))
	_ = resp.Body.Close()

	msg := readFrame(t, conn)
	require.Len(t, msg.Events, 1)
	assert.Equal(t, "Mine", msg.Events[0].Name)
}

func TestFeedRequiresAuth(t *testing.T) {
	_, srv, client := newTestServer(t, nil)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + RouteFeed
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, resp, err := ws.Dial(ctx, wsURL, &ws.DialOptions{HTTPClient: client})
	require.Error(t, err)
	if resp != nil {
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	}
}
