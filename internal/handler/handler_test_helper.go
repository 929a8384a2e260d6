// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"occasio/internal/feed"
	"occasio/internal/middleware"
	"occasio/internal/render"
	"occasio/internal/service"
	"occasio/internal/store"
	"occasio/internal/testutil"
)

// testTemplates returns a minimal template set mirroring web/templates.
func testTemplates() fstest.MapFS {
	return fstest.MapFS{
		"layouts/base.html": &fstest.MapFile{
			Data: []byte(`{{define "base"}}{{if .Flash}}[{{.FlashType}}] {{.Flash}} {{end}}{{block "content" .}}{{end}}{{end}}`),
		},
		"layouts/app.html": &fstest.MapFile{
			Data: []byte(`{{define "nav"}}nav{{end}}`),
		},
		"app/events.html": &fstest.MapFile{
			Data: []byte(`{{define "content"}}events:{{len .Data.Events}} due:{{len .Data.DueSoon}}{{range $f, $msg := .Data.Errors}} {{$f}}={{$msg}}{{end}} form-name={{.Data.Form.Name}}{{end}}`),
		},
		"app/activity.html": &fstest.MapFile{
			Data: []byte(`{{define "content"}}activity:{{len .Data.Entries}}{{range .Data.Entries}} [{{.Category}}] {{.Message}};{{end}}{{end}}`),
		},
		"app/event_detail.html": &fstest.MapFile{
			Data: []byte(`{{define "content"}}{{.Data.Event.Name}} state={{.Data.State}} plan={{.Data.PlanHTML}} gifts={{.Data.GiftsHTML}}{{end}}`),
		},
		"auth/login.html": &fstest.MapFile{
			Data: []byte(`{{define "content"}}login-form{{end}}`),
		},
		"auth/register.html": &fstest.MapFile{
			Data: []byte(`{{define "content"}}register-form{{end}}`),
		},
	}
}

// testApp wires the handlers into a router the way cmd/occasio does.
type testApp struct {
	db       *sql.DB
	sm       *scs.SessionManager
	hub      *feed.Hub
	events   *service.EventService
	generate *service.GenerateService
	activity *service.ActivityService
	router   http.Handler
}

func newTestApp(t *testing.T, gen service.Generator) *testApp {
	t.Helper()

	db := testutil.TestDB(t)
	logger := testutil.TestLogger()

	sm := scs.New()

	renderer, err := render.New(render.Config{
		TemplatesFS:    testTemplates(),
		SessionManager: sm,
		IsDev:          true,
	})
	require.NoError(t, err)

	hub := feed.NewHub(logger)
	eventStore := store.NewEventStore(db)
	eventsSvc := service.NewEventService(eventStore, hub, logger)
	genSvc := service.NewGenerateService(eventStore, gen, eventsSvc, logger)
	activity := service.NewActivityService(db)

	authH := NewAuthHandler(db, renderer, sm, nil, activity)
	activityH := NewActivityHandler(activity, renderer)
	eventsH := NewEventsHandler(eventsSvc, genSvc, renderer)
	generateH := NewGenerateHandler(eventsSvc, genSvc)
	feedH := NewFeedHandler(hub, eventsSvc, logger)
	healthH := NewHealthHandler(db, sm)

	r := chi.NewRouter()
	r.Use(sm.LoadAndSave)

	r.Get("/health", healthH.Health)
	r.Get(RouteLogin, authH.LoginForm)
	r.Post(RouteLogin, authH.Login)
	r.Post(RouteGuest, authH.Guest)
	r.Get(RouteRegister, authH.RegisterForm)
	r.Post(RouteRegister, authH.Register)
	r.Post(RouteLogout, authH.Logout)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(sm), middleware.LoadUser(sm, db))
		r.Get(RouteEvents, eventsH.List)
		r.Post(RouteEvents, eventsH.Create)
		r.Get(RouteEvents+RouteParamPublicID, eventsH.Detail)
		r.Post(RouteEvents+RouteParamPublicID+RouteSuffixGenerate, generateH.Start)
		r.Get(RouteEvents+RouteParamPublicID+RouteSuffixGeneration, generateH.Status)
		r.Get(RouteActivity, activityH.List)
		r.Get("/api/events", eventsH.ListJSON)
		r.Get(RouteFeed, feedH.Serve)
	})

	return &testApp{
		db:       db,
		sm:       sm,
		hub:      hub,
		events:   eventsSvc,
		generate: genSvc,
		activity: activity,
		router:   r,
	}
}

// newTestServer starts the app behind an httptest server with a cookie-jar
// client that does not follow redirects.
func newTestServer(t *testing.T, gen service.Generator) (*testApp, *httptest.Server, *http.Client) {
	t.Helper()

	app := newTestApp(t, gen)
	srv := httptest.NewServer(app.router)
	t.Cleanup(srv.Close)

	return app, srv, newSessionClient(t)
}

// newSessionClient returns a cookie-jar client that does not follow redirects.
func newSessionClient(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// signInGuest signs the client in through the guest route.
func signInGuest(t *testing.T, srv *httptest.Server, client *http.Client) {
	t.Helper()

	resp, err := client.Post(srv.URL+RouteGuest, "application/x-www-form-urlencoded", nil)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, redirectEvents, resp.Header.Get("Location"))
}

// postForm submits a form through the test client.
func postForm(t *testing.T, client *http.Client, target string, form url.Values) *http.Response {
	t.Helper()

	resp, err := client.Post(target, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	return resp
}
