// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the root path.
	RouteRoot = "/"
	// RouteLogin is the login route.
	RouteLogin = "/login"
	// RouteLogout is the logout route.
	RouteLogout = "/logout"
	// RouteGuest is the guest sign-in route.
	RouteGuest = "/guest"
	// RouteRegister is the account registration route.
	RouteRegister = "/register"
	// RouteEvents is the events route.
	RouteEvents = "/events"
	// RouteActivity is the activity history route.
	RouteActivity = "/activity"
	// RouteFeed is the WebSocket feed route.
	RouteFeed = "/ws"

	// RouteParamPublicID is the event public ID parameter pattern.
	RouteParamPublicID = "/{publicID}"
	// RouteSuffixGenerate is the generation trigger suffix.
	RouteSuffixGenerate = "/generate"
	// RouteSuffixGeneration is the generation status suffix.
	RouteSuffixGeneration = "/generation"
)

// redirect targets
const (
	redirectLogin  = "/login"
	redirectEvents = "/events"
)
