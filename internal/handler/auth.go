// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"occasio/internal/auth"
	"occasio/internal/middleware"
	"occasio/internal/render"
	"occasio/internal/service"
	"occasio/internal/store"
	"occasio/internal/util"
)

// SessionKeyUserID is the session key for storing the authenticated user ID.
const SessionKeyUserID = "user_id"

// AuthHandler handles authentication routes.
type AuthHandler struct {
	users           *store.UserStore
	renderer        *render.Renderer
	sessionManager  *scs.SessionManager
	activity        *service.ActivityService
	loginProtection *middleware.LoginProtection
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager, lp *middleware.LoginProtection, activity *service.ActivityService) *AuthHandler {
	return &AuthHandler{
		users:           store.NewUserStore(db),
		renderer:        renderer,
		sessionManager:  sm,
		activity:        activity,
		loginProtection: lp,
	}
}

// LoginForm renders the login page. Signed-in users go straight to their events.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if userID := h.sessionManager.GetInt64(r.Context(), SessionKeyUserID); userID > 0 {
		http.Redirect(w, r, redirectEvents, http.StatusSeeOther)
		return
	}

	if err := h.renderer.Render(w, r, "auth/login", render.TemplateData{Title: "Sign in"}); err != nil {
		logAndInternalError(w, "rendering login page", "error", err)
	}
}

// Login handles the login form submission. A credential mismatch re-shows the
// form; a backend failure falls back to an anonymous guest identity so the
// visitor can keep planning.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectLogin) {
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	if email == "" || password == "" {
		flashError(w, r, h.renderer, redirectLogin, "Email and password are required")
		return
	}

	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.IsAccountLocked(email); locked {
			_ = h.activity.LogAuth(r.Context(), "Login attempt on locked account", nil, r.UserAgent())
			flashError(w, r, h.renderer, redirectLogin, fmt.Sprintf("Account temporarily locked. Try again in %s.", formatDuration(remaining)))
			return
		}
	}

	user, err := h.users.GetByEmail(r.Context(), email)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			// Credential backend unavailable. Fall back to a guest
			// identity rather than blocking the visitor.
			slog.Warn("credential lookup failed, continuing as guest", "error", err)
			h.signInGuest(w, r)
			return
		}

		// Record the failure even for unknown accounts to prevent enumeration
		if h.recordFailure(w, r, email) {
			return
		}
		flashError(w, r, h.renderer, redirectLogin, "Invalid email or password")
		return
	}

	valid, err := auth.CheckPassword(password, util.NullStringValue(user.PasswordHash))
	if err != nil || !valid {
		if err != nil {
			slog.Error("password check error", "error", err)
		}
		_ = h.activity.LogAuth(r.Context(), "Login failed: invalid password", &user.ID, r.UserAgent())
		if h.recordFailure(w, r, email) {
			return
		}
		flashError(w, r, h.renderer, redirectLogin, "Invalid email or password")
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(email)
	}

	if err := h.users.TouchLastLogin(r.Context(), user.ID); err != nil {
		// Don't block login on this
		slog.Error("failed to update last login time", "error", err, "user_id", user.ID)
	}

	// Regenerate session ID to prevent session fixation
	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		logAndInternalError(w, "session renewal error", "error", err)
		return
	}
	h.sessionManager.Put(r.Context(), SessionKeyUserID, user.ID)

	slog.Info("user logged in", "user_id", user.ID)
	_ = h.activity.LogAuth(r.Context(), "User logged in", &user.ID, r.UserAgent())

	flashSuccess(w, r, h.renderer, redirectEvents, "Welcome back, "+user.Name)
}

// recordFailure records a failed attempt and writes the lockout or
// remaining-attempts response when one applies. Returns true if a response
// was written.
func (h *AuthHandler) recordFailure(w http.ResponseWriter, r *http.Request, email string) bool {
	if h.loginProtection == nil {
		return false
	}

	if locked, lockDuration := h.loginProtection.RecordFailedAttempt(email); locked {
		flashError(w, r, h.renderer, redirectLogin, fmt.Sprintf("Too many failed attempts. Account locked for %s.", formatDuration(lockDuration)))
		return true
	}
	if remaining := h.loginProtection.GetRemainingAttempts(email); remaining <= 3 && remaining > 0 {
		flashError(w, r, h.renderer, redirectLogin, fmt.Sprintf("Invalid email or password. %d attempts remaining.", remaining))
		return true
	}
	return false
}

// Guest signs the visitor in as an anonymous guest.
func (h *AuthHandler) Guest(w http.ResponseWriter, r *http.Request) {
	h.signInGuest(w, r)
}

func (h *AuthHandler) signInGuest(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.CreateGuest(r.Context(), "Guest")
	if err != nil {
		logAndInternalError(w, "creating guest identity", "error", err)
		return
	}

	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		logAndInternalError(w, "session renewal error", "error", err)
		return
	}
	h.sessionManager.Put(r.Context(), SessionKeyUserID, user.ID)

	slog.Info("guest session started", "user_id", user.ID)
	_ = h.activity.LogAuth(r.Context(), "Guest session started", &user.ID, r.UserAgent())

	http.Redirect(w, r, redirectEvents, http.StatusSeeOther)
}

// RegisterForm renders the registration page.
func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	if userID := h.sessionManager.GetInt64(r.Context(), SessionKeyUserID); userID > 0 {
		http.Redirect(w, r, redirectEvents, http.StatusSeeOther)
		return
	}

	if err := h.renderer.Render(w, r, "auth/register", render.TemplateData{Title: "Create account"}); err != nil {
		logAndInternalError(w, "rendering register page", "error", err)
	}
}

// Register creates a new account and signs it in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteRegister) {
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	switch {
	case name == "" || email == "" || password == "":
		flashError(w, r, h.renderer, RouteRegister, "Name, email, and password are required")
		return
	case !strings.Contains(email, "@"):
		flashError(w, r, h.renderer, RouteRegister, "Please enter a valid email address")
		return
	case len(password) < 8:
		flashError(w, r, h.renderer, RouteRegister, "Password must be at least 8 characters")
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		logAndInternalError(w, "hashing password", "error", err)
		return
	}

	user, err := h.users.CreateMember(r.Context(), email, hash, name)
	if err != nil {
		// Unique email constraint is the likely culprit
		flashError(w, r, h.renderer, RouteRegister, "An account with that email already exists")
		return
	}

	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		logAndInternalError(w, "session renewal error", "error", err)
		return
	}
	h.sessionManager.Put(r.Context(), SessionKeyUserID, user.ID)

	slog.Info("account created", "user_id", user.ID)
	_ = h.activity.LogAuth(r.Context(), "Account created", &user.ID, r.UserAgent())

	flashSuccess(w, r, h.renderer, redirectEvents, "Welcome, "+user.Name)
}

// Logout handles user logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := h.sessionManager.GetInt64(r.Context(), SessionKeyUserID)

	if userID > 0 {
		_ = h.activity.LogAuth(r.Context(), "User logged out", &userID, r.UserAgent())
	}

	if err := h.sessionManager.Destroy(r.Context()); err != nil {
		slog.Error("session destroy error", "error", err)
	}

	slog.Info("user logged out", "user_id", userID)
	flashAndRedirect(w, r, h.renderer, redirectLogin, "You have been signed out", "info")
}

// formatDuration formats a duration into a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", mins)
	}
	hours := int(d.Hours())
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}
