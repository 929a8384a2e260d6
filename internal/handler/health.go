// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/alexedwards/scs/v2"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	db        *sql.DB
	sm        *scs.SessionManager
	startTime time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(db *sql.DB, sm *scs.SessionManager) *HealthHandler {
	return &HealthHandler{
		db:        db,
		sm:        sm,
		startTime: time.Now(),
	}
}

// HealthStatusPublic is the minimal health response for unauthenticated callers.
type HealthStatusPublic struct {
	Status string `json:"status"`
}

// HealthStatus is the full health response for signed-in callers.
type HealthStatus struct {
	Status    string           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Uptime    string           `json:"uptime"`
	Checks    map[string]Check `json:"checks,omitempty"`
	System    *SystemInfo      `json:"system,omitempty"`
}

// Check represents a single health check result.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// SystemInfo contains system-level information.
type SystemInfo struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutines"`
	NumCPU       int    `json:"num_cpus"`
	MemAlloc     string `json:"mem_alloc"`
	MemSys       string `json:"mem_sys"`
}

// Health handles GET /health requests.
// Returns minimal status for unauthenticated callers, full details for signed-in ones.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	dbCheck := h.checkDatabase()

	overallStatus := "healthy"
	if dbCheck.Status != "healthy" {
		overallStatus = "degraded"
	}

	w.Header().Set("Content-Type", "application/json")
	if overallStatus != "healthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	if !h.isAuthenticated(r) {
		_ = json.NewEncoder(w).Encode(HealthStatusPublic{Status: overallStatus})
		return
	}

	status := HealthStatus{
		Status:    overallStatus,
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Checks: map[string]Check{
			"database": dbCheck,
		},
	}

	if r.URL.Query().Get("verbose") == "true" {
		status.System = getSystemInfo()
	}

	_ = json.NewEncoder(w).Encode(status)
}

// Liveness handles GET /health/live.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "alive"})
}

// Readiness handles GET /health/ready.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	dbCheck := h.checkDatabase()

	w.Header().Set("Content-Type", "application/json")

	if dbCheck.Status == "healthy" {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
		return
	}

	w.WriteHeader(http.StatusServiceUnavailable)
	resp := map[string]string{"status": "not_ready"}
	if h.isAuthenticated(r) {
		resp["message"] = dbCheck.Message
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// isAuthenticated checks for a signed-in session.
// SCS panics if session data is not loaded into context, so recover gracefully.
func (h *HealthHandler) isAuthenticated(r *http.Request) (authenticated bool) {
	if h.sm == nil {
		return false
	}
	defer func() {
		if rec := recover(); rec != nil {
			authenticated = false
		}
	}()
	return h.sm.GetInt64(r.Context(), SessionKeyUserID) > 0
}

// checkDatabase verifies database connectivity.
func (h *HealthHandler) checkDatabase() Check {
	start := time.Now()

	err := h.db.Ping()
	latency := time.Since(start)

	if err != nil {
		return Check{
			Status:  "unhealthy",
			Message: err.Error(),
			Latency: latency.String(),
		}
	}

	return Check{
		Status:  "healthy",
		Message: "Connected",
		Latency: latency.String(),
	}
}

// getSystemInfo returns system-level metrics.
func getSystemInfo() *SystemInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return &SystemInfo{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     formatBytes(m.Alloc),
		MemSys:       formatBytes(m.Sys),
	}
}

// formatBytes converts bytes to a human-readable string.
func formatBytes(bytes uint64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
