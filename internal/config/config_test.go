// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"strings"
	"testing"
)

const testSecret = "Abc123!xyz-long-enough-secret-key-0"

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("OCCASIO_SESSION_SECRET", testSecret)
	t.Setenv("OCCASIO_AI_ENDPOINT", "https://example.com/v1/models/gemini:generateContent")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.DBPath != "./data/occasio.db" {
		t.Errorf("DBPath = %q, want ./data/occasio.db", cfg.DBPath)
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want 8080", cfg.ServerPort)
	}
	if !cfg.IsDevelopment() {
		t.Error("IsDevelopment() = false, want true by default")
	}
	if cfg.ActivityRetentionDays != 90 {
		t.Errorf("ActivityRetentionDays = %d, want 90", cfg.ActivityRetentionDays)
	}
}

func TestLoadRequiresSessionSecret(t *testing.T) {
	t.Setenv("OCCASIO_SESSION_SECRET", "")
	t.Setenv("OCCASIO_AI_ENDPOINT", "https://example.com/generate")

	if _, err := Load(); err == nil {
		t.Error("Load() succeeded with empty session secret")
	}
}

func TestLoadRejectsShortSecret(t *testing.T) {
	t.Setenv("OCCASIO_SESSION_SECRET", "too-short")
	t.Setenv("OCCASIO_AI_ENDPOINT", "https://example.com/generate")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() succeeded with short session secret")
	}
	if !strings.Contains(err.Error(), "32 bytes") {
		t.Errorf("error = %q, want mention of 32 bytes", err)
	}
}

func TestLoadRejectsKnownWeakSecret(t *testing.T) {
	t.Setenv("OCCASIO_SESSION_SECRET", "change-me-to-32-byte-secret-key!")
	t.Setenv("OCCASIO_AI_ENDPOINT", "https://example.com/generate")

	if _, err := Load(); err == nil {
		t.Error("Load() succeeded with known default secret")
	}
}

func TestLoadRequiresAIEndpoint(t *testing.T) {
	t.Setenv("OCCASIO_SESSION_SECRET", testSecret)
	t.Setenv("OCCASIO_AI_ENDPOINT", "")

	if _, err := Load(); err == nil {
		t.Error("Load() succeeded without AI endpoint")
	}
}

func TestServerAddr(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("OCCASIO_SERVER_HOST", "0.0.0.0")
	t.Setenv("OCCASIO_SERVER_PORT", "9000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := cfg.ServerAddr(); got != "0.0.0.0:9000" {
		t.Errorf("ServerAddr() = %q, want 0.0.0.0:9000", got)
	}
}

func TestHasMinimumEntropy(t *testing.T) {
	tests := []struct {
		secret string
		want   bool
	}{
		{"Abc123!xyz", true},
		{"abcdefghij", false},
		{"abcDEFghij", false},
		{"abc123def4", false},
		{"Ab1", true},
	}
	for _, tt := range tests {
		if got := hasMinimumEntropy(tt.secret); got != tt.want {
			t.Errorf("hasMinimumEntropy(%q) = %v, want %v", tt.secret, got, tt.want)
		}
	}
}
