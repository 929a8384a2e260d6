package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDefaultCSRFConfig_Development(t *testing.T) {
	authKey := []byte("12345678901234567890123456789012") // 32-byte key
	cfg := DefaultCSRFConfig(authKey, true)

	if len(cfg.AuthKey) != 32 {
		t.Errorf("expected 32-byte AuthKey, got %d bytes", len(cfg.AuthKey))
	}

	// TrustedOrigins must be host-only (not full URLs) for the csrf
	// library to match them.
	if len(cfg.TrustedOrigins) != 2 {
		t.Errorf("expected 2 TrustedOrigins in dev mode, got %d", len(cfg.TrustedOrigins))
	}
	for _, origin := range cfg.TrustedOrigins {
		if len(origin) > 4 && origin[:4] == "http" {
			t.Errorf("TrustedOrigin should be host:port, not full URL: %s", origin)
		}
	}
}

func TestDefaultCSRFConfig_Production(t *testing.T) {
	authKey := []byte("12345678901234567890123456789012")
	cfg := DefaultCSRFConfig(authKey, false)

	if len(cfg.TrustedOrigins) != 0 {
		t.Errorf("expected no TrustedOrigins in production, got %d", len(cfg.TrustedOrigins))
	}
}

func TestSkipCSRF_HandlerStillCalled(t *testing.T) {
	middleware := SkipCSRF("/ws", "/health")

	var called bool
	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	for _, path := range []string{"/ws", "/health", "/login"} {
		called = false
		req := httptest.NewRequest(http.MethodPost, path, nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if !called {
			t.Errorf("path %s: handler not called", path)
		}
	}
}

func TestCSRF_MiddlewareCreation(t *testing.T) {
	authKey := []byte("12345678901234567890123456789012")
	cfg := DefaultCSRFConfig(authKey, true)

	middleware := CSRF(cfg)
	if middleware == nil {
		t.Fatal("expected middleware to be non-nil")
	}

	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	if handler == nil {
		t.Error("expected wrapped handler to be non-nil")
	}
}
