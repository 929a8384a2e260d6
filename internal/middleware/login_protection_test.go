package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestProtection() *LoginProtection {
	return NewLoginProtection(LoginProtectionConfig{
		IPRateLimit:       100, // effectively unlimited for lockout tests
		IPBurst:           100,
		MaxFailedAttempts: 3,
		LockoutDuration:   time.Minute,
		AttemptWindow:     time.Minute,
	})
}

func TestAccountLockoutAfterMaxFailures(t *testing.T) {
	lp := newTestProtection()
	email := "user@example.com"

	for i := 0; i < 2; i++ {
		locked, _ := lp.RecordFailedAttempt(email)
		if locked {
			t.Fatalf("locked after %d attempts, want lock at 3", i+1)
		}
	}

	locked, duration := lp.RecordFailedAttempt(email)
	if !locked {
		t.Fatal("expected account to be locked after 3 failures")
	}
	if duration != time.Minute {
		t.Errorf("lock duration = %v, want 1m", duration)
	}

	isLocked, remaining := lp.IsAccountLocked(email)
	if !isLocked {
		t.Error("IsAccountLocked() = false after lockout")
	}
	if remaining <= 0 || remaining > time.Minute {
		t.Errorf("remaining = %v, want within (0, 1m]", remaining)
	}
}

func TestSuccessfulLoginClearsAttempts(t *testing.T) {
	lp := newTestProtection()
	email := "user@example.com"

	lp.RecordFailedAttempt(email)
	lp.RecordFailedAttempt(email)
	lp.RecordSuccessfulLogin(email)

	if got := lp.GetRemainingAttempts(email); got != 3 {
		t.Errorf("GetRemainingAttempts() = %d, want 3 after successful login", got)
	}
}

func TestRemainingAttemptsCountdown(t *testing.T) {
	lp := newTestProtection()
	email := "user@example.com"

	if got := lp.GetRemainingAttempts(email); got != 3 {
		t.Errorf("fresh account: remaining = %d, want 3", got)
	}

	lp.RecordFailedAttempt(email)
	if got := lp.GetRemainingAttempts(email); got != 2 {
		t.Errorf("after 1 failure: remaining = %d, want 2", got)
	}
}

func TestLockoutBackoffDoubles(t *testing.T) {
	lp := newTestProtection()
	email := "user@example.com"

	for i := 0; i < 3; i++ {
		lp.RecordFailedAttempt(email)
	}
	// Second lockout round
	var duration time.Duration
	var locked bool
	for i := 0; i < 3; i++ {
		locked, duration = lp.RecordFailedAttempt(email)
	}
	if !locked {
		t.Fatal("expected second lockout")
	}
	if duration != 2*time.Minute {
		t.Errorf("second lock duration = %v, want 2m", duration)
	}
}

func TestLoginMiddlewareRateLimitsPost(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		IPRateLimit: 1,
		IPBurst:     1,
	})

	handler := lp.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "198.51.100.7:1234"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request: status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("second request: status = %d, want 429", rec.Code)
	}

	// GET requests bypass the limiter
	getReq := httptest.NewRequest(http.MethodGet, "/login", nil)
	getReq.RemoteAddr = "198.51.100.7:1234"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, getReq)
	if rec.Code != http.StatusOK {
		t.Errorf("GET request: status = %d, want 200", rec.Code)
	}
}

func TestGlobalRateLimiterPerIP(t *testing.T) {
	rl := NewGlobalRateLimiter(1, 1)
	handler := rl.HTMLMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRequest(http.MethodGet, "/", nil)
	first.RemoteAddr = "203.0.113.1:1000"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, first)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request: status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, first)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("second request same IP: status = %d, want 429", rec.Code)
	}

	// A different IP has its own limiter
	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.RemoteAddr = "203.0.113.2:1000"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, other)
	if rec.Code != http.StatusOK {
		t.Errorf("other IP: status = %d, want 200", rec.Code)
	}
}

func TestGetClientIPHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5000"

	if got := getClientIP(req); got != "10.0.0.1:5000" {
		t.Errorf("RemoteAddr fallback = %q", got)
	}

	req.Header.Set("X-Forwarded-For", "198.51.100.9")
	if got := getClientIP(req); got != "198.51.100.9" {
		t.Errorf("X-Forwarded-For = %q", got)
	}

	req.Header.Set("X-Real-IP", "192.0.2.4")
	if got := getClientIP(req); got != "192.0.2.4" {
		t.Errorf("X-Real-IP takes precedence, got %q", got)
	}
}
