package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexedwards/scs/v2"

	"occasio/internal/model"
)

func TestAuthRedirectsAnonymous(t *testing.T) {
	sm := scs.New()

	var called bool
	handler := sm.LoadAndSave(Auth(sm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})))

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if called {
		t.Error("handler called without a session identity")
	}
	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want /login", loc)
	}
}

func TestGetUserFromContext(t *testing.T) {
	user := model.User{ID: 7, Role: model.RoleMember}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), ContextKeyUser, user))

	got := GetUser(req)
	if got == nil || got.ID != 7 {
		t.Fatalf("GetUser() = %v, want user 7", got)
	}
	if GetUserID(req) != 7 {
		t.Errorf("GetUserID() = %d, want 7", GetUserID(req))
	}
	if ptr := GetUserIDPtr(req); ptr == nil || *ptr != 7 {
		t.Errorf("GetUserIDPtr() = %v, want 7", ptr)
	}
}

func TestGetUserMissing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	if GetUser(req) != nil {
		t.Error("GetUser() should be nil without context value")
	}
	if GetUserID(req) != 0 {
		t.Error("GetUserID() should be 0 without context value")
	}
	if GetUserIDPtr(req) != nil {
		t.Error("GetUserIDPtr() should be nil without context value")
	}
}

func TestRequestPath(t *testing.T) {
	var got string
	handler := RequestPath(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetRequestPath(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/events/abc", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got != "/events/abc" {
		t.Errorf("GetRequestPath() = %q, want /events/abc", got)
	}
}
