package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/apiwatch/apiwatch/internal/auth"
	"github.com/apiwatch/apiwatch/internal/model"
)

func TestSession_AnonymousGets401(t *testing.T) {
	var handlerRan bool
	h := Session(SessionConfig{
		Logger:   discardLogger(),
		Verifier: &fakeVerifier{session: nil},
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerRan = true
	}))

	req := httptest.NewRequest(http.MethodPatch, "/alerts/abc", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if handlerRan {
		t.Error("handler must not run for anonymous requests")
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON error body, got content type %s", ct)
	}
}

func TestSession_ReusesGuardResolution(t *testing.T) {
	session := &model.Session{UserID: "user-1", Email: "user@example.com"}
	verifier := &fakeVerifier{session: session}

	guard := Guard(GuardConfig{
		Logger:     discardLogger(),
		Verifier:   verifier,
		Prefixes:   []string{"/apis"},
		SigninPath: "/signin",
	})

	var got *model.Session
	h := guard(Session(SessionConfig{
		Logger:   discardLogger(),
		Verifier: verifier,
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = auth.SessionFromContext(r.Context())
	})))

	req := httptest.NewRequest(http.MethodGet, "/apis", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got == nil || got.UserID != session.UserID {
		t.Errorf("session not injected: got %+v", got)
	}
	if verifier.calls != 1 {
		t.Errorf("expected a single session resolution, got %d", verifier.calls)
	}
}

func TestSession_InjectsSession(t *testing.T) {
	want := &model.Session{UserID: "user-1", Email: "user@example.com"}

	var got *model.Session
	h := Session(SessionConfig{
		Logger:   discardLogger(),
		Verifier: &fakeVerifier{session: want},
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = auth.SessionFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/alerts", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got == nil || got.UserID != want.UserID || got.Email != want.Email {
		t.Errorf("session not injected: got %+v", got)
	}
}
