package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestRequestIDGeneratesUUID(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = chimiddleware.GetReqID(r.Context())
	}))

	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/profile", nil))

	if _, err := uuid.Parse(seen); err != nil {
		t.Fatalf("expected UUID request id, got %q", seen)
	}
	if got := resp.Header().Get(chimiddleware.RequestIDHeader); got != seen {
		t.Fatalf("expected response header %q, got %q", seen, got)
	}
}

func TestRequestIDReusesValidHeader(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = chimiddleware.GetReqID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.Header.Set(chimiddleware.RequestIDHeader, "client-abc-123")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if seen != "client-abc-123" {
		t.Fatalf("expected inbound id reused, got %q", seen)
	}
}

func TestRequestIDRejectsInvalidHeaders(t *testing.T) {
	tests := []struct {
		name string
		id   string
	}{
		{"newline", "abc\ndef"},
		{"tab", "abc\tdef"},
		{"del", "abc\x7f"},
		{"high byte", "abc\xff"},
		{"too long", strings.Repeat("a", maxRequestIDLength+1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = chimiddleware.GetReqID(r.Context())
			}))
			req := httptest.NewRequest(http.MethodGet, "/profile", nil)
			req.Header.Set(chimiddleware.RequestIDHeader, tt.id)
			h.ServeHTTP(httptest.NewRecorder(), req)

			if seen == tt.id {
				t.Fatalf("expected %q to be replaced", tt.id)
			}
			if _, err := uuid.Parse(seen); err != nil {
				t.Fatalf("expected generated UUID, got %q", seen)
			}
		})
	}
}

func TestValidRequestIDBoundaries(t *testing.T) {
	if !validRequestID(strings.Repeat("x", maxRequestIDLength)) {
		t.Error("expected max length to be accepted")
	}
	if !validRequestID(" ~") {
		t.Error("expected printable boundaries to be accepted")
	}
	if validRequestID("") {
		t.Error("expected empty id to be rejected")
	}
}

func TestCORSAllowsOrigin(t *testing.T) {
	h := CORS()(http.HandlerFunc(okHandler))
	req := httptest.NewRequest(http.MethodGet, "http://localhost/profile", nil)
	req.Header.Set("Origin", "http://example.com")
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)

	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected wildcard origin, got %q", got)
	}
	if got := resp.Header().Get("Access-Control-Expose-Headers"); !strings.Contains(got, "Location") {
		t.Fatalf("expected Location exposed, got %q", got)
	}
}

func TestCORSPreflightPut(t *testing.T) {
	called := false
	h := CORS()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	req := httptest.NewRequest(http.MethodOptions, "http://localhost/profile/1", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)

	if called {
		t.Fatal("expected preflight to short-circuit")
	}
	if got := resp.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(got, http.MethodPut) {
		t.Fatalf("expected PUT allowed, got %q", got)
	}
}

func TestVaryAddsAccept(t *testing.T) {
	resp := httptest.NewRecorder()
	Vary()(http.HandlerFunc(okHandler)).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if got := resp.Header().Values("Vary"); len(got) != 1 || got[0] != "Accept" {
		t.Fatalf("expected Vary: Accept, got %v", got)
	}
}

func TestSecuritySetsHeaders(t *testing.T) {
	resp := httptest.NewRecorder()
	Security()(http.HandlerFunc(okHandler)).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/profile", nil))

	want := map[string]string{
		"Cache-Control":          "no-store",
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
	}
	for k, v := range want {
		if got := resp.Header().Get(k); got != v {
			t.Errorf("expected %s=%q, got %q", k, v, got)
		}
	}
}

func TestSecuritySkipsPaths(t *testing.T) {
	resp := httptest.NewRecorder()
	Security("/docs")(http.HandlerFunc(okHandler)).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/docs/index", nil))
	if got := resp.Header().Get("Cache-Control"); got != "" {
		t.Fatalf("expected no security headers on skipped path, got %q", got)
	}
}
