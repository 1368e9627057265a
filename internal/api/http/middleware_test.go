package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequestIDMiddleware(t *testing.T) {
	h := RequestIDMiddleware()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		if GetRequestID(r.Context()) == "" {
			t.Fatalf("missing request id in context")
		}
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("response header X-Request-ID missing")
	}

	// 既存IDを利用するケース
	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.Header.Set("X-Request-ID", "custom-id")
	rec2 := httptest.NewRecorder()
	h.ServeHTTP(rec2, req2)
	if rec2.Header().Get("X-Request-ID") != "custom-id" {
		t.Fatalf("should keep provided id")
	}
}

type captureLogger struct {
	errors []string
}

func (l *captureLogger) Debug(string, ...any)       {}
func (l *captureLogger) Info(string, ...any)        {}
func (l *captureLogger) Error(msg string, _ ...any) { l.errors = append(l.errors, msg) }

func TestRecoverMiddleware(t *testing.T) {
	l := &captureLogger{}
	h := RecoverMiddleware(l)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if len(l.errors) != 1 || l.errors[0] != "http.panic" {
		t.Fatalf("expected panic to be logged, got %v", l.errors)
	}
}
