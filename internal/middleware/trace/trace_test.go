package trace

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	applog "assistente/internal/log"
)

func TestMiddlewareAssignsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := applog.New(applog.Config{Level: slog.LevelDebug, Output: &buf})
	m := NewMiddleware(logger, func(*http.Request) string { return "10.1.1.1" })

	var ctxID string
	var ctxLogger *applog.Logger
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxID = GetRequestID(r.Context())
		ctxLogger = applog.FromContext(r.Context())
		w.WriteHeader(http.StatusBadRequest)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook", nil))

	if !strings.HasPrefix(ctxID, "req_") {
		t.Fatalf("request id = %q", ctxID)
	}
	if rec.Header().Get(HeaderRequestID) != ctxID {
		t.Errorf("response header = %q, want %q", rec.Header().Get(HeaderRequestID), ctxID)
	}
	if ctxLogger.Component() != applog.ComponentHTTP {
		t.Errorf("context logger component = %q", ctxLogger.Component())
	}

	out := buf.String()
	if !strings.Contains(out, "HTTP request started") || !strings.Contains(out, "status_code=400") || !strings.Contains(out, "level=WARN") {
		t.Errorf("unexpected log output %q", out)
	}
	if m.GetMetrics().TotalRequests != 1 {
		t.Errorf("metrics = %+v", m.GetMetrics())
	}
}

func TestMiddlewareKeepsCallerRequestID(t *testing.T) {
	logger := applog.New(applog.Config{Output: &bytes.Buffer{}})
	m := NewMiddleware(logger, nil)
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	r := httptest.NewRequest(http.MethodGet, "/status", nil)
	r.Header.Set(HeaderRequestID, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	if got := rec.Header().Get(HeaderRequestID); got != "abc-123" {
		t.Errorf("request id = %q, want abc-123", got)
	}
}
