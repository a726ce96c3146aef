package trace

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"kaamgarau/internal/log"
	"kaamgarau/internal/metrics"
)

func newTestMiddleware(buf *bytes.Buffer, pm *metrics.Manager) *Middleware {
	logger := log.New(log.Config{Level: slog.LevelDebug, Output: buf})
	return NewMiddleware(logger,
		func(*http.Request) string { return "203.0.113.1" },
		WithPrometheus(pm),
		WithRoute(func(*http.Request) string { return "/api/v1/me/level" }),
	)
}

func TestMiddlewareAssignsRequestID(t *testing.T) {
	var buf bytes.Buffer
	m := newTestMiddleware(&buf, nil)

	var seenID string
	var seenLogger *log.Logger
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = GetRequestID(r.Context())
		seenLogger = log.FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/me/level", nil))

	if !strings.HasPrefix(seenID, "req_") {
		t.Fatalf("request id = %q", seenID)
	}
	if rec.Header().Get(HeaderRequestID) != seenID {
		t.Errorf("response header = %q, want %q", rec.Header().Get(HeaderRequestID), seenID)
	}
	if seenLogger.Component() != log.ComponentHTTP {
		t.Errorf("context logger component = %q", seenLogger.Component())
	}
	out := buf.String()
	for _, want := range []string{"HTTP request completed", "status_code=204", "client_ip=203.0.113.1"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q: %s", want, out)
		}
	}
	if got := m.GetMetrics().TotalRequests; got != 1 {
		t.Errorf("TotalRequests = %d", got)
	}
}

func TestMiddlewareHonorsIncomingRequestID(t *testing.T) {
	var buf bytes.Buffer
	h := newTestMiddleware(&buf, nil).Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	tests := []struct {
		incoming string
		keep     bool
	}{
		{"abc-123_x.y", true},
		{"has space", false},
		{strings.Repeat("a", 65), false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderRequestID, tt.incoming)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		got := rec.Header().Get(HeaderRequestID)
		if (got == tt.incoming) != tt.keep {
			t.Errorf("incoming %q: response id %q", tt.incoming, got)
		}
	}
}

func TestMiddlewareRecordsPrometheus(t *testing.T) {
	var buf bytes.Buffer
	pm := metrics.NewManager()
	h := newTestMiddleware(&buf, pm).Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/me/level?x=1", nil))

	n, err := testutil.GatherAndCount(pm.Registry(), "kaamgarau_http_requests_total")
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("series = %d, want 1", n)
	}
	if !strings.Contains(buf.String(), "level=ERROR") {
		t.Errorf("5xx should log at error level: %s", buf.String())
	}
}

func TestResponseWriterKeepsFirstStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}
	_, _ = rw.Write([]byte("ok"))
	rw.WriteHeader(http.StatusTeapot)
	if rw.statusCode != http.StatusOK {
		t.Errorf("statusCode = %d, want 200", rw.statusCode)
	}
}
