package trace

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"ledger/internal/log"
)

func TestMiddleware_AssignsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Component: log.ComponentHTTP, Handler: slog.NewTextHandler(&buf, nil)})

	var seen string
	var handlerLogger *log.Logger
	m := NewMiddleware(func(*http.Request) string { return "198.51.100.1" })
	h := log.Middleware(logger)(m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		handlerLogger = log.FromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/dashboard?x=1", nil))

	if _, err := uuid.Parse(seen); err != nil {
		t.Fatalf("request id %q is not a UUID", seen)
	}
	if got := rr.Header().Get(HeaderRequestID); got != seen {
		t.Fatalf("response header %q, want %q", got, seen)
	}
	if handlerLogger == nil || handlerLogger.Component() != log.ComponentHTTP {
		t.Fatal("handler should receive the request logger")
	}

	out := buf.String()
	for _, want := range []string{"HTTP request completed", "status_code=418", "request_id=" + seen, "client_ip=198.51.100.1", "level=WARN"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output missing %q:\n%s", want, out)
		}
	}
	if m.TotalRequests() != 1 {
		t.Fatalf("TotalRequests() = %d, want 1", m.TotalRequests())
	}
}

func TestMiddleware_KeepsValidIncomingID(t *testing.T) {
	incoming := uuid.NewString()
	m := NewMiddleware(nil)
	var seen string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	for _, tc := range []struct {
		header string
		keep   bool
	}{
		{incoming, true},
		{"not-a-uuid", false},
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderRequestID, tc.header)
		h.ServeHTTP(httptest.NewRecorder(), req)
		if (seen == tc.header) != tc.keep {
			t.Fatalf("header %q: request id %q, keep=%v", tc.header, seen, tc.keep)
		}
	}
}
