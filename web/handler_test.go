package web

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fixitnow/fixitnow/auth"
	"github.com/fixitnow/fixitnow/service"
)

func testHandler(t *testing.T) *Handler {
	t.Helper()

	svc := service.New(&service.Config{})
	return &Handler{
		Service: svc,
		Tokens:  auth.NewTokens("test-secret"),
		Gateway: http.NotFoundHandler(),
		Logger:  slog.New(slog.DiscardHandler),
	}
}

func TestHandler_Unauthenticated(t *testing.T) {
	h := testHandler(t)

	tt := []struct {
		method string
		target string
		body   string
	}{
		{http.MethodPost, "/api/messages", `{"receiverId":"u2","content":"hi"}`},
		{http.MethodGet, "/api/messages/u2", ""},
		{http.MethodGet, "/api/notifications", ""},
		{http.MethodGet, "/api/notifications/count", ""},
		{http.MethodPut, "/api/notifications/n1/read", ""},
		{http.MethodPut, "/api/notifications/read-all", ""},
		{http.MethodPut, "/api/notifications/read-from/u2", ""},
		{http.MethodPost, "/api/bookings/b1/complete", ""},
		{http.MethodPost, "/api/bookings/b1/verify", ""},
		{http.MethodPost, "/api/push-subscriptions", `{"endpoint":"https://push.example.com/x","p256dh":"k","auth":"a"}`},
	}
	for _, tc := range tt {
		t.Run(tc.method+" "+tc.target, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.target, strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("got status %d, want %d: %s", rec.Code, http.StatusUnauthorized, rec.Body)
			}
		})
	}
}

func TestHandler_MalformedBearerIgnored(t *testing.T) {
	h := testHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/notifications", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestHandler_UnknownRoute(t *testing.T) {
	h := testHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHandler_Metrics(t *testing.T) {
	h := testHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", rec.Code, http.StatusOK)
	}
}
