// Package web exposes the JSON API and mounts the live-channel
// gateway and the metrics endpoint.
package web

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fixitnow/fixitnow/auth"
	"github.com/fixitnow/fixitnow/service"
)

type Handler struct {
	Service *service.Service
	Tokens  *auth.Tokens
	Gateway http.Handler
	Logger  *slog.Logger

	handler http.Handler
	once    sync.Once
}

func (h *Handler) init() {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/messages", h.sendMessage)
	mux.HandleFunc("GET /api/messages/{otherUserID}", h.messages)
	mux.HandleFunc("GET /api/notifications", h.notifications)
	mux.HandleFunc("GET /api/notifications/count", h.unreadNotificationCount)
	mux.HandleFunc("PUT /api/notifications/read-all", h.readAllNotifications)
	mux.HandleFunc("PUT /api/notifications/read-from/{senderID}", h.readNotificationsFromSender)
	mux.HandleFunc("PUT /api/notifications/{notificationID}/read", h.readNotification)
	mux.HandleFunc("GET /api/bookings/{bookingID}", h.booking)
	mux.HandleFunc("POST /api/bookings/{bookingID}/complete", h.markBookingComplete)
	mux.HandleFunc("POST /api/bookings/{bookingID}/verify", h.verifyBookingCompletion)
	mux.HandleFunc("POST /api/push-subscriptions", h.createPushSubscription)
	mux.HandleFunc("GET /api/status/{userID}", h.userStatus)
	mux.Handle("GET /ws", h.Gateway)
	mux.Handle("GET /metrics", promhttp.Handler())

	h.handler = h.withUser(mux)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.once.Do(h.init)
	h.handler.ServeHTTP(w, r)
}

// withUser resolves the request's bearer credential into a context
// principal. A missing or invalid credential passes through without
// one; each endpoint decides whether to reject.
func (h *Handler) withUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := h.Tokens.Verify(token)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		usr, err := h.Service.Postgres.UserByEmail(r.Context(), claims.Subject)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.ContextWithUser(r.Context(), usr)))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	raw := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(raw) <= len(prefix) || !strings.EqualFold(raw[:len(prefix)], prefix) {
		return "", false
	}

	token := strings.TrimSpace(raw[len(prefix):])
	if token == "" {
		return "", false
	}
	return token, true
}
