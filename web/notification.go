package web

import (
	"net/http"

	"github.com/fixitnow/fixitnow/types"
)

func (h *Handler) notifications(w http.ResponseWriter, r *http.Request) {
	out, err := h.Service.Notifications(r.Context(), types.ListNotifications{
		UnreadOnly: r.URL.Query().Get("unread") == "true",
	})
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, out, http.StatusOK)
}

func (h *Handler) unreadNotificationCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.Service.UnreadNotificationCount(r.Context())
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, map[string]int64{"count": count}, http.StatusOK)
}

func (h *Handler) readNotification(w http.ResponseWriter, r *http.Request) {
	err := h.Service.MarkNotificationRead(r.Context(), types.ReadNotification{
		NotificationID: r.PathValue("notificationID"),
	})
	if err != nil {
		h.respondErr(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) readAllNotifications(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.MarkAllNotificationsRead(r.Context()); err != nil {
		h.respondErr(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) readNotificationsFromSender(w http.ResponseWriter, r *http.Request) {
	err := h.Service.MarkNotificationsFromSenderRead(r.Context(), types.ReadNotificationsFromSender{
		SenderID: r.PathValue("senderID"),
	})
	if err != nil {
		h.respondErr(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
