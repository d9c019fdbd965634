package web

import (
	"net/http"

	"github.com/fixitnow/fixitnow/types"
)

func (h *Handler) sendMessage(w http.ResponseWriter, r *http.Request) {
	var in types.SendMessage
	if err := decodeBody(r, &in); err != nil {
		h.respondErr(w, err)
		return
	}

	out, err := h.Service.SendMessage(r.Context(), in)
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, out, http.StatusCreated)
}

func (h *Handler) messages(w http.ResponseWriter, r *http.Request) {
	out, err := h.Service.Messages(r.Context(), types.ListMessages{
		OtherUserID: r.PathValue("otherUserID"),
	})
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, out, http.StatusOK)
}
