package web

import (
	"net/http"

	"github.com/fixitnow/fixitnow/types"
)

func (h *Handler) createPushSubscription(w http.ResponseWriter, r *http.Request) {
	var in types.CreatePushSubscription
	if err := decodeBody(r, &in); err != nil {
		h.respondErr(w, err)
		return
	}

	out, err := h.Service.CreatePushSubscription(r.Context(), in)
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, out, http.StatusCreated)
}
