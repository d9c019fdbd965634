package web

import (
	"net/http"

	"github.com/fixitnow/fixitnow/types"
)

func (h *Handler) booking(w http.ResponseWriter, r *http.Request) {
	out, err := h.Service.Booking(r.Context(), r.PathValue("bookingID"))
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, out, http.StatusOK)
}

func (h *Handler) markBookingComplete(w http.ResponseWriter, r *http.Request) {
	out, err := h.Service.MarkBookingComplete(r.Context(), types.CompleteBooking{
		BookingID: r.PathValue("bookingID"),
	})
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, out, http.StatusOK)
}

func (h *Handler) verifyBookingCompletion(w http.ResponseWriter, r *http.Request) {
	out, err := h.Service.VerifyBookingCompletion(r.Context(), types.CompleteBooking{
		BookingID: r.PathValue("bookingID"),
	})
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, out, http.StatusOK)
}
