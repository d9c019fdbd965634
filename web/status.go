package web

import "net/http"

// userStatus is deliberately public: the marketplace UI shows a
// provider's availability dot before the visitor logs in.
func (h *Handler) userStatus(w http.ResponseWriter, r *http.Request) {
	out, err := h.Service.UserOnline(r.Context(), r.PathValue("userID"))
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, out, http.StatusOK)
}
