package handler

import "net/http"

// handleDictStats handles GET /debug/dict.
func (h *Handler) handleDictStats(w http.ResponseWriter, r *http.Request) {
	if h.stats == nil {
		h.writeError(w, r, http.StatusServiceUnavailable, "UNAVAILABLE", "no store attached")
		return
	}
	h.writeJSON(w, r, http.StatusOK, h.stats.Stats())
}
