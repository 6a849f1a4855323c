package handlers

import (
	"net/http"
	"time"

	"audiogw/internal/httpkit"
)

// Health reports service liveness. The gateway holds no local state, so
// there is nothing deeper to check; provider reachability shows up on the
// processing endpoints themselves.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httpkit.WriteJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"service":   "audiogw",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
