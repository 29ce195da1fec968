package stubserver

import (
	"net/http"

	"github.com/lectern0/lectern/internal/log"
)

// HealthHandler handles the health probe endpoints.
type HealthHandler struct {
	logger log.Logger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(logger log.Logger) *HealthHandler {
	return &HealthHandler{logger: logger}
}

// RegisterRoutes registers health routes on the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", h.apiHealth)
	mux.HandleFunc("GET /health", h.health)
}

// apiHealth is the probe the front end polls.
func (h *HealthHandler) apiHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, map[string]bool{"ok": true})
}

// health is the legacy probe kept for wire compatibility.
func (h *HealthHandler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, map[string]string{"status": "Ok"})
}
