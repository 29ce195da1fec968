package stubserver

import (
	"encoding/json"
	"net/http"

	"github.com/lectern0/lectern/internal/log"
)

// writeJSON writes a JSON response with the given status code.
// Note: If encoding fails after WriteHeader is called, there's no way to
// notify the client since the status code is already sent. The error is
// logged for debugging but doesn't affect the response.
func writeJSON(w http.ResponseWriter, logger log.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

// writeEnvelope writes the backend's {"error": "..."} failure envelope.
// The real backend emits these under a 200 status; clients must treat the
// envelope as the failure signal, not the status code.
func writeEnvelope(w http.ResponseWriter, logger log.Logger, message string) {
	writeJSON(w, logger, http.StatusOK, map[string]string{"error": message})
}
