package stubserver

import (
	"net/http"
	"strings"

	"github.com/lectern0/lectern/internal/log"
)

// SessionHandler handles session creation.
type SessionHandler struct {
	store  *Store
	logger log.Logger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(store *Store, logger log.Logger) *SessionHandler {
	return &SessionHandler{store: store, logger: logger}
}

// RegisterRoutes registers session routes on the given mux.
func (h *SessionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /sessions/create", h.create)
}

// create binds a username and document id into a new session.
func (h *SessionHandler) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeEnvelope(w, h.logger, "Invalid multipart form: "+err.Error())
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	documentID := strings.TrimSpace(r.FormValue("document_id"))
	if username == "" || documentID == "" {
		writeEnvelope(w, h.logger, "username and document_id are required")
		return
	}
	if _, ok := h.store.Document(documentID); !ok {
		writeEnvelope(w, h.logger, "Unknown document: "+documentID)
		return
	}

	sess := h.store.AddSession(username, documentID)
	h.logger.Info("session created",
		"session_id", sess.ID,
		"document_id", documentID)

	writeJSON(w, h.logger, http.StatusOK, map[string]string{
		"session_id":  sess.ID,
		"document_id": documentID,
	})
}
