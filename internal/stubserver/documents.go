package stubserver

import (
	"io"
	"net/http"
	"strings"

	"github.com/lectern0/lectern/internal/backend"
	"github.com/lectern0/lectern/internal/log"
)

// maxUploadBytes bounds the multipart memory buffer for uploads.
const maxUploadBytes = 32 << 20

// DocumentHandler handles document upload and listing.
type DocumentHandler struct {
	store  *Store
	logger log.Logger
}

// NewDocumentHandler creates a new document handler.
func NewDocumentHandler(store *Store, logger log.Logger) *DocumentHandler {
	return &DocumentHandler{store: store, logger: logger}
}

// RegisterRoutes registers document routes on the given mux.
func (h *DocumentHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /documents/upload", h.upload)
	mux.HandleFunc("GET /api/documents", h.list)
}

// upload accepts a multipart form with a username field and a file part,
// stores the document, and returns its id along with the extracted text.
func (h *DocumentHandler) upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeEnvelope(w, h.logger, "Invalid multipart form: "+err.Error())
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	if username == "" {
		writeEnvelope(w, h.logger, "username is required")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeEnvelope(w, h.logger, "file is required")
		return
	}
	defer file.Close()

	// The stub has no PDF/subtitle parser; the raw bytes stand in for
	// the extracted transcript text.
	text, err := io.ReadAll(file)
	if err != nil {
		writeEnvelope(w, h.logger, "reading upload: "+err.Error())
		return
	}

	contentType := header.Header.Get("Content-Type")
	doc := h.store.AddDocument(username, header.Filename, contentType, string(text))

	h.logger.Info("document stored",
		"document_id", doc.ID,
		"username", username,
		"filename", header.Filename,
		"text_length", len(text))

	writeJSON(w, h.logger, http.StatusOK, map[string]any{
		"document_id":  doc.ID,
		"filename":     header.Filename,
		"content_type": contentType,
		"text":         string(text),
		"text_length":  len(text),
	})
}

// list returns all documents uploaded by the given username.
func (h *DocumentHandler) list(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		writeEnvelope(w, h.logger, "username query parameter is required")
		return
	}

	docs := h.store.DocumentsFor(username)
	out := make([]backend.DocumentInfo, 0, len(docs))
	for _, doc := range docs {
		out = append(out, backend.DocumentInfo{
			DocumentID:  doc.ID,
			Title:       doc.Title,
			ContentType: doc.ContentType,
			CreatedAt:   doc.CreatedAt.Format("2006-01-02T15:04:05"),
		})
	}

	writeJSON(w, h.logger, http.StatusOK, map[string]any{"documents": out})
}
