package stubserver

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/lectern0/lectern/internal/backend"
	"github.com/lectern0/lectern/internal/log"
	"github.com/lectern0/lectern/internal/session"
)

// notesPDF is a minimal single-page PDF shell. The stub has no markdown
// renderer; PDF generation stays a backend concern.
const notesPDF = "%PDF-1.4\n1 0 obj<</Type/Catalog/Pages 2 0 R>>endobj\n" +
	"2 0 obj<</Type/Pages/Kids[3 0 R]/Count 1>>endobj\n" +
	"3 0 obj<</Type/Page/Parent 2 0 R/MediaBox[0 0 612 792]>>endobj\n" +
	"trailer<</Root 1 0 R>>\n%%EOF\n"

// snippetLength bounds how much raw document text the canned generator
// and chat answers quote back.
const snippetLength = 200

// NotesHandler handles format selection, generation, chat, and downloads.
type NotesHandler struct {
	store  *Store
	logger log.Logger
}

// NewNotesHandler creates a new notes handler.
func NewNotesHandler(store *Store, logger log.Logger) *NotesHandler {
	return &NotesHandler{store: store, logger: logger}
}

// RegisterRoutes registers notes routes on the given mux.
func (h *NotesHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /formats", h.selectFormat)
	mux.HandleFunc("POST /generate-notes", h.generate)
	mux.HandleFunc("POST /chat", h.chat)
	mux.HandleFunc("POST /download/pdf", h.downloadPDF)
	mux.HandleFunc("POST /download/markdown", h.downloadMarkdown)
	mux.HandleFunc("GET /api/formats", h.listFormats)
}

// selectFormat registers the notes format for a session. Must be called
// before generation. Hyperparameter fields ride along as plain form
// fields; missing or malformed values fall back to the pipeline defaults.
func (h *NotesHandler) selectFormat(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeEnvelope(w, h.logger, "Invalid multipart form: "+err.Error())
		return
	}

	sessionID := r.FormValue("session_id")
	formatKey := r.FormValue("notes_format")
	customPrompt := strings.TrimSpace(r.FormValue("custom_format"))

	if !backend.ValidFormatKey(formatKey) {
		writeEnvelope(w, h.logger, "Invalid format: "+formatKey)
		return
	}
	if backend.IsCustomFormat(formatKey) && customPrompt == "" {
		writeEnvelope(w, h.logger, "Custom format is required when using Custom Template")
		return
	}
	if !backend.IsCustomFormat(formatKey) {
		customPrompt = ""
	}

	h.store.SetSelection(sessionID, Selection{
		FormatKey:    formatKey,
		CustomPrompt: customPrompt,
		ChunkSize:    formInt(r, "chunk_size", session.DefaultChunkSize),
		ChunkOverlap: formInt(r, "chunk_overlap", session.DefaultChunkOverlap),
		RetrieverK:   formInt(r, "retriever_k", session.DefaultRetrieverK),
		Temperature:  formFloat(r, "temperature", session.DefaultTemperature),
	})

	writeJSON(w, h.logger, http.StatusOK, map[string]string{
		"message":       "Format selected successfully",
		"notes_format":  backend.FormatLabel(formatKey),
		"custom_format": customPrompt,
	})
}

// generate produces canned study notes for the session. Requires a prior
// format selection, mirroring the real backend's coupling.
func (h *NotesHandler) generate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeEnvelope(w, h.logger, "Invalid multipart form: "+err.Error())
		return
	}

	sessionID := r.FormValue("session_id")
	sel, ok := h.store.Selection(sessionID)
	if !ok {
		writeEnvelope(w, h.logger, "Please select a notes format first using /formats")
		return
	}
	sess, ok := h.store.Session(sessionID)
	if !ok {
		writeEnvelope(w, h.logger, "Invalid session")
		return
	}

	title := "your document"
	snippet := ""
	if doc, ok := h.store.Document(sess.DocumentID); ok {
		title = doc.Title
		snippet = docSnippet(doc.Text)
	}

	notes := fmt.Sprintf(`# Study Notes: %s

Format: **%s**

## Overview

These notes come from the local stub backend, not the RAG pipeline.
They are generated for %s with chunk size %d, overlap %d, retriever K %d,
temperature %.1f.

## Source Excerpt

> %s

## Key Points

- The upload, session, format, and generation stages completed in order.
- Downloads and chat are available for this session.
`, title, backend.FormatLabel(sel.FormatKey), title,
		sel.ChunkSize, sel.ChunkOverlap, sel.RetrieverK, sel.Temperature,
		snippet)

	h.store.SetNotes(notes)
	h.logger.Info("notes generated",
		"session_id", sessionID,
		"format", sel.FormatKey)

	writeJSON(w, h.logger, http.StatusOK, map[string]string{"notes": notes})
}

// chat answers a question scoped to the session with canned content.
func (h *NotesHandler) chat(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeEnvelope(w, h.logger, "Invalid multipart form: "+err.Error())
		return
	}

	sessionID := r.FormValue("session_id")
	question := strings.TrimSpace(r.FormValue("question"))

	sess, ok := h.store.Session(sessionID)
	if !ok {
		writeEnvelope(w, h.logger, "Invalid session")
		return
	}

	answer := fmt.Sprintf("You asked: %q\n\nThis is the local stub backend; "+
		"a connected RAG pipeline would answer from the uploaded document.", question)
	if doc, ok := h.store.Document(sess.DocumentID); ok {
		answer += "\n\nNearest excerpt:\n> " + docSnippet(doc.Text)
	}

	writeJSON(w, h.logger, http.StatusOK, map[string]string{"answer": answer})
}

// downloadPDF exports the last generated notes as a PDF shell.
func (h *NotesHandler) downloadPDF(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeEnvelope(w, h.logger, "Invalid multipart form: "+err.Error())
		return
	}
	if strings.TrimSpace(h.store.Notes()) == "" {
		writeEnvelope(w, h.logger, "No notes available. Generate notes first")
		return
	}

	name := r.FormValue("pdfname")
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`.pdf"`)
	_, _ = w.Write([]byte(notesPDF))
}

// downloadMarkdown exports the last generated notes as markdown bytes.
func (h *NotesHandler) downloadMarkdown(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeEnvelope(w, h.logger, "Invalid multipart form: "+err.Error())
		return
	}

	notes := strings.TrimSpace(h.store.Notes())
	if notes == "" {
		writeEnvelope(w, h.logger, "No notes available. Generate notes first")
		return
	}

	name := r.FormValue("mdname")
	w.Header().Set("Content-Type", "text/markdown")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`.md"`)
	_, _ = w.Write([]byte(notes))
}

// listFormats returns the format registry for display.
func (h *NotesHandler) listFormats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, map[string]any{"formats": backend.Formats()})
}

// formInt reads an integer form field, falling back to def when absent
// or malformed.
func formInt(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.FormValue(name))
	if err != nil {
		return def
	}
	return v
}

// formFloat reads a float form field, falling back to def when absent or
// malformed.
func formFloat(r *http.Request, name string, def float64) float64 {
	v, err := strconv.ParseFloat(r.FormValue(name), 64)
	if err != nil {
		return def
	}
	return v
}

// docSnippet returns the leading text of a document, collapsed to one
// line and truncated for quoting.
func docSnippet(text string) string {
	s := strings.Join(strings.Fields(text), " ")
	if len(s) > snippetLength {
		s = s[:snippetLength] + "…"
	}
	if s == "" {
		s = "(empty document)"
	}
	return s
}
