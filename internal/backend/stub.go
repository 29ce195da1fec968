package backend

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// stubLatency is the simulated round-trip delay, so the front end's
// pending states are visible during offline demos.
const stubLatency = 400 * time.Millisecond

// minimal single-page PDF shell; the stub has no renderer, PDF
// generation stays server-side.
const stubPDF = "%PDF-1.4\n1 0 obj<</Type/Catalog/Pages 2 0 R>>endobj\n" +
	"2 0 obj<</Type/Pages/Kids[3 0 R]/Count 1>>endobj\n" +
	"3 0 obj<</Type/Page/Parent 2 0 R/MediaBox[0 0 612 792]>>endobj\n" +
	"trailer<</Root 1 0 R>>\n%%EOF\n"

// StubClient is the fixture implementation of Client, selected at startup
// in offline mode. It mirrors the backend's sequential
// coupling (format before generation, notes before download) with
// in-memory state and canned content, so every stage of the front end is
// exercisable offline.
type StubClient struct {
	// Latency simulates network round trips. Zero disables the delay
	// (tests construct the zero value).
	Latency time.Duration

	mu        sync.Mutex
	documents map[string]string           // document id -> title
	sessions  map[string]string           // session id -> document id
	formats   map[string]*FormatSelection // session id -> selection
	lastNotes string
}

// NewStubClient creates a stub with demo-friendly simulated latency.
func NewStubClient() *StubClient {
	return &StubClient{Latency: stubLatency}
}

// wait simulates a round trip, honoring context cancellation.
func (s *StubClient) wait(ctx context.Context) error {
	if s.Latency <= 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(s.Latency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Health implements Client.
func (s *StubClient) Health(ctx context.Context) error {
	return s.wait(ctx)
}

// UploadDocument implements Client.
func (s *StubClient) UploadDocument(ctx context.Context, username, filename string, file io.Reader) (*UploadResult, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	// Consume the reader like a real upload would; the stub only needs
	// the length.
	n, err := io.Copy(io.Discard, file)
	if err != nil {
		return nil, &TransportError{Status: 0, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.documents == nil {
		s.documents = make(map[string]string)
	}
	id := uuid.NewString()
	s.documents[id] = filename

	return &UploadResult{
		DocumentID:  id,
		Filename:    filename,
		ContentType: "application/octet-stream",
		TextLength:  int(n),
	}, nil
}

// CreateSession implements Client.
func (s *StubClient) CreateSession(ctx context.Context, username, documentID string) (*SessionResult, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions == nil {
		s.sessions = make(map[string]string)
	}
	id := uuid.NewString()
	s.sessions[id] = documentID

	return &SessionResult{SessionID: id, DocumentID: documentID}, nil
}

// SelectFormat implements Client.
func (s *StubClient) SelectFormat(ctx context.Context, sel FormatSelection) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	if !ValidFormatKey(sel.FormatKey) {
		return &Error{Message: fmt.Sprintf("Invalid format: %s", sel.FormatKey)}
	}
	if IsCustomFormat(sel.FormatKey) && sel.CustomPrompt == "" {
		return &Error{Message: "Custom format is required when using Custom Template"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.formats == nil {
		s.formats = make(map[string]*FormatSelection)
	}
	selCopy := sel
	s.formats[sel.SessionID] = &selCopy
	return nil
}

// GenerateNotes implements Client.
func (s *StubClient) GenerateNotes(ctx context.Context, sessionID string) (string, error) {
	if err := s.wait(ctx); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sel, ok := s.formats[sessionID]
	if !ok {
		return "", &Error{Message: "Please select a notes format first using /formats"}
	}

	title := "your document"
	if docID, ok := s.sessions[sessionID]; ok {
		if t, ok := s.documents[docID]; ok {
			title = t
		}
	}

	notes := fmt.Sprintf(`# Study Notes (offline preview)

Format: **%s**

## Overview

These notes were produced by the built-in fixture backend, not the RAG
pipeline. Connect a real backend to generate notes from %s.

## Key Points

- The upload, session, format, and generation stages completed in order.
- Hyperparameters received: chunk size %d, overlap %d, retriever K %d, temperature %.1f.
- Download and chat are available below.
`, FormatLabel(sel.FormatKey), title,
		sel.ChunkSize, sel.ChunkOverlap, sel.RetrieverK, sel.Temperature)

	s.lastNotes = notes
	return notes, nil
}

// Chat implements Client.
func (s *StubClient) Chat(ctx context.Context, sessionID, question string) (string, error) {
	if err := s.wait(ctx); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return "", &Error{Message: "Invalid session"}
	}

	return fmt.Sprintf("**Offline preview.** You asked: %q\n\n"+
		"A connected backend would answer from the uploaded document.",
		strings.TrimSpace(question)), nil
}

// DownloadPDF implements Client.
func (s *StubClient) DownloadPDF(ctx context.Context, name string) ([]byte, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(s.lastNotes) == "" {
		return nil, &Error{Message: "No notes available. Generate notes first"}
	}
	return []byte(stubPDF), nil
}

// DownloadMarkdown implements Client.
// The stub has no export endpoint; it reports unavailability so the
// caller exercises the local markdown fallback.
func (s *StubClient) DownloadMarkdown(ctx context.Context, name string) ([]byte, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return nil, &TransportError{Status: 0, Err: fmt.Errorf("stub backend has no markdown export")}
}

// ListFormats implements Client.
func (s *StubClient) ListFormats(ctx context.Context) ([]FormatInfo, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return Formats(), nil
}

// ListDocuments implements Client.
func (s *StubClient) ListDocuments(ctx context.Context, username string) ([]DocumentInfo, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]DocumentInfo, 0, len(s.documents))
	for id, title := range s.documents {
		out = append(out, DocumentInfo{DocumentID: id, Title: title})
	}
	return out, nil
}
