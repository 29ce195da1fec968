package backend

import (
	"context"
	"io"
)

// UploadResult is the backend response to a document upload.
type UploadResult struct {
	DocumentID  string `json:"document_id"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	TextLength  int    `json:"text_length"`
}

// SessionResult is the backend response to session creation.
type SessionResult struct {
	SessionID  string `json:"session_id"`
	DocumentID string `json:"document_id"`
}

// FormatSelection registers a notes format for a session before
// generation. CustomPrompt is only meaningful for the custom-template
// format. The hyperparameters ride along as plain form fields; backends
// that predate them ignore unknown fields.
type FormatSelection struct {
	SessionID    string
	FormatKey    string
	CustomPrompt string
	ChunkSize    int
	ChunkOverlap int
	RetrieverK   int
	Temperature  float64
}

// FormatInfo describes one backend-recognized notes format.
type FormatInfo struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// DocumentInfo describes one previously uploaded document.
type DocumentInfo struct {
	DocumentID  string `json:"document_id"`
	Title       string `json:"title"`
	ContentType string `json:"content_type"`
	CreatedAt   string `json:"created_at"`
}

// Client is the backend capability consumed by the stages. Two
// implementations exist: HTTPClient (real backend) and StubClient
// (fixtures, selected at startup when no base URL is configured).
type Client interface {
	// Health probes backend liveness.
	Health(ctx context.Context) error

	// UploadDocument sends username and the file bytes; returns the
	// opaque document id assigned by the backend.
	UploadDocument(ctx context.Context, username, filename string, file io.Reader) (*UploadResult, error)

	// CreateSession binds username and document id into a new session.
	CreateSession(ctx context.Context, username, documentID string) (*SessionResult, error)

	// SelectFormat registers the notes format for a session. Must be
	// called before GenerateNotes.
	SelectFormat(ctx context.Context, sel FormatSelection) error

	// GenerateNotes generates study notes for the session and returns
	// the markdown body.
	GenerateNotes(ctx context.Context, sessionID string) (string, error)

	// Chat answers a free-text question scoped to the session.
	Chat(ctx context.Context, sessionID, question string) (string, error)

	// DownloadPDF exports the last generated notes as PDF bytes.
	// name is the target base filename without extension.
	DownloadPDF(ctx context.Context, name string) ([]byte, error)

	// DownloadMarkdown exports the last generated notes as markdown
	// bytes. name is the target base filename without extension.
	DownloadMarkdown(ctx context.Context, name string) ([]byte, error)

	// ListFormats returns the formats the backend recognizes.
	ListFormats(ctx context.Context) ([]FormatInfo, error)

	// ListDocuments returns the documents previously uploaded by a user.
	ListDocuments(ctx context.Context, username string) ([]DocumentInfo, error)
}
