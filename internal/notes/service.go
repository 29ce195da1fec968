// Package notes implements the stage orchestration for lectern: upload,
// session, configuration, generation, download, and chat.
//
// The Service owns the session context and writes it only from success
// paths; every stage checks its local preconditions before any network
// call and converts failures into the shared error taxonomy
// (backend.ValidationError and friends). Control flow is strictly
// sequential and user-driven - there is no retry, no cancellation of an
// in-flight call, and no background processing.
package notes

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lectern0/lectern/internal/backend"
	"github.com/lectern0/lectern/internal/log"
	"github.com/lectern0/lectern/internal/session"
)

// chatApology is appended to the transcript in place of an answer when a
// chat call fails. Chat masks failures to keep the conversation flowing;
// the raw error goes to the log only.
const chatApology = "Sorry, I couldn't answer that right now. Please try asking again."

// Service coordinates the stages against a backend client. Not safe for
// concurrent use of the same stage; the front end serializes submissions
// per stage.
type Service struct {
	client     backend.Client
	sctx       *session.Context
	transcript *session.Transcript
	logger     log.Logger
	outputDir  string
}

// ServiceConfig configures a Service.
type ServiceConfig struct {
	Client    backend.Client   // Required
	Logger    log.Logger       // Optional: defaults to a nop logger
	OutputDir string           // Optional: defaults to the working directory
	Context   *session.Context // Optional: fabricated contexts for tests
}

// NewService creates a stage orchestrator.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Client == nil {
		return nil, errors.New("notes.NewService: client is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewNop()
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	if cfg.Context == nil {
		cfg.Context = session.New()
	}

	return &Service{
		client:     cfg.Client,
		sctx:       cfg.Context,
		transcript: session.NewTranscript(),
		logger:     cfg.Logger,
		outputDir:  cfg.OutputDir,
	}, nil
}

// Context returns the session context. Stages mutate it on success only.
func (s *Service) Context() *session.Context { return s.sctx }

// Transcript returns the chat transcript.
func (s *Service) Transcript() *session.Transcript { return s.transcript }

// Upload validates and uploads the file at path on behalf of username.
// Rejections (empty username, unsupported extension) happen locally
// before any network call. On success the document id is committed and
// the username locked in.
func (s *Service) Upload(ctx context.Context, username, path string) (*backend.UploadResult, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, &backend.ValidationError{Message: "Please enter a username before uploading."}
	}
	if strings.TrimSpace(path) == "" {
		return nil, &backend.ValidationError{Message: "Please choose a file to upload."}
	}
	if !ValidAttachment(path) {
		return nil, backend.Validationf("Unsupported file type. Allowed: %s.", AllowedExtensions())
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, backend.Validationf("Cannot read %s: %v.", DisplayName(path), err)
	}
	defer f.Close()

	result, err := s.client.UploadDocument(ctx, username, DisplayName(path), f)
	if err != nil {
		return nil, fmt.Errorf("uploading %s: %w", DisplayName(path), err)
	}

	// Success path: commit state. Username is immutable from here on.
	s.sctx.Username = username
	s.sctx.DocumentID = result.DocumentID
	s.sctx.SelectedFile = ""

	s.logger.Info("upload complete",
		"document_id", result.DocumentID,
		"text_length", result.TextLength)
	return result, nil
}

// CreateSession creates a new backend session bound to the uploaded
// document. Requires a completed upload.
func (s *Service) CreateSession(ctx context.Context) (*backend.SessionResult, error) {
	if !s.sctx.Uploaded() {
		return nil, &backend.ValidationError{Message: "Upload a document before creating a session."}
	}

	result, err := s.client.CreateSession(ctx, s.sctx.Username, s.sctx.DocumentID)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	s.sctx.SessionID = result.SessionID
	s.logger.Info("session created", "session_id", result.SessionID)
	return result, nil
}

// UseExistingSession adopts a caller-supplied session id after checking
// its UUID shape. The id is accepted as-is: no remote existence check is
// performed, and an invalid id only surfaces through later failing calls.
func (s *Service) UseExistingSession(candidate string) error {
	candidate = strings.TrimSpace(candidate)
	if !ValidSessionID(candidate) {
		return &backend.ValidationError{Message: "Session id must be a UUID (8-4-4-4-12 hex groups)."}
	}

	s.sctx.SessionID = candidate
	s.logger.Info("existing session adopted", "session_id", candidate)
	return nil
}

// Generate runs the two-step generation: format registration, then note
// generation. A failed format step aborts before generation is attempted.
// GeneratedNotes is only overwritten on success.
func (s *Service) Generate(ctx context.Context, formatKey, customPrompt string) (string, error) {
	if !s.sctx.HasSession() {
		return "", &backend.ValidationError{Message: "Create or resume a session before generating notes."}
	}
	if !backend.ValidFormatKey(formatKey) {
		return "", backend.Validationf("Unknown notes format %q.", formatKey)
	}
	customPrompt = strings.TrimSpace(customPrompt)
	if backend.IsCustomFormat(formatKey) && customPrompt == "" {
		return "", &backend.ValidationError{Message: "The custom template format needs a prompt template."}
	}
	if !backend.IsCustomFormat(formatKey) {
		customPrompt = ""
	}

	sel := backend.FormatSelection{
		SessionID:    s.sctx.SessionID,
		FormatKey:    formatKey,
		CustomPrompt: customPrompt,
		ChunkSize:    s.sctx.Params.ChunkSize,
		ChunkOverlap: s.sctx.Params.ChunkOverlap,
		RetrieverK:   s.sctx.Params.RetrieverK,
		Temperature:  s.sctx.Params.Temperature,
	}
	if err := s.client.SelectFormat(ctx, sel); err != nil {
		return "", fmt.Errorf("selecting format: %w", err)
	}

	text, err := s.client.GenerateNotes(ctx, s.sctx.SessionID)
	if err != nil {
		return "", fmt.Errorf("generating notes: %w", err)
	}

	s.sctx.GeneratedNotes = text
	s.logger.Info("notes generated",
		"format", formatKey,
		"length", len(text))
	return text, nil
}

// Download exports the last generated notes and writes the artifact to
// the output directory, returning the written path.
//
// PDF export strictly requires the backend. Markdown falls back to
// packaging the in-memory notes when the backend is unreachable - the
// one case where this stage can succeed without network access. A
// backend that answers with an explicit error does not trigger the
// fallback.
func (s *Service) Download(ctx context.Context, kind ArtifactKind) (string, error) {
	if !s.sctx.HasNotes() {
		return "", &backend.ValidationError{Message: "Generate notes before downloading."}
	}

	var (
		data []byte
		err  error
	)
	switch kind {
	case ArtifactPDF:
		data, err = s.client.DownloadPDF(ctx, ArtifactBaseName)
		if err != nil {
			return "", fmt.Errorf("exporting PDF: %w", err)
		}
	case ArtifactMarkdown:
		data, err = s.client.DownloadMarkdown(ctx, ArtifactBaseName)
		if errors.Is(err, backend.ErrUnavailable) {
			s.logger.Warn("markdown export unavailable, packaging notes locally", "error", err)
			data = []byte(s.sctx.GeneratedNotes)
			err = nil
		}
		if err != nil {
			return "", fmt.Errorf("exporting markdown: %w", err)
		}
	default:
		return "", backend.Validationf("Unknown download kind %q.", kind)
	}

	path := filepath.Join(s.outputDir, ArtifactFilename(kind))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", &backend.DownloadError{Message: "Could not save " + ArtifactFilename(kind), Err: err}
	}

	s.logger.Info("artifact saved", "path", path, "bytes", len(data))
	return path, nil
}

// Chat sends a question scoped to the active session. The question is
// appended to the transcript optimistically, before the call resolves;
// on failure a fixed apology is appended in place of an answer and the
// error is not surfaced further. An all-whitespace question is a no-op.
func (s *Service) Chat(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", nil
	}
	if !s.sctx.HasSession() {
		return "", &backend.ValidationError{Message: "Create or resume a session before chatting."}
	}

	s.transcript.Append(session.RoleUser, question)

	answer, err := s.client.Chat(ctx, s.sctx.SessionID, question)
	if err != nil {
		// Deliberate "always show something" policy: the transcript
		// is never rolled back and the raw error stays in the log.
		s.logger.Error("chat failed", "error", err)
		s.transcript.Append(session.RoleAssistant, chatApology)
		return chatApology, nil
	}

	s.transcript.Append(session.RoleAssistant, answer)
	return answer, nil
}

// ListFormats returns the backend's format listing, falling back to the
// built-in registry when the backend cannot be reached.
func (s *Service) ListFormats(ctx context.Context) []backend.FormatInfo {
	formats, err := s.client.ListFormats(ctx)
	if err != nil || len(formats) == 0 {
		s.logger.Debug("format listing unavailable, using built-ins", "error", err)
		return backend.Formats()
	}
	return formats
}
