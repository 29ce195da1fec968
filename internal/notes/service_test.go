package notes

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/lectern0/lectern/internal/backend"
	"github.com/lectern0/lectern/internal/session"
)

// fakeClient records calls and returns scripted results, so tests can
// assert which endpoints were (not) reached.
type fakeClient struct {
	calls []string

	uploadResult  *backend.UploadResult
	sessionResult *backend.SessionResult
	formatErr     error
	notes         string
	generateErr   error
	answer        string
	chatErr       error
	markdownData  []byte
	markdownErr   error
	pdfData       []byte
	pdfErr        error
}

func (f *fakeClient) record(name string) { f.calls = append(f.calls, name) }

func (f *fakeClient) Health(ctx context.Context) error {
	f.record("health")
	return nil
}

func (f *fakeClient) UploadDocument(ctx context.Context, username, filename string, file io.Reader) (*backend.UploadResult, error) {
	f.record("upload")
	if f.uploadResult == nil {
		return nil, errors.New("no upload scripted")
	}
	return f.uploadResult, nil
}

func (f *fakeClient) CreateSession(ctx context.Context, username, documentID string) (*backend.SessionResult, error) {
	f.record("create_session")
	if f.sessionResult == nil {
		return nil, errors.New("no session scripted")
	}
	return f.sessionResult, nil
}

func (f *fakeClient) SelectFormat(ctx context.Context, sel backend.FormatSelection) error {
	f.record("select_format")
	return f.formatErr
}

func (f *fakeClient) GenerateNotes(ctx context.Context, sessionID string) (string, error) {
	f.record("generate")
	return f.notes, f.generateErr
}

func (f *fakeClient) Chat(ctx context.Context, sessionID, question string) (string, error) {
	f.record("chat")
	return f.answer, f.chatErr
}

func (f *fakeClient) DownloadPDF(ctx context.Context, name string) ([]byte, error) {
	f.record("download_pdf")
	return f.pdfData, f.pdfErr
}

func (f *fakeClient) DownloadMarkdown(ctx context.Context, name string) ([]byte, error) {
	f.record("download_markdown")
	return f.markdownData, f.markdownErr
}

func (f *fakeClient) ListFormats(ctx context.Context) ([]backend.FormatInfo, error) {
	f.record("list_formats")
	return nil, errors.New("not scripted")
}

func (f *fakeClient) ListDocuments(ctx context.Context, username string) ([]backend.DocumentInfo, error) {
	f.record("list_documents")
	return nil, nil
}

func newTestService(t *testing.T, client *fakeClient, sctx *session.Context) *Service {
	t.Helper()
	svc, err := NewService(ServiceConfig{
		Client:    client,
		OutputDir: t.TempDir(),
		Context:   sctx,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

// writeTempFile creates a file with the given name and content and
// returns its path.
func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing temp file: %v", err)
	}
	return path
}

func TestUpload_RejectsBadExtensionBeforeNetwork(t *testing.T) {
	client := &fakeClient{}
	svc := newTestService(t, client, nil)

	_, err := svc.Upload(context.Background(), "alice", writeTempFile(t, "slides.docx", "x"))

	var validationErr *backend.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if len(client.calls) != 0 {
		t.Errorf("no network call may be made for a rejected file, got %v", client.calls)
	}
}

func TestUpload_RejectsEmptyUsernameBeforeNetwork(t *testing.T) {
	client := &fakeClient{}
	svc := newTestService(t, client, nil)

	_, err := svc.Upload(context.Background(), "   ", writeTempFile(t, "lecture.txt", "x"))

	var validationErr *backend.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if len(client.calls) != 0 {
		t.Errorf("no network call expected, got %v", client.calls)
	}
}

func TestUpload_SuccessCommitsState(t *testing.T) {
	client := &fakeClient{uploadResult: &backend.UploadResult{DocumentID: "doc-7"}}
	svc := newTestService(t, client, nil)

	_, err := svc.Upload(context.Background(), "alice", writeTempFile(t, "lecture.PDF", "%PDF-"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	sctx := svc.Context()
	if sctx.DocumentID != "doc-7" {
		t.Errorf("DocumentID = %q, want backend-provided doc-7", sctx.DocumentID)
	}
	if sctx.Username != "alice" {
		t.Errorf("Username = %q, want alice unchanged", sctx.Username)
	}
}

func TestUpload_FailureCommitsNothing(t *testing.T) {
	client := &fakeClient{} // upload not scripted -> fails
	svc := newTestService(t, client, nil)

	_, err := svc.Upload(context.Background(), "alice", writeTempFile(t, "lecture.txt", "x"))
	if err == nil {
		t.Fatal("expected upload failure")
	}

	sctx := svc.Context()
	if sctx.DocumentID != "" || sctx.Username != "" {
		t.Errorf("failed upload must not commit state, got %+v", sctx)
	}
}

func TestCreateSession_RequiresUpload(t *testing.T) {
	client := &fakeClient{}
	svc := newTestService(t, client, nil)

	_, err := svc.CreateSession(context.Background())
	var validationErr *backend.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if len(client.calls) != 0 {
		t.Errorf("no network call expected, got %v", client.calls)
	}
}

func TestUseExistingSession(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"canonical uuid accepted", "123e4567-e89b-12d3-a456-426614174000", false},
		{"padded uuid accepted after trim", "  123e4567-e89b-12d3-a456-426614174000 ", false},
		{"garbage rejected", "not-a-uuid", true},
		{"empty rejected", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, &fakeClient{}, nil)
			err := svc.UseExistingSession(tt.id)

			if tt.wantErr {
				var validationErr *backend.ValidationError
				if !errors.As(err, &validationErr) {
					t.Fatalf("error = %v, want ValidationError", err)
				}
				if svc.Context().HasSession() {
					t.Error("rejected id must not be stored")
				}
				return
			}
			if err != nil {
				t.Fatalf("UseExistingSession: %v", err)
			}
			if svc.Context().SessionID != "123e4567-e89b-12d3-a456-426614174000" {
				t.Errorf("SessionID = %q", svc.Context().SessionID)
			}
		})
	}
}

func TestGenerate_FormatStepPrecedesGeneration(t *testing.T) {
	client := &fakeClient{notes: "# Notes"}
	sctx := session.New()
	sctx.SessionID = "123e4567-e89b-12d3-a456-426614174000"
	svc := newTestService(t, client, sctx)

	text, err := svc.Generate(context.Background(), backend.DefaultFormatKey, "")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "# Notes" {
		t.Errorf("notes = %q", text)
	}

	want := []string{"select_format", "generate"}
	if len(client.calls) != 2 || client.calls[0] != want[0] || client.calls[1] != want[1] {
		t.Errorf("calls = %v, want %v", client.calls, want)
	}
	if sctx.GeneratedNotes != "# Notes" {
		t.Errorf("GeneratedNotes = %q", sctx.GeneratedNotes)
	}
}

func TestGenerate_AbortsWhenFormatStepFails(t *testing.T) {
	client := &fakeClient{formatErr: &backend.Error{Message: "bad format"}}
	sctx := session.New()
	sctx.SessionID = "123e4567-e89b-12d3-a456-426614174000"
	sctx.GeneratedNotes = "previous notes"
	svc := newTestService(t, client, sctx)

	_, err := svc.Generate(context.Background(), backend.DefaultFormatKey, "")
	if err == nil {
		t.Fatal("expected generation to abort")
	}

	for _, call := range client.calls {
		if call == "generate" {
			t.Error("generation endpoint must never be called after a failed format step")
		}
	}
	if sctx.GeneratedNotes != "previous notes" {
		t.Errorf("GeneratedNotes = %q, must keep previous value", sctx.GeneratedNotes)
	}
}

func TestGenerate_CustomFormatNeedsPrompt(t *testing.T) {
	client := &fakeClient{}
	sctx := session.New()
	sctx.SessionID = "123e4567-e89b-12d3-a456-426614174000"
	svc := newTestService(t, client, sctx)

	_, err := svc.Generate(context.Background(), backend.CustomFormatKey, "   ")
	var validationErr *backend.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if len(client.calls) != 0 {
		t.Errorf("no network call expected, got %v", client.calls)
	}
}

func TestDownload_EmptyNotesRejectedBeforeNetwork(t *testing.T) {
	client := &fakeClient{}
	svc := newTestService(t, client, nil)

	for _, kind := range []ArtifactKind{ArtifactPDF, ArtifactMarkdown} {
		_, err := svc.Download(context.Background(), kind)
		var validationErr *backend.ValidationError
		if !errors.As(err, &validationErr) {
			t.Errorf("Download(%s) error = %v, want ValidationError", kind, err)
		}
	}
	if len(client.calls) != 0 {
		t.Errorf("no network call expected, got %v", client.calls)
	}
}

func TestDownload_MarkdownFallsBackToLocalNotes(t *testing.T) {
	client := &fakeClient{
		markdownErr: &backend.TransportError{Status: 0, Err: errors.New("connection refused")},
	}
	sctx := session.New()
	sctx.GeneratedNotes = "# My Notes\n\ncontent"
	svc := newTestService(t, client, sctx)

	path, err := svc.Download(context.Background(), ArtifactMarkdown)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading artifact: %v", err)
	}
	if string(data) != sctx.GeneratedNotes {
		t.Errorf("artifact content = %q, want current GeneratedNotes", data)
	}
	if filepath.Base(path) != "lecture-notes.md" {
		t.Errorf("artifact name = %q, want lecture-notes.md", filepath.Base(path))
	}
}

func TestDownload_MarkdownBackendRefusalIsNotMasked(t *testing.T) {
	client := &fakeClient{markdownErr: &backend.Error{Message: "No notes available"}}
	sctx := session.New()
	sctx.GeneratedNotes = "# Notes"
	svc := newTestService(t, client, sctx)

	if _, err := svc.Download(context.Background(), ArtifactMarkdown); err == nil {
		t.Error("an explicit backend refusal must surface, not fall back")
	}
}

func TestDownload_PDFNeverFallsBack(t *testing.T) {
	client := &fakeClient{
		pdfErr: &backend.TransportError{Status: 0, Err: errors.New("connection refused")},
	}
	sctx := session.New()
	sctx.GeneratedNotes = "# Notes"
	svc := newTestService(t, client, sctx)

	if _, err := svc.Download(context.Background(), ArtifactPDF); err == nil {
		t.Error("PDF export has no local fallback and must fail")
	}
}

func TestChat_FailureAppendsApologyNotError(t *testing.T) {
	client := &fakeClient{chatErr: errors.New("connection reset by peer")}
	sctx := session.New()
	sctx.SessionID = "123e4567-e89b-12d3-a456-426614174000"
	svc := newTestService(t, client, sctx)

	answer, err := svc.Chat(context.Background(), "What is X?")
	if err != nil {
		t.Fatalf("chat failures must be masked, got error %v", err)
	}

	entries := svc.Transcript().Entries()
	if len(entries) != 2 {
		t.Fatalf("transcript has %d entries, want exactly 2", len(entries))
	}
	if entries[0].Role != session.RoleUser || entries[0].Text != "What is X?" {
		t.Errorf("first entry = %+v, want verbatim question", entries[0])
	}
	if entries[1].Role != session.RoleAssistant || entries[1].Text != chatApology {
		t.Errorf("second entry = %+v, want fixed apology", entries[1])
	}
	if answer != chatApology {
		t.Errorf("answer = %q, want apology placeholder", answer)
	}
	for _, e := range entries {
		if e.Text == client.chatErr.Error() {
			t.Error("raw error text must never reach the transcript")
		}
	}
}

func TestChat_EmptyQuestionIsNoOp(t *testing.T) {
	client := &fakeClient{}
	sctx := session.New()
	sctx.SessionID = "123e4567-e89b-12d3-a456-426614174000"
	svc := newTestService(t, client, sctx)

	answer, err := svc.Chat(context.Background(), "   \n ")
	if err != nil || answer != "" {
		t.Errorf("Chat(blank) = (%q, %v), want no-op", answer, err)
	}
	if svc.Transcript().Len() != 0 {
		t.Error("no-op chat must not touch the transcript")
	}
	if len(client.calls) != 0 {
		t.Errorf("no network call expected, got %v", client.calls)
	}
}

func TestChat_MissingSessionBlocks(t *testing.T) {
	svc := newTestService(t, &fakeClient{}, nil)

	_, err := svc.Chat(context.Background(), "What is X?")
	var validationErr *backend.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if svc.Transcript().Len() != 0 {
		t.Error("blocked chat must not touch the transcript")
	}
}

func TestChat_SuccessAppendsPair(t *testing.T) {
	client := &fakeClient{answer: "X is a variable."}
	sctx := session.New()
	sctx.SessionID = "123e4567-e89b-12d3-a456-426614174000"
	svc := newTestService(t, client, sctx)

	answer, err := svc.Chat(context.Background(), "  What is X?  ")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if answer != "X is a variable." {
		t.Errorf("answer = %q", answer)
	}

	entries := svc.Transcript().Entries()
	if len(entries) != 2 {
		t.Fatalf("transcript has %d entries, want 2", len(entries))
	}
	if entries[0].Text != "What is X?" {
		t.Errorf("question should be stored trimmed, got %q", entries[0].Text)
	}
}

func TestListFormats_FallsBackToBuiltins(t *testing.T) {
	svc := newTestService(t, &fakeClient{}, nil) // ListFormats not scripted -> error

	formats := svc.ListFormats(context.Background())
	if len(formats) != 17 {
		t.Errorf("fallback formats = %d, want the 17 built-ins", len(formats))
	}
}
