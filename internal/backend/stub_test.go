package backend

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// newTestStub returns a stub with latency disabled.
func newTestStub() *StubClient {
	return &StubClient{}
}

// runStubPipeline drives the stub through upload, session, and format
// selection, returning the session id.
func runStubPipeline(t *testing.T, s *StubClient) string {
	t.Helper()
	ctx := context.Background()

	up, err := s.UploadDocument(ctx, "alice", "lecture.txt", strings.NewReader("machine learning 101"))
	if err != nil {
		t.Fatalf("UploadDocument: %v", err)
	}
	sess, err := s.CreateSession(ctx, "alice", up.DocumentID)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	err = s.SelectFormat(ctx, FormatSelection{
		SessionID: sess.SessionID,
		FormatKey: DefaultFormatKey,
		ChunkSize: 1000, ChunkOverlap: 200, RetrieverK: 5, Temperature: 0.7,
	})
	if err != nil {
		t.Fatalf("SelectFormat: %v", err)
	}
	return sess.SessionID
}

func TestStub_GenerateRequiresFormat(t *testing.T) {
	s := newTestStub()

	_, err := s.GenerateNotes(context.Background(), "unknown-session")
	var backendErr *Error
	if !errors.As(err, &backendErr) {
		t.Fatalf("error = %v, want *backend.Error", err)
	}
}

func TestStub_FullPipeline(t *testing.T) {
	s := newTestStub()
	sessionID := runStubPipeline(t, s)

	notes, err := s.GenerateNotes(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("GenerateNotes: %v", err)
	}
	if !strings.Contains(notes, "lecture.txt") {
		t.Errorf("notes should mention the uploaded document title, got %q", notes)
	}

	pdf, err := s.DownloadPDF(context.Background(), "lecture-notes")
	if err != nil {
		t.Fatalf("DownloadPDF: %v", err)
	}
	if !strings.HasPrefix(string(pdf), "%PDF-") {
		t.Errorf("pdf bytes should carry a PDF header, got %q", pdf[:8])
	}
}

func TestStub_SelectFormat_CustomRequiresPrompt(t *testing.T) {
	s := newTestStub()

	err := s.SelectFormat(context.Background(), FormatSelection{
		SessionID: "sess-1",
		FormatKey: CustomFormatKey,
	})
	var backendErr *Error
	if !errors.As(err, &backendErr) {
		t.Fatalf("error = %v, want *backend.Error for missing custom prompt", err)
	}
}

func TestStub_SelectFormat_RejectsUnknownKey(t *testing.T) {
	s := newTestStub()

	err := s.SelectFormat(context.Background(), FormatSelection{
		SessionID: "sess-1",
		FormatKey: "type_99",
	})
	if err == nil {
		t.Fatal("expected error for unknown format key")
	}
}

func TestStub_DownloadPDFWithoutNotes(t *testing.T) {
	s := newTestStub()

	_, err := s.DownloadPDF(context.Background(), "lecture-notes")
	var backendErr *Error
	if !errors.As(err, &backendErr) {
		t.Fatalf("error = %v, want *backend.Error", err)
	}
}

func TestStub_DownloadMarkdownIsUnavailable(t *testing.T) {
	s := newTestStub()
	runStubPipeline(t, s)

	_, err := s.DownloadMarkdown(context.Background(), "lecture-notes")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("error = %v, want wrapped ErrUnavailable to trigger the local fallback", err)
	}
}

func TestStub_ChatRequiresKnownSession(t *testing.T) {
	s := newTestStub()

	_, err := s.Chat(context.Background(), "nope", "What is X?")
	var backendErr *Error
	if !errors.As(err, &backendErr) {
		t.Fatalf("error = %v, want *backend.Error", err)
	}
}

func TestStub_CanceledContext(t *testing.T) {
	s := NewStubClient() // With latency, so cancellation is observable

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.CreateSession(ctx, "alice", "doc-1"); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestFormats_RegistryShape(t *testing.T) {
	formats := Formats()
	if len(formats) != 17 {
		t.Fatalf("len(Formats()) = %d, want 17", len(formats))
	}
	if formats[0].Key != DefaultFormatKey {
		t.Errorf("first format = %q, want %q", formats[0].Key, DefaultFormatKey)
	}
	if formats[len(formats)-1].Key != CustomFormatKey {
		t.Errorf("last format = %q, want %q", formats[len(formats)-1].Key, CustomFormatKey)
	}
	if !IsCustomFormat(CustomFormatKey) || IsCustomFormat(DefaultFormatKey) {
		t.Error("IsCustomFormat misclassifies keys")
	}
	if !ValidFormatKey("type_9") || ValidFormatKey("type_18") {
		t.Error("ValidFormatKey misclassifies keys")
	}
}
