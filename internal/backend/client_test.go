package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lectern0/lectern/internal/log"
)

func newTestClient(t *testing.T, handler http.Handler) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewHTTPClient(srv.URL, 0, log.NewNop())
	if err != nil {
		t.Fatalf("NewHTTPClient: %v", err)
	}
	return c
}

func TestNewHTTPClient_RequiresBaseURL(t *testing.T) {
	if _, err := NewHTTPClient("", 0, log.NewNop()); err == nil {
		t.Error("expected error for empty base URL")
	}
}

func TestNewHTTPClient_TimeoutReachesTransport(t *testing.T) {
	c, err := NewHTTPClient("http://localhost:8000", 7*time.Second, log.NewNop())
	if err != nil {
		t.Fatalf("NewHTTPClient: %v", err)
	}
	if c.httpClient.Timeout != 7*time.Second {
		t.Errorf("Timeout = %v, want 7s", c.httpClient.Timeout)
	}

	c, err = NewHTTPClient("http://localhost:8000", 0, log.NewNop())
	if err != nil {
		t.Fatalf("NewHTTPClient: %v", err)
	}
	if c.httpClient.Timeout != defaultTimeout {
		t.Errorf("Timeout = %v, want default %v", c.httpClient.Timeout, defaultTimeout)
	}
}

func TestUploadDocument_SendsMultipartForm(t *testing.T) {
	var gotUsername, gotFilename, gotContent string

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/documents/upload" {
			t.Errorf("path = %q, want /documents/upload", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("ParseMultipartForm: %v", err)
		}
		gotUsername = r.FormValue("username")

		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("FormFile: %v", err)
		}
		defer file.Close()
		gotFilename = header.Filename
		buf := make([]byte, 64)
		n, _ := file.Read(buf)
		gotContent = string(buf[:n])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"document_id":"doc-42","filename":"lecture.pdf","text_length":5}`))
	}))

	result, err := c.UploadDocument(context.Background(), "alice", "lecture.pdf", strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("UploadDocument: %v", err)
	}

	if result.DocumentID != "doc-42" {
		t.Errorf("DocumentID = %q, want doc-42", result.DocumentID)
	}
	if gotUsername != "alice" {
		t.Errorf("username field = %q, want alice", gotUsername)
	}
	if gotFilename != "lecture.pdf" {
		t.Errorf("filename = %q, want lecture.pdf", gotFilename)
	}
	if gotContent != "hello" {
		t.Errorf("file content = %q, want hello", gotContent)
	}
}

func TestErrorEnvelope_Overrides2xxStatus(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"error":"Invalid session"}`))
	}))

	_, err := c.GenerateNotes(context.Background(), "sess-1")
	var backendErr *Error
	if !errors.As(err, &backendErr) {
		t.Fatalf("error = %v, want *backend.Error", err)
	}
	if backendErr.Message != "Invalid session" {
		t.Errorf("message = %q, want backend-supplied message", backendErr.Message)
	}
}

func TestNon2xx_IsTransportError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	_, err := c.CreateSession(context.Background(), "alice", "doc-1")
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("error = %v, want *TransportError", err)
	}
	if transportErr.Status != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", transportErr.Status)
	}
	if errors.Is(err, ErrUnavailable) {
		t.Error("a responded non-2xx must not count as unavailable")
	}
}

func TestConnectionFailure_WrapsErrUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close() // Guarantee connection refused

	c, err := NewHTTPClient(url, 0, log.NewNop())
	if err != nil {
		t.Fatalf("NewHTTPClient: %v", err)
	}

	_, err = c.GenerateNotes(context.Background(), "sess-1")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("error = %v, want wrapped ErrUnavailable", err)
	}
}

func TestSelectFormat_SendsHyperparameters(t *testing.T) {
	var form map[string]string

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("ParseMultipartForm: %v", err)
		}
		form = map[string]string{}
		for k := range r.MultipartForm.Value {
			form[k] = r.FormValue(k)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"Format selected successfully"}`))
	}))

	err := c.SelectFormat(context.Background(), FormatSelection{
		SessionID:    "sess-1",
		FormatKey:    "type_3",
		ChunkSize:    1000,
		ChunkOverlap: 200,
		RetrieverK:   5,
		Temperature:  0.7,
	})
	if err != nil {
		t.Fatalf("SelectFormat: %v", err)
	}

	want := map[string]string{
		"session_id":    "sess-1",
		"notes_format":  "type_3",
		"chunk_size":    "1000",
		"chunk_overlap": "200",
		"retriever_k":   "5",
		"temperature":   "0.7",
	}
	for k, v := range want {
		if form[k] != v {
			t.Errorf("form[%q] = %q, want %q", k, form[k], v)
		}
	}
	if _, ok := form["custom_format"]; ok {
		t.Error("custom_format must be omitted for non-custom formats")
	}
}

func TestDownloadMarkdown_ReturnsRawBytes(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/markdown")
		w.Write([]byte("# Notes\n\nbody"))
	}))

	data, err := c.DownloadMarkdown(context.Background(), "lecture-notes")
	if err != nil {
		t.Fatalf("DownloadMarkdown: %v", err)
	}
	if string(data) != "# Notes\n\nbody" {
		t.Errorf("data = %q", data)
	}
}

func TestDownload_ErrorEnvelopeInsteadOfFile(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error":"No notes available. Generate notes first"}`))
	}))

	_, err := c.DownloadPDF(context.Background(), "lecture-notes")
	var backendErr *Error
	if !errors.As(err, &backendErr) {
		t.Fatalf("error = %v, want *backend.Error", err)
	}
}

func TestListFormats_DecodesList(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/formats" {
			t.Errorf("path = %q, want /api/formats", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"formats":[{"key":"type_1","label":"Detailed Structured Study Notes"}]}`))
	}))

	formats, err := c.ListFormats(context.Background())
	if err != nil {
		t.Fatalf("ListFormats: %v", err)
	}
	if len(formats) != 1 || formats[0].Key != "type_1" {
		t.Errorf("formats = %+v", formats)
	}
}
