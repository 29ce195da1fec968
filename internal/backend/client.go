// Package backend provides the HTTP client for the lecture-notes RAG
// backend, plus a fixture implementation for offline use.
//
// The wire contract: every mutating endpoint takes a multipart form POST;
// any response body carrying {"error": "..."} is a failure even with a
// 2xx status, and a non-2xx status is always a failure regardless of
// body. The backend is the authority on content validity - the client
// only pre-validates what it can check locally.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lectern0/lectern/internal/log"
)

// Backend endpoint paths.
const (
	pathUpload        = "/documents/upload"
	pathCreateSession = "/sessions/create"
	pathFormats       = "/formats"
	pathGenerate      = "/generate-notes"
	pathChat          = "/chat"
	pathDownloadPDF   = "/download/pdf"
	pathDownloadMD    = "/download/markdown"
	pathHealth        = "/api/health"
	pathListFormats   = "/api/formats"
	pathListDocuments = "/api/documents"
)

// defaultTimeout bounds a single backend call when no timeout is
// configured. Generation can be slow; the transport enforces nothing
// shorter than this.
const defaultTimeout = 120 * time.Second

// HTTPClient talks to a real backend over HTTP.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	logger     log.Logger
}

// NewHTTPClient creates a backend client for the given base URL. The
// timeout bounds each request; non-positive values fall back to
// defaultTimeout.
func NewHTTPClient(baseURL string, timeout time.Duration, logger log.Logger) (*HTTPClient, error) {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		return nil, fmt.Errorf("backend base URL is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid backend base URL %q: %w", baseURL, err)
	}
	if logger == nil {
		logger = log.NewNop()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

// filePart describes the file attachment of a multipart request.
type filePart struct {
	field    string
	filename string
	content  io.Reader
}

// errEnvelope is the error shape any endpoint may return.
type errEnvelope struct {
	Error string `json:"error"`
}

// Health implements Client.
func (c *HTTPClient) Health(ctx context.Context) error {
	var resp struct {
		OK bool `json:"ok"`
	}
	return c.getJSON(ctx, pathHealth, nil, &resp)
}

// UploadDocument implements Client.
func (c *HTTPClient) UploadDocument(ctx context.Context, username, filename string, file io.Reader) (*UploadResult, error) {
	var result UploadResult
	err := c.postForm(ctx, pathUpload,
		map[string]string{"username": username},
		&filePart{field: "file", filename: filename, content: file},
		&result)
	if err != nil {
		return nil, err
	}

	c.logger.Info("document uploaded",
		"document_id", result.DocumentID,
		"filename", filename)
	return &result, nil
}

// CreateSession implements Client.
func (c *HTTPClient) CreateSession(ctx context.Context, username, documentID string) (*SessionResult, error) {
	var result SessionResult
	err := c.postForm(ctx, pathCreateSession, map[string]string{
		"username":    username,
		"document_id": documentID,
	}, nil, &result)
	if err != nil {
		return nil, err
	}

	c.logger.Info("session created", "session_id", result.SessionID)
	return &result, nil
}

// SelectFormat implements Client.
func (c *HTTPClient) SelectFormat(ctx context.Context, sel FormatSelection) error {
	fields := map[string]string{
		"session_id":    sel.SessionID,
		"notes_format":  sel.FormatKey,
		"chunk_size":    strconv.Itoa(sel.ChunkSize),
		"chunk_overlap": strconv.Itoa(sel.ChunkOverlap),
		"retriever_k":   strconv.Itoa(sel.RetrieverK),
		"temperature":   strconv.FormatFloat(sel.Temperature, 'f', -1, 64),
	}
	if sel.CustomPrompt != "" {
		fields["custom_format"] = sel.CustomPrompt
	}
	return c.postForm(ctx, pathFormats, fields, nil, nil)
}

// GenerateNotes implements Client.
func (c *HTTPClient) GenerateNotes(ctx context.Context, sessionID string) (string, error) {
	var result struct {
		Notes string `json:"notes"`
	}
	err := c.postForm(ctx, pathGenerate,
		map[string]string{"session_id": sessionID}, nil, &result)
	if err != nil {
		return "", err
	}
	return result.Notes, nil
}

// Chat implements Client.
func (c *HTTPClient) Chat(ctx context.Context, sessionID, question string) (string, error) {
	var result struct {
		Answer string `json:"answer"`
	}
	err := c.postForm(ctx, pathChat, map[string]string{
		"session_id": sessionID,
		"question":   question,
	}, nil, &result)
	if err != nil {
		return "", err
	}
	return result.Answer, nil
}

// DownloadPDF implements Client.
func (c *HTTPClient) DownloadPDF(ctx context.Context, name string) ([]byte, error) {
	return c.postFormRaw(ctx, pathDownloadPDF, map[string]string{"pdfname": name})
}

// DownloadMarkdown implements Client.
func (c *HTTPClient) DownloadMarkdown(ctx context.Context, name string) ([]byte, error) {
	return c.postFormRaw(ctx, pathDownloadMD, map[string]string{"mdname": name})
}

// ListFormats implements Client.
func (c *HTTPClient) ListFormats(ctx context.Context) ([]FormatInfo, error) {
	var resp struct {
		Formats []FormatInfo `json:"formats"`
	}
	if err := c.getJSON(ctx, pathListFormats, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Formats, nil
}

// ListDocuments implements Client.
func (c *HTTPClient) ListDocuments(ctx context.Context, username string) ([]DocumentInfo, error) {
	var resp struct {
		Documents []DocumentInfo `json:"documents"`
	}
	query := url.Values{"username": {username}}
	if err := c.getJSON(ctx, pathListDocuments, query, &resp); err != nil {
		return nil, err
	}
	return resp.Documents, nil
}

// postForm sends a multipart form POST and decodes the JSON response into
// result (when non-nil). Error precedence: transport failure, then a
// present {"error": ...} field (overrides 2xx), then non-2xx status.
func (c *HTTPClient) postForm(ctx context.Context, path string, fields map[string]string, file *filePart, result any) error {
	body, err := c.doForm(ctx, path, fields, file)
	if err != nil {
		return err
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("decoding %s response: %w", path, err)
		}
	}
	return nil
}

// postFormRaw sends a multipart form POST and returns the raw body bytes.
// Used for the binary download endpoints, which still may answer with an
// error envelope instead of file content.
func (c *HTTPClient) postFormRaw(ctx context.Context, path string, fields map[string]string) ([]byte, error) {
	return c.doForm(ctx, path, fields, nil)
}

// doForm performs the multipart POST shared by postForm and postFormRaw.
func (c *HTTPClient) doForm(ctx context.Context, path string, fields map[string]string, file *filePart) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("encoding form field %q: %w", k, err)
		}
	}
	if file != nil {
		part, err := w.CreateFormFile(file.field, file.filename)
		if err != nil {
			return nil, fmt.Errorf("creating file part: %w", err)
		}
		if _, err := io.Copy(part, file.content); err != nil {
			return nil, fmt.Errorf("reading file %q: %w", file.filename, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalizing form body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	return c.do(req)
}

// getJSON performs a GET and decodes the JSON response.
func (c *HTTPClient) getJSON(ctx context.Context, path string, query url.Values, result any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	body, err := c.do(req)
	if err != nil {
		return err
	}
	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("decoding %s response: %w", path, err)
		}
	}
	return nil
}

// do executes the request and applies the shared error contract.
func (c *HTTPClient) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("backend request failed",
			"path", req.URL.Path, "error", err)
		return nil, &TransportError{Status: 0, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Status: resp.StatusCode, Err: err}
	}

	// An explicit error field wins over any status code. Only JSON
	// bodies can carry it; binary download payloads never parse.
	if looksLikeJSON(resp.Header.Get("Content-Type"), body) {
		var env errEnvelope
		if err := json.Unmarshal(body, &env); err == nil && env.Error != "" {
			return nil, &Error{Message: env.Error}
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Debug("backend request rejected",
			"path", req.URL.Path, "status", resp.StatusCode)
		return nil, &TransportError{Status: resp.StatusCode}
	}

	return body, nil
}

// looksLikeJSON reports whether the response body can carry an error
// envelope.
func looksLikeJSON(contentType string, body []byte) bool {
	if strings.Contains(contentType, "application/json") {
		return true
	}
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '{'
}
