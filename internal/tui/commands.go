package tui

import (
	tea "charm.land/bubbletea/v2"

	"github.com/lectern0/lectern/internal/backend"
	"github.com/lectern0/lectern/internal/notes"
)

// Result messages for backend calls. Each stage submits one call at a
// time; the matching message unlocks the stage again. Exactly one
// message arrives per submitted command.

type formatsLoadedMsg struct {
	formats []backend.FormatInfo
}

type uploadDoneMsg struct {
	result *backend.UploadResult
	err    error
}

type sessionDoneMsg struct {
	result *backend.SessionResult
	err    error
}

type generateDoneMsg struct {
	notes string
	err   error
}

type chatDoneMsg struct {
	answer string
	err    error
}

type downloadDoneMsg struct {
	kind notes.ArtifactKind
	path string
	err  error
}

// loadFormats fetches the display list of formats in the background.
// Failure is silent; the built-in registry is already in place.
func (m *Model) loadFormats() tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		return formatsLoadedMsg{formats: svc.ListFormats(ctx)}
	}
}

// upload submits the upload stage call.
func (m *Model) upload(username, path string) tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		result, err := svc.Upload(ctx, username, path)
		return uploadDoneMsg{result: result, err: err}
	}
}

// createSession submits the session creation call.
func (m *Model) createSession() tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		result, err := svc.CreateSession(ctx)
		return sessionDoneMsg{result: result, err: err}
	}
}

// generate submits the two-step format + generation call.
func (m *Model) generate(formatKey, customPrompt string) tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		text, err := svc.Generate(ctx, formatKey, customPrompt)
		return generateDoneMsg{notes: text, err: err}
	}
}

// ask submits a chat question. The service handles transcript bookkeeping
// and failure masking; the answer here is always displayable.
func (m *Model) ask(question string) tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		answer, err := svc.Chat(ctx, question)
		return chatDoneMsg{answer: answer, err: err}
	}
}

// download submits an artifact export.
func (m *Model) download(kind notes.ArtifactKind) tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		path, err := svc.Download(ctx, kind)
		return downloadDoneMsg{kind: kind, path: path, err: err}
	}
}
