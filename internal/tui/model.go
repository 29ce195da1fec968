// Package tui provides the Bubble Tea terminal interface for lectern.
//
// The interface is a strictly sequential stage machine: upload a
// document, create or resume a session, pick a notes format, review the
// generated notes, then chat about them. Each stage submits at most one
// backend call at a time; while a call is pending the stage is locked
// and the spinner shows. All backend work runs in tea.Cmd goroutines
// that report back through typed result messages, so the Update loop
// stays single-threaded.
package tui

import (
	"context"
	"errors"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/textinput"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/lectern0/lectern/internal/backend"
	"github.com/lectern0/lectern/internal/log"
	"github.com/lectern0/lectern/internal/notes"
	"github.com/lectern0/lectern/internal/session"
)

// Stage represents the TUI stage machine.
type Stage int

// Stage machine stages, in workflow order.
const (
	StageUpload    Stage = iota // Username + file selection
	StageSession                // Create new or resume existing session
	StageConfigure              // Format and custom prompt selection
	StageReview                 // Generated notes, download actions
	StageChat                   // Q&A over the document
)

// uploadField identifies the focused input on the upload stage.
type uploadField int

const (
	fieldUsername uploadField = iota
	fieldFilePath
)

// Layout constants for viewport height calculation.
const (
	chromeLines = 6 // Header, separators, input line, help bar
	minViewport = 3 // Minimum viewport height
	defaultWide = 80
)

// Model is the Bubble Tea model for the lectern terminal interface.
type Model struct {
	svc    *notes.Service
	logger log.Logger

	// Stage machine. pending locks the active stage while a backend
	// call is in flight; result messages unlock it.
	stage   Stage
	pending bool

	// notice is the user-visible status line: validation rejections,
	// backend refusals, and success confirmations all land here.
	notice   string
	noticeOK bool

	// Upload stage
	username  textinput.Model
	filePath  textinput.Model
	uploadFoc uploadField

	// Session stage
	sessionInput textinput.Model
	adopting     bool // true while typing an existing session id

	// Configure stage
	formats      []backend.FormatInfo
	formatIdx    int
	customPrompt textarea.Model

	// Review + chat stages
	viewport  viewport.Model
	chatInput textarea.Model

	spinner spinner.Model
	help    help.Model
	keys    keyMap

	ctx       context.Context
	ctxCancel context.CancelFunc

	width  int
	height int

	styles   Styles
	markdown *markdownRenderer
}

// New creates a Model driving the given stage orchestrator.
//
// IMPORTANT: ctx MUST be the same context passed to tea.WithContext()
// to ensure consistent cancellation behavior.
func New(ctx context.Context, svc *notes.Service, logger log.Logger) (*Model, error) {
	if svc == nil {
		return nil, errors.New("tui.New: service is required")
	}
	if ctx == nil {
		return nil, errors.New("tui.New: ctx is required")
	}
	if logger == nil {
		logger = log.NewNop()
	}

	ctx, cancel := context.WithCancel(ctx)

	username := textinput.New()
	username.Placeholder = "username"
	username.CharLimit = 64
	username.Focus()

	filePath := textinput.New()
	filePath.Placeholder = "path to .pdf, .txt, or .srt"

	sessionInput := textinput.New()
	sessionInput.Placeholder = "existing session id (UUID)"
	sessionInput.CharLimit = 36

	prompt := newCleanTextarea("Describe your custom notes template...")
	prompt.SetHeight(4)

	chat := newCleanTextarea("Ask about the document...")
	chat.SetHeight(1)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	vp := viewport.New(viewport.WithWidth(defaultWide), viewport.WithHeight(20))
	vp.MouseWheelEnabled = true
	vp.SoftWrap = true
	vp.KeyMap = viewport.KeyMap{} // Keys are routed explicitly in handleKey

	m := &Model{
		svc:          svc,
		logger:       logger,
		stage:        StageUpload,
		username:     username,
		filePath:     filePath,
		sessionInput: sessionInput,
		customPrompt: prompt,
		chatInput:    chat,
		spinner:      sp,
		viewport:     vp,
		help:         help.New(),
		keys:         newKeyMap(),
		ctx:          ctx,
		ctxCancel:    cancel,
		styles:       DefaultStyles(),
		markdown:     newMarkdownRenderer(defaultWide),
		width:        defaultWide,
		formats:      backend.Formats(),
	}

	if u := svc.Context().Username; u != "" {
		m.username.SetValue(u)
	}

	return m, nil
}

// newCleanTextarea creates a single-style textarea without line numbers.
func newCleanTextarea(placeholder string) textarea.Model {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.SetWidth(defaultWide)
	ta.ShowLineNumbers = false

	cleanStyle := textarea.StyleState{
		Base:        lipgloss.NewStyle(),
		Text:        lipgloss.NewStyle(),
		Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Prompt:      lipgloss.NewStyle(),
	}
	ta.SetStyles(textarea.Styles{Focused: cleanStyle, Blurred: cleanStyle})
	return ta
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		m.username.Focus(),
		m.loadFormats(),
	)
}

// setNotice records a user-visible status line.
func (m *Model) setNotice(text string, ok bool) {
	m.notice = text
	m.noticeOK = ok
}

// fail converts an error into the user-visible notice.
func (m *Model) fail(err error) {
	m.setNotice(backend.Notice(err), false)
}

// selectedFormat returns the format key under the cursor.
func (m *Model) selectedFormat() string {
	if len(m.formats) == 0 {
		return backend.DefaultFormatKey
	}
	return m.formats[m.formatIdx].Key
}

// transcript returns the current chat transcript entries.
func (m *Model) transcript() []session.Entry {
	return m.svc.Transcript().Entries()
}
