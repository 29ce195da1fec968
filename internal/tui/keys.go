package tui

import (
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/lectern0/lectern/internal/backend"
	"github.com/lectern0/lectern/internal/notes"
)

// keyMap holds key bindings for help bar display.
type keyMap struct {
	Submit     key.Binding
	NextField  key.Binding
	NewSession key.Binding
	Resume     key.Binding
	Formats    key.Binding
	PDF        key.Binding
	Markdown   key.Binding
	Chat       key.Binding
	Regenerate key.Binding
	Back       key.Binding
	Quit       key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Submit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		NextField:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		NewSession: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new session")),
		Resume:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "resume session")),
		Formats:    key.NewBinding(key.WithKeys("up", "down"), key.WithHelp("↑/↓", "choose format")),
		PDF:        key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "download pdf")),
		Markdown:   key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "download markdown")),
		Chat:       key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "chat")),
		Regenerate: key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "new format")),
		Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Quit:       key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "exit")),
		ScrollUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up")),
		ScrollDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "scroll down")),
	}
}

//nolint:gocyclo // Keyboard handler requires branching for all key combinations
func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	k := msg.Key()

	if k.Mod&tea.ModCtrl != 0 {
		switch k.Code {
		case 'c', 'd':
			return m, m.cleanup()
		}
	}

	switch k.Code {
	case tea.KeyPgUp:
		m.viewport.PageUp()
		return m, nil
	case tea.KeyPgDown:
		m.viewport.PageDown()
		return m, nil
	}

	switch m.stage {
	case StageUpload:
		return m.handleUploadKey(k, msg)
	case StageSession:
		return m.handleSessionKey(k, msg)
	case StageConfigure:
		return m.handleConfigureKey(k, msg)
	case StageReview:
		return m.handleReviewKey(k)
	case StageChat:
		return m.handleChatKey(k, msg)
	}
	return m, nil
}

func (m *Model) handleUploadKey(k tea.Key, msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch k.Code {
	case tea.KeyTab:
		if m.uploadFoc == fieldUsername {
			m.uploadFoc = fieldFilePath
			m.username.Blur()
			return m, m.filePath.Focus()
		}
		m.uploadFoc = fieldUsername
		m.filePath.Blur()
		return m, m.username.Focus()

	case tea.KeyEnter:
		if m.pending {
			return m, nil
		}
		m.pending = true
		m.setNotice("Uploading...", true)
		return m, tea.Batch(
			m.spinner.Tick,
			m.upload(m.username.Value(), strings.TrimSpace(m.filePath.Value())),
		)
	}
	return m.updateFocused(msg)
}

func (m *Model) handleSessionKey(k tea.Key, msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if m.adopting {
		switch k.Code {
		case tea.KeyEscape:
			m.adopting = false
			m.sessionInput.Blur()
			return m, nil
		case tea.KeyEnter:
			// Shape check only; adoption never touches the network.
			if err := m.svc.UseExistingSession(m.sessionInput.Value()); err != nil {
				m.fail(err)
				return m, nil
			}
			m.adopting = false
			m.setNotice("Session "+m.svc.Context().SessionID+" adopted", true)
			m.stage = StageConfigure
			return m, nil
		}
		return m.updateFocused(msg)
	}

	switch k.Code {
	case 'n':
		if m.pending {
			return m, nil
		}
		m.pending = true
		m.setNotice("Creating session...", true)
		return m, tea.Batch(m.spinner.Tick, m.createSession())
	case 'r':
		m.adopting = true
		m.sessionInput.SetValue("")
		return m, m.sessionInput.Focus()
	}
	return m, nil
}

func (m *Model) handleConfigureKey(k tea.Key, msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch k.Code {
	case tea.KeyUp:
		if m.formatIdx > 0 {
			m.formatIdx--
		}
		m.syncCustomFocus()
		return m, nil

	case tea.KeyDown:
		if m.formatIdx < len(m.formats)-1 {
			m.formatIdx++
		}
		m.syncCustomFocus()
		return m, nil

	case tea.KeyEnter:
		// Shift+Enter adds a newline inside the custom prompt.
		if m.customVisible() && k.Mod&tea.ModShift != 0 {
			return m.updateFocused(msg)
		}
		if m.pending {
			return m, nil
		}
		m.pending = true
		m.setNotice("Generating notes...", true)
		return m, tea.Batch(
			m.spinner.Tick,
			m.generate(m.selectedFormat(), m.customPrompt.Value()),
		)
	}
	return m.updateFocused(msg)
}

func (m *Model) handleReviewKey(k tea.Key) (tea.Model, tea.Cmd) {
	if m.pending {
		return m, nil
	}

	switch k.Code {
	case 'p':
		m.pending = true
		m.setNotice("Exporting PDF...", true)
		return m, tea.Batch(m.spinner.Tick, m.download(notes.ArtifactPDF))
	case 'm':
		m.pending = true
		m.setNotice("Exporting markdown...", true)
		return m, tea.Batch(m.spinner.Tick, m.download(notes.ArtifactMarkdown))
	case 'c':
		m.stage = StageChat
		m.setNotice("", true)
		m.refreshViewport()
		m.viewport.GotoBottom()
		return m, m.chatInput.Focus()
	case 'g':
		m.stage = StageConfigure
		m.setNotice("", true)
		return m, nil
	case tea.KeyUp:
		m.viewport.ScrollUp(1)
		return m, nil
	case tea.KeyDown:
		m.viewport.ScrollDown(1)
		return m, nil
	}
	return m, nil
}

func (m *Model) handleChatKey(k tea.Key, msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch k.Code {
	case tea.KeyEscape:
		m.stage = StageReview
		m.refreshViewport()
		return m, nil

	case tea.KeyEnter:
		if k.Mod&tea.ModShift != 0 {
			return m.updateFocused(msg)
		}
		if m.pending {
			return m, nil
		}
		question := strings.TrimSpace(m.chatInput.Value())
		if question == "" {
			return m, nil
		}
		m.chatInput.Reset()
		m.pending = true
		// Optimistic: the service appends the question before the call
		// resolves, but the command has not run yet, so show it now.
		m.refreshViewportWithPendingQuestion(question)
		m.viewport.GotoBottom()
		return m, tea.Batch(m.spinner.Tick, m.ask(question))
	}
	return m.updateFocused(msg)
}

// customVisible reports whether the custom prompt editor is on screen.
func (m *Model) customVisible() bool {
	return backend.IsCustomFormat(m.selectedFormat())
}

// syncCustomFocus focuses the prompt editor only while the custom
// template format is under the cursor.
func (m *Model) syncCustomFocus() {
	if m.customVisible() {
		m.customPrompt.Focus()
	} else {
		m.customPrompt.Blur()
	}
}

// cleanup cancels all in-flight work and returns the quit command.
func (m *Model) cleanup() tea.Cmd {
	if m.ctxCancel != nil {
		m.ctxCancel()
		m.ctxCancel = nil
	}
	return tea.Quit
}
