package tui

import (
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/lectern0/lectern/internal/notes"
)

// Update implements tea.Model.
//
//nolint:gocognit,gocyclo // Bubble Tea Update requires type switch on all message types
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := max(msg.Height-chromeLines, minViewport)
		m.viewport.SetWidth(msg.Width)
		m.viewport.SetHeight(vpHeight)
		m.username.SetWidth(msg.Width - 4)
		m.filePath.SetWidth(msg.Width - 4)
		m.sessionInput.SetWidth(msg.Width - 4)
		m.customPrompt.SetWidth(msg.Width - 4)
		m.chatInput.SetWidth(msg.Width - 4)
		m.help.SetWidth(msg.Width)
		m.markdown.UpdateWidth(msg.Width)

		m.refreshViewport()
		return m, nil

	case tea.MouseWheelMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case formatsLoadedMsg:
		if len(msg.formats) > 0 {
			m.formats = msg.formats
			if m.formatIdx >= len(m.formats) {
				m.formatIdx = 0
			}
		}
		return m, nil

	case uploadDoneMsg:
		m.pending = false
		if msg.err != nil {
			m.fail(msg.err)
			return m, nil
		}
		size := notes.FormatFileSize(int64(msg.result.TextLength))
		m.setNotice("Uploaded "+msg.result.Filename+" ("+size+" of text, "+msg.result.DocumentID+")", true)
		m.stage = StageSession
		return m, nil

	case sessionDoneMsg:
		m.pending = false
		if msg.err != nil {
			m.fail(msg.err)
			return m, nil
		}
		m.setNotice("Session "+msg.result.SessionID+" ready", true)
		m.stage = StageConfigure
		return m, nil

	case generateDoneMsg:
		m.pending = false
		if msg.err != nil {
			m.fail(msg.err)
			return m, nil
		}
		m.setNotice("Notes generated", true)
		m.stage = StageReview
		m.refreshViewport()
		m.viewport.GotoTop()
		return m, nil

	case chatDoneMsg:
		m.pending = false
		if msg.err != nil {
			// Only local validation can surface here; call failures are
			// already masked into the transcript by the service.
			m.fail(msg.err)
			return m, nil
		}
		m.setNotice("", true)
		m.refreshViewport()
		m.viewport.GotoBottom()
		return m, m.chatInput.Focus()

	case downloadDoneMsg:
		m.pending = false
		if msg.err != nil {
			m.fail(msg.err)
			return m, nil
		}
		m.setNotice("Saved "+msg.path, true)
		return m, nil
	}

	return m.updateFocused(msg)
}

// updateFocused routes a message to the stage's focused input component.
func (m *Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.stage {
	case StageUpload:
		if m.uploadFoc == fieldUsername {
			m.username, cmd = m.username.Update(msg)
		} else {
			m.filePath, cmd = m.filePath.Update(msg)
		}
	case StageSession:
		if m.adopting {
			m.sessionInput, cmd = m.sessionInput.Update(msg)
		}
	case StageConfigure:
		if m.customVisible() {
			m.customPrompt, cmd = m.customPrompt.Update(msg)
		}
	case StageChat:
		m.chatInput, cmd = m.chatInput.Update(msg)
	case StageReview:
		// Review has no text input; keys act directly.
	}
	return m, cmd
}
