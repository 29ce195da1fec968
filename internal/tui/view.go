package tui

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/lectern0/lectern/internal/session"
)

// View implements tea.Model.
func (m *Model) View() tea.View {
	var b strings.Builder

	b.WriteString(m.styles.Header.Render(m.stageTitle()))
	b.WriteString("\n")
	b.WriteString(m.renderSeparator())
	b.WriteString("\n")

	switch m.stage {
	case StageUpload:
		b.WriteString(m.viewUpload())
	case StageSession:
		b.WriteString(m.viewSession())
	case StageConfigure:
		b.WriteString(m.viewConfigure())
	case StageReview:
		b.WriteString(m.viewReview())
	case StageChat:
		b.WriteString(m.viewChat())
	}

	b.WriteString("\n")
	b.WriteString(m.renderNotice())
	b.WriteString("\n")
	b.WriteString(m.renderSeparator())
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())

	v := tea.NewView(b.String())
	v.AltScreen = true
	return v
}

// stageTitle returns the header line with workflow progress.
func (m *Model) stageTitle() string {
	names := []string{"Upload", "Session", "Format", "Notes", "Chat"}
	parts := make([]string, len(names))
	for i, name := range names {
		if Stage(i) == m.stage {
			parts[i] = "[" + name + "]"
		} else {
			parts[i] = name
		}
	}
	return "lectern  " + strings.Join(parts, " → ")
}

func (m *Model) viewUpload() string {
	var b strings.Builder
	b.WriteString(m.styles.Banner.Render(banner))
	b.WriteString("\n\n")
	b.WriteString("Username: ")
	b.WriteString(m.username.View())
	b.WriteString("\n")
	b.WriteString("File:     ")
	b.WriteString(m.filePath.View())
	b.WriteString("\n\n")
	b.WriteString(m.styles.System.Render("Accepted types: PDF, plain text, and subtitle (.srt) files."))
	return b.String()
}

func (m *Model) viewSession() string {
	var b strings.Builder
	sctx := m.svc.Context()
	fmt.Fprintf(&b, "Document %s uploaded for %s.\n\n", sctx.DocumentID, sctx.Username)

	if m.adopting {
		b.WriteString("Session id: ")
		b.WriteString(m.sessionInput.View())
		b.WriteString("\n")
		b.WriteString(m.styles.System.Render("Enter to adopt, Esc to go back."))
		return b.String()
	}

	b.WriteString("Press ")
	b.WriteString(m.styles.User.Render("n"))
	b.WriteString(" to start a new session, or ")
	b.WriteString(m.styles.User.Render("r"))
	b.WriteString(" to resume an existing one.")
	return b.String()
}

func (m *Model) viewConfigure() string {
	var b strings.Builder
	b.WriteString("Choose a notes format:\n\n")

	// Windowed list keeps the cursor visible on small terminals.
	const window = 9
	start := max(0, min(m.formatIdx-window/2, len(m.formats)-window))
	end := min(len(m.formats), start+window)
	for i := start; i < end; i++ {
		f := m.formats[i]
		line := fmt.Sprintf("  %s", f.Label)
		if i == m.formatIdx {
			line = m.styles.User.Render("> " + f.Label)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if m.customVisible() {
		b.WriteString("\nCustom template:\n")
		b.WriteString(m.customPrompt.View())
	}
	return b.String()
}

func (m *Model) viewReview() string {
	return m.viewport.View()
}

func (m *Model) viewChat() string {
	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.styles.Prompt.Render("> "))
	b.WriteString(m.chatInput.View())
	return b.String()
}

// refreshViewport rebuilds the viewport for the review and chat stages.
func (m *Model) refreshViewport() {
	switch m.stage {
	case StageReview:
		m.viewport.SetContent(m.markdown.Render(m.svc.Context().GeneratedNotes))
	case StageChat:
		m.viewport.SetContent(m.renderTranscript(""))
	default:
	}
}

// refreshViewportWithPendingQuestion shows the just-submitted question
// before its backend call resolves.
func (m *Model) refreshViewportWithPendingQuestion(question string) {
	m.viewport.SetContent(m.renderTranscript(question))
}

// renderTranscript renders the chat history, optionally with a pending
// question at the bottom.
func (m *Model) renderTranscript(pending string) string {
	var b strings.Builder
	for _, e := range m.transcript() {
		switch e.Role {
		case session.RoleUser:
			b.WriteString(m.styles.User.Render("You> "))
			b.WriteString(e.Text)
		case session.RoleAssistant:
			b.WriteString(m.styles.Assistant.Render("Notes> "))
			b.WriteString(m.markdown.Render(e.Text))
		}
		b.WriteString("\n\n")
	}
	if pending != "" {
		b.WriteString(m.styles.User.Render("You> "))
		b.WriteString(pending)
		b.WriteString("\n\n")
		b.WriteString(m.spinner.View())
		b.WriteString(" Thinking...\n")
	}
	return b.String()
}

// renderNotice renders the status line, with the spinner while pending.
func (m *Model) renderNotice() string {
	if m.pending {
		return m.spinner.View() + " " + m.styles.System.Render(m.notice)
	}
	if m.notice == "" {
		return ""
	}
	if m.noticeOK {
		return m.styles.System.Render(m.notice)
	}
	return m.styles.Error.Render(m.notice)
}

// renderSeparator returns a horizontal line separator.
func (m *Model) renderSeparator() string {
	width := m.width
	if width <= 0 {
		width = defaultWide
	}
	return m.styles.Separator.Render(strings.Repeat("─", width))
}

// renderStatusBar returns stage-appropriate keyboard shortcut help.
func (m *Model) renderStatusBar() string {
	var bindings []key.Binding
	switch m.stage {
	case StageUpload:
		bindings = []key.Binding{m.keys.NextField, m.keys.Submit, m.keys.Quit}
	case StageSession:
		if m.adopting {
			bindings = []key.Binding{m.keys.Submit, m.keys.Back, m.keys.Quit}
		} else {
			bindings = []key.Binding{m.keys.NewSession, m.keys.Resume, m.keys.Quit}
		}
	case StageConfigure:
		bindings = []key.Binding{m.keys.Formats, m.keys.Submit, m.keys.Quit}
	case StageReview:
		bindings = []key.Binding{
			m.keys.PDF, m.keys.Markdown, m.keys.Chat,
			m.keys.Regenerate, m.keys.ScrollUp, m.keys.Quit,
		}
	case StageChat:
		bindings = []key.Binding{m.keys.Submit, m.keys.Back, m.keys.ScrollUp, m.keys.Quit}
	}
	return m.help.ShortHelpView(bindings)
}
