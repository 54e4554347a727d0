package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/shelf/internal/logtail"
)

type logLinesMsg struct {
	lines []string
	err   error
}

// readLogsCmd tails the log file and formats each entry for display.
func readLogsCmd(path string) tea.Cmd {
	return func() tea.Msg {
		if path == "" {
			return logLinesMsg{}
		}
		lines, err := logtail.Read(path, LogTailLines)
		if err != nil {
			return logLinesMsg{err: err}
		}
		return logLinesMsg{lines: logtail.FormatLines(lines)}
	}
}

// initLogViewport initializes the log viewport.
func (m *Model) initLogViewport() {
	m.logViewport = viewport.New(max(m.width-4, 0), max(m.height-4, 0))
	m.logViewport.Style = lipgloss.NewStyle()
}

// updateLogViewport updates the log viewport with current content.
func (m *Model) updateLogViewport() {
	if m.logViewport.Width == 0 {
		m.initLogViewport()
	}

	// Box inner = content height (m.height - 2) minus both borders.
	m.logViewport.Width = max(m.width-4, 0)
	m.logViewport.Height = max(m.height-4, 0)
	m.logViewport.SetContent(m.renderLogContent())

	if m.logFollow {
		m.logViewport.GotoBottom()
	}
}

// renderLogContent colors each formatted line by its level.
func (m Model) renderLogContent() string {
	styles := m.theme.Styles()
	if len(m.logLines) == 0 {
		return styles.MutedText.Render("No log entries yet.")
	}
	width := m.logViewport.Width
	rendered := make([]string, len(m.logLines))
	for i, line := range m.logLines {
		if width > 0 {
			line = truncate(line, width)
		}
		rendered[i] = m.levelStyle(line).Render(line)
	}
	return strings.Join(rendered, "\n")
}

func (m Model) levelStyle(line string) lipgloss.Style {
	styles := m.theme.Styles()
	switch {
	case strings.Contains(line, " ERROR "), strings.Contains(line, " DPANIC "), strings.Contains(line, " FATAL "):
		return styles.DangerText
	case strings.Contains(line, " WARN "):
		return styles.WarningText
	case strings.Contains(line, " DEBUG "):
		return styles.FaintText
	default:
		return styles.Text
	}
}

// handleLogsKey processes keyboard input for logs view.
func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ToggleFollow):
		m.logFollow = !m.logFollow
		if m.logFollow {
			m.logViewport.GotoBottom()
			return m, readLogsCmd(m.logPath)
		}
		return m, nil

	case key.Matches(msg, m.keys.Top):
		m.logViewport.GotoTop()
		m.logFollow = false

	case key.Matches(msg, m.keys.Bottom):
		m.logViewport.GotoBottom()
		m.logFollow = true

	case key.Matches(msg, m.keys.Down):
		m.logViewport.ScrollDown(1)
		m.logFollow = false

	case key.Matches(msg, m.keys.Up):
		m.logViewport.ScrollUp(1)
		m.logFollow = false

	case key.Matches(msg, m.keys.HalfPageDown):
		m.logViewport.HalfPageDown()
		m.logFollow = false

	case key.Matches(msg, m.keys.HalfPageUp):
		m.logViewport.HalfPageUp()
		m.logFollow = false
	}
	return m, nil
}

// renderLogs renders the log view.
func (m Model) renderLogs() string {
	title := "Logs"
	if m.logFollow {
		title += " · following"
	} else {
		title += " · paused"
	}
	return m.renderBox(title, m.logViewport.View(), m.width, m.height-2, true)
}
