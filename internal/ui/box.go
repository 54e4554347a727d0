package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// renderBox draws content inside a rounded border with the title set into
// the top edge.
func (m Model) renderBox(title, content string, width, height int, focused bool) string {
	borderColor := m.theme.Border
	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Muted))
	if focused {
		borderColor = m.theme.BorderFocus
		titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Accent)).Bold(true)
	}
	width = max(width, 10)
	height = max(height, 3)

	border := lipgloss.RoundedBorder()
	box := lipgloss.NewStyle().
		Border(border).
		BorderForeground(lipgloss.Color(borderColor)).
		Padding(0, 1).
		Width(width - 2).
		Height(height - 2).
		MaxHeight(height).
		Render(content)

	if title == "" {
		return box
	}
	// Splice the title into the top border line.
	label := " " + truncate(title, width-6) + " "
	edge := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColor))
	top := edge.Render(border.TopLeft+border.Top) +
		titleStyle.Render(label) +
		edge.Render(repeatRune(border.Top, width-3-lipgloss.Width(label))+border.TopRight)

	lines := splitLines(box)
	if len(lines) > 0 {
		lines[0] = top
	}
	return joinLines(lines)
}
