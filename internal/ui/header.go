package ui

import (
	"fmt"
	"strings"
	"time"
)

// renderHeader renders the status bar across the top of the screen.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < LayoutCompactWidth

	parts := []string{bg.Render("shelf", styles.Logo)}

	if user := m.userLabel(); user != "" {
		parts = append(parts, bg.Render(user, styles.Text))
	}

	switch {
	case m.refreshing:
		parts = append(parts, bg.Render("● SYNC", styles.InfoText))
	case m.snapshot.IsOffline():
		parts = append(parts, bg.Render("● OFFLINE", styles.DangerText.Bold(true)))
	case m.snapshot.HasReport:
		parts = append(parts, bg.Render("● ONLINE", styles.SuccessText))
	default:
		parts = append(parts, bg.Render("Connecting...", styles.WarningText.Bold(true)))
	}

	if m.snapshot.HasReport {
		parts = append(parts,
			bg.Render("Books:", styles.MutedText)+bg.Space()+
				bg.Render(fmt.Sprintf("%d", len(m.snapshot.Books)), styles.Text),
			bg.Render("Done:", styles.MutedText)+bg.Space()+
				bg.Render(fmt.Sprintf("%d%%", m.snapshot.Report.CompletionPercent()), styles.AccentText),
		)
	}

	if err := m.snapshot.LastError; err != nil && !compact {
		parts = append(parts, bg.Render(truncate(err.Error(), 48), styles.DangerText))
	}

	parts = append(parts, bg.Render(m.formatTimestamp(), styles.FaintText))

	return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
}

// userLabel names the session user, preferring the login.
func (m Model) userLabel() string {
	if m.session.Login != "" {
		return m.session.Login
	}
	if m.session.UserID > 0 {
		return fmt.Sprintf("user #%d", m.session.UserID)
	}
	return ""
}

func (m Model) formatTimestamp() string {
	updated := m.snapshot.LastUpdated
	if updated.IsZero() {
		return "never updated"
	}
	if time.Since(updated) < time.Minute {
		return "updated " + updated.Format("15:04:05")
	}
	return "updated " + updated.Format("Jan 2 15:04")
}

// renderCommandBar renders the command hints bar.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	commands := []cmd{
		{"a", "Analytics"},
		{"b", "Books"},
		{"l", "Logs"},
	}
	active := map[View]int{ViewAnalytics: 0, ViewBooks: 1, ViewLogs: 2}[m.currentView]

	switch m.currentView {
	case ViewBooks:
		commands = append(commands, cmd{"j/k", "Navigate"}, cmd{"enter", "Status"})
	case ViewLogs:
		follow := "Pause"
		if !m.logFollow {
			follow = "Follow"
		}
		commands = append(commands, cmd{"space", follow})
	}
	commands = append(commands, cmd{"r", "Refresh"}, cmd{"?", "More"})

	colon := bg.Render(":", styles.FaintText)
	segments := make([]string, 0, len(commands)+2)
	for i, c := range commands {
		descStyle := styles.MutedText
		if i == active {
			descStyle = styles.Text.Bold(true).Underline(true)
		}
		segments = append(segments, bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, descStyle))
	}

	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	if m.notice != "" {
		segments = append(segments, bg.Render(truncate(m.notice, 60), styles.WarningText))
	}

	return styles.Header.Width(m.width).Render(strings.Join(segments, bg.Spaces(2)))
}
