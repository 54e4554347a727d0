package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/shelf/internal/reading"
)

const barWidth = 30

// renderAnalytics renders the collection summary.
func (m Model) renderAnalytics() string {
	styles := m.theme.Styles()
	contentHeight := m.height - 2

	if !m.snapshot.HasReport {
		msg := styles.MutedText.Render("Loading analytics...")
		if m.snapshot.LastError != nil {
			msg = styles.DangerText.Render("Could not load analytics: " + m.snapshot.LastError.Error())
		}
		return m.renderBox("Analytics", msg, m.width, contentHeight, true)
	}

	report := m.snapshot.Report
	var b strings.Builder

	b.WriteString(m.renderStatCards(report.Stats))
	b.WriteString("\n\n")

	percent := report.CompletionPercent()
	b.WriteString(styles.Text.Bold(true).Render("Completion"))
	b.WriteString("\n")
	b.WriteString(styles.SuccessText.Render(progressBar(percent, barWidth)))
	b.WriteString(" ")
	b.WriteString(styles.Text.Render(fmt.Sprintf("%d%%", percent)))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render(fmt.Sprintf("%d of %d classified books completed",
		report.Stats.Completed, report.Stats.Classified())))
	b.WriteString("\n\n")

	b.WriteString(styles.Text.Bold(true).Render("By status"))
	b.WriteString("\n")
	b.WriteString(m.renderBreakdown(report.Breakdown))
	b.WriteString("\n")

	b.WriteString(styles.FaintText.Render(fmt.Sprintf("%d books considered · source: %s",
		report.Considered, sourceLabel(report.Source))))

	return m.renderBox("Analytics", b.String(), m.width, contentHeight, true)
}

// renderStatCards lays out the headline numbers side by side, stacking them
// on narrow terminals.
func (m Model) renderStatCards(stats reading.Stats) string {
	styles := m.theme.Styles()
	type card struct {
		label string
		value int
		kind  string
	}
	cards := []card{
		{"Planned", stats.Planned, "planned"},
		{"Reading", stats.Reading, "reading"},
		{"Completed", stats.Completed, "completed"},
		{"Pages read", stats.TotalPages, ""},
		{"Avg. reading", stats.AvgReadingTime, ""},
	}

	rendered := make([]string, 0, len(cards))
	for _, c := range cards {
		valueStyle := styles.AccentText.Bold(true)
		if c.kind != "" {
			if color := m.theme.BucketColors[c.kind]; color != "" {
				valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
			}
		}
		body := valueStyle.Render(strconv.Itoa(c.value)) + "\n" + styles.MutedText.Render(c.label)
		rendered = append(rendered, lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(m.theme.BorderMuted)).
			Padding(0, 2).
			Width(16).
			Render(body))
	}

	if m.width < LayoutCompactWidth {
		return lipgloss.JoinVertical(lipgloss.Left, rendered...)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// renderBreakdown lists every catalog status with its book count.
func (m Model) renderBreakdown(rows []reading.StatusCount) string {
	styles := m.theme.Styles()
	if len(rows) == 0 {
		return styles.MutedText.Render("No statuses defined.")
	}

	nameWidth := 0
	for _, row := range rows {
		nameWidth = max(nameWidth, lipgloss.Width(row.Name))
	}
	nameWidth = min(nameWidth, 24)

	var b strings.Builder
	for i, row := range rows {
		if i > 0 {
			b.WriteString("\n")
		}
		badge := styles.BucketStyle(m.buckets.Kind(row.Name)).Render(padRight(truncate(row.Name, nameWidth), nameWidth))
		b.WriteString(badge)
		b.WriteString(" ")
		b.WriteString(styles.Text.Render(strconv.Itoa(row.Count)))
	}
	return b.String()
}

func sourceLabel(source reading.Source) string {
	switch source {
	case reading.SourceEvents:
		return "status history"
	case reading.SourceLookups:
		return "current statuses"
	default:
		return "no data"
	}
}
