package ui

import (
	"strconv"
	"strings"
	"time"

	"github.com/five82/shelf/internal/catalog"
)

// truncate shortens a string to the given limit, adding ellipsis if needed.
func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

// padRight pads a string with spaces to the given width.
func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(r))
}

// orDash returns value, or "—" when it is blank.
func orDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "—"
	}
	return strings.TrimSpace(value)
}

// formatPages renders an optional page count.
func formatPages(pages *int) string {
	if pages == nil {
		return "—"
	}
	return strconv.Itoa(*pages)
}

// progressBar draws a fixed-width bar for percent in [0, 100].
func progressBar(percent, width int) string {
	if width <= 0 {
		return ""
	}
	percent = min(max(percent, 0), 100)
	filled := width * percent / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func repeatRune(s string, n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(s, n)
}

func splitLines(s string) []string {
	return strings.Split(s, "\n")
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}

// dateOrDash formats a calendar date, or "—" for the zero time.
func dateOrDash(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Format(catalog.DateLayout)
}
