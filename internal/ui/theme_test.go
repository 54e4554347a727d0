package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestGetThemeFallsBack(t *testing.T) {
	if got := GetTheme("nope").Name; got != "Nightfox" {
		t.Fatalf("GetTheme fallback = %q, want Nightfox", got)
	}
	for _, name := range ThemeNames() {
		if got := GetTheme(name).Name; got != name {
			t.Fatalf("GetTheme(%q).Name = %q", name, got)
		}
	}
}

func TestNextThemeCycles(t *testing.T) {
	names := ThemeNames()
	current := names[0]
	for i := 1; i <= len(names); i++ {
		current = NextTheme(current)
		if want := names[i%len(names)]; current != want {
			t.Fatalf("NextTheme step %d = %q, want %q", i, current, want)
		}
	}
	if got := NextTheme("unknown"); got != names[0] {
		t.Fatalf("NextTheme(unknown) = %q", got)
	}
}

func TestBucketStyle(t *testing.T) {
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		styles := th.Styles()
		for _, kind := range []string{"planned", "reading", "completed"} {
			if th.BucketColors[kind] == "" {
				t.Fatalf("%s: no color for %s", name, kind)
			}
			got := styles.BucketStyle(kind).GetBackground()
			if got != lipgloss.Color(th.BucketColors[kind]) {
				t.Fatalf("%s: BucketStyle(%s) background = %v", name, kind, got)
			}
		}
		if got := styles.BucketStyle("").GetBackground(); got != lipgloss.Color(th.Muted) {
			t.Fatalf("%s: unclassified background = %v, want muted", name, got)
		}
		withBg := styles.WithBackground(th.Surface)
		if got := withBg.BucketStyle("").GetBackground(); got != lipgloss.Color(th.Muted) {
			t.Fatalf("%s: WithBackground lost muted color", name)
		}
	}
}
