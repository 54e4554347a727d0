package ui

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/shelf/internal/catalog"
	"github.com/five82/shelf/internal/prefs"
	"github.com/five82/shelf/internal/reading"
	"github.com/five82/shelf/internal/state"
)

type fakeStatusSource struct {
	mu        sync.Mutex
	statuses  []catalog.StatusDefinition
	current   map[int64]*catalog.StatusDefinition
	history   map[int64][]catalog.StatusEvent
	submitErr error
	submitted []catalog.StatusUpdate
}

func (f *fakeStatusSource) FetchStatuses(context.Context) ([]catalog.StatusDefinition, error) {
	return f.statuses, nil
}

func (f *fakeStatusSource) FetchBookStatus(_ context.Context, bookID int64) (*catalog.StatusDefinition, error) {
	return f.current[bookID], nil
}

func (f *fakeStatusSource) FetchBookHistory(_ context.Context, bookID int64) ([]catalog.StatusEvent, error) {
	return f.history[bookID], nil
}

func (f *fakeStatusSource) SubmitBookStatus(_ context.Context, bookID int64, update catalog.StatusUpdate) (catalog.StatusEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, update)
	if f.submitErr != nil {
		return catalog.StatusEvent{}, f.submitErr
	}
	return catalog.StatusEvent{AnalyticsID: 1, BookID: bookID, StatusID: update.StatusID}, nil
}

var testStatuses = []catalog.StatusDefinition{
	{StatusID: 1, Name: "В планах"},
	{StatusID: 2, Name: "Читаю"},
	{StatusID: 3, Name: "Прочитано"},
}

func newTestModel(t *testing.T, src *fakeStatusSource) Model {
	t.Helper()
	m := New(Options{
		Context:   context.Background(),
		Store:     &state.Store{},
		Resolver:  reading.NewResolver(src, nil),
		PrefsPath: filepath.Join(t.TempDir(), "prefs.toml"),
	})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = updated.(Model)
	updated, _ = m.Update(snapshotMsg(state.Snapshot{
		Books: []catalog.Book{
			{BookID: 10, Title: "Мастер и Маргарита"},
			{BookID: 11, Title: "Пикник на обочине"},
		},
		HasReport: true,
	}))
	return updated.(Model)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	for _, r := range text {
		m, _ = press(t, m, runes(string(r)))
	}
	return m
}

// openDialog opens the status dialog on the selected book and delivers its load.
func openDialog(t *testing.T, m Model) Model {
	t.Helper()
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.modal == nil || cmd == nil {
		t.Fatalf("expected status dialog to open")
	}
	m, _ = press(t, m, cmd())
	return m
}

func dialogOf(t *testing.T, m Model) statusDialog {
	t.Helper()
	d, ok := m.modal.(statusDialog)
	if !ok {
		t.Fatalf("modal = %T, want statusDialog", m.modal)
	}
	return d
}

func TestViewFromName(t *testing.T) {
	cases := map[string]View{
		"books":     ViewBooks,
		" Logs ":    ViewLogs,
		"analytics": ViewAnalytics,
		"":          ViewAnalytics,
		"bogus":     ViewAnalytics,
	}
	for in, want := range cases {
		if got := viewFromName(in); got != want {
			t.Fatalf("viewFromName(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSwitchViewSavesPrefs(t *testing.T) {
	m := newTestModel(t, &fakeStatusSource{})

	m, _ = press(t, m, runes("b"))
	if m.currentView != ViewBooks {
		t.Fatalf("currentView = %v, want books", m.currentView)
	}

	p, err := prefs.Load(m.prefsPath)
	if err != nil {
		t.Fatalf("load prefs: %v", err)
	}
	if p.StartView != "books" || p.Theme != m.theme.Name {
		t.Fatalf("prefs = %+v", p)
	}
}

func TestTabCyclesViews(t *testing.T) {
	m := newTestModel(t, &fakeStatusSource{})

	want := []View{ViewBooks, ViewLogs, ViewAnalytics}
	for _, v := range want {
		m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
		if m.currentView != v {
			t.Fatalf("currentView = %v, want %v", m.currentView, v)
		}
	}
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.currentView != ViewLogs {
		t.Fatalf("shift+tab currentView = %v, want logs", m.currentView)
	}
}

func TestStaleRefreshResultDropped(t *testing.T) {
	m := newTestModel(t, &fakeStatusSource{})
	m.refresh = func(ctx context.Context) error { return ctx.Err() }

	first := m.startRefresh()
	second := m.startRefresh()

	m, _ = press(t, m, first())
	if !m.refreshing {
		t.Fatalf("stale refresh result should not finish the refresh")
	}
	if m.notice != "" {
		t.Fatalf("stale refresh set notice %q", m.notice)
	}

	m, _ = press(t, m, second())
	if m.refreshing {
		t.Fatalf("latest refresh result should finish the refresh")
	}
}

func TestRefreshFailureSetsNotice(t *testing.T) {
	m := newTestModel(t, &fakeStatusSource{})
	m.refresh = func(context.Context) error { return errors.New("api down") }

	cmd := m.startRefresh()
	m, _ = press(t, m, cmd())
	if !strings.Contains(m.notice, "api down") {
		t.Fatalf("notice = %q", m.notice)
	}
}

func TestRefreshTakenOverIsNotAFailure(t *testing.T) {
	m := newTestModel(t, &fakeStatusSource{})
	m.refresh = func(context.Context) error { return context.Canceled }

	cmd := m.startRefresh()
	m, _ = press(t, m, cmd())
	if m.refreshing {
		t.Fatalf("refresh should be finished")
	}
	if m.notice != "" {
		t.Fatalf("notice = %q, want empty", m.notice)
	}
}

func TestStatusDialogLoadsCurrentAndHistory(t *testing.T) {
	src := &fakeStatusSource{
		statuses: testStatuses,
		current:  map[int64]*catalog.StatusDefinition{10: &testStatuses[1]},
		history: map[int64][]catalog.StatusEvent{10: {
			{AnalyticsID: 1, BookID: 10, StatusID: 1, CreatedDate: "2024-01-01T10:00:00"},
			{AnalyticsID: 2, BookID: 10, StatusID: 2, CreatedDate: "2024-02-01T10:00:00"},
			{AnalyticsID: 3, BookID: 10, StatusID: 42, CreatedDate: "2023-12-01T10:00:00"},
		}},
	}
	m := newTestModel(t, src)
	m, _ = press(t, m, runes("b"))
	m = openDialog(t, m)

	d := dialogOf(t, m)
	if d.loading {
		t.Fatalf("dialog still loading")
	}
	if !d.hasCurrent || d.current.Name != "Читаю" {
		t.Fatalf("current = %+v (has %v)", d.current, d.hasCurrent)
	}
	if d.selected != 1 {
		t.Fatalf("selected = %d, want 1", d.selected)
	}
	if len(d.history) != 3 || d.history[0].AnalyticsID != 2 {
		t.Fatalf("history not newest first: %+v", d.history)
	}

	view := d.View(m.theme, m.width, m.height)
	if !strings.Contains(view, "Unknown status") {
		t.Fatalf("unknown status id not labelled in view")
	}
}

func TestStatusDialogStaleLoadDropped(t *testing.T) {
	src := &fakeStatusSource{statuses: testStatuses}
	m := newTestModel(t, src)
	m, _ = press(t, m, runes("b"))

	m, firstLoad := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	stale := firstLoad()

	// A second load for the same dialog supersedes the first.
	second := dialogOf(t, m).load()

	m, _ = press(t, m, stale)
	if !dialogOf(t, m).loading {
		t.Fatalf("stale load should have been dropped")
	}

	m, _ = press(t, m, second())
	if dialogOf(t, m).loading {
		t.Fatalf("latest load should be applied")
	}
}

func TestStatusDialogSubmit(t *testing.T) {
	src := &fakeStatusSource{statuses: testStatuses}
	m := newTestModel(t, src)
	m, _ = press(t, m, runes("b"))
	m = openDialog(t, m)

	// Pick the first status, then fill start date and pages.
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(t, m, "2024-03-05")
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(t, m, "120")

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil || !dialogOf(t, m).saving {
		t.Fatalf("expected submit to start")
	}
	m, _ = press(t, m, cmd())

	if len(src.submitted) != 1 {
		t.Fatalf("submitted = %d, want 1", len(src.submitted))
	}
	got := src.submitted[0]
	if got.StatusID != 1 || got.StartDate != "2024-03-05" || got.EndDate != "" {
		t.Fatalf("submitted update = %+v", got)
	}
	if got.PagesRead == nil || *got.PagesRead != 120 {
		t.Fatalf("pages = %v, want 120", got.PagesRead)
	}

	d := dialogOf(t, m)
	if d.saving || d.notice != "Status saved." || d.errMsg != "" {
		t.Fatalf("dialog after save: saving=%v notice=%q err=%q", d.saving, d.notice, d.errMsg)
	}
	if d.inputs[fieldStart].Value() != "" {
		t.Fatalf("inputs not cleared after save")
	}
}

func TestStatusDialogRequiresStatus(t *testing.T) {
	src := &fakeStatusSource{statuses: testStatuses}
	m := newTestModel(t, src)
	m, _ = press(t, m, runes("b"))
	m = openDialog(t, m)

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatalf("submit without status should not run")
	}
	if dialogOf(t, m).errMsg == "" {
		t.Fatalf("expected an error message")
	}
	if len(src.submitted) != 0 {
		t.Fatalf("nothing should be submitted")
	}
}

func TestStatusDialogShowsValidationMessages(t *testing.T) {
	src := &fakeStatusSource{
		statuses: testStatuses,
		submitErr: &catalog.APIError{
			StatusCode: http.StatusUnprocessableEntity,
			Messages:   []string{"end date before start date"},
		},
	}
	m := newTestModel(t, src)
	m, _ = press(t, m, runes("b"))
	m = openDialog(t, m)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = press(t, m, cmd())

	d := dialogOf(t, m)
	if d.errMsg != "end date before start date" {
		t.Fatalf("errMsg = %q", d.errMsg)
	}
	if d.notice != "" {
		t.Fatalf("notice = %q, want empty", d.notice)
	}
}

func TestEscapeClosesDialog(t *testing.T) {
	m := newTestModel(t, &fakeStatusSource{statuses: testStatuses})
	m, _ = press(t, m, runes("b"))
	m = openDialog(t, m)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.modal != nil {
		t.Fatalf("esc should close the dialog")
	}
	if m.currentView != ViewBooks {
		t.Fatalf("closing the dialog should stay on books, got %v", m.currentView)
	}
}

func TestSubmitAfterCloseTriggersRefresh(t *testing.T) {
	src := &fakeStatusSource{statuses: testStatuses}
	m := newTestModel(t, src)
	refreshed := make(chan struct{}, 1)
	m.refresh = func(context.Context) error {
		refreshed <- struct{}{}
		return nil
	}
	m, _ = press(t, m, runes("b"))
	m = openDialog(t, m)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m, submit := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	m, cmd := press(t, m, submit())
	if cmd == nil || !m.refreshing {
		t.Fatalf("expected a refresh after a save with the dialog closed")
	}
	_ = cmd()
	select {
	case <-refreshed:
	default:
		t.Fatalf("refresh func not called")
	}
}

func TestRenderViews(t *testing.T) {
	m := newTestModel(t, &fakeStatusSource{})
	m.snapshot.Report = reading.Report{
		Stats:     reading.Stats{Planned: 1, Reading: 1, Completed: 2, TotalPages: 640, AvgReadingTime: 1},
		Breakdown: []reading.StatusCount{{StatusID: 3, Name: "Прочитано", Count: 2}},
		Source:    reading.SourceEvents,
	}

	analytics := m.View()
	if !strings.Contains(analytics, "50%") || !strings.Contains(analytics, "Прочитано") {
		t.Fatalf("analytics view missing completion or breakdown:\n%s", analytics)
	}

	m, _ = press(t, m, runes("b"))
	if books := m.View(); !strings.Contains(books, "Мастер и Маргарита") {
		t.Fatalf("books view missing title:\n%s", books)
	}
}
