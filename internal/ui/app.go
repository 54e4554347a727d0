package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/shelf/internal/prefs"
	"github.com/five82/shelf/internal/reading"
	"github.com/five82/shelf/internal/session"
	"github.com/five82/shelf/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewAnalytics View = iota
	ViewBooks
	ViewLogs
)

// viewFromName maps a preference value to a View.
func viewFromName(name string) View {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "books":
		return ViewBooks
	case "logs":
		return ViewLogs
	default:
		return ViewAnalytics
	}
}

func (v View) name() string {
	switch v {
	case ViewBooks:
		return "books"
	case ViewLogs:
		return "logs"
	default:
		return "analytics"
	}
}

// Flight keys for loads the UI runs itself.
const (
	flightRefresh = "refresh"
	flightDialog  = "dialog"
	flightSubmit  = "submit"
)

// Options configures the UI.
type Options struct {
	Context  context.Context
	Store    *state.Store
	Resolver *reading.Resolver
	Session  session.Session
	Buckets  reading.Buckets
	// Refresh reloads books and analytics into Store.
	Refresh   func(ctx context.Context) error
	LogPath   string
	PollTick  time.Duration
	ThemeName string
	StartView string
	PrefsPath string
	Logger    *zap.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	store     *state.Store
	resolver  *reading.Resolver
	session   session.Session
	buckets   reading.Buckets
	refresh   func(ctx context.Context) error
	logPath   string
	prefsPath string
	pollTick  time.Duration
	logger    *zap.Logger
	flight    *state.Flight
	keys      keyMap

	// UI state
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool

	// Data state
	snapshot    state.Snapshot
	lastUpdated time.Time
	refreshing  bool
	notice      string

	// Books state
	booksTable table.Model

	// Log state
	logViewport viewport.Model
	logLines    []string
	logFollow   bool

	// Overlays
	showHelp bool
	modal    Modal
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = DefaultUIInterval
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	buckets := opts.Buckets
	if buckets == (reading.Buckets{}) {
		buckets = reading.DefaultBuckets()
	}

	return Model{
		ctx:         ctx,
		store:       opts.Store,
		resolver:    opts.Resolver,
		session:     opts.Session,
		buckets:     buckets,
		refresh:     opts.Refresh,
		logPath:     opts.LogPath,
		prefsPath:   prefsPath,
		pollTick:    pollTick,
		logger:      logger,
		flight:      state.NewFlight(ctx),
		keys:        DefaultKeyMap(),
		theme:       GetTheme(opts.ThemeName),
		currentView: viewFromName(opts.StartView),
		booksTable:  newBooksTable(),
		logFollow:   true,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tickCmd(m.pollTick),
	}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if m.currentView == ViewLogs {
		cmds = append(cmds, readLogsCmd(m.logPath))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.initLogViewport()
		}
		m.ready = true
		m.updateBooksTable()
		m.updateLogViewport()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		m.lastUpdated = time.Now()
		m.updateBooksTable()
		return m, nil

	case refreshRequestMsg:
		return m, m.startRefresh()

	case refreshDoneMsg:
		if !m.flight.Commit(msg.ticket) {
			return m, nil
		}
		m.refreshing = false
		// Canceled means a newer load, possibly the poller's, took over.
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			m.notice = "Refresh failed: " + msg.err.Error()
		} else {
			m.notice = ""
		}
		return m, fetchSnapshotCmd(m.store)

	case logLinesMsg:
		if msg.err != nil {
			m.logger.Debug("log tail failed", zap.Error(msg.err))
			return m, nil
		}
		m.logLines = msg.lines
		m.updateLogViewport()
		return m, nil

	case dialogLoadedMsg:
		if !m.flight.Commit(msg.ticket) {
			return m, nil
		}
		return m.forwardToModal(msg)

	case statusSubmittedMsg:
		if !m.flight.Commit(msg.ticket) {
			return m, nil
		}
		if m.modal == nil {
			// Dialog closed while saving; analytics still need the change.
			if msg.err == nil {
				return m, m.startRefresh()
			}
			m.notice = "Status update failed: " + msg.err.Error()
			return m, nil
		}
		return m.forwardToModal(msg)
	}

	if m.modal != nil {
		return m.forwardToModal(msg)
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}

	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if msg.String() == "ctrl+c" {
		m.flight.Close()
		return m, tea.Quit
	}

	if m.modal != nil {
		return m.forwardToModal(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.flight.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, m.startRefresh()

	case key.Matches(msg, m.keys.Tab):
		return m.switchView((m.currentView + 1) % 3)

	case key.Matches(msg, m.keys.ShiftTab):
		return m.switchView((m.currentView + 2) % 3)

	case key.Matches(msg, m.keys.ViewAnalytics), key.Matches(msg, m.keys.Escape):
		return m.switchView(ViewAnalytics)

	case key.Matches(msg, m.keys.ViewBooks):
		return m.switchView(ViewBooks)

	case key.Matches(msg, m.keys.ViewLogs):
		return m.switchView(ViewLogs)
	}

	switch m.currentView {
	case ViewBooks:
		return m.handleBooksKey(msg)
	case ViewLogs:
		return m.handleLogsKey(msg)
	}
	return m, nil
}

func (m Model) switchView(v View) (tea.Model, tea.Cmd) {
	m.currentView = v
	m.savePrefs()
	if v == ViewLogs {
		return m, readLogsCmd(m.logPath) // Fetch immediately when entering logs
	}
	return m, nil
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	p := prefs.Prefs{Theme: m.theme.Name, StartView: m.currentView.name()}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.logger.Warn("save prefs failed", zap.Error(err))
	}
}

// forwardToModal hands msg to the open dialog and closes it when asked.
func (m Model) forwardToModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.modal == nil {
		return m, nil
	}
	modal, cmd, closed := m.modal.Update(msg, m.keys)
	if closed {
		m.modal = nil
		m.flight.Cancel(flightDialog)
		return m, cmd
	}
	m.modal = modal
	return m, cmd
}

// openStatusDialog opens the status dialog for the selected book.
func (m Model) openStatusDialog() (tea.Model, tea.Cmd) {
	book, ok := m.selectedBook()
	if !ok || m.resolver == nil {
		return m, nil
	}
	dialog := newStatusDialog(m.flight, m.resolver, m.buckets, book)
	m.modal = dialog
	return m, dialog.load()
}

// startRefresh reloads analytics in the background. A refresh already in
// flight is superseded.
func (m *Model) startRefresh() tea.Cmd {
	if m.refresh == nil {
		return nil
	}
	ctx, ticket := m.flight.Begin(flightRefresh)
	m.refreshing = true
	refresh := m.refresh
	return func() tea.Msg {
		return refreshDoneMsg{ticket: ticket, err: refresh(ctx)}
	}
}

// handleTick processes the polling tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}

	if m.currentView == ViewLogs && m.logFollow {
		cmds = append(cmds, readLogsCmd(m.logPath))
	}

	cmds = append(cmds, tickCmd(m.pollTick))

	return m, tea.Batch(cmds...)
}

// renderMain renders the header, command bar and the active view.
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")

	b.WriteString(m.renderContent())

	return b.String()
}

// renderContent renders the main content area based on current view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewAnalytics:
		return m.renderAnalytics()
	case ViewBooks:
		return m.renderBooks()
	case ViewLogs:
		return m.renderLogs()
	default:
		return ""
	}
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type refreshRequestMsg struct{}

type refreshDoneMsg struct {
	ticket state.Ticket
	err    error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func requestRefresh() tea.Msg {
	return refreshRequestMsg{}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	defer m.flight.Close()
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
