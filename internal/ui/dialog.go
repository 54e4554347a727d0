package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/shelf/internal/catalog"
	"github.com/five82/shelf/internal/reading"
	"github.com/five82/shelf/internal/state"
)

// Dialog focus targets, in tab order.
const (
	fieldStatus = iota
	fieldStart
	fieldEnd
	fieldPages
	fieldCount
)

// Modal is an overlay that takes every key while open. Update reports
// closed when the overlay should be dismissed.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (modal Modal, cmd tea.Cmd, closed bool)
	View(theme Theme, width, height int) string
}

type dialogLoadedMsg struct {
	ticket state.Ticket
	bookID int64
	book   reading.BookStatus
}

type statusSubmittedMsg struct {
	ticket state.Ticket
	bookID int64
	event  catalog.StatusEvent
	err    error
}

// statusDialog shows one book's reading status and history and records
// status changes.
type statusDialog struct {
	flight   *state.Flight
	resolver *reading.Resolver
	buckets  reading.Buckets
	book     catalog.Book

	loading    bool
	statuses   []catalog.StatusDefinition
	current    catalog.StatusDefinition
	hasCurrent bool
	history    []catalog.StatusEvent

	selected int // index into statuses, -1 when nothing is picked
	focus    int
	inputs   [fieldCount]textinput.Model

	saving bool
	errMsg string
	notice string
}

func newStatusDialog(flight *state.Flight, resolver *reading.Resolver, buckets reading.Buckets, book catalog.Book) statusDialog {
	d := statusDialog{
		flight:   flight,
		resolver: resolver,
		buckets:  buckets,
		book:     book,
		loading:  true,
		selected: -1,
	}
	d.inputs[fieldStart] = newDialogInput("YYYY-MM-DD", 10)
	d.inputs[fieldEnd] = newDialogInput("YYYY-MM-DD", 10)
	d.inputs[fieldPages] = newDialogInput("pages", 6)
	return d
}

func newDialogInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Prompt = ""
	ti.Width = 12
	return ti
}

// load fetches the catalog, current status and history. A newer load for
// any book supersedes this one.
func (d statusDialog) load() tea.Cmd {
	ctx, ticket := d.flight.Begin(flightDialog)
	resolver := d.resolver
	bookID := d.book.BookID
	return func() tea.Msg {
		return dialogLoadedMsg{ticket: ticket, bookID: bookID, book: resolver.Book(ctx, bookID)}
	}
}

// Update implements Modal.
func (d statusDialog) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	switch msg := msg.(type) {
	case dialogLoadedMsg:
		if msg.bookID != d.book.BookID {
			return d, nil, false
		}
		d.loading = false
		d.statuses = msg.book.Statuses
		d.current = msg.book.Current
		d.hasCurrent = msg.book.HasCurrent
		d.history = msg.book.History
		d.selected = d.indexOf(d.current.StatusID)
		if !d.hasCurrent {
			d.selected = -1
		}
		return d, nil, false

	case statusSubmittedMsg:
		if msg.bookID != d.book.BookID {
			return d, nil, false
		}
		d.saving = false
		if msg.err != nil {
			d.notice = ""
			var verr *reading.ValidationError
			if errors.As(msg.err, &verr) {
				d.errMsg = verr.Error()
			} else {
				d.errMsg = "Could not save: " + msg.err.Error()
			}
			return d, nil, false
		}
		d.errMsg = ""
		d.notice = "Status saved."
		for i := fieldStart; i < fieldCount; i++ {
			d.inputs[i].SetValue("")
		}
		return d, tea.Batch(d.load(), requestRefresh), false

	case tea.KeyMsg:
		return d.handleKey(msg, keys)
	}

	if d.focus != fieldStatus {
		var cmd tea.Cmd
		d.inputs[d.focus], cmd = d.inputs[d.focus].Update(msg)
		return d, cmd, false
	}
	return d, nil, false
}

func (d statusDialog) handleKey(msg tea.KeyMsg, keys keyMap) (Modal, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, keys.Escape):
		return d, nil, true

	case key.Matches(msg, keys.Submit):
		return d.submit()

	case key.Matches(msg, keys.NextField):
		return d, d.setFocus((d.focus + 1) % fieldCount), false

	case key.Matches(msg, keys.PrevField):
		return d, d.setFocus((d.focus + fieldCount - 1) % fieldCount), false
	}

	if d.focus == fieldStatus {
		switch {
		case key.Matches(msg, keys.PrevStatus):
			d.cycleStatus(-1)
		case key.Matches(msg, keys.NextStatus):
			d.cycleStatus(1)
		}
		return d, nil, false
	}

	var cmd tea.Cmd
	d.inputs[d.focus], cmd = d.inputs[d.focus].Update(msg)
	return d, cmd, false
}

func (d *statusDialog) setFocus(field int) tea.Cmd {
	for i := fieldStart; i < fieldCount; i++ {
		d.inputs[i].Blur()
	}
	d.focus = field
	if field == fieldStatus {
		return nil
	}
	return d.inputs[field].Focus()
}

func (d *statusDialog) cycleStatus(delta int) {
	n := len(d.statuses)
	if n == 0 {
		return
	}
	if d.selected < 0 {
		if delta > 0 {
			d.selected = 0
		} else {
			d.selected = n - 1
		}
		return
	}
	d.selected = (d.selected + delta + n) % n
}

func (d statusDialog) indexOf(statusID int64) int {
	for i, s := range d.statuses {
		if s.StatusID == statusID {
			return i
		}
	}
	return -1
}

// change collects the form into a StatusChange.
func (d statusDialog) change() reading.StatusChange {
	change := reading.StatusChange{
		StartDate: d.inputs[fieldStart].Value(),
		EndDate:   d.inputs[fieldEnd].Value(),
		PagesRead: d.inputs[fieldPages].Value(),
	}
	if d.selected >= 0 && d.selected < len(d.statuses) {
		change.StatusID = d.statuses[d.selected].StatusID
	}
	return change
}

func (d statusDialog) submit() (Modal, tea.Cmd, bool) {
	if d.loading || d.saving {
		return d, nil, false
	}
	change := d.change()
	if change.StatusID <= 0 {
		d.errMsg = "Pick a status first."
		return d, nil, false
	}

	d.saving = true
	d.errMsg = ""
	d.notice = ""
	ctx, ticket := d.flight.Begin(flightSubmit)
	resolver := d.resolver
	bookID := d.book.BookID
	return d, func() tea.Msg {
		event, err := resolver.SubmitStatusChange(ctx, bookID, change)
		return statusSubmittedMsg{ticket: ticket, bookID: bookID, event: event, err: err}
	}, false
}

// statusName resolves a status id against the loaded catalog.
func (d statusDialog) statusName(id int64) string {
	if i := d.indexOf(id); i >= 0 {
		return d.statuses[i].Name
	}
	return "Unknown status"
}

// View implements Modal.
func (d statusDialog) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	boxWidth := min(max(width-8, 40), 76)

	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render(truncate(d.book.Title, boxWidth-6)))
	if authors := d.book.AuthorNames(); len(authors) > 0 {
		b.WriteString("\n")
		b.WriteString(styles.MutedText.Render(truncate(strings.Join(authors, ", "), boxWidth-6)))
	}
	b.WriteString("\n\n")

	if d.loading {
		b.WriteString(styles.MutedText.Render("Loading status..."))
		return d.frame(theme, b.String(), boxWidth, width, height)
	}

	b.WriteString(styles.MutedText.Render("Current  "))
	if d.hasCurrent {
		b.WriteString(styles.BucketStyle(d.buckets.Kind(d.current.Name)).Render(d.current.Name))
	} else {
		b.WriteString(styles.FaintText.Render("No status yet"))
	}
	b.WriteString("\n\n")

	b.WriteString(d.renderForm(styles))
	b.WriteString("\n")

	switch {
	case d.saving:
		b.WriteString(styles.InfoText.Render("Saving..."))
	case d.errMsg != "":
		b.WriteString(styles.DangerText.Render(d.errMsg))
	case d.notice != "":
		b.WriteString(styles.SuccessText.Render(d.notice))
	}
	b.WriteString("\n\n")

	b.WriteString(styles.Text.Bold(true).Render("History"))
	b.WriteString("\n")
	b.WriteString(d.renderHistory(styles))
	b.WriteString("\n\n")
	b.WriteString(styles.FaintText.Render("tab: field  ←/→: status  enter: save  esc: close"))

	return d.frame(theme, b.String(), boxWidth, width, height)
}

func (d statusDialog) renderForm(styles Styles) string {
	label := func(field int, text string) string {
		if d.focus == field {
			return styles.AccentText.Render("› " + padRight(text, 10))
		}
		return styles.MutedText.Render("  " + padRight(text, 10))
	}

	picked := styles.FaintText.Render("‹ none ›")
	if d.selected >= 0 && d.selected < len(d.statuses) {
		name := d.statuses[d.selected].Name
		picked = "‹ " + styles.BucketStyle(d.buckets.Kind(name)).Render(name) + " ›"
	} else if len(d.statuses) == 0 {
		picked = styles.DangerText.Render("statuses unavailable")
	}

	lines := []string{
		label(fieldStatus, "Status") + picked,
		label(fieldStart, "Started") + d.inputs[fieldStart].View(),
		label(fieldEnd, "Finished") + d.inputs[fieldEnd].View(),
		label(fieldPages, "Pages") + d.inputs[fieldPages].View(),
	}
	return strings.Join(lines, "\n")
}

func (d statusDialog) renderHistory(styles Styles) string {
	if len(d.history) == 0 {
		return styles.MutedText.Render("No status changes recorded.")
	}
	rows := d.history
	if len(rows) > historyLimit {
		rows = rows[:historyLimit]
	}
	lines := make([]string, 0, len(rows)+1)
	for _, ev := range rows {
		created := "—"
		if t, ok := ev.ParsedCreatedDate(); ok {
			created = t.Local().Format("2006-01-02 15:04")
		}
		span := ""
		if start, end := ev.ParsedStartDate(), ev.ParsedEndDate(); !start.IsZero() || !end.IsZero() {
			span = fmt.Sprintf("%s → %s", dateOrDash(start), dateOrDash(end))
		}
		pages := ""
		if ev.PagesRead != nil {
			pages = formatPages(ev.PagesRead) + " p."
		}
		lines = append(lines,
			styles.FaintText.Render(padRight(created, 17))+
				styles.Text.Render(padRight(truncate(d.statusName(ev.StatusID), 18), 19))+
				styles.MutedText.Render(strings.TrimSpace(span+"  "+pages)))
	}
	if extra := len(d.history) - len(rows); extra > 0 {
		lines = append(lines, styles.FaintText.Render(fmt.Sprintf("… %d older", extra)))
	}
	return strings.Join(lines, "\n")
}

func (d statusDialog) frame(theme Theme, content string, boxWidth, width, height int) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.BorderFocus)).
		Padding(1, 2).
		Width(boxWidth).
		Render(content)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
