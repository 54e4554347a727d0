package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/shelf/internal/catalog"
)

func newBooksTable() table.Model {
	t := table.New(
		table.WithColumns(bookColumns(LayoutWideWidth)),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	return t
}

// bookColumns sizes the columns for the terminal width.
func bookColumns(width int) []table.Column {
	inner := max(width-6, 40)
	year := 6
	added := 0
	if width >= LayoutWideWidth {
		added = 12
	}
	authors := inner * 3 / 10
	title := inner - authors - year - added
	cols := []table.Column{
		{Title: "Title", Width: title},
		{Title: "Authors", Width: authors},
		{Title: "Year", Width: year},
	}
	if added > 0 {
		cols = append(cols, table.Column{Title: "Added", Width: added})
	}
	return cols
}

func bookRows(books []catalog.Book, withAdded bool) []table.Row {
	rows := make([]table.Row, 0, len(books))
	for _, book := range books {
		year := ""
		if book.Published > 0 {
			year = strconv.Itoa(book.Published)
		}
		row := table.Row{
			orDash(book.Title),
			orDash(strings.Join(book.AuthorNames(), ", ")),
			orDash(year),
		}
		if withAdded {
			added := ""
			if t := book.ParsedAddedDate(); !t.IsZero() {
				added = t.Format(catalog.DateLayout)
			}
			row = append(row, orDash(added))
		}
		rows = append(rows, row)
	}
	return rows
}

// updateBooksTable syncs the table with the snapshot and window size.
func (m *Model) updateBooksTable() {
	width := m.width
	if width == 0 {
		width = LayoutWideWidth
	}
	cols := bookColumns(width)
	rows := bookRows(m.snapshot.Books, len(cols) == 4)

	// Columns and rows must agree in length before either is rendered.
	m.booksTable.SetRows(nil)
	m.booksTable.SetColumns(cols)
	m.booksTable.SetRows(rows)
	m.booksTable.SetWidth(max(width-2, 0))
	m.booksTable.SetHeight(max(m.height-6, 3))
	if cursor := m.booksTable.Cursor(); cursor >= len(rows) {
		m.booksTable.SetCursor(max(len(rows)-1, 0))
	}

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(m.theme.Border)).
		BorderBottom(true).
		Foreground(lipgloss.Color(m.theme.Accent)).
		Bold(true)
	styles.Cell = styles.Cell.Foreground(lipgloss.Color(m.theme.Text))
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color(m.theme.SelectionText)).
		Background(lipgloss.Color(m.theme.SelectionBg)).
		Bold(false)
	m.booksTable.SetStyles(styles)
}

// selectedBook returns the book under the cursor.
func (m Model) selectedBook() (catalog.Book, bool) {
	books := m.snapshot.Books
	cursor := m.booksTable.Cursor()
	if cursor < 0 || cursor >= len(books) {
		return catalog.Book{}, false
	}
	return books[cursor], true
}

// handleBooksKey processes keyboard input for the books view.
func (m Model) handleBooksKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if len(m.snapshot.Books) == 0 {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.OpenStatus):
		return m.openStatusDialog()
	case key.Matches(msg, m.keys.Up):
		m.booksTable.MoveUp(1)
	case key.Matches(msg, m.keys.Down):
		m.booksTable.MoveDown(1)
	case key.Matches(msg, m.keys.Top):
		m.booksTable.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.booksTable.GotoBottom()
	case key.Matches(msg, m.keys.HalfPageUp):
		m.booksTable.MoveUp(max(m.booksTable.Height()/2, 1))
	case key.Matches(msg, m.keys.HalfPageDown):
		m.booksTable.MoveDown(max(m.booksTable.Height()/2, 1))
	}
	return m, nil
}

// renderBooks renders the books view.
func (m Model) renderBooks() string {
	contentHeight := m.height - 2
	title := "Books"
	if n := len(m.snapshot.Books); n > 0 {
		title = "Books (" + strconv.Itoa(n) + ")"
	}

	var content string
	switch {
	case !m.snapshot.HasReport && m.snapshot.LastError == nil:
		content = m.theme.Styles().MutedText.Render("Loading books...")
	case len(m.snapshot.Books) == 0:
		content = m.theme.Styles().MutedText.Render("No books in your collection yet.")
	default:
		content = m.booksTable.View()
	}
	return m.renderBox(title, content, m.width, contentHeight, true)
}
