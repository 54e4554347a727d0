package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/five82/shelf/internal/catalog"
	"github.com/five82/shelf/internal/export"
	"github.com/five82/shelf/internal/reading"
)

func newHistoryCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "history <book-id>",
		Short:   "Show a book's current status and status history",
		Example: `  shelf history 12`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := parseBookID(args[0])
			if err != nil {
				return err
			}
			svc, cleanup, err := opts.setup(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			book := svc.Resolver.Book(cmd.Context(), bookID)
			return writeHistory(cmd.OutOrStdout(), bookID, book)
		},
	}
	return cmd
}

func writeHistory(w io.Writer, bookID int64, book reading.BookStatus) error {
	current := "none"
	if book.HasCurrent {
		current = book.Current.Name
	}
	if _, err := fmt.Fprintf(w, "Book %d: current status %s\n", bookID, current); err != nil {
		return err
	}
	if len(book.History) == 0 {
		_, err := fmt.Fprintln(w, "No status changes recorded.")
		return err
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("Recorded", "Status", "Started", "Finished", "Pages")
	for _, ev := range book.History {
		name, ok := book.StatusName(ev.StatusID)
		if !ok {
			name = export.UnknownStatus
		}
		t.Row(ev.CreatedDate, name, dash(ev.StartDate), dash(ev.EndDate), pagesText(ev))
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func pagesText(ev catalog.StatusEvent) string {
	if ev.PagesRead == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *ev.PagesRead)
}
