package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/five82/shelf/internal/catalog"
	"github.com/five82/shelf/internal/reading"
)

func newSetStatusCmd(opts *globalOptions) *cobra.Command {
	var (
		status string
		start  string
		end    string
		pages  string
	)

	cmd := &cobra.Command{
		Use:   "set-status <book-id>",
		Short: "Record a new reading status for a book",
		Long: `Record a new reading status for a book.

--status takes a status id or a status name from the catalog. Dates use
YYYY-MM-DD; values that do not parse are left out of the request.`,
		Example: `  shelf set-status 12 --status 2 --start 2024-04-01
  shelf set-status 12 --status Прочитано --end 2024-05-01 --pages 320`,
		Args: cobra.ExactArgs(1),
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

			def, err := resolveStatus(svc.Resolver.Statuses(cmd.Context()), status)
			if err != nil {
				return err
			}

			event, err := svc.Resolver.SubmitStatusChange(cmd.Context(), bookID, reading.StatusChange{
				StatusID:  def.StatusID,
				StartDate: start,
				EndDate:   end,
				PagesRead: pages,
			})
			if err != nil {
				var verr *reading.ValidationError
				if errors.As(err, &verr) {
					return fmt.Errorf("status change rejected: %w", verr)
				}
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Recorded %q for book %d (event %d)\n",
				def.Name, bookID, event.AnalyticsID)
			return err
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "", "status id or name (required)")
	cmd.Flags().StringVar(&start, "start", "", "date reading started")
	cmd.Flags().StringVar(&end, "end", "", "date reading finished")
	cmd.Flags().StringVar(&pages, "pages", "", "pages read")
	_ = cmd.MarkFlagRequired("status")
	return cmd
}

// resolveStatus matches value against the catalog by id, then by name
// (trimmed, case-insensitive). An unavailable catalog still accepts ids.
func resolveStatus(statuses []catalog.StatusDefinition, value string) (catalog.StatusDefinition, error) {
	value = strings.TrimSpace(value)
	if id, err := strconv.ParseInt(value, 10, 64); err == nil {
		for _, s := range statuses {
			if s.StatusID == id {
				return s, nil
			}
		}
		if len(statuses) == 0 && id > 0 {
			return catalog.StatusDefinition{StatusID: id, Name: value}, nil
		}
		return catalog.StatusDefinition{}, fmt.Errorf("unknown status id %d", id)
	}
	for _, s := range statuses {
		if strings.EqualFold(strings.TrimSpace(s.Name), value) {
			return s, nil
		}
	}
	if len(statuses) == 0 {
		return catalog.StatusDefinition{}, errors.New("status catalog unavailable; pass a status id")
	}
	return catalog.StatusDefinition{}, fmt.Errorf("unknown status %q", value)
}
