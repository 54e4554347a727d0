package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/five82/shelf/internal/export"
	"github.com/five82/shelf/internal/reading"
)

func newStatsCmd(opts *globalOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print reading stats for your collection",
		Example: `  shelf stats
  shelf stats --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := opts.setup(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			_, report, err := svc.LoadReport(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if strings.EqualFold(strings.TrimSpace(format), "text") {
				return writeStatsText(out, report)
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			if f == export.FormatParquet {
				return fmt.Errorf("stats cannot be written as parquet; use export")
			}
			return export.Write(out, f, export.Document{
				GeneratedAt: time.Now().UTC(),
				UserID:      svc.Session.UserID,
				Report:      report,
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, yaml or json")
	return cmd
}

func writeStatsText(w io.Writer, report reading.Report) error {
	stats := report.Stats
	summary := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("Metric", "Value").
		Row("Planned", strconv.Itoa(stats.Planned)).
		Row("Reading", strconv.Itoa(stats.Reading)).
		Row("Completed", strconv.Itoa(stats.Completed)).
		Row("Pages read", strconv.Itoa(stats.TotalPages)).
		Row("Avg. reading", strconv.Itoa(stats.AvgReadingTime)).
		Row("Completion", fmt.Sprintf("%d%%", report.CompletionPercent()))

	breakdown := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("Status", "Books")
	for _, row := range report.Breakdown {
		breakdown.Row(row.Name, strconv.Itoa(row.Count))
	}

	_, err := fmt.Fprintf(w, "%s\n%s\n%d books considered (source: %s)\n",
		summary.Render(), breakdown.Render(), report.Considered, report.Source)
	return err
}
