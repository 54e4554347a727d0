package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/five82/shelf/internal/export"
)

func newExportCmd(opts *globalOptions) *cobra.Command {
	var (
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export your status events and stats to a file",
		Long: `Export every status event of your collection, with status names and
book titles resolved, together with the analytics report.

The format defaults to the --out file extension. Parquet files hold only
the event rows.`,
		Example: `  shelf export --out reading.yaml
  shelf export --out events.parquet
  shelf export --format json --out -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := exportFormat(format, out)
			if err != nil {
				return err
			}

			svc, cleanup, err := opts.setup(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			doc, err := svc.ExportDocument(cmd.Context())
			if err != nil {
				return err
			}

			if out == "-" {
				return export.Write(cmd.OutOrStdout(), f, doc)
			}
			if err := export.WriteFile(out, f, doc); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d events to %s\n", len(doc.Events), out)
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "yaml, json or parquet (default from --out extension)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, or - for stdout (required)")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func exportFormat(format, out string) (export.Format, error) {
	if format != "" {
		return export.ParseFormat(format)
	}
	if f, ok := export.FormatFromPath(out); ok {
		return f, nil
	}
	return export.FormatYAML, nil
}
