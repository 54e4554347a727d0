package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/five82/shelf/internal/app"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	prefsPath  string
	verbose    bool
}

func (g *globalOptions) appOptions() app.Options {
	return app.Options{
		ConfigPath: g.configPath,
		PrefsPath:  g.prefsPath,
		Verbose:    g.verbose,
	}
}

// setup builds the API services for a one-shot command.
func (g *globalOptions) setup(ctx context.Context) (*app.Services, func(), error) {
	return app.Setup(ctx, g.appOptions())
}

// NewRootCmd builds the shelf command tree. Without a subcommand it starts
// the TUI.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "shelf",
		Short: "Track reading statuses of your book collection",
		Long: `Shelf is a terminal client for a book-collection API.

It shows how many of your books are planned, being read and completed, lets
you browse your collection and record status changes per book.`,
		Example: `  # Start the TUI
  shelf

  # Print collection stats as YAML
  shelf stats --format yaml

  # Mark book 12 as completed
  shelf set-status 12 --status Прочитано --end 2024-05-01 --pages 320`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), opts.appOptions())
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default ~/.config/shelf/config.toml)")
	flags.StringVar(&opts.prefsPath, "prefs", "", "UI preferences file (default ~/.config/shelf/prefs.toml)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "also log warnings to stderr")

	cmd.AddCommand(
		newStatsCmd(opts),
		newHistoryCmd(opts),
		newSetStatusCmd(opts),
		newExportCmd(opts),
	)
	return cmd
}

func parseBookID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid book id %q", arg)
	}
	return id, nil
}
