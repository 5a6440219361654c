package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/schemalign/schemalign/internal/logger"
	"github.com/schemalign/schemalign/internal/version"
)

var (
	debug   bool
	noColor bool
)

var RootCmd = &cobra.Command{
	Use:   "schemalign <config>",
	Short: "Align database schemas with a template database",
	Long: fmt.Sprintf(`schemalign compares the table structures of MySQL, PostgreSQL, and
SQLite databases against a designated template database and generates
the DDL statements that bring each target into structural alignment.
Destructive operations are rendered as commentary for manual review,
never as live SQL.

Version: %s@%s %s %s

Commands:
  inspect  Dump a database's canonical schema model
  version  Show version information

Use "schemalign [command] --help" for more information about a command.`,
		version.Version(), version.GetGitCommit(), version.Platform(), version.GetBuildDate()),
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogger()
	},
	RunE: runCompare,
}

func init() {
	RootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	RootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	RootCmd.AddCommand(InspectCmd)
	RootCmd.AddCommand(VersionCmd)
}

func setupLogger() {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger.SetGlobal(slog.New(handler), debug)
}

// Execute runs the root command. The exit code is nonzero only when the
// command itself fails; targets that failed to compare are reported, not
// fatal.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
