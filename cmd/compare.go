package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/schemalign/schemalign/internal/color"
	"github.com/schemalign/schemalign/internal/config"
	"github.com/schemalign/schemalign/internal/logger"
	"github.com/schemalign/schemalign/internal/report"
	"github.com/schemalign/schemalign/internal/run"
)

var outputDir string

func init() {
	RootCmd.Flags().StringVarP(&outputDir, "output", "o", "", `Directory for generated files (default "output")`)
}

// runCompare executes a full comparison run. Individual target failures land
// in the reports and the summary; only configuration and output problems make
// the command itself fail.
func runCompare(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(args[0])
	if err != nil {
		return err
	}

	reports := run.New(cfg, logger.Get()).Run(cmd.Context())

	writer := report.NewWriter(resolveOutputDir(cfg), time.Now())
	paths, err := writer.WriteAll(cfg.TemplateDatabase.Name, reports)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	report.PrintSummary(out, color.New(!noColor), reports)
	for _, p := range paths {
		fmt.Fprintf(out, "wrote %s\n", p)
	}
	return nil
}

// resolveOutputDir picks the output directory: the -o flag wins, then the
// config file, then the fixed default.
func resolveOutputDir(cfg *config.Config) string {
	if outputDir != "" {
		return outputDir
	}
	if cfg.OutputDir != "" {
		return cfg.OutputDir
	}
	return "output"
}
