package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/schemalign/schemalign/internal/version"
)

var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  "Display the version number of schemalign",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "schemalign v%s@%s %s %s\n",
			version.Version(), version.GetGitCommit(), version.Platform(), version.GetBuildDate())
	},
}
