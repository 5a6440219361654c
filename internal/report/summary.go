package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/schemalign/schemalign/internal/color"
	"github.com/schemalign/schemalign/internal/diff"
)

// PrintSummary writes the human-readable outcome of a run, one block per
// target in input order. Identical tables are counted in the header but get
// no line of their own.
func PrintSummary(out io.Writer, c *color.Color, reports []*TargetReport) {
	for _, rep := range reports {
		if rep.Failed() {
			fmt.Fprintln(out, c.FormatFailure(rep.Target, rep.Error))
			continue
		}

		s := rep.Summary
		if s == nil {
			tallied := Summarize(rep.Tables)
			s = &tallied
		}
		fmt.Fprintln(out, c.FormatTargetHeader(rep.Target, s.Created, s.Modified, s.Renamed, s.Identical))

		for _, td := range rep.Tables {
			if word := statusWord(td.Status); word != "" {
				fmt.Fprintln(out, c.FormatTableLine(word, td.Name))
			}
		}
		if len(rep.SkippedTables) > 0 {
			fmt.Fprintf(out, "  skipped (not found anywhere): %s\n", strings.Join(rep.SkippedTables, ", "))
		}
	}
}

// statusWord maps a table status to the action word the summary shows.
func statusWord(s diff.Status) string {
	switch s {
	case diff.StatusMissingInTarget:
		return "create"
	case diff.StatusModified:
		return "modify"
	case diff.StatusExtraInTarget:
		return "rename"
	}
	return ""
}
