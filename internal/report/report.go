// Package report renders and persists comparison outcomes: one alignment SQL
// file per target database, a machine-readable JSON document for the whole
// run, and a colored terminal summary.
package report

import (
	"github.com/schemalign/schemalign/internal/diff"
	"github.com/schemalign/schemalign/internal/ir"
	"github.com/schemalign/schemalign/internal/synth"
)

// Summary counts table outcomes for one target.
type Summary struct {
	Created   int `json:"created"`
	Modified  int `json:"modified"`
	Renamed   int `json:"renamed"`
	Identical int `json:"identical"`
}

// Summarize tallies table statuses into summary counts.
func Summarize(diffs []*diff.TableDiff) Summary {
	var s Summary
	for _, td := range diffs {
		switch td.Status {
		case diff.StatusMissingInTarget:
			s.Created++
		case diff.StatusModified:
			s.Modified++
		case diff.StatusExtraInTarget:
			s.Renamed++
		case diff.StatusIdentical:
			s.Identical++
		}
	}
	return s
}

// TargetReport aggregates everything produced for one target database. A
// target that failed before diffing carries only State and Error; it is
// excluded from statistics and gets no SQL file.
type TargetReport struct {
	Target        string                  `json:"target"`
	Dialect       ir.Dialect              `json:"dialect,omitempty"`
	State         string                  `json:"state"`
	Error         string                  `json:"error,omitempty"`
	SkippedTables []string                `json:"skipped_tables,omitempty"`
	Tables        []*diff.TableDiff       `json:"tables,omitempty"`
	Statements    []synth.TableStatements `json:"statements,omitempty"`
	Summary       *Summary                `json:"summary,omitempty"`
}

// Failed reports whether the target never produced a comparison.
func (r *TargetReport) Failed() bool { return r.Error != "" }

// Document is the top-level payload of the JSON result file.
type Document struct {
	TemplateDatabase string          `json:"template_database"`
	GeneratedAt      string          `json:"generated_at"`
	Targets          []*TargetReport `json:"targets"`
}
