package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schemalign/schemalign/internal/diff"
	"github.com/schemalign/schemalign/internal/synth"
)

// Writer persists run results under one directory. All files of a run share
// one timestamp so they sort and group together.
type Writer struct {
	dir         string
	generatedAt time.Time
}

// NewWriter creates a writer rooted at dir, stamping files with generatedAt.
func NewWriter(dir string, generatedAt time.Time) *Writer {
	return &Writer{dir: dir, generatedAt: generatedAt}
}

func (w *Writer) stamp() string { return w.generatedAt.Format("20060102_150405") }

// SQLPath returns the alignment statement file path for one target.
func (w *Writer) SQLPath(target string) string {
	return filepath.Join(w.dir, fmt.Sprintf("alter_statements_%s_%s.sql", target, w.stamp()))
}

// JSONPath returns the machine-readable result file path.
func (w *Writer) JSONPath() string {
	return filepath.Join(w.dir, fmt.Sprintf("schema_comparison_%s.json", w.stamp()))
}

// WriteAll persists one SQL file per completed target plus the JSON document
// covering every target, failed ones included. It returns the written paths.
func (w *Writer) WriteAll(templateName string, reports []*TargetReport) ([]string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", w.dir, err)
	}

	var paths []string
	for _, rep := range reports {
		if rep.Failed() {
			continue
		}
		path := w.SQLPath(rep.Target)
		if err := os.WriteFile(path, []byte(renderSQL(templateName, rep, w.generatedAt)), 0o644); err != nil {
			return paths, fmt.Errorf("failed to write %s: %w", path, err)
		}
		paths = append(paths, path)
	}

	doc := &Document{
		TemplateDatabase: templateName,
		GeneratedAt:      w.generatedAt.Format("2006-01-02 15:04:05"),
		Targets:          reports,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return paths, fmt.Errorf("failed to encode results: %w", err)
	}
	path := w.JSONPath()
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return paths, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return append(paths, path), nil
}

// renderSQL lays out one target's alignment file: a header block, then three
// fixed sections in apply order. Section banners stay even when a section is
// empty, so readers always find the same landmarks. Identical tables do not
// appear; the JSON document and the summary carry them.
func renderSQL(templateName string, rep *TargetReport, generatedAt time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "-- schema alignment statements for target %s\n", rep.Target)
	fmt.Fprintf(&b, "-- generated at: %s\n", generatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "-- template database: %s\n", templateName)
	for _, t := range rep.SkippedTables {
		fmt.Fprintf(&b, "-- table %s not found in template or target, skipped\n", t)
	}
	b.WriteString("\n")

	b.WriteString("-- 1. create missing tables\n\n")
	for _, ts := range rep.Statements {
		if ts.Status != diff.StatusMissingInTarget || len(ts.Statements) == 0 {
			continue
		}
		writeStatements(&b, ts.Statements)
		b.WriteString("\n")
	}

	b.WriteString("-- 2. modify existing tables\n\n")
	for _, ts := range rep.Statements {
		if ts.Status != diff.StatusModified || len(ts.Statements) == 0 {
			continue
		}
		fmt.Fprintf(&b, "-- Table %s modifications\n", ts.Table)
		writeStatements(&b, ts.Statements)
		b.WriteString("\n")
	}

	b.WriteString("-- 3. rename extra tables\n\n")
	for _, ts := range rep.Statements {
		if ts.Status != diff.StatusExtraInTarget || len(ts.Statements) == 0 {
			continue
		}
		writeStatements(&b, ts.Statements)
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func writeStatements(b *strings.Builder, stmts []synth.Statement) {
	for _, s := range stmts {
		b.WriteString(s.SQL)
		b.WriteString("\n")
	}
}
