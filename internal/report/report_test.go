package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/schemalign/schemalign/internal/color"
	"github.com/schemalign/schemalign/internal/diff"
	"github.com/schemalign/schemalign/internal/ir"
	"github.com/schemalign/schemalign/internal/synth"
)

var testTime = time.Date(2026, 8, 23, 14, 5, 1, 0, time.UTC)

func sampleReport() *TargetReport {
	return &TargetReport{
		Target:        "prod_eu",
		Dialect:       ir.DialectMySQL,
		State:         "DONE",
		SkippedTables: []string{"audit_log"},
		Tables: []*diff.TableDiff{
			{Name: "orders", Status: diff.StatusMissingInTarget},
			{Name: "users", Status: diff.StatusModified},
			{Name: "sessions", Status: diff.StatusIdentical},
			{Name: "legacy", Status: diff.StatusExtraInTarget},
		},
		Statements: []synth.TableStatements{
			{Table: "orders", Status: diff.StatusMissingInTarget, Statements: []synth.Statement{
				{SQL: "CREATE TABLE `orders` (\n  `id` INT NOT NULL\n) ENGINE=InnoDB;", Executable: true},
			}},
			{Table: "users", Status: diff.StatusModified, Statements: []synth.Statement{
				{SQL: "ALTER TABLE `users` ADD COLUMN `name` VARCHAR(50) AFTER `id`;", Executable: true},
				{SQL: "-- ALTER TABLE `users` DROP COLUMN `legacy_flag`; -- drop with caution", Executable: false},
			}},
			{Table: "sessions", Status: diff.StatusIdentical},
			{Table: "legacy", Status: diff.StatusExtraInTarget, Statements: []synth.Statement{
				{SQL: "RENAME TABLE `legacy` TO `legacy_del`;", Executable: true},
			}},
		},
		Summary: &Summary{Created: 1, Modified: 1, Renamed: 1, Identical: 1},
	}
}

func TestRenderSQLLayout(t *testing.T) {
	got := renderSQL("app_template", sampleReport(), testTime)
	want := `-- schema alignment statements for target prod_eu
-- generated at: 2026-08-23 14:05:01
-- template database: app_template
-- table audit_log not found in template or target, skipped

-- 1. create missing tables

CREATE TABLE ` + "`orders`" + ` (
  ` + "`id`" + ` INT NOT NULL
) ENGINE=InnoDB;

-- 2. modify existing tables

-- Table users modifications
ALTER TABLE ` + "`users`" + ` ADD COLUMN ` + "`name`" + ` VARCHAR(50) AFTER ` + "`id`" + `;
-- ALTER TABLE ` + "`users`" + ` DROP COLUMN ` + "`legacy_flag`" + `; -- drop with caution

-- 3. rename extra tables

RENAME TABLE ` + "`legacy`" + ` TO ` + "`legacy_del`" + `;
`
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("layout mismatch (-want +got):\n%s", d)
	}
}

func TestRenderSQLKeepsEmptyBanners(t *testing.T) {
	rep := &TargetReport{Target: "clean", State: "DONE"}
	got := renderSQL("app_template", rep, testTime)
	want := `-- schema alignment statements for target clean
-- generated at: 2026-08-23 14:05:01
-- template database: app_template

-- 1. create missing tables

-- 2. modify existing tables

-- 3. rename extra tables
`
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("layout mismatch (-want +got):\n%s", d)
	}
}

func TestWriteAll(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, testTime)
	reports := []*TargetReport{
		sampleReport(),
		{Target: "backup", State: "FAILED", Error: "connection refused"},
	}

	paths, err := w.WriteAll("app_template", reports)
	if err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}
	want := []string{
		filepath.Join(dir, "alter_statements_prod_eu_20260823_140501.sql"),
		filepath.Join(dir, "schema_comparison_20260823_140501.json"),
	}
	if d := cmp.Diff(want, paths); d != "" {
		t.Errorf("paths mismatch (-want +got):\n%s", d)
	}

	// Failed targets get no SQL file
	if _, err := os.Stat(filepath.Join(dir, "alter_statements_backup_20260823_140501.sql")); !os.IsNotExist(err) {
		t.Errorf("expected no SQL file for failed target, stat err = %v", err)
	}

	data, err := os.ReadFile(w.JSONPath())
	if err != nil {
		t.Fatalf("reading JSON: %v", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decoding JSON: %v", err)
	}
	if doc.TemplateDatabase != "app_template" {
		t.Errorf("template database = %q", doc.TemplateDatabase)
	}
	if doc.GeneratedAt != "2026-08-23 14:05:01" {
		t.Errorf("generated at = %q", doc.GeneratedAt)
	}
	if len(doc.Targets) != 2 {
		t.Fatalf("expected 2 targets in document, got %d", len(doc.Targets))
	}
	if doc.Targets[1].Error != "connection refused" {
		t.Errorf("failed target error = %q", doc.Targets[1].Error)
	}
	if got := doc.Targets[0].Summary; got == nil || *got != (Summary{Created: 1, Modified: 1, Renamed: 1, Identical: 1}) {
		t.Errorf("summary = %+v", got)
	}
}

func TestWriteAllCreatesOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	w := NewWriter(dir, testTime)

	if _, err := w.WriteAll("app_template", []*TargetReport{sampleReport()}); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}
	if _, err := os.Stat(w.JSONPath()); err != nil {
		t.Errorf("JSON file missing: %v", err)
	}
}

func TestSummarize(t *testing.T) {
	got := Summarize([]*diff.TableDiff{
		{Status: diff.StatusMissingInTarget},
		{Status: diff.StatusMissingInTarget},
		{Status: diff.StatusModified},
		{Status: diff.StatusExtraInTarget},
		{Status: diff.StatusIdentical},
	})
	want := Summary{Created: 2, Modified: 1, Renamed: 1, Identical: 1}
	if got != want {
		t.Errorf("Summarize() = %+v, want %+v", got, want)
	}
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	reports := []*TargetReport{
		sampleReport(),
		{Target: "backup", State: "FAILED", Error: "connection refused"},
	}

	PrintSummary(&buf, color.New(false), reports)

	want := `prod_eu: 1 to create, 1 to modify, 1 to rename, 1 identical
  + orders
  ~ users
  - legacy
  skipped (not found anywhere): audit_log
backup: failed (connection refused)
`
	if d := cmp.Diff(want, buf.String()); d != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", d)
	}
}
