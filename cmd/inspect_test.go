package cmd

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/schemalign/schemalign/internal/ir"
)

func TestInspectCommandFlags(t *testing.T) {
	if InspectCmd.Use != "inspect <config>" {
		t.Errorf("Use = %q", InspectCmd.Use)
	}
	for _, flag := range []string{"database", "table"} {
		if InspectCmd.Flags().Lookup(flag) == nil {
			t.Errorf("flag --%s not defined", flag)
		}
	}
}

func TestInspectDumpsCanonicalModel(t *testing.T) {
	dir := t.TempDir()
	template := createDB(t, filepath.Join(dir, "template.db"),
		`CREATE TABLE users (id INTEGER NOT NULL, name VARCHAR(50))`,
		`CREATE TABLE orders (id INTEGER NOT NULL)`,
	)
	cfgPath := writeRunConfig(t, dir, template, template)

	out, err := execute(t, "inspect", cfgPath)
	if err != nil {
		t.Fatalf("inspect failed: %v\n%s", err, out)
	}

	var schema ir.Schema
	if err := json.Unmarshal([]byte(out), &schema); err != nil {
		t.Fatalf("output is not a schema document: %v\n%s", err, out)
	}
	if schema.Dialect != ir.DialectSQLite {
		t.Errorf("dialect = %s, want sqlite", schema.Dialect)
	}
	if len(schema.TableOrder) != 2 {
		t.Fatalf("tables = %v, want 2", schema.TableOrder)
	}
	users := schema.Tables["users"]
	if users == nil || len(users.Columns) != 2 {
		t.Errorf("users table not introspected: %+v", users)
	}
}

func TestInspectSingleTable(t *testing.T) {
	dir := t.TempDir()
	template := createDB(t, filepath.Join(dir, "template.db"),
		`CREATE TABLE users (id INTEGER NOT NULL)`,
		`CREATE TABLE orders (id INTEGER NOT NULL)`,
	)
	cfgPath := writeRunConfig(t, dir, template, template)

	out, err := execute(t, "inspect", cfgPath, "--table", "users")
	if err != nil {
		t.Fatalf("inspect failed: %v\n%s", err, out)
	}

	var schema ir.Schema
	if err := json.Unmarshal([]byte(out), &schema); err != nil {
		t.Fatalf("output is not a schema document: %v\n%s", err, out)
	}
	if len(schema.TableOrder) != 1 || schema.TableOrder[0] != "users" {
		t.Errorf("tables = %v, want only users", schema.TableOrder)
	}
}

func TestInspectUnknownTarget(t *testing.T) {
	dir := t.TempDir()
	template := createDB(t, filepath.Join(dir, "template.db"), `CREATE TABLE users (id INTEGER NOT NULL)`)
	cfgPath := writeRunConfig(t, dir, template, template)

	_, err := execute(t, "inspect", cfgPath, "--database", "nope")
	if err == nil || !strings.Contains(err.Error(), "unknown target database") {
		t.Errorf("expected unknown target error, got %v", err)
	}
}
