package synth

import (
	"fmt"
	"strings"

	"github.com/schemalign/schemalign/internal/dialect"
	"github.com/schemalign/schemalign/internal/diff"
	"github.com/schemalign/schemalign/internal/ir"
)

// sqliteRenderer emits SQLite syntax. ALTER TABLE covers only renames and
// column additions; modifying a column or adding a foreign key needs a table
// rebuild, which is rendered as step-by-step commentary instead of live SQL.
// Comments are not part of the dialect and never appear.
type sqliteRenderer struct{}

func (sqliteRenderer) q(id string) string {
	return dialect.QuoteIdentifier(ir.DialectSQLite, id)
}

func (sqliteRenderer) qAll(ids []string) string {
	return dialect.QuoteIdentifiers(ir.DialectSQLite, ids)
}

func (r sqliteRenderer) CreateTable(t *ir.Table) []Statement {
	// AUTOINCREMENT exists only in the exact form INTEGER PRIMARY KEY
	// AUTOINCREMENT on a single-column key; that column absorbs the
	// primary key clause
	inlinePK := ""
	if len(t.PrimaryKey) == 1 {
		if c := t.ColumnByName(t.PrimaryKey[0]); c != nil &&
			c.Type.AutoIncrement && c.Type.Kind == ir.TypeInteger {
			inlinePK = c.Name
		}
	}

	var lines []string
	for _, c := range t.Columns {
		if c.Name == inlinePK {
			lines = append(lines, fmt.Sprintf("  %s INTEGER PRIMARY KEY AUTOINCREMENT", r.q(c.Name)))
			continue
		}
		lines = append(lines, "  "+r.columnDef(c, true))
	}
	if len(t.PrimaryKey) > 0 && inlinePK == "" {
		lines = append(lines, fmt.Sprintf("  PRIMARY KEY (%s)", r.qAll(t.PrimaryKey)))
	}
	for _, fk := range t.ForeignKeys {
		lines = append(lines, fmt.Sprintf("  CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
			r.q(fk.Name), r.qAll(fk.Columns), r.q(fk.ReferencedTable), r.qAll(fk.ReferencedColumns)))
	}

	stmts := []Statement{{
		SQL:        fmt.Sprintf("CREATE TABLE %s (\n%s\n);", r.q(t.Name), strings.Join(lines, ",\n")),
		Executable: true,
	}}
	for _, idx := range t.Indexes {
		stmts = append(stmts, r.AddIndex(t.Name, idx))
	}
	return stmts
}

// columnDef renders a column definition; withNull controls the NOT NULL
// clause. ADD COLUMN omits it because SQLite rejects adding a NOT NULL
// column without a default to a populated table.
func (r sqliteRenderer) columnDef(c *ir.Column, withNull bool) string {
	var b strings.Builder
	b.WriteString(r.q(c.Name))
	b.WriteString(" ")
	b.WriteString(dialect.ToNative(ir.DialectSQLite, c.Type))
	if withNull && !c.Nullable {
		b.WriteString(" NOT NULL")
	}
	if c.Default != nil {
		b.WriteString(" DEFAULT ")
		b.WriteString(renderDefault(*c.Default))
	}
	return b.String()
}

func (r sqliteRenderer) RenameTable(name string) Statement {
	return Statement{
		SQL:        fmt.Sprintf("ALTER TABLE %s RENAME TO %s;", r.q(name), r.q(name+"_del")),
		Executable: true,
	}
}

func (r sqliteRenderer) AddColumn(table string, cd *diff.ColumnDiff) []Statement {
	return []Statement{{
		SQL:        fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s;", r.q(table), r.columnDef(cd.Template, false)),
		Executable: true,
	}}
}

func (r sqliteRenderer) ModifyColumn(table string, cd *diff.ColumnDiff) []Statement {
	return []Statement{r.rebuildNote(
		fmt.Sprintf("sqlite cannot modify column %s in place; rebuild table %s manually:",
			r.q(cd.Template.Name), r.q(table)))}
}

// rebuildNote renders the four-step rebuild procedure behind a lead line.
func (sqliteRenderer) rebuildNote(lead string) Statement {
	return commentary(
		lead,
		"  1. create a new table with the desired definition",
		"  2. copy data into the new table",
		"  3. drop the old table",
		"  4. rename the new table into place",
	)
}

func (r sqliteRenderer) RemoveColumn(table string, cd *diff.ColumnDiff) Statement {
	return commentary(fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s; -- drop with caution",
		r.q(table), r.q(cd.Target.Name)))
}

func (r sqliteRenderer) AddIndex(table string, idx *ir.Index) Statement {
	unique := ""
	if idx.Unique {
		unique = "UNIQUE "
	}
	return Statement{
		SQL:        fmt.Sprintf("CREATE %sINDEX %s ON %s (%s);", unique, r.q(idx.Name), r.q(table), r.qAll(idx.Columns)),
		Executable: true,
	}
}

func (r sqliteRenderer) DropIndex(table string, idx *ir.Index) Statement {
	return commentary(fmt.Sprintf("DROP INDEX %s; -- index exists only in target, confirm before dropping",
		r.q(idx.Name)))
}

func (r sqliteRenderer) AddForeignKey(table string, fk *ir.ForeignKey) []Statement {
	return []Statement{r.rebuildNote(
		fmt.Sprintf("sqlite cannot add foreign key %s via ALTER TABLE; rebuild table %s manually:",
			fk.Signature(), r.q(table)))}
}

func (r sqliteRenderer) DropForeignKey(table string, fk *ir.ForeignKey) Statement {
	return commentary(fmt.Sprintf(
		"foreign key %s exists only in target table %s; rebuilding the table is required to drop it",
		fk.Signature(), r.q(table)))
}

func (sqliteRenderer) TableComment(table, comment string) []Statement {
	// Unreachable: the diff never flags comments when sqlite is involved
	return nil
}
