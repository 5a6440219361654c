package synth

import (
	"fmt"
	"strings"

	"github.com/schemalign/schemalign/internal/dialect"
	"github.com/schemalign/schemalign/internal/diff"
	"github.com/schemalign/schemalign/internal/ir"
)

// postgresRenderer emits PostgreSQL syntax. PostgreSQL cannot combine column
// alterations in one clause, so a modified column becomes one statement per
// changed facet; comments travel as separate COMMENT ON statements.
type postgresRenderer struct{}

func (postgresRenderer) q(id string) string {
	return dialect.QuoteIdentifier(ir.DialectPostgres, id)
}

func (postgresRenderer) qAll(ids []string) string {
	return dialect.QuoteIdentifiers(ir.DialectPostgres, ids)
}

func (r postgresRenderer) columnDef(c *ir.Column) string {
	var b strings.Builder
	b.WriteString(r.q(c.Name))
	b.WriteString(" ")
	b.WriteString(dialect.ToNative(ir.DialectPostgres, c.Type))
	if !c.Nullable {
		b.WriteString(" NOT NULL")
	}
	if c.Default != nil {
		b.WriteString(" DEFAULT ")
		b.WriteString(renderDefault(*c.Default))
	}
	return b.String()
}

// commentValue renders the right-hand side of COMMENT ON; an empty comment
// clears with NULL.
func commentValue(comment string) string {
	if comment == "" {
		return "NULL"
	}
	return dialect.QuoteString(comment)
}

func (r postgresRenderer) CreateTable(t *ir.Table) []Statement {
	var lines []string
	for _, c := range t.Columns {
		lines = append(lines, "  "+r.columnDef(c))
	}
	if len(t.PrimaryKey) > 0 {
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
	if t.Comment != "" {
		stmts = append(stmts, Statement{
			SQL:        fmt.Sprintf("COMMENT ON TABLE %s IS %s;", r.q(t.Name), commentValue(t.Comment)),
			Executable: true,
		})
	}
	for _, c := range t.Columns {
		if c.Comment != "" {
			stmts = append(stmts, r.columnComment(t.Name, c.Name, c.Comment))
		}
	}
	return stmts
}

func (r postgresRenderer) columnComment(table, column, comment string) Statement {
	return Statement{
		SQL:        fmt.Sprintf("COMMENT ON COLUMN %s.%s IS %s;", r.q(table), r.q(column), commentValue(comment)),
		Executable: true,
	}
}

func (r postgresRenderer) RenameTable(name string) Statement {
	return Statement{
		SQL:        fmt.Sprintf("ALTER TABLE %s RENAME TO %s;", r.q(name), r.q(name+"_del")),
		Executable: true,
	}
}

func (r postgresRenderer) AddColumn(table string, cd *diff.ColumnDiff) []Statement {
	// No positional clause: PostgreSQL appends at the physical end
	stmts := []Statement{{
		SQL:        fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s;", r.q(table), r.columnDef(cd.Template)),
		Executable: true,
	}}
	if cd.Template.Comment != "" {
		stmts = append(stmts, r.columnComment(table, cd.Template.Name, cd.Template.Comment))
	}
	return stmts
}

func (r postgresRenderer) ModifyColumn(table string, cd *diff.ColumnDiff) []Statement {
	var stmts []Statement
	c := cd.Template

	if cd.TypeChanged {
		// SERIAL is a create-time shorthand, not a type; render the plain
		// type here and leave sequence wiring to the auto-increment note
		plain := c.Type
		plain.AutoIncrement = false
		stmts = append(stmts, Statement{
			SQL: fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s;",
				r.q(table), r.q(c.Name), dialect.ToNative(ir.DialectPostgres, plain)),
			Executable: true,
		})
	}
	if cd.NullableChanged {
		action := "SET NOT NULL"
		if c.Nullable {
			action = "DROP NOT NULL"
		}
		stmts = append(stmts, Statement{
			SQL:        fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s %s;", r.q(table), r.q(c.Name), action),
			Executable: true,
		})
	}
	if cd.DefaultChanged {
		if c.Default == nil {
			stmts = append(stmts, Statement{
				SQL:        fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP DEFAULT;", r.q(table), r.q(c.Name)),
				Executable: true,
			})
		} else {
			stmts = append(stmts, Statement{
				SQL: fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET DEFAULT %s;",
					r.q(table), r.q(c.Name), renderDefault(*c.Default)),
				Executable: true,
			})
		}
	}
	if cd.CommentChanged {
		stmts = append(stmts, r.columnComment(table, c.Name, c.Comment))
	}
	if cd.AutoIncrementChanged {
		stmts = append(stmts, commentary(fmt.Sprintf(
			"column %s.%s auto-increment differs; attach or detach its sequence default manually",
			table, c.Name)))
	}
	return stmts
}

func (r postgresRenderer) RemoveColumn(table string, cd *diff.ColumnDiff) Statement {
	return commentary(fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s; -- drop with caution",
		r.q(table), r.q(cd.Target.Name)))
}

func (r postgresRenderer) AddIndex(table string, idx *ir.Index) Statement {
	unique := ""
	if idx.Unique {
		unique = "UNIQUE "
	}
	return Statement{
		SQL:        fmt.Sprintf("CREATE %sINDEX %s ON %s (%s);", unique, r.q(idx.Name), r.q(table), r.qAll(idx.Columns)),
		Executable: true,
	}
}

func (r postgresRenderer) DropIndex(table string, idx *ir.Index) Statement {
	return commentary(fmt.Sprintf("DROP INDEX %s; -- index exists only in target, confirm before dropping",
		r.q(idx.Name)))
}

func (r postgresRenderer) AddForeignKey(table string, fk *ir.ForeignKey) []Statement {
	return []Statement{{
		SQL: fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s);",
			r.q(table), r.q(fk.Name), r.qAll(fk.Columns), r.q(fk.ReferencedTable), r.qAll(fk.ReferencedColumns)),
		Executable: true,
	}}
}

func (r postgresRenderer) DropForeignKey(table string, fk *ir.ForeignKey) Statement {
	return commentary(fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s; -- constraint exists only in target, confirm before dropping",
		r.q(table), r.q(fk.Name)))
}

func (r postgresRenderer) TableComment(table, comment string) []Statement {
	return []Statement{{
		SQL:        fmt.Sprintf("COMMENT ON TABLE %s IS %s;", r.q(table), commentValue(comment)),
		Executable: true,
	}}
}
