package synth

import (
	"fmt"
	"strings"

	"github.com/schemalign/schemalign/internal/dialect"
	"github.com/schemalign/schemalign/internal/diff"
	"github.com/schemalign/schemalign/internal/ir"
)

// mysqlRenderer emits MySQL syntax: backtick quoting, positional ADD COLUMN
// with AFTER/FIRST, single MODIFY COLUMN carrying every facet, inline table
// comments, InnoDB tables.
type mysqlRenderer struct{}

func (mysqlRenderer) q(id string) string {
	return dialect.QuoteIdentifier(ir.DialectMySQL, id)
}

func (mysqlRenderer) qAll(ids []string) string {
	return dialect.QuoteIdentifiers(ir.DialectMySQL, ids)
}

// columnDef renders the full column definition used by CREATE, ADD and
// MODIFY alike: name, type, NOT NULL when required, DEFAULT, AUTO_INCREMENT,
// COMMENT.
func (r mysqlRenderer) columnDef(c *ir.Column) string {
	var b strings.Builder
	b.WriteString(r.q(c.Name))
	b.WriteString(" ")
	b.WriteString(dialect.ToNative(ir.DialectMySQL, c.Type))
	if !c.Nullable {
		b.WriteString(" NOT NULL")
	}
	if c.Default != nil {
		b.WriteString(" DEFAULT ")
		b.WriteString(renderDefault(*c.Default))
	}
	if c.Type.AutoIncrement {
		b.WriteString(" AUTO_INCREMENT")
	}
	if c.Comment != "" {
		b.WriteString(" COMMENT ")
		b.WriteString(dialect.QuoteString(c.Comment))
	}
	return b.String()
}

func (r mysqlRenderer) CreateTable(t *ir.Table) []Statement {
	var lines []string
	for _, c := range t.Columns {
		lines = append(lines, "  "+r.columnDef(c))
	}
	if len(t.PrimaryKey) > 0 {
		lines = append(lines, fmt.Sprintf("  PRIMARY KEY (%s)", r.qAll(t.PrimaryKey)))
	}
	for _, idx := range t.Indexes {
		kind := "KEY"
		if idx.Unique {
			kind = "UNIQUE KEY"
		}
		lines = append(lines, fmt.Sprintf("  %s %s (%s)", kind, r.q(idx.Name), r.qAll(idx.Columns)))
	}
	for _, fk := range t.ForeignKeys {
		lines = append(lines, fmt.Sprintf("  CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
			r.q(fk.Name), r.qAll(fk.Columns), r.q(fk.ReferencedTable), r.qAll(fk.ReferencedColumns)))
	}

	sql := fmt.Sprintf("CREATE TABLE %s (\n%s\n) ENGINE=InnoDB", r.q(t.Name), strings.Join(lines, ",\n"))
	if t.Comment != "" {
		sql += " COMMENT=" + dialect.QuoteString(t.Comment)
	}
	sql += ";"
	return []Statement{{SQL: sql, Executable: true}}
}

func (r mysqlRenderer) RenameTable(name string) Statement {
	return Statement{
		SQL:        fmt.Sprintf("RENAME TABLE %s TO %s;", r.q(name), r.q(name+"_del")),
		Executable: true,
	}
}

func (r mysqlRenderer) AddColumn(table string, cd *diff.ColumnDiff) []Statement {
	position := " FIRST"
	if cd.After != "" {
		position = " AFTER " + r.q(cd.After)
	}
	return []Statement{{
		SQL:        fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s%s;", r.q(table), r.columnDef(cd.Template), position),
		Executable: true,
	}}
}

func (r mysqlRenderer) ModifyColumn(table string, cd *diff.ColumnDiff) []Statement {
	return []Statement{{
		SQL:        fmt.Sprintf("ALTER TABLE %s MODIFY COLUMN %s;", r.q(table), r.columnDef(cd.Template)),
		Executable: true,
	}}
}

func (r mysqlRenderer) RemoveColumn(table string, cd *diff.ColumnDiff) Statement {
	return commentary(fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s; -- drop with caution",
		r.q(table), r.q(cd.Target.Name)))
}

func (r mysqlRenderer) AddIndex(table string, idx *ir.Index) Statement {
	unique := ""
	if idx.Unique {
		unique = "UNIQUE "
	}
	return Statement{
		SQL:        fmt.Sprintf("CREATE %sINDEX %s ON %s (%s);", unique, r.q(idx.Name), r.q(table), r.qAll(idx.Columns)),
		Executable: true,
	}
}

func (r mysqlRenderer) DropIndex(table string, idx *ir.Index) Statement {
	return commentary(fmt.Sprintf("DROP INDEX %s ON %s; -- index exists only in target, confirm before dropping",
		r.q(idx.Name), r.q(table)))
}

func (r mysqlRenderer) AddForeignKey(table string, fk *ir.ForeignKey) []Statement {
	return []Statement{{
		SQL: fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s);",
			r.q(table), r.q(fk.Name), r.qAll(fk.Columns), r.q(fk.ReferencedTable), r.qAll(fk.ReferencedColumns)),
		Executable: true,
	}}
}

func (r mysqlRenderer) DropForeignKey(table string, fk *ir.ForeignKey) Statement {
	return commentary(fmt.Sprintf("ALTER TABLE %s DROP FOREIGN KEY %s; -- constraint exists only in target, confirm before dropping",
		r.q(table), r.q(fk.Name)))
}

func (r mysqlRenderer) TableComment(table, comment string) []Statement {
	return []Statement{{
		SQL:        fmt.Sprintf("ALTER TABLE %s COMMENT = %s;", r.q(table), dialect.QuoteString(comment)),
		Executable: true,
	}}
}
