// Package synth renders diff results as dialect-correct DDL. Each dialect has
// its own renderer behind a shared interface, selected through a dispatch
// table. Statements are values carrying an Executable flag: destructive
// operations are always rendered as commentary that a human must uncomment,
// never as live SQL.
package synth

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/schemalign/schemalign/internal/dialect"
	"github.com/schemalign/schemalign/internal/diff"
	"github.com/schemalign/schemalign/internal/ir"
)

// Statement is one rendered DDL statement or commentary block.
type Statement struct {
	SQL        string `json:"sql"`
	Executable bool   `json:"executable"`
}

// TableStatements couples one table's diff outcome with its rendered
// statements, in the diff's emission order.
type TableStatements struct {
	Table      string      `json:"table"`
	Status     diff.Status `json:"status"`
	Statements []Statement `json:"statements,omitempty"`
}

// renderer is the per-dialect statement vocabulary. Renderers are stateless;
// destructive operations return commentary.
type renderer interface {
	CreateTable(t *ir.Table) []Statement
	RenameTable(name string) Statement
	AddColumn(table string, cd *diff.ColumnDiff) []Statement
	ModifyColumn(table string, cd *diff.ColumnDiff) []Statement
	RemoveColumn(table string, cd *diff.ColumnDiff) Statement
	AddIndex(table string, idx *ir.Index) Statement
	DropIndex(table string, idx *ir.Index) Statement
	AddForeignKey(table string, fk *ir.ForeignKey) []Statement
	DropForeignKey(table string, fk *ir.ForeignKey) Statement
	TableComment(table, comment string) []Statement
}

var renderers = map[ir.Dialect]renderer{
	ir.DialectMySQL:    mysqlRenderer{},
	ir.DialectPostgres: postgresRenderer{},
	ir.DialectSQLite:   sqliteRenderer{},
}

// Synthesize renders the statements that align one target with the template,
// one TableStatements per table diff, preserving diff order. The target's
// dialect decides the syntax; dialects are validated at configuration load,
// an unknown one here is a programming error.
func Synthesize(d ir.Dialect, diffs []*diff.TableDiff) []TableStatements {
	r, ok := renderers[d]
	if !ok {
		panic(fmt.Sprintf("synth: no renderer for dialect %q", d))
	}

	out := make([]TableStatements, 0, len(diffs))
	for _, td := range diffs {
		out = append(out, TableStatements{
			Table:      td.Name,
			Status:     td.Status,
			Statements: renderTable(r, td),
		})
	}
	return out
}

// renderTable fixes the statement order for one table: existence resolution
// first, then columns, indexes, foreign keys, and the table comment. An index
// or foreign key can therefore always rely on its columns existing.
func renderTable(r renderer, td *diff.TableDiff) []Statement {
	switch td.Status {
	case diff.StatusMissingInTarget:
		return r.CreateTable(td.Template)
	case diff.StatusExtraInTarget:
		return []Statement{r.RenameTable(td.Name)}
	case diff.StatusIdentical:
		return nil
	}

	var stmts []Statement
	for _, cd := range td.ColumnDiffs {
		switch cd.Kind {
		case diff.ChangeAdded:
			stmts = append(stmts, r.AddColumn(td.Name, cd)...)
		case diff.ChangeModified:
			stmts = append(stmts, r.ModifyColumn(td.Name, cd)...)
		case diff.ChangeRemoved:
			stmts = append(stmts, r.RemoveColumn(td.Name, cd))
		}
	}
	for _, idx := range td.AddedIndexes {
		stmts = append(stmts, r.AddIndex(td.Name, idx))
	}
	for _, idx := range td.ExtraIndexes {
		stmts = append(stmts, r.DropIndex(td.Name, idx))
	}
	for _, fk := range td.AddedForeignKeys {
		stmts = append(stmts, r.AddForeignKey(td.Name, fk)...)
	}
	for _, fk := range td.ExtraForeignKeys {
		stmts = append(stmts, r.DropForeignKey(td.Name, fk))
	}
	if td.CommentChanged {
		stmts = append(stmts, r.TableComment(td.Name, td.Template.Comment)...)
	}
	return stmts
}

// commentary renders non-executable lines, each prefixed as a SQL comment.
func commentary(lines ...string) Statement {
	prefixed := make([]string, len(lines))
	for i, line := range lines {
		prefixed[i] = "-- " + line
	}
	return Statement{SQL: strings.Join(prefixed, "\n"), Executable: false}
}

// renderDefault renders a normalized default value for embedding in DDL.
// Keyword tokens, numbers, and booleans go bare; everything else becomes a
// quoted string literal.
func renderDefault(value string) string {
	if ir.IsKeywordDefault(value) {
		return value
	}
	if value == "TRUE" || value == "FALSE" {
		return value
	}
	if _, err := strconv.ParseFloat(value, 64); err == nil {
		return value
	}
	return dialect.QuoteString(value)
}
