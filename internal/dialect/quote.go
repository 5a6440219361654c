package dialect

import (
	"strings"

	"github.com/schemalign/schemalign/internal/ir"
)

// QuoteIdentifier quotes a table or column name in the dialect's style:
// backticks for MySQL, double quotes elsewhere. Quoting is unconditional in
// generated statements so output never depends on reserved-word lists.
func QuoteIdentifier(d ir.Dialect, identifier string) string {
	if d == ir.DialectMySQL {
		return "`" + strings.ReplaceAll(identifier, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}

// QuoteIdentifiers quotes a list of names and joins them with ", ",
// the shape used inside key and index column lists
func QuoteIdentifiers(d ir.Dialect, identifiers []string) string {
	quoted := make([]string, len(identifiers))
	for i, id := range identifiers {
		quoted[i] = QuoteIdentifier(d, id)
	}
	return strings.Join(quoted, ", ")
}

// QuoteString renders a single-quoted SQL string literal with '' escaping
func QuoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
