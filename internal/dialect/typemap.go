// Package dialect translates between each engine's native type syntax and the
// canonical type vocabulary, and renders identifiers and literals in each
// engine's quoting style. Mapping tables are fixed, total functions over the
// recognized kind set; anything unrecognized degrades to OTHER and passes
// through verbatim.
package dialect

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/schemalign/schemalign/internal/ir"
)

// typeRe splits a native declaration into base name and optional trailing
// parameters: "varchar(50)", "decimal(10, 2)", "timestamp"
var typeRe = regexp.MustCompile(`^([a-z_][a-z0-9_ ]*?)\s*(?:\(\s*(\d+)\s*(?:,\s*(\d+)\s*)?\))?$`)

var spaceRe = regexp.MustCompile(`\s+`)

// postgresAliases folds PostgreSQL's internal and verbose spellings onto the
// shared base vocabulary before kind lookup. PostgreSQL's bare "timestamp" is
// wall-clock time and lands on DATETIME; only the tz-aware variants are the
// canonical TIMESTAMP.
var postgresAliases = map[string]string{
	"int2":                        "smallint",
	"int4":                        "integer",
	"int8":                        "bigint",
	"serial4":                     "serial",
	"serial8":                     "bigserial",
	"character varying":           "varchar",
	"timestamp":                   "datetime",
	"timestamp without time zone": "datetime",
	"timestamptz":                 "timestamp",
	"timestamp with time zone":    "timestamp",
	"bool":                        "boolean",
}

// commonAliases apply to every dialect after the dialect-specific pass
var commonAliases = map[string]string{
	"int":     "integer",
	"dec":     "decimal",
	"numeric": "decimal",
}

// ToCanonical parses a native type declaration into its canonical form.
// Unrecognized types degrade to OTHER carrying the normalized raw text,
// compared by raw-text equality and rendered verbatim, never dropped.
func ToCanonical(d ir.Dialect, raw string) ir.CanonicalType {
	norm := spaceRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(raw)), " ")

	unsigned := false
	if d == ir.DialectMySQL {
		norm = strings.TrimSuffix(norm, " zerofill")
		if strings.HasSuffix(norm, " unsigned") {
			unsigned = true
			norm = strings.TrimSuffix(norm, " unsigned")
		}
	}

	m := typeRe.FindStringSubmatch(norm)
	if m == nil {
		return ir.CanonicalType{Kind: ir.TypeOther, Raw: norm, Unsigned: unsigned}
	}
	base := strings.TrimSpace(m[1])
	p1 := atoiOrZero(m[2])
	p2 := atoiOrZero(m[3])
	hasParams := m[2] != ""

	if d == ir.DialectPostgres {
		if alias, ok := postgresAliases[base]; ok {
			base = alias
		}
	}
	if alias, ok := commonAliases[base]; ok {
		base = alias
	}

	// Alias-folded reconstruction used for OTHER, so the same unrecognized
	// type spelled differently across dialects still compares equal
	rawNorm := base
	if m[2] != "" {
		rawNorm += "(" + m[2]
		if m[3] != "" {
			rawNorm += "," + m[3]
		}
		rawNorm += ")"
	}

	t := ir.CanonicalType{Unsigned: unsigned}
	switch base {
	case "integer":
		t.Kind = ir.TypeInteger
	case "bigint":
		t.Kind = ir.TypeBigInt
	case "serial":
		t.Kind = ir.TypeInteger
		t.AutoIncrement = true
	case "bigserial":
		t.Kind = ir.TypeBigInt
		t.AutoIncrement = true
	case "decimal":
		t.Kind = ir.TypeDecimal
		t.Precision = p1
		t.Scale = p2
	case "varchar":
		// Bare varchar (PostgreSQL's unbounded form) passes through; the
		// parameterized kind always carries its length
		if !hasParams {
			t.Kind = ir.TypeOther
			t.Raw = rawNorm
			break
		}
		t.Kind = ir.TypeVarChar
		t.Length = p1
	case "text":
		t.Kind = ir.TypeText
	case "date":
		t.Kind = ir.TypeDate
	case "datetime":
		t.Kind = ir.TypeDateTime
	case "timestamp":
		t.Kind = ir.TypeTimestamp
	case "boolean":
		t.Kind = ir.TypeBoolean
	case "tinyint":
		// MySQL's boolean convention; other tinyints pass through
		if hasParams && p1 == 1 {
			t.Kind = ir.TypeBoolean
		} else {
			t.Kind = ir.TypeOther
			t.Raw = rawNorm
		}
	case "blob":
		t.Kind = ir.TypeBlob
	case "bytea":
		if d == ir.DialectPostgres {
			t.Kind = ir.TypeBlob
		} else {
			t.Kind = ir.TypeOther
			t.Raw = rawNorm
		}
	case "json", "jsonb":
		t.Kind = ir.TypeJSON
	default:
		t.Kind = ir.TypeOther
		t.Raw = rawNorm
	}
	return t
}

// ToNative renders a canonical type as a syntactically valid declaration for
// the dialect. Chosen spellings round-trip: ToCanonical(d, ToNative(d, t))
// is equivalent to t for every kind and dialect.
func ToNative(d ir.Dialect, t ir.CanonicalType) string {
	var s string
	switch t.Kind {
	case ir.TypeInteger:
		switch d {
		case ir.DialectPostgres:
			if t.AutoIncrement {
				return "SERIAL"
			}
			return "INTEGER"
		case ir.DialectMySQL:
			s = "INT"
		default:
			s = "INTEGER"
		}
	case ir.TypeBigInt:
		if d == ir.DialectPostgres && t.AutoIncrement {
			return "BIGSERIAL"
		}
		s = "BIGINT"
	case ir.TypeDecimal:
		name := "DECIMAL"
		if d == ir.DialectPostgres {
			name = "NUMERIC"
		}
		if t.Precision > 0 {
			s = fmt.Sprintf("%s(%d,%d)", name, t.Precision, t.Scale)
		} else {
			s = name
		}
	case ir.TypeVarChar:
		if t.Length > 0 {
			s = fmt.Sprintf("VARCHAR(%d)", t.Length)
		} else {
			s = "VARCHAR"
		}
	case ir.TypeText:
		s = "TEXT"
	case ir.TypeDate:
		s = "DATE"
	case ir.TypeDateTime:
		if d == ir.DialectPostgres {
			s = "TIMESTAMP"
		} else {
			s = "DATETIME"
		}
	case ir.TypeTimestamp:
		if d == ir.DialectPostgres {
			s = "TIMESTAMPTZ"
		} else {
			s = "TIMESTAMP"
		}
	case ir.TypeBoolean:
		if d == ir.DialectMySQL {
			s = "TINYINT(1)"
		} else {
			s = "BOOLEAN"
		}
	case ir.TypeBlob:
		if d == ir.DialectPostgres {
			s = "BYTEA"
		} else {
			s = "BLOB"
		}
	case ir.TypeJSON:
		if d == ir.DialectPostgres {
			s = "JSONB"
		} else {
			s = "JSON"
		}
	case ir.TypeOther:
		return t.Raw
	default:
		return t.Raw
	}

	if t.Unsigned && d == ir.DialectMySQL {
		s += " UNSIGNED"
	}
	return s
}

func atoiOrZero(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
