package ir

import (
	"regexp"
	"strconv"
	"strings"
)

// Canonical keyword tokens for time-based defaults. Dialects spell these
// differently (CURRENT_TIMESTAMP vs now() vs CURRENT_TIMESTAMP(6)); defaults
// are equivalent only when both sides normalize to the same token.
const (
	DefaultCurrentTimestamp = "CURRENT_TIMESTAMP"
	DefaultCurrentDate      = "CURRENT_DATE"
	DefaultCurrentTime      = "CURRENT_TIME"
	DefaultNull             = "NULL"
)

// keywordDefaults maps bare function/keyword names (upper case, no argument
// list) to their canonical token
var keywordDefaults = map[string]string{
	"CURRENT_TIMESTAMP": DefaultCurrentTimestamp,
	"NOW":               DefaultCurrentTimestamp,
	"GETDATE":           DefaultCurrentTimestamp,
	"LOCALTIMESTAMP":    DefaultCurrentTimestamp,
	"CURRENT_DATE":      DefaultCurrentDate,
	"CURDATE":           DefaultCurrentDate,
	"CURRENT_TIME":      DefaultCurrentTime,
	"CURTIME":           DefaultCurrentTime,
	"NULL":              DefaultNull,
}

// castRe strips a trailing PostgreSQL type cast: 'x'::character varying,
// 0::numeric, '{}'::jsonb, 'a'::text[]
var castRe = regexp.MustCompile(`^(.+?)::[a-zA-Z_][\w\s.]*(?:\(\d+(?:,\s*\d+)?\))?(?:\[\])?$`)

// keywordRe matches a keyword or zero/precision-argument function call such
// as now(), CURRENT_TIMESTAMP(6)
var keywordRe = regexp.MustCompile(`^([a-zA-Z_]+)(?:\(\s*\d*\s*\))?$`)

// NormalizeDefault reduces a raw default-value expression to its canonical
// comparison form: keyword synonyms collapse to one token, literal quoting
// and numeric formatting are erased, PostgreSQL casts are stripped. The kind
// is needed because 1/0 mean TRUE/FALSE only on boolean columns.
func NormalizeDefault(raw string, kind TypeKind) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return ""
	}

	// Remove a trailing type cast before anything else; PostgreSQL reports
	// most literal defaults as 'literal'::type
	if strings.Contains(value, "::") {
		if m := castRe.FindStringSubmatch(value); m != nil {
			value = strings.TrimSpace(m[1])
		}
	}

	// Keyword and zero-argument function synonyms
	if m := keywordRe.FindStringSubmatch(value); m != nil {
		if token, ok := keywordDefaults[strings.ToUpper(m[1])]; ok {
			return token
		}
	}

	// Unwrap a single level of quoting from string literals
	if len(value) >= 2 && value[0] == '\'' && value[len(value)-1] == '\'' {
		value = strings.ReplaceAll(value[1:len(value)-1], "''", "'")
		// A quoted keyword still counts as the keyword; PostgreSQL accepts
		// DEFAULT 'now()' on timestamp columns with function semantics
		if m := keywordRe.FindStringSubmatch(value); m != nil {
			if token, ok := keywordDefaults[strings.ToUpper(m[1])]; ok {
				return token
			}
		}
	}

	if kind == TypeBoolean {
		switch strings.ToUpper(value) {
		case "TRUE", "T", "1":
			return "TRUE"
		case "FALSE", "F", "0":
			return "FALSE"
		}
	}

	// Numbers compare by value, not original formatting: 0.00 == 0, 1.50 == 1.5
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	return value
}

// IsKeywordDefault reports whether a normalized default is one of the
// canonical keyword tokens (rendered bare, never quoted)
func IsKeywordDefault(normalized string) bool {
	switch normalized {
	case DefaultCurrentTimestamp, DefaultCurrentDate, DefaultCurrentTime, DefaultNull:
		return true
	}
	return false
}
