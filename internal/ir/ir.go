// Package ir defines the dialect-agnostic intermediate representation of a
// database schema. Every engine's metadata is normalized into this model
// before any comparison happens; the diff engine and the DDL synthesizer
// operate exclusively on these types and never see raw engine metadata.
package ir

import (
	"fmt"
	"sort"
	"strings"
)

// Dialect identifies a supported database engine
type Dialect string

const (
	DialectMySQL    Dialect = "mysql"
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// ParseDialect resolves a configured dialect name, accepting common aliases
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mysql", "mariadb":
		return DialectMySQL, nil
	case "postgres", "postgresql", "pg":
		return DialectPostgres, nil
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	default:
		return "", fmt.Errorf("unsupported dialect: %q", s)
	}
}

// SupportsComments reports whether the dialect can store table and column
// comments. SQLite has no comment syntax, so comments are invisible to it
// both when reading and when writing.
func (d Dialect) SupportsComments() bool {
	return d != DialectSQLite
}

// TypeKind enumerates the canonical type vocabulary
type TypeKind string

const (
	TypeInteger   TypeKind = "INTEGER"
	TypeBigInt    TypeKind = "BIGINT"
	TypeDecimal   TypeKind = "DECIMAL"
	TypeVarChar   TypeKind = "VARCHAR"
	TypeText      TypeKind = "TEXT"
	TypeDate      TypeKind = "DATE"
	TypeDateTime  TypeKind = "DATETIME"
	TypeTimestamp TypeKind = "TIMESTAMP"
	TypeBoolean   TypeKind = "BOOLEAN"
	TypeBlob      TypeKind = "BLOB"
	TypeJSON      TypeKind = "JSON"
	TypeOther     TypeKind = "OTHER"
)

// CanonicalType is the dialect-independent description of a column type.
// Unsigned and AutoIncrement are dialect-local annotations layered on top of
// Kind; they participate in comparison only when both sides come from the
// same dialect, never across dialects.
type CanonicalType struct {
	Kind          TypeKind `json:"kind"`
	Length        int      `json:"length,omitempty"`    // VARCHAR
	Precision     int      `json:"precision,omitempty"` // DECIMAL
	Scale         int      `json:"scale,omitempty"`     // DECIMAL
	Raw           string   `json:"raw,omitempty"`       // OTHER pass-through, normalized
	Unsigned      bool     `json:"unsigned,omitempty"`
	AutoIncrement bool     `json:"auto_increment,omitempty"`
}

// EquivalentTo reports whether two canonical types are structurally
// equivalent: kinds match and, for parameterized kinds, all parameters match.
// OTHER types compare by raw text only.
func (t CanonicalType) EquivalentTo(other CanonicalType) bool {
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case TypeDecimal:
		return t.Precision == other.Precision && t.Scale == other.Scale
	case TypeVarChar:
		return t.Length == other.Length
	case TypeOther:
		return t.Raw == other.Raw
	default:
		return true
	}
}

// String renders the canonical spelling of the type, used in logs and in
// rebuild commentary
func (t CanonicalType) String() string {
	switch t.Kind {
	case TypeDecimal:
		return fmt.Sprintf("DECIMAL(%d,%d)", t.Precision, t.Scale)
	case TypeVarChar:
		return fmt.Sprintf("VARCHAR(%d)", t.Length)
	case TypeOther:
		return t.Raw
	default:
		return string(t.Kind)
	}
}

// Column represents a table column
type Column struct {
	Name     string        `json:"name"`
	Type     CanonicalType `json:"type"`
	Nullable bool          `json:"nullable"`
	Default  *string       `json:"default,omitempty"` // normalized literal or keyword token
	Comment  string        `json:"comment,omitempty"`
	Position int           `json:"position"` // 1-based, sole ordering key
}

// Index represents a secondary index (the primary key is kept on the table)
type Index struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Unique  bool     `json:"unique"`
}

// Signature identifies an index by structure, independent of its name
func (i *Index) Signature() string {
	return fmt.Sprintf("%s|unique=%t", strings.Join(i.Columns, ","), i.Unique)
}

// ForeignKey represents a foreign key constraint
type ForeignKey struct {
	Name              string   `json:"name"`
	Columns           []string `json:"columns"`
	ReferencedTable   string   `json:"referenced_table"`
	ReferencedColumns []string `json:"referenced_columns"`
}

// Signature identifies a foreign key by structure, independent of its name
func (f *ForeignKey) Signature() string {
	return fmt.Sprintf("%s->%s(%s)",
		strings.Join(f.Columns, ","),
		f.ReferencedTable,
		strings.Join(f.ReferencedColumns, ","))
}

// Table represents a database table
type Table struct {
	Name        string        `json:"name"`
	Columns     []*Column     `json:"columns"` // ordered by Position
	PrimaryKey  []string      `json:"primary_key,omitempty"`
	Indexes     []*Index      `json:"indexes,omitempty"`
	ForeignKeys []*ForeignKey `json:"foreign_keys,omitempty"`
	Comment     string        `json:"comment,omitempty"`
}

// Validate checks the table invariants: unique column names, unique ordinal
// positions, and primary key columns that exist in the column list
func (t *Table) Validate() error {
	names := make(map[string]bool)
	positions := make(map[int]bool)
	for _, col := range t.Columns {
		if col.Name == "" {
			return fmt.Errorf("table %s: column with empty name", t.Name)
		}
		if names[col.Name] {
			return fmt.Errorf("table %s: duplicate column name %s", t.Name, col.Name)
		}
		names[col.Name] = true
		if positions[col.Position] {
			return fmt.Errorf("table %s: duplicate column position %d", t.Name, col.Position)
		}
		positions[col.Position] = true
	}
	for _, pk := range t.PrimaryKey {
		if !names[pk] {
			return fmt.Errorf("table %s: primary key column %s not found", t.Name, pk)
		}
	}
	return nil
}

// SortColumns orders the column slice by ordinal position. Inspectors call
// this once after construction; nothing mutates a table afterwards.
func (t *Table) SortColumns() {
	sort.SliceStable(t.Columns, func(i, j int) bool {
		return t.Columns[i].Position < t.Columns[j].Position
	})
}

// ColumnByName returns the named column, or nil
func (t *Table) ColumnByName(name string) *Column {
	for _, col := range t.Columns {
		if col.Name == name {
			return col
		}
	}
	return nil
}

// ColumnNames returns the column names in ordinal position order
func (t *Table) ColumnNames() []string {
	names := make([]string, 0, len(t.Columns))
	for _, col := range t.Columns {
		names = append(names, col.Name)
	}
	return names
}

// Schema represents one database's introspected table set. It is built fresh
// per comparison run and never mutated after construction.
type Schema struct {
	Dialect    Dialect           `json:"dialect"`
	Tables     map[string]*Table `json:"tables"`      // table_name -> Table
	TableOrder []string          `json:"table_order"` // introspection listing order
}

// NewSchema creates an empty schema for the given dialect
func NewSchema(d Dialect) *Schema {
	return &Schema{
		Dialect: d,
		Tables:  make(map[string]*Table),
	}
}

// AddTable registers a table, preserving insertion order for deterministic
// downstream emission
func (s *Schema) AddTable(t *Table) {
	if _, exists := s.Tables[t.Name]; !exists {
		s.TableOrder = append(s.TableOrder, t.Name)
	}
	s.Tables[t.Name] = t
}

// TableNames returns the table names in insertion order
func (s *Schema) TableNames() []string {
	names := make([]string, len(s.TableOrder))
	copy(names, s.TableOrder)
	return names
}

// SortedTableNames returns the table names sorted lexicographically
func (s *Schema) SortedTableNames() []string {
	names := s.TableNames()
	sort.Strings(names)
	return names
}
