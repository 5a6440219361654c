package ir

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseDialect(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Dialect
		wantErr bool
	}{
		{"mysql", "mysql", DialectMySQL, false},
		{"mariadb alias", "mariadb", DialectMySQL, false},
		{"postgres", "postgres", DialectPostgres, false},
		{"postgresql alias", "postgresql", DialectPostgres, false},
		{"pg alias", "PG", DialectPostgres, false},
		{"sqlite", "sqlite", DialectSQLite, false},
		{"sqlite3 alias", "sqlite3", DialectSQLite, false},
		{"mixed case", "MySQL", DialectMySQL, false},
		{"padded", " postgres ", DialectPostgres, false},
		{"unknown", "oracle", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDialect(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDialect(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDialect(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCanonicalTypeEquivalentTo(t *testing.T) {
	tests := []struct {
		name     string
		a, b     CanonicalType
		expected bool
	}{
		{
			"same kind",
			CanonicalType{Kind: TypeInteger},
			CanonicalType{Kind: TypeInteger},
			true,
		},
		{
			"different kind",
			CanonicalType{Kind: TypeInteger},
			CanonicalType{Kind: TypeBigInt},
			false,
		},
		{
			"varchar same length",
			CanonicalType{Kind: TypeVarChar, Length: 50},
			CanonicalType{Kind: TypeVarChar, Length: 50},
			true,
		},
		{
			"varchar different length",
			CanonicalType{Kind: TypeVarChar, Length: 50},
			CanonicalType{Kind: TypeVarChar, Length: 100},
			false,
		},
		{
			"decimal same params",
			CanonicalType{Kind: TypeDecimal, Precision: 10, Scale: 2},
			CanonicalType{Kind: TypeDecimal, Precision: 10, Scale: 2},
			true,
		},
		{
			"decimal different scale",
			CanonicalType{Kind: TypeDecimal, Precision: 10, Scale: 2},
			CanonicalType{Kind: TypeDecimal, Precision: 10, Scale: 4},
			false,
		},
		{
			"unsigned ignored cross dialect",
			CanonicalType{Kind: TypeInteger, Unsigned: true},
			CanonicalType{Kind: TypeInteger},
			true,
		},
		{
			"auto increment ignored cross dialect",
			CanonicalType{Kind: TypeBigInt, AutoIncrement: true},
			CanonicalType{Kind: TypeBigInt},
			true,
		},
		{
			"other same raw",
			CanonicalType{Kind: TypeOther, Raw: "uuid"},
			CanonicalType{Kind: TypeOther, Raw: "uuid"},
			true,
		},
		{
			"other different raw",
			CanonicalType{Kind: TypeOther, Raw: "uuid"},
			CanonicalType{Kind: TypeOther, Raw: "inet"},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.EquivalentTo(tt.b); got != tt.expected {
				t.Errorf("EquivalentTo() = %v, want %v", got, tt.expected)
			}
			// Equivalence is symmetric
			if got := tt.b.EquivalentTo(tt.a); got != tt.expected {
				t.Errorf("EquivalentTo() reversed = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCanonicalTypeString(t *testing.T) {
	tests := []struct {
		name     string
		typ      CanonicalType
		expected string
	}{
		{"integer", CanonicalType{Kind: TypeInteger}, "INTEGER"},
		{"varchar", CanonicalType{Kind: TypeVarChar, Length: 50}, "VARCHAR(50)"},
		{"decimal", CanonicalType{Kind: TypeDecimal, Precision: 10, Scale: 2}, "DECIMAL(10,2)"},
		{"other verbatim", CanonicalType{Kind: TypeOther, Raw: "uuid"}, "uuid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.typ.String(); got != tt.expected {
				t.Errorf("String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestIndexSignature(t *testing.T) {
	a := &Index{Name: "idx_users_email", Columns: []string{"email"}, Unique: true}
	b := &Index{Name: "uq_email", Columns: []string{"email"}, Unique: true}
	if a.Signature() != b.Signature() {
		t.Errorf("signatures should be name-independent: %q vs %q", a.Signature(), b.Signature())
	}

	c := &Index{Name: "idx_users_email", Columns: []string{"email"}, Unique: false}
	if a.Signature() == c.Signature() {
		t.Error("unique flag must participate in the signature")
	}

	d := &Index{Name: "x", Columns: []string{"a", "b"}}
	e := &Index{Name: "x", Columns: []string{"b", "a"}}
	if d.Signature() == e.Signature() {
		t.Error("column order must participate in the signature")
	}
}

func TestForeignKeySignature(t *testing.T) {
	a := &ForeignKey{Name: "fk_orders_user", Columns: []string{"user_id"}, ReferencedTable: "users", ReferencedColumns: []string{"id"}}
	b := &ForeignKey{Name: "orders_user_id_fkey", Columns: []string{"user_id"}, ReferencedTable: "users", ReferencedColumns: []string{"id"}}
	if a.Signature() != b.Signature() {
		t.Errorf("signatures should be name-independent: %q vs %q", a.Signature(), b.Signature())
	}

	c := &ForeignKey{Name: "fk", Columns: []string{"user_id"}, ReferencedTable: "accounts", ReferencedColumns: []string{"id"}}
	if a.Signature() == c.Signature() {
		t.Error("referenced table must participate in the signature")
	}
}

func TestTableValidate(t *testing.T) {
	tests := []struct {
		name    string
		table   *Table
		wantErr bool
	}{
		{
			"valid table",
			&Table{
				Name: "users",
				Columns: []*Column{
					{Name: "id", Position: 1},
					{Name: "email", Position: 2},
				},
				PrimaryKey: []string{"id"},
			},
			false,
		},
		{
			"duplicate column name",
			&Table{
				Name: "users",
				Columns: []*Column{
					{Name: "id", Position: 1},
					{Name: "id", Position: 2},
				},
			},
			true,
		},
		{
			"duplicate position",
			&Table{
				Name: "users",
				Columns: []*Column{
					{Name: "id", Position: 1},
					{Name: "email", Position: 1},
				},
			},
			true,
		},
		{
			"primary key column missing",
			&Table{
				Name: "users",
				Columns: []*Column{
					{Name: "id", Position: 1},
				},
				PrimaryKey: []string{"uuid"},
			},
			true,
		},
		{
			"empty column name",
			&Table{
				Name:    "users",
				Columns: []*Column{{Name: "", Position: 1}},
			},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.table.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTableSortColumns(t *testing.T) {
	table := &Table{
		Name: "users",
		Columns: []*Column{
			{Name: "email", Position: 3},
			{Name: "id", Position: 1},
			{Name: "username", Position: 2},
		},
	}
	table.SortColumns()

	got := table.ColumnNames()
	want := []string{"id", "username", "email"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("column order mismatch (-want +got):\n%s", diff)
	}
}

func TestSchemaTableOrder(t *testing.T) {
	s := NewSchema(DialectMySQL)
	s.AddTable(&Table{Name: "users"})
	s.AddTable(&Table{Name: "orders"})
	s.AddTable(&Table{Name: "products"})

	if diff := cmp.Diff([]string{"users", "orders", "products"}, s.TableNames()); diff != "" {
		t.Errorf("insertion order not preserved (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"orders", "products", "users"}, s.SortedTableNames()); diff != "" {
		t.Errorf("sorted order mismatch (-want +got):\n%s", diff)
	}

	// Re-adding must not duplicate the order entry
	s.AddTable(&Table{Name: "users"})
	if len(s.TableNames()) != 3 {
		t.Errorf("re-adding a table duplicated its order entry: %v", s.TableNames())
	}
}
