package inspect

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/schemalign/schemalign/internal/ir"
)

// postgresInspector reads table metadata from pg_catalog and
// information_schema, scoped to current_schema() so search_path decides which
// schema is compared.
type postgresInspector struct {
	db *sql.DB
}

var _ Inspector = (*postgresInspector)(nil)

func (p *postgresInspector) ListTables(ctx context.Context) ([]string, error) {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = current_schema()
		  AND table_type = 'BASE TABLE'
		ORDER BY table_name`

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (p *postgresInspector) TableInfo(ctx context.Context, name string) (*ir.Table, error) {
	query := `
		SELECT COALESCE(obj_description(c.oid, 'pg_class'), '')
		FROM pg_catalog.pg_class c
		JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
		WHERE n.nspname = current_schema()
		  AND c.relname = $1
		  AND c.relkind = 'r'`

	var comment string
	err := p.db.QueryRowContext(ctx, query, name).Scan(&comment)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query table %s: %w", name, err)
	}

	table := &ir.Table{Name: name, Comment: comment}
	if err := p.loadColumns(ctx, table); err != nil {
		return nil, err
	}
	if err := p.loadPrimaryKey(ctx, table); err != nil {
		return nil, err
	}
	if err := p.loadIndexes(ctx, table); err != nil {
		return nil, err
	}
	if err := p.loadForeignKeys(ctx, table); err != nil {
		return nil, err
	}
	table.SortColumns()
	return table, nil
}

func (p *postgresInspector) loadColumns(ctx context.Context, table *ir.Table) error {
	query := `
		SELECT c.column_name,
		       c.data_type,
		       c.udt_name,
		       COALESCE(c.character_maximum_length, 0),
		       COALESCE(c.numeric_precision, 0),
		       COALESCE(c.numeric_scale, 0),
		       c.is_nullable,
		       c.column_default,
		       c.ordinal_position,
		       COALESCE(col_description(pc.oid, c.ordinal_position), '')
		FROM information_schema.columns c
		JOIN pg_catalog.pg_class pc ON pc.relname = c.table_name
		JOIN pg_catalog.pg_namespace pn ON pn.oid = pc.relnamespace AND pn.nspname = c.table_schema
		WHERE c.table_schema = current_schema()
		  AND c.table_name = $1
		ORDER BY c.ordinal_position`

	rows, err := p.db.QueryContext(ctx, query, table.Name)
	if err != nil {
		return fmt.Errorf("failed to query columns for %s: %w", table.Name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			colName, dataType, udtName, nullable, comment string
			charLen, precision, scale, position           int
			defaultValue                                  sql.NullString
		)
		if err := rows.Scan(&colName, &dataType, &udtName, &charLen, &precision, &scale, &nullable, &defaultValue, &position, &comment); err != nil {
			return err
		}

		raw := composeRawType(dataType, udtName, charLen, precision, scale)
		canonical := toCanonicalLogged(ir.DialectPostgres, raw, table.Name, colName)

		col := &ir.Column{
			Name:     colName,
			Type:     canonical,
			Nullable: nullable == "YES",
			Comment:  comment,
			Position: position,
		}
		if defaultValue.Valid {
			// A nextval() default is the serial mechanism, not a value
			// default; it surfaces as the auto-increment annotation
			if strings.HasPrefix(defaultValue.String, "nextval(") {
				col.Type.AutoIncrement = true
			} else {
				normalized := ir.NormalizeDefault(defaultValue.String, canonical.Kind)
				col.Default = &normalized
			}
		}
		table.Columns = append(table.Columns, col)
	}
	return rows.Err()
}

// composeRawType rebuilds the declared type text from the facts
// information_schema splits apart. Parameters are attached only for the types
// that declare them; integer types report a numeric_precision too and must
// not pick it up.
func composeRawType(dataType, udtName string, charLen, precision, scale int) string {
	switch dataType {
	case "character varying", "character":
		if charLen > 0 {
			return fmt.Sprintf("%s(%d)", dataType, charLen)
		}
		return dataType
	case "numeric", "decimal":
		if precision > 0 {
			return fmt.Sprintf("%s(%d,%d)", dataType, precision, scale)
		}
		return dataType
	case "ARRAY", "USER-DEFINED":
		return udtName
	default:
		return dataType
	}
}

func (p *postgresInspector) loadPrimaryKey(ctx context.Context, table *ir.Table) error {
	query := `
		SELECT kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON kcu.constraint_name = tc.constraint_name
		 AND kcu.table_schema = tc.table_schema
		 AND kcu.table_name = tc.table_name
		WHERE tc.table_schema = current_schema()
		  AND tc.table_name = $1
		  AND tc.constraint_type = 'PRIMARY KEY'
		ORDER BY kcu.ordinal_position`

	rows, err := p.db.QueryContext(ctx, query, table.Name)
	if err != nil {
		return fmt.Errorf("failed to query primary key for %s: %w", table.Name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var column string
		if err := rows.Scan(&column); err != nil {
			return err
		}
		table.PrimaryKey = append(table.PrimaryKey, column)
	}
	return rows.Err()
}

func (p *postgresInspector) loadIndexes(ctx context.Context, table *ir.Table) error {
	query := `
		SELECT i.relname, a.attname, ix.indisunique
		FROM pg_catalog.pg_index ix
		JOIN pg_catalog.pg_class t ON t.oid = ix.indrelid
		JOIN pg_catalog.pg_class i ON i.oid = ix.indexrelid
		JOIN pg_catalog.pg_namespace n ON n.oid = t.relnamespace
		CROSS JOIN LATERAL unnest(ix.indkey) WITH ORDINALITY AS k(attnum, ord)
		JOIN pg_catalog.pg_attribute a ON a.attrelid = t.oid AND a.attnum = k.attnum
		WHERE n.nspname = current_schema()
		  AND t.relname = $1
		  AND NOT ix.indisprimary
		ORDER BY i.relname, k.ord`

	rows, err := p.db.QueryContext(ctx, query, table.Name)
	if err != nil {
		return fmt.Errorf("failed to query indexes for %s: %w", table.Name, err)
	}
	defer rows.Close()

	var current *ir.Index
	for rows.Next() {
		var indexName, columnName string
		var unique bool
		if err := rows.Scan(&indexName, &columnName, &unique); err != nil {
			return err
		}
		if current == nil || current.Name != indexName {
			current = &ir.Index{Name: indexName, Unique: unique}
			table.Indexes = append(table.Indexes, current)
		}
		current.Columns = append(current.Columns, columnName)
	}
	return rows.Err()
}

func (p *postgresInspector) loadForeignKeys(ctx context.Context, table *ir.Table) error {
	query := `
		SELECT con.conname, att.attname, ref.relname, fatt.attname
		FROM pg_catalog.pg_constraint con
		JOIN pg_catalog.pg_class t ON t.oid = con.conrelid
		JOIN pg_catalog.pg_namespace n ON n.oid = t.relnamespace
		JOIN pg_catalog.pg_class ref ON ref.oid = con.confrelid
		CROSS JOIN LATERAL unnest(con.conkey, con.confkey) WITH ORDINALITY AS k(attnum, fattnum, ord)
		JOIN pg_catalog.pg_attribute att ON att.attrelid = con.conrelid AND att.attnum = k.attnum
		JOIN pg_catalog.pg_attribute fatt ON fatt.attrelid = con.confrelid AND fatt.attnum = k.fattnum
		WHERE n.nspname = current_schema()
		  AND t.relname = $1
		  AND con.contype = 'f'
		ORDER BY con.conname, k.ord`

	rows, err := p.db.QueryContext(ctx, query, table.Name)
	if err != nil {
		return fmt.Errorf("failed to query foreign keys for %s: %w", table.Name, err)
	}
	defer rows.Close()

	var current *ir.ForeignKey
	for rows.Next() {
		var constraintName, columnName, refTable, refColumn string
		if err := rows.Scan(&constraintName, &columnName, &refTable, &refColumn); err != nil {
			return err
		}
		if current == nil || current.Name != constraintName {
			current = &ir.ForeignKey{Name: constraintName, ReferencedTable: refTable}
			table.ForeignKeys = append(table.ForeignKeys, current)
		}
		current.Columns = append(current.Columns, columnName)
		current.ReferencedColumns = append(current.ReferencedColumns, refColumn)
	}
	return rows.Err()
}
