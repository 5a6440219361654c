package inspect

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/schemalign/schemalign/internal/ir"
)

// mysqlInspector reads table metadata from information_schema. All queries
// are scoped to DATABASE(), the schema selected by the connection.
type mysqlInspector struct {
	db *sql.DB
}

var _ Inspector = (*mysqlInspector)(nil)

func (m *mysqlInspector) ListTables(ctx context.Context) ([]string, error) {
	query := `
		SELECT TABLE_NAME
		FROM information_schema.TABLES
		WHERE TABLE_SCHEMA = DATABASE()
		  AND TABLE_TYPE = 'BASE TABLE'
		ORDER BY TABLE_NAME`

	rows, err := m.db.QueryContext(ctx, query)
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

func (m *mysqlInspector) TableInfo(ctx context.Context, name string) (*ir.Table, error) {
	query := `
		SELECT TABLE_COMMENT
		FROM information_schema.TABLES
		WHERE TABLE_SCHEMA = DATABASE()
		  AND TABLE_NAME = ?
		  AND TABLE_TYPE = 'BASE TABLE'`

	var comment string
	err := m.db.QueryRowContext(ctx, query, name).Scan(&comment)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query table %s: %w", name, err)
	}

	table := &ir.Table{Name: name, Comment: comment}
	if err := m.loadColumns(ctx, table); err != nil {
		return nil, err
	}
	if err := m.loadIndexes(ctx, table); err != nil {
		return nil, err
	}
	if err := m.loadForeignKeys(ctx, table); err != nil {
		return nil, err
	}
	table.SortColumns()
	return table, nil
}

func (m *mysqlInspector) loadColumns(ctx context.Context, table *ir.Table) error {
	query := `
		SELECT COLUMN_NAME, COLUMN_TYPE, IS_NULLABLE, COLUMN_DEFAULT, EXTRA, COLUMN_COMMENT, ORDINAL_POSITION
		FROM information_schema.COLUMNS
		WHERE TABLE_SCHEMA = DATABASE()
		  AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION`

	rows, err := m.db.QueryContext(ctx, query, table.Name)
	if err != nil {
		return fmt.Errorf("failed to query columns for %s: %w", table.Name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			colName, colType, nullable, extra, comment string
			defaultValue                               sql.NullString
			position                                   int
		)
		if err := rows.Scan(&colName, &colType, &nullable, &defaultValue, &extra, &comment, &position); err != nil {
			return err
		}

		canonical := toCanonicalLogged(ir.DialectMySQL, colType, table.Name, colName)
		if strings.Contains(strings.ToLower(extra), "auto_increment") {
			canonical.AutoIncrement = true
		}

		col := &ir.Column{
			Name:     colName,
			Type:     canonical,
			Nullable: nullable == "YES",
			Comment:  comment,
			Position: position,
		}
		if defaultValue.Valid {
			normalized := ir.NormalizeDefault(defaultValue.String, canonical.Kind)
			col.Default = &normalized
		}
		table.Columns = append(table.Columns, col)
	}
	return rows.Err()
}

// loadIndexes fills both the primary key (the PRIMARY index) and the
// secondary indexes, rows pre-ordered so grouping by name is a single pass
func (m *mysqlInspector) loadIndexes(ctx context.Context, table *ir.Table) error {
	query := `
		SELECT INDEX_NAME, COLUMN_NAME, NON_UNIQUE
		FROM information_schema.STATISTICS
		WHERE TABLE_SCHEMA = DATABASE()
		  AND TABLE_NAME = ?
		ORDER BY INDEX_NAME, SEQ_IN_INDEX`

	rows, err := m.db.QueryContext(ctx, query, table.Name)
	if err != nil {
		return fmt.Errorf("failed to query indexes for %s: %w", table.Name, err)
	}
	defer rows.Close()

	var current *ir.Index
	for rows.Next() {
		var indexName, columnName string
		var nonUnique int
		if err := rows.Scan(&indexName, &columnName, &nonUnique); err != nil {
			return err
		}

		if indexName == "PRIMARY" {
			table.PrimaryKey = append(table.PrimaryKey, columnName)
			continue
		}
		if current == nil || current.Name != indexName {
			current = &ir.Index{Name: indexName, Unique: nonUnique == 0}
			table.Indexes = append(table.Indexes, current)
		}
		current.Columns = append(current.Columns, columnName)
	}
	return rows.Err()
}

func (m *mysqlInspector) loadForeignKeys(ctx context.Context, table *ir.Table) error {
	query := `
		SELECT CONSTRAINT_NAME, COLUMN_NAME, REFERENCED_TABLE_NAME, REFERENCED_COLUMN_NAME
		FROM information_schema.KEY_COLUMN_USAGE
		WHERE TABLE_SCHEMA = DATABASE()
		  AND TABLE_NAME = ?
		  AND REFERENCED_TABLE_NAME IS NOT NULL
		ORDER BY CONSTRAINT_NAME, ORDINAL_POSITION`

	rows, err := m.db.QueryContext(ctx, query, table.Name)
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
