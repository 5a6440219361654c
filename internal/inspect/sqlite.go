package inspect

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/schemalign/schemalign/internal/dialect"
	"github.com/schemalign/schemalign/internal/ir"
)

// sqliteInspector reads table metadata from sqlite_master and the PRAGMA
// introspection functions. SQLite keeps no column or table comments, so those
// stay empty.
type sqliteInspector struct {
	db *sql.DB
}

var _ Inspector = (*sqliteInspector)(nil)

func (s *sqliteInspector) ListTables(ctx context.Context) ([]string, error) {
	query := `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table'
		  AND name NOT LIKE 'sqlite_%'
		ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query)
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

func (s *sqliteInspector) TableInfo(ctx context.Context, name string) (*ir.Table, error) {
	var createSQL string
	err := s.db.QueryRowContext(ctx,
		`SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&createSQL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query table %s: %w", name, err)
	}

	table := &ir.Table{Name: name}
	if err := s.loadColumns(ctx, table, createSQL); err != nil {
		return nil, err
	}
	if err := s.loadIndexes(ctx, table); err != nil {
		return nil, err
	}
	if err := s.loadForeignKeys(ctx, table); err != nil {
		return nil, err
	}
	table.SortColumns()
	return table, nil
}

func (s *sqliteInspector) loadColumns(ctx context.Context, table *ir.Table, createSQL string) error {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("PRAGMA table_info(%s)", dialect.QuoteIdentifier(ir.DialectSQLite, table.Name)))
	if err != nil {
		return fmt.Errorf("failed to query columns for %s: %w", table.Name, err)
	}
	defer rows.Close()

	// AUTOINCREMENT never reaches PRAGMA output; only the stored DDL has it
	hasAutoincrement := strings.Contains(strings.ToUpper(createSQL), "AUTOINCREMENT")

	type pkEntry struct {
		order  int
		column string
	}
	var pk []pkEntry

	for rows.Next() {
		var (
			cid, notNull, pkOrder int
			colName, colType      string
			defaultValue          sql.NullString
		)
		if err := rows.Scan(&cid, &colName, &colType, &notNull, &defaultValue, &pkOrder); err != nil {
			return err
		}

		canonical := toCanonicalLogged(ir.DialectSQLite, colType, table.Name, colName)
		col := &ir.Column{
			Name:     colName,
			Type:     canonical,
			Nullable: notNull == 0,
			Position: cid + 1,
		}
		if defaultValue.Valid {
			normalized := ir.NormalizeDefault(defaultValue.String, canonical.Kind)
			col.Default = &normalized
		}
		if pkOrder > 0 {
			pk = append(pk, pkEntry{order: pkOrder, column: colName})
			if hasAutoincrement && canonical.Kind == ir.TypeInteger {
				col.Type.AutoIncrement = true
			}
		}
		table.Columns = append(table.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	sort.Slice(pk, func(i, j int) bool { return pk[i].order < pk[j].order })
	for _, e := range pk {
		table.PrimaryKey = append(table.PrimaryKey, e.column)
	}
	return nil
}

func (s *sqliteInspector) loadIndexes(ctx context.Context, table *ir.Table) error {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("PRAGMA index_list(%s)", dialect.QuoteIdentifier(ir.DialectSQLite, table.Name)))
	if err != nil {
		return fmt.Errorf("failed to query indexes for %s: %w", table.Name, err)
	}
	defer rows.Close()

	type indexEntry struct {
		name   string
		unique bool
	}
	var entries []indexEntry
	for rows.Next() {
		var (
			seq, unique, partial int
			indexName, origin    string
		)
		if err := rows.Scan(&seq, &indexName, &unique, &origin, &partial); err != nil {
			return err
		}
		// Implicit constraint indexes cannot be created or dropped by DDL
		if strings.HasPrefix(indexName, "sqlite_autoindex") {
			continue
		}
		entries = append(entries, indexEntry{name: indexName, unique: unique == 1})
	}
	if err := rows.Err(); err != nil {
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })

	for _, e := range entries {
		columns, err := s.indexColumns(ctx, e.name)
		if err != nil {
			return err
		}
		table.Indexes = append(table.Indexes, &ir.Index{Name: e.name, Columns: columns, Unique: e.unique})
	}
	return nil
}

func (s *sqliteInspector) indexColumns(ctx context.Context, indexName string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("PRAGMA index_info(%s)", dialect.QuoteIdentifier(ir.DialectSQLite, indexName)))
	if err != nil {
		return nil, fmt.Errorf("failed to query index %s: %w", indexName, err)
	}
	defer rows.Close()

	type colEntry struct {
		rank   int
		column string
	}
	var entries []colEntry
	for rows.Next() {
		var seqno, cid int
		var colName sql.NullString
		if err := rows.Scan(&seqno, &cid, &colName); err != nil {
			return nil, err
		}
		// Expression index members have no column name
		if colName.Valid {
			entries = append(entries, colEntry{rank: seqno, column: colName.String})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].rank < entries[j].rank })

	columns := make([]string, 0, len(entries))
	for _, e := range entries {
		columns = append(columns, e.column)
	}
	return columns, nil
}

func (s *sqliteInspector) loadForeignKeys(ctx context.Context, table *ir.Table) error {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("PRAGMA foreign_key_list(%s)", dialect.QuoteIdentifier(ir.DialectSQLite, table.Name)))
	if err != nil {
		return fmt.Errorf("failed to query foreign keys for %s: %w", table.Name, err)
	}
	defer rows.Close()

	byID := map[int]*ir.ForeignKey{}
	var order []int
	for rows.Next() {
		var (
			id, seq                       int
			refTable, fromCol             string
			toCol                         sql.NullString
			onUpdate, onDelete, matchKind string
		)
		if err := rows.Scan(&id, &seq, &refTable, &fromCol, &toCol, &onUpdate, &onDelete, &matchKind); err != nil {
			return err
		}
		fk, ok := byID[id]
		if !ok {
			// SQLite names no inline foreign keys; synthesize a stable one
			fk = &ir.ForeignKey{
				Name:            fmt.Sprintf("fk_%s_%s", table.Name, fromCol),
				ReferencedTable: refTable,
			}
			byID[id] = fk
			order = append(order, id)
		}
		fk.Columns = append(fk.Columns, fromCol)
		fk.ReferencedColumns = append(fk.ReferencedColumns, toCol.String)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	sort.Ints(order)
	for _, id := range order {
		table.ForeignKeys = append(table.ForeignKeys, byID[id])
	}
	return nil
}
