// Package inspect opens connections to the supported engines and extracts
// canonical schema models from their metadata catalogs. Each dialect has its
// own inspector; all of them normalize types, defaults, and ordinal positions
// so the diff engine never sees raw engine metadata.
package inspect

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"golang.org/x/sync/errgroup"

	"github.com/schemalign/schemalign/internal/config"
	"github.com/schemalign/schemalign/internal/dialect"
	"github.com/schemalign/schemalign/internal/ir"
	"github.com/schemalign/schemalign/internal/logger"
)

var (
	// ErrConnection marks network, auth, or engine-unreachable failures
	ErrConnection = errors.New("connection failed")

	// ErrTableNotFound is returned by TableInfo for an absent table
	ErrTableNotFound = errors.New("table not found")
)

// tableFetchParallelism bounds concurrent per-table metadata queries on one
// connection pool
const tableFetchParallelism = 4

// Inspector extracts canonical table models from a live connection
type Inspector interface {
	// ListTables returns the base table names, sorted, excluding engine
	// internals
	ListTables(ctx context.Context) ([]string, error)

	// TableInfo introspects one table; returns ErrTableNotFound if absent
	TableInfo(ctx context.Context, name string) (*ir.Table, error)
}

// Conn is one open database handle plus the metadata needed to inspect it
type Conn struct {
	DB      *sql.DB
	Dialect ir.Dialect
	Name    string
}

// Close releases the underlying pool
func (c *Conn) Close() error {
	return c.DB.Close()
}

// Connect opens and verifies a connection described by the configuration.
// The timeout covers both dialing and the verification ping; failures wrap
// ErrConnection so callers can classify them.
func Connect(ctx context.Context, db config.Database, timeout time.Duration) (*Conn, error) {
	d, err := db.Dialect()
	if err != nil {
		return nil, err
	}

	driver, dsn, err := buildDSN(d, db)
	if err != nil {
		return nil, err
	}

	handle, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrConnection, db.Name, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := handle.PingContext(pingCtx); err != nil {
		handle.Close()
		return nil, fmt.Errorf("%w: ping %s: %v", ErrConnection, db.Name, err)
	}

	logger.Get().Debug("connected to database",
		"name", db.Name,
		"dialect", string(d))

	return &Conn{DB: handle, Dialect: d, Name: db.Name}, nil
}

// NewInspector returns the dialect-specific inspector for a connection
func NewInspector(conn *Conn) Inspector {
	switch conn.Dialect {
	case ir.DialectMySQL:
		return &mysqlInspector{db: conn.DB}
	case ir.DialectPostgres:
		return &postgresInspector{db: conn.DB}
	case ir.DialectSQLite:
		return &sqliteInspector{db: conn.DB}
	default:
		// Dialect parse happens before any connection is opened
		panic(fmt.Sprintf("no inspector for dialect %q", conn.Dialect))
	}
}

// BuildSchema introspects the requested tables into a schema. With all set,
// the table list comes from ListTables. Tables absent from the database are
// returned in notFound rather than failing the build; any other error aborts
// the whole introspection as a single fail-fast unit.
func BuildSchema(ctx context.Context, insp Inspector, d ir.Dialect, tables []string, all bool) (*ir.Schema, []string, error) {
	names := tables
	if all {
		listed, err := insp.ListTables(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to list tables: %w", err)
		}
		names = listed
	}

	results := make([]*ir.Table, len(names))
	missing := make([]bool, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(tableFetchParallelism)
	for i, name := range names {
		g.Go(func() error {
			table, err := insp.TableInfo(gctx, name)
			if errors.Is(err, ErrTableNotFound) {
				missing[i] = true
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to introspect table %s: %w", name, err)
			}
			results[i] = table
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	schema := ir.NewSchema(d)
	var notFound []string
	for i, name := range names {
		if missing[i] {
			notFound = append(notFound, name)
			continue
		}
		table := results[i]
		if err := table.Validate(); err != nil {
			return nil, nil, fmt.Errorf("invalid introspected table: %w", err)
		}
		schema.AddTable(table)
	}
	return schema, notFound, nil
}

// toCanonicalLogged converts a raw type and warns on unmapped types, which
// keeps the pass-through degrade visible without failing anything
func toCanonicalLogged(d ir.Dialect, raw, table, column string) ir.CanonicalType {
	t := dialect.ToCanonical(d, raw)
	if t.Kind == ir.TypeOther {
		logger.Get().Warn("unmapped column type passes through verbatim",
			"dialect", string(d),
			"table", table,
			"column", column,
			"type", raw)
	}
	return t
}
