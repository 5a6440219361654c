package inspect

import (
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/schemalign/schemalign/internal/config"
	"github.com/schemalign/schemalign/internal/ir"
)

// buildDSN constructs the driver name and connection string for a configured
// database
func buildDSN(d ir.Dialect, db config.Database) (driver, dsn string, err error) {
	switch d {
	case ir.DialectMySQL:
		return "mysql", buildMySQLDSN(db), nil
	case ir.DialectPostgres:
		return "pgx", buildPostgresDSN(db), nil
	case ir.DialectSQLite:
		path := db.Path
		if path == "" {
			path = db.Database
		}
		if path == "" {
			return "", "", fmt.Errorf("sqlite database %s: path is required", db.Name)
		}
		return "sqlite", path, nil
	default:
		return "", "", fmt.Errorf("unsupported dialect: %q", d)
	}
}

// buildMySQLDSN uses the driver's own config type so escaping and defaults
// stay correct
func buildMySQLDSN(db config.Database) string {
	cfg := mysql.NewConfig()
	cfg.User = db.User
	cfg.Passwd = db.Password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", db.Host, db.Port)
	cfg.DBName = db.Database
	cfg.ParseTime = true
	return cfg.FormatDSN()
}

// buildPostgresDSN constructs a keyword/value connection string
func buildPostgresDSN(db config.Database) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("host=%s", db.Host))
	parts = append(parts, fmt.Sprintf("port=%d", db.Port))
	parts = append(parts, fmt.Sprintf("dbname=%s", db.Database))
	parts = append(parts, fmt.Sprintf("user=%s", db.User))

	if db.Password != "" {
		parts = append(parts, fmt.Sprintf("password=%s", db.Password))
	}

	// Try TLS, fall back to plaintext; servers without SSL stay reachable
	parts = append(parts, "sslmode=prefer")

	return strings.Join(parts, " ")
}
