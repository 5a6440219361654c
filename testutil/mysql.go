package testutil

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"

	"github.com/schemalign/schemalign/internal/config"
)

// mysqlVersion returns the MySQL version to test against.
// It reads from the SCHEMALIGN_MYSQL_VERSION environment variable,
// defaulting to "8.4" if not set.
func mysqlVersion() string {
	if version := os.Getenv("SCHEMALIGN_MYSQL_VERSION"); version != "" {
		return version
	}
	return "8.4"
}

// StartMySQL creates a new MySQL test container.
func StartMySQL(ctx context.Context, t *testing.T) *ContainerInfo {
	t.Helper()

	mysqlContainer, err := mysql.Run(ctx,
		"mysql:"+mysqlVersion(),
		mysql.WithDatabase("schemalign"),
		mysql.WithUsername("schemalign"),
		mysql.WithPassword("schemalign"),
		testcontainers.WithLogger(suppressedLogger),
	)
	if err != nil {
		t.Fatalf("failed to start mysql container: %v", err)
	}

	dsn, err := mysqlContainer.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	conn, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to connect to mysql: %v", err)
	}

	host, err := mysqlContainer.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := mysqlContainer.MappedPort(ctx, "3306")
	if err != nil {
		t.Fatalf("failed to get container port: %v", err)
	}

	return &ContainerInfo{
		Container: mysqlContainer,
		Database: config.Database{
			Name:     "mysql_container",
			Type:     "mysql",
			Host:     host,
			Port:     port.Int(),
			User:     "schemalign",
			Password: "schemalign",
			Database: "schemalign",
		},
		DSN:  dsn,
		Conn: conn,
	}
}
