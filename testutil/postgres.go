// Package testutil provides shared container helpers for schemalign integration tests.
package testutil

import (
	"context"
	"database/sql"
	"io"
	"log"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/schemalign/schemalign/internal/config"
)

var suppressedLogger = log.New(io.Discard, "", 0)

// postgresVersion returns the PostgreSQL version to test against.
// It reads from the SCHEMALIGN_POSTGRES_VERSION environment variable,
// defaulting to "17" if not set.
func postgresVersion() string {
	if version := os.Getenv("SCHEMALIGN_POSTGRES_VERSION"); version != "" {
		return version
	}
	return "17"
}

// ContainerInfo holds a started database container and its connection details.
// Database is ready to drop into a schemalign config as a template or target
// entry; Conn is a direct connection for seeding schema objects.
type ContainerInfo struct {
	Container testcontainers.Container
	Database  config.Database
	DSN       string
	Conn      *sql.DB
}

// StartPostgres creates a new PostgreSQL test container.
func StartPostgres(ctx context.Context, t *testing.T) *ContainerInfo {
	t.Helper()

	pgContainer, err := postgres.Run(ctx,
		"postgres:"+postgresVersion()+"-alpine",
		postgres.WithDatabase("schemalign"),
		postgres.WithUsername("schemalign"),
		postgres.WithPassword("schemalign"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
		testcontainers.WithLogger(suppressedLogger),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("failed to connect to postgres: %v", err)
	}

	host, err := pgContainer.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := pgContainer.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("failed to get container port: %v", err)
	}

	return &ContainerInfo{
		Container: pgContainer,
		Database: config.Database{
			Name:     "postgres_container",
			Type:     "postgres",
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

// Terminate cleans up the container and connection.
func (ci *ContainerInfo) Terminate(ctx context.Context, t *testing.T) {
	ci.Conn.Close()
	if err := ci.Container.Terminate(ctx); err != nil {
		t.Logf("failed to terminate container: %v", err)
	}
}
