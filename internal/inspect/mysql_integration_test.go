package inspect

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/schemalign/schemalign/internal/ir"
	"github.com/schemalign/schemalign/testutil"
)

func TestMySQLInspectorIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	container := testutil.StartMySQL(ctx, t)
	defer container.Terminate(ctx, t)

	mustExec(t, container.Conn,
		`CREATE TABLE users (
			id INT UNSIGNED NOT NULL AUTO_INCREMENT,
			email VARCHAR(100) NOT NULL COMMENT 'unique login address',
			balance DECIMAL(10,2) NOT NULL DEFAULT 0.00,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			notes TEXT,
			PRIMARY KEY (id),
			UNIQUE KEY idx_users_email (email)
		) ENGINE=InnoDB COMMENT='registered users'`,
		`CREATE TABLE orders (
			id BIGINT NOT NULL AUTO_INCREMENT,
			user_id INT UNSIGNED NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'pending' COMMENT 'order state',
			PRIMARY KEY (id),
			KEY idx_orders_user (user_id),
			CONSTRAINT fk_orders_user FOREIGN KEY (user_id) REFERENCES users (id)
		) ENGINE=InnoDB`,
	)

	conn, err := Connect(ctx, container.Database, 30*time.Second)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer conn.Close()

	schema, notFound, err := BuildSchema(ctx, NewInspector(conn), ir.DialectMySQL, nil, true)
	if err != nil {
		t.Fatalf("BuildSchema: %v", err)
	}
	if len(notFound) != 0 {
		t.Fatalf("unexpected missing tables: %v", notFound)
	}
	if diff := cmp.Diff([]string{"orders", "users"}, schema.TableOrder); diff != "" {
		t.Fatalf("table order mismatch (-want +got):\n%s", diff)
	}

	t.Run("users", func(t *testing.T) {
		table := schema.Tables["users"]
		if table.Comment != "registered users" {
			t.Errorf("table comment = %q, want %q", table.Comment, "registered users")
		}

		wantColumns := []*ir.Column{
			{Name: "id", Type: ir.CanonicalType{Kind: ir.TypeInteger, Unsigned: true, AutoIncrement: true}, Position: 1},
			{Name: "email", Type: ir.CanonicalType{Kind: ir.TypeVarChar, Length: 100}, Comment: "unique login address", Position: 2},
			{Name: "balance", Type: ir.CanonicalType{Kind: ir.TypeDecimal, Precision: 10, Scale: 2}, Default: strptr("0"), Position: 3},
			{Name: "created_at", Type: ir.CanonicalType{Kind: ir.TypeTimestamp}, Default: strptr(ir.DefaultCurrentTimestamp), Position: 4},
			{Name: "notes", Type: ir.CanonicalType{Kind: ir.TypeText}, Nullable: true, Position: 5},
		}
		if diff := cmp.Diff(wantColumns, table.Columns); diff != "" {
			t.Errorf("columns mismatch (-want +got):\n%s", diff)
		}

		if diff := cmp.Diff([]string{"id"}, table.PrimaryKey); diff != "" {
			t.Errorf("primary key mismatch (-want +got):\n%s", diff)
		}
		wantIndexes := []*ir.Index{
			{Name: "idx_users_email", Columns: []string{"email"}, Unique: true},
		}
		if diff := cmp.Diff(wantIndexes, table.Indexes); diff != "" {
			t.Errorf("indexes mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("orders", func(t *testing.T) {
		table := schema.Tables["orders"]

		wantColumns := []*ir.Column{
			{Name: "id", Type: ir.CanonicalType{Kind: ir.TypeBigInt, AutoIncrement: true}, Position: 1},
			{Name: "user_id", Type: ir.CanonicalType{Kind: ir.TypeInteger, Unsigned: true}, Position: 2},
			{Name: "status", Type: ir.CanonicalType{Kind: ir.TypeVarChar, Length: 20}, Default: strptr("pending"), Comment: "order state", Position: 3},
		}
		if diff := cmp.Diff(wantColumns, table.Columns); diff != "" {
			t.Errorf("columns mismatch (-want +got):\n%s", diff)
		}

		wantIndexes := []*ir.Index{
			{Name: "idx_orders_user", Columns: []string{"user_id"}},
		}
		if diff := cmp.Diff(wantIndexes, table.Indexes); diff != "" {
			t.Errorf("indexes mismatch (-want +got):\n%s", diff)
		}
		wantFKs := []*ir.ForeignKey{
			{Name: "fk_orders_user", Columns: []string{"user_id"}, ReferencedTable: "users", ReferencedColumns: []string{"id"}},
		}
		if diff := cmp.Diff(wantFKs, table.ForeignKeys); diff != "" {
			t.Errorf("foreign keys mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("missing table", func(t *testing.T) {
		_, notFound, err := BuildSchema(ctx, NewInspector(conn), ir.DialectMySQL, []string{"users", "ghost"}, false)
		if err != nil {
			t.Fatalf("BuildSchema: %v", err)
		}
		if diff := cmp.Diff([]string{"ghost"}, notFound); diff != "" {
			t.Errorf("notFound mismatch (-want +got):\n%s", diff)
		}
	})
}
