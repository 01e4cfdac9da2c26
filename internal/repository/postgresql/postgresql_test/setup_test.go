package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
)

// tables in truncation order; CASCADE takes care of the rest
var tables = []string{
	"notifications",
	"leave_balances",
	"leave_requests",
	"leave_types",
	"attendance",
	"system_settings",
	"holidays",
	"refresh_tokens",
	"employees",
	"teams",
	"users",
	"companies",
}

// NewTestDatabase connects to TEST_DATABASE_URL, applies migrations and
// empties every table. The test is skipped when the variable is unset.
func NewTestDatabase(t testing.TB) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, dsn)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	t.Cleanup(db.Close)

	migrator, err := database.NewMigrator(db)
	if err != nil {
		t.Fatalf("failed to load migrations: %v", err)
	}
	if _, err := migrator.Up(ctx); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	if err := TruncateAllTables(ctx, db); err != nil {
		t.Fatalf("%v", err)
	}
	return db
}

// TruncateAllTables removes all rows from the application tables.
func TruncateAllTables(ctx context.Context, db *database.DB) error {
	_, err := db.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", strings.Join(tables, ", ")))
	if err != nil {
		return fmt.Errorf("failed to truncate tables: %w", err)
	}
	return nil
}
