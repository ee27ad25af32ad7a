package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"

	"storefront/internal/config"
	"storefront/internal/infrastructure/mysql"
	"storefront/internal/infrastructure/schema"
	"storefront/internal/infrastructure/sqlite"
)

// SetupTestDB opens a fresh in-memory SQLite database with the storefront
// schema applied. When STOREFRONT_TEST_MYSQL_HOST is set the tests run
// against that MySQL server instead, and are skipped if it cannot be reached.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	if host := os.Getenv("STOREFRONT_TEST_MYSQL_HOST"); host != "" {
		return setupMySQL(t, host)
	}

	db, err := sqlite.NewConnection(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := schema.Apply(context.Background(), db, config.DriverSQLite); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}

	return db
}

func setupMySQL(t *testing.T, host string) *sql.DB {
	db, err := mysql.NewConnection(config.DatabaseConfig{
		Host:         host,
		Port:         3306,
		User:         "root",
		Name:         "storefront_test",
		MaxOpenConns: 5,
		MaxIdleConns: 1,
	})
	if err != nil {
		t.Skipf("test database not available: %v", err)
	}
	if err := schema.Apply(context.Background(), db, config.DriverMySQL); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}
	return db
}

// CleanupTestDB empties every table and closes the database.
func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	tables := []string{"WebhookEvents", "OrderItems", "Orders", "Products", "Formats"}
	for _, table := range tables {
		_, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}

	db.Close()
}
