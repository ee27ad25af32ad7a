package schema

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/config"
	"storefront/internal/infrastructure/sqlite"
)

func TestStatements(t *testing.T) {
	stmts := Statements("CREATE TABLE a (id INT);\n\nCREATE TABLE b (id INT);\n")

	assert.Equal(t, []string{"CREATE TABLE a (id INT)", "CREATE TABLE b (id INT)"}, stmts)
}

func TestEmbeddedSchemas_HaveEveryTable(t *testing.T) {
	for _, name := range []string{"mysql.sql", "sqlite.sql"} {
		content, err := files.ReadFile(name)
		require.NoError(t, err)

		for _, table := range []string{"Formats", "Products", "Orders", "OrderItems", "WebhookEvents"} {
			assert.Contains(t, string(content), "CREATE TABLE IF NOT EXISTS "+table+" (", name)
		}
	}
}

func TestApply_SQLiteIsIdempotent(t *testing.T) {
	db, err := sqlite.NewConnection(":memory:")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Apply(context.Background(), db, config.DriverSQLite))
	require.NoError(t, Apply(context.Background(), db, config.DriverSQLite))

	var count int
	err = db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('Formats','Products','Orders','OrderItems','WebhookEvents')`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestApply_UnknownDriver(t *testing.T) {
	err := Apply(context.Background(), nil, "postgres")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no schema for driver")
}
