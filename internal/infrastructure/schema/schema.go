package schema

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"

	"storefront/internal/config"
)

//go:embed mysql.sql sqlite.sql
var files embed.FS

// Apply creates every table the storefront needs. Statements are idempotent,
// so Apply runs on each start as well as from the migrate command.
func Apply(ctx context.Context, db *sql.DB, driver string) error {
	var name string
	switch driver {
	case config.DriverMySQL:
		name = "mysql.sql"
	case config.DriverSQLite:
		name = "sqlite.sql"
	default:
		return fmt.Errorf("no schema for driver %q", driver)
	}

	content, err := files.ReadFile(name)
	if err != nil {
		return fmt.Errorf("reading schema %s: %w", name, err)
	}

	for _, stmt := range Statements(string(content)) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema statement %q: %w", firstLine(stmt), err)
		}
	}

	return nil
}

// Statements splits a schema file on semicolons that end a line.
func Statements(content string) []string {
	var stmts []string
	for _, part := range strings.Split(content, ";\n") {
		stmt := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(part), ";"))
		if stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

func firstLine(stmt string) string {
	if i := strings.IndexByte(stmt, '\n'); i >= 0 {
		return stmt[:i]
	}
	return stmt
}
