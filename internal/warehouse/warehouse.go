// Package warehouse applies nightly SQL artifacts to a SQLite or
// PostgreSQL database.
package warehouse

import (
	"context"
	"embed"
	"fmt"
	"os"

	"hoopslab/etl/internal/seed"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Warehouse is a database the nightly artifact can be loaded into
type Warehouse interface {
	// EnsureSchema creates any missing tables
	EnsureSchema(ctx context.Context) error
	// Apply runs a complete artifact script
	Apply(ctx context.Context, script string) error
	// Counts returns the row count of every warehouse table
	Counts(ctx context.Context) (map[string]int64, error)
	Health(ctx context.Context) error
	Close() error
}

// Open connects to the warehouse for driver
func Open(ctx context.Context, driver, dsn string) (Warehouse, error) {
	switch driver {
	case DriverSQLite:
		return OpenSQLite(ctx, dsn)
	case DriverPostgres:
		return OpenPostgres(ctx, dsn)
	default:
		return nil, fmt.Errorf("unknown warehouse driver %q", driver)
	}
}

// ApplyFile loads the artifact at path into w
func ApplyFile(ctx context.Context, w Warehouse, path string) error {
	script, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read artifact %s: %w", path, err)
	}
	return w.Apply(ctx, string(script))
}

// Tables lists every warehouse table in load order
func Tables() []string {
	tables := make([]string, 0, len(seed.ReferenceTables)+len(seed.DerivedTables)+1)
	tables = append(tables, seed.ReferenceTables...)
	tables = append(tables, seed.DerivedTables...)
	return append(tables, seed.RunsTable)
}

// Schema returns the DDL for a driver
func Schema(driver string) (string, error) {
	ddl, err := schemaFS.ReadFile("schema/" + driver + ".sql")
	if err != nil {
		return "", fmt.Errorf("no schema for driver %q: %w", driver, err)
	}
	return string(ddl), nil
}
