package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/glebarez/go-sqlite"
	"github.com/rs/zerolog/log"

	"hoopslab/etl/internal/metrics"
)

// MemoryDSN opens a private in-memory SQLite database
const MemoryDSN = ":memory:"

// SQLite is a file or in-memory SQLite warehouse, the local stand-in for D1
type SQLite struct {
	db  *sql.DB
	dsn string
}

// OpenSQLite opens the database at dsn, creating parent directories for
// file databases. Foreign keys are enforced as they are on D1.
func OpenSQLite(ctx context.Context, dsn string) (*SQLite, error) {
	if dsn == "" {
		dsn = MemoryDSN
	}
	if dsn != MemoryDSN {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create warehouse directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite warehouse: %w", err)
	}

	// One connection: scripts carry their own BEGIN/COMMIT and an
	// in-memory database exists only on the connection that created it.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	log.Info().Str("dsn", dsn).Msg("SQLite warehouse opened")
	return &SQLite{db: db, dsn: dsn}, nil
}

// DB returns the underlying database handle
func (s *SQLite) DB() *sql.DB {
	return s.db
}

// EnsureSchema creates any missing tables
func (s *SQLite) EnsureSchema(ctx context.Context) error {
	ddl, err := Schema(DriverSQLite)
	if err != nil {
		return err
	}

	start := time.Now()
	_, err = s.db.ExecContext(ctx, ddl)
	recordQuery("ensure_schema", "*", err, start)
	if err != nil {
		return fmt.Errorf("failed to create sqlite schema: %w", err)
	}
	return nil
}

// Apply executes an artifact script. A failing script is rolled back.
func (s *SQLite) Apply(ctx context.Context, script string) error {
	start := time.Now()
	_, err := s.db.ExecContext(ctx, script)
	recordQuery("apply", "*", err, start)
	if err != nil {
		// no-op unless the script failed inside its own transaction
		_, _ = s.db.ExecContext(context.WithoutCancel(ctx), "ROLLBACK")
		return fmt.Errorf("failed to apply artifact: %w", err)
	}

	log.Info().
		Str("dsn", s.dsn).
		Dur("duration", time.Since(start)).
		Msg("Artifact applied to SQLite warehouse")
	return nil
}

// Counts returns the row count of every warehouse table
func (s *SQLite) Counts(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, table := range Tables() {
		var n int64
		start := time.Now()
		err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n)
		recordQuery("count", table, err, start)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}

// Health checks if the database is reachable
func (s *SQLite) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite health check failed: %w", err)
	}
	return nil
}

// Close closes the database
func (s *SQLite) Close() error {
	return s.db.Close()
}

func recordQuery(operation, table string, err error, start time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RecordDBQuery(operation, table, status, time.Since(start).Seconds())
}
