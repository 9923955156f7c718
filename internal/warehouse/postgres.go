package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"hoopslab/etl/internal/metrics"
)

// Postgres is a PostgreSQL warehouse backed by a pgx pool
type Postgres struct {
	Pool *pgxpool.Pool
}

// OpenPostgres creates a connection pool for dsn and verifies it
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	// The loader runs one script at a time
	poolConfig.MaxConns = 4
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().
		Str("host", poolConfig.ConnConfig.Host).
		Uint16("port", poolConfig.ConnConfig.Port).
		Str("database", poolConfig.ConnConfig.Database).
		Msg("Successfully connected to database")

	return &Postgres{Pool: pool}, nil
}

// EnsureSchema creates any missing tables
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	ddl, err := Schema(DriverPostgres)
	if err != nil {
		return err
	}

	start := time.Now()
	_, err = p.Pool.Exec(ctx, ddl)
	recordQuery("ensure_schema", "*", err, start)
	if err != nil {
		return fmt.Errorf("failed to create postgres schema: %w", err)
	}
	return nil
}

// Apply executes an artifact script. Without arguments pgx uses the simple
// protocol, so the whole multi-statement script runs on one connection and a
// failure aborts its transaction.
func (p *Postgres) Apply(ctx context.Context, script string) error {
	start := time.Now()
	_, err := p.Pool.Exec(ctx, script)
	recordQuery("apply", "*", err, start)
	p.updatePoolStats()
	if err != nil {
		return fmt.Errorf("failed to apply artifact: %w", err)
	}

	log.Info().
		Dur("duration", time.Since(start)).
		Msg("Artifact applied to PostgreSQL warehouse")
	return nil
}

// Counts returns the row count of every warehouse table
func (p *Postgres) Counts(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, table := range Tables() {
		var n int64
		start := time.Now()
		err := p.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n)
		recordQuery("count", table, err, start)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}

// Health checks if the database is healthy
func (p *Postgres) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := p.Pool.Ping(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// PoolStats returns database pool statistics
func (p *Postgres) PoolStats() map[string]interface{} {
	stat := p.Pool.Stat()
	return map[string]interface{}{
		"total_conns":    stat.TotalConns(),
		"acquired_conns": stat.AcquiredConns(),
		"idle_conns":     stat.IdleConns(),
		"max_conns":      stat.MaxConns(),
	}
}

// Close closes the connection pool
func (p *Postgres) Close() error {
	if p.Pool != nil {
		p.Pool.Close()
		log.Info().Msg("Database connection pool closed")
	}
	return nil
}

func (p *Postgres) updatePoolStats() {
	stat := p.Pool.Stat()
	metrics.UpdateDBConnectionStats(stat.AcquiredConns(), stat.IdleConns())
}
