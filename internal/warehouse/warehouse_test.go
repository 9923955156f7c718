package warehouse

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hoopslab/etl/internal/models"
	"hoopslab/etl/internal/seed"
)

const script = `BEGIN;
INSERT OR IGNORE INTO leagues (league_id, name) VALUES
  ('NBA', 'National Basketball Association');
INSERT OR IGNORE INTO seasons (season_id, league_id, year_start, year_end) VALUES
  ('NBA_2025', 'NBA', 2024, 2025);
COMMIT;
`

func openMemory(t *testing.T) *SQLite {
	t.Helper()
	ctx := context.Background()

	wh, err := OpenSQLite(ctx, MemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { wh.Close() })

	require.NoError(t, wh.EnsureSchema(ctx))
	return wh
}

func TestTables(t *testing.T) {
	tables := Tables()

	assert.Len(t, tables, len(seed.ReferenceTables)+len(seed.DerivedTables)+1)
	assert.Equal(t, "leagues", tables[0])
	assert.Equal(t, "boxscore_lines", tables[len(seed.ReferenceTables)])
	assert.Equal(t, seed.RunsTable, tables[len(tables)-1])
}

func TestSchema(t *testing.T) {
	for _, driver := range []string{DriverSQLite, DriverPostgres} {
		ddl, err := Schema(driver)
		require.NoError(t, err, driver)
		for _, table := range Tables() {
			assert.Contains(t, ddl, "CREATE TABLE IF NOT EXISTS "+table+" (", "%s: %s", driver, table)
		}
	}

	_, err := Schema("mysql")
	assert.Error(t, err)
}

func TestSQLite_SchemaMatchesModels(t *testing.T) {
	wh := openMemory(t)

	tables, err := (&seed.Dataset{}).Tables()
	require.NoError(t, err)
	run, err := seed.RunRow(models.ETLRun{})
	require.NoError(t, err)
	tables = append(tables, run)

	for _, tbl := range tables {
		rows, err := wh.DB().Query("SELECT name FROM pragma_table_info('" + tbl.Name + "') ORDER BY cid")
		require.NoError(t, err, tbl.Name)

		var columns []string
		for rows.Next() {
			var name string
			require.NoError(t, rows.Scan(&name))
			columns = append(columns, name)
		}
		require.NoError(t, rows.Err())
		rows.Close()

		assert.Equal(t, tbl.Columns, columns, tbl.Name)
	}
}

func TestSQLite_EnsureSchemaTwice(t *testing.T) {
	wh := openMemory(t)
	assert.NoError(t, wh.EnsureSchema(context.Background()))
}

func TestSQLite_ApplyAndCounts(t *testing.T) {
	ctx := context.Background()
	wh := openMemory(t)

	require.NoError(t, wh.Apply(ctx, script))
	require.NoError(t, wh.Apply(ctx, script))

	counts, err := wh.Counts(ctx)
	require.NoError(t, err)
	assert.Len(t, counts, len(Tables()))
	assert.Equal(t, int64(1), counts["leagues"])
	assert.Equal(t, int64(1), counts["seasons"])
	assert.Equal(t, int64(0), counts["games"])
}

func TestSQLite_FailedScriptRollsBack(t *testing.T) {
	ctx := context.Background()
	wh := openMemory(t)

	broken := `BEGIN;
INSERT OR IGNORE INTO leagues (league_id, name) VALUES ('EL', 'EuroLeague');
INSERT INTO teams (team_id, league_id, season_id, name) VALUES ('EL_1', 'EL', 'EL_MISSING', 'Orphan');
COMMIT;
`
	err := wh.Apply(ctx, broken)
	require.Error(t, err)

	counts, err := wh.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), counts["leagues"])
	assert.Equal(t, int64(0), counts["teams"])

	// the connection is usable again
	require.NoError(t, wh.Apply(ctx, script))
}

func TestSQLite_ForeignKeysEnforced(t *testing.T) {
	wh := openMemory(t)

	_, err := wh.DB().Exec("INSERT INTO seasons (season_id, league_id, year_start, year_end) VALUES ('X', 'NOPE', 2024, 2025)")
	assert.Error(t, err)
}

func TestSQLite_FileDatabase(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "nested", "warehouse.db")

	wh, err := OpenSQLite(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, wh.EnsureSchema(ctx))
	require.NoError(t, wh.Apply(ctx, script))
	require.NoError(t, wh.Health(ctx))
	require.NoError(t, wh.Close())

	reopened, err := OpenSQLite(ctx, dsn)
	require.NoError(t, err)
	defer reopened.Close()

	counts, err := reopened.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts["leagues"])
}

func TestApplyFile(t *testing.T) {
	ctx := context.Background()
	wh := openMemory(t)

	path := filepath.Join(t.TempDir(), "d1_upload.sql")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o644))
	require.NoError(t, ApplyFile(ctx, wh, path))

	err := ApplyFile(ctx, wh, filepath.Join(t.TempDir(), "missing.sql"))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "failed to read artifact"))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	wh, err := Open(ctx, DriverSQLite, "")
	require.NoError(t, err)
	defer wh.Close()
	assert.NoError(t, wh.Health(ctx))

	_, err = Open(ctx, "mysql", "")
	assert.EqualError(t, err, `unknown warehouse driver "mysql"`)
}
