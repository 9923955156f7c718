package sqlwriter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestWriter(t *testing.T, opts ...Option) (*Writer, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "etl_out", "d1_upload.sql")
	w, err := Open(path, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Abort() })
	return w, path
}

func readScript(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func leagueRows() []Row {
	return []Row{
		{"league_id": "NBA", "name": "National Basketball Association"},
		{"league_id": "EL", "name": "EuroLeague"},
	}
}

func TestWriter_Script(t *testing.T) {
	w, path := openTestWriter(t)

	require.NoError(t, w.Begin())
	require.NoError(t, w.InsertManyIgnore("leagues", leagueRows(), []string{"league_id", "name"}))
	require.NoError(t, w.WriteRaw("DELETE FROM boxscore_lines;"))
	require.NoError(t, w.Commit())

	want := "BEGIN;\n" +
		"INSERT OR IGNORE INTO leagues (league_id, name) VALUES\n" +
		"  ('NBA', 'National Basketball Association'),\n" +
		"  ('EL', 'EuroLeague');\n" +
		"DELETE FROM boxscore_lines;\n" +
		"COMMIT;\n"
	assert.Equal(t, want, readScript(t, path))
	assert.Equal(t, StateClosed, w.State())
	assert.Equal(t, 4, w.Statements())
}

func TestWriter_PostgresDialect(t *testing.T) {
	w, path := openTestWriter(t, WithDialect(DialectPostgres))

	require.NoError(t, w.Begin())
	require.NoError(t, w.InsertManyIgnore("leagues", leagueRows()[:1], []string{"league_id", "name"}))
	require.NoError(t, w.Commit())

	script := readScript(t, path)
	assert.Contains(t, script, "INSERT INTO leagues (league_id, name) VALUES\n  ('NBA', 'National Basketball Association')\nON CONFLICT DO NOTHING;\n")
	assert.NotContains(t, script, "OR IGNORE")
}

func TestWriter_TupleCountAndColumnOrder(t *testing.T) {
	w, path := openTestWriter(t)

	rows := []Row{
		{"a": 1, "b": "x", "c": 1.5, "extra": "ignored"},
		{"a": 2, "b": "y", "c": nil},
		{"a": 3, "b": "z", "c": 0.25},
	}
	require.NoError(t, w.Begin())
	require.NoError(t, w.InsertManyIgnore("t", rows, []string{"c", "a", "b"}))
	require.NoError(t, w.Commit())

	var tuples []string
	for _, line := range strings.Split(readScript(t, path), "\n") {
		if strings.HasPrefix(line, "  (") {
			tuples = append(tuples, line)
		}
	}
	require.Len(t, tuples, len(rows))
	assert.Equal(t, "  (1.5, 1, 'x'),", tuples[0])
	assert.Equal(t, "  (NULL, 2, 'y'),", tuples[1])
	assert.Equal(t, "  (0.25, 3, 'z');", tuples[2])
	assert.NotContains(t, readScript(t, path), "ignored")
}

func TestWriter_EmptyRowsEmitNothing(t *testing.T) {
	w, path := openTestWriter(t)

	require.NoError(t, w.Begin())
	require.NoError(t, w.InsertManyIgnore("leagues", nil, []string{"league_id"}))
	require.NoError(t, w.Commit())

	assert.Equal(t, "BEGIN;\nCOMMIT;\n", readScript(t, path))
}

func TestWriter_InsertBeforeBegin(t *testing.T) {
	w, path := openTestWriter(t)

	err := w.InsertManyIgnore("leagues", leagueRows(), []string{"league_id", "name"})
	assert.ErrorIs(t, err, ErrNotBegun)
	assert.Equal(t, StateClosed, w.State())
	assert.NoFileExists(t, path)
}

func TestWriter_RawBeforeBegin(t *testing.T) {
	w, _ := openTestWriter(t)
	assert.ErrorIs(t, w.WriteRaw("DELETE FROM games;"), ErrNotBegun)
}

func TestWriter_BeginTwice(t *testing.T) {
	w, _ := openTestWriter(t)
	require.NoError(t, w.Begin())
	assert.ErrorIs(t, w.Begin(), ErrAlreadyBegun)
}

func TestWriter_CommitTwice(t *testing.T) {
	w, path := openTestWriter(t)
	require.NoError(t, w.Begin())
	require.NoError(t, w.Commit())
	committed := readScript(t, path)

	assert.ErrorIs(t, w.Commit(), ErrWriterClosed)
	assert.ErrorIs(t, w.InsertManyIgnore("leagues", leagueRows(), []string{"league_id"}), ErrWriterClosed)
	assert.ErrorIs(t, w.WriteRaw("DELETE FROM games;"), ErrWriterClosed)
	assert.ErrorIs(t, w.Begin(), ErrWriterClosed)
	assert.Equal(t, committed, readScript(t, path), "closed writer must not touch the artifact")
}

func TestWriter_CommitBeforeBegin(t *testing.T) {
	w, path := openTestWriter(t)
	assert.ErrorIs(t, w.Commit(), ErrNotBegun)
	assert.NoFileExists(t, path)
}

func TestWriter_MissingColumnAborts(t *testing.T) {
	w, path := openTestWriter(t)
	require.NoError(t, w.Begin())

	rows := []Row{
		{"league_id": "NBA", "name": "National Basketball Association"},
		{"league_id": "EL"},
	}
	err := w.InsertManyIgnore("leagues", rows, []string{"league_id", "name"})

	var mismatch *SchemaMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "leagues", mismatch.Table)
	assert.Equal(t, 1, mismatch.Row)
	assert.Equal(t, "name", mismatch.Column)

	assert.Equal(t, StateClosed, w.State())
	assert.ErrorIs(t, w.Commit(), ErrWriterClosed)
	assert.NoFileExists(t, path)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Empty(t, entries, "temp file must be removed on abort")
}

func TestWriter_UnserializableValueAborts(t *testing.T) {
	w, _ := openTestWriter(t)
	require.NoError(t, w.Begin())

	err := w.InsertManyIgnore("t", []Row{{"v": struct{}{}}}, []string{"v"})
	var valueErr *ValueError
	require.True(t, errors.As(err, &valueErr))
	assert.Equal(t, "v", valueErr.Column)
	assert.Equal(t, StateClosed, w.State())
}

func TestWriter_UnreadableTextAborts(t *testing.T) {
	w, path := openTestWriter(t)
	require.NoError(t, w.Begin())

	rows := []Row{
		{"league_id": "X\x00Y", "name": "n"},
		{"league_id": "Z", "name": "n"},
	}
	err := w.InsertManyIgnore("leagues", rows, []string{"league_id", "name"})
	var valueErr *ValueError
	require.True(t, errors.As(err, &valueErr))
	assert.Equal(t, 0, valueErr.Row)
	assert.Equal(t, "league_id", valueErr.Column)
	assert.ErrorIs(t, err, errInvalidText)

	assert.Equal(t, StateClosed, w.State())
	assert.ErrorIs(t, w.Commit(), ErrWriterClosed)
	assert.NoFileExists(t, path)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWriter_InvalidIdentifiers(t *testing.T) {
	w, _ := openTestWriter(t)
	require.NoError(t, w.Begin())
	err := w.InsertManyIgnore("leagues; DROP TABLE x", leagueRows(), []string{"league_id"})
	assert.ErrorIs(t, err, ErrInvalidIdentifier)

	w2, _ := openTestWriter(t)
	require.NoError(t, w2.Begin())
	err = w2.InsertManyIgnore("leagues", leagueRows(), []string{"league id"})
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
}

func TestWriter_AbortLeavesNoArtifact(t *testing.T) {
	w, path := openTestWriter(t)
	require.NoError(t, w.Begin())
	require.NoError(t, w.InsertManyIgnore("leagues", leagueRows(), []string{"league_id", "name"}))
	require.NoError(t, w.Abort())
	require.NoError(t, w.Abort())

	assert.NoFileExists(t, path)
	assert.ErrorIs(t, w.Commit(), ErrWriterClosed)
}

func TestWriter_ReplacesPreviousArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "d1_upload.sql")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	w, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, w.Begin())
	require.NoError(t, w.Commit())

	assert.Equal(t, "BEGIN;\nCOMMIT;\n", readScript(t, path))
}

func TestOpen_CreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "c", "out.sql")
	w, err := Open(path)
	require.NoError(t, err)
	defer w.Abort()

	assert.DirExists(t, filepath.Dir(path))
	assert.Equal(t, StateOpen, w.State())
	assert.Equal(t, path, w.Path())
}

func TestOpen_Unwritable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	_, err := Open(filepath.Join(blocker, "out.sql"))
	assert.Error(t, err)

	_, err = Open(dir)
	assert.Error(t, err, "directory path must be rejected")

	_, err = Open("  ")
	assert.Error(t, err)
}
