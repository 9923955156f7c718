package sqlwriter

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"
	"github.com/valyala/bytebufferpool"
)

// Row is one table row keyed by column name
type Row map[string]any

// State is the lifecycle position of a Writer
type State int

const (
	// StateOpen means the artifact is reserved but no transaction has begun
	StateOpen State = iota
	// StateBegun means BEGIN has been emitted and statements are accepted
	StateBegun
	// StateClosed means the writer committed or aborted
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateBegun:
		return "begun"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Option configures a Writer
type Option func(*Writer)

// WithDialect selects the SQL dialect (default DialectSQLite)
func WithDialect(d Dialect) Option {
	return func(w *Writer) {
		w.dialect = d
	}
}

// Writer accumulates statements in memory and publishes them as one
// transaction script on Commit. The target path only ever holds a complete
// script: statements go to a temp file in the same directory that is renamed
// into place after it has been synced.
type Writer struct {
	path       string
	dialect    Dialect
	state      State
	tmp        *os.File
	buf        *bytebufferpool.ByteBuffer
	statements int
}

// Open reserves path for a new script, creating parent directories as needed
func Open(path string, opts ...Option) (*Writer, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlwriter: output path is required")
	}

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return nil, errors.Newf("sqlwriter: output path %s is a directory", path)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create output directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, errors.Wrapf(err, "open output %s", path)
	}

	w := &Writer{
		path:    path,
		dialect: DialectSQLite,
		state:   StateOpen,
		tmp:     tmp,
		buf:     bytebufferpool.Get(),
	}
	for _, opt := range opts {
		opt(w)
	}

	log.Debug().
		Str("path", path).
		Str("dialect", string(w.dialect)).
		Msg("SQL writer opened")

	return w, nil
}

// Path returns the artifact path
func (w *Writer) Path() string {
	return w.path
}

// State returns the current lifecycle state
func (w *Writer) State() State {
	return w.state
}

// Statements returns the number of statements written so far, BEGIN and COMMIT included
func (w *Writer) Statements() int {
	return w.statements
}

// Begin emits the transaction start
func (w *Writer) Begin() error {
	switch w.state {
	case StateClosed:
		return ErrWriterClosed
	case StateBegun:
		return w.fail(ErrAlreadyBegun)
	}

	w.emit("BEGIN;\n")
	w.state = StateBegun
	return nil
}

// InsertManyIgnore renders rows as one multi-row insert that skips rows whose
// primary key already exists. Only the listed columns are emitted, in the
// listed order; a row lacking one of them is a schema mismatch. An empty row
// set emits nothing.
func (w *Writer) InsertManyIgnore(table string, rows []Row, columns []string) error {
	if err := w.requireBegun(); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	stmt, err := w.renderInsert(table, rows, columns)
	if err != nil {
		return w.fail(err)
	}

	w.emit(stmt)
	log.Debug().
		Str("table", table).
		Int("rows", len(rows)).
		Msg("Insert statement rendered")
	return nil
}

// WriteRaw appends a statement verbatim. Its syntax is not checked.
func (w *Writer) WriteRaw(fragment string) error {
	if err := w.requireBegun(); err != nil {
		return err
	}

	if !strings.HasSuffix(fragment, "\n") {
		fragment += "\n"
	}
	w.emit(fragment)
	return nil
}

// Commit emits the transaction end and publishes the script at Path
func (w *Writer) Commit() error {
	if err := w.requireBegun(); err != nil {
		return err
	}

	w.emit("COMMIT;\n")

	if _, err := w.tmp.Write(w.buf.B); err != nil {
		return w.fail(errors.Wrap(err, "write script"))
	}
	if err := w.tmp.Chmod(0o644); err != nil {
		return w.fail(errors.Wrap(err, "chmod script"))
	}
	if err := w.tmp.Sync(); err != nil {
		return w.fail(errors.Wrap(err, "sync script"))
	}
	tmpName := w.tmp.Name()
	if err := w.tmp.Close(); err != nil {
		w.tmp = nil
		_ = os.Remove(tmpName)
		return w.fail(errors.Wrap(err, "close script"))
	}
	w.tmp = nil

	if err := os.Rename(tmpName, w.path); err != nil {
		_ = os.Remove(tmpName)
		return w.fail(errors.Wrapf(err, "publish script %s", w.path))
	}

	size := w.buf.Len()
	w.release()

	log.Info().
		Str("path", w.path).
		Int("statements", w.statements).
		Int("bytes", size).
		Msg("SQL script committed")
	return nil
}

// Abort discards buffered statements and releases the temp file. It is safe
// to call on a writer in any state.
func (w *Writer) Abort() error {
	if w.state == StateClosed {
		return nil
	}
	w.release()
	return nil
}

func (w *Writer) requireBegun() error {
	switch w.state {
	case StateClosed:
		return ErrWriterClosed
	case StateOpen:
		return w.fail(ErrNotBegun)
	}
	return nil
}

// fail aborts the writer and returns err
func (w *Writer) fail(err error) error {
	log.Error().
		Err(err).
		Str("path", w.path).
		Str("state", w.state.String()).
		Msg("SQL writer aborted")
	w.release()
	return err
}

func (w *Writer) release() {
	if w.tmp != nil {
		name := w.tmp.Name()
		_ = w.tmp.Close()
		_ = os.Remove(name)
		w.tmp = nil
	}
	if w.buf != nil {
		bytebufferpool.Put(w.buf)
		w.buf = nil
	}
	w.state = StateClosed
}

func (w *Writer) emit(stmt string) {
	_, _ = w.buf.WriteString(stmt)
	w.statements++
}

func (w *Writer) renderInsert(table string, rows []Row, columns []string) (string, error) {
	if !validIdentifier(table) {
		return "", errors.Wrapf(ErrInvalidIdentifier, "table %q", table)
	}
	if len(columns) == 0 {
		return "", errors.Newf("sqlwriter: table %s: columns are required", table)
	}
	for _, col := range columns {
		if !validIdentifier(col) {
			return "", errors.Wrapf(ErrInvalidIdentifier, "table %s column %q", table, col)
		}
	}

	var b strings.Builder
	if w.dialect == DialectSQLite {
		b.WriteString("INSERT OR IGNORE INTO ")
	} else {
		b.WriteString("INSERT INTO ")
	}
	b.WriteString(table)
	b.WriteString(" (")
	b.WriteString(strings.Join(columns, ", "))
	b.WriteString(") VALUES\n")

	for rowIdx, row := range rows {
		if rowIdx > 0 {
			b.WriteString(",\n")
		}
		b.WriteString("  (")
		for colIdx, col := range columns {
			value, ok := row[col]
			if !ok {
				return "", &SchemaMismatchError{Table: table, Row: rowIdx, Column: col}
			}
			lit, err := w.dialect.Literal(value)
			if err != nil {
				return "", &ValueError{Table: table, Row: rowIdx, Column: col, Err: err}
			}
			if colIdx > 0 {
				b.WriteString(", ")
			}
			b.WriteString(lit)
		}
		b.WriteString(")")
	}

	if w.dialect == DialectPostgres {
		b.WriteString("\nON CONFLICT DO NOTHING")
	}
	b.WriteString(";\n")

	return b.String(), nil
}
