// Package job builds the nightly warehouse artifact.
package job

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"

	"hoopslab/etl/internal/metrics"
	"hoopslab/etl/internal/models"
	"hoopslab/etl/internal/seed"
	"hoopslab/etl/internal/sqlwriter"
)

const (
	// ArtifactName is the file written under the output directory
	ArtifactName = "d1_upload.sql"
	// DefaultOutDir is used when Options.OutDir is empty
	DefaultOutDir = "data/etl_out"
	// DefaultNotes is recorded on the etl_runs row
	DefaultNotes = "nightly artifact run"

	jobName = "nightly"
)

// Options configures a nightly run
type Options struct {
	OutDir string
	// Dataset defaults to the embedded seed. Run stamps its derived rows.
	Dataset *seed.Dataset
	Dialect sqlwriter.Dialect
	// Now defaults to time.Now. Runs with the same clock and dataset
	// produce byte-identical artifacts.
	Now   func() time.Time
	Notes string
}

// Result describes a committed artifact
type Result struct {
	Path       string
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	// Rows is the number of rows written per table, etl_runs included
	Rows       map[string]int
	Statements int
}

// RunID names a run by its UTC start time. Sub-second digits keep runs
// started within the same second distinct.
func RunID(started time.Time) string {
	return "nightly_" + started.UTC().Format(time.RFC3339Nano)
}

// Run writes the nightly artifact: reference inserts, a reset and reload of
// every derived table, and one audit row, all inside a single transaction.
// On error no artifact is left behind.
func Run(ctx context.Context, opts Options) (res *Result, err error) {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	started := now().UTC()

	defer func() {
		status := models.RunStatusSuccess
		if err != nil {
			status = models.RunStatusFailed
			metrics.RecordError(jobName, "run")
		}
		metrics.RecordJob(jobName, status, time.Since(started).Seconds())
	}()

	ds := opts.Dataset
	if ds == nil {
		if ds, err = seed.Default(); err != nil {
			return nil, err
		}
	} else if err = ds.Validate(); err != nil {
		return nil, err
	}
	ds.Stamp(started)

	tables, err := ds.Tables()
	if err != nil {
		return nil, err
	}

	outDir := opts.OutDir
	if outDir == "" {
		outDir = DefaultOutDir
	}
	dialect := opts.Dialect
	if dialect == "" {
		dialect = sqlwriter.DialectSQLite
	}

	path := filepath.Join(outDir, ArtifactName)
	w, err := sqlwriter.Open(path, sqlwriter.WithDialect(dialect))
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = w.Abort()
		}
	}()

	log.Info().
		Str("path", path).
		Str("dialect", string(dialect)).
		Str("run_id", RunID(started)).
		Msg("Nightly run started")

	if err = w.Begin(); err != nil {
		return nil, err
	}

	rows := make(map[string]int, len(tables)+1)
	insert := func(t seed.Table) error {
		if err := ctx.Err(); err != nil {
			return errors.Wrapf(err, "before %s", t.Name)
		}
		if err := w.InsertManyIgnore(t.Name, t.Rows, t.Columns); err != nil {
			return err
		}
		rows[t.Name] = len(t.Rows)
		return nil
	}

	for _, t := range tables {
		if t.Derived {
			continue
		}
		if err = insert(t); err != nil {
			return nil, err
		}
	}

	for _, t := range tables {
		if !t.Derived {
			continue
		}
		if err = w.WriteRaw("DELETE FROM " + t.Name + ";"); err != nil {
			return nil, err
		}
	}

	for _, t := range tables {
		if !t.Derived {
			continue
		}
		if err = insert(t); err != nil {
			return nil, err
		}
	}

	notes := opts.Notes
	if notes == "" {
		notes = DefaultNotes
	}
	finished := now().UTC()
	runTable, err := seed.RunRow(models.ETLRun{
		RunID:      RunID(started),
		StartedAt:  started,
		FinishedAt: finished,
		Status:     models.RunStatusSuccess,
		Notes:      notes,
	})
	if err != nil {
		return nil, err
	}
	if err = insert(runTable); err != nil {
		return nil, err
	}

	if err = w.Commit(); err != nil {
		return nil, err
	}

	for table, n := range rows {
		metrics.RecordRowsWritten(table, n)
	}
	if info, statErr := os.Stat(path); statErr == nil {
		metrics.RecordArtifact(info.Size())
	}

	log.Info().
		Str("path", path).
		Str("run_id", RunID(started)).
		Int("statements", w.Statements()).
		Msg("Nightly run committed")

	return &Result{
		Path:       path,
		RunID:      RunID(started),
		StartedAt:  started,
		FinishedAt: finished,
		Rows:       rows,
		Statements: w.Statements(),
	}, nil
}
