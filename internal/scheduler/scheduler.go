package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"hoopslab/etl/internal/config"
	"hoopslab/etl/internal/job"
	"hoopslab/etl/internal/metrics"
	"hoopslab/etl/internal/models"
	"hoopslab/etl/internal/seed"
	"hoopslab/etl/internal/sqlwriter"
	"hoopslab/etl/internal/warehouse"
)

const jobName = "nightly"

// Scheduler runs the nightly job on a cron schedule.
// When LOAD_ON_RUN is set each committed artifact is applied to the warehouse,
// and when PUSHGATEWAY_URL is set the job metrics are pushed after every run.
type Scheduler struct {
	cfg       *config.Config
	warehouse warehouse.Warehouse
	cron      *cron.Cron

	// serializes scheduled and manual runs
	mu  sync.Mutex
	now func() time.Time
}

// NewScheduler creates a new scheduler instance. wh may be nil when runs
// are not loaded.
func NewScheduler(cfg *config.Config, wh warehouse.Warehouse) *Scheduler {
	logger := cronLogger{}
	return &Scheduler{
		cfg:       cfg,
		warehouse: wh,
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		now: time.Now,
	}
}

// Start registers the nightly run and starts the cron loop
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	if _, err := s.cron.AddFunc(s.cfg.NightlyCron, func() {
		if _, err := s.RunOnce(ctx); err != nil {
			log.Error().Err(err).Msg("Nightly run failed")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule nightly run: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("schedule", s.cfg.NightlyCron).
		Time("next", s.Next()).
		Msg("Nightly run scheduled")

	return nil
}

// Next returns the time of the next scheduled run, zero before Start
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// Stop stops the cron loop and waits for a running job to finish
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")

	<-s.cron.Stop().Done()

	log.Info().Msg("Scheduler stopped")
}

// RunOnce writes one artifact from the configured seed, then loads and
// reports it as configured. A load failure is returned together with the
// committed result.
func (s *Scheduler) RunOnce(ctx context.Context) (*job.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ds, err := seed.Load(s.cfg.SeedFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load seed dataset: %w", err)
	}

	dialect, err := sqlwriter.ParseDialect(s.cfg.SQLDialect)
	if err != nil {
		return nil, err
	}

	defer s.push(ctx)

	res, err := job.Run(ctx, job.Options{
		OutDir:  s.cfg.OutputDir,
		Dataset: ds,
		Dialect: dialect,
		Now:     s.now,
	})
	if err != nil {
		return nil, err
	}

	if s.cfg.LoadOnRun && s.warehouse != nil {
		if err := s.load(ctx, res.Path); err != nil {
			return res, err
		}
	}

	return res, nil
}

func (s *Scheduler) load(ctx context.Context, path string) error {
	start := time.Now()

	if err := s.warehouse.EnsureSchema(ctx); err != nil {
		metrics.RecordJob("load", models.RunStatusFailed, time.Since(start).Seconds())
		return err
	}
	if err := warehouse.ApplyFile(ctx, s.warehouse, path); err != nil {
		metrics.RecordJob("load", models.RunStatusFailed, time.Since(start).Seconds())
		return err
	}

	metrics.RecordJob("load", models.RunStatusSuccess, time.Since(start).Seconds())
	log.Info().
		Str("path", path).
		Str("driver", s.cfg.WarehouseDriver).
		Dur("duration", time.Since(start)).
		Msg("Artifact loaded into warehouse")
	return nil
}

func (s *Scheduler) push(ctx context.Context) {
	if s.cfg.PushgatewayURL == "" {
		return
	}
	if err := metrics.Push(ctx, s.cfg.PushgatewayURL, jobName); err != nil {
		log.Warn().Err(err).Msg("Failed to push metrics")
	}
}

// cronLogger routes cron's own logging through zerolog
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
