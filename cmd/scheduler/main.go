// Command scheduler runs the nightly job on a cron schedule and serves
// Prometheus metrics.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"hoopslab/etl/internal/config"
	"hoopslab/etl/internal/logging"
	"hoopslab/etl/internal/metrics"
	"hoopslab/etl/internal/scheduler"
	"hoopslab/etl/internal/warehouse"
)

func main() {
	logging.Setup()

	log.Info().Msg("Starting hoopslab nightly scheduler")

	cfg := config.MustLoad()
	log.Info().
		Str("env", cfg.AppEnv).
		Str("log_level", cfg.LogLevel).
		Str("schedule", cfg.NightlyCron).
		Msg("Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wh warehouse.Warehouse
	if cfg.LoadOnRun {
		var err error
		wh, err = warehouse.Open(ctx, cfg.WarehouseDriver, cfg.WarehouseDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open warehouse")
		}
		defer wh.Close()
		log.Info().Str("driver", cfg.WarehouseDriver).Msg("Warehouse connection established")
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.MetricsPort),
		Handler:           newMetricsMux(wh),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Int("port", cfg.MetricsPort).Msg("Starting metrics server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Metrics server failed")
		}
	}()

	startTime := time.Now()
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.SystemUptime.Set(time.Since(startTime).Seconds())
			case <-ctx.Done():
				return
			}
		}
	}()

	sched := scheduler.NewScheduler(cfg, wh)
	if err := sched.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}

	if cfg.RunOnStart {
		log.Info().Msg("Running nightly job on start...")
		if res, err := sched.RunOnce(ctx); err != nil {
			log.Error().Err(err).Msg("Startup run failed, continuing anyway...")
		} else {
			log.Info().Str("path", res.Path).Str("run_id", res.RunID).Msg("Startup run completed")
		}
	}

	<-ctx.Done()
	log.Info().Msg("Received shutdown signal, gracefully shutting down...")

	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("Metrics server shutdown failed")
	}

	log.Info().Msg("Scheduler shutdown complete")
}

// newMetricsMux serves /metrics and /health. The health check includes the
// warehouse when one is configured.
func newMetricsMux(wh warehouse.Warehouse) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if wh != nil {
			if err := wh.Health(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"unhealthy"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	})

	return mux
}
