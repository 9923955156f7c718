// Command extract snapshots raw upstream data for one league season.
//
// Usage:
//
//	extract --league NBA --season 2024-25
//	extract --league EL --season E2024 --out data/etl_out
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"hoopslab/etl/internal/cache"
	"hoopslab/etl/internal/client"
	"hoopslab/etl/internal/config"
	"hoopslab/etl/internal/extract"
	"hoopslab/etl/internal/job"
	"hoopslab/etl/internal/logging"
	"hoopslab/etl/internal/metrics"
)

func main() {
	logging.Setup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("Extract failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		league string
		season string
		outDir string
	)

	cmd := &cobra.Command{
		Use:           "extract",
		Short:         "Snapshot raw NBA or EuroLeague data for a season",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("out") {
				outDir = cfg.OutputDir
			}
			return run(cmd, cfg, league, season, outDir)
		},
	}

	cmd.Flags().StringVar(&league, "league", "", "league code: NBA or EL")
	cmd.Flags().StringVar(&season, "season", "", `season, e.g. "2024-25" for NBA or "E2024" for EL`)
	cmd.Flags().StringVar(&outDir, "out", job.DefaultOutDir, "output directory; snapshots go under raw/")
	_ = cmd.MarkFlagRequired("league")
	_ = cmd.MarkFlagRequired("season")
	return cmd
}

func run(cmd *cobra.Command, cfg *config.Config, league, season, outDir string) error {
	ctx := cmd.Context()

	policy := client.Policy{
		Attempts:        cfg.RetryAttempts,
		InitialInterval: cfg.RetryInitialBackoff,
		MaxInterval:     cfg.RetryMaxBackoff,
		Multiplier:      2,
	}
	opts := []client.Option{client.WithPolicy(policy)}

	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without cache")
		} else {
			defer rc.Close()
			opts = append(opts, client.WithCache(rc))
		}
	}

	euro := client.NewEuroLeagueClient(cfg.EuroLeagueBaseURL, cfg.EuroLeagueTimeout, opts...)
	nba := client.NewNBAStatsClient(cfg.NBAStatsBaseURL, cfg.NBAStatsTimeout,
		append(opts, client.WithThrottle(cfg.NBAStatsThrottle), client.WithAPIKey(cfg.BallDontLieAPIKey))...)

	snaps, err := extract.New(outDir, euro, nba).Run(ctx, league, season)

	if cfg.PushgatewayURL != "" {
		if pushErr := metrics.Push(ctx, cfg.PushgatewayURL, "extract"); pushErr != nil {
			log.Warn().Err(pushErr).Msg("Failed to push metrics")
		}
	}
	if err != nil {
		return err
	}

	for _, snap := range snaps {
		fmt.Fprintln(cmd.OutOrStdout(), snap.Path)
	}
	return nil
}
