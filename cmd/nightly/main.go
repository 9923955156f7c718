// Command nightly writes the nightly warehouse artifact.
//
// Usage:
//
//	nightly --out data/etl_out
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"hoopslab/etl/internal/config"
	"hoopslab/etl/internal/job"
	"hoopslab/etl/internal/logging"
	"hoopslab/etl/internal/metrics"
	"hoopslab/etl/internal/seed"
	"hoopslab/etl/internal/sqlwriter"
)

func main() {
	logging.Setup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("Nightly run failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:           "nightly",
		Short:         "Write the nightly D1 upload script",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("out") && cfg.OutputDir != "" {
				outDir = cfg.OutputDir
			}
			return run(cmd, cfg, outDir)
		},
	}

	cmd.Flags().StringVar(&outDir, "out", job.DefaultOutDir, "output directory for d1_upload.sql")
	return cmd
}

func run(cmd *cobra.Command, cfg *config.Config, outDir string) error {
	ctx := cmd.Context()

	ds, err := seed.Load(cfg.SeedFile)
	if err != nil {
		return err
	}
	dialect, err := sqlwriter.ParseDialect(cfg.SQLDialect)
	if err != nil {
		return err
	}

	res, runErr := job.Run(ctx, job.Options{
		OutDir:  outDir,
		Dataset: ds,
		Dialect: dialect,
	})

	if cfg.PushgatewayURL != "" {
		if err := metrics.Push(ctx, cfg.PushgatewayURL, "nightly"); err != nil {
			log.Warn().Err(err).Msg("Failed to push metrics")
		}
	}
	if runErr != nil {
		return runErr
	}

	if !cfg.HasD1Credentials() {
		log.Debug().Msg("Cloudflare credentials not set; upload the artifact with wrangler")
	}

	fmt.Fprintln(cmd.OutOrStdout(), res.Path)
	return nil
}
