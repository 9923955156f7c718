// Command load applies a nightly artifact to a local or PostgreSQL warehouse.
//
// Usage:
//
//	load --file data/etl_out/d1_upload.sql
//	load --file d1_upload.sql --schema=false
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"hoopslab/etl/internal/config"
	"hoopslab/etl/internal/job"
	"hoopslab/etl/internal/logging"
	"hoopslab/etl/internal/warehouse"
)

func main() {
	logging.Setup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("Load failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		file   string
		schema bool
	)

	cmd := &cobra.Command{
		Use:           "load",
		Short:         "Apply a nightly artifact to the configured warehouse",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if file == "" {
				file = filepath.Join(cfg.OutputDir, job.ArtifactName)
			}
			return run(cmd, cfg, file, schema)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "artifact to apply (default $OUTPUT_DIR/d1_upload.sql)")
	cmd.Flags().BoolVar(&schema, "schema", true, "create missing warehouse tables first")
	return cmd
}

func run(cmd *cobra.Command, cfg *config.Config, file string, schema bool) error {
	ctx := cmd.Context()

	wh, err := warehouse.Open(ctx, cfg.WarehouseDriver, cfg.WarehouseDSN)
	if err != nil {
		return err
	}
	defer wh.Close()

	if err := wh.Health(ctx); err != nil {
		return err
	}
	if schema {
		if err := wh.EnsureSchema(ctx); err != nil {
			return err
		}
	}
	if err := warehouse.ApplyFile(ctx, wh, file); err != nil {
		return err
	}

	counts, err := wh.Counts(ctx)
	if err != nil {
		return err
	}
	for _, table := range warehouse.Tables() {
		fmt.Fprintf(cmd.OutOrStdout(), "%-28s %d\n", table, counts[table])
	}
	return nil
}
