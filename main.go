// Package main provides the zmig CLI entry point.
// zmig migrates the legacy V1 platform data into the V2 store and keeps the
// two reconciled while both are live.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zoea-platform/zmig/cmd"
)

var rootCmd = &cobra.Command{
	Use:   "zmig",
	Short: "Legacy platform migration and reconciliation engine",
	Long: `zmig migrates data from the legacy V1 platform (MariaDB) into the
V2 store (PostgreSQL) and reconciles the two while both are live.

Every write is idempotent: commands can be re-run after a partial failure
and will converge. Entities that cannot be migrated are reported in the
run summary without aborting the run.

Configuration comes from a YAML file, environment variables (V1_DB_*,
DATABASE_URL, DB_*) and the system keyring, in that order of precedence.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	deps := cmd.DefaultDeps()

	rootCmd.PersistentFlags().StringVar(&deps.ConfigFile, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVar(&deps.Debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&deps.LogJSON, "log-json", false, "Log in JSON format")

	rootCmd.AddCommand(
		cmd.NewMigrateCommand(deps),
		cmd.NewClassifyCommand(deps),
		cmd.NewFeaturedCommand(deps),
		cmd.NewBackfillCommand(deps),
		cmd.NewDedupeCommand(deps),
		cmd.NewScheduleCommand(deps),
		cmd.NewCredentialsCommand(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
