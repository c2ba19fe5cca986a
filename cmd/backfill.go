package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/zoea-platform/zmig/pkg/importer"
	"github.com/zoea-platform/zmig/pkg/runner"
	"github.com/zoea-platform/zmig/pkg/store"
)

// NewBackfillCommand creates the backfill command: link target categories
// to their legacy counterparts.
func NewBackfillCommand(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "backfill",
		Short: "Backfill legacy ids on target categories",
		Long: `Backfill legacy ids on target categories.

Matches target categories without a legacy id against the legacy category
list by name and stamps the legacy id where a match is found. Categories
with no legacy counterpart are left alone.

Examples:
  zmig backfill`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBackfill(cmd.Context(), deps)
		},
	}
}

func runBackfill(ctx context.Context, deps *Deps) error {
	env, err := deps.setup("backfill")
	if err != nil {
		return err
	}
	defer env.publisher.Close()

	reader, err := deps.OpenLegacy(ctx, env.cfg.Legacy)
	if err != nil {
		return err
	}
	defer reader.Close()

	pool, err := deps.ConnectTarget(ctx, env.cfg.Target)
	if err != nil {
		return err
	}
	defer pool.Close()

	backfill := importer.NewCategoryBackfill(store.NewCategoryRepository(pool, env.logger), env.logger)

	result, err := env.runner.Run(ctx, "backfill", []runner.Stage{
		{Name: "categories", Run: func(ctx context.Context, sum *runner.StageSummary) error {
			rows, err := reader.Categories(ctx)
			if err != nil {
				return err
			}
			return backfill.Run(ctx, rows, sum)
		}},
	})
	printSummary(result)
	return err
}
