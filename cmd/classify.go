package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/zoea-platform/zmig/pkg/importer"
	"github.com/zoea-platform/zmig/pkg/runner"
	"github.com/zoea-platform/zmig/pkg/store"
)

// NewClassifyCommand creates the classify command: rerun the keyword rules
// over every target listing.
func NewClassifyCommand(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "classify",
		Short: "Reclassify listing types and categories",
		Long: `Reclassify listing types and categories.

Reruns the keyword rules over every listing in the target store and repairs
stale types and category links. Listings already classified correctly are
skipped, so the command is safe to run repeatedly.

Examples:
  zmig classify`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runClassify(cmd.Context(), deps)
		},
	}
}

func runClassify(ctx context.Context, deps *Deps) error {
	env, err := deps.setup("classify")
	if err != nil {
		return err
	}
	defer env.publisher.Close()

	pool, err := deps.ConnectTarget(ctx, env.cfg.Target)
	if err != nil {
		return err
	}
	defer pool.Close()

	rc := importer.NewReclassifier(
		store.NewListingRepository(pool, env.logger),
		store.NewCategoryRepository(pool, env.logger),
		env.logger)

	result, err := env.runner.Run(ctx, "classify", []runner.Stage{
		{Name: "listings", Run: func(ctx context.Context, sum *runner.StageSummary) error {
			return rc.Run(ctx, sum)
		}},
	})
	printSummary(result)
	return err
}
