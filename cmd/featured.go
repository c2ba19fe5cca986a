package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/zoea-platform/zmig/pkg/importer"
	"github.com/zoea-platform/zmig/pkg/runner"
	"github.com/zoea-platform/zmig/pkg/store"
)

// NewFeaturedCommand creates the featured command: carry legacy sponsorship
// flags over to target listings.
func NewFeaturedCommand(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "featured",
		Short: "Mark listings of sponsored legacy venues as featured",
		Long: `Mark listings of sponsored legacy venues as featured.

Reads the sponsored venues from the legacy store, matches each one to its
target listing (by legacy id, then by name) and sets the featured flag.
Listings are only ever gained, never un-featured.

Examples:
  zmig featured`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFeatured(cmd.Context(), deps)
		},
	}
}

func runFeatured(ctx context.Context, deps *Deps) error {
	env, err := deps.setup("featured")
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

	sync := importer.NewFeaturedSync(store.NewListingRepository(pool, env.logger), env.logger)

	result, err := env.runner.Run(ctx, "featured", []runner.Stage{
		{Name: "sponsored", Run: func(ctx context.Context, sum *runner.StageSummary) error {
			rows, err := reader.SponsoredVenues(ctx)
			if err != nil {
				return err
			}
			return sync.Run(ctx, rows, sum)
		}},
	})
	printSummary(result)
	return err
}
