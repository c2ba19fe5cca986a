package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/zoea-platform/zmig/pkg/importer"
	"github.com/zoea-platform/zmig/pkg/legacy"
	"github.com/zoea-platform/zmig/pkg/runner"
	"github.com/zoea-platform/zmig/pkg/store"
)

// NewMigrateCommand creates the migrate command: the full legacy-to-target
// pipeline.
func NewMigrateCommand(deps *Deps) *cobra.Command {
	var skipEngagement bool
	var onlyUser int64

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run the full legacy migration pipeline",
		Long: `Run the full legacy migration pipeline.

Seeds countries, cities and the canonical category set, then migrates
users, venues, bookings, reviews and favorites from the legacy MariaDB
store into the target PostgreSQL store. Every stage is idempotent:
rows already migrated are skipped, so the command can be re-run after a
partial failure and will converge.

Rows that cannot be migrated (orphaned bookings, nameless venues) are
reported in the summary; they do not abort the run.

Examples:
  # Full migration
  zmig migrate

  # Users and venues only
  zmig migrate --skip-engagement

  # Re-run the venue stages for a single legacy owner
  zmig migrate --user 42 --skip-engagement`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(cmd.Context(), deps, skipEngagement, onlyUser)
		},
	}

	cmd.Flags().BoolVar(&skipEngagement, "skip-engagement", false, "Skip bookings, reviews and favorites")
	cmd.Flags().Int64Var(&onlyUser, "user", 0, "Migrate only venues owned by this legacy user ID")
	return cmd
}

func runMigrate(ctx context.Context, deps *Deps, skipEngagement bool, onlyUser int64) error {
	env, err := deps.setup("migrate")
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

	accounts := store.NewAccountRepository(pool, env.logger)
	listings := store.NewListingRepository(pool, env.logger)
	categories := store.NewCategoryRepository(pool, env.logger)
	locations := store.NewLocationRepository(pool, env.logger)
	engage := store.NewEngagementRepository(pool, env.logger)

	locIndex := importer.NewLocationIndex(locations, env.logger)
	users := importer.NewUserImporter(accounts, env.logger)
	venues := importer.NewVenueImporter(listings, categories, locIndex, env.logger)
	engagement := importer.NewEngagementImporter(accounts, listings, engage, env.logger)

	stages := []runner.Stage{
		{Name: "locations", Run: func(ctx context.Context, sum *runner.StageSummary) error {
			countries, err := reader.Countries(ctx)
			if err != nil {
				return err
			}
			referenced, err := reader.VenueCountryIDs(ctx)
			if err != nil {
				return err
			}
			cities, err := reader.Locations(ctx)
			if err != nil {
				return err
			}
			return locIndex.Seed(ctx, countries, referenced, cities, sum)
		}},
		{Name: "categories", Run: func(ctx context.Context, sum *runner.StageSummary) error {
			return importer.SeedCategories(ctx, categories, env.logger, sum)
		}},
		{Name: "users", Run: func(ctx context.Context, sum *runner.StageSummary) error {
			rows, err := reader.Users(ctx)
			if err != nil {
				return err
			}
			return users.Run(ctx, rows, sum)
		}},
		{Name: "venues", Run: func(ctx context.Context, sum *runner.StageSummary) error {
			var rows []legacy.Venue
			var err error
			if onlyUser != 0 {
				rows, err = reader.VenuesByUser(ctx, onlyUser)
			} else {
				rows, err = reader.Venues(ctx)
			}
			if err != nil {
				return err
			}
			return venues.Run(ctx, rows, sum)
		}},
	}

	if !skipEngagement {
		stages = append(stages,
			runner.Stage{Name: "bookings", Run: func(ctx context.Context, sum *runner.StageSummary) error {
				rows, err := reader.Bookings(ctx)
				if err != nil {
					return err
				}
				return engagement.Bookings(ctx, rows, sum)
			}},
			runner.Stage{Name: "reviews", Run: func(ctx context.Context, sum *runner.StageSummary) error {
				rows, err := reader.Reviews(ctx)
				if err != nil {
					return err
				}
				return engagement.Reviews(ctx, rows, sum)
			}},
			runner.Stage{Name: "favorites", Run: func(ctx context.Context, sum *runner.StageSummary) error {
				rows, err := reader.Favorites(ctx)
				if err != nil {
					return err
				}
				return engagement.Favorites(ctx, rows, sum)
			}},
		)
	}

	result, err := env.runner.Run(ctx, "migrate", stages)
	printSummary(result)
	return err
}
