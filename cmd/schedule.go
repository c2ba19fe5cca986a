package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zoea-platform/zmig/pkg/schedule"
	"github.com/zoea-platform/zmig/pkg/store"
)

// NewScheduleCommand creates the schedule command: fill the booking window
// for every active tour.
func NewScheduleCommand(deps *Deps) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Generate schedule slots for active tours",
		Long: `Generate schedule slots for active tours.

Classifies each active tour into an operating pattern (gorilla treks run
daily with 8 early slots, city tours daily with 20, multi-day trips on
Mon/Wed/Fri, everything else on weekends) and fills the coming window with
one slot per operating day. Dates that already have a slot are skipped, so
the command can run on a schedule.

Tours missing a location are placed by the landmarks in their name before
slots are generated.

Examples:
  # Fill the default 90-day window
  zmig schedule

  # Fill two weeks
  zmig schedule --days 14`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSchedule(cmd.Context(), deps, days)
		},
	}

	cmd.Flags().IntVar(&days, "days", schedule.DefaultWindowDays, "Window size in days")
	return cmd
}

func runSchedule(ctx context.Context, deps *Deps, days int) error {
	env, err := deps.setup("schedule")
	if err != nil {
		return err
	}
	defer env.publisher.Close()

	pool, err := deps.ConnectTarget(ctx, env.cfg.Target)
	if err != nil {
		return err
	}
	defer pool.Close()

	gen := schedule.NewGenerator(
		store.NewTourRepository(pool, env.logger),
		store.NewScheduleRepository(pool, env.logger),
		store.NewLocationRepository(pool, env.logger),
		env.logger)

	results, err := gen.Run(ctx, days)
	if err != nil {
		return err
	}

	fmt.Printf("\nSchedule window: %d days, %d tour(s)\n", days, len(results))
	failures := 0
	for _, r := range results {
		status := fmt.Sprintf("planned=%-4d inserted=%d", r.Planned, r.Inserted)
		if r.Err != nil {
			status = fmt.Sprintf("FAILED: %v", r.Err)
			failures++
		}
		fmt.Printf("  %-40s %-16s %s\n", r.TourName, r.Pattern, status)
	}
	if failures > 0 {
		fmt.Printf("%d tour(s) failed\n", failures)
	}
	return nil
}
