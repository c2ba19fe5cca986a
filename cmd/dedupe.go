package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/zoea-platform/zmig/pkg/dedupe"
	"github.com/zoea-platform/zmig/pkg/store"
)

// NewDedupeCommand creates the dedupe command: resolve duplicate accounts
// sharing a phone pattern.
func NewDedupeCommand(deps *Deps) *cobra.Command {
	var execute bool
	var yes bool

	cmd := &cobra.Command{
		Use:   "dedupe <phone-pattern>",
		Short: "Resolve duplicate accounts sharing a phone pattern",
		Long: `Resolve duplicate accounts sharing a phone pattern.

Finds every account whose phone number contains the pattern, keeps the most
complete one (email outweighs name outweighs age) and deletes the rest with
all their dependent rows. The country prefix is optional: "250788123" and
"788123" find the same accounts.

Without --execute the command is a dry run: it prints the canonical account
and what would be deleted, and touches nothing.

Examples:
  # Preview the resolution
  zmig dedupe 250788123456

  # Actually delete the duplicates
  zmig dedupe 250788123456 --execute`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDedupe(cmd.Context(), deps, args[0], execute, yes)
		},
	}

	cmd.Flags().BoolVar(&execute, "execute", false, "Delete duplicates instead of previewing")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func runDedupe(ctx context.Context, deps *Deps, pattern string, execute, yes bool) error {
	env, err := deps.setup("dedupe")
	if err != nil {
		return err
	}
	defer env.publisher.Close()

	pool, err := deps.ConnectTarget(ctx, env.cfg.Target)
	if err != nil {
		return err
	}
	defer pool.Close()

	if execute && !yes && term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Printf("About to permanently delete duplicate accounts matching %q.\n", pattern)
		fmt.Print("Type 'delete' to continue: ")
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if strings.TrimSpace(answer) != "delete" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	resolver := dedupe.NewResolver(store.NewAccountRepository(pool, env.logger), env.logger)
	report, err := resolver.Run(ctx, pattern, execute)
	if err != nil {
		return err
	}

	printDedupeReport(report)
	return nil
}

func printDedupeReport(r dedupe.Report) {
	mode := "DRY RUN"
	if r.Executed {
		mode = "EXECUTED"
	}
	fmt.Printf("\nDedupe %q (%s): %d matching account(s)\n", r.Pattern, mode, r.GroupSize)

	if r.Canonical == nil {
		fmt.Println("Nothing to resolve.")
		return
	}

	fmt.Printf("Keeping %s (score %d", r.Canonical.ID, dedupe.Score(*r.Canonical))
	if r.Canonical.Email != nil {
		fmt.Printf(", %s", *r.Canonical.Email)
	}
	fmt.Println(")")

	for _, d := range r.Deletions {
		verb := "would delete"
		if d.Deleted {
			verb = "deleted"
		} else if d.Err != nil {
			verb = "FAILED"
		}
		fmt.Printf("  %s %s  score=%d related_rows=%d", verb, d.Account.ID, d.Score, d.Related.Total())
		if d.Err != nil {
			fmt.Printf("  (%v)", d.Err)
		}
		fmt.Println()
	}
}
