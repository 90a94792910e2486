package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/fnbrainvault/webmark/internal/config"
	"github.com/fnbrainvault/webmark/internal/database"
	"github.com/fnbrainvault/webmark/internal/log"
	"github.com/fnbrainvault/webmark/internal/state"
)

// NewRetryCmd creates the retry command.
func NewRetryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "retry [url]",
		Short: "Retry previously failed downloads",
		Long: `Retry re-attempts the downloads recorded as failed in the state file,
without re-downloading pages that already completed.

The seed URL (positional, preset, or config file) is still required
because it defines which links stay in scope.

Examples:
  # Retry everything in the retry queue
  webmark retry --preset uefn

  # Also retry depth-limit failures past their budget
  webmark retry --preset uefn --force-recursion

  # Show what failed without retrying anything
  webmark retry --preset uefn --list`,
		Args: cobra.MaximumNArgs(1),
		RunE: runRetryCmd,
	}

	addSharedFlags(cmd)

	cmd.Flags().Bool("list", false,
		"List failed downloads without retrying")
	cmd.Flags().Bool("force-recursion", false,
		"Retry depth-limit failures even when their retry budget is exhausted")

	return cmd
}

// runRetryCmd executes the retry command.
func runRetryCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	listOnly, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	if listOnly {
		return listFailed(cmd, cfg.OutputDir)
	}

	forceRecursion, err := cmd.Flags().GetBool("force-recursion")
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	orch, db := newOrchestrator(cmd, cfg, logger)
	if db != nil {
		defer db.Close()
	}

	stopOnSignal(orch, cancel, logger)

	summary := orch.RetryFailed(ctx, cfg.SeedURL, forceRecursion)
	return printSummary(cfg, summary)
}

// listFailed prints the recorded failures without touching the network.
func listFailed(cmd *cobra.Command, outputDir string) error {
	st, err := state.NewStore(outputDir).Load()
	if err != nil {
		return fmt.Errorf("failed to load state from %s: %w", outputDir, err)
	}

	out := cmd.OutOrStdout()

	if len(st.Failed) == 0 && len(st.RecursionFailures) == 0 {
		fmt.Fprintln(out, "No failed downloads recorded.")
		return nil
	}

	if len(st.Failed) > 0 {
		fmt.Fprintf(out, "Permanent failures (%d):\n", len(st.Failed))
		urls := make([]string, 0, len(st.Failed))
		for u := range st.Failed {
			urls = append(urls, u)
		}
		sort.Strings(urls)
		for _, u := range urls {
			rec := st.Failed[u]
			fmt.Fprintf(out, "  [%d] %s  %s\n", rec.StatusCode, u, rec.Message)
		}
	}

	if len(st.RecursionFailures) > 0 {
		fmt.Fprintf(out, "Depth-limit failures (%d):\n", len(st.RecursionFailures))
		urls := make([]string, 0, len(st.RecursionFailures))
		for u := range st.RecursionFailures {
			urls = append(urls, u)
		}
		sort.Strings(urls)
		for _, u := range urls {
			fmt.Fprintf(out, "  %s  %s\n", u, st.RecursionFailures[u].Message)
		}
	}

	if len(st.RetryQueue) > 0 {
		fmt.Fprintf(out, "%d URL(s) queued for retry.\n", len(st.RetryQueue))
	}

	printCrawlHistory(cmd.Context(), out)
	return nil
}

// printCrawlHistory surfaces the advisory status database, when one
// exists. Best effort: a missing or unreadable database prints nothing.
func printCrawlHistory(ctx context.Context, out io.Writer) {
	db, err := database.Open(config.XDGDataDir(),
		database.Options{CreateIfNotExists: false, EnableWAL: false})
	if err != nil {
		return
	}
	defer db.Close()

	counts, err := db.CountByStatus(ctx)
	if err != nil || len(counts) == 0 {
		return
	}

	fmt.Fprintln(out, "Crawl history:")
	for _, status := range []string{
		database.StatusCompleted,
		database.StatusFailed,
		database.StatusRetrying,
		database.StatusDepthLimited,
	} {
		if n := counts[status]; n > 0 {
			fmt.Fprintf(out, "  %-13s %d\n", status, n)
		}
	}

	failed, err := db.ListByStatus(ctx, database.StatusFailed)
	if err != nil {
		return
	}
	for _, rec := range failed {
		fmt.Fprintf(out, "  last failure %s  %s  %s\n",
			rec.LastChecked.Format("2006-01-02 15:04"), rec.URL, rec.Message)
	}
}
