package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fnbrainvault/webmark/internal/config"
	"github.com/fnbrainvault/webmark/internal/crawler"
	"github.com/fnbrainvault/webmark/internal/database"
	"github.com/fnbrainvault/webmark/internal/log"
	"github.com/fnbrainvault/webmark/internal/model"
)

// NewDownloadCmd creates the download command.
func NewDownloadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download [url]",
		Short: "Download a documentation site as Markdown",
		Long: `Download recursively fetches a documentation site and saves each page
as a Markdown file with YAML front matter.

Links are followed depth-first within the site's documentation subtree.
Progress is saved to a state file inside the output directory, so an
interrupted run resumes without re-downloading completed pages.

Examples:
  # Download starting from a URL
  webmark download https://dev.epicgames.com/documentation/en-us/uefn/unreal-editor-for-fortnite-documentation

  # Download a known site by preset name
  webmark download --preset uefn

  # Re-download everything, including completed pages
  webmark download --preset uefn --force

  # Download page images alongside the documents
  webmark download --preset uefn --images

  # Use a custom configuration file
  webmark download -c myconfig.yaml https://example.com/docs/start

Configuration file (.webmark.yaml) example:
  settings:
    output_dir: ./docs
    rate_limit_delay: 1s
    cookie: "session_id=abc123"
    headers:
      Authorization: "Bearer token"
  presets:
    mydocs:
      name: "My Docs"
      base_url: "https://example.com/docs/start"
      link_pattern: "/docs"`,
		Args: cobra.MaximumNArgs(1),
		RunE: runDownloadCmd,
	}

	addSharedFlags(cmd)

	cmd.Flags().BoolP("force", "f", false,
		"Re-download pages already recorded as completed")
	cmd.Flags().BoolP("images", "i", false,
		"Download page images next to the documents")
	cmd.Flags().Int("max-retries", config.DefaultMaxRetries,
		"Retry attempts for transient failures before a URL fails permanently")
	cmd.Flags().Duration("retry-delay", config.DefaultRetryBaseDelay,
		"Base delay for retry backoff")
	cmd.Flags().IntP("max-depth", "d", config.DefaultMaxDepth,
		"Maximum link-following depth from the seed URL")
	cmd.Flags().Duration("rate-limit", config.DefaultRateLimitDelay,
		"Fixed delay before every request")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Per-request timeout")
	cmd.Flags().Int("save-interval", config.DefaultSaveInterval,
		"Completed pages between state snapshots")

	return cmd
}

// addSharedFlags registers the flags common to download and retry.
func addSharedFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("preset", "p", "",
		"Documentation site preset (see `webmark presets`)")
	cmd.Flags().StringP("output", "o", "",
		"Output directory for documents and state")
	cmd.Flags().String("pattern", "",
		"Path prefix links must match to stay in scope (default: derived from the seed URL)")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .webmark.yaml in current directory or XDG config)")
}

// runDownloadCmd executes the download command.
func runDownloadCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
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

	fmt.Printf("Downloading %s\n", cfg.SeedURL)
	summary := orch.Run(ctx, cfg.SeedURL)
	return printSummary(cfg, summary)
}

// buildConfig creates a Config from flags, the config file, and an
// optional preset. Precedence is flags over file over defaults; the
// positional URL argument overrides a preset's seed URL.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// If the user explicitly named a config file, it must exist. An
	// absent default config is fine.
	found := config.FindConfigFile(configPath)
	var cf *config.File
	if found != "" {
		cf, err = config.LoadConfigFile(found)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", found, err)
		}
		cf.Apply(cfg)
	} else if configPath != "" {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	presetKey, err := cmd.Flags().GetString("preset")
	if err != nil {
		return nil, err
	}
	if presetKey != "" {
		preset, ok := config.ResolvePreset(cf, presetKey)
		if !ok {
			return nil, fmt.Errorf("%w: %q (run `webmark presets` for the list)",
				config.ErrUnknownPreset, presetKey)
		}
		cfg.SeedURL = preset.BaseURL
		cfg.LinkPattern = preset.LinkPattern
	}

	if len(args) > 0 {
		cfg.SeedURL = args[0]
	}

	if err := applyStringFlag(cmd, "output", &cfg.OutputDir); err != nil {
		return nil, err
	}
	if err := applyStringFlag(cmd, "pattern", &cfg.LinkPattern); err != nil {
		return nil, err
	}

	// The remaining flags exist only on the download command. Changed()
	// guards keep config-file values when the flag was left at its
	// default.
	flagSetters := []struct {
		name  string
		apply func() error
	}{
		{"force", func() (err error) { cfg.ForceRefresh, err = cmd.Flags().GetBool("force"); return }},
		{"images", func() (err error) { cfg.DownloadImages, err = cmd.Flags().GetBool("images"); return }},
		{"max-retries", func() (err error) { cfg.MaxRetries, err = cmd.Flags().GetInt("max-retries"); return }},
		{"retry-delay", func() (err error) { cfg.RetryBaseDelay, err = cmd.Flags().GetDuration("retry-delay"); return }},
		{"max-depth", func() (err error) { cfg.MaxDepth, err = cmd.Flags().GetInt("max-depth"); return }},
		{"rate-limit", func() (err error) { cfg.RateLimitDelay, err = cmd.Flags().GetDuration("rate-limit"); return }},
		{"timeout", func() (err error) { cfg.Timeout, err = cmd.Flags().GetDuration("timeout"); return }},
		{"save-interval", func() (err error) { cfg.SaveInterval, err = cmd.Flags().GetInt("save-interval"); return }},
	}
	for _, fs := range flagSetters {
		if cmd.Flags().Lookup(fs.name) == nil || !cmd.Flags().Changed(fs.name) {
			continue
		}
		if err := fs.apply(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// applyStringFlag overrides *dst with the flag value when set.
func applyStringFlag(cmd *cobra.Command, name string, dst *string) error {
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return err
	}
	if value != "" {
		*dst = value
	}
	return nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// newOrchestrator wires the orchestrator with the status database and
// the progress printer. The database is advisory; failing to open it
// only loses the `webmark retry --list` history.
func newOrchestrator(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) (*crawler.Orchestrator, *database.StatusDB) {
	db, err := database.Open(config.XDGDataDir(), database.DefaultOptions())
	if err != nil {
		logger.Warn("status database unavailable", "error", err)
		db = nil
	}

	opts := []crawler.Option{
		crawler.WithLogger(logger),
	}
	if db != nil {
		opts = append(opts, crawler.WithStatusDB(db))
	}

	// Progress goes to stdout unless verbose logging already narrates
	// every page.
	if !cfg.Verbose {
		progressCh := make(chan model.Progress, 16)
		go func() {
			lastPercent := -1
			for p := range progressCh {
				percent := int(p.Percent())
				if percent == lastPercent {
					continue
				}
				lastPercent = percent
				fmt.Fprintf(cmd.OutOrStdout(), "progress: %d/%d pages (%d%%)\n", p.Done, p.Total, percent)
			}
		}()
		opts = append(opts, crawler.WithProgressChannel(progressCh))
	}

	return crawler.New(cfg, opts...), db
}

// stopOnSignal installs the interrupt handler: the first signal
// requests a cooperative stop so the current page finishes and state
// is saved, the second cancels outright.
func stopOnSignal(orch *crawler.Orchestrator, cancel context.CancelFunc, logger *slog.Logger) {
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, finishing current page...")
		orch.Stop()
		<-sigCh
		logger.Info("second signal, cancelling immediately")
		cancel()
	}()
}

// printSummary prints the run summary and surfaces a run-level error.
func printSummary(cfg *config.Config, summary model.RunSummary) error {
	if summary.Err != nil {
		return summary.Err
	}

	fmt.Printf("\nDone in %s: %d downloaded, %d skipped, %d failed\n",
		summary.Elapsed.Round(time.Millisecond), summary.Processed, summary.Skipped, summary.Failed)
	if summary.Failed > 0 {
		fmt.Printf("See %s/failures.md for details, or run `webmark retry`.\n", cfg.OutputDir)
		return errors.New("some pages failed to download")
	}
	return nil
}
