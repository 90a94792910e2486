package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for WebMark.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webmark",
		Short: "Recursive documentation site downloader",
		Long: `WebMark downloads a documentation site into a tree of Markdown files.

Starting from a seed URL it follows in-scope links depth-first, converts
each page to Markdown with YAML front matter, and writes an index over
everything it saved. Progress is persisted, so an interrupted run picks
up where it left off.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewDownloadCmd())
	cmd.AddCommand(NewRetryCmd())
	cmd.AddCommand(NewPresetsCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
