package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Version information set at build time via ldflags. When a field is
// left empty the embedded build info fills it in.
var (
	version = ""
	commit  = ""
	date    = ""
)

// buildMetadata holds the resolved version fields.
type buildMetadata struct {
	version string
	commit  string
	date    string
}

// resolveBuildMetadata merges ldflags values with the embedded build
// info in a single scan. ldflags win; anything still unknown falls back
// to "(devel)" for the version and "unknown" for the rest.
func resolveBuildMetadata() buildMetadata {
	meta := buildMetadata{version: version, commit: commit, date: date}

	if info, ok := debug.ReadBuildInfo(); ok {
		if meta.version == "" {
			meta.version = info.Main.Version
		}
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				if meta.commit == "" {
					meta.commit = shortRevision(setting.Value)
				}
			case "vcs.time":
				if meta.date == "" {
					meta.date = setting.Value
				}
			}
		}
	}

	if meta.version == "" {
		meta.version = "(devel)"
	}
	if meta.commit == "" {
		meta.commit = "unknown"
	}
	if meta.date == "" {
		meta.date = "unknown"
	}
	return meta
}

// shortRevision truncates a VCS revision to the familiar 7 characters.
func shortRevision(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}

// getVersion returns the version string shown by --version.
func getVersion() string {
	return resolveBuildMetadata().version
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the version, commit hash, and build date of webmark.`,
		Run: func(cmd *cobra.Command, _ []string) {
			meta := resolveBuildMetadata()
			fmt.Fprintf(cmd.OutOrStdout(), "webmark version %s\n", meta.version)
			fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", meta.commit)
			fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", meta.date)
		},
	}
}
