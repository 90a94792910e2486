package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fnbrainvault/webmark/internal/config"
)

// NewPresetsCmd creates the presets command.
func NewPresetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List available documentation site presets",
		Long: `Presets lists the documentation sites WebMark knows about, built-in and
from the configuration file. Use a preset with:

  webmark download --preset <name>`,
		Args: cobra.NoArgs,
		RunE: runPresetsCmd,
	}

	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .webmark.yaml in current directory or XDG config)")

	return cmd
}

// runPresetsCmd executes the presets command.
func runPresetsCmd(cmd *cobra.Command, _ []string) error {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}

	var cf *config.File
	if found := config.FindConfigFile(configPath); found != "" {
		cf, err = config.LoadConfigFile(found)
		if err != nil {
			return fmt.Errorf("failed to load config file %s: %w", found, err)
		}
	} else if configPath != "" {
		return fmt.Errorf("configuration file not found: %s", configPath)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tNAME\tSEED URL")
	for _, key := range config.PresetKeys(cf) {
		preset, _ := config.ResolvePreset(cf, key)
		fmt.Fprintf(w, "%s\t%s\t%s\n", key, preset.Name, preset.BaseURL)
	}
	return w.Flush()
}
