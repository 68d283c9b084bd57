package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jamesainslie/spinkeep/pkg/spinkeep/config"
)

var configFormat string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage spinkeep configuration settings.

Configuration is loaded from:
  1. $XDG_CONFIG_HOME/spinkeep/config.yaml (if set)
  2. ~/.config/spinkeep/config.yaml

Environment variables can override config file settings using the SPINKEEP_ prefix:
  SPINKEEP_WINDOW=65536
  SPINKEEP_INTERVAL=10
  SPINKEEP_DEVICES=/dev/sda,/dev/sdb
  SPINKEEP_LOGGING_LEVEL=debug`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration from all sources.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	Long:  `Create a default configuration file if one doesn't exist.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Long:  `Display the path to the configuration file.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func init() {
	configShowCmd.Flags().StringVarP(&configFormat, "output", "o", "yaml", "output format (yaml, json)")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// runConfigShow displays the current configuration.
func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Decode(vp)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	w := cmd.OutOrStdout()
	if configFile := vp.ConfigFileUsed(); configFile != "" {
		fmt.Fprintf(w, "# config file: %s\n", configFile)
	} else {
		fmt.Fprintln(w, "# config file: (using defaults, no file found)")
	}
	for _, ev := range envOverrides() {
		fmt.Fprintf(w, "# env: %s\n", ev)
	}

	return encodeConfig(w, cfg, configFormat)
}

func encodeConfig(w io.Writer, cfg *config.Config, format string) error {
	switch format {
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	default:
		return fmt.Errorf("unknown config format: %s", format)
	}
}

// envOverrides lists the SPINKEEP_ variables set in the environment.
func envOverrides() []string {
	prefix := strings.ToUpper(config.AppName) + "_"
	var out []string
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, prefix) {
			out = append(out, kv)
		}
	}
	sort.Strings(out)
	return out
}

// runConfigInit creates a default config file.
func runConfigInit(_ *cobra.Command, _ []string) error {
	path, err := config.WriteDefault()
	if errors.Is(err, os.ErrExist) {
		printInfo("Config file already exists: %s", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	printInfo("Created default config file: %s", path)
	return nil
}

// runConfigPath shows the config file path.
func runConfigPath(cmd *cobra.Command, _ []string) error {
	path := vp.ConfigFileUsed()
	if path == "" {
		var err error
		if path, err = config.ConfigPath(); err != nil {
			return fmt.Errorf("failed to get config directory: %w", err)
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
