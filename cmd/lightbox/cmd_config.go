package main

import (
	"fmt"
	"os"

	"lightbox/internal/config"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// configCmd inspects and creates the workspace config
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Create or show the lightbox config",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config to the workspace",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective config, overrides applied",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path, err := resolveConfigPath()
	if err != nil {
		return err
	}
	force, _ := cmd.Flags().GetBool("force")

	out := cmd.OutOrStdout()
	if _, err := os.Stat(path); err == nil && !force {
		fmt.Fprintf(out, "Config already exists at %s (use --force to overwrite)\n", path)
		return nil
	}
	if err := config.DefaultConfig().Save(path); err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote %s\n", path)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
