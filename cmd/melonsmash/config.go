package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/melon-smash/internal/config"
)

var flagDefaults bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective gameplay config",
	Long: `Print the gameplay config as YAML after applying --config and
--difficulty. Save the output to ~/.melonsmash/configs/melon.yaml and edit
it to change the defaults.

Examples:
  melonsmash config
  melonsmash config --difficulty hard
  melonsmash config --defaults > melon.yaml`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&flagDefaults, "defaults", false, "Print the built-in defaults instead")
}

func runConfig(cmd *cobra.Command, _ []string) error {
	if flagDefaults {
		_, err := cmd.OutOrStdout().Write(config.DefaultYAML())
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	data, err := config.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot encode config: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
