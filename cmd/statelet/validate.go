package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/statelet/statelet/config"
)

// validateCmd validates a config file without contacting the API.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a statelet configuration file without contacting the API.

This command parses the YAML, expands environment variables, and validates
all fields. It's useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  statelet validate -c config.yaml
  statelet validate --config /etc/statelet/config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	fmt.Printf("Config is valid!\n")
	fmt.Printf("  Base URL:  %s\n", cfg.BaseURL)
	fmt.Printf("  Timeout:   %s\n", cfg.Timeout.Duration())
	fmt.Printf("  Interval:  %s\n", cfg.Interval.Duration())
	fmt.Printf("  Resources: %d\n", len(cfg.Resources))
	for _, r := range cfg.Resources {
		fmt.Printf("    - %s (%s, refresh %s)\n", r.Name, r.Path, cfg.ResourceInterval(r))
	}

	return nil
}
