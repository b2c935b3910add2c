// Package main is the entry point for the statelet CLI.
//
// Statelet can be used either as a library (SDK) or driven by a YAML
// configuration file. This CLI provides the config-driven approach.
//
// Usage:
//
//	statelet watch -c config.yaml -r tasks   # Watch a resource's list
//	statelet validate -c config.yaml         # Validate configuration
//	statelet version                         # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
// It just displays help - actual functionality is in subcommands.
var rootCmd = &cobra.Command{
	Use:   "statelet",
	Short: "A reactive state cache for REST APIs",
	Long: `Statelet keeps an in-memory, observable cache of entities served
by a REST API.

Declare your API's resources in a YAML file and statelet will refresh
them on an interval, printing list changes as they happen.

Quick start:
  1. Create a config file (statelet.yaml)
  2. Run: statelet watch -c statelet.yaml -r tasks

Example config:
  base_url: https://api.example.com
  timeout: 5s
  resources:
    - name: tasks
      path: /tasks
      list_key: results`,
	// No Run/RunE means this just shows help when called without subcommands
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this statelet binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("statelet %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	// Register subcommands with root
	rootCmd.AddCommand(versionCmd)
}
