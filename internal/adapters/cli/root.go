package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	verbose    bool
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fretplan",
		Short: "FretPlan CLI - collaborative nightly trip optimization",
		Long: `FretPlan optimizes a day of freight trips across participating carriers,
chaining compatible trips onto shared vehicles to cut empty kilometers.

Examples:
  fretplan optimize --date 2025-03-14
  fretplan optimize --date 2025-03-14 --company-id carrier-a --type single_company
  fretplan optimize --date 2025-03-14 --output report.json
  fretplan batch list
  fretplan batch show 6b9f7a3c-1d2e-4f5a-8b7c-9d0e1f2a3b4c
  fretplan config show
  fretplan health`,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (default: ./config.yaml, ./configs/config.yaml, /etc/fretplan/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose output")

	// Add command groups
	rootCmd.AddCommand(NewOptimizeCommand())
	rootCmd.AddCommand(NewBatchCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewHealthCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
