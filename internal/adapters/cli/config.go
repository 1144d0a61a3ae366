package cli

import (
	"context"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/mbendaoud/fretplan-go/internal/adapters/persistence"
	"github.com/mbendaoud/fretplan-go/internal/infrastructure/config"
	"github.com/mbendaoud/fretplan-go/internal/infrastructure/database"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage FretPlan configuration settings.

Configuration is loaded from multiple sources with priority:
1. Environment variables (FRETPLAN_* prefix)
2. Config file (config.yaml)
3. Default values

User preferences (default company) are stored in ~/.fretplan/config.json

Examples:
  fretplan config show
  fretplan config set-company carrier-a
  fretplan config clear-company`,
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCompanyCommand())
	cmd.AddCommand(newConfigClearCompanyCommand())

	return cmd
}

// newConfigShowCommand creates the config show subcommand
func newConfigShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				fmt.Printf("Warning: Failed to load config: %v\n", err)
				fmt.Println("Using default configuration.")
				cfg = config.LoadConfigOrDefault(configPath)
			}

			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}

			userCfg, err := userConfigHandler.Load()
			if err != nil {
				fmt.Printf("Warning: Failed to load user config: %v\n\n", err)
				userCfg = &config.UserConfig{}
			}

			fmt.Println("FretPlan Configuration")
			fmt.Println("======================")

			fmt.Println("User Preferences:")
			fmt.Printf("  Config file:      %s\n", userConfigHandler.GetConfigPath())
			if userCfg.DefaultCompanyID != "" {
				fmt.Printf("  Default Company:  %s\n", userCfg.DefaultCompanyID)
			} else {
				fmt.Printf("  Default Company:  (not set)\n")
			}

			fmt.Println("\nDatabase:")
			fmt.Printf("  Type:             %s\n", cfg.Database.Type)
			if cfg.Database.URL != "" {
				fmt.Printf("  URL:              %s\n", maskPassword(cfg.Database.URL))
			} else if cfg.Database.Type == "sqlite" {
				fmt.Printf("  Path:             %s\n", cfg.Database.Path)
			} else {
				fmt.Printf("  Host:             %s\n", cfg.Database.Host)
				fmt.Printf("  Port:             %d\n", cfg.Database.Port)
				fmt.Printf("  Database:         %s\n", cfg.Database.Name)
				fmt.Printf("  User:             %s\n", cfg.Database.User)
			}
			fmt.Printf("  Max Connections:  %d\n", cfg.Database.Pool.MaxOpen)

			fmt.Println("\nRouting Engine:")
			fmt.Printf("  Base URL:         %s\n", cfg.Routing.BaseURL)
			fmt.Printf("  Timeout:          %s\n", cfg.Routing.Timeout)
			fmt.Printf("  Rate Limit:       %d req/s (burst: %d)\n",
				cfg.Routing.RateLimit.Requests, cfg.Routing.RateLimit.Burst)
			fmt.Printf("  Max Retries:      %d\n", cfg.Routing.Retry.MaxAttempts)

			fmt.Println("\nMatrix Cache (Redis):")
			fmt.Printf("  Enabled:          %t\n", cfg.Redis.Enabled)
			if cfg.Redis.Enabled {
				fmt.Printf("  Address:          %s\n", cfg.Redis.Addr)
				fmt.Printf("  Matrix TTL:       %s\n", cfg.Redis.MatrixTTL)
			}

			fmt.Println("\nSolver:")
			fmt.Printf("  Cross Budget:     %s\n", cfg.Solver.CrossCompanyBudget)
			fmt.Printf("  Single Budget:    %s\n", cfg.Solver.SingleCompanyBudget)

			fmt.Println("\nKPI Factors:")
			fmt.Printf("  Service Time:     %d min\n", cfg.KPI.ServiceTimeMin)
			fmt.Printf("  Fuel:             %.2f L/km\n", cfg.KPI.FuelPerKm)
			fmt.Printf("  CO2:              %.2f kg/L\n", cfg.KPI.CO2PerLiter)
			fmt.Printf("  Fuel Price:       %.2f per L\n", cfg.KPI.FuelPricePerLiter)

			fmt.Println("\nDaemon:")
			fmt.Printf("  Address:          %s\n", cfg.Daemon.Address)
			fmt.Printf("  Schedule:         %s UTC\n", cfg.Daemon.ScheduleTime)
			fmt.Printf("  PID File:         %s\n", cfg.Daemon.PIDFile)

			fmt.Println("\nLogging:")
			fmt.Printf("  Level:            %s\n", cfg.Logging.Level)
			fmt.Printf("  Format:           %s\n", cfg.Logging.Format)
			fmt.Printf("  Output:           %s\n", cfg.Logging.Output)

			fmt.Println("\nMetrics:")
			fmt.Printf("  Enabled:          %t\n", cfg.Metrics.Enabled)
			if cfg.Metrics.Enabled {
				fmt.Printf("  Endpoint:         %s:%d%s\n", cfg.Metrics.Host, cfg.Metrics.Port, cfg.Metrics.Path)
			}

			return nil
		},
	}

	return cmd
}

// newConfigSetCompanyCommand creates the config set-company subcommand
func newConfigSetCompanyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-company <company-id>",
		Short: "Set the default company for CLI commands",
		Long: `Set the default company used when --company-id is not given.

The company must exist in the database.

Example:
  fretplan config set-company carrier-a`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			companyID := args[0]

			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}

			// Verify the company exists before remembering it
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			db, err := database.NewConnection(&cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer database.Close(db)

			companyRepo := persistence.NewGormCompanyRepository(db)
			companies, err := companyRepo.FindByIDs(context.Background(), []string{companyID})
			if err != nil {
				return fmt.Errorf("failed to look up company: %w", err)
			}
			company, ok := companies[companyID]
			if !ok {
				return fmt.Errorf("company %q not found", companyID)
			}

			if err := userConfigHandler.SetDefaultCompany(companyID); err != nil {
				return fmt.Errorf("failed to set default company: %w", err)
			}

			fmt.Println("✓ Default company set successfully")
			fmt.Printf("  Company ID: %s\n", company.ID)
			fmt.Printf("  Name:       %s\n", company.Name)
			fmt.Printf("\nSingle-company commands will use this carrier by default.\n")
			fmt.Printf("Override with the --company-id flag.\n")

			return nil
		},
	}

	return cmd
}

// newConfigClearCompanyCommand creates the config clear-company subcommand
func newConfigClearCompanyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear-company",
		Short: "Clear the default company setting",
		RunE: func(cmd *cobra.Command, args []string) error {
			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}

			if err := userConfigHandler.ClearDefaultCompany(); err != nil {
				return fmt.Errorf("failed to clear default company: %w", err)
			}

			fmt.Println("✓ Default company cleared")

			return nil
		},
	}

	return cmd
}

// maskPassword hides the password in a connection URL for display
func maskPassword(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.User == nil {
		return raw
	}
	if _, has := parsed.User.Password(); has {
		parsed.User = url.UserPassword(parsed.User.Username(), "****")
	}
	return parsed.String()
}
