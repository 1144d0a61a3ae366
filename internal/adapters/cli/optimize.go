package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mbendaoud/fretplan-go/internal/application/common"
	optimizationTypes "github.com/mbendaoud/fretplan-go/internal/application/optimization/types"
	"github.com/mbendaoud/fretplan-go/internal/domain/planning"
	"github.com/mbendaoud/fretplan-go/internal/infrastructure/config"
)

// NewOptimizeCommand creates the optimize command
func NewOptimizeCommand() *cobra.Command {
	var (
		dateStr   string
		companyID string
		batchType string
		fuelPrice float64
		output    string
	)

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Run an optimization batch for a day of trips",
		Long: `Run one optimization batch over the planned trips of a calendar day.

Cross-company batches (the default) chain trips across carrier boundaries;
single-company batches optimize one carrier's trips on its own fleet and
require --company-id.

The batch report is written as JSON to stdout, or to --output when given.
Exit code is 0 when the batch completes (unassigned trips do not fail the
run) and 2 when it fails.

Examples:
  fretplan optimize --date 2025-03-14
  fretplan optimize --date 2025-03-14 --company-id carrier-a --type single_company
  fretplan optimize --date 2025-03-14 --fuel-price 1.72 --output report.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if batchType != "" &&
				batchType != string(planning.TypeCrossCompany) &&
				batchType != string(planning.TypeSingleCompany) {
				return fmt.Errorf("invalid --type %q (want %s or %s)",
					batchType, planning.TypeCrossCompany, planning.TypeSingleCompany)
			}

			date := time.Now().UTC()
			if dateStr != "" {
				parsed, err := time.Parse("2006-01-02", dateStr)
				if err != nil {
					return fmt.Errorf("invalid --date %q (want YYYY-MM-DD)", dateStr)
				}
				date = parsed
			}

			// Fall back to the configured default company for single-company runs
			if companyID == "" && batchType == string(planning.TypeSingleCompany) {
				if handler, err := config.NewUserConfigHandler(); err == nil {
					if userCfg, err := handler.Load(); err == nil {
						companyID = userCfg.DefaultCompanyID
					}
				}
			}

			application, err := newApp(configPath)
			if err != nil {
				return err
			}
			defer application.close()

			runCmd := &optimizationTypes.RunBatchCommand{
				Date: date,
				Type: planning.BatchType(batchType),
			}
			if companyID != "" {
				runCmd.CompanyID = &companyID
			}
			if cmd.Flags().Changed("fuel-price") {
				runCmd.FuelPrice = &fuelPrice
			}

			// Usage is fine from here on; failures are batch failures
			cmd.SilenceUsage = true

			ctx := common.WithLogger(context.Background(), application.logger)
			resp, err := application.mediator.Send(ctx, runCmd)
			if err != nil {
				return &ExitError{Code: 2, Message: fmt.Sprintf("optimization failed: %v", err)}
			}

			report := resp.(*optimizationTypes.RunBatchResponse).Report
			if err := writeReport(report, output); err != nil {
				return err
			}

			if output != "" && output != "-" {
				fmt.Printf("✓ Batch %s completed\n", report.BatchID)
				fmt.Printf("  Date:            %s\n", report.Date)
				fmt.Printf("  Trips optimized: %d\n", report.TripsOptimized)
				fmt.Printf("  Unassigned:      %d\n", len(report.Unassigned))
				fmt.Printf("  Vehicles used:   %d\n", report.VehiclesUsed)
				fmt.Printf("  Km saved:        %.1f\n", report.Totals.KmSaved)
				fmt.Printf("  Report:          %s\n", output)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&dateStr, "date", "", "Day to optimize, YYYY-MM-DD (default: today, UTC)")
	cmd.Flags().StringVar(&companyID, "company-id", "", "Restrict the batch to one carrier")
	cmd.Flags().StringVar(&batchType, "type", "", "Batch type: cross_company or single_company (default: cross_company, or single_company when --company-id is set)")
	cmd.Flags().Float64Var(&fuelPrice, "fuel-price", 0, "Fuel price per liter for savings valuation (default: configured price)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the JSON report to this file (\"-\" or empty: stdout)")

	return cmd
}

// writeReport emits the report JSON to stdout or the given file
func writeReport(report *planning.BatchReport, output string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	if output == "" || output == "-" {
		fmt.Println(string(data))
		return nil
	}

	if err := os.WriteFile(output, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write report to %s: %w", output, err)
	}
	return nil
}
