package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	optimizationTypes "github.com/mbendaoud/fretplan-go/internal/application/optimization/types"
)

// NewBatchCommand creates the batch command with subcommands
func NewBatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Inspect past optimization batches",
		Long: `Inspect optimization batches stored in the database.

Examples:
  fretplan batch list
  fretplan batch list --limit 25
  fretplan batch show 6b9f7a3c-1d2e-4f5a-8b7c-9d0e1f2a3b4c`,
	}

	cmd.AddCommand(newBatchListCommand())
	cmd.AddCommand(newBatchShowCommand())

	return cmd
}

// newBatchListCommand creates the batch list subcommand
func newBatchListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent batches, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := newApp(configPath)
			if err != nil {
				return err
			}
			defer application.close()

			resp, err := application.mediator.Send(context.Background(), &optimizationTypes.ListBatchesQuery{Limit: limit})
			if err != nil {
				return fmt.Errorf("failed to list batches: %w", err)
			}
			batches := resp.(*optimizationTypes.ListBatchesResponse).Batches

			if len(batches) == 0 {
				fmt.Println("No batches found")
				return nil
			}

			fmt.Printf("%-36s %-12s %-15s %-11s %6s %9s %10s\n",
				"ID", "DATE", "TYPE", "STATUS", "TRIPS", "VEHICLES", "KM SAVED")
			for _, b := range batches {
				fmt.Printf("%-36s %-12s %-15s %-11s %6d %9d %10.1f\n",
					b.ID,
					b.BatchDate.Format("2006-01-02"),
					b.Type,
					b.Status,
					b.TotalTrips,
					b.VehiclesUsed,
					b.KmSaved)
			}
			fmt.Printf("\nTotal: %d batches\n", len(batches))

			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of batches to show")

	return cmd
}

// newBatchShowCommand creates the batch show subcommand
func newBatchShowCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <batch-id>",
		Short: "Show the full report of one batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := newApp(configPath)
			if err != nil {
				return err
			}
			defer application.close()

			resp, err := application.mediator.Send(context.Background(), &optimizationTypes.GetBatchReportQuery{BatchID: args[0]})
			if err != nil {
				return fmt.Errorf("failed to load batch: %w", err)
			}
			report := resp.(*optimizationTypes.GetBatchReportResponse).Report

			if asJSON {
				fmt.Println(prettyPrint(report))
				return nil
			}

			fmt.Printf("Batch: %s\n", report.BatchID)
			fmt.Printf("  Date:            %s\n", report.Date)
			fmt.Printf("  Type:            %s\n", report.Type)
			fmt.Printf("  Trips optimized: %d\n", report.TripsOptimized)
			fmt.Printf("  Unassigned:      %d\n", len(report.Unassigned))
			fmt.Printf("  Vehicles used:   %d\n", report.VehiclesUsed)
			fmt.Printf("  Km saved:        %.1f\n", report.Totals.KmSaved)
			fmt.Printf("  Fuel saved:      %.1f L\n", report.Totals.FuelSavedLiters)
			fmt.Printf("  CO2 saved:       %.1f kg\n", report.Totals.CO2SavedKg)
			fmt.Printf("  Cost saved:      %.2f\n", report.Totals.CostSaved)
			if report.Error != "" {
				fmt.Printf("  Error:           %s\n", report.Error)
			}

			if len(report.CompanyResults) > 0 {
				fmt.Printf("\nPer-company savings:\n")
				fmt.Printf("  %-20s %6s %9s %10s %10s\n",
					"COMPANY", "TRIPS", "VEHICLES", "KM SAVED", "FUEL (L)")
				for _, companyID := range report.ParticipatingCompanies {
					r, ok := report.CompanyResults[companyID]
					if !ok {
						continue
					}
					fmt.Printf("  %-20s %6d %9d %10.1f %10.1f\n",
						companyID, r.TripsAssigned, r.VehiclesUsed, r.KmSaved, r.FuelSavedLiters)
				}
			}

			if len(report.Unassigned) > 0 {
				fmt.Printf("\nUnassigned trips:\n")
				for _, u := range report.Unassigned {
					fmt.Printf("  %-20s %s\n", u.TripID, u.Reason)
				}
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw JSON report")

	return cmd
}
