package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/mbendaoud/fretplan-go/internal/adapters/daemon"
	"github.com/mbendaoud/fretplan-go/internal/infrastructure/config"
)

// NewHealthCommand creates the health command
func NewHealthCommand() *cobra.Command {
	var address string

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check daemon health status",
		Long:  `Probe the daemon's gRPC health endpoint.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if address == "" {
				cfg := config.LoadConfigOrDefault(configPath)
				address = cfg.Daemon.Address
			}

			conn, err := grpc.NewClient(
				address,
				grpc.WithTransportCredentials(insecure.NewCredentials()),
			)
			if err != nil {
				return fmt.Errorf("failed to connect to daemon: %w", err)
			}
			defer conn.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			client := grpc_health_v1.NewHealthClient(conn)
			resp, err := client.Check(ctx, &grpc_health_v1.HealthCheckRequest{
				Service: daemon.HealthServiceName,
			})
			if err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}

			if verbose {
				fmt.Println(protojson.Format(resp))
			}

			if resp.Status != grpc_health_v1.HealthCheckResponse_SERVING {
				return fmt.Errorf("daemon is not serving (status: %s)", resp.Status)
			}

			fmt.Println("✓ Daemon is healthy")
			fmt.Printf("  Address: %s\n", address)
			fmt.Printf("  Service: %s\n", daemon.HealthServiceName)
			fmt.Printf("  Status:  %s\n", resp.Status)

			return nil
		},
	}

	cmd.Flags().StringVar(&address, "address", "", "Daemon gRPC address (default: from config)")

	return cmd
}
