package daemon

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/mbendaoud/fretplan-go/internal/adapters/metrics"
	"github.com/mbendaoud/fretplan-go/internal/application/common"
	"github.com/mbendaoud/fretplan-go/internal/infrastructure/config"
)

// HealthServiceName is the gRPC health service the CLI probes
const HealthServiceName = "fretplan.daemon"

// Server runs the daemon's control plane: a gRPC health endpoint and,
// when metrics are enabled, the Prometheus scrape endpoint. The batch
// work itself happens in the Scheduler.
type Server struct {
	logger     common.Logger
	daemonCfg  *config.DaemonConfig
	metricsCfg *config.MetricsConfig

	grpcServer   *grpc.Server
	healthServer *health.Server
	httpServer   *http.Server

	shutdownChan chan os.Signal
	done         chan struct{}
}

// NewServer creates the daemon control-plane server
func NewServer(logger common.Logger, daemonCfg *config.DaemonConfig, metricsCfg *config.MetricsConfig) *Server {
	s := &Server{
		logger:       logger,
		daemonCfg:    daemonCfg,
		metricsCfg:   metricsCfg,
		shutdownChan: make(chan os.Signal, 1),
		done:         make(chan struct{}),
	}

	signal.Notify(s.shutdownChan, os.Interrupt, syscall.SIGTERM)

	return s
}

// Start begins serving and blocks until a shutdown signal or a server error
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.daemonCfg.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.daemonCfg.Address, err)
	}

	s.grpcServer = grpc.NewServer()
	s.healthServer = health.NewServer()
	grpc_health_v1.RegisterHealthServer(s.grpcServer, s.healthServer)
	s.healthServer.SetServingStatus(HealthServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	s.healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	s.logger.Log("INFO", fmt.Sprintf("Health server listening on %s", s.daemonCfg.Address), map[string]interface{}{
		"address": s.daemonCfg.Address,
	})

	errChan := make(chan error, 2)

	go func() {
		if err := s.grpcServer.Serve(listener); err != nil {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	if s.metricsCfg.Enabled && metrics.IsEnabled() {
		s.startMetricsServer(errChan)
	}

	go s.handleShutdown()

	select {
	case err := <-errChan:
		return err
	case <-s.done:
		s.stopServers()
		return nil
	}
}

// Stop triggers the same path as SIGTERM
func (s *Server) Stop() {
	s.shutdownChan <- syscall.SIGTERM
}

func (s *Server) startMetricsServer(errChan chan<- error) {
	mux := http.NewServeMux()
	mux.Handle(s.metricsCfg.Path, promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))

	addr := fmt.Sprintf("%s:%d", s.metricsCfg.Host, s.metricsCfg.Port)
	s.httpServer = &http.Server{Addr: addr, Handler: mux}

	s.logger.Log("INFO", fmt.Sprintf("Metrics server listening on %s%s", addr, s.metricsCfg.Path), map[string]interface{}{
		"address": addr,
		"path":    s.metricsCfg.Path,
	})

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("metrics server error: %w", err)
		}
	}()
}

// handleShutdown waits for a signal, flips health to NOT_SERVING and
// releases Start
func (s *Server) handleShutdown() {
	sig := <-s.shutdownChan
	s.logger.Log("INFO", fmt.Sprintf("Received %s, shutting down", sig), nil)

	if s.healthServer != nil {
		s.healthServer.SetServingStatus(HealthServiceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)
		s.healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	}

	close(s.done)
}

func (s *Server) stopServers() {
	ctx, cancel := context.WithTimeout(context.Background(), s.daemonCfg.ShutdownTimeout)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Log("WARN", fmt.Sprintf("Metrics server shutdown: %v", err), nil)
		}
	}

	// GracefulStop lets in-flight health checks finish
	if s.grpcServer != nil {
		s.grpcServer.GracefulStop()
	}
}
