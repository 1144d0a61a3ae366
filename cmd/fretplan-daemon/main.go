package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mbendaoud/fretplan-go/internal/adapters/daemon"
	"github.com/mbendaoud/fretplan-go/internal/adapters/metrics"
	"github.com/mbendaoud/fretplan-go/internal/adapters/persistence"
	"github.com/mbendaoud/fretplan-go/internal/adapters/valhalla"
	"github.com/mbendaoud/fretplan-go/internal/application/common"
	"github.com/mbendaoud/fretplan-go/internal/application/optimization/commands"
	"github.com/mbendaoud/fretplan-go/internal/application/optimization/queries"
	"github.com/mbendaoud/fretplan-go/internal/application/optimization/services"
	optimizationTypes "github.com/mbendaoud/fretplan-go/internal/application/optimization/types"
	"github.com/mbendaoud/fretplan-go/internal/domain/routing"
	"github.com/mbendaoud/fretplan-go/internal/domain/shared"
	"github.com/mbendaoud/fretplan-go/internal/infrastructure/config"
	"github.com/mbendaoud/fretplan-go/internal/infrastructure/database"
	"github.com/mbendaoud/fretplan-go/internal/infrastructure/logging"
	"github.com/mbendaoud/fretplan-go/internal/infrastructure/pidfile"
)

func main() {
	// Parse command-line flags
	forceFlag := flag.Bool("force", false, "Kill any existing daemon and start a new one")
	configFlag := flag.String("config", "", "Path to config file")
	runNowFlag := flag.Bool("run-now", false, "Run a batch immediately on startup")
	flag.Parse()

	fmt.Println("FretPlan Daemon v0.1.0")
	fmt.Println("======================")

	// Load configuration
	fmt.Println("Loading configuration...")
	cfg := config.MustLoadConfig(*configFlag)
	if *runNowFlag {
		cfg.Daemon.RunOnStart = true
	}

	// Acquire PID file lock to prevent multiple instances
	fmt.Printf("Acquiring PID file lock: %s\n", cfg.Daemon.PIDFile)
	pf := pidfile.New(cfg.Daemon.PIDFile)

	err := pf.Acquire()
	if err != nil {
		if *forceFlag {
			fmt.Println("Force mode enabled - stopping existing daemon...")
			if killErr := pf.KillExisting(); killErr != nil {
				log.Fatalf("Failed to stop existing daemon: %v", killErr)
			}
			fmt.Println("Existing daemon stopped")

			if err := pf.Acquire(); err != nil {
				log.Fatalf("Failed to acquire PID file lock after stopping existing daemon: %v", err)
			}
		} else {
			log.Fatalf("Failed to acquire PID file lock: %v\nUse --force to stop the existing daemon", err)
		}
	}

	defer func() {
		if err := pf.Release(); err != nil {
			log.Printf("Warning: failed to release PID file: %v", err)
		}
	}()
	fmt.Println("PID file lock acquired")

	if err := run(cfg); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run(cfg *config.Config) error {
	// 1. Logger
	logger, err := logging.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	// 2. Database
	fmt.Printf("Connecting to %s database...\n", cfg.Database.Type)
	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close(db)
	fmt.Println("Database connected")

	// 3. Metrics registry and collectors
	var commandCollector *metrics.CommandMetricsCollector
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()

		commandCollector = metrics.NewCommandMetricsCollector()
		if err := commandCollector.Register(); err != nil {
			return fmt.Errorf("failed to register command metrics: %w", err)
		}

		batchCollector := metrics.NewBatchMetricsCollector()
		if err := batchCollector.Register(); err != nil {
			return fmt.Errorf("failed to register batch metrics: %w", err)
		}
		metrics.SetGlobalBatchCollector(batchCollector)

		routingCollector := metrics.NewRoutingMetricsCollector()
		if err := routingCollector.Register(); err != nil {
			return fmt.Errorf("failed to register routing metrics: %w", err)
		}
		metrics.SetGlobalRoutingCollector(routingCollector)

		fmt.Println("Metrics collectors registered")
	}

	// 4. Repositories
	tripRepo := persistence.NewGormTripRepository(db)
	vehicleRepo := persistence.NewGormVehicleRepository(db)
	companyRepo := persistence.NewGormCompanyRepository(db)
	batchRepo := persistence.NewGormBatchRepository(db)
	resultRepo := persistence.NewGormCompanyResultRepository(db)

	// 5. Routing engine client, optionally behind the Redis matrix cache
	clock := shared.NewRealClock()
	var provider routing.Provider = valhalla.NewClient(valhalla.Config{
		BaseURL:     cfg.Routing.BaseURL,
		Timeout:     cfg.Routing.Timeout,
		MaxRetries:  cfg.Routing.Retry.MaxAttempts,
		BackoffBase: cfg.Routing.Retry.BackoffBase,
		RateLimit:   float64(cfg.Routing.RateLimit.Requests),
		RateBurst:   cfg.Routing.RateLimit.Burst,
	}, clock)
	fmt.Printf("Routing engine client initialized (%s)\n", cfg.Routing.BaseURL)

	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		provider = valhalla.NewCachedProvider(provider, rdb, cfg.Redis.MatrixTTL)
		fmt.Printf("Matrix cache enabled (%s, TTL %s)\n", cfg.Redis.Addr, cfg.Redis.MatrixTTL)
	}

	// 6. Batch pipeline services
	validation := services.NewValidationService()
	backfill := services.NewRouteBackfillService(provider)
	matrix := services.NewMatrixService(provider)
	builder := services.NewGroupBuilder(cfg.KPI.ServiceTimeMin)
	solve := services.NewSolveService(services.SolveSettings{
		Budget:       cfg.Solver.CrossCompanyBudget,
		SingleBudget: cfg.Solver.SingleCompanyBudget,
		DropPenalty:  cfg.Solver.DropPenalty,
		MaxWorkers:   cfg.Solver.MaxWorkers,
	}, clock)
	applier := services.NewPlanApplier(tripRepo)
	kpi := services.NewKPIService(services.KPISettings{
		FuelPerKm:         cfg.KPI.FuelPerKm,
		CO2PerLiter:       cfg.KPI.CO2PerLiter,
		FuelPricePerLiter: cfg.KPI.FuelPricePerLiter,
	})

	// 7. Mediator, middleware and handlers
	med := common.NewMediator()
	if commandCollector != nil {
		med.Use(metrics.PrometheusMiddleware(commandCollector))
	}

	runBatchHandler := commands.NewRunBatchHandler(
		batchRepo, resultRepo, tripRepo, vehicleRepo, companyRepo,
		validation, backfill, matrix, builder, solve, applier, kpi, clock,
	)
	if err := common.RegisterHandler[*optimizationTypes.RunBatchCommand](med, runBatchHandler); err != nil {
		return fmt.Errorf("failed to register RunBatch handler: %w", err)
	}

	reportHandler := queries.NewGetBatchReportHandler(batchRepo, resultRepo, tripRepo, vehicleRepo)
	if err := common.RegisterHandler[*optimizationTypes.GetBatchReportQuery](med, reportHandler); err != nil {
		return fmt.Errorf("failed to register GetBatchReport handler: %w", err)
	}

	listHandler := queries.NewListBatchesHandler(batchRepo)
	if err := common.RegisterHandler[*optimizationTypes.ListBatchesQuery](med, listHandler); err != nil {
		return fmt.Errorf("failed to register ListBatches handler: %w", err)
	}

	// 8. Scheduler and control-plane server
	sched := daemon.NewScheduler(med, logger, clock, cfg.Daemon.ScheduleTime, cfg.Daemon.RunOnStart)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	schedDone := make(chan struct{})
	go func() {
		defer close(schedDone)
		if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Log("ERROR", fmt.Sprintf("Scheduler stopped: %v", err), nil)
		}
	}()

	server := daemon.NewServer(logger, &cfg.Daemon, &cfg.Metrics)
	serveErr := server.Start()

	// Cancel the scheduler and give an in-flight batch a chance to unwind;
	// the pipeline stamps the batch cancelled on its way out.
	cancel()
	select {
	case <-schedDone:
	case <-time.After(cfg.Daemon.ShutdownTimeout):
		logger.Log("WARN", "Batch did not stop within the shutdown timeout", nil)
	}

	return serveErr
}
