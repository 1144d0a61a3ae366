package cli

import (
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

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
)

// ExitError carries a specific process exit code through cobra.
// A failed batch exits 2 so cron wrappers can tell it from usage errors.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

// app bundles everything a CLI command needs to run batches in-process
type app struct {
	db       *gorm.DB
	mediator common.Mediator
	logger   *logging.ZapLogger
	clock    shared.Clock
}

// newApp loads config and wires the full optimization stack. Commands that
// only read config (config show, health) skip this.
func newApp(configPath string) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return newAppWithConfig(cfg)
}

func newAppWithConfig(cfg *config.Config) (*app, error) {
	logger, err := logging.New(&cfg.Logging)
	if err != nil {
		return nil, err
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	clock := shared.NewRealClock()

	// Repositories
	tripRepo := persistence.NewGormTripRepository(db)
	vehicleRepo := persistence.NewGormVehicleRepository(db)
	companyRepo := persistence.NewGormCompanyRepository(db)
	batchRepo := persistence.NewGormBatchRepository(db)
	resultRepo := persistence.NewGormCompanyResultRepository(db)

	// Routing engine, optionally behind the Redis matrix cache
	var provider routing.Provider = valhalla.NewClient(valhalla.Config{
		BaseURL:     cfg.Routing.BaseURL,
		Timeout:     cfg.Routing.Timeout,
		MaxRetries:  cfg.Routing.Retry.MaxAttempts,
		BackoffBase: cfg.Routing.Retry.BackoffBase,
		RateLimit:   float64(cfg.Routing.RateLimit.Requests),
		RateBurst:   cfg.Routing.RateLimit.Burst,
	}, clock)
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		provider = valhalla.NewCachedProvider(provider, rdb, cfg.Redis.MatrixTTL)
	}

	// Services
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

	// Mediator + handlers
	med := common.NewMediator()

	runBatchHandler := commands.NewRunBatchHandler(
		batchRepo, resultRepo, tripRepo, vehicleRepo, companyRepo,
		validation, backfill, matrix, builder, solve, applier, kpi, clock,
	)
	if err := common.RegisterHandler[*optimizationTypes.RunBatchCommand](med, runBatchHandler); err != nil {
		return nil, fmt.Errorf("failed to register RunBatch handler: %w", err)
	}

	reportHandler := queries.NewGetBatchReportHandler(batchRepo, resultRepo, tripRepo, vehicleRepo)
	if err := common.RegisterHandler[*optimizationTypes.GetBatchReportQuery](med, reportHandler); err != nil {
		return nil, fmt.Errorf("failed to register GetBatchReport handler: %w", err)
	}

	listHandler := queries.NewListBatchesHandler(batchRepo)
	if err := common.RegisterHandler[*optimizationTypes.ListBatchesQuery](med, listHandler); err != nil {
		return nil, fmt.Errorf("failed to register ListBatches handler: %w", err)
	}

	return &app{db: db, mediator: med, logger: logger, clock: clock}, nil
}

// close releases the database and flushes logs
func (a *app) close() {
	database.Close(a.db)
	_ = a.logger.Sync()
}

// prettyPrint formats JSON for display
func prettyPrint(v interface{}) string {
	bytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(bytes)
}
