package config

import "time"

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "postgres"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "fretplan"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "fretplan"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 25
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 5
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// Routing defaults (Valhalla's standard port is 8002)
	if cfg.Routing.BaseURL == "" {
		cfg.Routing.BaseURL = "http://localhost:8002"
	}
	if cfg.Routing.Timeout == 0 {
		cfg.Routing.Timeout = 30 * time.Second
	}
	if cfg.Routing.RateLimit.Requests == 0 {
		cfg.Routing.RateLimit.Requests = 10
	}
	if cfg.Routing.RateLimit.Burst == 0 {
		cfg.Routing.RateLimit.Burst = 10
	}
	if cfg.Routing.Retry.MaxAttempts == 0 {
		cfg.Routing.Retry.MaxAttempts = 3
	}
	if cfg.Routing.Retry.BackoffBase == 0 {
		cfg.Routing.Retry.BackoffBase = 500 * time.Millisecond
	}

	// Redis defaults (disabled unless configured)
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Redis.MatrixTTL == 0 {
		cfg.Redis.MatrixTTL = 12 * time.Hour
	}

	// Solver defaults
	if cfg.Solver.CrossCompanyBudget == 0 {
		cfg.Solver.CrossCompanyBudget = 300 * time.Second
	}
	if cfg.Solver.SingleCompanyBudget == 0 {
		cfg.Solver.SingleCompanyBudget = 10 * time.Second
	}

	// KPI defaults: 30 L/100km diesel trucks, 2.68 kg CO2 per liter
	if cfg.KPI.ServiceTimeMin == 0 {
		cfg.KPI.ServiceTimeMin = 30
	}
	if cfg.KPI.FuelPerKm == 0 {
		cfg.KPI.FuelPerKm = 0.30
	}
	if cfg.KPI.CO2PerLiter == 0 {
		cfg.KPI.CO2PerLiter = 2.68
	}
	if cfg.KPI.FuelPricePerLiter == 0 {
		cfg.KPI.FuelPricePerLiter = 1.50
	}

	// Daemon defaults
	if cfg.Daemon.Address == "" {
		cfg.Daemon.Address = "localhost:50052"
	}
	if cfg.Daemon.PIDFile == "" {
		cfg.Daemon.PIDFile = "/tmp/fretplan-daemon.pid"
	}
	if cfg.Daemon.ScheduleTime == "" {
		cfg.Daemon.ScheduleTime = "02:00"
	}
	if cfg.Daemon.ShutdownTimeout == 0 {
		cfg.Daemon.ShutdownTimeout = 30 * time.Second
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	// Metrics defaults
	if cfg.Metrics.Host == "" {
		cfg.Metrics.Host = "localhost"
	}
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9464
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}
