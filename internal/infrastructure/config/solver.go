package config

import "time"

// SolverConfig holds the per-group solver budgets
type SolverConfig struct {
	// Time budget for a cross-company group
	CrossCompanyBudget time.Duration `mapstructure:"cross_company_budget" validate:"required"`

	// Time budget for a single-company group
	SingleCompanyBudget time.Duration `mapstructure:"single_company_budget" validate:"required"`

	// Cost of leaving a trip unserved in single-company mode
	// (zero means the solver's built-in penalty applies)
	DropPenalty float64 `mapstructure:"drop_penalty" validate:"min=0"`

	// Maximum number of category groups solved in parallel
	// (zero means one worker per CPU)
	MaxWorkers int `mapstructure:"max_workers" validate:"min=0"`
}
