package config

import "time"

// DaemonConfig holds daemon service configuration
type DaemonConfig struct {
	// gRPC server address for health checks (host:port)
	Address string `mapstructure:"address" validate:"required"`

	// PID file location
	PIDFile string `mapstructure:"pid_file"`

	// Wall-clock time of the nightly run, "HH:MM" in UTC
	ScheduleTime string `mapstructure:"schedule_time" validate:"required,hhmm"`

	// Run a batch immediately on startup instead of waiting for the schedule
	RunOnStart bool `mapstructure:"run_on_start"`

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required"`
}
