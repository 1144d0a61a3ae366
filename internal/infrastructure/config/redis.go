package config

import "time"

// RedisConfig holds the distance matrix cache configuration. The cache is
// optional; batches run fine without it, every lookup just hits Valhalla.
type RedisConfig struct {
	// Enabled controls whether the matrix cache is used at all
	Enabled bool `mapstructure:"enabled"`

	// Redis server address (host:port)
	Addr string `mapstructure:"addr"`

	// Password (empty for no auth)
	Password string `mapstructure:"password"`

	// Database number
	DB int `mapstructure:"db" validate:"min=0"`

	// How long cached matrices stay valid
	MatrixTTL time.Duration `mapstructure:"matrix_ttl"`
}
