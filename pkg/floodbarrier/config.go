package floodbarrier

import (
	"github.com/gonikkk/smart-FloodBarrier-monitoring/internal/adapters/serial"
	"github.com/gonikkk/smart-FloodBarrier-monitoring/internal/adapters/store"
	"github.com/gonikkk/smart-FloodBarrier-monitoring/internal/app/config"
	"github.com/gonikkk/smart-FloodBarrier-monitoring/internal/logging"
)

// Config re-exports the root configuration struct so downstream projects can
// construct or modify it programmatically.
type Config = config.Config

type (
	// SerialConfig describes the UART the barrier controller writes to.
	SerialConfig = serial.Config
	// DatabaseConfig selects the driver and location of the reading log.
	DatabaseConfig = store.Config
	// ViewerConfig controls the terminal viewer's polling.
	ViewerConfig = config.ViewerConfig
	// MetricsConfig configures the metrics HTTP server.
	MetricsConfig = config.MetricsConfig
	// LogConfig configures structured logging.
	LogConfig = logging.Config
)

// Supported database drivers.
const (
	DriverMySQL    = store.DriverMySQL
	DriverPostgres = store.DriverPostgres
	DriverSQLite   = store.DriverSQLite
)

// LoadConfig loads YAML from disk using the internal config reader. An empty
// path yields the built-in defaults.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// DefaultConfig returns the configuration of a stock installation.
func DefaultConfig() *Config {
	return config.Default()
}
