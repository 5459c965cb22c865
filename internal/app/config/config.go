package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/gonikkk/smart-FloodBarrier-monitoring/internal/adapters/serial"
	"github.com/gonikkk/smart-FloodBarrier-monitoring/internal/adapters/store"
	"github.com/gonikkk/smart-FloodBarrier-monitoring/internal/logging"
	"github.com/gonikkk/smart-FloodBarrier-monitoring/internal/ports"
)

type Config struct {
	Serial   serial.Config  `yaml:"serial"`
	Database store.Config   `yaml:"database"`
	Viewer   ViewerConfig   `yaml:"viewer"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Log      logging.Config `yaml:"log"`
}

type ViewerConfig struct {
	RefreshInterval time.Duration `yaml:"refresh_interval" validate:"gt=0"`
	Limit           int           `yaml:"limit" validate:"gt=0,lte=10000"`
}

// MetricsConfig controls the Prometheus endpoint. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Default is the configuration of the field installation: a MariaDB
// instance on the same board and the UART on /dev/serial0.
func Default() *Config {
	cfg := baseline()
	cfg.applyDefaults()
	return cfg
}

// baseline holds the values a config file is overlaid on. Driver-dependent
// fields such as the port stay zero until the driver is known.
func baseline() *Config {
	return &Config{
		Database: store.Config{
			Driver:   store.DriverMySQL,
			Host:     "localhost",
			User:     "sensoruser",
			Password: "sensorpass",
			Name:     "sensordb",
		},
		Metrics: MetricsConfig{Addr: ":9100"},
		Log:     logging.DefaultConfig(),
	}
}

// Load reads path over the field defaults. A .env file in the working
// directory is loaded first and ${VAR} references in the YAML are expanded
// from the environment. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	if path == "" {
		cfg := Default()
		return cfg, cfg.validate()
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := baseline()
	if err := yaml.Unmarshal([]byte(expandEnv(string(raw))), cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnv replaces ${NAME} with the environment value of NAME. Any other
// '$' is kept literally.
func expandEnv(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(ref string) string {
		return os.Getenv(ref[2 : len(ref)-1])
	})
}

// Policy derives the ingestion loop policy.
func (c *Config) Policy() ports.Policy {
	return ports.Policy{ReconnectDelay: c.Database.ReconnectDelay}
}

func (c *Config) applyDefaults() {
	c.Serial.ApplyDefaults()
	c.Database.ApplyDefaults()
	if c.Viewer.RefreshInterval <= 0 {
		c.Viewer.RefreshInterval = 5 * time.Second
	}
	if c.Viewer.Limit <= 0 {
		c.Viewer.Limit = 50
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
}

func (c *Config) validate() error {
	if err := structValidator().Struct(c); err != nil {
		return describe(err)
	}
	if err := c.Serial.Validate(); err != nil {
		return fmt.Errorf("serial config: %w", err)
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database config: %w", err)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format must be json or console, got %q", c.Log.Format)
	}
	return nil
}

func structValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// describe flattens validator errors into one message keyed by YAML path.
func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", field, fe.Tag(), fe.Param()))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s failed %s", field, fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
