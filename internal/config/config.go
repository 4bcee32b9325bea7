package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/Depot/internal/scoring"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Hermes   HermesConfig   `yaml:"hermes"`
	Fleet    FleetConfig    `yaml:"fleet"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port           int      `yaml:"port"`
	MetricsPort    int      `yaml:"metrics_port"`
	AdminToken     string   `yaml:"admin_token"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	RateLimit      int      `yaml:"rate_limit_per_minute"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type HermesConfig struct {
	URL string `yaml:"url"`
}

// FleetConfig selects where fleet records come from. With BackendURL empty
// the service seeds itself from the synthetic generator.
type FleetConfig struct {
	BackendURL       string `yaml:"backend_url"`
	BackendToken     string `yaml:"backend_token"`
	BackendTimeoutMs int    `yaml:"backend_timeout_ms"`
	SyntheticSize    int    `yaml:"synthetic_size"`
	SyntheticSeed    int64  `yaml:"synthetic_seed"`
	SeedOnStart      bool   `yaml:"seed_on_start"`
}

type ScoringConfig struct {
	DefaultPreset string `yaml:"default_preset"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.Fleet.BackendTimeoutMs) * time.Millisecond
}

// Default returns the configuration used when no file or env overrides apply.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8700,
			MetricsPort:    8701,
			AllowedOrigins: []string{"*"},
			RateLimit:      120,
		},
		Hermes: HermesConfig{
			URL: "nats://localhost:4222",
		},
		Fleet: FleetConfig{
			BackendTimeoutMs: 10000,
			SyntheticSize:    25,
			SyntheticSeed:    1,
			SeedOnStart:      true,
		},
		Scoring: ScoringConfig{
			DefaultPreset: scoring.PresetBalanced,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	if _, ok := scoring.Preset(c.Scoring.DefaultPreset); !ok {
		return fmt.Errorf("scoring.default_preset: unknown preset %q (known: %s)",
			c.Scoring.DefaultPreset, strings.Join(scoring.PresetNames(), ", "))
	}
	if c.Fleet.SyntheticSize < 0 {
		return fmt.Errorf("fleet.synthetic_size must be non-negative, got %d", c.Fleet.SyntheticSize)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DEPOT_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("DEPOT_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("DEPOT_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("DEPOT_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("DEPOT_HERMES_URL"); v != "" {
		cfg.Hermes.URL = v
	}
	if v := os.Getenv("DEPOT_FLEET_BACKEND_URL"); v != "" {
		cfg.Fleet.BackendURL = v
	}
	if v := os.Getenv("DEPOT_FLEET_BACKEND_TOKEN"); v != "" {
		cfg.Fleet.BackendToken = v
	}
	if v := os.Getenv("DEPOT_SYNTHETIC_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Fleet.SyntheticSeed = n
		}
	}
	if v := os.Getenv("DEPOT_SEED_ON_START"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Fleet.SeedOnStart = b
		}
	}
	if v := os.Getenv("DEPOT_DEFAULT_PRESET"); v != "" {
		cfg.Scoring.DefaultPreset = v
	}
	if v := os.Getenv("DEPOT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
