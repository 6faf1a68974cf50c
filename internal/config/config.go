package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Pulse      PulseConfig      `yaml:"pulse"`
	Driftwatch DriftwatchConfig `yaml:"driftwatch"`
	Engine     EngineConfig     `yaml:"engine"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type ServerConfig struct {
	Port        int    `yaml:"port"`
	MetricsPort int    `yaml:"metrics_port"`
	AdminToken  string `yaml:"admin_token"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type PulseConfig struct {
	URL string `yaml:"url"`
}

type DriftwatchConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

type EngineConfig struct {
	LearningRate    float64 `yaml:"learning_rate"`
	Momentum        float64 `yaml:"momentum"`
	MinWeight       float64 `yaml:"min_weight"`
	MaxWeight       float64 `yaml:"max_weight"`
	HistoryCap      int     `yaml:"history_cap"`
	EvalWindow      int     `yaml:"eval_window"`
	AdaptIntervalMs int     `yaml:"adapt_interval_ms"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) AdaptInterval() time.Duration {
	return time.Duration(c.Engine.AdaptIntervalMs) * time.Millisecond
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        8610,
			MetricsPort: 8611,
		},
		Pulse: PulseConfig{
			URL: "nats://localhost:4222",
		},
		Driftwatch: DriftwatchConfig{
			URL: "http://localhost:9180",
		},
		Engine: EngineConfig{
			LearningRate:    0.05,
			Momentum:        0.3,
			MinWeight:       0.10,
			MaxWeight:       0.60,
			HistoryCap:      200,
			EvalWindow:      20,
			AdaptIntervalMs: 60000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

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
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("VIGIL_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("VIGIL_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("VIGIL_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("VIGIL_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("VIGIL_PULSE_URL"); v != "" {
		cfg.Pulse.URL = v
	}
	if v := os.Getenv("VIGIL_DRIFTWATCH_URL"); v != "" {
		cfg.Driftwatch.URL = v
	}
	if v := os.Getenv("VIGIL_DRIFTWATCH_TOKEN"); v != "" {
		cfg.Driftwatch.Token = v
	}
	if v := os.Getenv("VIGIL_LEARNING_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Engine.LearningRate = f
		}
	}
	if v := os.Getenv("VIGIL_ADAPT_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Engine.AdaptIntervalMs = n
		}
	}
	if v := os.Getenv("VIGIL_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
