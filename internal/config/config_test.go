package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	// Unset all VIGIL_ env vars to test pure defaults
	envVars := []string{
		"VIGIL_PORT", "VIGIL_METRICS_PORT", "VIGIL_ADMIN_TOKEN",
		"VIGIL_DATABASE_URL", "VIGIL_PULSE_URL", "VIGIL_DRIFTWATCH_URL",
		"VIGIL_DRIFTWATCH_TOKEN", "VIGIL_LEARNING_RATE",
		"VIGIL_ADAPT_INTERVAL_MS", "VIGIL_LOG_LEVEL",
	}
	for _, k := range envVars {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8610 {
		t.Errorf("expected port 8610, got %d", cfg.Server.Port)
	}
	if cfg.Server.MetricsPort != 8611 {
		t.Errorf("expected metrics port 8611, got %d", cfg.Server.MetricsPort)
	}
	if cfg.Pulse.URL != "nats://localhost:4222" {
		t.Errorf("expected nats URL, got %s", cfg.Pulse.URL)
	}
	if cfg.Driftwatch.URL != "http://localhost:9180" {
		t.Errorf("expected driftwatch URL, got %s", cfg.Driftwatch.URL)
	}
	if math.Abs(cfg.Engine.LearningRate-0.05) > 1e-9 {
		t.Errorf("expected learning rate 0.05, got %f", cfg.Engine.LearningRate)
	}
	if math.Abs(cfg.Engine.Momentum-0.3) > 1e-9 {
		t.Errorf("expected momentum 0.3, got %f", cfg.Engine.Momentum)
	}
	if math.Abs(cfg.Engine.MinWeight-0.10) > 1e-9 || math.Abs(cfg.Engine.MaxWeight-0.60) > 1e-9 {
		t.Errorf("expected bounds [0.10, 0.60], got [%f, %f]", cfg.Engine.MinWeight, cfg.Engine.MaxWeight)
	}
	if cfg.Engine.HistoryCap != 200 {
		t.Errorf("expected history cap 200, got %d", cfg.Engine.HistoryCap)
	}
	if cfg.Engine.EvalWindow != 20 {
		t.Errorf("expected eval window 20, got %d", cfg.Engine.EvalWindow)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got '%s'", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("expected log format 'json', got '%s'", cfg.Logging.Format)
	}
	if cfg.AdaptInterval() != time.Minute {
		t.Errorf("expected AdaptInterval 1m, got %v", cfg.AdaptInterval())
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("VIGIL_PORT", "9000")
	t.Setenv("VIGIL_METRICS_PORT", "9001")
	t.Setenv("VIGIL_ADMIN_TOKEN", "secret-token")
	t.Setenv("VIGIL_DATABASE_URL", "postgres://localhost/vigil_test")
	t.Setenv("VIGIL_PULSE_URL", "nats://nats:4222")
	t.Setenv("VIGIL_DRIFTWATCH_URL", "http://driftwatch:9180")
	t.Setenv("VIGIL_DRIFTWATCH_TOKEN", "drift-secret")
	t.Setenv("VIGIL_LEARNING_RATE", "0.1")
	t.Setenv("VIGIL_ADAPT_INTERVAL_MS", "2000")
	t.Setenv("VIGIL_LOG_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Server.MetricsPort != 9001 {
		t.Errorf("expected metrics port 9001, got %d", cfg.Server.MetricsPort)
	}
	if cfg.Server.AdminToken != "secret-token" {
		t.Errorf("expected admin token 'secret-token', got '%s'", cfg.Server.AdminToken)
	}
	if cfg.Database.URL != "postgres://localhost/vigil_test" {
		t.Errorf("expected database URL, got '%s'", cfg.Database.URL)
	}
	if cfg.Pulse.URL != "nats://nats:4222" {
		t.Errorf("expected pulse URL, got '%s'", cfg.Pulse.URL)
	}
	if cfg.Driftwatch.URL != "http://driftwatch:9180" {
		t.Errorf("expected driftwatch URL, got '%s'", cfg.Driftwatch.URL)
	}
	if cfg.Driftwatch.Token != "drift-secret" {
		t.Errorf("expected driftwatch token, got '%s'", cfg.Driftwatch.Token)
	}
	if math.Abs(cfg.Engine.LearningRate-0.1) > 1e-9 {
		t.Errorf("expected learning rate 0.1, got %f", cfg.Engine.LearningRate)
	}
	if cfg.Engine.AdaptIntervalMs != 2000 {
		t.Errorf("expected adapt interval 2000, got %d", cfg.Engine.AdaptIntervalMs)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got '%s'", cfg.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vigil.yaml")
	data := []byte(`
server:
  port: 7700
engine:
  learning_rate: 0.02
  history_cap: 50
logging:
  level: warn
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 7700 {
		t.Errorf("expected port 7700, got %d", cfg.Server.Port)
	}
	if math.Abs(cfg.Engine.LearningRate-0.02) > 1e-9 {
		t.Errorf("expected learning rate 0.02, got %f", cfg.Engine.LearningRate)
	}
	if cfg.Engine.HistoryCap != 50 {
		t.Errorf("expected history cap 50, got %d", cfg.Engine.HistoryCap)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected log level 'warn', got '%s'", cfg.Logging.Level)
	}
	// values absent from the file keep their defaults
	if cfg.Engine.EvalWindow != 20 {
		t.Errorf("expected eval window 20, got %d", cfg.Engine.EvalWindow)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/vigil.yaml"); err == nil {
		t.Error("expected error for missing config file")
	}
}
