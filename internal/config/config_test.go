package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultRankingWeightsSumToOne(t *testing.T) {
	cfg := Default()
	r := cfg.Engine.Ranking
	sum := r.WeightBehavior + r.WeightSimilarity + r.WeightRecency + r.WeightPopularity + r.WeightBase
	if sum < 0.999 || sum > 1.001 {
		t.Fatalf("default ranking weights sum: got %v", sum)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load missing file: %v", err)
	}
	if cfg.Engine.Heating.MaxPerDay != 20 {
		t.Fatalf("unexpected heating cap default: %d", cfg.Engine.Heating.MaxPerDay)
	}
	if cfg.Engine.Behavior.SignalWindow != 500 {
		t.Fatalf("unexpected signal window default: %d", cfg.Engine.Behavior.SignalWindow)
	}
}

func TestLoadYAMLOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	payload := []byte(`
engine:
  heating:
    window: 20m
    max_per_day: 5
  feed:
    default_page_size: 10
`)
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Engine.Heating.Window != 20*time.Minute {
		t.Fatalf("heating window override: got %s", cfg.Engine.Heating.Window)
	}
	if cfg.Engine.Heating.MaxPerDay != 5 {
		t.Fatalf("heating cap override: got %d", cfg.Engine.Heating.MaxPerDay)
	}
	if cfg.Engine.Feed.DefaultPageSize != 10 {
		t.Fatalf("feed page size override: got %d", cfg.Engine.Feed.DefaultPageSize)
	}
	if cfg.Engine.Ranking.WeightBehavior != 0.35 {
		t.Fatalf("untouched weight changed: got %v", cfg.Engine.Ranking.WeightBehavior)
	}
}

func TestLoadRejectsBrokenWeights(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	payload := []byte(`
engine:
  ranking:
    weight_behavior: 0.9
`)
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatalf("expected weight validation error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ENGINE_HEATING_MAX_PER_DAY", "7")
	t.Setenv("ENGINE_HEATING_WINDOW", "15m")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Engine.Heating.MaxPerDay != 7 {
		t.Fatalf("env heating cap: got %d", cfg.Engine.Heating.MaxPerDay)
	}
	if cfg.Engine.Heating.Window != 15*time.Minute {
		t.Fatalf("env heating window: got %s", cfg.Engine.Heating.Window)
	}
}
