package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestInitConfig_Defaults(t *testing.T) {
	path := writeConfig(t, `{"source": "data/customer_data.csv"}`)
	cfg, err := InitConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Source != "data/customer_data.csv" {
		t.Fatalf("source = %q", cfg.Source)
	}
	if cfg.Address != ":8080" || cfg.LogLevel != "INFO" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.Clusters != 3 || cfg.Seed != 42 || cfg.CLVLifetimeMonths != 12 {
		t.Fatalf("pipeline defaults not applied: %+v", cfg)
	}
}

func TestInitConfig_Overrides(t *testing.T) {
	path := writeConfig(t, `{
		"source": "sqlite://orders.db",
		"table": "orders_2024",
		"address": ":9000",
		"log-level": "DEBUG",
		"clusters": 4,
		"seed": 7,
		"clv-lifetime-months": 6
	}`)
	cfg, err := InitConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Table != "orders_2024" || cfg.Address != ":9000" || cfg.Clusters != 4 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Seed != 7 || cfg.CLVLifetimeMonths != 6 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestInitConfig_MissingSource(t *testing.T) {
	path := writeConfig(t, `{"address": ":9000"}`)
	if _, err := InitConfig(path); err == nil {
		t.Fatal("expected error for missing source, got nil")
	}
}

func TestInitConfig_SourceFromEnv(t *testing.T) {
	t.Setenv("SOURCE", "env/orders.csv")
	path := writeConfig(t, `{}`)
	cfg, err := InitConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Source != "env/orders.csv" {
		t.Fatalf("source = %q, want env override", cfg.Source)
	}
}

func TestInitConfig_InvalidClusterCount(t *testing.T) {
	path := writeConfig(t, `{"source": "x.csv", "clusters": 0}`)
	if _, err := InitConfig(path); err == nil {
		t.Fatal("expected error for clusters=0, got nil")
	}
}
