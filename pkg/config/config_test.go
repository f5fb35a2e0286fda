package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Engine.SnapshotPath != "data/search_index.json" {
		t.Errorf("Engine.SnapshotPath = %q", cfg.Engine.SnapshotPath)
	}
	if !cfg.Engine.LoadOnStart {
		t.Error("Engine.LoadOnStart should default to true")
	}
	if cfg.Kafka.Enabled || cfg.Postgres.Enabled || cfg.Analytics.Enabled {
		t.Error("optional subsystems should default to disabled")
	}
	if cfg.Redis.CacheTTL != 60*time.Second {
		t.Errorf("Redis.CacheTTL = %v, want 60s", cfg.Redis.CacheTTL)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.yaml")
	content := []byte(`
server:
  port: 9999
engine:
  snapshotPath: /var/lib/docsearch/index.json
  loadOnStart: false
kafka:
  enabled: true
  brokers:
    - broker1:9092
    - broker2:9092
logging:
  level: debug
`)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Engine.LoadOnStart {
		t.Error("Engine.LoadOnStart should be overridden to false")
	}
	if len(cfg.Kafka.Brokers) != 2 {
		t.Errorf("Kafka.Brokers = %v", cfg.Kafka.Brokers)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	// Untouched sections keep their defaults.
	if cfg.Metrics.Port != 9090 {
		t.Errorf("Metrics.Port = %d, want default 9090", cfg.Metrics.Port)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("server: [not a map"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DS_SERVER_PORT", "7070")
	t.Setenv("DS_REDIS_ADDR", "redis.internal:6379")
	t.Setenv("DS_KAFKA_ENABLED", "true")
	t.Setenv("DS_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("DS_LOGGING_LEVEL", "error")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Redis.Addr != "redis.internal:6379" {
		t.Errorf("Redis.Addr = %q", cfg.Redis.Addr)
	}
	if !cfg.Kafka.Enabled || len(cfg.Kafka.Brokers) != 2 {
		t.Errorf("kafka overrides not applied: %+v", cfg.Kafka)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("Logging.Level = %q, want error", cfg.Logging.Level)
	}
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{
		Host: "db", Port: 5432, User: "svc", Password: "secret",
		Database: "docsearch", SSLMode: "disable",
	}
	want := "host=db port=5432 user=svc password=secret dbname=docsearch sslmode=disable"
	if got := p.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
