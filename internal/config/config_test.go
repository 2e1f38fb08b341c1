package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func load(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	return Load(pflag.NewFlagSet("test", pflag.ContinueOnError), args)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(t)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Addr != ":8000" || cfg.Mode != "release" || cfg.StaticDir != "static" {
		t.Errorf("unexpected server defaults: %+v", cfg)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("unexpected log defaults: %+v", cfg.Log)
	}
	if cfg.HTTP.ShutdownTimeout != 5*time.Second || cfg.HTTP.IdleTimeout != time.Minute {
		t.Errorf("unexpected http defaults: %+v", cfg.HTTP)
	}
	if cfg.EventsEnabled() {
		t.Error("events must be disabled without a broker")
	}
	if cfg.Kafka.Topic != "todo-events" {
		t.Errorf("unexpected kafka topic: %q", cfg.Kafka.Topic)
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("TODO_ADDR", "127.0.0.1:9000")
	t.Setenv("TODO_KAFKA_BROKER", "kafka:9092")
	t.Setenv("TODO_HTTP_SHUTDOWN_TIMEOUT", "2s")

	cfg, err := load(t)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Addr != "127.0.0.1:9000" {
		t.Errorf("addr: got %q", cfg.Addr)
	}
	if !cfg.EventsEnabled() || cfg.Kafka.Broker != "kafka:9092" {
		t.Errorf("kafka: got %+v", cfg.Kafka)
	}
	if cfg.HTTP.ShutdownTimeout != 2*time.Second {
		t.Errorf("shutdown timeout: got %v", cfg.HTTP.ShutdownTimeout)
	}
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	t.Setenv("TODO_ADDR", "127.0.0.1:9000")

	cfg, err := load(t, "--addr", ":7000", "--log-format", "json", "--read-timeout", "1s")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Addr != ":7000" {
		t.Errorf("addr: got %q", cfg.Addr)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("log format: got %q", cfg.Log.Format)
	}
	if cfg.HTTP.ReadTimeout != time.Second {
		t.Errorf("read timeout: got %v", cfg.HTTP.ReadTimeout)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todo.yaml")
	data := []byte("addr: \":9100\"\nstatic_dir: web\nkafka:\n  broker: localhost:9092\n  topic: audit\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := load(t, "--config", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Addr != ":9100" || cfg.StaticDir != "web" {
		t.Errorf("unexpected server config: %+v", cfg)
	}
	if cfg.Kafka.Broker != "localhost:9092" || cfg.Kafka.Topic != "audit" {
		t.Errorf("unexpected kafka config: %+v", cfg.Kafka)
	}
	if cfg.Kafka.GroupID != "todo-event-logger" {
		t.Errorf("defaults lost when reading a file: %+v", cfg.Kafka)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := load(t, "--config", filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing config file")
	}
	if _, err := load(t, "--mode", "turbo"); err == nil {
		t.Error("expected an error for an unknown mode")
	}
	if _, err := load(t, "--addr", ""); err == nil {
		t.Error("expected an error for an empty addr")
	}
	if _, err := load(t, "--no-such-flag"); err == nil {
		t.Error("expected an error for an unknown flag")
	}
}
