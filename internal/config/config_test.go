package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kailas-cloud/burner/internal/domain"
)

func validConfig() Config {
	return Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Driver: "redis", Addrs: []string{"localhost:6379"}},
		Provider: ProviderConfig{BaseURL: "http://localhost:11434/v1"},
		Burner:   BurnerConfig{IntervalMinutes: 5},
	}
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for port 0")
	}
}

func TestValidate_MissingRedisAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing database addrs")
	}
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Driver = "valkey"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
	expected := `database.driver must be "redis", got "valkey"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_MissingBaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.Provider.BaseURL = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing provider.base_url")
	}
}

func TestValidate_Interval(t *testing.T) {
	for _, n := range []int{-1, -10, domain.MaxIntervalMinutes + 1, 200_000_000} {
		cfg := validConfig()
		cfg.Burner.IntervalMinutes = n
		if err := cfg.Validate(); err == nil {
			t.Errorf("interval %d: expected error", n)
		}
	}

	cfg := validConfig()
	cfg.Burner.IntervalMinutes = domain.MaxIntervalMinutes
	if err := cfg.Validate(); err != nil {
		t.Errorf("interval %d: unexpected error %v", domain.MaxIntervalMinutes, err)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("ReadTimeoutSec: got %d, want 10", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 10 {
		t.Errorf("WriteTimeoutSec: got %d, want 10", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("ShutdownSec: got %d, want 10", cfg.HTTP.ShutdownSec)
	}
	if cfg.Database.Driver != "redis" {
		t.Errorf("Driver: got %q, want redis", cfg.Database.Driver)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("ReadinessTimeout: got %d, want 10", cfg.Database.ReadinessTimeout)
	}
	if cfg.Burner.IntervalMinutes != 5 {
		t.Errorf("IntervalMinutes: got %d, want 5", cfg.Burner.IntervalMinutes)
	}
	if cfg.Burner.AutoStart {
		t.Error("AutoStart: got true, want false")
	}
	if cfg.Burner.WarningTTLSec != 5 {
		t.Errorf("WarningTTLSec: got %d, want 5", cfg.Burner.WarningTTLSec)
	}
	if cfg.Burner.JournalSize != 500 {
		t.Errorf("JournalSize: got %d, want 500", cfg.Burner.JournalSize)
	}
	if cfg.Storage.KeyPrefix != "burner:" {
		t.Errorf("KeyPrefix: got %q, want burner:", cfg.Storage.KeyPrefix)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:    HTTPConfig{ReadTimeoutSec: 30},
		Burner:  BurnerConfig{IntervalMinutes: 2, JournalSize: 50},
		Storage: StorageConfig{KeyPrefix: "custom:"},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("ReadTimeoutSec overridden: got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Burner.IntervalMinutes != 2 {
		t.Errorf("IntervalMinutes overridden: got %d", cfg.Burner.IntervalMinutes)
	}
	if cfg.Burner.JournalSize != 50 {
		t.Errorf("JournalSize overridden: got %d", cfg.Burner.JournalSize)
	}
	if cfg.Storage.KeyPrefix != "custom:" {
		t.Errorf("KeyPrefix overridden: got %q", cfg.Storage.KeyPrefix)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("BURNER_TEST_KEY", "sk-123")

	tests := []struct {
		in   string
		want string
	}{
		{"key: ${BURNER_TEST_KEY}", "key: sk-123"},
		{"key: ${BURNER_TEST_MISSING:-fallback}", "key: fallback"},
		{"key: ${BURNER_TEST_KEY:-fallback}", "key: sk-123"},
		{"key: ${BURNER_TEST_MISSING}", "key: "},
		{"plain: value", "plain: value"},
	}
	for _, tt := range tests {
		if got := string(expandEnvVars([]byte(tt.in))); got != tt.want {
			t.Errorf("expandEnvVars(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoad_FromConfigDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "config"), 0o750); err != nil {
		t.Fatal(err)
	}
	body := `
http:
  port: 9090
database:
  addrs: ["${BURNER_TEST_REDIS:-localhost:6379}"]
provider:
  base_url: http://llm.local/v1
  models: [small, large]
burner:
  interval_minutes: 3
  auto_start: true
`
	if err := os.WriteFile(filepath.Join(dir, "config", "unittest.yaml"), []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	cfg, err := Load("unittest")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("port: got %d", cfg.HTTP.Port)
	}
	if len(cfg.Database.Addrs) != 1 || cfg.Database.Addrs[0] != "localhost:6379" {
		t.Errorf("addrs: got %v", cfg.Database.Addrs)
	}
	if len(cfg.Provider.Models) != 2 {
		t.Errorf("models: got %v", cfg.Provider.Models)
	}
	if cfg.Burner.IntervalMinutes != 3 || !cfg.Burner.AutoStart {
		t.Errorf("burner: got %+v", cfg.Burner)
	}
	if cfg.Database.Driver != "redis" || cfg.Storage.KeyPrefix != "burner:" {
		t.Errorf("defaults not applied: %+v %+v", cfg.Database, cfg.Storage)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())
	if _, err := Load("does-not-exist"); err == nil {
		t.Fatal("expected error for missing config")
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if got := GetEnv(); got != "local" {
		t.Errorf("default env: got %q", got)
	}
	t.Setenv("ENV", "prod")
	if got := GetEnv(); got != "prod" {
		t.Errorf("env: got %q", got)
	}
}
