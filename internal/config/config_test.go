package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() Config {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"port zero", func(c *Config) { c.HTTP.Port = 0 }, true},
		{"port too large", func(c *Config) { c.HTTP.Port = 70000 }, true},
		{"missing addrs", func(c *Config) { c.Database.Addrs = nil }, true},
		{"unknown driver", func(c *Config) { c.Database.Driver = "valkey" }, true},
		{"negative ttl", func(c *Config) { c.Cache.TTLSec = -1 }, true},
		{"negative capacity", func(c *Config) { c.Cache.MaxEntries = -5 }, true},
		{"sample ratio above one", func(c *Config) { c.Telemetry.SampleRatio = 2 }, true},
		{"unknown assistant", func(c *Config) { c.Assistant.Provider = "bard" }, true},
		{"openai without key", func(c *Config) { c.Assistant.Provider = AssistantOpenAI }, true},
		{"openai with key", func(c *Config) {
			c.Assistant.Provider = AssistantOpenAI
			c.Assistant.APIKey = "sk-test"
		}, false},
		{"http without urls", func(c *Config) { c.Assistant.Provider = AssistantHTTP }, true},
		{"http with urls", func(c *Config) {
			c.Assistant.Provider = AssistantHTTP
			c.Assistant.DraftURL = "http://enquiry/draft"
			c.Assistant.ChatURL = "http://enquiry/chat"
		}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidate_ErrorMessage(t *testing.T) {
	cfg := validConfig()
	cfg.Assistant.Provider = "bard"

	expected := `assistant.provider must be "openai" or "http", got "bard"`
	if err := cfg.Validate(); err == nil || err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %v\nwant: %q", err, expected)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 || cfg.HTTP.WriteTimeoutSec != 30 || cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("unexpected http defaults: %+v", cfg.HTTP)
	}
	if cfg.Database.Driver != "redis" {
		t.Errorf("expected driver redis, got %q", cfg.Database.Driver)
	}
	if cfg.Storage.KeyPrefix != "estatedash:" {
		t.Errorf("expected KeyPrefix='estatedash:', got %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Cache.TTL() != 300*time.Second || cfg.Cache.MaxEntries != 1000 {
		t.Errorf("unexpected cache defaults: %+v", cfg.Cache)
	}
	if cfg.Fetch.Workers != 8 || cfg.Fetch.Timeout() != 10*time.Second {
		t.Errorf("unexpected fetch defaults: %+v", cfg.Fetch)
	}
	if cfg.Images.MaxProperties != 12 {
		t.Errorf("expected 12 image slots, got %d", cfg.Images.MaxProperties)
	}
	if cfg.Sessions.MaxSessions != 1000 || cfg.Sessions.TTL() != 12*time.Hour {
		t.Errorf("unexpected session defaults: %+v", cfg.Sessions)
	}
	if cfg.Telemetry.ServiceName != "estatedash" || cfg.Telemetry.SampleRatio != 1 {
		t.Errorf("unexpected telemetry defaults: %+v", cfg.Telemetry)
	}
	if cfg.Assistant.Model != "" {
		t.Errorf("model should stay empty without a provider, got %q", cfg.Assistant.Model)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Storage:  StorageConfig{KeyPrefix: "custom:"},
		Cache:    CacheConfig{TTLSec: 60, MaxEntries: 10},
		Sessions: SessionsConfig{TTLMin: 30},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Storage.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Cache.TTLSec != 60 || cfg.Cache.MaxEntries != 10 {
		t.Errorf("cache overridden: %+v", cfg.Cache)
	}
	if cfg.Sessions.TTL() != 30*time.Minute {
		t.Errorf("expected 30m sessions, got %s", cfg.Sessions.TTL())
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("ESTATEDASH_TEST_ADDR", "redis:6380")

	in := []byte("a: ${ESTATEDASH_TEST_ADDR}\nb: ${ESTATEDASH_TEST_UNSET:-fallback}\nc: ${ESTATEDASH_TEST_UNSET}\n")
	want := "a: redis:6380\nb: fallback\nc: \n"
	if got := string(expandEnvVars(in)); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv("ESTATEDASH_TEST_PORT", "9090")
	path := filepath.Join(t.TempDir(), "test.yaml")
	yml := `
http:
  port: ${ESTATEDASH_TEST_PORT}
database:
  addrs: ["${ESTATEDASH_TEST_REDIS:-localhost:6379}"]
assistant:
  provider: openai
  api_key: sk-test
`
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("port = %d", cfg.HTTP.Port)
	}
	if len(cfg.Database.Addrs) != 1 || cfg.Database.Addrs[0] != "localhost:6379" {
		t.Errorf("addrs = %v", cfg.Database.Addrs)
	}
	if cfg.Assistant.Model != "gpt-4o-mini" {
		t.Errorf("model default not applied: %q", cfg.Assistant.Model)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("http:\n  port: 0\ndatabase:\n  addrs: [x]\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected validation error")
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected read error")
	}
}

func TestLoadDotEnv_DoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("ESTATEDASH_TEST_KEEP=fromfile\nESTATEDASH_TEST_NEW=fromfile\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ESTATEDASH_TEST_KEEP", "fromenv")
	t.Setenv("ESTATEDASH_TEST_NEW", "")
	os.Unsetenv("ESTATEDASH_TEST_NEW")

	if err := loadDotEnv(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := os.Getenv("ESTATEDASH_TEST_KEEP"); got != "fromenv" {
		t.Errorf("existing variable overridden: %q", got)
	}
	if got := os.Getenv("ESTATEDASH_TEST_NEW"); got != "fromfile" {
		t.Errorf("new variable not loaded: %q", got)
	}
	if err := loadDotEnv(filepath.Join(dir, "absent.env")); err != nil {
		t.Errorf("missing file should be ignored: %v", err)
	}
}
