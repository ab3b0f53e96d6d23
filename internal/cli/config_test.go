package cli

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/patchbaylabs/patchbay/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	c := New(io.Discard, LogInfo)
	c.configPath = filepath.Join(t.TempDir(), "missing.toml")

	// An explicitly named missing file is an error; the default
	// location would not be. Clear the path to exercise defaults.
	c.configPath = ""
	t.Setenv("PATCHBAY_CONFIG", filepath.Join(t.TempDir(), "absent.toml"))

	cfg, err := c.loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Addr != ":7474" {
		t.Errorf("Addr = %q, want :7474", cfg.Addr)
	}
	if cfg.Store.Backend != "file" {
		t.Errorf("Backend = %q, want file", cfg.Store.Backend)
	}
	if cfg.History.Limit != 500 || cfg.History.DebounceMS != 250 {
		t.Errorf("History = %+v, want limit 500 debounce 250", cfg.History)
	}
	if cfg.Layout.FrameMS != 16 {
		t.Errorf("FrameMS = %d, want 16", cfg.Layout.FrameMS)
	}
}

func TestLoadConfigFile(t *testing.T) {
	c := New(io.Discard, LogInfo)
	c.configPath = writeConfig(t, `
addr = ":9000"

[store]
backend = "redis"
redis_addr = "redis.internal:6379"
redis_db = 2

[history]
limit = 50
`)

	cfg, err := c.loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Addr != ":9000" {
		t.Errorf("Addr = %q, want :9000", cfg.Addr)
	}
	if cfg.Store.Backend != "redis" || cfg.Store.RedisAddr != "redis.internal:6379" || cfg.Store.RedisDB != 2 {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.History.Limit != 50 {
		t.Errorf("History.Limit = %d, want 50", cfg.History.Limit)
	}
	// Unset sections keep their defaults.
	if cfg.Store.MongoURI != "mongodb://localhost:27017" {
		t.Errorf("MongoURI = %q, want default", cfg.Store.MongoURI)
	}
	if cfg.Layout.FrameMS != 16 {
		t.Errorf("FrameMS = %d, want default 16", cfg.Layout.FrameMS)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	c := New(io.Discard, LogInfo)
	c.configPath = writeConfig(t, `addr = [this is not toml`)

	_, err := c.loadConfig()
	if errors.GetCode(err) != errors.CodeConfigInvalid {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.CodeConfigInvalid)
	}
}

func TestLoadConfigUnknownBackend(t *testing.T) {
	c := New(io.Discard, LogInfo)
	c.configPath = writeConfig(t, `
[store]
backend = "cassandra"
`)

	_, err := c.loadConfig()
	if errors.GetCode(err) != errors.CodeConfigInvalid {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.CodeConfigInvalid)
	}
}

func TestLoadConfigExplicitMissingFile(t *testing.T) {
	c := New(io.Discard, LogInfo)
	c.configPath = filepath.Join(t.TempDir(), "nope.toml")

	_, err := c.loadConfig()
	if errors.GetCode(err) != errors.CodeConfigInvalid {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.CodeConfigInvalid)
	}
}

func TestConfigEnvResolution(t *testing.T) {
	path := writeConfig(t, `addr = ":8123"`)
	t.Setenv("PATCHBAY_CONFIG", path)

	c := New(io.Discard, LogInfo)
	cfg, err := c.loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Addr != ":8123" {
		t.Errorf("Addr = %q, want :8123", cfg.Addr)
	}
}
