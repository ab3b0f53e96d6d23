package cli

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/patchbaylabs/patchbay/pkg/errors"
	"github.com/patchbaylabs/patchbay/pkg/history"
	"github.com/patchbaylabs/patchbay/pkg/layout"
	"github.com/patchbaylabs/patchbay/pkg/store"
)

// Config is the TOML configuration file schema. Every field has a
// working default; a missing file is not an error.
type Config struct {
	// Addr is the serve command's listen address.
	Addr string `toml:"addr"`

	Store   StoreConfig   `toml:"store"`
	History HistoryConfig `toml:"history"`
	Layout  LayoutConfig  `toml:"layout"`
}

// StoreConfig selects and parameterizes the document store backend.
type StoreConfig struct {
	Backend   string `toml:"backend"`
	Dir       string `toml:"dir"`
	RedisAddr string `toml:"redis_addr"`
	RedisDB   int    `toml:"redis_db"`
	MongoURI  string `toml:"mongo_uri"`
	MongoDB   string `toml:"mongo_db"`
}

// HistoryConfig tunes the per-session undo/redo manager.
type HistoryConfig struct {
	Limit      int `toml:"limit"`
	DebounceMS int `toml:"debounce_ms"`
}

// LayoutConfig tunes the group layout scheduler.
type LayoutConfig struct {
	FrameMS int `toml:"frame_ms"`
}

// defaultConfig returns the configuration used when no file exists.
func defaultConfig() Config {
	return Config{
		Addr: ":7474",
		Store: StoreConfig{
			Backend:   "file",
			RedisAddr: "localhost:6379",
			MongoURI:  "mongodb://localhost:27017",
			MongoDB:   appName,
		},
		History: HistoryConfig{
			Limit:      history.DefaultLimit,
			DebounceMS: int(history.DefaultDebounce / time.Millisecond),
		},
		Layout: LayoutConfig{
			FrameMS: int(layout.FrameDelay / time.Millisecond),
		},
	}
}

// configFilePath resolves the config file location: the --config flag,
// then the PATCHBAY_CONFIG environment variable, then the XDG config
// directory (~/.config/patchbay/config.toml).
func (c *CLI) configFilePath() string {
	if c.configPath != "" {
		return c.configPath
	}
	if env := os.Getenv("PATCHBAY_CONFIG"); env != "" {
		return env
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName, "config.toml")
}

// loadConfig reads the resolved config file over the defaults. A
// missing file yields the defaults; a malformed file or unknown
// backend is a coded error.
func (c *CLI) loadConfig() (Config, error) {
	cfg := defaultConfig()

	path := c.configFilePath()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		// An explicitly named file must exist; the default location
		// is optional.
		if c.configPath != "" {
			return cfg, errors.Wrap(errors.CodeConfigInvalid, err, "read config %s", path)
		}
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(errors.CodeConfigInvalid, err, "read config %s", path)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.CodeConfigInvalid, err, "parse config %s", path)
	}
	if err := errors.ValidateBackend(cfg.Store.Backend); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// storeConfig converts the file schema into the store package's form.
func (cfg Config) storeConfig() store.Config {
	return store.Config{
		Backend:   cfg.Store.Backend,
		Dir:       cfg.Store.Dir,
		RedisAddr: cfg.Store.RedisAddr,
		RedisDB:   cfg.Store.RedisDB,
		MongoURI:  cfg.Store.MongoURI,
		MongoDB:   cfg.Store.MongoDB,
	}
}
