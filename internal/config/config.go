package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/roach88/bookkeeper/internal/store"
)

// Environment variables that override file settings.
const (
	EnvConfig      = "BOOKKEEPER_CONFIG"
	EnvDB          = "BOOKKEEPER_DB"
	EnvDriver      = "BOOKKEEPER_DRIVER"
	EnvLogLevel    = "BOOKKEEPER_LOG_LEVEL"
	EnvBusyTimeout = "BOOKKEEPER_BUSY_TIMEOUT_MS"
)

// DefaultFileName is looked up in the working directory.
const DefaultFileName = "bookkeeper.yaml"

var ErrUnknownFormat = errors.New("unknown config file format")

// Config is the bookkeeper configuration.
type Config struct {
	Database Database `yaml:"database" toml:"database" json:"database"`
	Log      Log      `yaml:"log" toml:"log" json:"log"`
}

// Database selects the SQLite file and how connections are opened.
type Database struct {
	Path          string `yaml:"path" toml:"path" json:"path"`
	Driver        string `yaml:"driver" toml:"driver" json:"driver"`
	BusyTimeoutMS int    `yaml:"busy_timeout_ms" toml:"busy_timeout_ms" json:"busy_timeout_ms"`
	JournalMode   string `yaml:"journal_mode" toml:"journal_mode" json:"journal_mode"`
	ForeignKeys   bool   `yaml:"foreign_keys" toml:"foreign_keys" json:"foreign_keys"`
}

// Log configures the slog handler.
type Log struct {
	Level  string `yaml:"level" toml:"level" json:"level"`
	Format string `yaml:"format" toml:"format" json:"format"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		Database: Database{
			Path:          "bookkeeper.db",
			Driver:        store.DriverMattn,
			BusyTimeoutMS: 5000,
			JournalMode:   "WAL",
			ForeignKeys:   true,
		},
		Log: Log{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Load resolves the configuration file, decodes it over the defaults,
// applies environment overrides and validates the result. The file is the
// first of: explicit, $BOOKKEEPER_CONFIG, ./bookkeeper.yaml,
// ~/.config/bookkeeper/config.yaml. Only an explicit or environment path
// must exist. The returned source is the file used, or "" for defaults.
func Load(explicit string, getenv func(string) string) (cfg *Config, source string, err error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	cfg = Default()
	source, required := explicit, explicit != ""
	if source == "" {
		source, required = getenv(EnvConfig), getenv(EnvConfig) != ""
	}
	if source == "" {
		source = findDefault()
	}

	if source != "" {
		if err := decodeFile(source, cfg); err != nil {
			if !required && errors.Is(err, os.ErrNotExist) {
				source = ""
			} else {
				return nil, "", err
			}
		}
	}

	if err := applyEnv(cfg, getenv); err != nil {
		return nil, "", err
	}
	cfg.Database.Path = expandHome(cfg.Database.Path)
	if err := Validate(cfg); err != nil {
		return nil, "", err
	}
	return cfg, source, nil
}

func findDefault() string {
	candidates := []string{DefaultFileName}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "bookkeeper", "config.yaml"))
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

// LoadFile decodes one file over the defaults without environment
// overrides, then validates it.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := decodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.Database.Path = expandHome(cfg.Database.Path)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decodeFile reads YAML or TOML by extension. Unknown keys are errors in
// both formats.
func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(cfg)
		if err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return fmt.Errorf("parse %s: unknown field %q", path, undecoded[0].String())
		}
	default:
		return fmt.Errorf("%w: %s (want .yaml, .yml or .toml)", ErrUnknownFormat, path)
	}
	return nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	if v := getenv(EnvDB); v != "" {
		cfg.Database.Path = v
	}
	if v := getenv(EnvDriver); v != "" {
		cfg.Database.Driver = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v := getenv(EnvBusyTimeout); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvBusyTimeout, err)
		}
		cfg.Database.BusyTimeoutMS = ms
	}
	return nil
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(path string) string {
	rest, ok := strings.CutPrefix(path, "~/")
	if !ok {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, rest)
}

// StoreOptions converts the database section to store options.
func (c *Config) StoreOptions(logger *slog.Logger) store.Options {
	return store.Options{
		Driver:             c.Database.Driver,
		BusyTimeout:        time.Duration(c.Database.BusyTimeoutMS) * time.Millisecond,
		JournalMode:        c.Database.JournalMode,
		DisableForeignKeys: !c.Database.ForeignKeys,
		Logger:             logger,
	}
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelWarn
	}
	return level
}
