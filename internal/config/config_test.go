package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bookkeeper/internal/store"
)

// env returns a getenv backed by a map.
func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestDefault_IsValid(t *testing.T) {
	require.NoError(t, Validate(Default()))
}

func TestLoadFile_Formats(t *testing.T) {
	want := &Config{
		Database: Database{
			Path:          "/var/lib/bookkeeper/books.db",
			Driver:        store.DriverModernc,
			BusyTimeoutMS: 1500,
			JournalMode:   "DELETE",
			ForeignKeys:   false,
		},
		Log: Log{Level: "debug", Format: "json"},
	}

	for _, name := range []string{"full.yaml", "full.toml"} {
		t.Run(name, func(t *testing.T) {
			cfg, err := LoadFile(filepath.Join("testdata", name))
			require.NoError(t, err)
			assert.Equal(t, want, cfg)
		})
	}
}

func TestLoadFile_PartialKeepsDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join("testdata", "partial.yaml"))
	require.NoError(t, err)

	want := Default()
	want.Database.Path = "partial.db"
	assert.Equal(t, want, cfg)
}

func TestLoadFile_Errors(t *testing.T) {
	tests := []struct {
		file     string
		contains string
	}{
		{"unknown.yaml", "pool_size"},
		{"unknown.toml", "pool_size"},
		{"missing.yaml", "read config"},
		{"bad_driver.yaml", "database.driver"},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			_, err := LoadFile(filepath.Join("testdata", tt.file))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestLoadFile_UnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.ini")
	require.NoError(t, os.WriteFile(path, []byte("x=1"), 0o644))

	_, err := LoadFile(path)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestValidate_Schema(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		path   string
	}{
		{"empty path", func(c *Config) { c.Database.Path = "" }, "database.path"},
		{"memory path", func(c *Config) { c.Database.Path = ":memory:" }, "database.path"},
		{"driver", func(c *Config) { c.Database.Driver = "mysql" }, "database.driver"},
		{"negative timeout", func(c *Config) { c.Database.BusyTimeoutMS = -1 }, "database.busy_timeout_ms"},
		{"zero timeout", func(c *Config) { c.Database.BusyTimeoutMS = 0 }, "database.busy_timeout_ms"},
		{"journal", func(c *Config) { c.Database.JournalMode = "fast" }, "database.journal_mode"},
		{"level", func(c *Config) { c.Log.Level = "verbose" }, "log.level"},
		{"format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			var schemaErr *SchemaError
			require.ErrorAs(t, err, &schemaErr)
			assert.Contains(t, schemaErr.Path, tt.path)
		})
	}
}

func TestValidate_JournalModeIsCaseInsensitive(t *testing.T) {
	cfg := Default()
	cfg.Database.JournalMode = "wal"
	assert.NoError(t, Validate(cfg))
}

func TestLoad_Precedence(t *testing.T) {
	full := filepath.Join("testdata", "full.yaml")
	partial := filepath.Join("testdata", "partial.yaml")

	t.Run("explicit wins over env file", func(t *testing.T) {
		cfg, source, err := Load(partial, env(map[string]string{EnvConfig: full}))
		require.NoError(t, err)
		assert.Equal(t, partial, source)
		assert.Equal(t, "partial.db", cfg.Database.Path)
	})

	t.Run("env file", func(t *testing.T) {
		cfg, source, err := Load("", env(map[string]string{EnvConfig: full}))
		require.NoError(t, err)
		assert.Equal(t, full, source)
		assert.Equal(t, store.DriverModernc, cfg.Database.Driver)
	})

	t.Run("env vars override file", func(t *testing.T) {
		cfg, _, err := Load(full, env(map[string]string{
			EnvDB:          "override.db",
			EnvDriver:      store.DriverMattn,
			EnvLogLevel:    "ERROR",
			EnvBusyTimeout: "42",
		}))
		require.NoError(t, err)
		assert.Equal(t, "override.db", cfg.Database.Path)
		assert.Equal(t, store.DriverMattn, cfg.Database.Driver)
		assert.Equal(t, "error", cfg.Log.Level)
		assert.Equal(t, 42, cfg.Database.BusyTimeoutMS)
	})

	t.Run("explicit file must exist", func(t *testing.T) {
		_, _, err := Load(filepath.Join("testdata", "missing.yaml"), env(nil))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("bad env value", func(t *testing.T) {
		_, _, err := Load(partial, env(map[string]string{EnvBusyTimeout: "soon"}))
		assert.ErrorContains(t, err, EnvBusyTimeout)

		_, _, err = Load(partial, env(map[string]string{EnvBusyTimeout: "0"}))
		var schemaErr *SchemaError
		require.ErrorAs(t, err, &schemaErr)
		assert.Contains(t, schemaErr.Path, "database.busy_timeout_ms")
	})

	t.Run("env value checked by schema", func(t *testing.T) {
		_, _, err := Load(partial, env(map[string]string{EnvDriver: "postgres"}))
		var schemaErr *SchemaError
		assert.ErrorAs(t, err, &schemaErr)
	})
}

func TestLoad_DefaultsWithoutFiles(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, source, err := Load("", env(nil))
	require.NoError(t, err)
	assert.Empty(t, source)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_WorkingDirectoryFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())
	require.NoError(t, os.WriteFile(DefaultFileName, []byte("log:\n  level: info\n"), 0o644))

	cfg, source, err := Load("", env(nil))
	require.NoError(t, err)
	assert.Equal(t, DefaultFileName, source)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	assert.Equal(t, filepath.Join(home, "books.db"), expandHome("~/books.db"))
	assert.Equal(t, "/abs/books.db", expandHome("/abs/books.db"))
	assert.Equal(t, "~user/books.db", expandHome("~user/books.db"))
}

func TestStoreOptions(t *testing.T) {
	cfg := Default()
	cfg.Database.ForeignKeys = false

	opts := cfg.StoreOptions(nil)
	assert.Equal(t, store.DriverMattn, opts.Driver)
	assert.Equal(t, 5*time.Second, opts.BusyTimeout)
	assert.Equal(t, "WAL", opts.JournalMode)
	assert.True(t, opts.DisableForeignKeys)
}

func TestSlogLevel(t *testing.T) {
	cfg := Default()
	for level, want := range map[string]string{
		"debug": "DEBUG",
		"info":  "INFO",
		"warn":  "WARN",
		"error": "ERROR",
		"bogus": "WARN",
	} {
		cfg.Log.Level = level
		assert.Equal(t, want, cfg.SlogLevel().String(), level)
	}
}
