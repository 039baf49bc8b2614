package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/viper"
)

// Config holds the settings shared by the emirp binaries.
type Config struct {
	Limit     int64  `mapstructure:"limit"`
	Workers   int    `mapstructure:"workers"`
	DBPath    string `mapstructure:"db_path"`
	Addr      string `mapstructure:"addr"`
	CacheSize int    `mapstructure:"cache_size"`
	MaxLimit  int64  `mapstructure:"max_limit"`
	LogLevel  string `mapstructure:"log_level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("limit", 200000)
	v.SetDefault("workers", 0)
	v.SetDefault("db_path", defaultDBPath())
	v.SetDefault("addr", ":8080")
	v.SetDefault("cache_size", 128)
	v.SetDefault("max_limit", 10_000_000)
	v.SetDefault("log_level", "info")
}

// DB_PATH predates the EMIRP_ prefix and is still honoured.
func defaultDBPath() string {
	if v := os.Getenv("DB_PATH"); v != "" {
		return v
	}
	return "./emirps.db"
}

// Load builds the configuration from defaults, the optional file at path and
// EMIRP_* environment variables, in increasing priority. A missing file is
// not an error.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("EMIRP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var result *multierror.Error

	if c.Limit < 2 {
		result = multierror.Append(result, fmt.Errorf("limit must be at least 2, got %d", c.Limit))
	}
	if c.Workers < 0 {
		result = multierror.Append(result, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	if c.DBPath == "" {
		result = multierror.Append(result, errors.New("db_path is required"))
	}
	if c.Addr == "" {
		result = multierror.Append(result, errors.New("addr is required"))
	}
	if c.CacheSize < 1 {
		result = multierror.Append(result, fmt.Errorf("cache_size must be at least 1, got %d", c.CacheSize))
	}
	if c.MaxLimit < 2 {
		result = multierror.Append(result, fmt.Errorf("max_limit must be at least 2, got %d", c.MaxLimit))
	}
	if _, ok := levels[strings.ToLower(c.LogLevel)]; !ok {
		result = multierror.Append(result, fmt.Errorf("unknown log_level %q", c.LogLevel))
	}

	return result.ErrorOrNil()
}

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// ParseLevel maps a level name to a slog.Level. Unknown names fall back to info.
func ParseLevel(name string) slog.Level {
	if level, ok := levels[strings.ToLower(name)]; ok {
		return level
	}
	return slog.LevelInfo
}

// NewLogger returns a text logger writing to w at the named level.
func NewLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	}))
}
