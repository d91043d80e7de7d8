// Package config loads nixdoc settings from defaults, an optional YAML file,
// NIXDOC_* environment variables and command-line flags, in increasing order
// of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"

	"github.com/dshills/nixdoc/internal/report"
	"github.com/dshills/nixdoc/internal/walker"
)

const (
	// AppName is used for the cache directory and the log prefix
	AppName = "nixdoc"
	// EnvPrefix is the prefix of environment overrides (NIXDOC_WORKERS, ...)
	EnvPrefix = "NIXDOC"
	// ConfigFileName is the optional config file looked up in the working
	// directory, without extension
	ConfigFileName = ".nixdoc"
)

// Keys shared by viper, the YAML file and the CLI flags
const (
	KeyWorkers          = "workers"
	KeyExtension        = "ext"
	KeyExclude          = "exclude"
	KeyNoFollowSymlinks = "no-follow-symlinks"
	KeyCache            = "cache"
	KeyCachePath        = "cache-path"
	KeyColor            = "color"
	KeyLogLevel         = "log-level"
)

// Config holds the resolved settings
type Config struct {
	Workers          int      `mapstructure:"workers"`
	Extension        string   `mapstructure:"ext"`
	Exclude          []string `mapstructure:"exclude"`
	NoFollowSymlinks bool     `mapstructure:"no-follow-symlinks"`
	Cache            bool     `mapstructure:"cache"`
	CachePath        string   `mapstructure:"cache-path"`
	Color            string   `mapstructure:"color"`
	LogLevel         string   `mapstructure:"log-level"`

	// File is the config file that was read, empty when none was found
	File string `mapstructure:"-"`
}

// Default returns the configuration used when nothing is set
func Default() Config {
	opts := walker.DefaultOptions()
	return Config{
		Workers:          runtime.NumCPU(),
		Extension:        opts.Extension,
		Exclude:          opts.ExcludeDirs,
		NoFollowSymlinks: !opts.FollowSymlinks,
		Cache:            false,
		CachePath:        "",
		Color:            string(report.ColorAuto),
		LogLevel:         "warn",
	}
}

// Load resolves the configuration. v may carry flag bindings; nil gets a
// fresh instance. An explicit configFile must exist, while the default
// .nixdoc.yaml in the working directory is optional.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if v == nil {
		v = viper.New()
	}

	defaults := Default()
	v.SetDefault(KeyWorkers, defaults.Workers)
	v.SetDefault(KeyExtension, defaults.Extension)
	v.SetDefault(KeyExclude, defaults.Exclude)
	v.SetDefault(KeyNoFollowSymlinks, defaults.NoFollowSymlinks)
	v.SetDefault(KeyCache, defaults.Cache)
	v.SetDefault(KeyCachePath, defaults.CachePath)
	v.SetDefault(KeyColor, defaults.Color)
	v.SetDefault(KeyLogLevel, defaults.LogLevel)

	// NIXDOC_CACHE_PATH, NIXDOC_LOG_LEVEL, ...
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName(ConfigFileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration and fills derived defaults
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}

	if c.Extension == "" {
		return errors.New("extension cannot be empty")
	}
	if !strings.HasPrefix(c.Extension, ".") {
		c.Extension = "." + c.Extension
	}

	if _, err := report.ParseColorMode(c.Color); err != nil {
		return err
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}

	return nil
}

// WalkerOptions converts the walk settings
func (c *Config) WalkerOptions() walker.Options {
	return walker.Options{
		Extension:      c.Extension,
		ExcludeDirs:    c.Exclude,
		FollowSymlinks: !c.NoFollowSymlinks,
	}
}

// ColorMode returns the validated color mode
func (c *Config) ColorMode() report.ColorMode {
	mode, err := report.ParseColorMode(c.Color)
	if err != nil {
		return report.ColorAuto
	}
	return mode
}

// Level returns the validated log level
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.WarnLevel
	}
	return level
}

// ResolveCachePath returns the cache database location, creating its parent
// directory. An empty CachePath resolves to the user cache directory.
func (c *Config) ResolveCachePath() (string, error) {
	path := c.CachePath
	if path == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			return "", fmt.Errorf("failed to get cache directory: %w", err)
		}
		path = filepath.Join(dir, AppName, "cache.db")
	} else if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}
	return path, nil
}

// NewLogger creates the stderr logger for the configured level
func (c *Config) NewLogger() *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		Prefix: AppName,
		Level:  c.Level(),
	})
}
