// Package config loads guardian settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// FileName is the per-repository config file looked up in the repository root.
const FileName = ".guardian.toml"

// Supported log levels and formats.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// DefaultRewriteThreshold is the similarity at or above which two histories
// count as rewrites.
const DefaultRewriteThreshold = 0.92

// Config is everything found in the TOML config file.
type Config struct {
	Workers          int     `toml:"workers"`
	LogLevel         string  `toml:"log_level"`
	LogFormat        string  `toml:"log_format"`
	RewriteThreshold float64 `toml:"rewrite_threshold"`
	SkipPacks        bool    `toml:"skip_packs"`
}

var (
	errInvalidWorkers   = errors.New("workers must be positive")
	errInvalidLogLevel  = errors.New("log_level must be one of debug, info, warn, error")
	errInvalidLogFormat = errors.New("log_format must be console or json")
	errInvalidThreshold = errors.New("rewrite_threshold must be between 0 and 1")
)

// Default returns the settings used when no config file exists.
func Default() Config {
	return Config{
		Workers:          runtime.GOMAXPROCS(0),
		LogLevel:         LogLevelInfo,
		LogFormat:        LogFormatConsole,
		RewriteThreshold: DefaultRewriteThreshold,
	}
}

// Load reads path over the defaults. A missing file yields the defaults; keys
// absent from the file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load config %s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadForRepo loads FileName from the repository root dir.
func LoadForRepo(dir string) (Config, error) {
	return Load(filepath.Join(dir, FileName))
}

// Validate establishes if the config is usable.
func (c Config) Validate() error {
	if c.Workers <= 0 {
		return errInvalidWorkers
	}
	switch c.LogLevel {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	default:
		return fmt.Errorf("%w: %q", errInvalidLogLevel, c.LogLevel)
	}
	switch c.LogFormat {
	case LogFormatConsole, LogFormatJSON:
	default:
		return fmt.Errorf("%w: %q", errInvalidLogFormat, c.LogFormat)
	}
	if !(c.RewriteThreshold >= 0 && c.RewriteThreshold <= 1) {
		return fmt.Errorf("%w: %v", errInvalidThreshold, c.RewriteThreshold)
	}
	return nil
}
