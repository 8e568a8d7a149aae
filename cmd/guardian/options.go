package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/odvcencio/guardian/pkg/config"
)

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	logLevel   string
	logFormat  string
	workers    int
}

func (o *globalOptions) bind(root *cobra.Command) {
	flags := root.PersistentFlags()
	flags.StringVar(&o.configPath, "config", "", "config file (default <repo>/"+config.FileName+")")
	flags.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&o.logFormat, "log-format", "", "log format: console, json")
	flags.IntVar(&o.workers, "workers", 0, "number of files validated concurrently")
}

// load reads the config file for repoDir and applies flag overrides.
func (o *globalOptions) load(cmd *cobra.Command, repoDir string) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.Load(o.configPath)
	} else {
		cfg, err = config.LoadForRepo(repoDir)
	}
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = o.logFormat
	}
	if flags.Changed("workers") {
		cfg.Workers = o.workers
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// setup loads the config and builds the matching logger.
func (o *globalOptions) setup(cmd *cobra.Command, repoDir string) (config.Config, *zap.Logger, error) {
	cfg, err := o.load(cmd, repoDir)
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := newLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}
