package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/odvcencio/guardian/pkg/config"
	"github.com/odvcencio/guardian/pkg/scan"
)

func newScanCmd(opts *globalOptions) *cobra.Command {
	var (
		skipPacks   bool
		metricsFile string
	)

	cmd := &cobra.Command{
		Use:   "scan <repo>",
		Short: "Validate every loose object and pack container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gitDir, err := scan.ResolveGitDir(args[0])
			if err != nil {
				return &exitCodeError{code: exitError, err: err}
			}
			cfg, logger, err := opts.setup(cmd, args[0])
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			if cmd.Flags().Changed("skip-packs") {
				cfg.SkipPacks = skipPacks
			}
			var (
				reg     *prometheus.Registry
				metrics *scan.Metrics
			)
			if metricsFile != "" {
				reg = prometheus.NewRegistry()
				if metrics, err = scan.NewMetrics(reg); err != nil {
					return err
				}
			}

			report, err := newScanner(cfg, logger, false, scan.WithMetrics(metrics)).Scan(cmd.Context(), gitDir)
			if err != nil {
				return err
			}
			if reg != nil {
				if err := prometheus.WriteToTextfile(metricsFile, reg); err != nil {
					return fmt.Errorf("write metrics: %w", err)
				}
			}

			errOut := cmd.ErrOrStderr()
			for _, res := range report.Results {
				if res.Err != nil {
					fmt.Fprintf(errOut, "✗ %s: %v\n", res.Path, res.Err)
				} else {
					fmt.Fprintf(errOut, "✓ %s\n", res.Path)
				}
			}

			if n := report.NumFailures(); n > 0 {
				fmt.Fprintf(errOut, "\nfound %d error(s)\n", n)
				return &exitCodeError{code: exitFailures}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "no errors found in git objects")
			return nil
		},
	}
	cmd.Flags().BoolVar(&skipPacks, "skip-packs", false, "validate loose objects only")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write scan metrics in Prometheus text format to this file")
	return cmd
}

func newScanner(cfg config.Config, logger *zap.Logger, collect bool, extra ...scan.Option) *scan.Scanner {
	opts := []scan.Option{
		scan.WithLogger(logger),
		scan.WithWorkers(cfg.Workers),
		scan.WithSkipPacks(cfg.SkipPacks),
		scan.WithCollectObjects(collect),
	}
	return scan.New(append(opts, extra...)...)
}
