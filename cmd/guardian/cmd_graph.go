package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/odvcencio/guardian/pkg/graph"
	"github.com/odvcencio/guardian/pkg/object"
	"github.com/odvcencio/guardian/pkg/scan"
)

func newGraphCmd(opts *globalOptions) *cobra.Command {
	var (
		format  string
		lineage string
	)

	cmd := &cobra.Command{
		Use:   "graph <repo>",
		Short: "Print the commit graph built from valid commit objects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case "text", "json", "dot":
			default:
				return fmt.Errorf("unsupported format %q (want text, json or dot)", format)
			}

			gitDir, err := scan.ResolveGitDir(args[0])
			if err != nil {
				return &exitCodeError{code: exitError, err: err}
			}
			cfg, logger, err := opts.setup(cmd, args[0])
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			report, err := newScanner(cfg, logger, true).Scan(cmd.Context(), gitDir)
			if err != nil {
				return err
			}
			if n := report.NumFailures(); n > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %d invalid file(s) left out of the graph\n", n)
			}

			g := graph.Build(report.Objects())
			for _, s := range g.Skipped() {
				logger.Warn("commit skipped", zap.String("id", string(s.ID)), zap.Error(s.Err))
			}

			out := cmd.OutOrStdout()
			if lineage != "" {
				tip, err := resolveCommit(g, lineage)
				if err != nil {
					return err
				}
				ids, err := g.Lineage(tip)
				if err != nil {
					return err
				}
				for _, id := range ids {
					fmt.Fprintln(out, id)
				}
				return nil
			}

			switch format {
			case "json":
				return g.WriteJSON(out)
			case "dot":
				return g.WriteDOT(out)
			default:
				return g.WriteText(out)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json or dot")
	cmd.Flags().StringVar(&lineage, "lineage", "", "print the first-parent lineage of this commit, root to tip")
	return cmd
}

// resolveCommit expands a unique hash prefix to a commit of g.
func resolveCommit(g *graph.Graph, prefix string) (object.Hash, error) {
	prefix = strings.ToLower(prefix)
	var match object.Hash
	for _, n := range g.Nodes() {
		if !strings.HasPrefix(string(n.ID), prefix) {
			continue
		}
		if match != "" {
			return "", fmt.Errorf("commit prefix %q is ambiguous", prefix)
		}
		match = n.ID
	}
	if match == "" {
		return "", fmt.Errorf("commit %q not found in graph", prefix)
	}
	return match, nil
}
