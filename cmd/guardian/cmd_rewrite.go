package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/odvcencio/guardian/pkg/rewrite"
)

func newRewriteCmd(opts *globalOptions) *cobra.Command {
	var threshold float64

	cmd := &cobra.Command{
		Use:   "rewrite <history-a> <history-b>",
		Short: "Compare two root-to-tip commit lists for a rewritten history",
		Long: "Each file lists one commit identifier per line, ordered root to tip,\n" +
			"as printed by \"guardian graph --lineage\".",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd, ".")
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("threshold") {
				threshold = cfg.RewriteThreshold
			}
			if err := rewrite.ValidateThreshold(threshold); err != nil {
				return err
			}

			a, err := readHistory(args[0])
			if err != nil {
				return err
			}
			b, err := readHistory(args[1])
			if err != nil {
				return err
			}

			similarity := rewrite.Similarity(a, b)
			verdict := "no"
			if similarity >= threshold {
				verdict = "yes"
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "similarity: %.4f\n", similarity)
			fmt.Fprintf(out, "rewrite: %s (threshold %.2f)\n", verdict, threshold)
			return nil
		},
	}
	cmd.Flags().Float64Var(&threshold, "threshold", rewrite.DefaultThreshold, "similarity at or above which histories count as rewrites")
	return cmd
}

// readHistory reads one identifier per line, ignoring blank lines.
func readHistory(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	defer f.Close()

	var ids []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			ids = append(ids, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read history %s: %w", path, err)
	}
	return ids, nil
}
