package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

// Process exit codes.
const (
	exitOK       = 0
	exitError    = 1
	exitFailures = 2
)

// exitCodeError carries a process exit code. A nil err means the command has
// already reported the problem.
type exitCodeError struct {
	code int
	err  error
}

func (e *exitCodeError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitCodeError) Unwrap() error { return e.err }

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ec *exitCodeError
	if errors.As(err, &ec) {
		return ec.code
	}
	return exitError
}

func main() {
	root := newRootCmd()
	err := root.Execute()
	var ec *exitCodeError
	if err != nil && !(errors.As(err, &ec) && ec.err == nil) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(exitCode(err))
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:           "guardian",
		Short:         "Audit git object stores for corruption",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	opts.bind(root)

	root.AddCommand(newVersionCmd())
	root.AddCommand(newScanCmd(opts))
	root.AddCommand(newGraphCmd(opts))
	root.AddCommand(newRewriteCmd(opts))
	root.AddCommand(newHashObjectCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "guardian %s\n", version)
		},
	}
}
