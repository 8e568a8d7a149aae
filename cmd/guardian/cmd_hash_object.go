package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/odvcencio/guardian/pkg/object"
	"github.com/odvcencio/guardian/pkg/scan"
)

func newHashObjectCmd() *cobra.Command {
	var (
		typeName string
		write    bool
		gitDir   string
	)

	cmd := &cobra.Command{
		Use:   "hash-object <file>",
		Short: "Compute an object identifier and optionally store it as a loose object",
		Long:  "Reads <file>, or standard input when <file> is \"-\".",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			objType, ok := object.ParseObjectType(typeName)
			if !ok {
				return fmt.Errorf("invalid object type %q", typeName)
			}

			var data []byte
			var err error
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("hash-object: %w", err)
			}

			if !write {
				fmt.Fprintln(cmd.OutOrStdout(), object.HashObject(objType, data))
				return nil
			}

			if gitDir == "" {
				gitDir, err = scan.ResolveGitDir(".")
				if err != nil {
					return &exitCodeError{code: exitError, err: err}
				}
			}
			h, err := object.NewStore(gitDir).Write(objType, data)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}
	cmd.Flags().StringVarP(&typeName, "type", "t", "blob", "object type: blob, tree, commit or tag")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the object into the object store")
	cmd.Flags().StringVar(&gitDir, "git-dir", "", "git directory to write into (default: resolved from the current directory)")
	return cmd
}
