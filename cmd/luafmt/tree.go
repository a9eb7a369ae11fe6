package main

import (
	"github.com/spf13/cobra"

	"github.com/vito/luafmt/pkg/ioctx"
	"github.com/vito/luafmt/pkg/syntax"
)

func (a *app) treeCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "tree [flags] <path>",
		Short: "Print the syntax tree of a Lua source file",
		Long: `Print the lossless syntax tree of a Lua source file, including
error nodes and missing tokens. A path of "-" reads standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tree, err := a.parseFile(ctx, args[0])
			if err != nil {
				return err
			}
			stdout := ioctx.StdoutFromContext(ctx)
			if asJSON {
				return syntax.DumpJSON(stdout, tree.Root)
			}
			return syntax.Dump(stdout, tree.Root)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the tree as JSON")

	return cmd
}
