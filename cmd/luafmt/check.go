package main

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/vito/luafmt/pkg/ioctx"
	"github.com/vito/luafmt/pkg/syntax"
)

func (a *app) checkCmd() *cobra.Command {
	var noColor bool

	cmd := &cobra.Command{
		Use:   "check [flags] [path...]",
		Short: "Report syntax errors in Lua source files",
		Long: `Parse Lua source files and print every syntax error with the
surrounding source lines.

Directories are searched recursively for .lua files. A path of "-" reads
standard input.`,
		Example: `  # Check a project
  luafmt check ./lua

  # Check standard input without colors
  cat init.lua | luafmt check --no-color -`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := colorWriter(ioctx.StdoutFromContext(ctx), noColor, a.lookupEnv)

			files, err := collectFiles(a.fs, args)
			if err != nil {
				return err
			}
			reports, err := processAll(ctx, a.parseFile, files, a.globals.Jobs, func(tree *syntax.Tree) ([]string, error) {
				var rendered []string
				for _, d := range tree.Errors {
					rendered = append(rendered, renderDiagnostic(tree.Source, tree.Lines(), d))
				}
				return rendered, nil
			})
			if err != nil {
				return err
			}

			count := 0
			for _, report := range reports {
				count += len(report)
				if len(report) > 0 {
					fmt.Fprint(out, strings.Join(report, "\n"))
				}
			}
			if count > 0 {
				return errors.Errorf("found %d syntax error(s)", count)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	return cmd
}
