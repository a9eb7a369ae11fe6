package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/vito/luafmt/pkg/format"
	"github.com/vito/luafmt/pkg/ioctx"
	"github.com/vito/luafmt/pkg/syntax"
)

// ErrUnformatted is returned by fmt --check when a file would change.
var ErrUnformatted = errors.New("some files are not formatted")

type fmtOptions struct {
	write       bool
	list        bool
	check       bool
	allowErrors bool
}

type fmtResult struct {
	path      string
	source    string
	formatted string
	// errors is set when the file was skipped for its syntax errors.
	errors []syntax.Diagnostic
}

func (r fmtResult) changed() bool {
	return r.errors == nil && r.source != r.formatted
}

func (a *app) fmtCmd() *cobra.Command {
	var opts fmtOptions

	cmd := &cobra.Command{
		Use:   "fmt [flags] [path...]",
		Short: "Format Lua source files",
		Long: `Format Lua source files.

By default, fmt prints the formatted source to stdout.
Use -w to write the result back to the source file.
Use -l to list files that would be changed.
Use --check to fail when any file would be changed.

Directories are searched recursively for .lua files. A path of "-" reads
standard input. Files with syntax errors are reported and skipped unless
--allow-errors is given.`,
		Example: `  # Format a file and print to stdout
  luafmt fmt init.lua

  # Format a file in place
  luafmt fmt -w init.lua

  # List files under a directory that need formatting
  luafmt fmt -l ./lua

  # Fail in CI if anything is unformatted
  luafmt fmt --check .`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runFmt(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.write, "write", "w", false, "Write result to source file instead of stdout")
	cmd.Flags().BoolVarP(&opts.list, "list", "l", false, "List files that would be formatted")
	cmd.Flags().BoolVar(&opts.check, "check", false, "Exit with an error if any file would be formatted")
	cmd.Flags().BoolVar(&opts.allowErrors, "allow-errors", false, "Format files even if they contain syntax errors")

	return cmd
}

func (a *app) runFmt(cmd *cobra.Command, paths []string, opts fmtOptions) error {
	ctx := cmd.Context()
	stdout := ioctx.StdoutFromContext(ctx)
	stderr := ioctx.StderrFromContext(ctx)

	files, err := collectFiles(a.fs, paths)
	if err != nil {
		return err
	}
	for _, f := range files {
		if f == stdinPath && opts.write {
			return errors.New("cannot use -w with standard input")
		}
	}

	cfg := a.config
	results, err := processAll(ctx, a.parseFile, files, a.globals.Jobs, func(tree *syntax.Tree) (fmtResult, error) {
		res := fmtResult{path: tree.Path, source: tree.Source}
		if tree.HasErrors() && !opts.allowErrors {
			res.errors = tree.Errors
			return res, nil
		}
		formatted, err := format.Tree(tree, cfg)
		if err != nil {
			return res, err
		}
		res.formatted = formatted
		return res, nil
	})
	if err != nil {
		return err
	}

	var skipped, unformatted int
	for _, res := range results {
		if res.errors != nil {
			skipped++
			reportSkipped(stderr, res)
			continue
		}
		if err := a.emit(stdout, res, opts); err != nil {
			return err
		}
		if res.changed() {
			unformatted++
		}
	}

	if skipped > 0 {
		return errors.Errorf("%d file(s) with syntax errors were not formatted", skipped)
	}
	if opts.check && !opts.write && unformatted > 0 {
		return ErrUnformatted
	}
	return nil
}

func (a *app) emit(stdout io.Writer, res fmtResult, opts fmtOptions) error {
	changed := res.changed()
	slog.Debug("formatted", "path", res.path, "changed", changed)

	switch {
	case opts.write:
		if !changed {
			return nil
		}
		info, err := a.fs.Stat(res.path)
		if err != nil {
			return err
		}
		if err := afero.WriteFile(a.fs, res.path, []byte(res.formatted), info.Mode().Perm()); err != nil {
			return fmt.Errorf("writing %s: %w", res.path, err)
		}
		if opts.list {
			fmt.Fprintln(stdout, res.path)
		}
	case opts.list, opts.check:
		if changed {
			fmt.Fprintln(stdout, res.path)
		}
	default:
		fmt.Fprint(stdout, res.formatted)
	}
	return nil
}

func reportSkipped(w io.Writer, res fmtResult) {
	first := res.errors[0]
	if len(res.errors) == 1 {
		fmt.Fprintf(w, "skipped: %s\n", first.Error())
		return
	}
	fmt.Fprintf(w, "skipped: %s (and %d more)\n", first.Error(), len(res.errors)-1)
}
