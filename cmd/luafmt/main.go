package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/charmbracelet/fang"
	"github.com/kr/pretty"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/vito/luafmt/pkg/format"
	"github.com/vito/luafmt/pkg/ioctx"
)

// Set with -ldflags at release time.
var (
	version = "v0.1.0"
	commit  = "dev"
)

// Globals holds the flags shared by every command.
type Globals struct {
	Debug      bool
	ConfigPath string
	Indent     string
	Placement  string
	Jobs       int
	Verify     bool
}

// app carries what the commands need from the outside world, so tests can
// swap the filesystem and environment.
type app struct {
	fs        afero.Fs
	lookupEnv func(string) (string, bool)
	workDir   func() (string, error)

	globals Globals
	config  format.Config
}

func main() {
	a := &app{
		fs:        afero.NewOsFs(),
		lookupEnv: os.LookupEnv,
		workDir:   os.Getwd,
	}

	ctx := context.Background()
	ctx = ioctx.StdinToContext(ctx, os.Stdin)
	ctx = ioctx.StdoutToContext(ctx, os.Stdout)
	ctx = ioctx.StderrToContext(ctx, os.Stderr)
	if err := fang.Execute(ctx, a.rootCmd(),
		fang.WithVersion(version),
		fang.WithCommit(commit),
		fang.WithErrorHandler(func(w io.Writer, styles fang.Styles, err error) {
			_, _ = fmt.Fprintln(w, err.Error())
		}),
	); err != nil {
		os.Exit(1)
	}
}

func (a *app) rootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "luafmt",
		Short: "Lua source formatter",
		Long: `luafmt re-wraps and re-indents Lua source code.

Token text is never changed: only line breaks and indentation are. Code
containing syntax errors is left as written around the errors.`,
		Example: `  # Print a formatted file
  luafmt fmt init.lua

  # Format every .lua file under a directory in place
  luafmt fmt -w ./lua

  # Show syntax errors
  luafmt check init.lua`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.setupLogging(ioctx.StderrFromContext(cmd.Context()))
			return a.resolveConfig(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&a.globals.Debug, "debug", "d", false, "Enable debug logging")
	flags.StringVar(&a.globals.ConfigPath, "config", "", "Path to a config file (default: nearest "+format.ConfigFileName+")")
	flags.StringVar(&a.globals.Indent, "indent", "", `Indent unit: "tab", a number of spaces, or literal whitespace`)
	flags.StringVar(&a.globals.Placement, "placement", "", "Placement of function and table contents: own-line or same-line")
	flags.IntVarP(&a.globals.Jobs, "jobs", "j", runtime.GOMAXPROCS(0), "Number of files to process in parallel")
	flags.BoolVar(&a.globals.Verify, "verify", false, "Check that each syntax tree reproduces its source before using it")

	rootCmd.AddCommand(
		a.fmtCmd(),
		a.checkCmd(),
		a.treeCmd(),
		a.lspCmd(),
	)
	return rootCmd
}

func (a *app) setupLogging(w io.Writer) {
	level := slog.LevelInfo
	if a.globals.Debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

// resolveConfig layers the configuration: defaults, then the config file,
// then LUAFMT_* variables, then flags.
func (a *app) resolveConfig(cmd *cobra.Command) error {
	cfg := format.DefaultConfig()
	path := a.globals.ConfigPath
	if path != "" {
		loaded, err := format.LoadConfig(a.fs, path)
		if err != nil {
			return err
		}
		cfg = loaded
	} else {
		dir, err := a.workDir()
		if err != nil {
			return fmt.Errorf("finding config: %w", err)
		}
		found, loaded, err := format.FindConfig(a.fs, dir)
		if err != nil {
			return err
		}
		if loaded != nil {
			path = found
			cfg = *loaded
		}
	}

	if err := format.ApplyEnv(&cfg, a.lookupEnv); err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("indent") {
		unit, err := format.ParseIndent(a.globals.Indent)
		if err != nil {
			return err
		}
		cfg.IndentUnit = unit
	}
	if flags.Changed("placement") {
		cfg.Placement = format.Placement(a.globals.Placement)
	}
	if a.globals.Jobs < 1 {
		return fmt.Errorf("--jobs must be at least 1, got %d", a.globals.Jobs)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	slog.Debug("resolved config", "file", path, "config", pretty.Sprint(cfg))
	a.config = cfg
	return nil
}
