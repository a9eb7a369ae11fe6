package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/spf13/cobra"

	"github.com/vito/luafmt/pkg/ioctx"
	"github.com/vito/luafmt/pkg/lsp"
)

func (a *app) lspCmd() *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "lsp [flags]",
		Short: "Run the language server on stdio",
		Long: `Run a Language Server Protocol server on stdin and stdout. It
publishes syntax errors as diagnostics and formats whole documents.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runLSP(cmd.Context(), logFile)
		},
	}

	cmd.Flags().StringVar(&logFile, "log-file", "", "Path to LSP log file (stderr if not specified)")

	return cmd
}

func (a *app) runLSP(ctx context.Context, logFile string) error {
	logDest, closeLog, err := a.openLog(ctx, logFile)
	if err != nil {
		return err
	}
	defer closeLog() //nolint:errcheck
	a.setupLogging(logDest)
	logger := slog.Default()

	logger.InfoContext(ctx, "starting LSP server", "version", version)

	lsp.Version = version
	handler := lsp.NewHandler(a.fs, a.config)
	srv := jrpc2.NewServer(handler, &jrpc2.ServerOptions{
		AllowPush: true,
		Logger:    func(text string) { logger.Debug(text) },
	})

	srv.Start(channel.LSP(stdrwc{}, stdrwc{}))

	logger.InfoContext(ctx, "LSP server closed", "error", srv.Wait())
	return nil
}

// openLog opens the server's log destination: logFile when set, stderr
// otherwise.
func (a *app) openLog(ctx context.Context, logFile string) (io.Writer, func() error, error) {
	if logFile == "" {
		return ioctx.StderrFromContext(ctx), func() error { return nil }, nil
	}
	f, err := a.fs.Create(logFile)
	if err != nil {
		return nil, nil, fmt.Errorf("open lsp log: %w", err)
	}
	return f, f.Close, nil
}

type stdrwc struct{}

func (stdrwc) Read(p []byte) (int, error) {
	return os.Stdin.Read(p)
}

func (stdrwc) Write(p []byte) (int, error) {
	return os.Stdout.Write(p)
}

func (stdrwc) Close() error {
	if err := os.Stdin.Close(); err != nil {
		return err
	}
	return os.Stdout.Close()
}
