// Package ioctx carries the standard streams through a context so commands
// can be run against buffers in tests.
package ioctx

import (
	"context"
	"io"
	"strings"
)

type stdinKey struct{}
type stdoutKey struct{}
type stderrKey struct{}

// StdinFromContext returns the input stream, or an empty reader.
func StdinFromContext(ctx context.Context) io.Reader {
	reader := ctx.Value(stdinKey{})
	if reader == nil {
		return strings.NewReader("")
	}

	return reader.(io.Reader)
}

func StdinToContext(ctx context.Context, r io.Reader) context.Context {
	return context.WithValue(ctx, stdinKey{}, r)
}

func StderrFromContext(ctx context.Context) io.Writer {
	logger := ctx.Value(stderrKey{})
	if logger == nil {
		logger = io.Discard
	}

	return logger.(io.Writer)
}

func StderrToContext(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, stderrKey{}, w)
}

func StdoutFromContext(ctx context.Context) io.Writer {
	writer := ctx.Value(stdoutKey{})
	if writer == nil {
		writer = io.Discard
	}

	return writer.(io.Writer)
}

func StdoutToContext(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, stdoutKey{}, w)
}
