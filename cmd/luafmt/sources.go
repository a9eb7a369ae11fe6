package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/vito/luafmt/pkg/ioctx"
	"github.com/vito/luafmt/pkg/syntax"
)

// stdinPath names standard input on the command line.
const stdinPath = "-"

// collectFiles expands directories into the .lua files below them.
// Hidden directories are skipped. Explicit file arguments are kept
// whatever their extension.
func collectFiles(afs afero.Fs, paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		if path == stdinPath {
			files = append(files, path)
			continue
		}

		info, err := afs.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("accessing %s: %w", path, err)
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		err = afero.Walk(afs, path, func(p string, info fs.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				if p != path && strings.HasPrefix(info.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.HasSuffix(info.Name(), ".lua") {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("reading directory %s: %w", path, err)
		}
	}
	return files, nil
}

// processAll parses files with up to jobs goroutines and runs fn on each
// tree. Results are returned in argument order.
func processAll[T any](ctx context.Context, parse func(context.Context, string) (*syntax.Tree, error), files []string, jobs int, fn func(*syntax.Tree) (T, error)) ([]T, error) {
	results := make([]T, len(files))

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(jobs)
	for i, file := range files {
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tree, err := parse(gctx, file)
			if err != nil {
				return err
			}
			res, err := fn(tree)
			if err != nil {
				return fmt.Errorf("%s: %w", tree.Path, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// parseFile parses path, or standard input for "-". With --verify the
// tree is checked against its source before it is used.
func (a *app) parseFile(ctx context.Context, path string) (*syntax.Tree, error) {
	tree, err := a.readTree(ctx, path)
	if err != nil {
		return nil, err
	}
	if a.globals.Verify {
		if err := tree.Verify(); err != nil {
			return nil, fmt.Errorf("verifying %s: %w", tree.Path, err)
		}
		slog.DebugContext(ctx, "verified", "path", tree.Path)
	}
	return tree, nil
}

func (a *app) readTree(ctx context.Context, path string) (*syntax.Tree, error) {
	if path != stdinPath {
		return syntax.Create(a.fs, path)
	}
	content, err := io.ReadAll(ioctx.StdinFromContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}
	tree := syntax.CreateFromString(string(content))
	tree.Path = "<stdin>"
	for i := range tree.Errors {
		tree.Errors[i].Location.Filename = tree.Path
	}
	return tree, nil
}
