// Package lsp implements a Language Server Protocol server that reports
// Lua syntax errors and formats documents.
package lsp

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"sync"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/spf13/afero"

	"github.com/vito/luafmt/pkg/format"
	"github.com/vito/luafmt/pkg/syntax"
)

// Handler serves the language server methods. It implements
// jrpc2.Assigner.
type Handler struct {
	fs       afero.Fs
	defaults format.Config
	methods  handler.Map

	mu       sync.Mutex
	files    map[DocumentURI]*File
	rootPath string
}

// File is an open document.
type File struct {
	LanguageID  string
	Text        string
	Version     int
	Diagnostics []Diagnostic
}

// NewHandler creates a handler that formats with defaults unless a
// .luafmt.toml is found above the document on fs.
func NewHandler(fs afero.Fs, defaults format.Config) *Handler {
	h := &Handler{
		fs:       fs,
		defaults: defaults,
		files:    make(map[DocumentURI]*File),
	}
	h.methods = handler.Map{
		"initialize":              h.handleInitialize,
		"initialized":             h.handleInitialized,
		"shutdown":                h.handleShutdown,
		"exit":                    h.handleExit,
		"textDocument/didOpen":    h.handleTextDocumentDidOpen,
		"textDocument/didChange":  h.handleTextDocumentDidChange,
		"textDocument/didSave":    h.handleTextDocumentDidSave,
		"textDocument/didClose":   h.handleTextDocumentDidClose,
		"textDocument/formatting": h.handleTextDocumentFormatting,
	}
	return h
}

// Assign returns the handler for method, or nil if it is not supported.
func (h *Handler) Assign(ctx context.Context, method string) jrpc2.Handler {
	slog.DebugContext(ctx, "handle", "method", method)
	return h.methods.Assign(ctx, method)
}

func isWindowsDrivePath(path string) bool {
	if len(path) < 4 {
		return false
	}
	return unicode.IsLetter(rune(path[0])) && path[1] == ':'
}

func isWindowsDriveURI(uri string) bool {
	if len(uri) < 4 {
		return false
	}
	return uri[0] == '/' && unicode.IsLetter(rune(uri[1])) && uri[2] == ':'
}

func fromURI(uri DocumentURI) (string, error) {
	u, err := url.ParseRequestURI(string(uri))
	if err != nil {
		return "", err
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("only file URIs are supported, got %v", u.Scheme)
	}
	if isWindowsDriveURI(u.Path) {
		u.Path = u.Path[1:]
	}
	return u.Path, nil
}

func toURI(path string) DocumentURI {
	if isWindowsDrivePath(path) {
		path = "/" + path
	}
	return DocumentURI((&url.URL{
		Scheme: "file",
		Path:   filepath.ToSlash(path),
	}).String())
}

func (h *Handler) openFile(uri DocumentURI, languageID string, version int, text string) *File {
	h.mu.Lock()
	defer h.mu.Unlock()
	f := &File{
		LanguageID: languageID,
		Version:    version,
	}
	h.files[uri] = f
	h.updateLocked(f, text)
	return snapshot(f)
}

// updateFile replaces the text of an open document. Stale versions are
// ignored.
func (h *Handler) updateFile(uri DocumentURI, text string, version *int) (*File, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	f, ok := h.files[uri]
	if !ok {
		return nil, fmt.Errorf("document not found: %v", uri)
	}
	if version != nil {
		if *version < f.Version {
			return nil, nil
		}
		f.Version = *version
	}
	h.updateLocked(f, text)
	return snapshot(f), nil
}

func (h *Handler) updateLocked(f *File, text string) {
	f.Text = text
	tree := syntax.CreateFromString(text)
	f.Diagnostics = diagnostics(tree)
}

func (h *Handler) closeFile(uri DocumentURI) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.files, uri)
}

func (h *Handler) file(uri DocumentURI) *File {
	h.mu.Lock()
	defer h.mu.Unlock()
	f, ok := h.files[uri]
	if !ok {
		return nil
	}
	return snapshot(f)
}

func snapshot(f *File) *File {
	cp := *f
	return &cp
}

func (h *Handler) logMessage(ctx context.Context, typ MessageType, message string) {
	srv := jrpc2.ServerFromContext(ctx)
	if srv == nil {
		return
	}
	if err := srv.Notify(ctx, "window/logMessage", &LogMessageParams{
		Type:    typ,
		Message: message,
	}); err != nil {
		slog.WarnContext(ctx, "failed to log message", "error", err)
	}
}

func (h *Handler) publishDiagnostics(ctx context.Context, uri DocumentURI, f *File) {
	srv := jrpc2.ServerFromContext(ctx)
	if srv == nil {
		return
	}

	diagnostics := f.Diagnostics
	if diagnostics == nil {
		diagnostics = []Diagnostic{}
	}

	err := srv.Notify(ctx, "textDocument/publishDiagnostics", &PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
		Version:     f.Version,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to publish diagnostics", "error", err)
	}
}

// diagnostics converts the syntax errors of tree. Every range covers at
// least one character.
func diagnostics(tree *syntax.Tree) []Diagnostic {
	ds := make([]Diagnostic, 0, len(tree.Errors))
	lines := tree.Lines()
	for _, e := range tree.Errors {
		start := e.Location.Offset
		end := start + max(e.Location.Length, 1)
		if end > len(tree.Source) {
			end = len(tree.Source)
		}
		ds = append(ds, Diagnostic{
			Range: Range{
				Start: position(tree.Source, lines, start),
				End:   position(tree.Source, lines, end),
			},
			Severity: SeverityError,
			Source:   "luafmt",
			Message:  e.Message,
		})
	}
	return ds
}

// position converts a byte offset to a zero-based line and UTF-16 column.
func position(src string, lines *syntax.LineIndex, offset int) Position {
	line, _ := lines.Position(offset)
	return Position{
		Line:      line - 1,
		Character: utf16Len(src[lines.LineStart(line):offset]),
	}
}

func utf16Len(s string) int {
	n := 0
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		s = s[size:]
		if w := utf16.RuneLen(r); w > 0 {
			n += w
		} else {
			n++
		}
	}
	return n
}

// endOfDocument is the position just past the last character of text.
func endOfDocument(text string) Position {
	return position(text, syntax.NewLineIndex(text), len(text))
}

// config returns the formatting configuration for the document at path.
func (h *Handler) config(path string) format.Config {
	_, cfg, err := format.FindConfig(h.fs, filepath.Dir(path))
	if err != nil {
		slog.Warn("invalid config, using defaults", "document", path, "error", err)
		return h.defaults
	}
	if cfg == nil {
		return h.defaults
	}
	return *cfg
}
