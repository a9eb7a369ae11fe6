package lsp

import (
	"context"
	"log/slog"

	"github.com/creachadair/jrpc2"

	"github.com/vito/luafmt/pkg/format"
)

func (h *Handler) handleTextDocumentFormatting(ctx context.Context, req *jrpc2.Request) (any, error) {
	if !req.HasParams() {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "missing parameters")
	}

	var params DocumentFormattingParams
	if err := req.UnmarshalParams(&params); err != nil {
		return nil, err
	}

	f := h.file(params.TextDocument.URI)
	if f == nil {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "document not found: %v", params.TextDocument.URI)
	}

	// Syntax errors are already shown as diagnostics.
	if len(f.Diagnostics) > 0 {
		return []TextEdit{}, nil
	}

	cfg := h.defaults
	if path, err := fromURI(params.TextDocument.URI); err == nil {
		cfg = h.config(path)
	}

	formatted, err := format.Source(f.Text, cfg)
	if err != nil {
		slog.WarnContext(ctx, "formatting failed", "uri", params.TextDocument.URI, "error", err)
		h.logMessage(ctx, MTError, err.Error())
		return []TextEdit{}, nil
	}
	if formatted == f.Text {
		return []TextEdit{}, nil
	}

	// A single edit replacing the entire document.
	return []TextEdit{
		{
			Range: Range{
				Start: Position{Line: 0, Character: 0},
				End:   endOfDocument(f.Text),
			},
			NewText: formatted,
		},
	}, nil
}
