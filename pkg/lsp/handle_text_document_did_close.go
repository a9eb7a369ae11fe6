package lsp

import (
	"context"

	"github.com/creachadair/jrpc2"
)

func (h *Handler) handleTextDocumentDidClose(ctx context.Context, req *jrpc2.Request) (any, error) {
	if !req.HasParams() {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "missing parameters")
	}

	var params DidCloseTextDocumentParams
	if err := req.UnmarshalParams(&params); err != nil {
		return nil, err
	}

	h.closeFile(params.TextDocument.URI)
	// Clear the client's diagnostics for the closed document.
	h.publishDiagnostics(ctx, params.TextDocument.URI, &File{})
	return nil, nil
}
