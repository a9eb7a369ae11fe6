package lsp

import (
	"context"

	"github.com/creachadair/jrpc2"
)

func (h *Handler) handleTextDocumentDidOpen(ctx context.Context, req *jrpc2.Request) (any, error) {
	if !req.HasParams() {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "missing parameters")
	}

	var params DidOpenTextDocumentParams
	if err := req.UnmarshalParams(&params); err != nil {
		return nil, err
	}

	doc := params.TextDocument
	f := h.openFile(doc.URI, doc.LanguageID, doc.Version, doc.Text)
	h.publishDiagnostics(ctx, doc.URI, f)
	return nil, nil
}
