package lsp

import (
	"context"

	"github.com/creachadair/jrpc2"
)

func (h *Handler) handleShutdown(ctx context.Context, req *jrpc2.Request) (any, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clear(h.files)
	return nil, nil
}

func (h *Handler) handleExit(ctx context.Context, req *jrpc2.Request) (any, error) {
	if srv := jrpc2.ServerFromContext(ctx); srv != nil {
		// Let the exit notification finish before the server goes away.
		go srv.Stop()
	}
	return nil, nil
}
