package lsp

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/creachadair/jrpc2"
)

// Version is reported to clients in the initialize result.
var Version = "dev"

func (h *Handler) handleInitialize(ctx context.Context, req *jrpc2.Request) (any, error) {
	if !req.HasParams() {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "missing parameters")
	}

	var params InitializeParams
	if err := req.UnmarshalParams(&params); err != nil {
		return nil, err
	}

	if params.RootURI != "" {
		rootPath, err := fromURI(params.RootURI)
		if err != nil {
			return nil, err
		}
		h.mu.Lock()
		h.rootPath = filepath.Clean(rootPath)
		h.mu.Unlock()
	}

	client := "unknown"
	if params.ClientInfo != nil {
		client = params.ClientInfo.Name
	}
	slog.InfoContext(ctx, "initialize", "client", client, "root", params.RootURI)

	return InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync: TextDocumentSyncOptions{
				OpenClose: true,
				Change:    TDSKFull,
				Save:      &SaveOptions{IncludeText: true},
			},
			DocumentFormattingProvider: true,
		},
		ServerInfo: &ServerInfo{
			Name:    "luafmt",
			Version: Version,
		},
	}, nil
}

func (h *Handler) handleInitialized(ctx context.Context, req *jrpc2.Request) (any, error) {
	h.mu.Lock()
	root := h.rootPath
	h.mu.Unlock()
	if root != "" {
		h.logMessage(ctx, MTInfo, "luafmt serving "+root)
	}
	return nil, nil
}
