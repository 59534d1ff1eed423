// Package mcp exposes theme resolution and stylesheet generation as
// MCP tools over stdio.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/previewtheme/pkg/mcplog"
	"github.com/gnana997/previewtheme/pkg/registry"
	"github.com/gnana997/previewtheme/pkg/scopemap"
	"github.com/gnana997/previewtheme/pkg/theme"
)

const serverVersion = "0.1.0-dev"

// Server implements the MCP server for previewtheme, exposing theme
// lookup and stylesheet generation tools.
type Server struct {
	mcpServer *server.MCPServer
	registry  *registry.Registry
	loader    *theme.Loader
	table     *scopemap.Table
	logger    *mcplog.Logger // nil disables tool-call logging
}

// NewServer creates a new MCP server backed by the given registry.
// A nil loader or table falls back to the defaults; a nil logger
// disables the JSONL call log.
func NewServer(reg *registry.Registry, loader *theme.Loader, table *scopemap.Table, logger *mcplog.Logger) *Server {
	if loader == nil {
		loader = theme.NewLoader(nil)
	}
	if table == nil {
		table = scopemap.MarkdownTable()
	}
	s := &Server{registry: reg, loader: loader, table: table, logger: logger}

	opts := []server.ServerOption{
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	}
	if logger != nil {
		opts = append(opts, server.WithToolHandlerMiddleware(s.loggingMiddleware()))
	}

	s.mcpServer = server.NewMCPServer(
		"previewtheme",
		serverVersion,
		opts...,
	)

	s.mcpServer.AddTools(
		server.ServerTool{Tool: listThemesTool(), Handler: s.handleListThemes},
		server.ServerTool{Tool: resolveThemeTool(), Handler: s.handleResolveTheme},
		server.ServerTool{Tool: inspectThemeTool(), Handler: s.handleInspectTheme},
		server.ServerTool{Tool: generateCSSTool(), Handler: s.handleGenerateCSS},
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
