// Package mcp exposes the documentation engine to coding agents over the
// Model Context Protocol: template parsing, tree-wide checks and vendor
// type queries, served on stdio.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/liquidoc/liquidoc/pkg/docs"
	"github.com/liquidoc/liquidoc/pkg/mcplog"
	"github.com/liquidoc/liquidoc/pkg/registry"
)

const serverVersion = "0.1.0-dev"

// Server is the MCP server for liquidoc.
type Server struct {
	mcpServer *server.MCPServer
	parser    *docs.Parser
	reg       *registry.Registry
	root      string
	logger    *mcplog.Logger // nil disables tool call logging
}

// NewServer creates an MCP server answering relative paths against root and
// resolving vendor types against reg. A nil reg selects the bundled
// dataset; a nil logger disables JSONL tool call logging.
func NewServer(reg *registry.Registry, root string, logger *mcplog.Logger) *Server {
	if reg == nil {
		reg = registry.Builtin()
	}
	s := &Server{
		parser: docs.NewParser(reg),
		reg:    reg,
		root:   root,
		logger: logger,
	}

	opts := []server.ServerOption{
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	}
	if logger != nil {
		opts = append(opts, server.WithToolHandlerMiddleware(s.loggingMiddleware()))
	}

	s.mcpServer = server.NewMCPServer("liquidoc", serverVersion, opts...)

	s.mcpServer.AddTools(
		server.ServerTool{Tool: parseTemplateTool(), Handler: s.handleParseTemplate},
		server.ServerTool{Tool: getTemplateDocTool(), Handler: s.handleGetTemplateDoc},
		server.ServerTool{Tool: checkTemplatesTool(), Handler: s.handleCheckTemplates},
		server.ServerTool{Tool: listVendorTypesTool(), Handler: s.handleListVendorTypes},
		server.ServerTool{Tool: registryInfoTool(), Handler: s.handleRegistryInfo},
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
