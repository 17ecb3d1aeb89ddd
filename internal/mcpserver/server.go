// Package mcpserver exposes pkg/tools tools to MCP clients.
package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/comigor/emotune/internal/logger"
	"github.com/comigor/emotune/pkg/tools"
)

// New builds an MCP server with every tool registered in m.
func New(name, version string, m *tools.ToolManager) *server.MCPServer {
	s := server.NewMCPServer(name, version, server.WithToolCapabilities(false))
	for _, t := range m.List() {
		s.AddTool(toolFor(t), handlerFor(t))
		logger.L.Info("Registered tool for MCP clients", "tool", t.Name())
	}
	return s
}

// ServeStdio runs s on stdin/stdout until the input is closed.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func handlerFor(t tools.Tool) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := []byte("{}")
		if req.Params.Arguments != nil {
			b, err := json.Marshal(req.Params.Arguments)
			if err != nil {
				return mcp.NewToolResultError("Error: Could not encode arguments for tool " + t.Name()), nil
			}
			args = b
		}

		logger.L.Debug("MCP tool call", "tool", t.Name(), "arguments", string(args))
		out, err := t.Run(string(args))
		if err != nil {
			logger.L.Warn("MCP tool failed", "tool", t.Name(), "error", err)
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(out), nil
	}
}

func toolFor(t tools.Tool) mcp.Tool {
	opts := append([]mcp.ToolOption{mcp.WithDescription(t.Description())}, t.Options()...)
	return mcp.NewTool(t.Name(), opts...)
}
