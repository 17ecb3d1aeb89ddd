package tools

import "github.com/mark3labs/mcp-go/mcp"

// Tool is the interface for all tools
type Tool interface {
	Name() string
	Description() string
	// Options declares the accepted arguments for MCP clients.
	Options() []mcp.ToolOption
	// Run executes the tool with JSON-encoded arguments and returns JSON.
	Run(args string) (string, error)
}
