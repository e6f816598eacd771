package core

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// Tool is one named operation exposed over MCP. Handle carries the schema
// the caller validates its arguments against; Handler runs the upstream
// workflow. Handlers report failures by returning an error, the Dispatcher
// turns them into the uniform error payload.
type Tool interface {
	Handle() mcp.Tool
	Handler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
}
