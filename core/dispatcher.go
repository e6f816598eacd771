package core

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Dispatcher maps tool names to handlers and applies the uniform contract
// around every invocation: one log line per call, exactly one handler run,
// and any failure converted into an {"error": ...} text payload. The MCP
// channel itself never faults on a handler error.
type Dispatcher struct {
	server *server.MCPServer
	tools  map[string]Tool
}

func NewDispatcher(s *server.MCPServer) *Dispatcher {
	return &Dispatcher{
		server: s,
		tools:  make(map[string]Tool),
	}
}

// Register binds a tool both in the local registry and on the MCP server.
// Nil tools are skipped so one unconfigured provider does not take the
// rest of the catalogue down with it.
func (d *Dispatcher) Register(tool Tool) {
	if tool == nil {
		log.Warn("skipping nil tool registration")
		return
	}

	name := tool.Handle().Name
	d.tools[name] = tool

	if d.server != nil {
		d.server.AddTool(tool.Handle(), d.wrap(name, tool.Handler))
	}
}

// RegisterAll registers every tool in a provider's tool map.
func (d *Dispatcher) RegisterAll(tools map[string]Tool) {
	for _, tool := range tools {
		d.Register(tool)
	}
}

// Tools returns the registered catalogue, keyed by tool name.
func (d *Dispatcher) Tools() map[string]Tool {
	return d.tools
}

// Invoke runs a single tool by name against a loose argument bag. Unknown
// names produce an error payload, not a fault.
func (d *Dispatcher) Invoke(ctx context.Context, name string, args map[string]any) *mcp.CallToolResult {
	tool, ok := d.tools[name]
	if !ok {
		return errorResult(fmt.Errorf("%w: %s", ErrUnknownTool, name))
	}

	request := mcp.CallToolRequest{}
	request.Params.Name = name
	request.Params.Arguments = args

	result, err := d.wrap(name, tool.Handler)(ctx, request)
	if err != nil {
		// wrap never returns an error; keep the channel safe regardless.
		return errorResult(err)
	}
	return result
}

func (d *Dispatcher) wrap(name string, handler server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (result *mcp.CallToolResult, err error) {
		// Arguments can carry sensitive content (email bodies, feedback
		// summaries). Logging them verbatim is an accepted tradeoff: the
		// log line is the only record of what the agent asked for.
		log.Info("tool call",
			"invocation", uuid.NewString(),
			"tool", name,
			"args", request.Params.Arguments,
		)

		defer func() {
			if r := recover(); r != nil {
				log.Error("tool panic", "tool", name, "panic", r)
				result = errorResult(fmt.Errorf("%s: panic: %v", name, r))
				err = nil
			}
		}()

		res, herr := handler(ctx, request)
		if herr != nil {
			log.Error("tool failed", "tool", name, "error", herr)
			return errorResult(herr), nil
		}
		return res, nil
	}
}

func errorResult(err error) *mcp.CallToolResult {
	payload, merr := json.Marshal(map[string]string{"error": err.Error()})
	if merr != nil {
		return mcp.NewToolResultText(`{"error":"internal error"}`)
	}
	return mcp.NewToolResultText(string(payload))
}

// JSONResult marshals a structured value into the uniform text payload.
func JSONResult(v any) (*mcp.CallToolResult, error) {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	return mcp.NewToolResultText(string(payload)), nil
}
