package main

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/server"

	"github.com/develophealth/mcp-server-comms-bridge/core"
	"github.com/develophealth/mcp-server-comms-bridge/pkg/config"
	"github.com/develophealth/mcp-server-comms-bridge/pkg/tools/ashby"
	"github.com/develophealth/mcp-server-comms-bridge/pkg/tools/drive"
	"github.com/develophealth/mcp-server-comms-bridge/pkg/tools/gcal"
	"github.com/develophealth/mcp-server-comms-bridge/pkg/tools/gmail"
	"github.com/develophealth/mcp-server-comms-bridge/pkg/tools/grain"
	"github.com/develophealth/mcp-server-comms-bridge/pkg/tools/notion"
	"github.com/develophealth/mcp-server-comms-bridge/pkg/tools/sheets"
	"github.com/develophealth/mcp-server-comms-bridge/pkg/tools/slack"
)

var (
	mcpServer  *server.MCPServer
	dispatcher *core.Dispatcher
)

func init() {
	mcpServer = server.NewMCPServer(
		"Comms Bridge MCP Server",
		"1.0.0",
		server.WithResourceCapabilities(false, false),
		server.WithLogging(),
	)

	dispatcher = core.NewDispatcher(mcpServer)
}

// register wires a provider's tools into the dispatcher, or logs why the
// provider is unavailable. A missing credential disables one provider's
// tools, never the whole server.
func register(name string, tools map[string]core.Tool, err error) {
	if err != nil {
		log.Warn(name+" tools unavailable", "error", err)
		return
	}
	dispatcher.RegisterAll(tools)
}

func main() {
	ctx := context.Background()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Warn("incomplete configuration", "error", err)
	}

	if gmailProvider, err := gmail.NewProvider(ctx, cfg); err != nil {
		register("gmail", nil, err)
	} else {
		register("gmail", gmailProvider.Tools, nil)
	}

	if gcalProvider, err := gcal.NewProvider(ctx, cfg); err != nil {
		register("calendar", nil, err)
	} else {
		register("calendar", gcalProvider.Tools, nil)
	}

	if grainProvider, err := grain.NewProvider(cfg); err != nil {
		register("grain", nil, err)
	} else {
		register("grain", grainProvider.Tools, nil)
	}

	if sheetsProvider, err := sheets.NewProvider(ctx, cfg); err != nil {
		register("sheets", nil, err)
	} else {
		register("sheets", sheetsProvider.Tools, nil)
	}

	if driveProvider, err := drive.NewProvider(ctx, cfg); err != nil {
		register("drive", nil, err)
	} else {
		register("drive", driveProvider.Tools, nil)
	}

	if notionProvider, err := notion.NewProvider(cfg); err != nil {
		register("notion", nil, err)
	} else {
		register("notion", notionProvider.Tools, nil)
	}

	if slackProvider, err := slack.NewProvider(cfg); err != nil {
		register("slack", nil, err)
	} else {
		register("slack", slackProvider.Tools, nil)
	}

	if ashbyProvider, err := ashby.NewProvider(cfg); err != nil {
		register("ashby", nil, err)
	} else {
		register("ashby", ashbyProvider.Tools, nil)
	}

	log.Info("serving", "tools", len(dispatcher.Tools()))

	if err := server.ServeStdio(mcpServer); err != nil {
		log.Fatal("server error", "error", err)
	}
}
