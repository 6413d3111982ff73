// ABOUTME: MCP server subcommand
// ABOUTME: Serves the cached directory and profile to MCP clients over stdio
package cli

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/roster/handlers"
)

// MCPCommand starts the MCP server on stdio
func MCPCommand(app *App, version string) error {
	app.Logger.Info("starting roster MCP server", "server", app.Config.Server, "backend", app.Config.Backend)

	server := handlers.NewServer(app, app, version)

	ctx := context.Background()
	return server.Run(ctx, &mcp.StdioTransport{})
}
