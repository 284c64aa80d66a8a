package cli

import (
	mcpAdapter "github.com/aretw0/routechain/pkg/adapters/mcp"
)

// MCPServer exposes the app's router and sequencer as MCP tools.
func (a *App) MCPServer() *mcpAdapter.Server {
	return mcpAdapter.NewServer(a.Router, a.Sequencer,
		mcpAdapter.WithLogger(a.Logger),
		mcpAdapter.WithGraph(a.Graph),
	)
}
