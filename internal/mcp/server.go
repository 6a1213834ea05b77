// ABOUTME: MCP server setup for the runlog store.
// ABOUTME: Exposes read-only run and sleep queries over stdio.
package mcp

import (
	"context"
	"errors"

	"github.com/harperreed/runlog/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is reported to MCP clients during initialization.
const Version = "1.0.0"

const instructions = "runlog holds running activities joined with the preceding night's sleep. " +
	"Use list_runs or runlog://recent for recent sessions, get_run and get_sleep for one record, " +
	"and run_summary for totals. Dates are YYYY-MM-DD. The store is read-only here; " +
	"new data arrives through `runlog ingest`."

// Server answers MCP requests from a runlog store.
type Server struct {
	mcpServer *mcp.Server
	repo      storage.Repository
}

// NewServer registers the runlog tools and resources against repo.
func NewServer(repo storage.Repository) (*Server, error) {
	if repo == nil {
		return nil, errors.New("mcp: nil repository")
	}

	s := &Server{
		mcpServer: mcp.NewServer(
			&mcp.Implementation{Name: "runlog", Title: "Run log", Version: Version},
			&mcp.ServerOptions{Instructions: instructions},
		),
		repo: repo,
	}
	s.registerTools()
	s.registerResources()
	return s, nil
}

// Serve blocks serving stdio until ctx is done or the client disconnects.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
