// ABOUTME: MCP resource implementations for the runlog store.
// ABOUTME: Provides runlog://summary and runlog://recent as JSON documents.
package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/harperreed/runlog/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	summaryURI = "runlog://summary"
	recentURI  = "runlog://recent"

	recentRuns = 10
)

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         summaryURI,
		Name:        "Run Summary",
		Description: "Store totals plus the date range covered",
		MIMEType:    "application/json",
	}, s.handleSummaryResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         recentURI,
		Name:        "Recent Runs",
		Description: "Last 10 runs joined with the preceding night's sleep",
		MIMEType:    "application/json",
	}, s.handleRecentResource)
}

// Resource handlers

func (s *Server) handleSummaryResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	sum, err := s.repo.Summary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize: %w", err)
	}

	return jsonResource(summaryURI, map[string]any{
		"generated_at": time.Now().Format(time.RFC3339),
		"summary":      sum,
	})
}

func (s *Server) handleRecentResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	runs, err := s.repo.ListRuns(ctx, storage.RunFilter{Limit: recentRuns})
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	return jsonResource(recentURI, map[string]any{
		"count": len(runs),
		"runs":  runs,
	})
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
