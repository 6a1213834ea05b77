// ABOUTME: MCP tool implementations for querying runs and sleep.
// ABOUTME: All tools are read-only; ingestion happens through the CLI.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/runlog/internal/models"
	"github.com/harperreed/runlog/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const defaultListLimit = 20

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_runs",
		Description: "List recent runs with derived metrics and the sleep record that preceded each run",
	}, s.handleListRuns)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_run",
		Description: "Get one run by activity ID, including matched device metrics",
	}, s.handleGetRun)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_sleep",
		Description: "Get the sleep and readiness record for a calendar day",
	}, s.handleGetSleep)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "run_summary",
		Description: "Totals across the store: runs, distance, long runs, fueling, sleep coverage",
	}, s.handleRunSummary)
}

// Tool input/output types

type listRunsInput struct {
	Since string `json:"since,omitempty" jsonschema:"Only runs on or after this date (YYYY-MM-DD)"`
	Limit int    `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
}

type listRunsOutput struct {
	Count int                       `json:"count"`
	Runs  []*models.RunWithRecovery `json:"runs"`
}

type getRunInput struct {
	ID int64 `json:"id" jsonschema:"Activity ID from the activity export"`
}

type getSleepInput struct {
	Date string `json:"date" jsonschema:"Calendar day (YYYY-MM-DD)"`
}

type messageOutput struct {
	Message string `json:"message"`
}

// Tool handlers

func (s *Server) handleListRuns(ctx context.Context, req *mcp.CallToolRequest, input listRunsInput) (*mcp.CallToolResult, any, error) {
	if input.Limit <= 0 {
		input.Limit = defaultListLimit
	}
	if input.Since != "" {
		if err := checkDate(input.Since); err != nil {
			return nil, nil, err
		}
	}

	runs, err := s.repo.ListRuns(ctx, storage.RunFilter{Since: input.Since, Limit: input.Limit})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		return nil, messageOutput{Message: "No runs found."}, nil
	}

	return nil, listRunsOutput{Count: len(runs), Runs: runs}, nil
}

func (s *Server) handleGetRun(ctx context.Context, req *mcp.CallToolRequest, input getRunInput) (*mcp.CallToolResult, any, error) {
	run, err := s.repo.GetRun(ctx, input.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, fmt.Errorf("run not found: %d", input.ID)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get run: %w", err)
	}

	return nil, run, nil
}

func (s *Server) handleGetSleep(ctx context.Context, req *mcp.CallToolRequest, input getSleepInput) (*mcp.CallToolResult, any, error) {
	if err := checkDate(input.Date); err != nil {
		return nil, nil, err
	}

	rec, err := s.repo.GetSleep(ctx, input.Date)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, fmt.Errorf("no sleep record for %s", input.Date)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get sleep: %w", err)
	}

	return nil, rec, nil
}

func (s *Server) handleRunSummary(ctx context.Context, req *mcp.CallToolRequest, input struct{}) (*mcp.CallToolResult, any, error) {
	sum, err := s.repo.Summary(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to summarize: %w", err)
	}

	return nil, sum, nil
}

func checkDate(s string) error {
	if _, err := time.Parse(models.DateLayout, s); err != nil {
		return fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return nil
}
