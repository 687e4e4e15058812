// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/cohort/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the Cohort MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Cohort Recidivism Metrics Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: calculate_metrics ---
	s.AddTool(mcp.NewTool("calculate_metrics",
		mcp.WithDescription("Calculate recidivism metrics (rates, counts, days at liberty) over a file of person histories."),
		mcp.WithString("input_path", mcp.Description("Path to a JSON, JSON Lines or YAML file of people."), mcp.Required()),
		mcp.WithString("include", mcp.Description("Comma-separated characteristic dimensions to compute (default all).")),
		mcp.WithString("exclude", mcp.Description("Comma-separated characteristic dimensions to skip.")),
		mcp.WithString("evaluation_date", mcp.Description("Evaluation date as YYYY-MM-DD (defaults to today).")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of records returned.")),
	), h.handleCalculateMetrics)

	// --- 2. Tool: list_metric_keys ---
	s.AddTool(mcp.NewTool("list_metric_keys",
		mcp.WithDescription("List the unsliced metric keys declared for one methodology and metric type."),
		mcp.WithString("methodology", mcp.Description("PERSON or EVENT. Defaults to PERSON."), mcp.Enum("PERSON", "EVENT")),
		mcp.WithString("metric_type", mcp.Description("RATE, COUNT or LIBERTY. Defaults to RATE."), mcp.Enum("RATE", "COUNT", "LIBERTY")),
	), h.handleListMetricKeys)

	// --- 3. Tool: score_event ---
	s.AddTool(mcp.NewTool("score_event",
		mcp.WithDescription("Return every metric pair a single release event contributes."),
		mcp.WithString("event", mcp.Description("The release event as a JSON object, including its cohort_year."), mcp.Required()),
	), h.handleScoreEvent)

	return s
}

// StartMCPServer starts the Cohort MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
