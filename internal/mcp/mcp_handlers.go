package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/huangsam/cohort/core"
	"github.com/huangsam/cohort/internal/contract"
	"github.com/huangsam/cohort/internal/ingest"
	"github.com/huangsam/cohort/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

func (h *toolHandler) handleCalculateMetrics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	path := request.GetString("input_path", "")
	if path == "" {
		return mcp.NewToolResultError("input_path is required"), nil
	}
	cfg.InputPaths = []string{path}

	err := contract.RevalidateCalculate(cfg,
		request.GetString("include", ""),
		request.GetString("exclude", ""),
		request.GetString("evaluation_date", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid calculation parameters: %v", err)), nil
	}

	output, err := core.GetCalculateResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("calculation failed: %v", err)), nil
	}

	records := output.Records
	if l := request.GetInt("limit", 0); l > 0 && l < len(records) {
		records = records[:l]
	}
	flat := make([]map[string]any, len(records))
	for i, r := range records {
		flat[i] = r.AsMap()
	}

	jsonData, _ := json.MarshalIndent(map[string]any{
		"totals":  output.Totals,
		"records": flat,
	}, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleListMetricKeys(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.KeyspaceMethodology = schema.Methodology(strings.ToUpper(request.GetString("methodology", string(schema.PersonMethodology))))
	if _, ok := schema.ValidMethodologies[cfg.KeyspaceMethodology]; !ok {
		return mcp.NewToolResultError(fmt.Sprintf("invalid methodology '%s'. must be PERSON, EVENT", cfg.KeyspaceMethodology)), nil
	}
	cfg.KeyspaceMetricType = schema.MetricType(strings.ToUpper(request.GetString("metric_type", string(schema.RateMetric))))
	if _, ok := schema.ValidMetricTypes[cfg.KeyspaceMetricType]; !ok {
		return mcp.NewToolResultError(fmt.Sprintf("invalid metric type '%s'. must be RATE, COUNT, LIBERTY", cfg.KeyspaceMetricType)), nil
	}

	keys := core.GetKeySpaceResults(cfg)
	fields := make([]map[string]any, len(keys))
	for i, k := range keys {
		fields[i] = k.Fields()
	}
	jsonData, _ := json.MarshalIndent(fields, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleScoreEvent(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw := request.GetString("event", "")
	if raw == "" {
		return mcp.NewToolResultError("event is required"), nil
	}
	year, event, err := ingest.ParseEvent([]byte(raw))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid event: %v", err)), nil
	}

	pairs := core.ScoreEvent(year, event, core.OptionsFromConfig(h.baseCfg))
	out := make([]map[string]any, len(pairs))
	for i, p := range pairs {
		m := p.Key.Fields()
		m["value"] = p.Value
		out[i] = m
	}
	jsonData, _ := json.MarshalIndent(out, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
