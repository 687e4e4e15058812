package mcp_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/cohort/internal/contract"
	"github.com/huangsam/cohort/internal/iocache"
	mcp_internal "github.com/huangsam/cohort/internal/mcp"
	"github.com/huangsam/cohort/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const people = `[
  {"person_id": 1, "gender": "FEMALE", "release_events": [
    {"state_code": "CA", "release_date": "2010-01-01", "reincarceration_date": "2010-06-01", "return_type": "NEW_ADMISSION"}
  ]},
  {"person_id": 2, "gender": "MALE", "release_events": [
    {"state_code": "CA", "release_date": "2010-03-15"}
  ]}
]`

func baseConfig() *contract.Config {
	return &contract.Config{
		Workers:            2,
		Precision:          2,
		Output:             schema.JSONOut,
		RunBackend:         schema.NoneBackend,
		EvaluationDate:     time.Date(2011, 6, 1, 0, 0, 0, 0, time.UTC),
		FollowUpPeriods:    []int{1},
		MetricPeriodMonths: []int{1},
		Inclusions:         schema.AllInclusions(),
		CombinationMode:    schema.TupleMode,
		Methodologies:      schema.AllMethodologies,
		PersonLevel:        true,
	}
}

func call(t *testing.T, ctx context.Context, tool string, args map[string]any, mgr contract.StoreManager) *mcp.CallToolResult {
	t.Helper()
	s := mcp_internal.NewMCPServer(baseConfig(), mgr)
	st := s.GetTool(tool)
	require.NotNil(t, st, "Tool %s should exist", tool)

	res, err := st.Handler(ctx, mcp.CallToolRequest{Params: mcp.CallToolParams{Name: tool, Arguments: args}})
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	return res
}

func text(res *mcp.CallToolResult) string {
	return res.Content[0].(mcp.TextContent).Text
}

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	ctx := context.Background()
	mgr := &iocache.MockStoreManager{}

	t.Run("calculate_metrics missing input_path", func(t *testing.T) {
		res := call(t, ctx, "calculate_metrics", map[string]any{}, mgr)
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "input_path is required")
	})

	t.Run("calculate_metrics bad dimension", func(t *testing.T) {
		res := call(t, ctx, "calculate_metrics", map[string]any{"input_path": "x.json", "include": "shoe_size"}, mgr)
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "unknown dimension")
	})

	t.Run("calculate_metrics bad date", func(t *testing.T) {
		res := call(t, ctx, "calculate_metrics", map[string]any{"input_path": "x.json", "evaluation_date": "tomorrow"}, mgr)
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "invalid evaluation date")
	})

	t.Run("list_metric_keys bad metric type", func(t *testing.T) {
		res := call(t, ctx, "list_metric_keys", map[string]any{"metric_type": "AVERAGE"}, mgr)
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "invalid metric type")
	})

	t.Run("score_event bad json", func(t *testing.T) {
		res := call(t, ctx, "score_event", map[string]any{"event": "{"}, mgr)
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "invalid event")
	})

	mgr.AssertNotCalled(t, "GetRunStore")
}

func TestMCPServerHandlers_Results(t *testing.T) {
	ctx := context.Background()

	t.Run("calculate_metrics", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "people.json")
		require.NoError(t, os.WriteFile(path, []byte(people), 0o600))
		mgr := &iocache.MockStoreManager{}
		mgr.On("GetRunStore").Return(nil)

		res := call(t, ctx, "calculate_metrics", map[string]any{"input_path": path, "include": "gender", "limit": 5.0}, mgr)
		require.False(t, res.IsError, text(res))

		var decoded struct {
			Totals  schema.RunTotals `json:"totals"`
			Records []map[string]any `json:"records"`
		}
		require.NoError(t, json.Unmarshal([]byte(text(res)), &decoded))
		assert.Equal(t, 2, decoded.Totals.People)
		assert.Len(t, decoded.Records, 5)
		for _, r := range decoded.Records {
			assert.NotContains(t, r, "race", "only gender was included")
		}
	})

	t.Run("list_metric_keys", func(t *testing.T) {
		res := call(t, ctx, "list_metric_keys", map[string]any{"methodology": "event", "metric_type": "rate"}, nil)
		require.False(t, res.IsError, text(res))

		var keys []map[string]any
		require.NoError(t, json.Unmarshal([]byte(text(res)), &keys))
		assert.Len(t, keys, 23)
		assert.Equal(t, "EVENT", keys[0]["methodology"])
	})

	t.Run("score_event", func(t *testing.T) {
		event := `{"state_code": "CA", "release_date": "2010-01-01", "reincarceration_date": "2010-06-01", "return_type": "REVOCATION", "from_supervision_type": "PAROLE"}`
		res := call(t, ctx, "score_event", map[string]any{"event": event}, nil)
		require.False(t, res.IsError, text(res))

		var pairs []map[string]any
		require.NoError(t, json.Unmarshal([]byte(text(res)), &pairs))
		require.NotEmpty(t, pairs)
		for _, p := range pairs {
			assert.NotContains(t, p, "person_id")
		}
	})
}
