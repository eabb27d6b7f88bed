package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/mbt"
	"github.com/aretw0/mbt/pkg/dsl"
	"github.com/aretw0/mbt/pkg/generators"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, opts ...mbt.Option) *Server {
	t.Helper()
	b := dsl.New()
	b.Start().Go("A", "e_Init/n=1")
	b.Add("A").Go("B", "e_AB")

	eng, err := mbt.New(b.MustBuild(), opts...)
	require.NoError(t, err)
	require.NoError(t, eng.SetGenerator(generators.KindShortestPath))
	return NewServer(eng, "test")
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text
}

func TestServer_ToolsRegistered(t *testing.T) {
	s := newTestServer(t)
	resp := s.MCPServer().HandleMessage(context.Background(),
		json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	for _, name := range []string{"has_next", "next_step", "backtrack", "current_state", "data_value", "statistics"} {
		assert.Contains(t, string(raw), `"name":"`+name+`"`)
	}
}

func TestServer_Walk(t *testing.T) {
	s := newTestServer(t, mbt.WithExtended(true), mbt.WithBacktrack(true))
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	has, err := s.handleHasNext(ctx, req, nil)
	require.NoError(t, err)
	assert.True(t, has.HasNext)

	step, err := s.handleNextStep(ctx, req, nil)
	require.NoError(t, err)
	assert.Equal(t, "e_Init/n=1", step.Navigate)
	assert.Equal(t, "A", step.Verify)
	assert.Equal(t, "A", step.State)

	res, err := s.handleCurrentState(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "A", resultText(t, res))

	res, err = s.handleDataValue(ctx, req, DataArgs{Name: "n"})
	require.NoError(t, err)
	assert.Equal(t, "1", resultText(t, res))

	res, err = s.handleDataValue(ctx, req, DataArgs{Name: "missing"})
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = s.handleBacktrack(ctx, req)
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "", resultText(t, res), "back before the first step")

	res, err = s.handleBacktrack(ctx, req)
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestServer_NextStepDeadEnd(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	for range 2 {
		_, err := s.handleNextStep(ctx, req, nil)
		require.NoError(t, err)
	}
	_, err := s.handleNextStep(ctx, req, nil)
	assert.Error(t, err)
}

func TestServer_Statistics(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	res, err := s.handleStatistics(ctx, req, StatisticsArgs{Format: "compact"})
	require.NoError(t, err)
	assert.Equal(t, "Edges: 0%, States: 0%, Requirements: n/a", resultText(t, res))

	res, err = s.handleStatistics(ctx, req, StatisticsArgs{})
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), "Coverage Edges: 0/2")

	res, err = s.handleStatistics(ctx, req, StatisticsArgs{Format: "html"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestServer_DataOnPlainMachine(t *testing.T) {
	s := newTestServer(t)
	res, err := s.handleDataValue(context.Background(), mcp.CallToolRequest{}, DataArgs{Name: "n"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
