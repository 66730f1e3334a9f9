package mcp

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/progressforms/pkg/adapters/memory"
	"github.com/aretw0/progressforms/pkg/domain"
	"github.com/aretw0/progressforms/pkg/runner"
	"github.com/aretw0/progressforms/pkg/session"
)

func surveyForm() *domain.Form {
	return &domain.Form{
		ID:       "survey",
		Settings: domain.DefaultSettings(),
		Panels: []domain.Panel{
			{ID: "about", Fields: []domain.Field{{Name: "name", Required: true}}},
			{ID: "rating"},
			{ID: "thanks"},
		},
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := NewServer(surveyForm(), session.NewManager(memory.NewStore()))
	require.NoError(t, err)
	return s
}

func TestServer_Tools(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	start, err := s.handleStart(ctx, mcp.CallToolRequest{}, struct{}{})
	require.NoError(t, err)
	require.NotEmpty(t, start.SessionID)
	assert.Equal(t, "about", start.Panel.ID)
	assert.Equal(t, "Step 1 of 3", start.Progress)

	t.Run("advance without values is blocked", func(t *testing.T) {
		resp, err := s.handleAdvance(ctx, mcp.CallToolRequest{}, StepArgs{SessionID: start.SessionID})
		require.NoError(t, err)
		assert.Equal(t, domain.TransitionBlocked, resp.Transition.Kind)
		assert.Contains(t, resp.Message, "name is required")
	})

	t.Run("jump by id validates on the way", func(t *testing.T) {
		resp, err := s.handleJump(ctx, mcp.CallToolRequest{}, JumpArgs{
			StepArgs: StepArgs{SessionID: start.SessionID, Values: map[string]any{"name": "Ana"}},
			PanelID:  "thanks",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.TransitionAdvanced, resp.Transition.Kind)
		assert.True(t, resp.Last)
	})

	t.Run("retreat goes back one panel", func(t *testing.T) {
		resp, err := s.handleRetreat(ctx, mcp.CallToolRequest{}, StepArgs{SessionID: start.SessionID})
		require.NoError(t, err)
		assert.Equal(t, 1, resp.CurrentIndex)
	})

	t.Run("status reflects the stored session", func(t *testing.T) {
		resp, err := s.handleStatus(ctx, mcp.CallToolRequest{}, SessionArgs{SessionID: start.SessionID})
		require.NoError(t, err)
		assert.Equal(t, []domain.IndicatorState{domain.IndicatorCompleted, domain.IndicatorActive, domain.IndicatorPending}, resp.Indicators)
	})

	t.Run("jump needs a target", func(t *testing.T) {
		_, err := s.handleJump(ctx, mcp.CallToolRequest{}, JumpArgs{StepArgs: StepArgs{SessionID: start.SessionID}})
		assert.ErrorContains(t, err, "index or panel_id")
	})

	t.Run("unknown session", func(t *testing.T) {
		_, err := s.handleStatus(ctx, mcp.CallToolRequest{}, SessionArgs{SessionID: "missing"})
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})
}

func TestServer_SanitizesValues(t *testing.T) {
	s, err := NewServer(surveyForm(), session.NewManager(memory.NewStore()), WithMaxInputSize(8))
	require.NoError(t, err)
	ctx := context.Background()

	start, err := s.handleStart(ctx, mcp.CallToolRequest{}, struct{}{})
	require.NoError(t, err)

	_, err = s.handleAdvance(ctx, mcp.CallToolRequest{}, StepArgs{
		SessionID: start.SessionID,
		Values:    map[string]any{"name": "Anastasia Maria"},
	})
	assert.ErrorIs(t, err, runner.ErrInputTooLarge)

	t.Run("control characters only leave a blank value", func(t *testing.T) {
		resp, err := s.handleAdvance(ctx, mcp.CallToolRequest{}, StepArgs{
			SessionID: start.SessionID,
			Values:    map[string]any{"name": " \x1b\x07 "},
		})
		require.NoError(t, err)
		assert.Equal(t, domain.TransitionBlocked, resp.Transition.Kind)
	})

	t.Run("clean value advances", func(t *testing.T) {
		resp, err := s.handleAdvance(ctx, mcp.CallToolRequest{}, StepArgs{
			SessionID: start.SessionID,
			Values:    map[string]any{"name": "Ana\x1b"},
		})
		require.NoError(t, err)
		assert.Equal(t, domain.TransitionAdvanced, resp.Transition.Kind)
	})
}

func TestServer_InProcess(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	c, err := client.NewInProcessClient(s.MCPServer())
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.Start(ctx))

	init := mcp.InitializeRequest{}
	init.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	init.Params.ClientInfo = mcp.Implementation{Name: "test-client", Version: "1.0.0"}
	_, err = c.Initialize(ctx, init)
	require.NoError(t, err)

	tools, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	require.NoError(t, err)
	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"start_session", "form_status", "advance", "retreat", "jump"}, names)

	call := mcp.CallToolRequest{}
	call.Params.Name = "start_session"
	res, err := c.CallTool(ctx, call)
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.NotNil(t, res.StructuredContent)

	read := mcp.ReadResourceRequest{}
	read.Params.URI = FormURI
	contents, err := c.ReadResource(ctx, read)
	require.NoError(t, err)
	require.Len(t, contents.Contents, 1)
	text, ok := contents.Contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Contains(t, text.Text, `"id":"survey"`)
}
