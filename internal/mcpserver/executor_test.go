package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authHeaderKey struct{}

// newFakeLinearServer builds a minimal MCP server whose tools echo the
// Authorization header and arguments they were called with.
func newFakeLinearServer() *server.MCPServer {
	s := server.NewMCPServer("fake-linear", "1.0.0", server.WithToolCapabilities(true))
	s.AddTool(mcp.NewTool("list_issues"), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		auth, _ := ctx.Value(authHeaderKey{}).(string)
		args, _ := json.Marshal(req.GetArguments())
		return mcp.NewToolResultText(fmt.Sprintf("auth=%s args=%s", auth, args)), nil
	})
	s.AddTool(mcp.NewTool("get_issue"), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultError("issue not found"), nil
	})
	return s
}

func captureAuthHeader(ctx context.Context, r *http.Request) context.Context {
	return context.WithValue(ctx, authHeaderKey{}, r.Header.Get("Authorization"))
}

// newFakeLinear serves newFakeLinearServer over streamable HTTP.
func newFakeLinear(t *testing.T) *httptest.Server {
	t.Helper()
	ts := server.NewTestStreamableHTTPServer(newFakeLinearServer(), server.WithHTTPContextFunc(captureAuthHeader))
	t.Cleanup(ts.Close)
	return ts
}

func textOf(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return text.Text
}

func TestStreamableHTTPExecutor_ForwardsWithBearerToken(t *testing.T) {
	ts := newFakeLinear(t)
	exec := NewStreamableHTTPExecutor(ts.URL, WithClientInfo("linear-proxy", "test"))
	t.Cleanup(func() { _ = exec.Close() })

	ctx := context.Background()
	require.NoError(t, exec.Connect(ctx, "lin_oauth_abc"))

	result, err := exec.Execute(ctx, ForwardRequest{
		Operation: "list_issues",
		Arguments: map[string]any{"team": "ENG", "limit": float64(5)},
		Token:     "lin_oauth_abc",
		CallID:    "call-1",
	})
	require.NoError(t, err)

	assert.False(t, result.IsError)
	assert.Equal(t, `auth=Bearer lin_oauth_abc args={"limit":5,"team":"ENG"}`, textOf(t, result))
}

func TestStreamableHTTPExecutor_RemoteToolErrorIsReturnedVerbatim(t *testing.T) {
	ts := newFakeLinear(t)
	exec := NewStreamableHTTPExecutor(ts.URL)
	t.Cleanup(func() { _ = exec.Close() })

	ctx := context.Background()
	require.NoError(t, exec.Connect(ctx, "tok"))

	result, err := exec.Execute(ctx, ForwardRequest{Operation: "get_issue", Token: "tok"})
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Equal(t, "issue not found", textOf(t, result))
}

func TestStreamableHTTPExecutor_ReconnectsOnTokenChange(t *testing.T) {
	ts := newFakeLinear(t)
	exec := NewStreamableHTTPExecutor(ts.URL)
	t.Cleanup(func() { _ = exec.Close() })

	ctx := context.Background()
	require.NoError(t, exec.Connect(ctx, "first"))

	result, err := exec.Execute(ctx, ForwardRequest{Operation: "list_issues", Token: "second"})
	require.NoError(t, err)
	assert.Contains(t, textOf(t, result), "auth=Bearer second")
}

func TestStreamableHTTPExecutor_ExecuteBeforeConnect(t *testing.T) {
	exec := NewStreamableHTTPExecutor("http://127.0.0.1:0/mcp")

	_, err := exec.Execute(context.Background(), ForwardRequest{Operation: "list_issues", Token: "tok"})
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.NoError(t, exec.Close())
}

func TestStreamableHTTPExecutor_ConnectFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	t.Cleanup(ts.Close)

	exec := NewStreamableHTTPExecutor(ts.URL)
	err := exec.Connect(context.Background(), "bad-token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialize MCP protocol")

	_, err = exec.Execute(context.Background(), ForwardRequest{Operation: "list_issues"})
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestSSEExecutor_ForwardsWithBearerToken(t *testing.T) {
	ts := server.NewTestServer(newFakeLinearServer(), server.WithSSEContextFunc(captureAuthHeader))
	t.Cleanup(ts.Close)

	exec := NewSSEExecutor(ts.URL + "/sse")
	t.Cleanup(func() { _ = exec.Close() })

	ctx := context.Background()
	require.NoError(t, exec.Connect(ctx, "lin_oauth_sse"))

	result, err := exec.Execute(ctx, ForwardRequest{
		Operation: "list_issues",
		Arguments: map[string]any{"team": "ENG"},
		Token:     "lin_oauth_sse",
		CallID:    "call-2",
	})
	require.NoError(t, err)
	assert.Equal(t, `auth=Bearer lin_oauth_sse args={"team":"ENG"}`, textOf(t, result))
}

func TestEchoExecutor(t *testing.T) {
	exec := NewEchoExecutor("Acme")
	ctx := context.Background()

	_, err := exec.Execute(ctx, ForwardRequest{Operation: "list_teams"})
	assert.ErrorIs(t, err, ErrNotConnected)

	assert.Error(t, exec.Connect(ctx, ""))
	require.NoError(t, exec.Connect(ctx, "tok"))

	result, err := exec.Execute(ctx, ForwardRequest{
		Operation: "create_issue",
		Arguments: map[string]any{"title": "Bug"},
	})
	require.NoError(t, err)
	assert.Equal(t, `[PROXY] create_issue called for Acme workspace with args: {"title":"Bug"}`, textOf(t, result))

	result, err = exec.Execute(ctx, ForwardRequest{Operation: "list_teams"})
	require.NoError(t, err)
	assert.Equal(t, `[PROXY] list_teams called for Acme workspace with args: {}`, textOf(t, result))

	require.NoError(t, exec.Close())
	_, err = exec.Execute(ctx, ForwardRequest{Operation: "list_teams"})
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestNewExecutor(t *testing.T) {
	tests := []struct {
		name     string
		kind     ExecutorKind
		config   ExecutorConfig
		wantType Executor
		wantErr  bool
	}{
		{
			name:     "remote",
			kind:     ExecutorRemote,
			config:   ExecutorConfig{URL: "https://mcp.linear.app/mcp"},
			wantType: &RemoteExecutor{},
		},
		{
			name:     "default is remote",
			kind:     "",
			config:   ExecutorConfig{URL: "https://mcp.linear.app/mcp"},
			wantType: &RemoteExecutor{},
		},
		{
			name:     "sse",
			kind:     ExecutorSSE,
			config:   ExecutorConfig{URL: "https://mcp.linear.app/sse"},
			wantType: &RemoteExecutor{},
		},
		{
			name:    "sse without url",
			kind:    ExecutorSSE,
			wantErr: true,
		},
		{
			name:    "remote without url",
			kind:    ExecutorRemote,
			wantErr: true,
		},
		{
			name:     "echo",
			kind:     ExecutorEcho,
			config:   ExecutorConfig{Workspace: "Acme"},
			wantType: &EchoExecutor{},
		},
		{
			name:    "unknown",
			kind:    "grpc",
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			exec, err := NewExecutor(tc.kind, tc.config)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tc.wantType, exec)
		})
	}
}
