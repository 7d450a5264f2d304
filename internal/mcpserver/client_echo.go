package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
)

// EchoExecutor answers every operation locally with a description of the
// call instead of contacting Linear. It is useful for wiring an assistant to
// the proxy before OAuth credentials exist.
type EchoExecutor struct {
	workspace string

	mu        sync.Mutex
	connected bool
}

// NewEchoExecutor creates an EchoExecutor for workspaceName.
func NewEchoExecutor(workspaceName string) *EchoExecutor {
	return &EchoExecutor{workspace: workspaceName}
}

// Connect always succeeds.
func (e *EchoExecutor) Connect(_ context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("empty access token")
	}
	e.mu.Lock()
	e.connected = true
	e.mu.Unlock()
	return nil
}

// Execute returns "[PROXY] <op> called for <workspace> workspace with args: <json>".
func (e *EchoExecutor) Execute(_ context.Context, req ForwardRequest) (*mcp.CallToolResult, error) {
	e.mu.Lock()
	connected := e.connected
	e.mu.Unlock()
	if !connected {
		return nil, ErrNotConnected
	}

	args := req.Arguments
	if args == nil {
		args = map[string]any{}
	}
	argsJSON, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("failed to encode arguments: %w", err)
	}

	return mcp.NewToolResultText(fmt.Sprintf("[PROXY] %s called for %s workspace with args: %s",
		req.Operation, e.workspace, argsJSON)), nil
}

// Close resets the executor.
func (e *EchoExecutor) Close() error {
	e.mu.Lock()
	e.connected = false
	e.mu.Unlock()
	return nil
}
