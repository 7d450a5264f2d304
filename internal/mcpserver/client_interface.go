package mcpserver

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
)

// ErrNotConnected is returned by Execute before a successful Connect.
var ErrNotConnected = errors.New("executor not connected")

// ForwardRequest is one invocation forwarded to the remote server. Operation
// is the un-prefixed operation name and Arguments are passed through unmodified.
type ForwardRequest struct {
	Operation string
	Arguments map[string]any
	Token     string
	CallID    string
}

// Executor runs operations against the remote Linear MCP server.
type Executor interface {
	// Connect opens a session authenticated with token. It is safe to call
	// again; a session already open for the same token is reused.
	Connect(ctx context.Context, token string) error
	// Execute performs one operation and returns the remote result verbatim.
	Execute(ctx context.Context, req ForwardRequest) (*mcp.CallToolResult, error)
	// Close releases the session.
	Close() error
}

// Compile-time interface compliance checks
var (
	_ Executor = (*RemoteExecutor)(nil)
	_ Executor = (*EchoExecutor)(nil)
)
