package mcpserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"linearproxy/pkg/logging"
)

const defaultInitTimeout = 30 * time.Second

// dialFunc creates an unstarted MCP client that sends the Bearer token.
type dialFunc func(url, token string, httpClient *http.Client) (*client.Client, error)

// RemoteExecutor forwards operations to a remote MCP server, authenticating
// with a Bearer token. The transport is chosen by its constructor.
type RemoteExecutor struct {
	transport  string
	dial       dialFunc
	url        string
	httpClient *http.Client
	clientInfo mcp.Implementation

	mu     sync.RWMutex
	client *client.Client
	token  string
}

// RemoteOption configures a RemoteExecutor.
type RemoteOption func(*RemoteExecutor)

// WithHTTPClient sets the HTTP client used for every request.
func WithHTTPClient(c *http.Client) RemoteOption {
	return func(e *RemoteExecutor) { e.httpClient = c }
}

// WithClientInfo sets the implementation advertised in the initialize handshake.
func WithClientInfo(name, version string) RemoteOption {
	return func(e *RemoteExecutor) {
		e.clientInfo = mcp.Implementation{Name: name, Version: version}
	}
}

func newRemoteExecutor(transport string, dial dialFunc, url string, opts ...RemoteOption) *RemoteExecutor {
	e := &RemoteExecutor{
		transport:  transport,
		dial:       dial,
		url:        url,
		clientInfo: mcp.Implementation{Name: "linear-proxy", Version: "dev"},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Connect performs the MCP initialize handshake with the Bearer token.
func (e *RemoteExecutor) Connect(ctx context.Context, token string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.connectLocked(ctx, token)
}

func (e *RemoteExecutor) connectLocked(ctx context.Context, token string) error {
	if e.client != nil && e.token == token {
		return nil
	}
	if e.client != nil {
		_ = e.client.Close()
		e.client = nil
		e.token = ""
	}

	logging.Debug("RemoteExecutor", "Connecting to remote MCP server at %s over %s", e.url, e.transport)

	mcpClient, err := e.dial(e.url, token, e.httpClient)
	if err != nil {
		return fmt.Errorf("failed to create %s client: %w", e.transport, err)
	}
	if err := mcpClient.Start(ctx); err != nil {
		_ = mcpClient.Close()
		return fmt.Errorf("failed to start %s client: %w", e.transport, err)
	}

	initCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		initCtx, cancel = context.WithTimeout(ctx, defaultInitTimeout)
		defer cancel()
	}

	initResult, err := mcpClient.Initialize(initCtx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
			ClientInfo:      e.clientInfo,
			Capabilities:    mcp.ClientCapabilities{},
		},
	})
	if err != nil {
		_ = mcpClient.Close()
		return fmt.Errorf("failed to initialize MCP protocol: %w", err)
	}

	e.client = mcpClient
	e.token = token

	logging.Debug("RemoteExecutor", "Connected to %s. Server: %s, Version: %s",
		e.url, initResult.ServerInfo.Name, initResult.ServerInfo.Version)
	return nil
}

// Execute calls the operation as a remote tool. A request carrying a
// different token than the open session reconnects first.
func (e *RemoteExecutor) Execute(ctx context.Context, req ForwardRequest) (*mcp.CallToolResult, error) {
	e.mu.Lock()
	if e.client == nil {
		e.mu.Unlock()
		return nil, ErrNotConnected
	}
	if req.Token != "" && req.Token != e.token {
		if err := e.connectLocked(ctx, req.Token); err != nil {
			e.mu.Unlock()
			return nil, err
		}
	}
	c := e.client
	e.mu.Unlock()

	logging.Debug("RemoteExecutor", "Forwarding %s (call %s)", req.Operation, req.CallID)

	result, err := c.CallTool(ctx, mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      req.Operation,
			Arguments: req.Arguments,
			Meta: &mcp.Meta{
				AdditionalFields: map[string]any{"callId": req.CallID},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", req.Operation, err)
	}
	return result, nil
}

// Close shuts down the session.
func (e *RemoteExecutor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.client == nil {
		return nil
	}
	err := e.client.Close()
	e.client = nil
	e.token = ""
	return err
}
