package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"linearproxy/internal/mcpserver"
	"linearproxy/internal/oauth"
	"linearproxy/internal/workspace"
	"linearproxy/pkg/logging"
)

// AuthSource is the part of oauth.Manager the dispatcher depends on.
type AuthSource interface {
	Status() oauth.Status
	CurrentToken() (string, error)
	ProbeConnection(ctx context.Context) error
}

// Dispatcher resolves a tool name, enforces the authorization gate and
// forwards the call to the executor.
type Dispatcher struct {
	identity workspace.Identity
	names    *NameTracker
	auth     AuthSource
	executor mcpserver.Executor
}

// NewDispatcher creates a Dispatcher for identity.
func NewDispatcher(identity workspace.Identity, names *NameTracker, auth AuthSource, executor mcpserver.Executor) *Dispatcher {
	return &Dispatcher{
		identity: identity,
		names:    names,
		auth:     auth,
		executor: executor,
	}
}

// Call invokes the qualified tool with args. The executor is only reached
// once the workspace is authenticated and connected; args are forwarded
// untouched and the remote result is returned as is.
func (d *Dispatcher) Call(ctx context.Context, qualified string, args map[string]any) (*mcp.CallToolResult, error) {
	op, err := d.names.Resolve(qualified)
	if err != nil {
		return nil, err
	}

	token, err := d.auth.CurrentToken()
	if err != nil {
		logging.Debug("Tools", "Rejecting %s: %s workspace not authenticated", qualified, d.identity.Name)
		return nil, &AuthorizationError{Workspace: d.identity.Name, AuthURL: d.identity.AuthURL()}
	}

	if !d.auth.Status().Connected {
		if err := d.auth.ProbeConnection(ctx); err != nil {
			return nil, &ConnectionError{Workspace: d.identity.Name, Err: err}
		}
	}

	req := mcpserver.ForwardRequest{
		Operation: op,
		Arguments: args,
		Token:     token,
		CallID:    uuid.NewString(),
	}
	logging.Debug("Tools", "Forwarding %s as %s (call %s)", qualified, op, req.CallID)

	result, err := d.executor.Execute(ctx, req)
	if err != nil {
		if errors.Is(err, mcpserver.ErrNotConnected) {
			return nil, &ConnectionError{Workspace: d.identity.Name, Err: err}
		}
		logging.Error("Tools", err, "Remote call %s failed (call %s)", op, req.CallID)
		return nil, fmt.Errorf("%s failed: %w", op, err)
	}
	if result == nil {
		return nil, fmt.Errorf("%s returned no result", op)
	}
	return result, nil
}
