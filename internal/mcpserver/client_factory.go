package mcpserver

import (
	"fmt"
	"net/http"

	"linearproxy/pkg/logging"
)

// ExecutorKind selects an Executor implementation.
type ExecutorKind string

const (
	// ExecutorRemote forwards to Linear's MCP server over streamable HTTP.
	ExecutorRemote ExecutorKind = "remote"
	// ExecutorSSE forwards to a remote MCP server over the legacy SSE transport.
	ExecutorSSE ExecutorKind = "sse"
	// ExecutorEcho answers locally without contacting Linear.
	ExecutorEcho ExecutorKind = "echo"
)

// ExecutorConfig contains configuration for creating an Executor.
type ExecutorConfig struct {
	// Workspace is the display name used by the echo executor
	Workspace string
	// URL is the remote MCP endpoint
	URL string
	// HTTPClient overrides the default HTTP client for remote requests
	HTTPClient *http.Client
	// Version is advertised to the remote server during initialize
	Version string
}

// NewExecutor creates the Executor for kind. An empty kind selects ExecutorRemote.
func NewExecutor(kind ExecutorKind, config ExecutorConfig) (Executor, error) {
	switch kind {
	case ExecutorRemote, "", ExecutorSSE:
		if config.URL == "" {
			return nil, fmt.Errorf("url is required for %s executor", executorOrDefault(kind))
		}
		opts := []RemoteOption{}
		if config.HTTPClient != nil {
			opts = append(opts, WithHTTPClient(config.HTTPClient))
		}
		if config.Version != "" {
			opts = append(opts, WithClientInfo("linear-proxy", config.Version))
		}
		if kind == ExecutorSSE {
			logging.Debug("ExecutorFactory", "Creating SSE executor for %s", config.URL)
			return NewSSEExecutor(config.URL, opts...), nil
		}
		logging.Debug("ExecutorFactory", "Creating remote executor for %s", config.URL)
		return NewStreamableHTTPExecutor(config.URL, opts...), nil

	case ExecutorEcho:
		logging.Debug("ExecutorFactory", "Creating echo executor for %s workspace", config.Workspace)
		return NewEchoExecutor(config.Workspace), nil

	default:
		return nil, fmt.Errorf("unsupported executor %q (expected %q, %q or %q)", kind, ExecutorRemote, ExecutorSSE, ExecutorEcho)
	}
}

func executorOrDefault(kind ExecutorKind) ExecutorKind {
	if kind == "" {
		return ExecutorRemote
	}
	return kind
}
