package tools

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"linearproxy/internal/workspace"
	"linearproxy/pkg/logging"
)

// Server is the local MCP server the assistant talks to over stdio.
type Server struct {
	mcpServer  *server.MCPServer
	dispatcher *Dispatcher
	names      *NameTracker
}

// NewServer creates the MCP server and registers one tool per catalog entry.
// Registration does not depend on authentication: every tool is listed from
// startup and the dispatcher's gate answers calls made too early.
func NewServer(identity workspace.Identity, catalog Catalog, dispatcher *Dispatcher, version string) *Server {
	mcpSrv := server.NewMCPServer(
		identity.ToolPrefix,
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(fmt.Sprintf(
			"Tools prefixed %s%s operate on the %s Linear workspace. If a tool reports that authentication is required, open %s in a browser.",
			identity.ToolPrefix, NameSeparator, identity.Name, identity.AuthURL())),
	)

	s := &Server{
		mcpServer:  mcpSrv,
		dispatcher: dispatcher,
		names:      dispatcher.names,
	}

	serverTools := make([]server.ServerTool, 0, len(catalog))
	for _, op := range catalog {
		serverTools = append(serverTools, server.ServerTool{
			Tool: mcp.NewTool(s.names.ExposedName(op),
				mcp.WithDescription(Describe(op, identity.Name)),
				mcp.WithReadOnlyHintAnnotation(isReadOnly(op)),
				mcp.WithDestructiveHintAnnotation(false),
				mcp.WithOpenWorldHintAnnotation(true),
			),
			Handler: s.handleToolCall,
		})
	}
	mcpSrv.AddTools(serverTools...)

	logging.Info("Tools", "Registered %d tools with prefix %s%s", len(serverTools), identity.ToolPrefix, NameSeparator)
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// handleToolCall turns every dispatcher error into a tool-level error result.
func (s *Server) handleToolCall(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.dispatcher.Call(ctx, req.Params.Name, req.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return result, nil
}

// ServeStdio serves MCP on in/out until ctx is cancelled or in reaches EOF.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(slog.NewLogLogger(logging.Logger().Handler(), slog.LevelError))

	logging.Info("Tools", "Serving MCP over stdio")
	if err := stdio.Listen(ctx, in, out); err != nil && ctx.Err() == nil {
		return fmt.Errorf("stdio transport failed: %w", err)
	}
	return nil
}
