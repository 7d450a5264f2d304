// Package mcpserver talks to the remote Linear MCP server on behalf of the proxy.
//
// An Executor owns the downstream session. Connect runs the MCP initialize
// handshake with the workspace access token as a Bearer credential, and
// Execute forwards one operation as a tools/call request, returning the
// remote result without modification.
//
// Implementations:
//
//   - RemoteExecutor over streamable HTTP (NewStreamableHTTPExecutor) against
//     https://mcp.linear.app/mcp, or <WS>_MCP_URL
//   - RemoteExecutor over SSE (NewSSEExecutor) for servers that only offer /sse
//   - EchoExecutor: answers locally with a description of the call
//
// NewExecutor picks one from the --executor flag.
package mcpserver
