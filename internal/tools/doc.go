// Package tools exposes the Linear operation catalog as locally registered MCP
// tools and forwards invocations to the remote server.
//
// Every tool is named <Workspace>Linear_<operation> (for example
// AcmeLinear_list_issues), so proxies for several workspaces can be loaded
// into one assistant session without collisions.
//
// A call goes through three steps in Dispatcher.Call:
//
//  1. Resolve the exact name to an operation, or ToolNotFoundError.
//  2. Gate on authentication: without a token the caller gets an
//     AuthorizationError carrying the local /auth URL and the executor is
//     never invoked. An authenticated but unconnected workspace is probed
//     once; if that fails the caller gets a ConnectionError.
//  3. Forward the operation, unmodified arguments and token to the executor
//     and return its result verbatim.
//
// Server registers the tools with an mcp-go MCPServer and serves it over
// stdio. Dispatcher errors become tool results with IsError set.
package tools
