// Package app bootstraps and runs one workspace proxy.
//
// NewApplication resolves the workspace configuration and wires the
// components together:
//
//	workspace.Resolve -> mcpserver.Executor -> oauth.Manager -> tools.Dispatcher -> tools.Server
//
// Any configuration problem is returned before a port is opened or stdio is
// read. Run then serves according to the resolved mode:
//
//   - Headless: the preset token is adopted, the remote connection is probed
//     in the background and only the stdio transport runs.
//   - Interactive: the callback listener on 127.0.0.1:<port> runs next to the
//     stdio transport until a browser completes the OAuth flow.
//
// Both transports share one errgroup. SIGINT, SIGTERM or EOF on stdin stops
// them, and the executor is closed on the way out.
package app
