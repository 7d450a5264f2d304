// Package logging provides the subsystem-tagged structured logger used across
// linear-proxy.
//
// It is a thin layer over log/slog. Every entry carries a "subsystem"
// attribute (Bootstrap, OAuth, Tools, HTTP, ...) so output from the
// concurrently running stdio transport and HTTP listener can be told apart.
//
// # Output
//
// The proxy's stdout is the MCP stdio channel. Anything written there that is
// not a JSON-RPC frame corrupts the session, so the logger always writes to
// stderr unless told otherwise:
//
//	logging.Init(logging.LevelInfo, os.Stderr)
//	logging.Info("Bootstrap", "Starting proxy for workspace %s", name)
//	logging.Error("OAuth", err, "Token exchange failed")
//
// # Audit Logging
//
// Token adoption and exchange outcomes are recorded with Audit:
//
//	logging.Audit(logging.AuditEvent{
//	    Action:    "token_exchange",
//	    Outcome:   "success",
//	    Workspace: "Acme",
//	})
//
// Access tokens are never passed to the logger.
package logging
