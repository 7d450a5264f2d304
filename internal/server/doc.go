// Package server runs the local HTTP listener used in interactive mode.
//
// It serves three routes on 127.0.0.1:<WS>_PORT:
//
//	GET /auth            redirect to Linear's consent page
//	GET /oauth/callback  complete the authorization code exchange
//	GET /health          {"workspace":..., "authenticated":..., "connected":...}
//
// The listener runs next to the stdio MCP transport and never blocks it.
// In headless mode it is not started at all.
package server
