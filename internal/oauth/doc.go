// Package oauth owns the access token of a single Linear workspace.
//
// A Manager moves through three states:
//
//	Unauthenticated --CompleteExchange--> Exchanging --ok--> Authenticated
//	       ^                                   |
//	       +---------------failure-------------+
//	Unauthenticated --AdoptPresetToken------------------> Authenticated
//
// Authenticated is terminal for the life of the process: there is no refresh
// and a second callback is rejected with ErrAlreadyAuthenticated.
//
// The token exchange is a standard authorization-code grant against Linear's
// token endpoint using golang.org/x/oauth2, with client credentials sent in
// the form body. Once authenticated, ProbeConnection opens the downstream MCP
// session through a Connector, retrying with exponential backoff.
//
// Handler exposes the two browser-facing endpoints of the interactive flow:
//
//	GET /auth            302 to Linear's consent page
//	GET /oauth/callback  exchange ?code=..., render an auto-closing page
//
// Tokens are held as RedactedToken so they never reach logs.
package oauth
