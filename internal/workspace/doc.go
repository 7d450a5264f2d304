// Package workspace derives everything the proxy knows about the workspace it
// serves: its name, tool prefix, listener port, OAuth client credentials and
// run mode.
//
// All configuration variable names are the upper-cased workspace name plus a
// fixed suffix, so one environment can hold settings for several workspaces
// without collisions:
//
//	ACME_PORT=3001
//	ACME_OAUTH_CLIENT_ID=...
//	ACME_OAUTH_CLIENT_SECRET=...
//	ACME_ACCESS_TOKEN=...      (headless mode only)
//	ACME_MCP_URL=...           (optional)
//
// Resolve validates the combination before anything is started and returns a
// *ConfigError naming the exact variables to set when it is unusable.
package workspace
