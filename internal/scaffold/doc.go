// Package scaffold creates the per-workspace proxy directory used to launch
// linear-proxy from an assistant's MCP configuration.
//
// Generate renders four files into <lower-name>-proxy/:
//
//	.env                 workspace variables with placeholder OAuth credentials
//	start.sh             loads .env and execs linear-proxy for the workspace
//	claude-config.json   an mcpServers entry named <Name>Linear
//	README.md            setup steps and the tool list
//
// The templates are embedded and rendered with text/template plus sprig.
package scaffold
