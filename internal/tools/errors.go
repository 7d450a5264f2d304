package tools

import "fmt"

// ToolNotFoundError is returned for a name that does not belong to this
// workspace's catalog.
type ToolNotFoundError struct {
	Name string
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("tool not found: %s", e.Name)
}

// AuthorizationError is returned when a tool is called before the workspace
// has an access token.
type AuthorizationError struct {
	Workspace string
	AuthURL   string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("Not authenticated with %s Linear workspace. Visit %s to authenticate.", e.Workspace, e.AuthURL)
}

// ConnectionError is returned when the workspace is authenticated but the
// remote MCP session cannot be established.
type ConnectionError struct {
	Workspace string
	Err       error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s workspace is authenticated but not connected to Linear MCP: %v", e.Workspace, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}
