package workspace

import (
	"fmt"
	"strings"
)

// ConfigError represents a fatal startup configuration problem
type ConfigError struct {
	Workspace   string   `json:"workspace"`   // Workspace name, empty when the name itself is missing
	Message     string   `json:"message"`     // Human-readable error message
	Variables   []string `json:"variables"`   // Exact variable names that must be set or fixed
	Suggestions []string `json:"suggestions"` // Actionable suggestions to fix the error
}

// Error implements the error interface
func (ce *ConfigError) Error() string {
	if ce.Workspace == "" {
		return ce.Message
	}
	return fmt.Sprintf("[%s] %s", ce.Workspace, ce.Message)
}

// DetailedError returns a detailed error message with all context
func (ce *ConfigError) DetailedError() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("Configuration Error: %s", ce.Error()))

	if len(ce.Variables) > 0 {
		parts = append(parts, "  Set these environment variables:")
		for _, v := range ce.Variables {
			parts = append(parts, fmt.Sprintf("    %s=...", v))
		}
	}

	if len(ce.Suggestions) > 0 {
		parts = append(parts, "  Suggestions:")
		for _, suggestion := range ce.Suggestions {
			parts = append(parts, fmt.Sprintf("    - %s", suggestion))
		}
	}

	return strings.Join(parts, "\n")
}

func newMissingNameError() *ConfigError {
	return &ConfigError{
		Message: "workspace name is required",
		Suggestions: []string{
			"Usage: linear-proxy <WorkspaceName>",
			"Or set the WORKSPACE_NAME environment variable",
		},
	}
}

func newInvalidNameError(name string) *ConfigError {
	return &ConfigError{
		Message: fmt.Sprintf("invalid workspace name %q: must start with a letter and contain only letters, digits and underscores", name),
		Suggestions: []string{
			"Use a name such as Acme or Acme_Eng; it prefixes variables like ACME_PORT",
		},
	}
}

func newMissingVariablesError(name string, vars []string) *ConfigError {
	return &ConfigError{
		Workspace: name,
		Message:   fmt.Sprintf("missing OAuth credentials: %s", strings.Join(vars, ", ")),
		Variables: vars,
		Suggestions: []string{
			fmt.Sprintf("Create an OAuth application in Linear with redirect URI http://localhost:<port>%s", CallbackPath),
			fmt.Sprintf("Or run `linear-proxy setup %s` to scaffold a .env file", name),
		},
	}
}

func newMissingTokenError(name, tokenKey string) *ConfigError {
	return &ConfigError{
		Workspace: name,
		Message:   "headless mode requires a pre-provisioned access token",
		Variables: []string{tokenKey},
		Suggestions: []string{
			"Unset HEADLESS_MODE to authenticate interactively through the browser",
		},
	}
}

func newInvalidPortError(name, portKey, raw string) *ConfigError {
	return &ConfigError{
		Workspace: name,
		Message:   fmt.Sprintf("invalid port %q: must be an integer between 1 and 65535", raw),
		Variables: []string{portKey},
	}
}
