package workspace

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// DefaultPort is the callback/health listener port used when <WS>_PORT is unset.
	DefaultPort = 3000

	// ToolPrefixSuffix is appended to the workspace name to form the tool prefix.
	ToolPrefixSuffix = "Linear"

	// CallbackPath is the OAuth redirect path served by the local listener.
	CallbackPath = "/oauth/callback"

	// AuthPath starts the interactive OAuth flow.
	AuthPath = "/auth"

	// HealthPath reports authentication and connection status.
	HealthPath = "/health"

	// ProxyDirSuffix names the scaffolded per-workspace directory.
	ProxyDirSuffix = "-proxy"
)

// Configuration key suffixes. Each is prefixed with the upper-cased workspace name.
const (
	SuffixPort              = "_PORT"
	SuffixOAuthClientID     = "_OAUTH_CLIENT_ID"
	SuffixOAuthClientSecret = "_OAUTH_CLIENT_SECRET"
	SuffixAccessToken       = "_ACCESS_TOKEN"
	SuffixMCPURL            = "_MCP_URL"
)

// namePattern keeps every derived variable name a valid shell identifier.
var namePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// ValidateName checks that name can prefix environment variables and tool
// names. It returns a *ConfigError when it cannot.
func ValidateName(name string) error {
	if namePattern.MatchString(name) {
		return nil
	}
	return newInvalidNameError(name)
}

// Identity is the immutable naming information for one workspace.
// It is computed once at startup and passed by value to every component
// that needs derived names.
type Identity struct {
	// Name is the workspace name as given, case preserved for display.
	Name string
	// ToolPrefix namespaces every tool this proxy registers.
	ToolPrefix string
	// Port is the local listener port.
	Port int
}

// NewIdentity builds an Identity for name and port. A zero port selects DefaultPort.
func NewIdentity(name string, port int) Identity {
	if port == 0 {
		port = DefaultPort
	}
	return Identity{
		Name:       name,
		ToolPrefix: name + ToolPrefixSuffix,
		Port:       port,
	}
}

// Keys holds every configuration variable name derived for a workspace.
type Keys struct {
	Port              string
	OAuthClientID     string
	OAuthClientSecret string
	AccessToken       string
	MCPURL            string
}

// KeysFor derives the configuration variable names for a workspace name.
// The derivation depends only on the upper-cased name, so two workspaces
// never share a key unless their names differ only in case.
func KeysFor(name string) Keys {
	upper := strings.ToUpper(name)
	return Keys{
		Port:              upper + SuffixPort,
		OAuthClientID:     upper + SuffixOAuthClientID,
		OAuthClientSecret: upper + SuffixOAuthClientSecret,
		AccessToken:       upper + SuffixAccessToken,
		MCPURL:            upper + SuffixMCPURL,
	}
}

// Keys returns the configuration variable names for this identity.
func (id Identity) Keys() Keys {
	return KeysFor(id.Name)
}

// BaseURL is the local listener's base URL.
func (id Identity) BaseURL() string {
	return fmt.Sprintf("http://localhost:%d", id.Port)
}

// CallbackURL is the OAuth redirect URI registered with Linear.
func (id Identity) CallbackURL() string {
	return id.BaseURL() + CallbackPath
}

// AuthURL is where a user starts the interactive flow.
func (id Identity) AuthURL() string {
	return id.BaseURL() + AuthPath
}

// HealthURL is the local health endpoint.
func (id Identity) HealthURL() string {
	return id.BaseURL() + HealthPath
}

// ProxyDir is the directory name the scaffolder creates for this workspace.
func (id Identity) ProxyDir() string {
	return strings.ToLower(id.Name) + ProxyDirSuffix
}
