package workspace

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"linearproxy/pkg/logging"
)

const (
	// WorkspaceNameVar supplies the workspace name when no argument is given.
	WorkspaceNameVar = "WORKSPACE_NAME"

	// HeadlessModeVar selects headless mode when it parses as true.
	HeadlessModeVar = "HEADLESS_MODE"

	// DefaultMCPURL is Linear's remote MCP endpoint.
	DefaultMCPURL = "https://mcp.linear.app/mcp"

	// DefaultSSEURL is the same server over the SSE transport.
	DefaultSSEURL = "https://mcp.linear.app/sse"
)

// Mode selects how the proxy obtains its access token.
type Mode string

const (
	// ModeInteractive runs the browser OAuth flow through the local listener.
	ModeInteractive Mode = "interactive"
	// ModeHeadless adopts a pre-provisioned token and serves no HTTP surface.
	ModeHeadless Mode = "headless"
)

// LookupFunc reads one configuration variable. It has the shape of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// EnvLookup reads from the process environment.
func EnvLookup() LookupFunc {
	return os.LookupEnv
}

// Layered returns a LookupFunc that consults each lookup in order and returns
// the first non-empty value.
func Layered(lookups ...LookupFunc) LookupFunc {
	return func(key string) (string, bool) {
		for _, lookup := range lookups {
			if lookup == nil {
				continue
			}
			if v, ok := lookup(key); ok && v != "" {
				return v, true
			}
		}
		return "", false
	}
}

// Credentials are the OAuth client credentials and optional preset token.
type Credentials struct {
	ClientID     string
	ClientSecret string
	PresetToken  string
}

// String never includes the secret or the token.
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{ClientID: %q, ClientSecret: %s, PresetToken: %s}",
		c.ClientID, mask(c.ClientSecret), mask(c.PresetToken))
}

func mask(v string) string {
	if v == "" {
		return "<unset>"
	}
	return "[REDACTED]"
}

// Config is the fully resolved startup configuration for one workspace.
type Config struct {
	Identity    Identity
	Credentials Credentials
	Mode        Mode
	MCPURL      string
}

// Option adjusts resolution.
type Option func(*resolveOptions)

type resolveOptions struct {
	forceHeadless bool
}

// WithHeadless forces headless mode regardless of HEADLESS_MODE.
func WithHeadless(force bool) Option {
	return func(o *resolveOptions) {
		o.forceHeadless = o.forceHeadless || force
	}
}

// Resolve computes the workspace configuration from name and lookup.
// An empty name falls back to WORKSPACE_NAME. Every returned error is a
// *ConfigError, and nothing is started before Resolve succeeds.
func Resolve(name string, lookup LookupFunc, opts ...Option) (*Config, error) {
	if lookup == nil {
		lookup = EnvLookup()
	}
	var o resolveOptions
	for _, opt := range opts {
		opt(&o)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name, _ = get(lookup, WorkspaceNameVar)
	}
	if name == "" {
		return nil, newMissingNameError()
	}
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	keys := KeysFor(name)

	port := DefaultPort
	if raw, ok := get(lookup, keys.Port); ok {
		p, err := strconv.Atoi(raw)
		if err != nil || p < 1 || p > 65535 {
			return nil, newInvalidPortError(name, keys.Port, raw)
		}
		port = p
	}

	mode := ModeInteractive
	if raw, ok := get(lookup, HeadlessModeVar); ok {
		headless, err := strconv.ParseBool(raw)
		if err != nil {
			logging.Warn("Config", "Ignoring unparseable %s=%q, defaulting to interactive mode", HeadlessModeVar, raw)
		}
		if headless {
			mode = ModeHeadless
		}
	}
	if o.forceHeadless {
		mode = ModeHeadless
	}

	creds := Credentials{}
	creds.ClientID, _ = get(lookup, keys.OAuthClientID)
	creds.ClientSecret, _ = get(lookup, keys.OAuthClientSecret)
	creds.PresetToken, _ = get(lookup, keys.AccessToken)

	mcpURL, ok := get(lookup, keys.MCPURL)
	if !ok {
		mcpURL = DefaultMCPURL
	}

	switch mode {
	case ModeHeadless:
		if creds.PresetToken == "" {
			return nil, newMissingTokenError(name, keys.AccessToken)
		}
	case ModeInteractive:
		var missing []string
		if creds.ClientID == "" {
			missing = append(missing, keys.OAuthClientID)
		}
		if creds.ClientSecret == "" {
			missing = append(missing, keys.OAuthClientSecret)
		}
		if len(missing) > 0 {
			return nil, newMissingVariablesError(name, missing)
		}
		if creds.PresetToken != "" {
			logging.Warn("Config", "%s is set but ignored in interactive mode; set %s=true to use it", keys.AccessToken, HeadlessModeVar)
			creds.PresetToken = ""
		}
	}

	return &Config{
		Identity:    NewIdentity(name, port),
		Credentials: creds,
		Mode:        mode,
		MCPURL:      mcpURL,
	}, nil
}

func get(lookup LookupFunc, key string) (string, bool) {
	v, ok := lookup(key)
	v = strings.TrimSpace(v)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
