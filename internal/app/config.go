package app

import (
	"io"

	"linearproxy/internal/mcpserver"
	"linearproxy/internal/workspace"
)

// Config holds the application configuration
type Config struct {
	// WorkspaceName is the positional workspace argument; empty falls back
	// to WORKSPACE_NAME.
	WorkspaceName string

	// EnvFile is an optional .env file layered under the process environment
	EnvFile string

	// Headless forces headless mode regardless of HEADLESS_MODE
	Headless bool

	// Executor selects how tool calls reach Linear
	Executor mcpserver.ExecutorKind

	// Debug settings
	Debug bool

	// LogLevel is "debug", "info", "warn" or "error". Debug overrides it.
	LogLevel string

	// Version is advertised to MCP peers
	Version string

	// Lookup overrides the process environment. Nil means os.LookupEnv.
	Lookup workspace.LookupFunc

	// Stdio streams. Nil means os.Stdin and os.Stdout.
	Stdin  io.Reader
	Stdout io.Writer

	// LogOutput receives log lines. Nil means stderr.
	LogOutput io.Writer

	// ListenAddr overrides the callback listener address
	ListenAddr string
}

// NewConfig creates a new application configuration
func NewConfig(workspaceName, envFile string, headless bool, executor string, debug bool) *Config {
	return &Config{
		WorkspaceName: workspaceName,
		EnvFile:       envFile,
		Headless:      headless,
		Executor:      mcpserver.ExecutorKind(executor),
		Debug:         debug,
	}
}
