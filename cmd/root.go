package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"linearproxy/internal/app"
	"linearproxy/internal/mcpserver"
	"linearproxy/internal/workspace"
	"linearproxy/pkg/logging"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a configuration or general error.
	ExitCodeError = 1
)

// appVersion is injected from main at build time.
var appVersion = "dev"

// SetVersion sets the version reported by the CLI and advertised to MCP peers.
func SetVersion(v string) {
	appVersion = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return appVersion
}

// rootOptions holds the flags of the proxy command itself.
type rootOptions struct {
	envFile  string
	headless bool
	executor string
	logLevel string
	debug    bool
}

// newRootCmd builds the command tree. The root command runs the proxy for
// one workspace; setup, check and version are subcommands.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "linear-proxy [flags] [WorkspaceName]",
		Short: "Per-workspace Linear MCP proxy",
		Long: `linear-proxy exposes one Linear workspace to an AI assistant over MCP stdio.

Every tool is registered as <WorkspaceName>Linear_<operation>, so several
workspaces can be used side by side. Calls are forwarded to Linear's MCP
server with the workspace's OAuth token.

Modes:
  interactive (default)  serves /auth, /oauth/callback and /health on
                         localhost:<NAME>_PORT and waits for the browser flow
  headless               adopts <NAME>_ACCESS_TOKEN and opens no port

Configuration (NAME is the upper-cased workspace name):
  WORKSPACE_NAME             used when no argument is given
  <NAME>_PORT                local listener port (default 3000)
  <NAME>_OAUTH_CLIENT_ID     OAuth client id (interactive)
  <NAME>_OAUTH_CLIENT_SECRET OAuth client secret (interactive)
  <NAME>_ACCESS_TOKEN        pre-provisioned token (headless)
  <NAME>_MCP_URL             remote MCP endpoint (default https://mcp.linear.app/mcp)
  HEADLESS_MODE              true selects headless mode

Logs are written to stderr; stdout carries the MCP stream.`,
		Args: cobra.MaximumNArgs(1),
		// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
		SilenceUsage: true,
		// Errors are printed by Execute so configuration errors can be rendered in full.
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProxy(cmd, args, opts)
		},
	}

	rootCmd.Version = appVersion
	rootCmd.SetVersionTemplate(`{{printf "linear-proxy version %s\n" .Version}}`)

	rootCmd.Flags().StringVar(&opts.envFile, "env-file", "", "Load workspace variables from a .env file (process environment wins)")
	rootCmd.Flags().BoolVar(&opts.headless, "headless", false, "Adopt <NAME>_ACCESS_TOKEN and skip the OAuth listener")
	rootCmd.Flags().StringVar(&opts.executor, "executor", string(mcpserver.ExecutorRemote), "How tool calls are executed: remote, sse or echo")
	rootCmd.Flags().StringVar(&opts.logLevel, "log-level", "info", "Proxy log level: debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(newSetupCmd(&opts.debug))
	rootCmd.AddCommand(newCheckCmd(&opts.debug))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func runProxy(cmd *cobra.Command, args []string, opts *rootOptions) error {
	var name string
	if len(args) == 1 {
		name = args[0]
	}

	cfg := app.NewConfig(name, opts.envFile, opts.headless, opts.executor, opts.debug)
	cfg.Version = appVersion
	cfg.LogLevel = opts.logLevel
	cfg.LogOutput = cmd.ErrOrStderr()

	application, err := app.NewApplication(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return application.Run(ctx)
}

// initCommandLogging sets up stderr logging for the auxiliary subcommands,
// which only log warnings unless --debug is given.
func initCommandLogging(cmd *cobra.Command, debug bool) {
	level := logging.LevelWarn
	if debug {
		level = logging.LevelDebug
	}
	logging.Init(level, cmd.ErrOrStderr())
}

// Execute is the main entry point for the CLI application. It is called by main.main().
func Execute() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

func execute(args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.Execute(); err != nil {
		printError(stderr, err)
		return getExitCode(err)
	}
	return ExitCodeSuccess
}

// printError renders configuration errors with the variables to set.
func printError(w io.Writer, err error) {
	var configErr *workspace.ConfigError
	if errors.As(err, &configErr) {
		fmt.Fprintln(w, configErr.DetailedError())
		return
	}
	if errors.Is(err, errNotReady) {
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}

// getExitCode determines the exit code for an error returned by a command.
func getExitCode(err error) int {
	if err == nil {
		return ExitCodeSuccess
	}
	return ExitCodeError
}
