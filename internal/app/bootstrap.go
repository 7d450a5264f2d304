package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"linearproxy/internal/mcpserver"
	"linearproxy/internal/oauth"
	"linearproxy/internal/server"
	"linearproxy/internal/tools"
	"linearproxy/internal/workspace"
	"linearproxy/pkg/logging"
)

// DefaultVersion is advertised when no build version is set.
const DefaultVersion = "dev"

// Application wires one workspace proxy together and runs it.
//
// The Application follows a two-phase initialization pattern:
//  1. Bootstrap phase: resolve the workspace, build the auth state machine,
//     the executor and the MCP tool server
//  2. Execution phase: serve stdio, plus the callback listener in
//     interactive mode
//
// Example usage:
//
//	cfg := app.NewConfig("Acme", "", false, "remote", false)
//	application, err := app.NewApplication(cfg)
//	if err != nil {
//	    return err
//	}
//	return application.Run(ctx)
type Application struct {
	config    *Config
	workspace *workspace.Config
	executor  mcpserver.Executor
	manager   *oauth.Manager
	tools     *tools.Server
	callback  *server.CallbackServer

	stdin  io.Reader
	stdout io.Writer
}

// NewApplication performs the bootstrap sequence:
//
//  1. Configures logging based on the debug flag
//  2. Resolves the workspace configuration from the environment
//  3. Creates the executor, the auth manager and the tool server
//
// Configuration errors are returned as *workspace.ConfigError and nothing
// has been started when they occur.
func NewApplication(cfg *Config) (*Application, error) {
	appLogLevel := logging.LevelInfo
	if cfg.LogLevel != "" {
		appLogLevel = logging.ParseLevel(cfg.LogLevel)
	}
	if cfg.Debug {
		appLogLevel = logging.LevelDebug
	}
	logging.Init(appLogLevel, cfg.LogOutput)

	lookup, err := buildLookup(cfg)
	if err != nil {
		return nil, err
	}

	wsCfg, err := workspace.Resolve(cfg.WorkspaceName, lookup, workspace.WithHeadless(cfg.Headless))
	if err != nil {
		return nil, err
	}
	id := wsCfg.Identity

	version := cfg.Version
	if version == "" {
		version = DefaultVersion
	}

	executor, err := mcpserver.NewExecutor(cfg.Executor, mcpserver.ExecutorConfig{
		Workspace: id.Name,
		URL:       remoteURL(cfg.Executor, wsCfg.MCPURL),
		Version:   version,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create executor: %w", err)
	}

	manager := oauth.NewManager(id, wsCfg.Credentials, oauth.WithConnector(executor))
	names := tools.NewNameTracker(id.ToolPrefix, tools.DefaultCatalog)
	dispatcher := tools.NewDispatcher(id, names, manager, executor)

	application := &Application{
		config:    cfg,
		workspace: wsCfg,
		executor:  executor,
		manager:   manager,
		tools:     tools.NewServer(id, tools.DefaultCatalog, dispatcher, version),
		stdin:     cfg.Stdin,
		stdout:    cfg.Stdout,
	}
	if application.stdin == nil {
		application.stdin = os.Stdin
	}
	if application.stdout == nil {
		application.stdout = os.Stdout
	}

	if wsCfg.Mode == workspace.ModeInteractive {
		var opts []server.Option
		if cfg.ListenAddr != "" {
			opts = append(opts, server.WithListenAddr(cfg.ListenAddr))
		}
		application.callback = server.NewCallbackServer(manager, opts...)
	}

	logging.Info("Bootstrap", "Configured %s workspace (mode=%s, port=%d, executor=%s)",
		id.Name, wsCfg.Mode, id.Port, executorName(cfg.Executor))
	return application, nil
}

// remoteURL switches the default endpoint to /sse for the SSE executor.
// An explicit <WS>_MCP_URL is used as given.
func remoteURL(kind mcpserver.ExecutorKind, url string) string {
	if kind == mcpserver.ExecutorSSE && url == workspace.DefaultMCPURL {
		return workspace.DefaultSSEURL
	}
	return url
}

func buildLookup(cfg *Config) (workspace.LookupFunc, error) {
	if cfg.EnvFile == "" {
		return cfg.Lookup, nil
	}
	if cfg.Lookup == nil {
		lookup, err := workspace.LoadEnvFile(cfg.EnvFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
		return lookup, nil
	}
	fileLookup, err := workspace.ReadEnvFile(cfg.EnvFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}
	return workspace.Layered(cfg.Lookup, fileLookup), nil
}

func executorName(kind mcpserver.ExecutorKind) mcpserver.ExecutorKind {
	if kind == "" {
		return mcpserver.ExecutorRemote
	}
	return kind
}

// Workspace returns the resolved workspace configuration.
func (a *Application) Workspace() *workspace.Config {
	return a.workspace
}

// Manager returns the workspace's auth state machine.
func (a *Application) Manager() *oauth.Manager {
	return a.manager
}

// Run serves until ctx is cancelled, SIGINT/SIGTERM arrives or stdin closes.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer a.shutdown()

	if a.workspace.Mode == workspace.ModeHeadless {
		return runHeadlessMode(ctx, a)
	}
	return runInteractiveMode(ctx, a)
}

func (a *Application) shutdown() {
	if err := a.executor.Close(); err != nil {
		logging.Warn("Bootstrap", "Failed to close executor: %v", err)
	}
	logging.Info("Bootstrap", "%s workspace proxy stopped", a.workspace.Identity.Name)
}
