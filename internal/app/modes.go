package app

import (
	"context"

	"golang.org/x/sync/errgroup"

	"linearproxy/pkg/logging"
)

// runHeadlessMode adopts the preset token, probes the remote server in the
// background and serves stdio. No port is opened.
func runHeadlessMode(ctx context.Context, a *Application) error {
	name := a.workspace.Identity.Name
	logging.Info("Headless", "Running %s workspace in headless mode", name)

	if err := a.manager.AdoptPresetToken(a.workspace.Credentials.PresetToken); err != nil {
		logging.Error("Headless", err, "Failed to adopt preset token")
		return err
	}

	return a.serve(ctx, func(ctx context.Context) error {
		if err := a.manager.ProbeConnection(ctx); err != nil && ctx.Err() == nil {
			logging.Warn("Headless", "Could not reach Linear for %s workspace, retrying on first tool call: %v", name, err)
		}
		return nil
	})
}

// runInteractiveMode binds the callback listener first, so a port conflict
// is reported before the stdio transport starts.
func runInteractiveMode(ctx context.Context, a *Application) error {
	logging.Info("Interactive", "Running %s workspace in interactive mode", a.workspace.Identity.Name)

	if err := a.callback.Listen(); err != nil {
		logging.Error("Interactive", err, "Failed to start callback listener")
		return err
	}
	return a.serve(ctx, a.callback.Serve)
}

// serve runs the stdio transport next to the given companions. When stdin
// closes, the companions are cancelled too.
func (a *Application) serve(ctx context.Context, companions ...func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	for _, companion := range companions {
		g.Go(func() error {
			return companion(gctx)
		})
	}
	g.Go(func() error {
		defer cancel()
		err := a.tools.ServeStdio(gctx, a.stdin, a.stdout)
		logging.Debug("Bootstrap", "stdio transport closed")
		return err
	})
	return g.Wait()
}
