package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/plugtree/internal/ctxlog"
)

// Run loads the plugin directory, prints what the configuration asks for
// and unloads everything again.
func (a *App) Run(ctx context.Context) (err error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	a.healthCheckServer()
	defer func() {
		err = errors.Join(err, a.closeHealthCheckServer())
	}()

	if err := a.Load(ctx); err != nil {
		return fmt.Errorf("failed to load plugins: %w", err)
	}
	defer func() {
		if cerr := a.Close(ctx); cerr != nil {
			err = errors.Join(err, fmt.Errorf("failed to unload plugins: %w", cerr))
		}
	}()
	a.logger.Info("Plugins ready.", "loaded", len(a.loader.Loaded()), "modules", a.registry.Modules())

	if a.config.PrintTree {
		if err := WriteTree(a.outW, a.Tree()); err != nil {
			return err
		}
	}

	for _, path := range a.config.Unwrap {
		v, err := a.Unwrap(ctx, path)
		if err != nil {
			return fmt.Errorf("failed to unwrap %s: %w", path, err)
		}
		fmt.Fprintf(a.outW, "%s = %s\n", path, describe(v))
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}
