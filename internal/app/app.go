package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/specialistvlad/plugtree/internal/ctxlog"
	phcl "github.com/specialistvlad/plugtree/internal/hcl"
	"github.com/specialistvlad/plugtree/internal/loader"
	"github.com/specialistvlad/plugtree/internal/plugins"
	"github.com/specialistvlad/plugtree/internal/registry"
	"github.com/specialistvlad/plugtree/internal/services"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
// It is the ambient application constructs see: a name and the root
// service container.
type App struct {
	ctx        context.Context
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	registry   *registry.Registry
	services   *services.Container
	engine     *plugins.Engine
	loader     *loader.Loader
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// Invalid type registrations are programmer errors and panic.
func NewApp(outW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	reg.Use(modules...)
	logger.Debug("All Go modules registered.", "count", len(modules))

	if err := reg.ValidateRegistry(ctx); err != nil {
		panic(err)
	}

	a := &App{
		ctx:      ctx,
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: reg,
		services: services.New(nil),
	}
	a.services.Register("logger", logger)

	a.engine = plugins.NewEngine(plugins.EngineOptions{
		Types:       reg,
		Converter:   phcl.NewConverter(),
		Application: a,
	})
	a.loader = loader.New(a.engine, phcl.NewSource(), reg, loader.Options{
		ContinueOnError: cfg.ContinueOnError,
	})
	a.loader.Subscribe(func(ev loader.Event) {
		logger.Debug("Plugin event.", "event", ev.Kind.String(), "plugin", ev.Plugin)
	})
	return a
}

// Name implements plugins.Application.
func (a *App) Name() string { return "plugtree" }

// Services implements plugins.Scope.
func (a *App) Services() services.Locator { return a.services }

// Container returns the root service container for registrations.
func (a *App) Container() *services.Container { return a.services }

// Context returns a background context carrying the app's logger.
func (a *App) Context() context.Context { return a.ctx }

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry { return a.registry }

// Engine returns the plugin engine.
func (a *App) Engine() *plugins.Engine { return a.engine }

// Tree returns the node tree.
func (a *App) Tree() *plugins.Tree { return a.engine.Tree() }

// Loader returns the plugin loader.
func (a *App) Loader() *loader.Loader { return a.loader }

// Load loads the configured plugin directory.
func (a *App) Load(ctx context.Context) error {
	return a.loader.Load(ctxlog.WithLogger(ctx, a.logger), a.config.PluginsPath)
}

// Unwrap materializes the value at path with Auto.
func (a *App) Unwrap(ctx context.Context, path string) (any, error) {
	return a.Tree().Unwrap(ctxlog.WithLogger(ctx, a.logger), path, plugins.Auto)
}

// Close unloads every plugin.
func (a *App) Close(ctx context.Context) error {
	return a.loader.UnloadAll(ctxlog.WithLogger(ctx, a.logger))
}
