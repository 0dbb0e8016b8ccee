package loader

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/plugtree/internal/config"
	"github.com/specialistvlad/plugtree/internal/ctxlog"
	"github.com/specialistvlad/plugtree/internal/plugins"
)

// loadLevel loads one collection: visible plugins (dependencies first),
// then the children of those that loaded, then hidden plugins.
func (l *Loader) loadLevel(ctx context.Context, level *plugins.Collection, onStack map[*plugins.Plugin]bool) error {
	var errs []error
	collect := func(err error) bool {
		if err == nil {
			return true
		}
		errs = append(errs, err)
		return l.opts.ContinueOnError
	}

	for _, p := range level.All() {
		if p.Hidden() || p.Status() == plugins.StatusUnloaded {
			continue
		}
		if !collect(l.loadWithDependencies(ctx, p, onStack)) {
			return errors.Join(errs...)
		}
	}
	for _, p := range level.All() {
		if p.Hidden() || p.Status() != plugins.StatusLoaded {
			continue
		}
		if !collect(l.loadLevel(ctx, p.Children(), onStack)) {
			return errors.Join(errs...)
		}
	}
	for _, p := range level.All() {
		if !p.Hidden() || p.Status() == plugins.StatusUnloaded {
			continue
		}
		if !collect(l.loadWithDependencies(ctx, p, onStack)) {
			return errors.Join(errs...)
		}
		if p.Status() == plugins.StatusLoaded {
			if !collect(l.loadLevel(ctx, p.Children(), onStack)) {
				return errors.Join(errs...)
			}
		}
	}
	return errors.Join(errs...)
}

// loadWithDependencies loads p after its declared dependencies. onStack
// holds the plugins whose dependencies are being loaded.
func (l *Loader) loadWithDependencies(ctx context.Context, p *plugins.Plugin, onStack map[*plugins.Plugin]bool) error {
	switch p.Status() {
	case plugins.StatusLoaded:
		return nil
	case plugins.StatusUnloaded:
		return &PluginError{Plugin: p.Name(), Path: p.FilePath(), Err: errors.New("plugin failed to load")}
	}
	if onStack[p] {
		return fmt.Errorf("%w: %s", ErrCircularDependency, p.Name())
	}
	onStack[p] = true
	defer delete(onStack, p)

	for _, d := range p.Manifest().Dependencies {
		dep := d.Resolve(l.engine)
		if dep == nil {
			err := fmt.Errorf("%w: %q", ErrDependencyNotFound, d.Name)
			if l.failed[d.Name] {
				err = fmt.Errorf("%w: %q", ErrDependencyFailed, d.Name)
			}
			l.fail(ctx, p, err)
			return &PluginError{Plugin: p.Name(), Path: p.FilePath(), Err: err}
		}
		if err := l.loadWithDependencies(ctx, dep, onStack); err != nil {
			if errors.Is(err, ErrCircularDependency) {
				l.fail(ctx, p, err)
				return err
			}
			depErr := fmt.Errorf("%w: %q", ErrDependencyFailed, d.Name)
			l.fail(ctx, p, depErr)
			return errors.Join(err, &PluginError{Plugin: p.Name(), Path: p.FilePath(), Err: depErr})
		}
	}
	return l.loadPlugin(ctx, p)
}

// loadPlugin reads the unit's content, registers its builders and parsers,
// and mounts its constructs.
func (l *Loader) loadPlugin(ctx context.Context, p *plugins.Plugin) error {
	ctx, logger := ctxlog.With(ctx, "plugin", p.Name())
	logger.Debug("Loading plugin content.", "path", p.FilePath())
	p.SetStatus(plugins.StatusLoading)

	if err := l.loadContent(ctx, p); err != nil {
		l.fail(ctx, p, err)
		return &PluginError{Plugin: p.Name(), Path: p.FilePath(), Err: err}
	}

	p.SetStatus(plugins.StatusLoaded)
	l.order = append(l.order, p)
	logger.Info("Plugin loaded.", "constructs", len(p.Builtins()), "master", p.IsMaster())
	l.emit(Event{Kind: EventLoaded, Plugin: p.Name(), Path: p.FilePath()})
	return nil
}

func (l *Loader) loadContent(ctx context.Context, p *plugins.Plugin) error {
	for _, a := range p.Manifest().Assemblies {
		if l.catalog.HasModule(a.Name) {
			continue
		}
		if a.Optional {
			ctxlog.FromContext(ctx).Warn("Optional assembly is not available.", "assembly", a.Name)
			continue
		}
		return fmt.Errorf("%w: %q", ErrAssemblyNotFound, a.Name)
	}

	unit, err := l.source.ReadUnit(ctx, p.FilePath())
	if err != nil {
		return err
	}

	for _, c := range unit.Builders {
		b, err := l.catalog.NewBuilder(componentType(c))
		if err != nil {
			return fmt.Errorf("builder %q: %w", c.Name, err)
		}
		p.RegisterBuilder(c.Name, b)
	}
	for _, c := range unit.Parsers {
		parser, err := l.catalog.NewParser(componentType(c))
		if err != nil {
			return fmt.Errorf("parser %q: %w", c.Name, err)
		}
		p.RegisterParser(c.Name, parser)
	}

	tree := l.engine.Tree()
	for _, decl := range unit.Constructs {
		b := plugins.NewBuiltin(p, decl)
		if _, err := tree.MountConstruct(ctx, decl.Path, b); err != nil {
			return err
		}
		p.AddBuiltin(b)
	}
	return nil
}

// componentType is the catalog name a component refers to; it defaults to
// the component's own name.
func componentType(c *config.Component) string {
	if c.Type != "" {
		return c.Type
	}
	return c.Name
}

// fail rolls back a plugin whose content load failed.
func (l *Loader) fail(ctx context.Context, p *plugins.Plugin, err error) {
	logger := ctxlog.FromContext(ctx)
	logger.Error("Plugin failed to load.", "plugin", p.Name(), "error", err)

	l.unmountConstructs(ctx, p)
	p.ReleaseRegistries()
	p.SetStatus(plugins.StatusUnloaded)
	l.siblings(p).Remove(p)
	l.failed[p.Name()] = true
	l.emit(Event{Kind: EventFailed, Plugin: p.Name(), Path: p.FilePath(), Err: err})
}

// unmountConstructs unmounts p's constructs, children before parents.
func (l *Loader) unmountConstructs(ctx context.Context, p *plugins.Plugin) {
	tree := l.engine.Tree()
	builtins := p.Builtins()
	for i := len(builtins) - 1; i >= 0; i-- {
		if n := builtins[i].Node(); n != nil && n.Builtin() == builtins[i] {
			tree.UnmountNode(ctx, n)
		}
	}
	p.ClearBuiltins()
}
