package loader

import (
	"context"
	"errors"

	"github.com/specialistvlad/plugtree/internal/ctxlog"
	"github.com/specialistvlad/plugtree/internal/plugins"
)

// Unload unloads p: its children, then the plugins depending on it, then
// its own constructs. Plugins that are not loaded are skipped.
func (l *Loader) Unload(ctx context.Context, p *plugins.Plugin) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.unload(ctx, p)
}

// UnloadAll unloads every plugin in reverse load order.
func (l *Loader) UnloadAll(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var errs []error
	for len(l.order) > 0 {
		p := l.order[len(l.order)-1]
		if err := l.unload(ctx, p); err != nil {
			errs = append(errs, err)
		}
		l.forget(p)
	}
	return errors.Join(errs...)
}

func (l *Loader) unload(ctx context.Context, p *plugins.Plugin) error {
	if p.Status() != plugins.StatusLoaded {
		return nil
	}
	ctx, logger := ctxlog.With(ctx, "plugin", p.Name())
	logger.Debug("Unloading plugin.")
	p.SetStatus(plugins.StatusUnloading)

	var errs []error
	children := p.Children().All()
	for i := len(children) - 1; i >= 0; i-- {
		if err := l.unload(ctx, children[i]); err != nil {
			errs = append(errs, err)
		}
	}
	for _, slave := range p.Slaves() {
		if err := l.unload(ctx, slave); err != nil {
			errs = append(errs, err)
		}
	}

	builtins := p.Builtins()
	for i := len(builtins) - 1; i >= 0; i-- {
		if err := builtins[i].Destroy(ctx); err != nil {
			logger.Warn("Construct destroy failed.", "path", builtins[i].Path(), "error", err)
			errs = append(errs, err)
		}
	}
	l.unmountConstructs(ctx, p)
	p.ReleaseRegistries()
	p.SetStatus(plugins.StatusUnloaded)
	l.siblings(p).Remove(p)
	l.forget(p)

	logger.Info("Plugin unloaded.")
	l.emit(Event{Kind: EventUnloaded, Plugin: p.Name(), Path: p.FilePath()})
	return errors.Join(errs...)
}

func (l *Loader) forget(p *plugins.Plugin) {
	for i, loaded := range l.order {
		if loaded == p {
			l.order = append(l.order[:i], l.order[i+1:]...)
			return
		}
	}
}
