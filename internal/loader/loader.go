package loader

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/specialistvlad/plugtree/internal/config"
	"github.com/specialistvlad/plugtree/internal/ctxlog"
	"github.com/specialistvlad/plugtree/internal/dag"
	"github.com/specialistvlad/plugtree/internal/fsutil"
	"github.com/specialistvlad/plugtree/internal/plugins"
)

// Catalog is the compiled-in side of loading: the modules assemblies name
// and the builder and parser implementations components name.
type Catalog interface {
	HasModule(name string) bool
	NewBuilder(typeName string) (plugins.Builder, error)
	NewParser(typeName string) (plugins.Parser, error)
}

// Options configures a Loader.
type Options struct {
	// ContinueOnError keeps loading siblings after a plugin fails and
	// returns every failure joined, instead of stopping at the first.
	ContinueOnError bool
}

// Loader loads and unloads plugin units into an engine.
type Loader struct {
	engine  *plugins.Engine
	source  config.Source
	catalog Catalog
	opts    Options

	mu     sync.Mutex
	order  []*plugins.Plugin
	failed map[string]bool

	handlersMu sync.RWMutex
	handlers   []EventHandler
}

// New creates a loader.
func New(engine *plugins.Engine, source config.Source, catalog Catalog, opts Options) *Loader {
	return &Loader{
		engine:  engine,
		source:  source,
		catalog: catalog,
		opts:    opts,
		failed:  make(map[string]bool),
	}
}

// Engine returns the engine plugins are loaded into.
func (l *Loader) Engine() *plugins.Engine { return l.engine }

// Loaded returns the loaded plugins in load order.
func (l *Loader) Loaded() []*plugins.Plugin {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*plugins.Plugin, len(l.order))
	copy(out, l.order)
	return out
}

// Load discovers the units under root and loads them. Plugins loaded
// before a failure stay loaded.
func (l *Loader) Load(ctx context.Context, root string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	ctx, logger := ctxlog.With(ctx, "root", root)
	logger.Info("Loading plugins...")
	l.failed = make(map[string]bool)

	var preloaded []*plugins.Plugin
	if err := l.preloadDir(ctx, root, nil, &preloaded); err != nil {
		l.discard(ctx, preloaded)
		return err
	}
	logger.Debug("Preload finished.", "plugins", len(preloaded))

	if err := l.validate(ctx); err != nil {
		l.discard(ctx, preloaded)
		return err
	}

	err := l.loadLevel(ctx, l.engine.Plugins(), map[*plugins.Plugin]bool{})
	// Units that never reached content load are not part of the graph.
	l.discard(ctx, preloaded)
	if err != nil {
		return err
	}

	logger.Info("Plugins loaded.", "count", len(l.order))
	return nil
}

// preloadDir reads the manifests of one directory and recurses into its
// sub-directories. The first master of the directory parents them.
func (l *Loader) preloadDir(ctx context.Context, dir string, parent *plugins.Plugin, out *[]*plugins.Plugin) error {
	logger := ctxlog.FromContext(ctx)

	listing, err := fsutil.ListDir(dir, l.source.Extension())
	if err != nil {
		return err
	}

	var master *plugins.Plugin
	for _, file := range listing.Files {
		m, err := l.source.ReadManifest(ctx, file)
		if err != nil {
			return err
		}
		if existing := l.engine.Find(m.Name); existing != nil {
			return fmt.Errorf("%w: %q (%s and %s)", plugins.ErrDuplicatePlugin, m.Name, existing.FilePath(), file)
		}

		p := plugins.NewPlugin(l.engine, file, m, parent)
		if err := l.siblings(p).Add(p); err != nil {
			return err
		}
		*out = append(*out, p)
		logger.Debug("Preloaded plugin.", "plugin", p.Name(), "path", file, "master", p.IsMaster())

		if master == nil && p.IsMaster() {
			master = p
		}
	}

	nestedParent := parent
	if master != nil {
		nestedParent = master
	}
	for _, sub := range listing.Dirs {
		if err := l.preloadDir(ctx, sub, nestedParent, out); err != nil {
			return err
		}
	}
	return nil
}

// validate checks that every declared dependency exists and that the
// dependency graph is acyclic.
func (l *Loader) validate(ctx context.Context) error {
	g := dag.New()
	var errs []error

	l.engine.Walk(func(p *plugins.Plugin) bool {
		g.AddNode(p.Name())
		return true
	})
	l.engine.Walk(func(p *plugins.Plugin) bool {
		for _, d := range p.Manifest().Dependencies {
			if d.Name == p.Name() {
				errs = append(errs, fmt.Errorf("%w: %s -> %s", ErrCircularDependency, p.Name(), p.Name()))
				continue
			}
			if !g.Has(d.Name) {
				errs = append(errs, &PluginError{
					Plugin: p.Name(),
					Path:   p.FilePath(),
					Err:    fmt.Errorf("%w: %q", ErrDependencyNotFound, d.Name),
				})
				continue
			}
			if err := g.AddEdge(d.Name, p.Name()); err != nil {
				errs = append(errs, err)
			}
		}
		return true
	})
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	if err := g.DetectCycles(); err != nil {
		var cycle *dag.CycleError
		if errors.As(err, &cycle) {
			return fmt.Errorf("%w: %s", ErrCircularDependency, strings.Join(cycle.Path, " -> "))
		}
		return err
	}
	ctxlog.FromContext(ctx).Debug("Plugin dependencies validated.")
	return nil
}

// siblings returns the collection p belongs to.
func (l *Loader) siblings(p *plugins.Plugin) *plugins.Collection {
	if parent := p.Parent(); parent != nil {
		return parent.Children()
	}
	return l.engine.Plugins()
}

// discard detaches preloaded plugins whose content was never loaded.
func (l *Loader) discard(ctx context.Context, ps []*plugins.Plugin) {
	for _, p := range ps {
		if p.Status() != plugins.StatusNone {
			continue
		}
		l.siblings(p).Remove(p)
		ctxlog.FromContext(ctx).Debug("Discarded preloaded plugin.", "plugin", p.Name())
	}
}
