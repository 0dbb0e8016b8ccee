package plugins

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/specialistvlad/plugtree/internal/config"
)

// Status is the lifecycle state of a plugin.
type Status int32

const (
	StatusNone Status = iota
	StatusLoading
	StatusLoaded
	StatusUnloading
	StatusUnloaded
)

func (s Status) String() string {
	switch s {
	case StatusNone:
		return "none"
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusUnloading:
		return "unloading"
	case StatusUnloaded:
		return "unloaded"
	}
	return fmt.Sprintf("Status(%d)", int32(s))
}

// Dependency is a declared dependency name and, once resolved, the plugin
// it names. Resolution is a name search across the whole graph.
type Dependency struct {
	Name   string
	plugin atomic.Pointer[Plugin]
}

// Plugin returns the resolved plugin, or nil.
func (d *Dependency) Plugin() *Plugin { return d.plugin.Load() }

// Resolve looks the dependency up in e unless it is already resolved.
func (d *Dependency) Resolve(e *Engine) *Plugin {
	if p := d.plugin.Load(); p != nil && p.Status() != StatusUnloaded {
		return p
	}
	p := e.Find(d.Name)
	d.plugin.Store(p)
	return p
}

// Manifest is the plugin's declared metadata.
type Manifest struct {
	Name         string
	Author       string
	Version      string
	Description  string
	Dependencies []*Dependency
	Assemblies   []*config.Assembly
}

// Plugin is one loaded unit of the plugin graph.
type Plugin struct {
	engine   *Engine
	filePath string
	hidden   bool
	manifest *Manifest
	parent   *Plugin
	children *Collection
	status   atomic.Int32

	mu       sync.RWMutex
	builtins []*Builtin
	builders map[string]Builder
	parsers  map[string]Parser
}

// NewPlugin creates a plugin shell from a preloaded manifest. It is not
// added to any collection.
func NewPlugin(e *Engine, filePath string, m *config.Manifest, parent *Plugin) *Plugin {
	manifest := &Manifest{
		Name:        m.Name,
		Author:      m.Author,
		Version:     m.Version,
		Description: m.Description,
		Assemblies:  m.Assemblies,
	}
	for _, name := range m.Dependencies {
		manifest.Dependencies = append(manifest.Dependencies, &Dependency{Name: name})
	}
	return &Plugin{
		engine:   e,
		filePath: filePath,
		hidden:   m.Hidden,
		manifest: manifest,
		parent:   parent,
		children: NewCollection(),
		builders: make(map[string]Builder),
		parsers:  make(map[string]Parser),
	}
}

// Name returns the plugin's name.
func (p *Plugin) Name() string { return p.manifest.Name }

// FilePath returns the declaration source path.
func (p *Plugin) FilePath() string { return p.filePath }

// Hidden reports whether the plugin is hidden.
func (p *Plugin) Hidden() bool { return p.hidden }

// Manifest returns the plugin's manifest.
func (p *Plugin) Manifest() *Manifest { return p.manifest }

// Engine returns the engine the plugin belongs to.
func (p *Plugin) Engine() *Engine { return p.engine }

// Parent returns the structural parent, or nil for top-level plugins.
func (p *Plugin) Parent() *Plugin { return p.parent }

// Children returns the structurally nested plugins.
func (p *Plugin) Children() *Collection { return p.children }

// Status returns the lifecycle state.
func (p *Plugin) Status() Status { return Status(p.status.Load()) }

// SetStatus sets the lifecycle state.
func (p *Plugin) SetStatus(s Status) { p.status.Store(int32(s)) }

// IsMaster reports whether the plugin is not hidden and has no declared
// dependencies.
func (p *Plugin) IsMaster() bool {
	return !p.hidden && len(p.manifest.Dependencies) == 0
}

// IsSlave reports whether the plugin is hidden or has declared dependencies.
func (p *Plugin) IsSlave() bool {
	return p.hidden || len(p.manifest.Dependencies) > 0
}

// Dependencies resolves and returns the declared dependencies in order.
// Unresolvable names are skipped.
func (p *Plugin) Dependencies() []*Plugin {
	out := make([]*Plugin, 0, len(p.manifest.Dependencies))
	for _, d := range p.manifest.Dependencies {
		if dep := d.Resolve(p.engine); dep != nil {
			out = append(out, dep)
		}
	}
	return out
}

// Slaves returns the plugins declaring a dependency on p.
func (p *Plugin) Slaves() []*Plugin {
	return p.engine.Slaves(p)
}

// AddBuiltin registers a construct owned by the plugin.
func (p *Plugin) AddBuiltin(b *Builtin) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.builtins = append(p.builtins, b)
}

// Builtins returns a snapshot of the plugin's constructs.
func (p *Plugin) Builtins() []*Builtin {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*Builtin, len(p.builtins))
	copy(out, p.builtins)
	return out
}

// ClearBuiltins drops every construct reference.
func (p *Plugin) ClearBuiltins() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.builtins = nil
}

// RegisterBuilder binds a scheme to a builder in the plugin's own registry.
// A later registration of the same scheme replaces the earlier one.
func (p *Plugin) RegisterBuilder(scheme string, b Builder) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.builders[scheme] = b
}

// RegisterParser binds a name to a parser in the plugin's own registry.
func (p *Plugin) RegisterParser(name string, parser Parser) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.parsers[name] = parser
}

// ReleaseRegistries empties the builder and parser registries.
func (p *Plugin) ReleaseRegistries() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.builders = make(map[string]Builder)
	p.parsers = make(map[string]Parser)
}

func (p *Plugin) localBuilder(name string) (Builder, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	b, ok := p.builders[name]
	return b, ok
}

func (p *Plugin) localParser(name string) (Parser, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	parser, ok := p.parsers[name]
	return parser, ok
}

func (p *Plugin) String() string {
	return p.Name()
}
