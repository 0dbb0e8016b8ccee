package registry

import (
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"sync"

	"github.com/specialistvlad/plugtree/internal/plugins"
)

// Module is the interface that all compiled-in modules implement to be
// registered.
type Module interface {
	// Name is the assembly name declaration files reference.
	Name() string
	Register(r *Registry)
}

// BuilderFactory creates a builder instance for one plugin registration.
type BuilderFactory func() plugins.Builder

// ParserFactory creates a parser instance for one plugin registration.
type ParserFactory func() plugins.Parser

// Registry holds everything compiled-in modules contribute. It implements
// plugins.Types.
type Registry struct {
	mu       sync.RWMutex
	modules  map[string]struct{}
	builders map[string]BuilderFactory
	parsers  map[string]ParserFactory
	types    map[string]*plugins.TypeSpec
	goTypes  map[reflect.Type]*plugins.TypeSpec
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		modules:  make(map[string]struct{}),
		builders: make(map[string]BuilderFactory),
		parsers:  make(map[string]ParserFactory),
		types:    make(map[string]*plugins.TypeSpec),
		goTypes:  make(map[reflect.Type]*plugins.TypeSpec),
	}
}

// Use registers modules and records their assembly names.
func (r *Registry) Use(modules ...Module) {
	for _, m := range modules {
		r.mu.Lock()
		if _, exists := r.modules[m.Name()]; exists {
			r.mu.Unlock()
			panic(fmt.Sprintf("module '%s' already registered", m.Name()))
		}
		r.modules[m.Name()] = struct{}{}
		r.mu.Unlock()

		slog.Debug("Registering module.", "module", m.Name())
		m.Register(r)
	}
}

// HasModule reports whether an assembly name is available.
func (r *Registry) HasModule(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.modules[name]
	return ok
}

// Modules returns the registered assembly names, sorted.
func (r *Registry) Modules() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.modules))
	for name := range r.modules {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// RegisterBuilder registers a builder factory under a catalog type name.
func (r *Registry) RegisterBuilder(typeName string, f BuilderFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.builders[typeName]; exists {
		panic(fmt.Sprintf("builder with type '%s' already registered", typeName))
	}
	slog.Debug("Registering builder.", "type", typeName)
	r.builders[typeName] = f
}

// RegisterParser registers a parser factory under a catalog type name.
func (r *Registry) RegisterParser(typeName string, f ParserFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.parsers[typeName]; exists {
		panic(fmt.Sprintf("parser with type '%s' already registered", typeName))
	}
	slog.Debug("Registering parser.", "type", typeName)
	r.parsers[typeName] = f
}

// RegisterType registers a constructible type.
func (r *Registry) RegisterType(spec *plugins.TypeSpec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.types[spec.Name]; exists {
		panic(fmt.Sprintf("type '%s' already registered", spec.Name))
	}
	slog.Debug("Registering type.", "type", spec.Name)
	r.types[spec.Name] = spec
	if spec.GoType != nil {
		r.goTypes[spec.GoType] = spec
	}
}

// NewBuilder instantiates the builder registered under typeName.
func (r *Registry) NewBuilder(typeName string) (plugins.Builder, error) {
	r.mu.RLock()
	f, ok := r.builders[typeName]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: builder type %q", ErrNotRegistered, typeName)
	}
	return f(), nil
}

// NewParser instantiates the parser registered under typeName.
func (r *Registry) NewParser(typeName string) (plugins.Parser, error) {
	r.mu.RLock()
	f, ok := r.parsers[typeName]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: parser type %q", ErrNotRegistered, typeName)
	}
	return f(), nil
}

// LookupType implements plugins.Types.
func (r *Registry) LookupType(name string) (*plugins.TypeSpec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	spec, ok := r.types[name]
	return spec, ok
}

// TypeOf implements plugins.Types.
func (r *Registry) TypeOf(t reflect.Type) (*plugins.TypeSpec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	spec, ok := r.goTypes[t]
	return spec, ok
}
