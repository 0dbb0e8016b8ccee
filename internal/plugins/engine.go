package plugins

import (
	"fmt"
	"reflect"

	"github.com/specialistvlad/plugtree/internal/config"
)

// Engine ties the tree, the plugin graph and the type catalog together. One
// engine is created per process entry point and reached from every plugin.
type Engine struct {
	tree      *Tree
	types     Types
	converter config.Converter
	app       Application
	plugins   *Collection
}

// EngineOptions configures NewEngine.
type EngineOptions struct {
	Tree        *Tree
	Types       Types
	Converter   config.Converter
	Application Application
}

// NewEngine creates an engine. A nil Tree gets a fresh one.
func NewEngine(opts EngineOptions) *Engine {
	tree := opts.Tree
	if tree == nil {
		tree = NewTree()
	}
	return &Engine{
		tree:      tree,
		types:     opts.Types,
		converter: opts.Converter,
		app:       opts.Application,
		plugins:   NewCollection(),
	}
}

// Tree returns the plugin tree.
func (e *Engine) Tree() *Tree { return e.tree }

// Application returns the ambient application, or nil.
func (e *Engine) Application() Application { return e.app }

// Converter returns the value converter.
func (e *Engine) Converter() config.Converter { return e.converter }

// Plugins returns the top-level plugin collection.
func (e *Engine) Plugins() *Collection { return e.plugins }

// Walk visits every plugin depth-first, top-level plugins in order.
func (e *Engine) Walk(fn func(p *Plugin) bool) {
	var walk func(ps []*Plugin) bool
	walk = func(ps []*Plugin) bool {
		for _, p := range ps {
			if !fn(p) {
				return false
			}
			if !walk(p.Children().All()) {
				return false
			}
		}
		return true
	}
	walk(e.plugins.All())
}

// Find returns the first plugin named name anywhere in the graph.
func (e *Engine) Find(name string) *Plugin {
	var found *Plugin
	e.Walk(func(p *Plugin) bool {
		if p.Name() == name {
			found = p
			return false
		}
		return true
	})
	return found
}

// Slaves returns the plugins that declare a dependency on p, in graph order.
func (e *Engine) Slaves(p *Plugin) []*Plugin {
	var out []*Plugin
	e.Walk(func(candidate *Plugin) bool {
		if candidate == p {
			return true
		}
		for _, d := range candidate.Manifest().Dependencies {
			if d.Resolve(e) == p {
				out = append(out, candidate)
				break
			}
		}
		return true
	})
	return out
}

// LookupType resolves a type name through the catalog, then primitives.
func (e *Engine) LookupType(name string) (reflect.Type, *TypeSpec, error) {
	if e.types != nil {
		if spec, ok := e.types.LookupType(name); ok {
			return spec.GoType, spec, nil
		}
	}
	if t, ok := primitiveTypes[name]; ok {
		return t, nil, nil
	}
	return nil, nil, fmt.Errorf("%w: %q", ErrTypeNotFound, name)
}

// typeOf returns the catalog spec of a Go type, or an implicit spec for
// plain structs and maps.
func (e *Engine) typeOf(t reflect.Type) (*TypeSpec, bool) {
	if t == nil {
		return nil, false
	}
	if e.types != nil {
		if spec, ok := e.types.TypeOf(t); ok {
			return spec, true
		}
	}
	return implicitSpec(t)
}

// targetSpec determines what b should be built as: its explicit type, or
// the type its owner expects for a child of b's name.
func (e *Engine) targetSpec(b *Builtin) (*TypeSpec, error) {
	if b.typeName != "" {
		t, spec, err := e.LookupType(b.typeName)
		if err != nil {
			return nil, err
		}
		if spec != nil {
			return spec, nil
		}
		if spec, ok := implicitSpec(t); ok {
			return spec, nil
		}
		return nil, fmt.Errorf("%w: %q is not constructible", ErrTargetTypeUnknown, b.typeName)
	}

	n := b.Node()
	if n == nil {
		return nil, ErrNotMounted
	}
	owner := n.Tree().OwnerNode(n)
	if owner == nil {
		return nil, fmt.Errorf("%w: %s has no owner and no explicit type", ErrTargetTypeUnknown, n.Path())
	}
	ownerType, ownerSpec, err := e.ownerType(owner)
	if err != nil {
		return nil, err
	}
	t, spec, err := e.childType(ownerType, ownerSpec, b.name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", n.Path(), err)
	}
	if spec != nil {
		return spec, nil
	}
	if spec, ok := e.typeOf(t); ok {
		return spec, nil
	}
	return nil, fmt.Errorf("%w: %s is not constructible", ErrTargetTypeUnknown, t)
}

// ownerType returns the static type of an owner node without building it.
func (e *Engine) ownerType(owner *Node) (reflect.Type, *TypeSpec, error) {
	if obj := owner.Peek(); obj != nil {
		t := reflect.TypeOf(obj)
		spec, _ := e.typeOf(t)
		return t, spec, nil
	}
	ob := owner.Builtin()
	if ob == nil {
		return nil, nil, fmt.Errorf("%w: owner %s holds no value", ErrTargetTypeUnknown, owner.Path())
	}
	spec, err := e.targetSpec(ob)
	if err != nil {
		return nil, nil, err
	}
	return spec.GoType, spec, nil
}

// childType infers the element type an owner expects: a declared element
// type, a collection element type, a field named like the child, or the
// default member's type.
func (e *Engine) childType(ownerType reflect.Type, ownerSpec *TypeSpec, name string) (reflect.Type, *TypeSpec, error) {
	if ownerSpec != nil && ownerSpec.ElementType != "" {
		return e.LookupType(ownerSpec.ElementType)
	}

	base := ownerType
	for base.Kind() == reflect.Pointer {
		base = base.Elem()
	}
	switch base.Kind() {
	case reflect.Map, reflect.Slice:
		if elem := base.Elem(); elem.Kind() != reflect.Interface {
			return elem, nil, nil
		}
	}

	if f, ok := fieldByName(ownerType, name); ok {
		return collectionElem(f.Type), nil, nil
	}
	if ownerSpec != nil && ownerSpec.DefaultMember != "" {
		if f, ok := fieldByName(ownerType, ownerSpec.DefaultMember); ok {
			return collectionElem(f.Type), nil, nil
		}
	}
	return nil, nil, fmt.Errorf("%w: owner type %s declares no element type or default member", ErrTargetTypeUnknown, ownerType)
}

// collectionElem returns the element type of slice and map members.
func collectionElem(t reflect.Type) reflect.Type {
	switch t.Kind() {
	case reflect.Slice, reflect.Map:
		return t.Elem()
	}
	return t
}
