package plugins

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/specialistvlad/plugtree/internal/config"
	"github.com/specialistvlad/plugtree/internal/ctxlog"
	"golang.org/x/sync/singleflight"
)

// Builtin is a construct definition: a declarative description of the
// object that should exist at a tree position. It belongs to exactly one
// plugin and is mounted into at most one node.
type Builtin struct {
	plugin   *Plugin
	scheme   string
	name     string
	typeName string
	position string

	params     []*config.Param
	properties []*config.Property
	behaviors  []*config.Behavior

	node   atomic.Pointer[Node]
	cache  atomic.Pointer[builtValue]
	flight singleflight.Group
}

type builtValue struct {
	value any
}

// NewBuiltin creates a construct owned by p from its declaration.
func NewBuiltin(p *Plugin, decl *config.Construct) *Builtin {
	return &Builtin{
		plugin:     p,
		scheme:     decl.Scheme,
		name:       decl.Name,
		typeName:   decl.Type,
		position:   decl.Position,
		params:     decl.Params,
		properties: decl.Properties,
		behaviors:  decl.Behaviors,
	}
}

// Plugin returns the owning plugin.
func (b *Builtin) Plugin() *Plugin { return b.plugin }

// Scheme returns the builder key.
func (b *Builtin) Scheme() string { return b.scheme }

// Name returns the construct's node name.
func (b *Builtin) Name() string { return b.name }

// TypeName returns the explicit type name, or "".
func (b *Builtin) TypeName() string { return b.typeName }

// Position returns the sibling position hint.
func (b *Builtin) Position() string { return b.position }

// Params returns the explicitly declared constructor parameters.
func (b *Builtin) Params() []*config.Param { return b.params }

// Properties returns the member assignments in declaration order.
func (b *Builtin) Properties() []*config.Property { return b.properties }

// Property returns the named property, or nil.
func (b *Builtin) Property(name string) *config.Property {
	for _, p := range b.properties {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Behaviors returns the named property bags.
func (b *Builtin) Behaviors() []*config.Behavior { return b.behaviors }

// Behavior returns the named behavior, or nil.
func (b *Builtin) Behavior(name string) *config.Behavior {
	for _, bh := range b.behaviors {
		if bh.Name == name {
			return bh
		}
	}
	return nil
}

// Node returns the node the construct is mounted at, or nil.
func (b *Builtin) Node() *Node { return b.node.Load() }

// Path returns the mount path, or the construct name when unmounted.
func (b *Builtin) Path() string {
	if n := b.Node(); n != nil {
		return n.Path()
	}
	return b.name
}

// Built reports whether an Auto build has been cached.
func (b *Builtin) Built() bool { return b.cache.Load() != nil }

// Value returns the cached value without building.
func (b *Builtin) Value() (any, bool) {
	if v := b.cache.Load(); v != nil {
		return v.value, true
	}
	return nil, false
}

// Obtain returns the construct's object according to mode.
func (b *Builtin) Obtain(ctx context.Context, mode ObtainMode) (any, error) {
	switch mode {
	case Never:
		v, _ := b.Value()
		return v, nil
	case Always:
		if onChain(ctx, b) {
			return nil, b.circular(ctx)
		}
		return b.build(withChain(ctx, b), Always)
	case Auto:
	default:
		return nil, fmt.Errorf("unknown obtain mode %v", mode)
	}

	if v, ok := b.Value(); ok {
		return v, nil
	}
	if onChain(ctx, b) {
		return nil, b.circular(ctx)
	}

	v, err, _ := b.flight.Do("build", func() (any, error) {
		if v, ok := b.Value(); ok {
			return v, nil
		}
		v, err := b.build(withChain(ctx, b), Auto)
		if err != nil {
			return nil, err
		}
		if err := b.publish(ctx, v); err != nil {
			return nil, err
		}
		if err := b.appendToOwner(ctx, v); err != nil {
			b.discard(ctx, v)
			return nil, wrapConstruction(b, "", "", err)
		}
		b.cache.Store(&builtValue{value: v})
		ctxlog.FromContext(ctx).Debug("Cached construct value.", "path", b.Path(), "type", fmt.Sprintf("%T", v))
		return v, nil
	})
	return v, err
}

// Destroy runs the builder's destroy hook on the cached value, if any, and
// drops the cache.
func (b *Builtin) Destroy(ctx context.Context) error {
	cached := b.cache.Swap(nil)
	if cached == nil {
		return nil
	}
	builder, err := b.plugin.ResolveBuilder(b.scheme)
	if err != nil {
		ctxlog.FromContext(ctx).Warn("Cannot destroy construct value: builder unavailable.", "path", b.Path(), "scheme", b.scheme, "error", err)
		return wrapConstruction(b, "", "", err)
	}
	d, ok := builder.(Destroyer)
	if !ok {
		return nil
	}
	ctxlog.FromContext(ctx).Debug("Destroying construct value.", "path", b.Path())
	if err := d.Destroy(ctx, b.buildContext(Auto), cached.value); err != nil {
		return wrapConstruction(b, "", "", err)
	}
	return nil
}

// publish runs the builder's Publish hook for a completed Auto build.
func (b *Builtin) publish(ctx context.Context, v any) error {
	builder, err := b.plugin.ResolveBuilder(b.scheme)
	if err != nil {
		return wrapConstruction(b, "", "", err)
	}
	p, ok := builder.(Publisher)
	if !ok {
		return nil
	}
	if err := p.Publish(ctx, b.buildContext(Auto), v); err != nil {
		return wrapConstruction(b, "", "", err)
	}
	return nil
}

// discard undoes a publish whose value will not be cached.
func (b *Builtin) discard(ctx context.Context, v any) {
	builder, err := b.plugin.ResolveBuilder(b.scheme)
	if err != nil {
		return
	}
	if d, ok := builder.(Destroyer); ok {
		if err := d.Destroy(ctx, b.buildContext(Auto), v); err != nil {
			ctxlog.FromContext(ctx).Warn("Discarding construct value failed.", "path", b.Path(), "error", err)
		}
	}
}

func (b *Builtin) buildContext(mode ObtainMode) *BuildContext {
	n := b.Node()
	e := b.plugin.Engine()
	bc := &BuildContext{
		Builtin: b,
		Node:    n,
		Plugin:  b.plugin,
		Engine:  e,
		Mode:    mode,
	}
	if n != nil {
		bc.Tree = n.Tree()
		bc.Owner = bc.Tree.OwnerNode(n)
	}
	if e != nil {
		bc.Scope = e.nearestScope(n)
	}
	return bc
}

// build runs the scheme's builder and attaches child construct values.
func (b *Builtin) build(ctx context.Context, mode ObtainMode) (any, error) {
	ctx, logger := ctxlog.With(ctx, "construct", b.Path(), "plugin", b.plugin.Name())

	if b.Node() == nil {
		return nil, wrapConstruction(b, "", "", ErrNotMounted)
	}
	builder, err := b.plugin.ResolveBuilder(b.scheme)
	if err != nil {
		return nil, wrapConstruction(b, "", "", err)
	}

	logger.Debug("Building construct.", "scheme", b.scheme, "mode", mode.String())
	bc := b.buildContext(mode)
	v, err := builder.Build(ctx, bc)
	if err != nil {
		return nil, wrapConstruction(b, "", "", err)
	}
	if v == nil {
		return nil, wrapConstruction(b, "", "", fmt.Errorf("builder %q returned no value", b.scheme))
	}

	if err := b.attachChildren(ctx, v, mode); err != nil {
		return nil, err
	}
	logger.Debug("Built construct.", "type", fmt.Sprintf("%T", v))
	return v, nil
}

// attachChildren materializes the child constructs of the node and appends
// them to v. Always builds use Always for children so the fresh instance
// shares nothing with the cache.
func (b *Builtin) attachChildren(ctx context.Context, v any, mode ObtainMode) error {
	childMode := Auto
	if mode == Always {
		childMode = Always
	}
	for _, child := range b.Node().Children() {
		cb := child.Builtin()
		if cb == nil {
			continue
		}
		cv, err := cb.Obtain(ctx, childMode)
		if err != nil {
			return err
		}
		if err := b.plugin.Engine().attach(ctx, v, cb.Name(), cv); err != nil {
			return wrapConstruction(b, cb.Name(), "", err)
		}
	}
	return nil
}

// appendToOwner adds a freshly cached value to its materialized owner.
// Owners that are not materialized yet collect their children when built.
func (b *Builtin) appendToOwner(ctx context.Context, v any) error {
	n := b.Node()
	owner := n.Tree().OwnerNode(n)
	if owner == nil {
		return nil
	}
	target := owner.Peek()
	if target == nil {
		return nil
	}
	// The owner's own build attaches children on the same chain.
	if ob := owner.Builtin(); ob != nil && onChain(ctx, ob) {
		return nil
	}
	owner.attachMu.Lock()
	defer owner.attachMu.Unlock()
	return b.plugin.Engine().attach(ctx, target, b.name, v)
}

func (b *Builtin) circular(ctx context.Context) error {
	return wrapConstruction(b, "", "", fmt.Errorf("%w: %s", ErrCircularConstruct, chainString(ctx, b)))
}

type chainKey struct{}

// buildChain is the stack of constructs being built on the current call path.
type buildChain struct {
	builtin *Builtin
	prev    *buildChain
}

func withChain(ctx context.Context, b *Builtin) context.Context {
	prev, _ := ctx.Value(chainKey{}).(*buildChain)
	return context.WithValue(ctx, chainKey{}, &buildChain{builtin: b, prev: prev})
}

func onChain(ctx context.Context, b *Builtin) bool {
	for c, _ := ctx.Value(chainKey{}).(*buildChain); c != nil; c = c.prev {
		if c.builtin == b {
			return true
		}
	}
	return false
}

func chainString(ctx context.Context, b *Builtin) string {
	s := b.Path()
	for c, _ := ctx.Value(chainKey{}).(*buildChain); c != nil; c = c.prev {
		s = c.builtin.Path() + " -> " + s
		if c.builtin == b {
			break
		}
	}
	return s
}
