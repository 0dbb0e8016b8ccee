package plugins

import (
	"context"
	"fmt"
	"sync"

	"github.com/specialistvlad/plugtree/internal/ctxlog"
	"github.com/specialistvlad/plugtree/internal/treepath"
)

// Tree is the path-addressed node namespace populated by the loader.
type Tree struct {
	root *Node
	// mu serializes structural changes and value replacement.
	mu   sync.Mutex
	subs subscribers
}

// NewTree creates an empty tree with a root node.
func NewTree() *Tree {
	t := &Tree{}
	t.root = newNode(t, "", nil)
	return t
}

// Root returns the root node.
func (t *Tree) Root() *Node { return t.root }

// Subscribe registers fn for mount notifications and returns a function
// that removes it. Handlers run synchronously on the mutating goroutine,
// outside the structural lock.
func (t *Tree) Subscribe(fn func(TreeEvent)) (unsubscribe func()) {
	return t.subs.add(fn)
}

// Find resolves an absolute path. It never fails; any miss yields nil.
func (t *Tree) Find(path string) *Node {
	return t.root.Find(path)
}

// EnsurePath creates every missing segment along path and returns the
// terminal node. A newly created terminal node is placed among its
// siblings according to position; intermediate segments are appended.
func (t *Tree) EnsurePath(path string, position string) (*Node, error) {
	names, err := treepath.Names(path)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	cur := t.root
	for i, name := range names {
		next := cur.Child(name)
		if next == nil {
			next = newNode(t, name, cur)
			pos := ""
			if i == len(names)-1 {
				pos = position
			}
			cur.insert(next, pos)
		}
		cur = next
	}
	return cur, nil
}

// Mount replaces the value at path, creating the path when needed.
func (t *Tree) Mount(ctx context.Context, path string, value any) (bool, error) {
	if _, ok := value.(*Builtin); ok {
		return false, ErrConstructMount
	}
	n, err := t.EnsurePath(path, "")
	if err != nil {
		return false, err
	}
	return t.MountNode(ctx, n, value)
}

// MountNode replaces the value of n with a custom object (nil clears it).
// It refuses constructs and returns false without change when n holds a
// construct that has already been built.
func (t *Tree) MountNode(ctx context.Context, n *Node, value any) (bool, error) {
	if _, ok := value.(*Builtin); ok {
		return false, ErrConstructMount
	}
	if n == nil {
		return false, ErrNodeNotFound
	}

	old := n.value.Load()
	if old != nil && old.kind == kindConstruct && old.builtin.Built() {
		ctxlog.FromContext(ctx).Debug("Mount skipped: construct already built.", "path", n.Path())
		return false, nil
	}

	path := n.Path()
	t.subs.publish(TreeEvent{Kind: EventMounting, Node: n, Path: path, Old: old.raw(), New: value})

	var next *nodeValue
	if value != nil {
		next = &nodeValue{kind: kindObject, object: value}
	}
	t.mu.Lock()
	n.value.Store(next)
	t.mu.Unlock()

	ctxlog.FromContext(ctx).Debug("Mounted object.", "path", path, "type", fmt.Sprintf("%T", value))
	t.subs.publish(TreeEvent{Kind: EventMounted, Node: n, Path: path, Old: old.raw(), New: value})
	return true, nil
}

// MountConstruct mounts b at path/b.Name(), honoring its position hint.
func (t *Tree) MountConstruct(ctx context.Context, path string, b *Builtin) (*Node, error) {
	full := treepath.Join(path, b.Name())
	if err := treepath.ValidateName(b.Name()); err != nil {
		return nil, fmt.Errorf("construct %q: %w", full, err)
	}
	n, err := t.EnsurePath(full, b.Position())
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	old := n.value.Load()
	if old != nil && old.kind == kindConstruct {
		t.mu.Unlock()
		return nil, fmt.Errorf("%w: %s (declared by plugin %s, redeclared by %s)",
			ErrDuplicateConstruct, full, old.builtin.Plugin().Name(), b.Plugin().Name())
	}
	t.mu.Unlock()

	t.subs.publish(TreeEvent{Kind: EventMounting, Node: n, Path: full, Old: old.raw(), New: b})

	t.mu.Lock()
	n.value.Store(&nodeValue{kind: kindConstruct, builtin: b})
	b.node.Store(n)
	t.mu.Unlock()

	ctxlog.FromContext(ctx).Debug("Mounted construct.", "path", full, "scheme", b.Scheme(), "plugin", b.Plugin().Name())
	t.subs.publish(TreeEvent{Kind: EventMounted, Node: n, Path: full, Old: old.raw(), New: b})
	return n, nil
}

// Unmount clears the value at path. See UnmountNode.
func (t *Tree) Unmount(ctx context.Context, path string) (any, bool) {
	n := t.Find(path)
	if n == nil {
		return nil, false
	}
	return t.UnmountNode(ctx, n)
}

// UnmountNode captures the node's value without building it, clears it,
// and removes the node from its parent when it has no children. Ancestors
// left without a value and without children are removed as well. A
// construct is returned as its *Builtin.
func (t *Tree) UnmountNode(ctx context.Context, n *Node) (any, bool) {
	if n == nil {
		return nil, false
	}
	path := n.Path()

	t.mu.Lock()
	old := n.value.Swap(nil)
	removed := false
	if parent := n.Parent(); parent != nil && !n.HasChildren() {
		removed = parent.remove(n)
		if removed {
			t.pruneLocked(parent)
		}
	}
	t.mu.Unlock()

	if old == nil {
		return nil, false
	}

	ctxlog.FromContext(ctx).Debug("Unmounted node.", "path", path, "removed", removed)
	t.subs.publish(TreeEvent{Kind: EventUnmounted, Node: n, Path: path, Old: old.raw()})
	return old.raw(), true
}

// pruneLocked removes n and its ancestors while they are empty leaves. The
// root is never removed. The caller holds t.mu.
func (t *Tree) pruneLocked(n *Node) {
	for n != nil && n != t.root && n.IsEmpty() && !n.HasChildren() {
		parent := n.Parent()
		if parent == nil || !parent.remove(n) {
			return
		}
		n = parent
	}
}

// UnwrapValue returns the object at n, materializing a construct according
// to mode.
func (t *Tree) UnwrapValue(ctx context.Context, n *Node, mode ObtainMode) (any, error) {
	if n == nil {
		return nil, ErrNodeNotFound
	}
	v := n.value.Load()
	if v == nil {
		return nil, nil
	}
	if v.kind == kindObject {
		return v.object, nil
	}
	return v.builtin.Obtain(ctx, mode)
}

// Unwrap is UnwrapValue for a path.
func (t *Tree) Unwrap(ctx context.Context, path string, mode ObtainMode) (any, error) {
	n := t.Find(path)
	if n == nil {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, path)
	}
	return t.UnwrapValue(ctx, n, mode)
}

// OwnerNode returns the nearest ancestor of n holding a value. It only
// reads atomics and never builds.
func (t *Tree) OwnerNode(n *Node) *Node {
	if n == nil {
		return nil
	}
	for p := n.Parent(); p != nil; p = p.Parent() {
		if !p.IsEmpty() {
			return p
		}
	}
	return nil
}

// Walk visits every node depth-first in child order. Returning false from
// fn skips the node's subtree.
func (t *Tree) Walk(fn func(n *Node, depth int) bool) {
	var walk func(n *Node, depth int)
	walk = func(n *Node, depth int) {
		if !fn(n, depth) {
			return
		}
		for _, c := range n.Children() {
			walk(c, depth+1)
		}
	}
	walk(t.root, 0)
}

func (v *nodeValue) raw() any {
	if v == nil {
		return nil
	}
	if v.kind == kindConstruct {
		return v.builtin
	}
	return v.object
}
