package plugins

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/specialistvlad/plugtree/internal/treepath"
)

type valueKind uint8

const (
	kindConstruct valueKind = iota + 1
	kindObject
)

// nodeValue is the immutable content of a node. A nil *nodeValue is Empty.
type nodeValue struct {
	kind    valueKind
	builtin *Builtin
	object  any
}

// Node is an element of a Tree. The tree owns children top-down; parent
// is a non-owning back-reference cleared when the node is removed.
type Node struct {
	name   string
	tree   *Tree
	parent atomic.Pointer[Node]
	value  atomic.Pointer[nodeValue]

	mu       sync.RWMutex
	children []*Node
	index    map[string]*Node

	// attachMu serializes appends of child values into the node's object.
	attachMu sync.Mutex
}

func newNode(tree *Tree, name string, parent *Node) *Node {
	n := &Node{
		name:  name,
		tree:  tree,
		index: make(map[string]*Node),
	}
	n.parent.Store(parent)
	return n
}

// Name returns the node's path segment. The root's name is empty.
func (n *Node) Name() string { return n.name }

// Tree returns the tree the node belongs to.
func (n *Node) Tree() *Tree { return n.tree }

// Parent returns the parent node, or nil for the root and removed nodes.
func (n *Node) Parent() *Node { return n.parent.Load() }

// Path returns the absolute '/'-joined path of the node.
func (n *Node) Path() string {
	var names []string
	for cur := n; cur != nil && cur.Parent() != nil; cur = cur.Parent() {
		names = append(names, cur.name)
	}
	if len(names) == 0 {
		return treepath.Separator
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return treepath.Separator + strings.Join(names, treepath.Separator)
}

// Children returns a snapshot of the children in order.
func (n *Node) Children() []*Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// ChildNames returns the children's names in order.
func (n *Node) ChildNames() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]string, len(n.children))
	for i, c := range n.children {
		out[i] = c.name
	}
	return out
}

// Child returns the named child or nil.
func (n *Node) Child(name string) *Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.index[name]
}

// HasChildren reports whether the node has any child.
func (n *Node) HasChildren() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.children) > 0
}

// Find resolves path relative to n. An absolute path resolves from the
// root. Any missing segment or malformed path yields nil.
func (n *Node) Find(path string) *Node {
	p, err := treepath.Parse(path)
	if err != nil {
		return nil
	}
	cur := n
	if p.Absolute {
		cur = n.tree.root
	}
	for _, tok := range p.Tokens {
		switch tok.Kind {
		case treepath.Current:
		case treepath.Parent:
			cur = cur.Parent()
		default:
			cur = cur.Child(tok.Name)
		}
		if cur == nil {
			return nil
		}
	}
	return cur
}

// IsEmpty reports whether the node holds no value.
func (n *Node) IsEmpty() bool { return n.value.Load() == nil }

// Builtin returns the construct mounted at the node, or nil.
func (n *Node) Builtin() *Builtin {
	if v := n.value.Load(); v != nil && v.kind == kindConstruct {
		return v.builtin
	}
	return nil
}

// Peek returns the node's object without building anything: a custom
// object, the cached value of a construct, or nil.
func (n *Node) Peek() any {
	v := n.value.Load()
	if v == nil {
		return nil
	}
	if v.kind == kindObject {
		return v.object
	}
	obj, _ := v.builtin.Value()
	return obj
}

// insert places child among n's children according to the position hint.
// The caller holds the tree's structural lock.
func (n *Node) insert(child *Node, position string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	i := insertIndex(n.children, position)
	n.children = append(n.children, nil)
	copy(n.children[i+1:], n.children[i:])
	n.children[i] = child
	n.index[child.name] = child
}

// remove detaches child from n. The caller holds the tree's structural lock.
func (n *Node) remove(child *Node) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.index[child.name] != child {
		return false
	}
	delete(n.index, child.name)
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			break
		}
	}
	child.parent.Store(nil)
	return true
}
