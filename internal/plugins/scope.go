package plugins

import (
	"github.com/specialistvlad/plugtree/internal/services"
)

// Scope is a module boundary: an object that exposes its own service
// locator to the constructs beneath it.
type Scope interface {
	Services() services.Locator
}

// Application is the ambient application context. It is the outermost
// Scope.
type Application interface {
	Scope
	Name() string
}

// Registrar is implemented by locators that accept registrations.
type Registrar interface {
	Register(name string, service any)
	Unregister(service any) bool
}

// Appender is implemented by objects that collect child construct values
// themselves.
type Appender interface {
	Append(name string, child any) error
}

// nearestScope walks the owners of n with Never reads and returns the
// first materialized Scope, falling back to the application.
func (e *Engine) nearestScope(n *Node) Scope {
	if n != nil {
		for owner := n.tree.OwnerNode(n); owner != nil; owner = owner.tree.OwnerNode(owner) {
			if s, ok := owner.Peek().(Scope); ok {
				return s
			}
		}
	}
	if e.app != nil {
		return e.app
	}
	return nil
}
