package core

import (
	"reflect"

	"github.com/specialistvlad/plugtree/internal/plugins"
	"github.com/specialistvlad/plugtree/internal/services"
)

// Scope is a service boundary. Constructs below a materialized scope
// resolve and register services in its container, which falls back to the
// enclosing scope.
type Scope struct {
	name     string
	services *services.Container
}

// NewScope creates a scope whose lookups fall back to parent.
func NewScope(name string, parent services.Locator) *Scope {
	return &Scope{name: name, services: services.New(parent)}
}

// Name returns the scope's construct name.
func (s *Scope) Name() string { return s.name }

// Services implements plugins.Scope.
func (s *Scope) Services() services.Locator { return s.services }

// Append implements plugins.Appender. Child constructs of a scope become
// its named services.
func (s *Scope) Append(name string, child any) error {
	s.services.Register(name, child)
	return nil
}

var scopeSpec = &plugins.TypeSpec{
	Name:   "scope",
	GoType: reflect.TypeFor[*Scope](),
	Constructors: []plugins.Constructor{{
		Params: []plugins.Param{
			plugins.Arg[string]("name"),
			plugins.OptionalArg[services.Locator]("parent", nil),
		},
		New: func(args []any) (any, error) {
			name, _ := args[0].(string)
			parent, _ := args[1].(services.Locator)
			return NewScope(name, parent), nil
		},
	}},
}
