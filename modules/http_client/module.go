// Package http_client provides a shareable, lazily configured HTTP client
// construct.
package http_client

import (
	"reflect"

	"github.com/specialistvlad/plugtree/internal/plugins"
	"github.com/specialistvlad/plugtree/internal/registry"
)

// Module implements the registry.Module interface. It registers the
// http_client type with the application's registry.
type Module struct{}

// Name implements registry.Module.
func (m *Module) Name() string { return "http_client" }

// Register registers the module's types.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterType(&plugins.TypeSpec{
		Name:   "http_client",
		GoType: reflect.TypeFor[*Client](),
		Constructors: []plugins.Constructor{{
			Params: []plugins.Param{plugins.OptionalArg[string]("timeout", defaultTimeout)},
			New: func(args []any) (any, error) {
				timeout, _ := args[0].(string)
				return &Client{Timeout: timeout}, nil
			},
		}},
	})
}
