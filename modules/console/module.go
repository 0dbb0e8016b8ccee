// Package console provides console logging constructs and the `service`
// builder that publishes built objects into the nearest service scope.
package console

import (
	"reflect"

	"github.com/specialistvlad/plugtree/internal/plugins"
	"github.com/specialistvlad/plugtree/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Name implements registry.Module.
func (m *Module) Name() string { return "console" }

// Register registers the types and the service builder.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterType(&plugins.TypeSpec{
		Name:   "ConsoleLogger",
		GoType: reflect.TypeFor[*Logger](),
		Constructors: []plugins.Constructor{{
			Params: []plugins.Param{plugins.OptionalArg[string]("prefix", "")},
			New: func(args []any) (any, error) {
				prefix, _ := args[0].(string)
				return NewLogger(prefix), nil
			},
		}},
		DefaultMember: "Sink",
	})
	r.RegisterType(plugins.SpecFor[*Sink]("LogSink"))
	r.RegisterBuilder("service", func() plugins.Builder { return &ServiceBuilder{} })
}
