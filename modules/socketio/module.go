// Package socketio provides a socket.io client construct that connects on
// first use and disconnects when its plugin unloads.
package socketio

import (
	"github.com/specialistvlad/plugtree/internal/plugins"
	"github.com/specialistvlad/plugtree/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Name implements registry.Module.
func (m *Module) Name() string { return "socketio" }

// Register registers the socketio_client type.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterType(plugins.SpecFor[*Client]("socketio_client"))
}
