// Package core provides the building blocks every plugin tree relies on:
// the generic object builder, parsers that reference other parts of the
// tree, and the scope type that opens a service boundary.
package core

import (
	"context"
	"fmt"
	"io"

	"github.com/specialistvlad/plugtree/internal/ctxlog"
	"github.com/specialistvlad/plugtree/internal/plugins"
	"github.com/specialistvlad/plugtree/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Name implements registry.Module.
func (m *Module) Name() string { return "core" }

// Register registers the builder, parsers and types of the package.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterBuilder("object", func() plugins.Builder { return &ObjectBuilder{} })
	r.RegisterParser("path", func() plugins.Parser { return plugins.ParserFunc(ParsePath) })
	r.RegisterParser("service", func() plugins.Parser { return plugins.ParserFunc(ParseService) })
	r.RegisterParser("type", func() plugins.Parser { return plugins.ParserFunc(ParseType) })
	r.RegisterType(scopeSpec)
}

// ObjectBuilder builds constructs with the default materialization
// algorithm and closes values implementing io.Closer on destroy.
type ObjectBuilder struct{}

// Build implements plugins.Builder.
func (b *ObjectBuilder) Build(ctx context.Context, bc *plugins.BuildContext) (any, error) {
	return plugins.BuildObject(ctx, bc)
}

// Destroy implements plugins.Destroyer.
func (b *ObjectBuilder) Destroy(ctx context.Context, bc *plugins.BuildContext, value any) error {
	c, ok := value.(io.Closer)
	if !ok {
		return nil
	}
	ctxlog.FromContext(ctx).Debug("Closing construct value.", "path", bc.Builtin.Path(), "type", fmt.Sprintf("%T", value))
	return c.Close()
}
