package console

import (
	"context"
	"io"

	"github.com/specialistvlad/plugtree/internal/ctxlog"
	"github.com/specialistvlad/plugtree/internal/plugins"
	"github.com/zclconf/go-cty/cty"
)

// ServiceBuilder builds objects the default way and registers them in the
// nearest scope under the name of their `service` behavior, or the
// construct name. Only the cached instance is registered; Always builds
// stay private to their caller.
type ServiceBuilder struct{}

// Build implements plugins.Builder.
func (b *ServiceBuilder) Build(ctx context.Context, bc *plugins.BuildContext) (any, error) {
	return plugins.BuildObject(ctx, bc)
}

// Publish implements plugins.Publisher.
func (b *ServiceBuilder) Publish(ctx context.Context, bc *plugins.BuildContext, value any) error {
	if reg, ok := registrar(bc); ok {
		name := serviceName(bc.Builtin)
		reg.Register(name, value)
		ctxlog.FromContext(ctx).Debug("Registered service.", "service", name, "path", bc.Builtin.Path())
	}
	return nil
}

// Destroy implements plugins.Destroyer.
func (b *ServiceBuilder) Destroy(ctx context.Context, bc *plugins.BuildContext, value any) error {
	if reg, ok := registrar(bc); ok && reg.Unregister(value) {
		ctxlog.FromContext(ctx).Debug("Unregistered service.", "path", bc.Builtin.Path())
	}
	if c, ok := value.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func registrar(bc *plugins.BuildContext) (plugins.Registrar, bool) {
	loc := bc.Locator()
	if loc == nil {
		return nil, false
	}
	reg, ok := loc.(plugins.Registrar)
	return reg, ok
}

// serviceName reads the `name` of the construct's service behavior.
func serviceName(b *plugins.Builtin) string {
	beh := b.Behavior("service")
	if beh == nil {
		return b.Name()
	}
	prop := beh.Property("name")
	if prop == nil || prop.Value == nil {
		return b.Name()
	}
	v, diags := prop.Value.Value(nil)
	if diags.HasErrors() || v.IsNull() || !v.IsKnown() || v.Type() != cty.String {
		return b.Name()
	}
	return v.AsString()
}
