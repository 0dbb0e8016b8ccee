package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/plugtree/internal/plugins"
)

// ParsePath resolves a tree path and returns the value at it. Relative
// paths start at the parsing construct's node. Referenced constructs are
// materialized with Auto.
func ParsePath(ctx context.Context, pc *plugins.ParseContext, text string) (any, error) {
	path := strings.TrimSpace(text)
	if path == "" {
		return nil, fmt.Errorf("path: empty path")
	}

	var n *plugins.Node
	if strings.HasPrefix(path, "/") || pc.Node == nil {
		n = pc.Tree.Find(path)
	} else {
		n = pc.Node.Find(path)
	}
	if n == nil {
		return nil, fmt.Errorf("path %q: %w", path, plugins.ErrNodeNotFound)
	}
	return pc.Tree.UnwrapValue(ctx, n, plugins.Auto)
}

// ParseService returns the application service registered under text.
func ParseService(_ context.Context, pc *plugins.ParseContext, text string) (any, error) {
	name := strings.TrimSpace(text)
	app := pc.Engine.Application()
	if app == nil || app.Services() == nil {
		return nil, fmt.Errorf("service %q: no application services", name)
	}
	svc, ok := app.Services().ResolveNamed(name)
	if !ok {
		return nil, fmt.Errorf("service %q: not registered", name)
	}
	return svc, nil
}

// ParseType returns the Go type registered under a catalog type name.
func ParseType(_ context.Context, pc *plugins.ParseContext, text string) (any, error) {
	t, _, err := pc.Engine.LookupType(strings.TrimSpace(text))
	if err != nil {
		return nil, err
	}
	return t, nil
}
