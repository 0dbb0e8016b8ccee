package plugins

import (
	"context"
	"reflect"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/plugtree/internal/config"
	"github.com/specialistvlad/plugtree/internal/exprs"
	phcl "github.com/specialistvlad/plugtree/internal/hcl"
	"github.com/specialistvlad/plugtree/internal/services"
	"github.com/stretchr/testify/require"
)

// catalog is a minimal Types implementation for tests.
type catalog struct {
	byName map[string]*TypeSpec
	byType map[reflect.Type]*TypeSpec
}

func newCatalog(specs ...*TypeSpec) *catalog {
	c := &catalog{
		byName: make(map[string]*TypeSpec),
		byType: make(map[reflect.Type]*TypeSpec),
	}
	for _, s := range specs {
		c.byName[s.Name] = s
		c.byType[s.GoType] = s
	}
	return c
}

func (c *catalog) LookupType(name string) (*TypeSpec, bool) {
	s, ok := c.byName[name]
	return s, ok
}

func (c *catalog) TypeOf(t reflect.Type) (*TypeSpec, bool) {
	s, ok := c.byType[t]
	return s, ok
}

type testApp struct {
	services *services.Container
}

func (a *testApp) Name() string { return "test" }
func (a *testApp) Services() services.Locator { return a.services }

type fixture struct {
	t      *testing.T
	ctx    context.Context
	engine *Engine
	tree   *Tree
	app    *testApp
}

func newFixture(t *testing.T, specs ...*TypeSpec) *fixture {
	t.Helper()
	app := &testApp{services: services.New(nil)}
	e := NewEngine(EngineOptions{
		Types:       newCatalog(specs...),
		Converter:   phcl.NewConverter(),
		Application: app,
	})
	return &fixture{t: t, ctx: context.Background(), engine: e, tree: e.Tree(), app: app}
}

// plugin adds a loaded top-level plugin with the default "object" builder.
func (f *fixture) plugin(name string, deps ...string) *Plugin {
	f.t.Helper()
	p := NewPlugin(f.engine, name+".hcl", &config.Manifest{Name: name, Dependencies: deps}, nil)
	require.NoError(f.t, f.engine.Plugins().Add(p))
	p.SetStatus(StatusLoaded)
	p.RegisterBuilder("object", BuilderFunc(BuildObject))
	return p
}

// mount creates a construct owned by p and mounts it under path.
func (f *fixture) mount(p *Plugin, path string, c *config.Construct) *Builtin {
	f.t.Helper()
	if c.Scheme == "" {
		c.Scheme = "object"
	}
	b := NewBuiltin(p, c)
	p.AddBuiltin(b)
	_, err := f.tree.MountConstruct(f.ctx, path, b)
	require.NoError(f.t, err)
	return b
}

func parseExpr(t *testing.T, src string) hcl.Expression {
	t.Helper()
	expr, diags := hclsyntax.ParseExpression([]byte(src), "test.hcl", hcl.Pos{Line: 1, Column: 1})
	require.False(t, diags.HasErrors(), diags.Error())
	return expr
}

func prop(t *testing.T, name, src string) *config.Property {
	expr := parseExpr(t, src)
	return &config.Property{Name: name, Value: expr, Raw: src, Parsers: exprs.ParserNames(expr)}
}

func param(t *testing.T, name, typ, src string) *config.Param {
	expr := parseExpr(t, src)
	return &config.Param{Name: name, Type: typ, Value: expr, Raw: src, Parsers: exprs.ParserNames(expr)}
}
