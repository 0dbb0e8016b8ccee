package core_test

import (
	"reflect"
	"testing"

	"github.com/specialistvlad/plugtree/internal/app"
	"github.com/specialistvlad/plugtree/internal/plugins"
	"github.com/specialistvlad/plugtree/internal/registry"
	"github.com/specialistvlad/plugtree/modules/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Endpoint struct {
	URL     string
	Peer    *Endpoint
	Message string
	Kind    reflect.Type
	closed  bool
}

func (e *Endpoint) Close() error {
	e.closed = true
	return nil
}

type Consumer struct {
	DB *Endpoint `inject:"Db,optional"`
}

type testModule struct{}

func (testModule) Name() string { return "test" }

func (testModule) Register(r *registry.Registry) {
	r.RegisterType(plugins.SpecFor[*Endpoint]("Endpoint"))
	r.RegisterType(plugins.SpecFor[*Consumer]("Consumer"))
}

func setup(t *testing.T, unit string) *app.App {
	t.Helper()
	a, _ := app.SetupAppTest(t, map[string]string{"main.hcl": unit}, &core.Module{}, testModule{})
	require.NoError(t, a.Load(a.Context()))
	return a
}

func TestPathParser(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	a := setup(t, `
plugin "main" {
  assembly "core" {}
}
builder "object" {}
parser "path" {}

extension "/Net" {
  construct "object" "Primary" {
    type = "Endpoint"
    url  = "tcp://primary"
  }
  construct "object" "Secondary" {
    type = "Endpoint"
    peer = path("/Net/Primary")
  }
  construct "object" "Relative" {
    type = "Endpoint"
    peer = path("../Secondary")
  }
}
`)

	// --- Act ---
	v, err := a.Unwrap(a.Context(), "/Net/Relative")

	// --- Assert ---
	require.NoError(t, err)
	relative := v.(*Endpoint)
	require.NotNil(t, relative.Peer)
	require.NotNil(t, relative.Peer.Peer)
	assert.Equal(t, "tcp://primary", relative.Peer.Peer.URL)

	primary, err := a.Tree().Unwrap(a.Context(), "/Net/Primary", plugins.Never)
	require.NoError(t, err)
	assert.Same(t, primary, relative.Peer.Peer, "referenced constructs are built once")
}

func TestPathParser_MissingNode(t *testing.T) {
	t.Parallel()

	a := setup(t, `
plugin "main" {}
builder "object" {}
parser "path" {}
extension "/" {
  construct "object" "Dangling" {
    type = "Endpoint"
    peer = path("/Nowhere")
  }
}
`)

	_, err := a.Unwrap(a.Context(), "/Dangling")

	require.ErrorIs(t, err, plugins.ErrNodeNotFound)
	var ce *plugins.ConstructionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "peer", ce.Member)
}

func TestServiceAndTypeParsers(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	a, _ := app.SetupAppTest(t, map[string]string{"main.hcl": `
plugin "main" {}
builder "object" {}
parser "service" {}
parser "type" {}
extension "/" {
  construct "object" "Greeter" {
    type    = "Endpoint"
    message = service("greeting")
    kind    = type("Consumer")
  }
}
`}, &core.Module{}, testModule{})
	a.Container().Register("greeting", "hello")
	require.NoError(t, a.Load(a.Context()))

	// --- Act ---
	v, err := a.Unwrap(a.Context(), "/Greeter")

	// --- Assert ---
	require.NoError(t, err)
	e := v.(*Endpoint)
	assert.Equal(t, "hello", e.Message)
	assert.Equal(t, reflect.TypeFor[*Consumer](), e.Kind)
}

func TestScope_ChildrenBecomeServices(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	a := setup(t, `
plugin "main" {}
builder "object" {}
extension "/" {
  construct "object" "Module" {
    type = "scope"
    construct "object" "Db" {
      type = "Endpoint"
      url  = "db://local"
    }
  }
}
extension "/Module" {
  construct "object" "Client" { type = "Consumer" }
}
`)

	// --- Act ---
	v, err := a.Unwrap(a.Context(), "/Module")
	require.NoError(t, err)
	client, err := a.Tree().Unwrap(a.Context(), "/Module/Client", plugins.Always)

	// --- Assert ---
	require.NoError(t, err)
	scope := v.(*core.Scope)
	assert.Equal(t, "Module", scope.Name())

	db, ok := scope.Services().ResolveNamed("Db")
	require.True(t, ok)
	assert.Equal(t, "db://local", db.(*Endpoint).URL)
	assert.Same(t, db, client.(*Consumer).DB, "constructs under a built scope resolve its services")

	_, ok = a.Services().ResolveNamed("Db")
	assert.False(t, ok, "scope services do not leak into the application")
}

func TestObjectBuilder_ClosesOnUnload(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	a := setup(t, `
plugin "main" {}
builder "object" {}
extension "/" {
  construct "object" "Conn" { type = "Endpoint" }
}
`)
	v, err := a.Unwrap(a.Context(), "/Conn")
	require.NoError(t, err)

	// --- Act ---
	err = a.Close(a.Context())

	// --- Assert ---
	require.NoError(t, err)
	assert.True(t, v.(*Endpoint).closed)
	assert.Nil(t, a.Tree().Find("/Conn"))
}
