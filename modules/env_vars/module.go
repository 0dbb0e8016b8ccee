package env_vars

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"

	"github.com/specialistvlad/plugtree/internal/plugins"
	"github.com/specialistvlad/plugtree/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Name implements registry.Module.
func (m *Module) Name() string { return "env_vars" }

// Environment is a snapshot of the process environment.
type Environment struct {
	Prefix string
	vars   map[string]string
}

// NewEnvironment snapshots the variables whose names start with prefix.
func NewEnvironment(prefix string) *Environment {
	vars := make(map[string]string)
	for _, e := range os.Environ() {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) == 2 && strings.HasPrefix(pair[0], prefix) {
			vars[pair[0]] = pair[1]
		}
	}
	return &Environment{Prefix: prefix, vars: vars}
}

// Get returns a variable of the snapshot.
func (e *Environment) Get(name string) (string, bool) {
	v, ok := e.vars[name]
	return v, ok
}

// Names returns the variable names of the snapshot, sorted.
func (e *Environment) Names() []string {
	names := make([]string, 0, len(e.vars))
	for name := range e.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseEnv resolves `NAME` or `NAME:default` against the environment.
func ParseEnv(_ context.Context, _ *plugins.ParseContext, text string) (any, error) {
	name, def, hasDefault := strings.Cut(strings.TrimSpace(text), ":")
	if name == "" {
		return nil, fmt.Errorf("env: empty variable name")
	}
	if v, ok := os.LookupEnv(name); ok {
		return v, nil
	}
	if hasDefault {
		return def, nil
	}
	return nil, fmt.Errorf("env: variable %q is not set", name)
}

// Register registers the env parser and the environment type.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterParser("env", func() plugins.Parser { return plugins.ParserFunc(ParseEnv) })
	r.RegisterType(&plugins.TypeSpec{
		Name:   "environment",
		GoType: reflect.TypeFor[*Environment](),
		Constructors: []plugins.Constructor{{
			Params: []plugins.Param{plugins.OptionalArg[string]("prefix", "")},
			New: func(args []any) (any, error) {
				prefix, _ := args[0].(string)
				return NewEnvironment(prefix), nil
			},
		}},
	})
}
