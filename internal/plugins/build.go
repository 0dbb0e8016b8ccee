package plugins

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/plugtree/internal/config"
	"github.com/specialistvlad/plugtree/internal/ctxlog"
	"github.com/specialistvlad/plugtree/internal/services"
)

// BuildObject is the default materialization algorithm: determine the
// target type, match a constructor, assign the remaining properties and
// inject services. Builders wrap it to add behavior around the object.
func BuildObject(ctx context.Context, bc *BuildContext) (any, error) {
	b := bc.Builtin
	logger := ctxlog.FromContext(ctx)

	spec, err := bc.Engine.targetSpec(b)
	if err != nil {
		return nil, wrapConstruction(b, "", "", err)
	}
	logger.Debug("Resolved target type.", "type", spec.Name)

	ctor, args, consumed, err := matchConstructor(ctx, bc, spec)
	if err != nil {
		return nil, err
	}
	v, err := ctor.New(args)
	if err != nil {
		return nil, wrapConstruction(b, "", "", err)
	}

	if err := applyProperties(ctx, bc, v, consumed); err != nil {
		return nil, err
	}

	if loc := bc.Locator(); loc != nil {
		if err := services.Inject(loc, v); err != nil {
			return nil, wrapConstruction(b, "", "", err)
		}
	}
	return v, nil
}

// applyProperties assigns every property not consumed by the constructor.
func applyProperties(ctx context.Context, bc *BuildContext, v any, consumed map[string]bool) error {
	b := bc.Builtin
	vt := reflect.TypeOf(v)
	for _, p := range b.properties {
		if consumed[p.Name] {
			continue
		}
		t, ok := memberType(vt, p.Name)
		if !ok {
			return wrapConstruction(b, p.Name, p.Raw, fmt.Errorf("%w: %s has no member %q", ErrUnknownMember, vt, p.Name))
		}
		val, err := evaluate(ctx, bc, p.Value, p.Raw, p.Parsers, t)
		if err != nil {
			return wrapConstruction(b, p.Name, p.Raw, err)
		}
		if err := setMember(v, p.Name, val); err != nil {
			return wrapConstruction(b, p.Name, p.Raw, err)
		}
	}
	return nil
}

// matchConstructor picks a constructor and its arguments. A constructor
// whose arity equals the number of declared params is preferred and bound
// by name, then by declared type. Otherwise constructors are tried from the
// most parameters down, each parameter satisfied by a declared param, a
// contextual value, a property, a service, or its default.
func matchConstructor(ctx context.Context, bc *BuildContext, spec *TypeSpec) (*Constructor, []any, map[string]bool, error) {
	b := bc.Builtin
	ctors := spec.constructors()

	if len(b.params) > 0 {
		for i := range ctors {
			if len(ctors[i].Params) != len(b.params) {
				continue
			}
			args, ok, err := bindDeclared(ctx, bc, ctors[i].Params)
			if err != nil {
				return nil, nil, nil, err
			}
			if ok {
				return &ctors[i], args, nil, nil
			}
		}
	}

	order := make([]int, len(ctors))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return len(ctors[order[i]].Params) > len(ctors[order[j]].Params)
	})

	for _, i := range order {
		args, consumed, ok, err := bindAny(ctx, bc, ctors[i].Params)
		if err != nil {
			return nil, nil, nil, err
		}
		if ok {
			return &ctors[i], args, consumed, nil
		}
	}
	return nil, nil, nil, wrapConstruction(b, "", "", fmt.Errorf("%w for type %s", ErrNoConstructor, spec.Name))
}

// bindDeclared binds every constructor parameter to a distinct declared
// param, by name first and by declared type second.
func bindDeclared(ctx context.Context, bc *BuildContext, params []Param) ([]any, bool, error) {
	b := bc.Builtin
	used := make([]bool, len(b.params))
	chosen := make([]*config.Param, len(params))

	for i, p := range params {
		for j, d := range b.params {
			if !used[j] && strings.EqualFold(d.Name, p.Name) {
				chosen[i], used[j] = d, true
				break
			}
		}
	}
	for i, p := range params {
		if chosen[i] != nil {
			continue
		}
		for j, d := range b.params {
			if used[j] || d.Type == "" {
				continue
			}
			t, _, err := bc.Engine.LookupType(d.Type)
			if err == nil && t.AssignableTo(p.Type) {
				chosen[i], used[j] = d, true
				break
			}
		}
		if chosen[i] == nil {
			return nil, false, nil
		}
	}

	args := make([]any, len(params))
	for i, p := range params {
		v, err := evaluate(ctx, bc, chosen[i].Value, chosen[i].Raw, chosen[i].Parsers, p.Type)
		if err != nil {
			return nil, false, wrapConstruction(b, p.Name, chosen[i].Raw, err)
		}
		args[i] = v
	}
	return args, true, nil
}

// bindAny binds parameters from every available source. Properties used as
// arguments are reported as consumed.
func bindAny(ctx context.Context, bc *BuildContext, params []Param) ([]any, map[string]bool, bool, error) {
	b := bc.Builtin
	args := make([]any, len(params))
	consumed := make(map[string]bool)

	for i, p := range params {
		if d := declaredParam(b, p.Name); d != nil {
			v, err := evaluate(ctx, bc, d.Value, d.Raw, d.Parsers, p.Type)
			if err != nil {
				return nil, nil, false, wrapConstruction(b, p.Name, d.Raw, err)
			}
			args[i] = v
			continue
		}
		if v, ok := contextual(ctx, bc, p); ok {
			args[i] = v
			continue
		}
		if prop := findProperty(b, p.Name); prop != nil {
			v, err := evaluate(ctx, bc, prop.Value, prop.Raw, prop.Parsers, p.Type)
			if err != nil {
				return nil, nil, false, wrapConstruction(b, p.Name, prop.Raw, err)
			}
			args[i] = v
			consumed[prop.Name] = true
			continue
		}
		if loc := bc.Locator(); loc != nil {
			if v, ok := loc.Resolve(p.Type); ok {
				args[i] = v
				continue
			}
		}
		if p.HasDefault {
			args[i] = p.Default
			continue
		}
		ctxlog.FromContext(ctx).Debug("Constructor rejected.", "param", p.Name, "type", p.Type.String())
		return nil, nil, false, nil
	}
	return args, consumed, true, nil
}

var (
	contextType     = reflect.TypeFor[context.Context]()
	builtinType     = reflect.TypeFor[*Builtin]()
	pluginType      = reflect.TypeFor[*Plugin]()
	nodeType        = reflect.TypeFor[*Node]()
	treeType        = reflect.TypeFor[*Tree]()
	engineType      = reflect.TypeFor[*Engine]()
	applicationType = reflect.TypeFor[Application]()
	locatorType     = reflect.TypeFor[services.Locator]()
	scopeType       = reflect.TypeFor[Scope]()
)

// contextual returns a well-known value of the build for p, if any.
func contextual(ctx context.Context, bc *BuildContext, p Param) (any, bool) {
	switch p.Type {
	case contextType:
		return ctx, true
	case builtinType:
		return bc.Builtin, true
	case pluginType:
		return bc.Plugin, true
	case nodeType:
		return bc.Node, bc.Node != nil
	case treeType:
		return bc.Tree, bc.Tree != nil
	case engineType:
		return bc.Engine, true
	case applicationType:
		app := bc.Engine.Application()
		return app, app != nil
	case locatorType:
		loc := bc.Locator()
		return loc, loc != nil
	case scopeType:
		return bc.Scope, bc.Scope != nil
	}
	if p.Type.Kind() == reflect.String && strings.EqualFold(p.Name, "name") {
		return reflect.ValueOf(bc.Builtin.Name()).Convert(p.Type).Interface(), true
	}
	return nil, false
}

func declaredParam(b *Builtin, name string) *config.Param {
	for _, d := range b.params {
		if strings.EqualFold(d.Name, name) {
			return d
		}
	}
	return nil
}

func findProperty(b *Builtin, name string) *config.Property {
	for _, p := range b.properties {
		if strings.EqualFold(p.Name, name) {
			return p
		}
	}
	return nil
}

// evaluate evaluates a raw value and converts it to t. The parsers it calls
// are resolved through the construct's plugin.
func evaluate(ctx context.Context, bc *BuildContext, expr hcl.Expression, raw string, parsers []string, t reflect.Type) (any, error) {
	if expr == nil {
		return reflect.Zero(t).Interface(), nil
	}
	evalCtx, failure, err := evalContext(ctx, bc, parsers, raw)
	if err != nil {
		return nil, err
	}
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		if failure != nil && failure.err != nil {
			return nil, failure.err
		}
		return nil, diags
	}

	conv := bc.Engine.Converter()
	if conv == nil {
		return nil, fmt.Errorf("no converter configured")
	}
	ptr := reflect.New(t)
	if err := conv.Decode(ctx, val, ptr.Interface()); err != nil {
		return nil, err
	}
	return ptr.Elem().Interface(), nil
}
