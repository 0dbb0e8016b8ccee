package plugins

import (
	"fmt"
	"reflect"
)

// Param describes one constructor parameter.
type Param struct {
	Name       string
	Type       reflect.Type
	Default    any
	HasDefault bool
}

// Arg declares a required constructor parameter of type T.
func Arg[T any](name string) Param {
	return Param{Name: name, Type: reflect.TypeFor[T]()}
}

// OptionalArg declares a constructor parameter of type T with a default.
func OptionalArg[T any](name string, def T) Param {
	return Param{Name: name, Type: reflect.TypeFor[T](), Default: def, HasDefault: true}
}

// Constructor is a typed factory. New receives one argument per Param, in
// order, each assignable to the Param's Type.
type Constructor struct {
	Params []Param
	New    func(args []any) (any, error)
}

// TypeSpec describes a constructible type to the materialization engine.
type TypeSpec struct {
	// Name is the catalog name used by construct `type` declarations.
	Name string
	// GoType is the type of values produced, usually a pointer to struct.
	GoType reflect.Type
	// Constructors are tried per the matching rules. A struct type without
	// constructors gets an implicit zero-argument one.
	Constructors []Constructor
	// ElementType names the type of child constructs for collection-like
	// types.
	ElementType string
	// DefaultMember names the field child constructs default to.
	DefaultMember string
	// Add appends a child value; it takes precedence over reflection.
	Add func(owner any, name string, child any) error
}

// SpecFor returns a TypeSpec for T with no explicit constructors.
func SpecFor[T any](name string) *TypeSpec {
	return &TypeSpec{Name: name, GoType: reflect.TypeFor[T]()}
}

// constructors returns the declared constructors, or the implicit one.
func (s *TypeSpec) constructors() []Constructor {
	if len(s.Constructors) > 0 {
		return s.Constructors
	}
	if ctor, ok := implicitConstructor(s.GoType); ok {
		return []Constructor{ctor}
	}
	return nil
}

// implicitSpec describes a Go type missing from the catalog.
func implicitSpec(t reflect.Type) (*TypeSpec, bool) {
	if _, ok := implicitConstructor(t); !ok {
		return nil, false
	}
	return &TypeSpec{Name: t.String(), GoType: t}, true
}

func implicitConstructor(t reflect.Type) (Constructor, bool) {
	if t == nil {
		return Constructor{}, false
	}
	switch {
	case t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct:
		return Constructor{New: func([]any) (any, error) {
			return reflect.New(t.Elem()).Interface(), nil
		}}, true
	case t.Kind() == reflect.Map:
		return Constructor{New: func([]any) (any, error) {
			return reflect.MakeMap(t).Interface(), nil
		}}, true
	case t.Kind() == reflect.Struct:
		// Values are built addressable so properties can be assigned.
		return Constructor{New: func([]any) (any, error) {
			return reflect.New(t).Interface(), nil
		}}, true
	}
	return Constructor{}, false
}

// Validate reports structural problems of a spec.
func (s *TypeSpec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("type spec without name")
	}
	if s.GoType == nil {
		return fmt.Errorf("type %q: GoType is nil", s.Name)
	}
	for i, c := range s.Constructors {
		if c.New == nil {
			return fmt.Errorf("type %q: constructor %d has no New func", s.Name, i)
		}
		for _, p := range c.Params {
			if p.Type == nil {
				return fmt.Errorf("type %q: constructor %d parameter %q has no type", s.Name, i, p.Name)
			}
		}
	}
	if len(s.constructors()) == 0 {
		return fmt.Errorf("type %q: no constructors and %s is not a struct or map", s.Name, s.GoType)
	}
	if s.DefaultMember != "" {
		if _, ok := fieldByName(s.GoType, s.DefaultMember); !ok {
			return fmt.Errorf("type %q: default member %q not found", s.Name, s.DefaultMember)
		}
	}
	return nil
}

// Types is the catalog of constructible types.
type Types interface {
	LookupType(name string) (*TypeSpec, bool)
	TypeOf(t reflect.Type) (*TypeSpec, bool)
}

// primitiveTypes back the `type` attribute of explicit constructor params.
var primitiveTypes = map[string]reflect.Type{
	"string":  reflect.TypeFor[string](),
	"number":  reflect.TypeFor[float64](),
	"int":     reflect.TypeFor[int](),
	"bool":    reflect.TypeFor[bool](),
	"any":     reflect.TypeFor[any](),
	"list":    reflect.TypeFor[[]any](),
	"strings": reflect.TypeFor[[]string](),
	"map":     reflect.TypeFor[map[string]any](),
}

// IsPrimitiveType reports whether name is a built-in parameter type.
func IsPrimitiveType(name string) bool {
	_, ok := primitiveTypes[name]
	return ok
}
