package plugins

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/specialistvlad/plugtree/internal/ctxlog"
)

// memberTag overrides the member name of a struct field.
const memberTag = "plug"

// fieldByName finds an exported field of a struct (or pointer to struct)
// type by tag or by name, ignoring case and underscores, so `max_conns`
// matches MaxConns.
func fieldByName(t reflect.Type, name string) (reflect.StructField, bool) {
	folded := strings.ReplaceAll(name, "_", "")
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return reflect.StructField{}, false
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag, _, _ := strings.Cut(f.Tag.Get(memberTag), ",")
		if tag == "-" {
			continue
		}
		if tag == name || (tag == "" && strings.EqualFold(f.Name, folded)) {
			return f, true
		}
	}
	return reflect.StructField{}, false
}

// structValue dereferences v down to an addressable struct, or reports false.
func structValue(v reflect.Value) (reflect.Value, bool) {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct || !v.CanAddr() {
		return reflect.Value{}, false
	}
	return v, true
}

// mapValue dereferences v down to a map with string keys, or reports false.
func mapValue(v reflect.Value) (reflect.Value, bool) {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Map || v.Type().Key().Kind() != reflect.String || v.IsNil() {
		return reflect.Value{}, false
	}
	return v, true
}

// memberType returns the declared type of a named member of t: a struct
// field, or the element type of a string-keyed map.
func memberType(t reflect.Type, name string) (reflect.Type, bool) {
	if f, ok := fieldByName(t, name); ok {
		return f.Type, true
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() == reflect.Map && t.Key().Kind() == reflect.String {
		return t.Elem(), true
	}
	return nil, false
}

// setMember stores value into the named member of target.
func setMember(target any, name string, value any) error {
	rv := reflect.ValueOf(target)
	if sv, ok := structValue(rv); ok {
		f, ok := fieldByName(sv.Type(), name)
		if !ok {
			return fmt.Errorf("%w: %s has no member %q", ErrUnknownMember, sv.Type(), name)
		}
		return assignTo(sv.FieldByIndex(f.Index), value)
	}
	if mv, ok := mapValue(rv); ok {
		elem := reflect.New(mv.Type().Elem()).Elem()
		if err := assignTo(elem, value); err != nil {
			return err
		}
		mv.SetMapIndex(reflect.ValueOf(name).Convert(mv.Type().Key()), elem)
		return nil
	}
	return fmt.Errorf("%w: %T has no member %q", ErrUnknownMember, target, name)
}

func assignTo(dst reflect.Value, value any) error {
	if value == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}
	v := reflect.ValueOf(value)
	switch {
	case v.Type().AssignableTo(dst.Type()):
		dst.Set(v)
	case v.Kind() == reflect.Pointer && !v.IsNil() && v.Elem().Type().AssignableTo(dst.Type()):
		dst.Set(v.Elem())
	case v.Type().ConvertibleTo(dst.Type()) && v.Kind() == dst.Kind():
		dst.Set(v.Convert(dst.Type()))
	default:
		return fmt.Errorf("cannot assign %T to %s", value, dst.Type())
	}
	return nil
}

// attach appends a child construct's value to its owner object. Rules, in
// order: Appender, the owner's TypeSpec Add, string-keyed map owner, a
// field named like the child, the owner's default member. An owner that
// matches none of them does not collect children.
func (e *Engine) attach(ctx context.Context, owner any, name string, child any) error {
	logger := ctxlog.FromContext(ctx)
	if owner == nil || child == nil {
		return nil
	}

	if a, ok := owner.(Appender); ok {
		return a.Append(name, child)
	}

	spec, _ := e.typeOf(reflect.TypeOf(owner))
	if spec != nil && spec.Add != nil {
		return spec.Add(owner, name, child)
	}

	rv := reflect.ValueOf(owner)
	if mv, ok := mapValue(rv); ok {
		elem := reflect.New(mv.Type().Elem()).Elem()
		if err := assignTo(elem, child); err != nil {
			return err
		}
		mv.SetMapIndex(reflect.ValueOf(name).Convert(mv.Type().Key()), elem)
		return nil
	}

	sv, ok := structValue(rv)
	if !ok {
		logger.Debug("Owner does not collect children.", "owner", fmt.Sprintf("%T", owner), "child", name)
		return nil
	}
	if f, ok := fieldByName(sv.Type(), name); ok {
		return appendField(sv.FieldByIndex(f.Index), name, child)
	}
	if spec != nil && spec.DefaultMember != "" {
		if f, ok := fieldByName(sv.Type(), spec.DefaultMember); ok {
			return appendField(sv.FieldByIndex(f.Index), name, child)
		}
	}
	logger.Debug("Owner does not collect children.", "owner", fmt.Sprintf("%T", owner), "child", name)
	return nil
}

// appendField appends to slices, sets map entries, and assigns otherwise.
func appendField(field reflect.Value, name string, child any) error {
	switch field.Kind() {
	case reflect.Slice:
		if field.Type().Elem() != reflect.TypeOf(child) && !reflect.TypeOf(child).AssignableTo(field.Type().Elem()) {
			// A slice member may be assigned as a whole.
			return assignTo(field, child)
		}
		field.Set(reflect.Append(field, reflect.ValueOf(child)))
		return nil
	case reflect.Map:
		if field.Type().Key().Kind() != reflect.String {
			return assignTo(field, child)
		}
		if field.IsNil() {
			field.Set(reflect.MakeMap(field.Type()))
		}
		elem := reflect.New(field.Type().Elem()).Elem()
		if err := assignTo(elem, child); err != nil {
			return err
		}
		field.SetMapIndex(reflect.ValueOf(name).Convert(field.Type().Key()), elem)
		return nil
	}
	return assignTo(field, child)
}
