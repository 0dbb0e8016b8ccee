package hcl

import (
	"context"
	"fmt"
	"reflect"

	"github.com/specialistvlad/plugtree/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// ObjectType is the capsule type carrying live Go objects (built constructs,
// parser results without a cty shape) through expression evaluation.
var ObjectType = cty.Capsule("object", reflect.TypeOf((*any)(nil)).Elem())

// ObjectVal wraps a Go value in an ObjectType capsule.
func ObjectVal(v any) cty.Value {
	return cty.CapsuleVal(ObjectType, &v)
}

// Converter is the HCL-specific implementation of the config.Converter interface.
type Converter struct{}

// NewConverter creates a new HCL converter.
func NewConverter() *Converter {
	return &Converter{}
}

// Decode converts val into the Go value pointed to by target. Capsules are
// assigned directly, interface targets receive the most natural Go value,
// everything else goes through cty conversion.
func (c *Converter) Decode(ctx context.Context, val cty.Value, target any) error {
	logger := ctxlog.FromContext(ctx)

	ptr := reflect.ValueOf(target)
	if ptr.Kind() != reflect.Pointer || ptr.IsNil() {
		return fmt.Errorf("target for decoding must be a non-nil pointer, got %T", target)
	}
	dst := ptr.Elem()

	if val.IsNull() {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}
	if !val.IsKnown() {
		return fmt.Errorf("cannot decode an unknown value")
	}

	if val.Type().Equals(ObjectType) {
		obj := *(val.EncapsulatedValue().(*any))
		return assign(dst, obj)
	}

	if dst.Kind() == reflect.Interface {
		native, err := ctyToNative(val)
		if err != nil {
			return err
		}
		return assign(dst, native)
	}

	impliedType, err := gocty.ImpliedType(dst.Interface())
	if err != nil {
		logger.Debug("Could not imply cty.Type from Go type, attempting direct decoding.", "go_type", dst.Type().String(), "error", err)
		return gocty.FromCtyValue(val, target)
	}

	logger.Debug("Preparing to decode value.",
		"source_type", val.Type().FriendlyName(),
		"target_type", impliedType.FriendlyName(),
	)

	convertedVal, err := convert.Convert(val, impliedType)
	if err != nil {
		return fmt.Errorf("cannot convert %s to required type %s: %w", val.Type().FriendlyName(), impliedType.FriendlyName(), err)
	}

	return gocty.FromCtyValue(convertedVal, target)
}

// ToCtyValue converts a native Go value into its corresponding cty.Value.
// Only plain data (scalars and collections of scalars) is converted; every
// other value keeps its identity in an ObjectType capsule.
func (c *Converter) ToCtyValue(v any) (cty.Value, error) {
	if v == nil {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}
	if cv, ok := v.(cty.Value); ok {
		return cv, nil
	}
	if !plainData(reflect.TypeOf(v)) {
		return ObjectVal(v), nil
	}
	ty, err := gocty.ImpliedType(v)
	if err != nil {
		return ObjectVal(v), nil
	}
	val, err := gocty.ToCtyValue(v, ty)
	if err != nil {
		return ObjectVal(v), nil
	}
	return val, nil
}

func assign(dst reflect.Value, v any) error {
	if v == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}
	rv := reflect.ValueOf(v)
	switch {
	case rv.Type().AssignableTo(dst.Type()):
		dst.Set(rv)
	case rv.Type().ConvertibleTo(dst.Type()) && rv.Kind() == dst.Kind():
		dst.Set(rv.Convert(dst.Type()))
	default:
		return fmt.Errorf("cannot assign %T to %s", v, dst.Type())
	}
	return nil
}

// plainData reports whether t is made of scalars, slices and string-keyed
// maps only.
func plainData(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	case reflect.Slice, reflect.Array:
		return plainData(t.Elem())
	case reflect.Map:
		return t.Key().Kind() == reflect.String && plainData(t.Elem())
	}
	return false
}
