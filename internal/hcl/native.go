package hcl

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// ctyToNative recursively converts a cty.Value to its most natural Go
// counterpart. It backs decoding into `any` members.
func ctyToNative(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()

	switch {
	case ty == cty.String:
		return v.AsString(), nil

	case ty == cty.Number:
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, fmt.Errorf("could not convert cty.Number to float64: %w", err)
		}
		return f, nil

	case ty == cty.Bool:
		return v.True(), nil

	case ty.Equals(ObjectType):
		return *(v.EncapsulatedValue().(*any)), nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		slice := make([]any, 0, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			_, val := it.Element()
			nativeVal, err := ctyToNative(val)
			if err != nil {
				return nil, err
			}
			slice = append(slice, nativeVal)
		}
		return slice, nil

	case ty.IsObjectType() || ty.IsMapType():
		goMap := make(map[string]any)
		it := v.ElementIterator()
		for it.Next() {
			key, val := it.Element()
			keyStr := key.AsString()
			nativeVal, err := ctyToNative(val)
			if err != nil {
				return nil, fmt.Errorf("in attribute '%s': %w", keyStr, err)
			}
			goMap[keyStr] = nativeVal
		}
		return goMap, nil

	default:
		return nil, fmt.Errorf("unsupported cty type for 'any' conversion: %s", ty.FriendlyName())
	}
}
