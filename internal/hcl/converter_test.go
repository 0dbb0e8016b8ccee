package hcl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

type sink struct{ Level string }

func TestConverter_Decode(t *testing.T) {
	ctx := context.Background()
	c := NewConverter()

	t.Run("string to int converts", func(t *testing.T) {
		var n int
		require.NoError(t, c.Decode(ctx, cty.StringVal("42"), &n))
		assert.Equal(t, 42, n)
	})

	t.Run("list into slice", func(t *testing.T) {
		var s []string
		require.NoError(t, c.Decode(ctx, cty.TupleVal([]cty.Value{cty.StringVal("a"), cty.StringVal("b")}), &s))
		assert.Equal(t, []string{"a", "b"}, s)
	})

	t.Run("any receives native values", func(t *testing.T) {
		var v any
		require.NoError(t, c.Decode(ctx, cty.ObjectVal(map[string]cty.Value{"n": cty.NumberIntVal(1)}), &v))
		assert.Equal(t, map[string]any{"n": float64(1)}, v)
	})

	t.Run("capsule assigned directly", func(t *testing.T) {
		obj := &sink{Level: "Debug"}
		var dst *sink
		require.NoError(t, c.Decode(ctx, ObjectVal(obj), &dst))
		assert.Same(t, obj, dst)
	})

	t.Run("capsule of the wrong type fails", func(t *testing.T) {
		var dst string
		err := c.Decode(ctx, ObjectVal(&sink{}), &dst)
		assert.ErrorContains(t, err, "cannot assign")
	})

	t.Run("null resets to zero", func(t *testing.T) {
		s := "x"
		require.NoError(t, c.Decode(ctx, cty.NullVal(cty.String), &s))
		assert.Empty(t, s)
	})

	t.Run("non-pointer target", func(t *testing.T) {
		assert.Error(t, c.Decode(ctx, cty.StringVal("x"), "x"))
	})
}

func TestConverter_ToCtyValue(t *testing.T) {
	c := NewConverter()

	v, err := c.ToCtyValue("hello")
	require.NoError(t, err)
	assert.Equal(t, cty.StringVal("hello"), v)

	obj := &sink{}
	v, err = c.ToCtyValue(obj)
	require.NoError(t, err)
	assert.True(t, v.Type().Equals(ObjectType))

	v, err = c.ToCtyValue(map[string][]int{"a": {1}})
	require.NoError(t, err)
	assert.True(t, v.Type().IsMapType())

	v, err = c.ToCtyValue(nil)
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}
