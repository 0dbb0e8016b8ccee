package dag

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	g := New()
	require.NotNil(t, g)
	assert.NotNil(t, g.nodes)
	assert.Empty(t, g.nodes)
}

func TestAddNode(t *testing.T) {
	g := New()

	g.AddNode("a")
	assert.Len(t, g.nodes, 1)
	nodeA, ok := g.nodes["a"]
	require.True(t, ok)
	assert.Equal(t, "a", nodeA.id)

	g.AddNode("a") // Test idempotency
	assert.Len(t, g.nodes, 1)

	g.AddNode("b")
	assert.Equal(t, []string{"a", "b"}, g.order)
	assert.True(t, g.Has("b"))
	assert.False(t, g.Has("c"))
}

func TestAddEdge(t *testing.T) {
	t.Run("success case", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddNode("b")

		require.NoError(t, g.AddEdge("a", "b")) // b depends on a
		require.NoError(t, g.AddEdge("a", "b")) // duplicate is ignored

		deps, err := g.Dependencies("b")
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, deps)

		dependents, err := g.Dependents("a")
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, dependents)
	})

	t.Run("error cases", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddNode("b")

		err := g.AddEdge("dne", "a")
		assert.ErrorIs(t, err, ErrNodeNotFound)
		assert.ErrorContains(t, err, "source node not found")

		err = g.AddEdge("a", "dne")
		assert.ErrorContains(t, err, "destination node not found")

		err = g.AddEdge("a", "a")
		assert.ErrorIs(t, err, ErrSelfReference)

		_, err = g.Dependencies("dne")
		assert.ErrorIs(t, err, ErrNodeNotFound)
	})
}

func TestDetectCycles(t *testing.T) {
	t.Run("empty graph has no cycles", func(t *testing.T) {
		g := New()
		assert.NoError(t, g.DetectCycles())
	})

	t.Run("valid dag has no cycles", func(t *testing.T) {
		g := New()
		for _, id := range []string{"a", "b", "c", "d"} {
			g.AddNode(id)
		}
		require.NoError(t, g.AddEdge("a", "b"))
		require.NoError(t, g.AddEdge("b", "c"))
		require.NoError(t, g.AddEdge("a", "c")) // Transitive edge
		require.NoError(t, g.AddEdge("c", "d"))
		assert.NoError(t, g.DetectCycles())
	})

	t.Run("simple direct cycle names both participants", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddNode("b")
		require.NoError(t, g.AddEdge("a", "b"))
		require.NoError(t, g.AddEdge("b", "a"))

		err := g.DetectCycles()
		var cycle *CycleError
		require.True(t, errors.As(err, &cycle))
		assert.Equal(t, []string{"a", "b", "a"}, cycle.Path)
		assert.ErrorContains(t, err, "cycle detected: a -> b -> a")
	})

	t.Run("cycle in a disjoint component is detected", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddNode("b")
		require.NoError(t, g.AddEdge("a", "b"))

		g.AddNode("x")
		g.AddNode("y")
		g.AddNode("z")
		require.NoError(t, g.AddEdge("x", "y"))
		require.NoError(t, g.AddEdge("y", "z"))
		require.NoError(t, g.AddEdge("z", "y"))

		var cycle *CycleError
		require.ErrorAs(t, g.DetectCycles(), &cycle)
		assert.ElementsMatch(t, []string{"y", "z", "y"}, cycle.Path)
	})
}

func TestTopologicalOrder(t *testing.T) {
	g := New()
	for _, id := range []string{"app", "ext", "core"} {
		g.AddNode(id)
	}
	require.NoError(t, g.AddEdge("core", "ext"))
	require.NoError(t, g.AddEdge("ext", "app"))

	order, err := g.TopologicalOrder()
	require.NoError(t, err)
	assert.Equal(t, []string{"core", "ext", "app"}, order)
}
