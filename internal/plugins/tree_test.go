package plugins

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/plugtree/internal/config"
	"github.com/specialistvlad/plugtree/internal/treepath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsurePath_Idempotent(t *testing.T) {
	tree := NewTree()

	first, err := tree.EnsurePath("/Services/Logger", "")
	require.NoError(t, err)
	second, err := tree.EnsurePath("/Services/Logger", "")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, "/Services/Logger", first.Path())
	assert.Len(t, tree.Root().Children(), 1)
}

func TestFind_AfterEnsurePath(t *testing.T) {
	tree := NewTree()
	paths := []string{"/a", "/a/b", "/a/b/c", "/x.y/$z", "/with-dash/under_score"}

	for _, p := range paths {
		n, err := tree.EnsurePath(p, "")
		require.NoError(t, err)
		assert.Same(t, n, tree.Find(p), p)
	}
}

func TestFind_RelativeTokens(t *testing.T) {
	tree := NewTree()
	c, err := tree.EnsurePath("/a/b/c", "")
	require.NoError(t, err)
	b := tree.Find("/a/b")

	testCases := []struct {
		name string
		from *Node
		path string
		want *Node
	}{
		{"dot", c, ".", c},
		{"parent", c, "..", b},
		{"sibling walk", c, "../c", c},
		{"absolute from child", c, "/a/b", b},
		{"double slash", tree.Root(), "/a//b", b},
		{"root", c, "/", tree.Root()},
		{"missing", c, "../missing", nil},
		{"above root", tree.Root(), "..", nil},
		{"illegal", c, "bad name", nil},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Same(t, tc.want, tc.from.Find(tc.path))
		})
	}
}

func TestEnsurePath_IllegalName(t *testing.T) {
	tree := NewTree()
	_, err := tree.EnsurePath("/a/b c", "")
	require.ErrorIs(t, err, treepath.ErrIllegalName)
	assert.Nil(t, tree.Find("/a"), "nothing is created on failure")
}

func TestEnsurePath_Position(t *testing.T) {
	tree := NewTree()
	for _, step := range []struct{ name, pos string }{
		{"b", ""},
		{"d", "last"},
		{"a", "first"},
		{"c", "before:d"},
		{"e", "after:d"},
		{"z", "1"},
		{"y", "after:missing"},
	} {
		_, err := tree.EnsurePath("/root/"+step.name, step.pos)
		require.NoError(t, err)
	}

	got := tree.Find("/root").ChildNames()
	want := []string{"a", "z", "b", "c", "d", "e", "y"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("child order mismatch (-want +got):\n%s", diff)
	}
}

func TestMount(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects constructs", func(t *testing.T) {
		f := newFixture(t)
		p := f.plugin("core")
		_, err := f.tree.Mount(ctx, "/x", NewBuiltin(p, &config.Construct{Name: "x"}))
		assert.ErrorIs(t, err, ErrConstructMount)
	})

	t.Run("replaces value and fires events in order", func(t *testing.T) {
		tree := NewTree()
		var events []EventKind
		unsubscribe := tree.Subscribe(func(ev TreeEvent) { events = append(events, ev.Kind) })

		ok, err := tree.Mount(ctx, "/cfg", "one")
		require.NoError(t, err)
		require.True(t, ok)
		ok, err = tree.Mount(ctx, "/cfg", "two")
		require.NoError(t, err)
		require.True(t, ok)

		v, err := tree.Unwrap(ctx, "/cfg", Auto)
		require.NoError(t, err)
		assert.Equal(t, "two", v)
		assert.Equal(t, []EventKind{EventMounting, EventMounted, EventMounting, EventMounted}, events)

		unsubscribe()
		_, _ = tree.Mount(ctx, "/cfg", "three")
		assert.Len(t, events, 4)
	})

	t.Run("is a no-op on a built construct", func(t *testing.T) {
		f := newFixture(t)
		p := f.plugin("core")
		b := f.mount(p, "/", &config.Construct{Name: "obj", Type: "map"})
		built, err := b.Obtain(ctx, Auto)
		require.NoError(t, err)

		ok, err := f.tree.Mount(ctx, "/obj", "replacement")
		require.NoError(t, err)
		assert.False(t, ok)

		v, err := f.tree.Unwrap(ctx, "/obj", Never)
		require.NoError(t, err)
		assert.Equal(t, built, v)
	})

	t.Run("replaces an unbuilt construct", func(t *testing.T) {
		f := newFixture(t)
		p := f.plugin("core")
		f.mount(p, "/", &config.Construct{Name: "obj", Type: "map"})

		ok, err := f.tree.Mount(ctx, "/obj", "replacement")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Nil(t, f.tree.Find("/obj").Builtin())
	})
}

func TestMountConstruct(t *testing.T) {
	f := newFixture(t)
	core := f.plugin("core")
	ext := f.plugin("ext", "core")

	b := f.mount(core, "/Services", &config.Construct{Name: "Logger"})
	n := f.tree.Find("/Services/Logger")
	require.NotNil(t, n)
	assert.Same(t, b, n.Builtin())
	assert.Same(t, n, b.Node())

	t.Run("duplicate sibling construct is an error", func(t *testing.T) {
		dup := NewBuiltin(ext, &config.Construct{Scheme: "object", Name: "Logger"})
		_, err := f.tree.MountConstruct(f.ctx, "/Services", dup)
		require.ErrorIs(t, err, ErrDuplicateConstruct)
		assert.ErrorContains(t, err, "declared by plugin core, redeclared by ext")
		assert.Same(t, b, n.Builtin())
	})

	t.Run("illegal construct name", func(t *testing.T) {
		bad := NewBuiltin(ext, &config.Construct{Name: "a/b"})
		_, err := f.tree.MountConstruct(f.ctx, "/Services", bad)
		assert.ErrorIs(t, err, treepath.ErrIllegalName)
	})

	t.Run("position hint orders siblings", func(t *testing.T) {
		f.mount(ext, "/Services", &config.Construct{Name: "Cache", Position: "first"})
		assert.Equal(t, []string{"Cache", "Logger"}, f.tree.Find("/Services").ChildNames())
	})
}

func TestUnmount(t *testing.T) {
	t.Run("captures the construct without building it", func(t *testing.T) {
		f := newFixture(t)
		calls := 0
		p := f.plugin("core")
		p.RegisterBuilder("counting", BuilderFunc(func(ctx context.Context, bc *BuildContext) (any, error) {
			calls++
			return "built", nil
		}))
		b := f.mount(p, "/", &config.Construct{Scheme: "counting", Name: "leaf"})

		v, ok := f.tree.Unmount(f.ctx, "/leaf")

		require.True(t, ok)
		assert.Same(t, b, v)
		assert.Zero(t, calls)
		assert.Nil(t, f.tree.Find("/leaf"), "childless node is removed")
	})

	t.Run("keeps a node that still has children", func(t *testing.T) {
		tree := NewTree()
		_, err := tree.Mount(context.Background(), "/a", "parent")
		require.NoError(t, err)
		_, err = tree.EnsurePath("/a/b", "")
		require.NoError(t, err)

		v, ok := tree.Unmount(context.Background(), "/a")

		require.True(t, ok)
		assert.Equal(t, "parent", v)
		n := tree.Find("/a")
		require.NotNil(t, n)
		assert.True(t, n.IsEmpty())
	})

	t.Run("missing path", func(t *testing.T) {
		_, ok := NewTree().Unmount(context.Background(), "/nope")
		assert.False(t, ok)
	})

	t.Run("prunes empty ancestors", func(t *testing.T) {
		ctx := context.Background()
		tree := NewTree()
		_, err := tree.Mount(ctx, "/Services/Deep/Logger", "logger")
		require.NoError(t, err)
		_, err = tree.Mount(ctx, "/Services/Kept", "kept")
		require.NoError(t, err)
		_, err = tree.Mount(ctx, "/Other/Leaf", "leaf")
		require.NoError(t, err)

		_, ok := tree.Unmount(ctx, "/Services/Deep/Logger")
		require.True(t, ok)
		_, ok = tree.Unmount(ctx, "/Other/Leaf")
		require.True(t, ok)

		assert.Nil(t, tree.Find("/Services/Deep"))
		require.NotNil(t, tree.Find("/Services/Kept"), "a sibling keeps the shared ancestor")
		assert.Nil(t, tree.Find("/Other"))
		assert.Equal(t, []string{"Services"}, tree.Root().ChildNames())
	})
}

func TestOwnerNode(t *testing.T) {
	ctx := context.Background()
	tree := NewTree()
	_, err := tree.Mount(ctx, "/app", "owner")
	require.NoError(t, err)
	leaf, err := tree.EnsurePath("/app/empty/deeper/leaf", "")
	require.NoError(t, err)

	owner := tree.OwnerNode(leaf)
	require.NotNil(t, owner)
	assert.Equal(t, "/app", owner.Path())
	assert.Nil(t, tree.OwnerNode(tree.Find("/app")))
}

func TestOwnerNode_DoesNotBuild(t *testing.T) {
	f := newFixture(t)
	calls := 0
	p := f.plugin("core")
	p.RegisterBuilder("counting", BuilderFunc(func(ctx context.Context, bc *BuildContext) (any, error) {
		calls++
		return map[string]any{}, nil
	}))
	f.mount(p, "/", &config.Construct{Scheme: "counting", Name: "parent"})
	leaf, err := f.tree.EnsurePath("/parent/leaf", "")
	require.NoError(t, err)

	owner := f.tree.OwnerNode(leaf)

	require.NotNil(t, owner)
	assert.Equal(t, "/parent", owner.Path())
	assert.Zero(t, calls)
	assert.Nil(t, owner.Peek())
}
