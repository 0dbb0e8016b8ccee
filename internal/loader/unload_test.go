package loader

import (
	"testing"

	"github.com/specialistvlad/plugtree/internal/plugins"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const recordedCore = `
plugin "core" {}
builder "recorder" {}
extension "/Services" {
  construct "recorder" "Logger" { type = "ConsoleLogger" }
}
`

const recordedExt = `
plugin "ext" { dependencies = ["core"] }
extension "/Services/Logger" {
  construct "recorder" "Sink" { level = "Warn" }
}
`

func TestUnloadAll_ReverseOrder(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	f := newFixture(t, Options{})
	require.NoError(t, f.load(map[string]string{"core.hcl": recordedCore, "ext.hcl": recordedExt}))
	_, err := f.engine.Tree().Unwrap(f.ctx, "/Services/Logger", plugins.Auto)
	require.NoError(t, err)
	require.Equal(t, []string{"/Services/Logger", "/Services/Logger/Sink"}, f.recorder.Built())
	core, ext := f.engine.Find("core"), f.engine.Find("ext")

	// --- Act ---
	err = f.loader.UnloadAll(f.ctx)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{"/Services/Logger/Sink", "/Services/Logger"}, f.recorder.Destroyed())
	assert.Equal(t, []string{"loaded:core", "loaded:ext", "unloaded:ext", "unloaded:core"}, f.recorded())
	assert.Equal(t, plugins.StatusUnloaded, core.Status())
	assert.Equal(t, plugins.StatusUnloaded, ext.Status())
	assert.Nil(t, f.engine.Tree().Find("/Services/Logger"))
	assert.Nil(t, f.engine.Tree().Find("/Services"), "empty ancestors are pruned")
	assert.False(t, f.engine.Tree().Root().HasChildren())
	assert.Zero(t, f.engine.Plugins().Len())
	assert.Empty(t, f.loader.Loaded())
}

func TestUnload_SlavesBeforeMaster(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	f := newFixture(t, Options{})
	require.NoError(t, f.load(map[string]string{
		"core.hcl":       recordedCore,
		"ext.hcl":        recordedExt,
		"core/child.hcl": `plugin "child" {}`,
	}))

	// --- Act ---
	err := f.loader.Unload(f.ctx, f.engine.Find("core"))

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{
		"loaded:core", "loaded:ext", "loaded:child",
		"unloaded:child", "unloaded:ext", "unloaded:core",
	}, f.recorded())
	assert.Empty(t, f.recorder.Destroyed(), "nothing was built, so nothing is destroyed")
	assert.Nil(t, f.engine.Tree().Find("/Services/Logger"))
}

func TestUnload_ThenReload(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	f := newFixture(t, Options{})
	files := map[string]string{"core.hcl": recordedCore}
	require.NoError(t, f.load(files))
	require.NoError(t, f.loader.UnloadAll(f.ctx))

	// --- Act ---
	err := f.load(files)

	// --- Assert ---
	require.NoError(t, err)
	assert.NotNil(t, f.engine.Tree().Find("/Services/Logger").Builtin())
	assert.Equal(t, []string{"core"}, names(f.loader.Loaded()))
}
