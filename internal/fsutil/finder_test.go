package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o644))
}

func TestListDir(t *testing.T) {
	// --- Arrange ---
	root := t.TempDir()
	touch(t, filepath.Join(root, "b.hcl"))
	touch(t, filepath.Join(root, "a.hcl"))
	touch(t, filepath.Join(root, "notes.txt"))
	touch(t, filepath.Join(root, ".hidden.hcl"))
	touch(t, filepath.Join(root, "zeta", "z.hcl"))
	touch(t, filepath.Join(root, "alpha", "x.hcl"))

	// --- Act ---
	got, err := ListDir(root, ".hcl")

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "a.hcl"), filepath.Join(root, "b.hcl")}, got.Files)
	assert.Equal(t, []string{filepath.Join(root, "alpha"), filepath.Join(root, "zeta")}, got.Dirs)
}

func TestListDir_Missing(t *testing.T) {
	_, err := ListDir(filepath.Join(t.TempDir(), "nope"), ".hcl")
	require.Error(t, err)
}

func TestFindFilesByExtension(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.hcl"))
	touch(t, filepath.Join(root, "sub", "b.hcl"))
	touch(t, filepath.Join(root, "sub", "c.txt"))

	files, err := FindFilesByExtension(root, ".hcl")

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{filepath.Join(root, "a.hcl"), filepath.Join(root, "sub", "b.hcl")}, files)
	assert.Panics(t, func() { _, _ = FindFilesByExtension(root, "") })
}

func TestStemName(t *testing.T) {
	assert.Equal(t, "core", StemName("/plugins/core.hcl"))
	assert.Equal(t, "ext.v2", StemName("ext.v2.hcl"))
}
