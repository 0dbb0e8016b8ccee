package app

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var twoPlugins = map[string]string{
	"base.hcl": `
plugin "base" {
  assembly "core" {}
  assembly "env_vars" {}
}
builder "object" {}

extension "/Objects" {
  construct "object" "Env" {
    type = "environment"
  }
}
`,
	"ext.hcl": `plugin "ext" { dependencies = ["base"] }`,
}

func TestHealthHandler_ReportsLoadedPlugins(t *testing.T) {
	// --- Arrange ---
	a, _ := SetupAppTest(t, twoPlugins)
	require.NoError(t, a.Load(a.Context()))
	rec := httptest.NewRecorder()

	// --- Act ---
	a.healthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	// --- Assert ---
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK plugins=2\n", rec.Body.String())
}

func TestWriteTree_DoesNotMaterialize(t *testing.T) {
	// --- Arrange ---
	a, _ := SetupAppTest(t, twoPlugins)
	require.NoError(t, a.Load(a.Context()))
	out := &bytes.Buffer{}

	// --- Act ---
	require.NoError(t, WriteTree(out, a.Tree()))
	_, err := a.Unwrap(a.Context(), "/Objects/Env")
	require.NoError(t, err)
	after := &bytes.Buffer{}
	require.NoError(t, WriteTree(after, a.Tree()))

	// --- Assert ---
	assert.Contains(t, out.String(), "\n  Objects\n    Env [object plugin=base type=environment]\n")
	assert.Contains(t, after.String(), "    Env [object plugin=base type=environment built]\n")
}

func TestNewConfig(t *testing.T) {
	t.Parallel()

	_, err := NewConfig(Config{})
	assert.Error(t, err, "a plugins path is required")

	_, err = NewConfig(Config{PluginsPath: "dir", HealthcheckPort: -1})
	assert.Error(t, err)

	cfg, err := NewConfig(Config{PluginsPath: "dir"})
	require.NoError(t, err)
	assert.Equal(t, "dir", cfg.PluginsPath)
}
