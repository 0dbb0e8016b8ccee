package env_vars_test

import (
	"testing"

	"github.com/specialistvlad/plugtree/internal/app"
	"github.com/specialistvlad/plugtree/modules/core"
	"github.com/specialistvlad/plugtree/modules/env_vars"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv(t *testing.T) {
	t.Setenv("PLUGTREE_TEST_SET", "value")

	testCases := []struct {
		name    string
		text    string
		want    any
		wantErr bool
	}{
		{name: "set variable", text: "PLUGTREE_TEST_SET", want: "value"},
		{name: "set variable ignores default", text: "PLUGTREE_TEST_SET:other", want: "value"},
		{name: "default for unset variable", text: "PLUGTREE_TEST_UNSET:fallback", want: "fallback"},
		{name: "empty default", text: "PLUGTREE_TEST_UNSET:", want: ""},
		{name: "unset without default", text: "PLUGTREE_TEST_UNSET", wantErr: true},
		{name: "empty name", text: " ", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := env_vars.ParseEnv(t.Context(), nil, tc.text)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEnvironment_FromConstruct(t *testing.T) {
	// --- Arrange ---
	t.Setenv("PLUGTREE_TEST_PREFIX", "PLUGTREE_TEST_")
	t.Setenv("PLUGTREE_TEST_A", "1")

	a, _ := app.SetupAppTest(t, map[string]string{"main.hcl": `
plugin "main" {
  assembly "env_vars" {}
}
builder "object" {}
parser "env" {}
extension "/" {
  construct "object" "Env" {
    type   = "environment"
    prefix = env("PLUGTREE_TEST_PREFIX")
  }
}
`}, &core.Module{}, &env_vars.Module{})
	require.NoError(t, a.Load(a.Context()))

	// --- Act ---
	v, err := a.Unwrap(a.Context(), "/Env")

	// --- Assert ---
	require.NoError(t, err)
	env := v.(*env_vars.Environment)
	assert.Equal(t, "PLUGTREE_TEST_", env.Prefix)
	got, ok := env.Get("PLUGTREE_TEST_A")
	assert.True(t, ok)
	assert.Equal(t, "1", got)
	assert.NotContains(t, env.Names(), "PATH")
}
