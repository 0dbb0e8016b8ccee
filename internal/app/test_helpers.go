package app

import (
	"testing"

	"github.com/specialistvlad/plugtree/internal/registry"
	"github.com/specialistvlad/plugtree/internal/testutil"
)

// SetupAppTest writes files into a temporary plugin directory and creates
// an app for it with debug logging. Plugins are unloaded when the test ends.
// Without modules the compiled-in set is used.
func SetupAppTest(t *testing.T, files map[string]string, modules ...registry.Module) (*App, *testutil.SafeBuffer) {
	t.Helper()

	logBuffer := &testutil.SafeBuffer{}
	cfg := &Config{
		PluginsPath: testutil.WritePluginTree(t, files),
		LogFormat:   "text",
		LogLevel:    "debug",
	}
	testApp := NewApp(logBuffer, cfg, modules...)

	t.Cleanup(func() {
		_ = testApp.Close(testApp.Context())
		if testutil.LogsEnabled() {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, logBuffer
}
