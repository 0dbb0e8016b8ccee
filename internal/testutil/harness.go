// Package testutil holds helpers shared by package tests: a plugin tree
// writer, a captured logger and a recording module.
package testutil

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/plugtree/internal/ctxlog"
	"github.com/stretchr/testify/require"
)

// WritePluginTree writes files (relative path to content) into a fresh
// temporary directory and returns its path.
func WritePluginTree(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

// LogContext returns a context carrying a debug-level logger that writes to
// the returned buffer. With PLUGTREE_TEST_LOGS=true the output is printed
// when the test ends.
func LogContext(t *testing.T) (context.Context, *SafeBuffer) {
	t.Helper()

	buf := &SafeBuffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	t.Cleanup(func() {
		if LogsEnabled() {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), buf.String())
		}
	})
	return ctxlog.WithLogger(context.Background(), logger), buf
}

// LogsEnabled reports whether tests should print captured logs.
func LogsEnabled() bool {
	return os.Getenv("PLUGTREE_TEST_LOGS") == "true"
}
