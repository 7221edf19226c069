// Package testutil provides an integration test harness that opens an App
// over manifest files written to a temporary directory.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/symlib/internal/app"
	"github.com/specialistvlad/symlib/internal/manifest"
	"github.com/stretchr/testify/require"
)

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput func() string
	Err       error
	App       *app.App
}

// RunIntegrationTest opens an App over files using a default background
// context.
func RunIntegrationTest(t *testing.T, files map[string]string, bindings *manifest.Bindings) *HarnessResult {
	t.Helper()
	return RunIntegrationTestWithContext(context.Background(), t, files, bindings)
}

// RunIntegrationTestWithContext writes files (relative path to content) into
// a temporary directory and opens an App over it with debug logging. The App
// is closed when the test ends.
func RunIntegrationTestWithContext(ctx context.Context, t *testing.T, files map[string]string, bindings *manifest.Bindings) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	cfg, err := app.NewConfig(app.Config{ManifestPath: tmpDir, LogLevel: "debug", LogFormat: "text"})
	require.NoError(t, err)

	logBuffer := &app.SafeBuffer{}
	testApp, err := app.Open(ctx, logBuffer, cfg, bindings)
	if testApp != nil {
		t.Cleanup(testApp.Close)
	}

	t.Cleanup(func() {
		if os.Getenv("SYMLIB_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return &HarnessResult{
		LogOutput: logBuffer.String,
		Err:       err,
		App:       testApp,
	}
}
