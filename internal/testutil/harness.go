package testutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/bundlegen/internal/app"
	"github.com/vk/bundlegen/internal/cli"
	"github.com/vk/bundlegen/internal/hcl_adapter"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// WriteProject writes files (slash paths relative to the project root) into
// a fresh temp directory and returns its path.
func WriteProject(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	WorkDir   string
	Output    string
	LogOutput string
	Err       error
}

// Run writes the project and runs bundlegen in it with args. -workdir is
// prepended, so args only carry what the test is about.
func Run(t *testing.T, files map[string]string, args ...string) *HarnessResult {
	t.Helper()
	return RunWithContext(context.Background(), t, files, args...)
}

// RunWithContext is Run with a caller-provided context.
func RunWithContext(ctx context.Context, t *testing.T, files map[string]string, args ...string) *HarnessResult {
	t.Helper()

	root := WriteProject(t, files)
	cmd, rest := splitCommand(args)
	full := append(cmd, append([]string{"-workdir", root, "-log-level", "debug"}, rest...)...)

	out := &SafeBuffer{}
	logs := &SafeBuffer{}
	cfg, exit, err := cli.Parse(full, out)
	if err != nil || exit {
		return &HarnessResult{WorkDir: root, Output: out.String(), Err: err}
	}
	cfg.LookupEnv = func(string) (string, bool) { return "", false }

	var runErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				runErr = fmt.Errorf("application startup panicked | %v", r)
			}
		}()
		runErr = app.NewApp(out, logs, cfg, hcl_adapter.NewLoader()).Run(ctx)
	}()

	if os.Getenv("BUNDLEGEN_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
	}
	return &HarnessResult{WorkDir: root, Output: out.String(), LogOutput: logs.String(), Err: runErr}
}

// splitCommand separates a leading command name from the flags.
func splitCommand(args []string) ([]string, []string) {
	if len(args) > 0 && len(args[0]) > 0 && args[0][0] != '-' {
		return args[:1:1], args[1:]
	}
	return nil, args
}
