package e2e

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestHelper provides utilities for E2E tests
type TestHelper struct {
	t       *testing.T
	binPath string
	binDir  string
	config  string
	env     map[string]string
}

// NewTestHelper builds the binary and prepares an isolated HOME and config.
func NewTestHelper(t *testing.T) *TestHelper {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("e2e tests drive a fake sonaric shell script")
	}

	home := t.TempDir()
	h := &TestHelper{
		t:       t,
		binPath: buildBinary(t),
		binDir:  t.TempDir(),
		config:  filepath.Join(home, "config.yaml"),
		env: map[string]string{
			"HOME":            home,
			"XDG_CONFIG_HOME": filepath.Join(home, ".config"),
			"XDG_STATE_HOME":  filepath.Join(home, ".local", "state"),
			"XDG_CACHE_HOME":  filepath.Join(home, ".cache"),
		},
	}

	// 避免命中宿主机上真实安装的 sonaric
	cfg := fmt.Sprintf("version: 1.0.0\nfallback_dirs:\n  - %s\n", filepath.Join(home, "nowhere"))
	require.NoError(t, os.WriteFile(h.config, []byte(cfg), 0o644))
	return h
}

// SetEnv sets an environment variable for every subsequent Run.
func (h *TestHelper) SetEnv(key, value string) {
	h.env[key] = value
}

// FakeSonaric installs a fake `sonaric` on PATH answering `version`.
func (h *TestHelper) FakeSonaric(output string, exitCode int) {
	script := fmt.Sprintf(`#!/bin/bash
case "$1" in
  version)
    echo '%s'
    exit %d
    ;;
  *)
    echo "Unknown command: $*" >&2
    exit 1
    ;;
esac
`, output, exitCode)
	require.NoError(h.t, os.WriteFile(filepath.Join(h.binDir, "sonaric"), []byte(script), 0o755))
}

// ServeText starts an HTTP server answering every request with body.
func (h *TestHelper) ServeText(body string) string {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, body)
	}))
	h.t.Cleanup(srv.Close)
	return srv.URL
}

// Run executes sonaric-desktop with the isolated environment.
func (h *TestHelper) Run(args ...string) (string, error) {
	cmd := exec.Command(h.binPath, append([]string{"--config", h.config}, args...)...)

	// Merge environment variables
	cmdEnv := os.Environ()
	cmdEnv = append(cmdEnv, "PATH="+h.binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	for k, v := range h.env {
		cmdEnv = append(cmdEnv, fmt.Sprintf("%s=%s", k, v))
	}
	cmd.Env = cmdEnv

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	return out.String(), err
}

// AssertContains checks that the output contains the expected string
func (h *TestHelper) AssertContains(output, expected string) {
	require.Contains(h.t, output, expected)
}

// AssertExitCode checks the exit code of an exec.ExitError
func (h *TestHelper) AssertExitCode(err error, expectedCode int, output string) {
	exitErr, ok := err.(*exec.ExitError)
	require.True(h.t, ok, "expected exec.ExitError, got %T\n%s", err, output)
	require.Equal(h.t, expectedCode, exitErr.ExitCode(), strings.TrimSpace(output))
}
