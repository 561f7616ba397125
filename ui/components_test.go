package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dj8891/sonaric-desktop/internal/lifecycle"
	"github.com/dj8891/sonaric-desktop/internal/version"
)

func TestRenderState(t *testing.T) {
	tests := []struct {
		res      lifecycle.Result
		contains []string
	}{
		{lifecycle.Result{State: lifecycle.Ready}, []string{"Sonaric is running", "[ok]"}},
		{lifecycle.Result{State: lifecycle.NeedsInstall, Reason: "sonaric is not installed"}, []string{"[install]", "sonaric is not installed"}},
		{lifecycle.Result{State: lifecycle.NeedsStart}, []string{"not running", "[start]"}},
		{lifecycle.Result{State: lifecycle.UpdateAvailable, Reason: "sonaric 1.3.0 is available"}, []string{"[update]", "1.3.0"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.res.State), func(t *testing.T) {
			out := RenderState(tt.res)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
		})
	}
}

func TestRenderStatusBar(t *testing.T) {
	assert.Contains(t, RenderStatusBar("Stopping...", false), "▶ Stopping...")
	assert.Contains(t, RenderStatusBar("Successfully stopped", true), "✓ Successfully stopped")
}

func TestTailLines(t *testing.T) {
	assert.Equal(t, []string{"a"}, tailLines([]string{"a"}, 2))
	assert.Equal(t, []string{"b", "c"}, tailLines([]string{"a", "b", "c"}, 2))
}

func TestRenderVersionTable(t *testing.T) {
	var buf bytes.Buffer
	err := RenderVersionTable(&buf, version.Payload{
		App:    version.Info{Current: "0.3.0", Latest: "0.3.0", UpToDate: true},
		Daemon: version.Info{Current: "1.2.0", Latest: "1.3.0"},
		GUI:    version.Unknown(),
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "sonaric daemon")
	assert.Contains(t, out, "update available")
	assert.Contains(t, out, "up to date")
	assert.Contains(t, out, "n/a")
}
