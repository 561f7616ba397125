package platform

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dj8891/sonaric-desktop/internal/errors"
	"github.com/dj8891/sonaric-desktop/internal/probe"
	"github.com/dj8891/sonaric-desktop/internal/runner"
	"github.com/dj8891/sonaric-desktop/internal/runner/runnertest"
)

type staticFinder struct {
	path string
}

func (f staticFinder) Find() (string, bool) {
	return f.path, f.path != ""
}

type stubGUI struct {
	err error
	url string
}

func (g *stubGUI) Probe(ctx context.Context, url string) error {
	g.url = url
	return g.err
}

func TestTargetFor(t *testing.T) {
	tests := []struct {
		goos     string
		expected Target
		wantErr  bool
	}{
		{"darwin", MacOS, false},
		{"linux", LinuxNative, false},
		{"windows", WindowsWSL, false},
		{"plan9", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			got, err := TargetFor(tt.goos)
			if tt.wantErr {
				assert.True(t, errors.Is(err, errors.ErrUnsupportedTarget))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	assert.Equal(t, "windows-wsl", WindowsWSL.String())
}

func TestUnixAdapter(t *testing.T) {
	r := &runnertest.MockRunner{}
	r.On("Run", "/usr/local/bin/sonaric", "version").
		Return(runnertest.Failed(1, "CLI version: v1.2.0, daemon is not running\n"), nil)
	gui := &stubGUI{}

	a := NewLinuxAdapter(staticFinder{"/usr/local/bin/sonaric"}, r, gui, "http://localhost:44004", nil)
	ctx := context.Background()

	rt, err := a.LocateRuntime(ctx)
	require.NoError(t, err)
	assert.Equal(t, Runtime{Found: true, Path: "/usr/local/bin/sonaric"}, rt)

	out, err := a.QueryVersion(ctx, rt)
	require.NoError(t, err)
	assert.Contains(t, out.Stdout, "daemon is not running")

	require.NoError(t, a.ProbeGUI(ctx))
	assert.Equal(t, "http://localhost:44004", gui.url)
	assert.Equal(t, LinuxNative, a.Target())
}

func TestUnixAdapter_NotFound(t *testing.T) {
	a := NewMacAdapter(staticFinder{}, &runnertest.MockRunner{}, &stubGUI{}, "", nil)

	rt, err := a.LocateRuntime(context.Background())
	require.NoError(t, err)
	assert.False(t, rt.Found)
	assert.NotEmpty(t, rt.Reason)
	assert.Equal(t, MacOS, a.Target())
}

func TestWindowsWSLAdapter_LocateRuntime(t *testing.T) {
	wsl2 := runnertest.Ok("WSL version: 2.0.9.0\r\n")

	tests := []struct {
		name     string
		setup    func(r *runnertest.MockRunner)
		expected Runtime
	}{
		{
			name: "WSL absent",
			setup: func(r *runnertest.MockRunner) {
				r.On("RunShell", "wsl", "--version").Return(runnertest.Failed(1, ""), nil)
			},
			expected: Runtime{Reason: errors.ErrWSLNotInstalled.Message},
		},
		{
			name: "WSL 1",
			setup: func(r *runnertest.MockRunner) {
				r.On("RunShell", "wsl", "--version").Return(runnertest.Ok("WSL version: 1.0.0\r\n"), nil)
			},
			expected: Runtime{Reason: errors.ErrWSLVersion1.Message},
		},
		{
			name: "distribution missing",
			setup: func(r *runnertest.MockRunner) {
				r.On("RunShell", "wsl", "--version").Return(wsl2, nil)
				r.On("RunShell", "wsl", "--list").Return(runnertest.Ok("docker-desktop\r\n"), nil)
			},
			expected: Runtime{Reason: errors.ErrDistroNotInstalled.Message},
		},
		{
			name: "distribution stopped",
			setup: func(r *runnertest.MockRunner) {
				r.On("RunShell", "wsl", "--version").Return(wsl2, nil)
				r.On("RunShell", "wsl", "--list").Return(runnertest.Ok("Ubuntu-22.04 (Default)\r\n"), nil)
				r.On("RunShell", "wsl", "--list", "--running").Return(runnertest.Failed(1, ""), nil)
			},
			expected: Runtime{Found: true, Stopped: true, Reason: errors.ErrDistroNotRunning.Message},
		},
		{
			name: "distribution running",
			setup: func(r *runnertest.MockRunner) {
				r.On("RunShell", "wsl", "--version").Return(wsl2, nil)
				r.On("RunShell", "wsl", "--list").Return(runnertest.Ok("Ubuntu-22.04 (Default)\r\n"), nil)
				r.On("RunShell", "wsl", "--list", "--running").Return(runnertest.Ok("Ubuntu-22.04 (Default)\r\n"), nil)
			},
			expected: Runtime{Found: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &runnertest.MockRunner{}
			tt.setup(r)
			wsl := probe.NewWSL(r, "Ubuntu-22.04", "sonaric", nil)
			a := NewWindowsWSLAdapter(FromWSL(wsl), &stubGUI{}, "", nil)

			rt, err := a.LocateRuntime(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.expected, rt)
		})
	}
}

func TestWindowsWSLAdapter_QueryVersionKeepsStderr(t *testing.T) {
	r := &runnertest.MockRunner{}
	r.On("RunShellUTF8", "utf8", "wsl", "--distribution", "Ubuntu-22.04", "--user", "root",
		"--exec", "/bin/bash", "-c", "sonaric version").
		Return(runner.Result{Success: false, Stdout: "CLI version: v1.2.0, \n", Stderr: "daemon is not running\n"}, nil)

	a := NewWindowsWSLAdapter(FromWSL(probe.NewWSL(r, "Ubuntu-22.04", "sonaric", nil)), &stubGUI{}, "", nil)
	out, err := a.QueryVersion(context.Background(), Runtime{Found: true})
	require.NoError(t, err)
	assert.Equal(t, "daemon is not running\n", out.Stderr)
	assert.Contains(t, out.Combined(), "CLI version")
}

func TestNewAdapter(t *testing.T) {
	deps := Deps{Finder: staticFinder{}, Runner: &runnertest.MockRunner{}, GUI: &stubGUI{}}

	a, err := NewAdapter(MacOS, deps)
	require.NoError(t, err)
	assert.Equal(t, MacOS, a.Target())

	_, err = NewAdapter(WindowsWSL, deps)
	assert.Error(t, err, "WSL probe required")

	deps.WSL = probe.NewWSL(deps.Runner, "Ubuntu-22.04", "sonaric", nil)
	a, err = NewAdapter(WindowsWSL, deps)
	require.NoError(t, err)
	assert.Equal(t, WindowsWSL, a.Target())
}

func TestDaemonVersion(t *testing.T) {
	r := &runnertest.MockRunner{}
	r.On("Run", "/opt/homebrew/bin/sonaric", "version").
		Return(runnertest.Ok("CLI version: v1.2.0, daemon version: v1.2.0\n"), nil)
	a := NewMacAdapter(staticFinder{"/opt/homebrew/bin/sonaric"}, r, &stubGUI{}, "", nil)

	v, err := DaemonVersion(a)(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.2.0", v.String())

	missing := NewMacAdapter(staticFinder{}, r, &stubGUI{}, "", nil)
	_, err = DaemonVersion(missing)(context.Background())
	assert.Error(t, err)

	failing := &runnertest.MockRunner{}
	failing.On("Run", "/opt/homebrew/bin/sonaric", "version").Return(runner.Result{}, stderrors.New("boom"))
	_, err = DaemonVersion(NewMacAdapter(staticFinder{"/opt/homebrew/bin/sonaric"}, failing, &stubGUI{}, "", nil))(context.Background())
	assert.EqualError(t, err, "boom")
}
