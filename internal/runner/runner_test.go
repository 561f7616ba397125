package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dj8891/sonaric-desktop/internal/errors"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell-based process tests require a POSIX sh")
	}
}

func TestExecutor_RunStreamsLinesInOrder(t *testing.T) {
	skipOnWindows(t)

	var got []string
	exec := New(nil)
	result, err := exec.Run(context.Background(), Options{
		Sink: func(line string) { got = append(got, line) },
	}, "sh", "-c", "for i in 1 2 3 4 5; do echo line-$i; done")

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, []string{"line-1", "line-2", "line-3", "line-4", "line-5"}, got)
	assert.Equal(t, "line-1\nline-2\nline-3\nline-4\nline-5\n", result.Stdout)
}

func TestExecutor_RunCombinesStderr(t *testing.T) {
	skipOnWindows(t)

	exec := New(nil)
	result, err := exec.Run(context.Background(), Options{CombineStderr: true},
		"sh", "-c", "echo out; echo err 1>&2")
	require.NoError(t, err)
	assert.Contains(t, result.Stdout, "out\n")
	assert.Contains(t, result.Stdout, "err\n")
	assert.Empty(t, result.Stderr)

	result, err = exec.Run(context.Background(), Options{},
		"sh", "-c", "echo out; echo daemon is not running 1>&2")
	require.NoError(t, err)
	assert.Equal(t, "out\n", result.Stdout)
	assert.Equal(t, "daemon is not running\n", result.Stderr)
}

func TestExecutor_RunNonZeroExit(t *testing.T) {
	skipOnWindows(t)

	script := "for i in $(seq 1 12); do echo step-$i; done; exit 3"
	exec := New(nil)

	t.Run("unchecked", func(t *testing.T) {
		result, err := exec.Run(context.Background(), Options{}, "sh", "-c", script)
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, 3, result.ExitCode)
	})

	t.Run("enforced", func(t *testing.T) {
		result, err := exec.Run(context.Background(), Options{EnforceZeroExit: true}, "sh", "-c", script)
		require.Error(t, err)
		assert.Equal(t, errors.ErrTypeNonZeroExit, errors.GetType(err))
		assert.Equal(t, 3, ExitCodeOf(err))
		assert.Equal(t, 3, result.ExitCode)

		var execErr *ExecError
		require.True(t, errors.As(err, &execErr))
		tail := execErr.Tail
		require.Len(t, tail, TailLines)
		assert.Equal(t, "step-5", tail[0])
		assert.Equal(t, "step-12", tail[TailLines-1])
		assert.True(t, strings.HasPrefix(err.Error(), "command execution failed:\n\nstep-5\n"))
	})
}

func TestExecutor_RunSpawnFailure(t *testing.T) {
	exec := New(nil)
	_, err := exec.Run(context.Background(), Options{}, "definitely-not-a-real-binary-sonaric")

	require.Error(t, err)
	assert.Equal(t, errors.ErrTypeSpawn, errors.GetType(err))
	assert.Equal(t, -1, ExitCodeOf(err))
}

func TestExecutor_RunInvalidUTF8(t *testing.T) {
	skipOnWindows(t)

	exec := New(nil)
	_, err := exec.Run(context.Background(), Options{}, "sh", "-c", `echo ok; printf '\377\376bad\n'; echo never`)

	require.Error(t, err)
	assert.Equal(t, errors.ErrTypeDecode, errors.GetType(err))
	var execErr *ExecError
	require.True(t, errors.As(err, &execErr))
	assert.Equal(t, []string{"ok"}, execErr.Tail)
}

func TestExecutor_RunCancelled(t *testing.T) {
	skipOnWindows(t)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	exec := New(nil)
	_, err := exec.Run(ctx, Options{}, "sh", "-c", "echo started; sleep 10")

	require.Error(t, err)
	assert.Equal(t, errors.ErrTypeCancelled, errors.GetType(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestExecutor_RunShellDecodesUTF16(t *testing.T) {
	skipOnWindows(t)

	exec := New(nil, WithShell("sh", "-c"))
	// "WSL version: 2.0.9.0\r\n" in UTF-16LE
	payload := encodeUTF16Printf("WSL version: 2.0.9.0\r\n")
	result, err := exec.RunShell(context.Background(), "printf '"+payload+"'")

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "WSL version: 2.0.9.0\r\n", result.Stdout)
	assert.Empty(t, result.Stderr)

	result, err = exec.RunShell(context.Background(), "exit 1")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 1, result.ExitCode)
}

func TestExecutor_RunShellUTF8(t *testing.T) {
	skipOnWindows(t)

	exec := New(nil, WithShell("sh", "-c"))
	result, err := exec.RunShellUTF8(context.Background(), "echo 'CLI version: v1.2.0, daemon'; echo warn 1>&2")

	require.NoError(t, err)
	assert.Equal(t, "CLI version: v1.2.0, daemon\n", result.Stdout)
	assert.Equal(t, "warn\n", result.Stderr)
}

func TestExecutor_CopyAndExec(t *testing.T) {
	skipOnWindows(t)

	dir := t.TempDir()
	exec := New(nil, WithElevation("env", "sh"))

	t.Run("success streams output", func(t *testing.T) {
		src := filepath.Join(dir, "install-linux.sh")
		require.NoError(t, os.WriteFile(src, []byte("echo installing\necho done\n"), 0644))
		dest := filepath.Join(dir, "tmp", "sonaric-install.sh")

		var lines []string
		result, err := exec.CopyAndExec(context.Background(), src, dest, func(l string) { lines = append(lines, l) })
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, []string{"installing", "done"}, lines)
		assert.FileExists(t, dest)
	})

	t.Run("exit 126 is retryable", func(t *testing.T) {
		src := filepath.Join(dir, "stop-linux.sh")
		require.NoError(t, os.WriteFile(src, []byte("echo Not authorized\nexit 126\n"), 0644))

		_, err := exec.CopyAndExec(context.Background(), src, filepath.Join(dir, "sonaric-stop.sh"), nil)
		require.Error(t, err)
		assert.True(t, errors.IsRetryable(err))
		assert.True(t, errors.Is(err, errors.ErrPermissionRetry))
	})

	t.Run("other failures are hard errors", func(t *testing.T) {
		src := filepath.Join(dir, "uninstall-linux.sh")
		require.NoError(t, os.WriteFile(src, []byte("echo broken\nexit 2\n"), 0644))

		_, err := exec.CopyAndExec(context.Background(), src, filepath.Join(dir, "sonaric-remove.sh"), nil)
		require.Error(t, err)
		assert.False(t, errors.IsRetryable(err))
		assert.Equal(t, errors.ErrTypeNonZeroExit, errors.GetType(err))
	})

	t.Run("missing source", func(t *testing.T) {
		_, err := exec.CopyAndExec(context.Background(), filepath.Join(dir, "absent.sh"), filepath.Join(dir, "x.sh"), nil)
		require.Error(t, err)
		assert.Equal(t, errors.ErrTypeAction, errors.GetType(err))
	})
}

// encodeUTF16Printf renders s as UTF-16LE octal escapes for printf.
func encodeUTF16Printf(s string) string {
	var sb strings.Builder
	for _, r := range s {
		fmt.Fprintf(&sb, "\\%03o\\%03o", byte(r), byte(r>>8))
	}
	return sb.String()
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "icon.png")
	require.NoError(t, os.WriteFile(src, []byte("png"), 0644))

	dest := filepath.Join(dir, "nested", "config", "icon.png")
	require.NoError(t, CopyFile(src, dest))
	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "png", string(got))

	assert.Error(t, CopyFile(filepath.Join(dir, "absent"), dest))
}
