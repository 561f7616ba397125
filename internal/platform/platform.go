package platform

import (
	"context"
	"fmt"
	"runtime"

	"github.com/Masterminds/semver/v3"

	"github.com/dj8891/sonaric-desktop/internal/errors"
	"github.com/dj8891/sonaric-desktop/internal/version"
)

// Target 运行环境
type Target int

const (
	MacOS Target = iota
	LinuxNative
	WindowsWSL
)

func (t Target) String() string {
	switch t {
	case MacOS:
		return "macos"
	case LinuxNative:
		return "linux"
	case WindowsWSL:
		return "windows-wsl"
	default:
		return fmt.Sprintf("Target(%d)", int(t))
	}
}

// TargetFor maps a GOOS value to its target.
func TargetFor(goos string) (Target, error) {
	switch goos {
	case "darwin":
		return MacOS, nil
	case "linux":
		return LinuxNative, nil
	case "windows":
		return WindowsWSL, nil
	default:
		return 0, errors.ErrUnsupportedTarget.WithCause(fmt.Errorf("GOOS %q", goos))
	}
}

// Current 返回当前进程的目标平台，进程内只判定一次
func Current() (Target, error) {
	return TargetFor(runtime.GOOS)
}

// Runtime describes where the agent lives and whether it can be queried.
type Runtime struct {
	Found bool
	// Stopped means the runtime exists but its host (the WSL distribution) is not running.
	Stopped bool
	Path    string
	Reason  string
}

// VersionOutput 是 `sonaric version` 的原始输出
type VersionOutput struct {
	Stdout string
	Stderr string
}

// Combined returns stdout followed by stderr.
func (o VersionOutput) Combined() string {
	return o.Stdout + o.Stderr
}

// Adapter is the per-platform capability the lifecycle check is written against.
type Adapter interface {
	Target() Target
	LocateRuntime(ctx context.Context) (Runtime, error)
	QueryVersion(ctx context.Context, rt Runtime) (VersionOutput, error)
	ProbeGUI(ctx context.Context) error
}

// DaemonVersion adapts an Adapter into a version.CurrentFunc.
func DaemonVersion(a Adapter) version.CurrentFunc {
	return func(ctx context.Context) (*semver.Version, error) {
		rt, err := a.LocateRuntime(ctx)
		if err != nil {
			return nil, err
		}
		if !rt.Found || rt.Stopped {
			return nil, errors.New(errors.ErrTypePlatform, rt.Reason)
		}
		out, err := a.QueryVersion(ctx, rt)
		if err != nil {
			return nil, err
		}
		return version.ParseCLIVersion(out.Stdout)
	}
}
