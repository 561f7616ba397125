package platform

import (
	"context"

	"go.uber.org/zap"

	"github.com/dj8891/sonaric-desktop/internal/logger"
	"github.com/dj8891/sonaric-desktop/internal/probe"
	"github.com/dj8891/sonaric-desktop/internal/runner"
)

// BinaryFinder 查找本地可执行文件
type BinaryFinder interface {
	Find() (string, bool)
}

// GUIProbe 探测 GUI 页面
type GUIProbe interface {
	Probe(ctx context.Context, url string) error
}

var (
	_ BinaryFinder = (*probe.Finder)(nil)
	_ GUIProbe     = (*probe.GUIProber)(nil)
)

// UnixAdapter serves macOS and native Linux, where the agent binary runs
// directly on the host.
type UnixAdapter struct {
	target Target
	finder BinaryFinder
	runner runner.CommandRunner
	gui    GUIProbe
	guiURL string
	log    *zap.Logger
}

// NewMacAdapter 创建 macOS 适配器
func NewMacAdapter(finder BinaryFinder, r runner.CommandRunner, gui GUIProbe, guiURL string, log *zap.Logger) *UnixAdapter {
	return newUnixAdapter(MacOS, finder, r, gui, guiURL, log)
}

// NewLinuxAdapter 创建 Linux 适配器
func NewLinuxAdapter(finder BinaryFinder, r runner.CommandRunner, gui GUIProbe, guiURL string, log *zap.Logger) *UnixAdapter {
	return newUnixAdapter(LinuxNative, finder, r, gui, guiURL, log)
}

func newUnixAdapter(target Target, finder BinaryFinder, r runner.CommandRunner, gui GUIProbe, guiURL string, log *zap.Logger) *UnixAdapter {
	return &UnixAdapter{
		target: target,
		finder: finder,
		runner: r,
		gui:    gui,
		guiURL: guiURL,
		log:    logger.OrNop(log),
	}
}

func (a *UnixAdapter) Target() Target {
	return a.target
}

// LocateRuntime 在 PATH 与备用目录中查找 sonaric
func (a *UnixAdapter) LocateRuntime(ctx context.Context) (Runtime, error) {
	path, ok := a.finder.Find()
	if !ok {
		return Runtime{Reason: "sonaric is not installed"}, nil
	}
	a.log.Debug("Found sonaric binary", zap.String("path", path))
	return Runtime{Found: true, Path: path}, nil
}

// QueryVersion runs `<binary> version` with stderr merged and the exit status ignored.
func (a *UnixAdapter) QueryVersion(ctx context.Context, rt Runtime) (VersionOutput, error) {
	res, err := a.runner.Run(ctx, runner.Options{CombineStderr: true}, rt.Path, "version")
	if err != nil {
		return VersionOutput{}, err
	}
	return VersionOutput{Stdout: res.Stdout}, nil
}

func (a *UnixAdapter) ProbeGUI(ctx context.Context) error {
	return a.gui.Probe(ctx, a.guiURL)
}
