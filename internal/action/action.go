// Package action runs the install, stop and uninstall procedures for the
// current platform. Only one action runs at a time, within this process and
// across processes.
package action

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dj8891/sonaric-desktop/internal/errors"
	"github.com/dj8891/sonaric-desktop/internal/logger"
	"github.com/dj8891/sonaric-desktop/internal/platform"
	"github.com/dj8891/sonaric-desktop/internal/runner"
)

// Action 用户请求的动作
type Action string

const (
	Install   Action = "install"
	Stop      Action = "stop"
	Uninstall Action = "uninstall"
)

// Actions lists every supported action.
var Actions = []Action{Install, Stop, Uninstall}

func (a Action) String() string {
	return string(a)
}

// Status is the progress message shown while the action runs.
func (a Action) Status() string {
	switch a {
	case Install:
		return "Installing dependencies..."
	case Stop:
		return "Stopping..."
	case Uninstall:
		return "Removing dependencies..."
	default:
		return ""
	}
}

// Destructive reports whether the action tears something down.
func (a Action) Destructive() bool {
	return a == Stop || a == Uninstall
}

// ParseAction 解析动作名称（大小写不敏感）
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case Install, Stop, Uninstall:
		return a, nil
	default:
		return "", errors.ErrInvalidInput.WithCause(fmt.Errorf("unknown action %q", s))
	}
}

const (
	successStopped     = "Successfully stopped"
	successUninstalled = "Successfully uninstalled"
)

// Confirmer asks the user before a destructive step.
type Confirmer interface {
	Confirm(ctx context.Context, title, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, title, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, title, prompt string) (bool, error) {
	return f(ctx, title, prompt)
}

// AlwaysConfirm answers yes without asking.
var AlwaysConfirm Confirmer = ConfirmFunc(func(context.Context, string, string) (bool, error) {
	return true, nil
})

// WSL is the distribution control the Windows procedures need.
type WSL interface {
	Distribution() string
	Check(ctx context.Context) error
	DistributionInstalled(ctx context.Context) (bool, error)
	DistributionRunning(ctx context.Context) (bool, error)
	Terminate(ctx context.Context) error
	Unregister(ctx context.Context) error
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithWSL 设置 Windows 下的 WSL 控制器
func WithWSL(w WSL) Option {
	return func(d *Dispatcher) {
		d.wsl = w
	}
}

// WithConfirmer 设置确认对话
func WithConfirmer(c Confirmer) Option {
	return func(d *Dispatcher) {
		d.confirm = c
	}
}

// WithSink streams script output lines.
func WithSink(sink runner.LineSink) Option {
	return func(d *Dispatcher) {
		d.sink = sink
	}
}

// WithStatus receives the action's progress message.
func WithStatus(fn func(string)) Option {
	return func(d *Dispatcher) {
		d.status = fn
	}
}

// WithLockFile enables the cross-process lock at path.
func WithLockFile(path string) Option {
	return func(d *Dispatcher) {
		d.lockPath = path
	}
}

// WithTempDir 设置 Linux 脚本复制目标目录
func WithTempDir(dir string) Option {
	return func(d *Dispatcher) {
		d.tmpDir = dir
	}
}

// WithDesktopEntry enables launcher shortcut handling on Linux.
func WithDesktopEntry(e *DesktopEntry) Option {
	return func(d *Dispatcher) {
		d.desktop = e
	}
}

// WithLogger 设置日志
func WithLogger(log *zap.Logger) Option {
	return func(d *Dispatcher) {
		d.log = logger.OrNop(log)
	}
}

// Dispatcher 根据平台选择并执行动作流程
type Dispatcher struct {
	target    platform.Target
	runner    runner.CommandRunner
	resources Resources
	wsl       WSL
	confirm   Confirmer
	sink      runner.LineSink
	status    func(string)
	lockPath  string
	tmpDir    string
	desktop   *DesktopEntry
	log       *zap.Logger

	mu sync.Mutex
}

// NewDispatcher creates a Dispatcher for target.
func NewDispatcher(target platform.Target, r runner.CommandRunner, res Resources, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		target:    target,
		runner:    r,
		resources: res,
		confirm:   AlwaysConfirm,
		status:    func(string) {},
		tmpDir:    os.TempDir(),
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run executes a. A second call while one is in flight fails with
// ErrActionInProgress instead of queueing.
func (d *Dispatcher) Run(ctx context.Context, a Action) (string, error) {
	if !d.mu.TryLock() {
		return "", errors.ErrActionInProgress
	}
	defer d.mu.Unlock()

	unlock, err := d.acquire()
	if err != nil {
		return "", err
	}
	defer unlock()

	log := d.log.With(
		zap.String("action_id", uuid.NewString()),
		zap.String("action", a.String()),
		zap.String("target", d.target.String()),
	)
	log.Info("Action started")
	d.status(a.Status())

	out, err := d.dispatch(ctx, log, a)
	if err != nil {
		log.Error("Action failed", zap.Error(err))
		return "", err
	}
	log.Info("Action finished")
	return out, nil
}

func (d *Dispatcher) dispatch(ctx context.Context, log *zap.Logger, a Action) (string, error) {
	switch d.target {
	case platform.MacOS:
		return d.runMac(ctx, a)
	case platform.LinuxNative:
		return d.runLinux(ctx, log, a)
	case platform.WindowsWSL:
		return d.runWindows(ctx, log, a)
	default:
		return "", errors.ErrUnsupportedTarget.WithCause(fmt.Errorf("target %s", d.target))
	}
}

// acquire 获取跨进程文件锁
func (d *Dispatcher) acquire() (func(), error) {
	if d.lockPath == "" {
		return func() {}, nil
	}
	fl := flock.New(d.lockPath)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, errors.Wrap(errors.ErrTypeAction, "failed to acquire action lock", err)
	}
	if !locked {
		return nil, errors.ErrActionInProgress
	}
	return func() {
		if err := fl.Unlock(); err != nil {
			d.log.Warn("Failed to release action lock", zap.Error(err))
		}
	}, nil
}
