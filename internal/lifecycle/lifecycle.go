// Package lifecycle classifies the local sonaric deployment into one of four
// states. It never changes the deployment; transitions are driven by actions.
package lifecycle

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/zap"

	"github.com/dj8891/sonaric-desktop/internal/errors"
	"github.com/dj8891/sonaric-desktop/internal/logger"
	"github.com/dj8891/sonaric-desktop/internal/platform"
	"github.com/dj8891/sonaric-desktop/internal/version"
)

// State 生命周期状态
type State string

const (
	NeedsInstall    State = "install"
	NeedsStart      State = "start"
	UpdateAvailable State = "update"
	Ready           State = "ok"
)

const (
	daemonNotRunningMarker = "daemon is not running"
	versionMarker          = "version"

	StatusCheckingComponents = "Checking components..."
	StatusCheckingGUI        = "Checking GUI..."
)

// Result is the outcome of one detection pass.
type Result struct {
	State        State  `json:"state"`
	Reason       string `json:"reason,omitempty"`
	Current      string `json:"current,omitempty"`
	Latest       string `json:"latest,omitempty"`
	CanStop      bool   `json:"can_stop"`
	CanUninstall bool   `json:"can_uninstall"`
}

// LatestFunc resolves the newest published agent version.
type LatestFunc func(ctx context.Context) (*semver.Version, error)

// StatusFunc receives progress messages.
type StatusFunc func(status string)

// Option configures a Machine.
type Option func(*Machine)

// WithStatus 设置进度回调
func WithStatus(fn StatusFunc) Option {
	return func(m *Machine) {
		m.status = fn
	}
}

// WithLogger 设置日志
func WithLogger(log *zap.Logger) Option {
	return func(m *Machine) {
		m.log = logger.OrNop(log)
	}
}

// Machine 是纯分类器，每次 Check 都重新探测
type Machine struct {
	adapter platform.Adapter
	latest  LatestFunc
	status  StatusFunc
	log     *zap.Logger
}

// NewMachine creates a Machine for the given adapter.
func NewMachine(adapter platform.Adapter, latest LatestFunc, opts ...Option) *Machine {
	m := &Machine{
		adapter: adapter,
		latest:  latest,
		status:  func(string) {},
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Check runs the detection procedure: locate runtime, query version, probe GUI.
func (m *Machine) Check(ctx context.Context) (Result, error) {
	m.status(StatusCheckingComponents)

	rt, err := m.adapter.LocateRuntime(ctx)
	if err != nil {
		return Result{}, err
	}
	if !rt.Found {
		m.log.Info("Runtime not found", zap.String("target", m.adapter.Target().String()), zap.String("reason", rt.Reason))
		return Result{State: NeedsInstall, Reason: rt.Reason}, nil
	}
	if rt.Stopped {
		return Result{State: NeedsStart, Reason: rt.Reason, CanUninstall: true}, nil
	}

	out, err := m.adapter.QueryVersion(ctx, rt)
	if err != nil {
		return Result{}, err
	}
	res, done, err := m.classifyVersion(ctx, out)
	if err != nil || done {
		return res, err
	}

	m.status(StatusCheckingGUI)
	if err := m.adapter.ProbeGUI(ctx); err != nil {
		if ctx.Err() != nil {
			return Result{}, errors.Wrap(errors.ErrTypeCancelled, "check cancelled", ctx.Err())
		}
		m.log.Warn("GUI probe failed, reporting start", zap.Error(err))
		res.State = NeedsStart
		res.Reason = errors.ErrGUINotAvailable.Message
		var launcherErr *errors.LauncherError
		if errors.As(err, &launcherErr) {
			res.Reason = launcherErr.Message
		}
		return res, nil
	}

	res.State = Ready
	res.CanStop = true
	return res, nil
}

// classifyVersion 解析 `sonaric version` 输出；done 为 true 时无需继续探测 GUI
func (m *Machine) classifyVersion(ctx context.Context, out platform.VersionOutput) (Result, bool, error) {
	res := Result{CanUninstall: true}
	text := out.Combined()

	switch {
	case strings.Contains(text, daemonNotRunningMarker):
		res.State = NeedsStart
		res.Reason = "sonaric daemon is not running"
		return res, true, nil
	case strings.Contains(out.Stdout, versionMarker):
		current, err := version.ParseCLIVersion(out.Stdout)
		if err != nil {
			return Result{}, true, err
		}
		latest, err := m.latest(ctx)
		if err != nil {
			return Result{}, true, err
		}
		res.Current = current.String()
		res.Latest = latest.String()
		if !version.IsUpToDate(current, latest) {
			res.State = UpdateAvailable
			res.Reason = fmt.Sprintf("sonaric %s is available (installed %s)", res.Latest, res.Current)
			return res, true, nil
		}
		return res, false, nil
	default:
		m.log.Debug("Unrecognized version output", zap.String("output", text))
		return Result{State: NeedsInstall, Reason: "sonaric is not installed"}, true, nil
	}
}
