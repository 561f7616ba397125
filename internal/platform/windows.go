package platform

import (
	"context"

	"go.uber.org/zap"

	"github.com/dj8891/sonaric-desktop/internal/errors"
	"github.com/dj8891/sonaric-desktop/internal/logger"
	"github.com/dj8891/sonaric-desktop/internal/probe"
)

// WSLProbe is the subset of probe.WSL the adapter needs.
type WSLProbe interface {
	Check(ctx context.Context) error
	DistributionInstalled(ctx context.Context) (bool, error)
	DistributionRunning(ctx context.Context) (bool, error)
	AgentVersion(ctx context.Context) (VersionOutput, error)
}

// wslProbe adapts probe.WSL's runner.Result to VersionOutput.
type wslProbe struct {
	*probe.WSL
}

func (w wslProbe) AgentVersion(ctx context.Context) (VersionOutput, error) {
	res, err := w.WSL.AgentVersion(ctx)
	if err != nil {
		return VersionOutput{}, err
	}
	return VersionOutput{Stdout: res.Stdout, Stderr: res.Stderr}, nil
}

// FromWSL wraps a probe.WSL as a WSLProbe.
func FromWSL(w *probe.WSL) WSLProbe {
	return wslProbe{WSL: w}
}

// WindowsWSLAdapter runs the agent inside a WSL 2 distribution.
type WindowsWSLAdapter struct {
	wsl    WSLProbe
	gui    GUIProbe
	guiURL string
	log    *zap.Logger
}

// NewWindowsWSLAdapter 创建 Windows/WSL 适配器
func NewWindowsWSLAdapter(wsl WSLProbe, gui GUIProbe, guiURL string, log *zap.Logger) *WindowsWSLAdapter {
	return &WindowsWSLAdapter{
		wsl:    wsl,
		gui:    gui,
		guiURL: guiURL,
		log:    logger.OrNop(log),
	}
}

func (a *WindowsWSLAdapter) Target() Target {
	return WindowsWSL
}

// LocateRuntime walks WSL presence, WSL 2, distribution installed, distribution running.
func (a *WindowsWSLAdapter) LocateRuntime(ctx context.Context) (Runtime, error) {
	if err := a.wsl.Check(ctx); err != nil {
		if errors.GetType(err) == errors.ErrTypeCancelled {
			return Runtime{}, err
		}
		a.log.Info("WSL prerequisite not met", zap.Error(err))
		var launcherErr *errors.LauncherError
		if errors.As(err, &launcherErr) {
			return Runtime{Reason: launcherErr.Message}, nil
		}
		return Runtime{Reason: err.Error()}, nil
	}

	installed, err := a.wsl.DistributionInstalled(ctx)
	if err != nil {
		return Runtime{}, err
	}
	if !installed {
		return Runtime{Reason: errors.ErrDistroNotInstalled.Message}, nil
	}

	running, err := a.wsl.DistributionRunning(ctx)
	if err != nil {
		return Runtime{}, err
	}
	if !running {
		return Runtime{Found: true, Stopped: true, Reason: errors.ErrDistroNotRunning.Message}, nil
	}

	return Runtime{Found: true}, nil
}

// QueryVersion runs `sonaric version` inside the distribution, keeping stderr separate.
func (a *WindowsWSLAdapter) QueryVersion(ctx context.Context, _ Runtime) (VersionOutput, error) {
	return a.wsl.AgentVersion(ctx)
}

func (a *WindowsWSLAdapter) ProbeGUI(ctx context.Context) error {
	return a.gui.Probe(ctx, a.guiURL)
}
