package platform

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/dj8891/sonaric-desktop/internal/errors"
	"github.com/dj8891/sonaric-desktop/internal/probe"
	"github.com/dj8891/sonaric-desktop/internal/runner"
)

// Deps 构建适配器所需的依赖
type Deps struct {
	Runner runner.CommandRunner
	Finder BinaryFinder
	WSL    *probe.WSL
	GUI    GUIProbe
	GUIURL string
	Log    *zap.Logger
}

// NewAdapter selects the adapter for t.
func NewAdapter(t Target, d Deps) (Adapter, error) {
	switch t {
	case MacOS:
		return NewMacAdapter(d.Finder, d.Runner, d.GUI, d.GUIURL, d.Log), nil
	case LinuxNative:
		return NewLinuxAdapter(d.Finder, d.Runner, d.GUI, d.GUIURL, d.Log), nil
	case WindowsWSL:
		if d.WSL == nil {
			return nil, errors.New(errors.ErrTypePlatform, "WSL probe is required on Windows")
		}
		return NewWindowsWSLAdapter(FromWSL(d.WSL), d.GUI, d.GUIURL, d.Log), nil
	default:
		return nil, errors.ErrUnsupportedTarget.WithCause(fmt.Errorf("target %s", t))
	}
}
