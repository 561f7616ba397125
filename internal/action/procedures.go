package action

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/dj8891/sonaric-desktop/internal/errors"
	"github.com/dj8891/sonaric-desktop/internal/runner"
)

const wslConfirmTitle = "WSL confirmation"

// Linux 上复制脚本的目标文件名
var linuxTempNames = map[Action]string{
	Install:   "sonaric-install.sh",
	Stop:      "sonaric-stop.sh",
	Uninstall: "sonaric-remove.sh",
}

func (d *Dispatcher) scriptOptions() runner.Options {
	return runner.Options{CombineStderr: true, EnforceZeroExit: true, Sink: d.sink}
}

// runMac: bash res/<action>-mac.sh
func (d *Dispatcher) runMac(ctx context.Context, a Action) (string, error) {
	script, err := d.resources.Path(scriptName(a, "mac.sh"))
	if err != nil {
		return "", err
	}
	res, err := d.runner.Run(ctx, d.scriptOptions(), "bash", script)
	if err != nil {
		return "", err
	}
	return res.Stdout, nil
}

// runLinux copies the script to the temp dir and runs it elevated. The
// desktop entry step never fails the action.
func (d *Dispatcher) runLinux(ctx context.Context, log *zap.Logger, a Action) (string, error) {
	script, err := d.resources.Path(scriptName(a, "linux.sh"))
	if err != nil {
		return "", err
	}

	if d.desktop != nil {
		switch a {
		case Install:
			if err := d.desktop.Create(); err != nil {
				log.Warn("create desktop entry", zap.Error(err))
			}
		case Uninstall:
			if err := d.desktop.Remove(); err != nil {
				log.Warn("remove desktop entry", zap.Error(err))
			}
		}
	}

	dest := filepath.Join(d.tmpDir, linuxTempNames[a])
	res, err := d.runner.CopyAndExec(ctx, script, dest, d.sink)
	if err != nil {
		return "", err
	}
	return res.Stdout, nil
}

func (d *Dispatcher) runWindows(ctx context.Context, log *zap.Logger, a Action) (string, error) {
	if d.wsl == nil {
		return "", errors.New(errors.ErrTypePlatform, "WSL is not configured")
	}
	switch a {
	case Install:
		if err := d.wsl.Check(ctx); err != nil {
			return "", err
		}
		return d.runBatch(ctx, a)
	case Stop:
		running, err := d.wsl.DistributionRunning(ctx)
		if err != nil {
			return "", err
		}
		if !running {
			log.Info("Distribution is not running, nothing to stop")
			return errors.ErrDistroNotRunning.Message, nil
		}
		if _, err := d.runBatch(ctx, a); err != nil {
			return "", err
		}
		prompt := "Terminate " + d.wsl.Distribution() + " distribution in WSL?"
		if err := d.confirmed(ctx, log, prompt, d.wsl.Terminate); err != nil {
			return "", err
		}
		return successStopped, nil
	default:
		installed, err := d.wsl.DistributionInstalled(ctx)
		if err != nil {
			return "", err
		}
		if !installed {
			log.Info("Distribution is not installed, nothing to remove")
			return errors.ErrDistroNotInstalled.Message, nil
		}
		if _, err := d.runBatch(ctx, a); err != nil {
			return "", err
		}
		prompt := "Unregister " + d.wsl.Distribution() + " distribution from WSL?\n" +
			"Caution: Once unregistered, all data, settings, and software associated with that distribution will be permanently lost"
		if err := d.confirmed(ctx, log, prompt, d.wsl.Unregister); err != nil {
			return "", err
		}
		return successUninstalled, nil
	}
}

// runBatch: cmd /C res/<action>-win.bat
func (d *Dispatcher) runBatch(ctx context.Context, a Action) (string, error) {
	script, err := d.resources.Path(scriptName(a, "win.bat"))
	if err != nil {
		return "", err
	}
	res, err := d.runner.Run(ctx, d.scriptOptions(), "cmd", "/C", script)
	if err != nil {
		return "", err
	}
	return res.Stdout, nil
}

// confirmed runs step only if the user agrees. Declining is not an error.
func (d *Dispatcher) confirmed(ctx context.Context, log *zap.Logger, prompt string, step func(context.Context) error) error {
	ok, err := d.confirm.Confirm(ctx, wslConfirmTitle, prompt)
	if err != nil {
		return err
	}
	if !ok {
		log.Info("User declined WSL step")
		return nil
	}
	return step(ctx)
}
