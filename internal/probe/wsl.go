package probe

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/dj8891/sonaric-desktop/internal/errors"
	"github.com/dj8891/sonaric-desktop/internal/logger"
	"github.com/dj8891/sonaric-desktop/internal/runner"
)

// wsl2Pattern matches the first line of `wsl --version` on WSL 2 ("WSL version: 2.0.9.0").
var wsl2Pattern = regexp.MustCompile(`^.+ 2\..+$`)

// IsWSL2 reports whether the first line of `wsl --version` output names WSL 2.
func IsWSL2(output string) bool {
	first, _, _ := strings.Cut(output, "\n")
	return wsl2Pattern.MatchString(strings.TrimRight(first, "\r"))
}

// WSL 探测 Windows Subsystem for Linux 状态
type WSL struct {
	runner       runner.CommandRunner
	distribution string
	binary       string
	log          *zap.Logger
}

// NewWSL 创建 WSL 探测器
func NewWSL(r runner.CommandRunner, distribution, binary string, log *zap.Logger) *WSL {
	return &WSL{
		runner:       r,
		distribution: distribution,
		binary:       binary,
		log:          logger.OrNop(log),
	}
}

// Distribution returns the managed distribution name.
func (w *WSL) Distribution() string {
	return w.distribution
}

// Check verifies WSL is present and is version 2. The two failure modes
// return distinct errors.
func (w *WSL) Check(ctx context.Context) error {
	res, err := w.runner.RunShell(ctx, "wsl", "--version")
	if err != nil {
		if errors.GetType(err) == errors.ErrTypeCancelled {
			return err
		}
		return errors.ErrWSLNotInstalled.WithCause(err)
	}
	if !res.Success {
		return errors.ErrWSLNotInstalled
	}
	if !IsWSL2(res.Stdout) {
		w.log.Debug("WSL version output", zap.String("stdout", res.Stdout))
		return errors.ErrWSLVersion1
	}
	return nil
}

// DistributionInstalled reports whether `wsl --list` names the distribution.
func (w *WSL) DistributionInstalled(ctx context.Context) (bool, error) {
	return w.listed(ctx, "wsl", "--list")
}

// DistributionRunning reports whether `wsl --list --running` names the distribution.
func (w *WSL) DistributionRunning(ctx context.Context) (bool, error) {
	return w.listed(ctx, "wsl", "--list", "--running")
}

func (w *WSL) listed(ctx context.Context, args ...string) (bool, error) {
	res, err := w.runner.RunShell(ctx, args...)
	if err != nil {
		return false, err
	}
	return res.Success && strings.Contains(res.Stdout, w.distribution), nil
}

// AgentVersion runs `<binary> version` as root inside the distribution.
func (w *WSL) AgentVersion(ctx context.Context) (runner.Result, error) {
	return w.runner.RunShellUTF8(ctx,
		"wsl", "--distribution", w.distribution, "--user", "root",
		"--exec", "/bin/bash", "-c", fmt.Sprintf("%s version", w.binary))
}

// Terminate stops the distribution.
func (w *WSL) Terminate(ctx context.Context) error {
	res, err := w.runner.RunShell(ctx, "wsl", "--terminate", w.distribution)
	if err != nil {
		return errors.ErrTerminateFailed.WithCause(err)
	}
	if !res.Success {
		return errors.ErrTerminateFailed
	}
	return nil
}

// Unregister removes the distribution and all of its data.
func (w *WSL) Unregister(ctx context.Context) error {
	res, err := w.runner.RunShell(ctx, "wsl", "--unregister", w.distribution)
	if err != nil {
		return errors.ErrUnregisterFailed.WithCause(err)
	}
	if !res.Success {
		return errors.ErrUnregisterFailed
	}
	return nil
}
