package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dj8891/sonaric-desktop/internal/action"
	"github.com/dj8891/sonaric-desktop/internal/config"
	"github.com/dj8891/sonaric-desktop/internal/platform"
	"github.com/dj8891/sonaric-desktop/internal/probe"
	"github.com/dj8891/sonaric-desktop/internal/runner"
	"github.com/dj8891/sonaric-desktop/ui"
)

var flagYes bool

var actionDescriptions = map[action.Action]string{
	action.Install:   "Install the Sonaric node",
	action.Stop:      "Stop the Sonaric node",
	action.Uninstall: "Uninstall the Sonaric node and its data",
}

// actionPrompts 破坏性动作执行前的确认问题
var actionPrompts = map[action.Action]string{
	action.Stop:      "Stop the Sonaric node?",
	action.Uninstall: "Uninstall Sonaric? The node and its dependencies will be removed.",
}

var actionDone = map[action.Action]string{
	action.Install:   "Installation finished",
	action.Stop:      "Successfully stopped",
	action.Uninstall: "Successfully uninstalled",
}

func newActionCommand(a action.Action) *cobra.Command {
	cmd := &cobra.Command{
		Use:   a.String(),
		Short: actionDescriptions[a],
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd, a)
		},
	}
	cmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "skip confirmation prompts")
	return cmd
}

func runAction(cmd *cobra.Command, a action.Action) error {
	out := cmd.OutOrStdout()
	ctx, cancel := withTimeout(cmd.Context(), appConfig.Timeouts.CommandTimeout())
	defer cancel()

	confirmer := confirmerProvider(flagYes)
	if a.Destructive() {
		ok, err := confirmer.Confirm(ctx, "Sonaric", actionPrompts[a])
		if err != nil {
			return err
		}
		if !ok {
			_, _ = fmt.Fprintln(out, "Canceled.")
			return nil
		}
	}

	c, err := buildComponents(appConfig)
	if err != nil {
		return err
	}
	opts, res, err := dispatcherOptions(c, confirmer)
	if err != nil {
		return err
	}

	job := func(ctx context.Context, sink runner.LineSink) (string, error) {
		d := action.NewDispatcher(c.target, c.runner, res, append(opts, action.WithSink(sink))...)
		return d.Run(ctx, a)
	}

	// Windows 下的 WSL 确认对话需要独占终端，不能与 spinner 同时运行
	spinner := interactive() && !(c.target == platform.WindowsWSL && a.Destructive())
	result, err := ui.RunProgress(ctx, out, spinner, a.Status(), job)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out, ui.RenderStatusBar(doneMessage(a, result), true))

	// 动作改变了部署状态，重新检测
	checkCtx, checkCancel := withTimeout(cmd.Context(), appConfig.Timeouts.ProbeTimeout())
	defer checkCancel()
	state, err := newMachine(appConfig, c, nil).Check(checkCtx)
	if err != nil {
		appLogger.Warn("Post-action check failed", zap.Error(err))
		return nil
	}
	_, _ = fmt.Fprintln(out, ui.RenderState(state))
	return nil
}

func dispatcherOptions(c *components, confirmer action.Confirmer) ([]action.Option, action.Resources, error) {
	dir, err := appConfig.ResolveResourceDir()
	if err != nil {
		return nil, action.Resources{}, err
	}
	res := action.Resources{Dir: dir}

	opts := []action.Option{
		action.WithConfirmer(confirmer),
		action.WithLogger(appLogger),
	}
	if lockPath, err := lockFileProvider(); err == nil {
		opts = append(opts, action.WithLockFile(lockPath))
	} else {
		appLogger.Warn("Action lock unavailable", zap.Error(err))
	}

	switch c.target {
	case platform.WindowsWSL:
		opts = append(opts, action.WithWSL(probe.NewWSL(c.runner, appConfig.Distribution, appConfig.BinaryName, appLogger)))
	case platform.LinuxNative:
		opts = append(opts, action.WithDesktopEntry(&action.DesktopEntry{
			AppImage:        os.Getenv("APPIMAGE"),
			ApplicationsDir: config.ApplicationsDir(),
			ConfigDir:       config.ConfigDir(),
			Resources:       res,
			Log:             appLogger,
		}))
	}
	return opts, res, nil
}

// doneMessage 单行结果直接展示，多行脚本输出已在执行时流式打印
func doneMessage(a action.Action, result string) string {
	msg := strings.TrimSpace(result)
	if msg == "" || strings.Contains(msg, "\n") {
		return actionDone[a]
	}
	return msg
}
