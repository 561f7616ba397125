package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dj8891/sonaric-desktop/internal/config"
	"github.com/dj8891/sonaric-desktop/internal/lifecycle"
	"github.com/dj8891/sonaric-desktop/ui"
)

var flagInterval time.Duration

func newWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run detection periodically",
		Long: `Re-run detection on an interval and show the current state. Changes to the
config file are picked up without restarting.`,
		RunE: runWatch,
	}
	cmd.Flags().DurationVar(&flagInterval, "interval", 0, "detection interval (default from config)")
	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	manager, err := config.NewYAMLConfigManager(appConfigPath)
	if err != nil {
		return err
	}
	hot, err := config.NewHotReloadManager(manager, appConfigPath, appLogger)
	if err != nil {
		return err
	}
	defer func() { _ = hot.Stop() }()

	reloads := make(chan *config.Config, 1)
	hot.OnConfigChange(func(c *config.Config) {
		select {
		case reloads <- c:
		default:
		}
	})

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if !interactive() {
		watchLoop(ctx, appConfig, reloads, plainWatchPrinter(cmd.OutOrStdout()))
		return nil
	}

	p := tea.NewProgram(ui.NewWatchModel(), tea.WithContext(ctx), tea.WithOutput(cmd.OutOrStdout()))
	go watchLoop(ctx, appConfig, reloads, p.Send)
	_, err = p.Run()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func watchInterval(cfg *config.Config) time.Duration {
	if flagInterval > 0 {
		return flagInterval
	}
	return cfg.Watch.IntervalDuration()
}

// watchLoop 周期性检测，配置变更后立即按新配置重新检测
func watchLoop(ctx context.Context, cfg *config.Config, reloads <-chan *config.Config, emit func(tea.Msg)) {
	ticker := time.NewTicker(watchInterval(cfg))
	defer ticker.Stop()

	check := func() {
		emit(ui.CheckStartMsg{})
		c, err := buildComponents(cfg)
		if err != nil {
			emit(ui.CheckErrorMsg{Err: err})
			return
		}
		checkCtx, cancel := context.WithTimeout(ctx, cfg.Timeouts.ProbeTimeout())
		defer cancel()
		res, err := newMachine(cfg, c, func(s string) { emit(ui.StatusMsg(s)) }).Check(checkCtx)
		if err != nil {
			if ctx.Err() == nil {
				emit(ui.CheckErrorMsg{Err: err})
			}
			return
		}
		emit(ui.CheckResultMsg{Result: res, At: time.Now()})
	}

	check()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			check()
		case next := <-reloads:
			appLogger.Info("Configuration reloaded", zap.String("gui_url", next.GUI.URL))
			cfg = next
			ticker.Reset(watchInterval(cfg))
			check()
		}
	}
}

// plainWatchPrinter prints state changes and errors, one line each.
func plainWatchPrinter(w io.Writer) func(tea.Msg) {
	var last lifecycle.Result
	return func(msg tea.Msg) {
		switch msg := msg.(type) {
		case ui.CheckResultMsg:
			if msg.Result == last {
				return
			}
			last = msg.Result
			_, _ = fmt.Fprintf(w, "%s %s %s\n", msg.At.Format(time.TimeOnly), msg.Result.State, msg.Result.Reason)
		case ui.CheckErrorMsg:
			last = lifecycle.Result{}
			_, _ = fmt.Fprintf(w, "%s error %v\n", time.Now().Format(time.TimeOnly), msg.Err)
		}
	}
}
