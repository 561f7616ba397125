package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dj8891/sonaric-desktop/internal/action"
	"github.com/dj8891/sonaric-desktop/internal/config"
	"github.com/dj8891/sonaric-desktop/internal/lifecycle"
	"github.com/dj8891/sonaric-desktop/internal/logger"
	"github.com/dj8891/sonaric-desktop/internal/platform"
	"github.com/dj8891/sonaric-desktop/internal/probe"
	"github.com/dj8891/sonaric-desktop/internal/runner"
	"github.com/dj8891/sonaric-desktop/internal/version"
	"github.com/dj8891/sonaric-desktop/ui"
)

// appVersion holds the current version of sonaric-desktop
// This will be set at build time via ldflags
var appVersion = "dev"

// GetVersionString returns a formatted version string
func GetVersionString() string {
	return fmt.Sprintf("sonaric-desktop version %s", appVersion)
}

// adapterFactory 根据平台与配置构建适配器
type adapterFactory func(t platform.Target, cfg *config.Config, r runner.CommandRunner, log *zap.Logger) (platform.Adapter, error)

// 将关键依赖抽象为可替换的函数以便测试时注入 Mock。
// 若在运行时未被替换，则使用默认实现。
var (
	targetProvider    func() (platform.Target, error)            = platform.Current
	runnerProvider    func(log *zap.Logger) runner.CommandRunner = defaultRunnerProvider
	adapterProvider   adapterFactory                             = defaultAdapterProvider
	confirmerProvider func(assumeYes bool) action.Confirmer      = defaultConfirmerProvider
	interactive       func() bool                                = ui.IsInteractive
	openBrowser       func(url string) error                     = browser.OpenURL
	logFileProvider   func() (string, error)                     = config.LogFilePath
	lockFileProvider  func() (string, error)                     = config.LockFilePath

	appLogger     *zap.Logger    // 全局日志记录器
	appConfig     *config.Config // 当前配置
	appConfigPath string
)

// ---------------- 默认实现 ------------------
func defaultRunnerProvider(log *zap.Logger) runner.CommandRunner {
	return runner.New(log)
}

func defaultAdapterProvider(t platform.Target, cfg *config.Config, r runner.CommandRunner, log *zap.Logger) (platform.Adapter, error) {
	gui := probe.NewGUIProber(
		probe.WithMarker(cfg.GUI.Marker),
		probe.WithTimeout(cfg.Timeouts.HTTPTimeout()),
		probe.WithLogger(log),
	)
	return platform.NewAdapter(t, platform.Deps{
		Runner: r,
		Finder: probe.NewFinder(cfg.BinaryName, cfg.FallbackDirs),
		WSL:    probe.NewWSL(r, cfg.Distribution, cfg.BinaryName, log),
		GUI:    gui,
		GUIURL: cfg.GUI.URL,
		Log:    log,
	})
}

func defaultConfirmerProvider(assumeYes bool) action.Confirmer {
	return ui.NewConfirmer(assumeYes)
}

// -------------------------------------------------

var rootCmd = &cobra.Command{
	Use:   "sonaric-desktop",
	Short: "Install, start and manage the Sonaric node",
	Long: `sonaric-desktop detects the state of the local Sonaric node and runs the
platform-specific install, stop and uninstall procedures.

On macOS and Linux the node runs on the host; on Windows it runs inside a
WSL 2 distribution.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagVersion {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), GetVersionString())
			return nil
		}
		return cmd.Help()
	},
}

var (
	flagDebug   bool
	flagConfig  string
	flagTimeout time.Duration
	flagVersion bool
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug output for troubleshooting")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default $XDG_CONFIG_HOME/sonaric-desktop/config.yaml)")
	rootCmd.PersistentFlags().DurationVarP(&flagTimeout, "timeout", "t", 0, "overall timeout (default from config)")
	rootCmd.Flags().BoolVar(&flagVersion, "version", false, "show version information")

	rootCmd.AddCommand(newCheckCommand(), newGUICommand(), newVersionCommand(), newWatchCommand(), newOpenCommand(), newDocsCommand())
	for _, a := range action.Actions {
		rootCmd.AddCommand(newActionCommand(a))
	}
}

func ExecuteContext(ctx context.Context) error { return rootCmd.ExecuteContext(ctx) }

// setup 初始化日志与配置，所有子命令共用
func setup(cmd *cobra.Command, args []string) error {
	logFile, err := logFileProvider()
	if err != nil {
		logFile = ""
	}
	appLogger, err = logger.New(logger.Options{Debug: flagDebug, File: logFile})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	appConfigPath = flagConfig
	if appConfigPath == "" {
		if appConfigPath, err = config.DefaultConfigPath(); err != nil {
			return err
		}
	}
	manager, err := config.NewYAMLConfigManager(appConfigPath)
	if err != nil {
		return err
	}
	appConfig, err = config.LoadOrCreate(manager)
	if err != nil {
		return err
	}
	appLogger.Debug("Configuration loaded", zap.String("path", appConfigPath))
	return nil
}

// withTimeout 优先使用 --timeout，否则使用配置中的默认值
func withTimeout(ctx context.Context, fallback time.Duration) (context.Context, context.CancelFunc) {
	d := fallback
	if flagTimeout > 0 {
		d = flagTimeout
	}
	return context.WithTimeout(ctx, d)
}

// components 是一次命令执行所需的组件
type components struct {
	target  platform.Target
	runner  runner.CommandRunner
	adapter platform.Adapter
}

func buildComponents(cfg *config.Config) (*components, error) {
	target, err := targetProvider()
	if err != nil {
		return nil, err
	}
	r := runnerProvider(appLogger)
	adapter, err := adapterProvider(target, cfg, r, appLogger)
	if err != nil {
		return nil, err
	}
	return &components{target: target, runner: r, adapter: adapter}, nil
}

func newResolver(cfg *config.Config) *version.Resolver {
	return version.NewResolver(version.Endpoints{
		LatestDaemon: cfg.Endpoints.LatestVersion,
		GUITags:      cfg.Endpoints.GUITags,
		GUIVersion:   cfg.GUI.VersionURL,
		AppLatest:    cfg.Endpoints.AppLatest,
	}, appLogger,
		version.WithTimeout(cfg.Timeouts.HTTPTimeout()),
		version.WithAppVersion(appVersion),
	)
}

func newMachine(cfg *config.Config, c *components, status lifecycle.StatusFunc) *lifecycle.Machine {
	opts := []lifecycle.Option{lifecycle.WithLogger(appLogger)}
	if status != nil {
		opts = append(opts, lifecycle.WithStatus(status))
	}
	return lifecycle.NewMachine(c.adapter, newResolver(cfg).LatestDaemon, opts...)
}
