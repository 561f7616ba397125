package config

import (
	"time"
)

// Config 配置文件结构
type Config struct {
	Version      string          `json:"version" yaml:"version"`
	Distribution string          `json:"distribution" yaml:"distribution"`   // WSL 发行版名称
	BinaryName   string          `json:"binary_name" yaml:"binary_name"`     // 节点代理可执行文件名
	FallbackDirs []string        `json:"fallback_dirs" yaml:"fallback_dirs"` // PATH 之外的查找目录
	ResourceDir  string          `json:"resource_dir" yaml:"resource_dir"`   // 安装脚本目录，支持 ~
	GUI          GUIConfig       `json:"gui" yaml:"gui"`
	Endpoints    EndpointsConfig `json:"endpoints" yaml:"endpoints"`
	Timeouts     TimeoutsConfig  `json:"timeouts" yaml:"timeouts"`
	Watch        WatchConfig     `json:"watch" yaml:"watch"`
}

// GUIConfig 本地 Web GUI
type GUIConfig struct {
	URL        string `json:"url" yaml:"url"`
	Marker     string `json:"marker" yaml:"marker"`
	VersionURL string `json:"version_url" yaml:"version_url"`
}

// EndpointsConfig 远程版本清单
type EndpointsConfig struct {
	LatestVersion string `json:"latest_version" yaml:"latest_version"`
	GUITags       string `json:"gui_tags" yaml:"gui_tags"`
	AppLatest     string `json:"app_latest" yaml:"app_latest"`
	Docs          string `json:"docs" yaml:"docs"`
}

// TimeoutsConfig holds Go duration strings ("30s", "30m").
type TimeoutsConfig struct {
	Command string `json:"command" yaml:"command"`
	Probe   string `json:"probe" yaml:"probe"`
	HTTP    string `json:"http" yaml:"http"`
}

// WatchConfig watch 命令的轮询间隔
type WatchConfig struct {
	Interval string `json:"interval" yaml:"interval"`
}

// CommandTimeout bounds install/stop/uninstall scripts.
func (t TimeoutsConfig) CommandTimeout() time.Duration {
	return parseDuration(t.Command, DefaultCommandTimeout)
}

// ProbeTimeout bounds a single detection subprocess.
func (t TimeoutsConfig) ProbeTimeout() time.Duration {
	return parseDuration(t.Probe, DefaultProbeTimeout)
}

// HTTPTimeout bounds a single HTTP request.
func (t TimeoutsConfig) HTTPTimeout() time.Duration {
	return parseDuration(t.HTTP, DefaultHTTPTimeout)
}

// IntervalDuration 返回轮询间隔
func (w WatchConfig) IntervalDuration() time.Duration {
	return parseDuration(w.Interval, DefaultWatchInterval)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// Manager 配置管理器接口
type Manager interface {
	// Load 加载配置文件
	Load() (*Config, error)

	// Save 保存配置文件（原子操作）
	Save(config *Config) error

	// CreateDefaultConfig 创建默认配置
	CreateDefaultConfig() error
}
