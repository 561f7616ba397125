package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/dj8891/sonaric-desktop/internal/errors"
)

const (
	DefaultDistribution   = "Ubuntu-22.04"
	DefaultBinaryName     = "sonaric"
	DefaultGUIURL         = "http://localhost:44004"
	DefaultGUIMarker      = "Sonaric"
	DefaultGUIVersionURL  = "http://127.0.0.1:44005/version"
	DefaultLatestVersion  = "https://storage.googleapis.com/sonaric-releases/stable/linux/latest-version"
	DefaultGUITagsURL     = "https://us-central1-docker.pkg.dev/v2/sonaric-platform/sonaric-public/sonaric-gui/tags/list"
	DefaultDocsURL        = "https://docs.sonaric.xyz/"
	DefaultCommandTimeout = 30 * time.Minute
	DefaultProbeTimeout   = 30 * time.Second
	DefaultHTTPTimeout    = 10 * time.Second
	DefaultWatchInterval  = 10 * time.Second

	configVersion = "1.0.0"
)

// 环境变量覆盖
const (
	EnvResourceDir   = "SONARIC_DESKTOP_RESOURCE_DIR"
	EnvGUIURL        = "SONARIC_DESKTOP_GUI_URL"
	EnvGUIVersionURL = "SONARIC_DESKTOP_GUI_VERSION_URL"
	EnvLatestURL     = "SONARIC_DESKTOP_LATEST_URL"
	EnvGUITagsURL    = "SONARIC_DESKTOP_GUI_TAGS_URL"
)

// DefaultFallbackDirs are searched after PATH.
var DefaultFallbackDirs = []string{"/usr/local/bin", "/usr/bin", "/opt/homebrew/bin"}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Version:      configVersion,
		Distribution: DefaultDistribution,
		BinaryName:   DefaultBinaryName,
		FallbackDirs: append([]string(nil), DefaultFallbackDirs...),
		GUI: GUIConfig{
			URL:        DefaultGUIURL,
			Marker:     DefaultGUIMarker,
			VersionURL: DefaultGUIVersionURL,
		},
		Endpoints: EndpointsConfig{
			LatestVersion: DefaultLatestVersion,
			GUITags:       DefaultGUITagsURL,
			Docs:          DefaultDocsURL,
		},
		Timeouts: TimeoutsConfig{
			Command: DefaultCommandTimeout.String(),
			Probe:   DefaultProbeTimeout.String(),
			HTTP:    DefaultHTTPTimeout.String(),
		},
		Watch: WatchConfig{Interval: DefaultWatchInterval.String()},
	}
}

// FillDefaults sets every empty field of c to its default value.
func (c *Config) FillDefaults() {
	d := Default()
	setIfEmpty(&c.Version, d.Version)
	setIfEmpty(&c.Distribution, d.Distribution)
	setIfEmpty(&c.BinaryName, d.BinaryName)
	if len(c.FallbackDirs) == 0 {
		c.FallbackDirs = d.FallbackDirs
	}
	setIfEmpty(&c.GUI.URL, d.GUI.URL)
	setIfEmpty(&c.GUI.Marker, d.GUI.Marker)
	setIfEmpty(&c.GUI.VersionURL, d.GUI.VersionURL)
	setIfEmpty(&c.Endpoints.LatestVersion, d.Endpoints.LatestVersion)
	setIfEmpty(&c.Endpoints.GUITags, d.Endpoints.GUITags)
	setIfEmpty(&c.Endpoints.Docs, d.Endpoints.Docs)
	setIfEmpty(&c.Timeouts.Command, d.Timeouts.Command)
	setIfEmpty(&c.Timeouts.Probe, d.Timeouts.Probe)
	setIfEmpty(&c.Timeouts.HTTP, d.Timeouts.HTTP)
	setIfEmpty(&c.Watch.Interval, d.Watch.Interval)
}

// ApplyEnv overrides fields from SONARIC_DESKTOP_* environment variables.
func (c *Config) ApplyEnv() {
	overrides := map[string]*string{
		EnvResourceDir:   &c.ResourceDir,
		EnvGUIURL:        &c.GUI.URL,
		EnvGUIVersionURL: &c.GUI.VersionURL,
		EnvLatestURL:     &c.Endpoints.LatestVersion,
		EnvGUITagsURL:    &c.Endpoints.GUITags,
	}
	for env, field := range overrides {
		if v, ok := os.LookupEnv(env); ok && v != "" {
			*field = v
		}
	}
}

// Validate 检查配置有效性
func (c *Config) Validate() error {
	if c.Distribution == "" {
		return errors.New(errors.ErrTypeConfig, "distribution cannot be empty")
	}
	if c.BinaryName == "" {
		return errors.New(errors.ErrTypeConfig, "binary_name cannot be empty")
	}
	urls := map[string]string{
		"gui.url":                  c.GUI.URL,
		"gui.version_url":          c.GUI.VersionURL,
		"endpoints.latest_version": c.Endpoints.LatestVersion,
		"endpoints.gui_tags":       c.Endpoints.GUITags,
		"endpoints.app_latest":     c.Endpoints.AppLatest,
		"endpoints.docs":           c.Endpoints.Docs,
	}
	for key, raw := range urls {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return errors.New(errors.ErrTypeConfig, fmt.Sprintf("%s is not a valid URL: %q", key, raw)).
				WithSuggestion("Use an absolute http(s) URL")
		}
	}
	return nil
}

// ResolveResourceDir expands ~ in resource_dir. An empty value resolves to
// the res directory next to the running executable.
func (c *Config) ResolveResourceDir() (string, error) {
	if c.ResourceDir != "" {
		dir, err := ExpandPath(c.ResourceDir)
		if err != nil {
			return "", errors.Wrap(errors.ErrTypeConfig, "failed to expand resource_dir", err)
		}
		return dir, nil
	}

	exe, err := os.Executable()
	if err != nil {
		return "", errors.Wrap(errors.ErrTypeConfig, "failed to locate executable", err)
	}
	return filepath.Join(filepath.Dir(exe), "res"), nil
}

func setIfEmpty(field *string, value string) {
	if *field == "" {
		*field = value
	}
}
