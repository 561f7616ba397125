package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/mitchellh/go-homedir"
)

// AppName 用于 XDG 目录下的子目录名
const AppName = "sonaric-desktop"

// DefaultConfigPath returns $XDG_CONFIG_HOME/sonaric-desktop/config.yaml,
// creating the parent directory.
func DefaultConfigPath() (string, error) {
	return xdg.ConfigFile(filepath.Join(AppName, "config.yaml"))
}

// LogFilePath returns the rolling log location in the XDG state directory.
func LogFilePath() (string, error) {
	return xdg.StateFile(filepath.Join(AppName, "app.log"))
}

// LockFilePath 返回跨进程动作锁文件位置
func LockFilePath() (string, error) {
	return xdg.StateFile(filepath.Join(AppName, "action.lock"))
}

// ConfigDir 返回应用配置目录（不创建）
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ApplicationsDir is where freedesktop launchers live.
func ApplicationsDir() string {
	return filepath.Join(xdg.DataHome, "applications")
}

// ExpandPath expands a leading ~ and cleans the result.
func ExpandPath(p string) (string, error) {
	expanded, err := homedir.Expand(p)
	if err != nil {
		return "", err
	}
	return filepath.Clean(expanded), nil
}
