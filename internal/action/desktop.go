package action

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/dj8891/sonaric-desktop/internal/logger"
	"github.com/dj8891/sonaric-desktop/internal/runner"
)

const (
	DesktopFileName = "sonaric.desktop"
	iconFileName    = "icon.png"
)

// DesktopEntry manages the freedesktop launcher for an AppImage install.
type DesktopEntry struct {
	// AppImage is the running AppImage path; empty disables the entry.
	AppImage        string
	ApplicationsDir string
	ConfigDir       string
	Resources       Resources
	Log             *zap.Logger
}

// Path 返回 .desktop 文件路径
func (e *DesktopEntry) Path() string {
	return filepath.Join(e.ApplicationsDir, DesktopFileName)
}

// Content renders the entry for the given icon path.
func (e *DesktopEntry) Content(icon string) string {
	return fmt.Sprintf("[Desktop Entry]\nName=Sonaric\nExec=%s\nIcon=%s\nType=Application\nCategories=", e.AppImage, icon)
}

// Create writes the entry unless it already exists or the applications
// directory is missing. The icon is copied next to the config.
func (e *DesktopEntry) Create() error {
	if e.AppImage == "" {
		return nil
	}
	if _, err := os.Stat(e.Path()); err == nil {
		return nil
	}
	if info, err := os.Stat(e.ApplicationsDir); err != nil || !info.IsDir() {
		return nil
	}

	src, err := e.Resources.Path(iconFileName)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(e.ConfigDir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	icon := filepath.Join(e.ConfigDir, iconFileName)
	if err := runner.CopyFile(src, icon); err != nil {
		return fmt.Errorf("copy icon: %w", err)
	}

	if err := os.WriteFile(e.Path(), []byte(e.Content(icon)), 0o644); err != nil {
		return fmt.Errorf("write desktop entry: %w", err)
	}
	logger.OrNop(e.Log).Info("Created desktop entry", zap.String("path", e.Path()))
	return nil
}

// Remove deletes the entry if present.
func (e *DesktopEntry) Remove() error {
	if e.AppImage == "" {
		return nil
	}
	err := os.Remove(e.Path())
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
