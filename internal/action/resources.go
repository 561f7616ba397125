package action

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dj8891/sonaric-desktop/internal/errors"
)

// windowsExtendedPrefix is the verbatim path prefix cmd.exe cannot handle.
const windowsExtendedPrefix = `\\?\`

// Resources resolves bundled scripts and assets.
type Resources struct {
	Dir string
}

// Path returns the location of name inside the resource directory.
func (r Resources) Path(name string) (string, error) {
	p := filepath.Join(StripExtendedPrefix(r.Dir), name)
	if _, err := os.Stat(p); err != nil {
		return "", errors.ErrResourceNotFound.WithCause(err)
	}
	return p, nil
}

// StripExtendedPrefix 去掉 Windows 的 \\?\ 路径前缀
func StripExtendedPrefix(p string) string {
	return strings.TrimPrefix(p, windowsExtendedPrefix)
}

// scriptName returns e.g. "install-linux.sh" or "stop-win.bat".
func scriptName(a Action, suffix string) string {
	return a.String() + "-" + suffix
}
