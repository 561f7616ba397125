package probe

import (
	"os"
	"path/filepath"
	"runtime"
)

// Finder locates the agent executable.
type Finder struct {
	name         string
	fallbackDirs []string
	getenv       func(string) string
	isFile       func(string) bool
}

// NewFinder 创建可执行文件查找器
func NewFinder(name string, fallbackDirs []string) *Finder {
	return &Finder{
		name:         name,
		fallbackDirs: fallbackDirs,
		getenv:       os.Getenv,
		isFile:       isExecutable,
	}
}

// Find searches every PATH entry in order, then the fallback directories.
func (f *Finder) Find() (string, bool) {
	for _, dir := range filepath.SplitList(f.getenv("PATH")) {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, f.name)
		if f.isFile(candidate) {
			return candidate, true
		}
	}

	for _, dir := range f.fallbackDirs {
		candidate := filepath.Join(dir, f.name)
		if f.isFile(candidate) {
			return candidate, true
		}
	}

	return "", false
}

// isExecutable 要求普通文件且带执行位；Windows 没有执行位
func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	return runtime.GOOS == "windows" || info.Mode().Perm()&0o111 != 0
}
