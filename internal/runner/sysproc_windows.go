//go:build windows

package runner

import (
	"syscall"

	"golang.org/x/sys/windows"
)

// sysProcAttr keeps console children from flashing a window.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: windows.CREATE_NO_WINDOW,
	}
}
