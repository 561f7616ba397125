//go:build !windows

package runner

import "syscall"

func sysProcAttr() *syscall.SysProcAttr {
	return nil
}
