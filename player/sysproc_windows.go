//go:build windows

package player

import (
	"os/exec"
	"syscall"
)

const createNoWindow = 0x08000000

func detached() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{CreationFlags: createNoWindow}
}

func kill(cmd *exec.Cmd) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}
