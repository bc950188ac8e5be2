//go:build unix

package main

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// envDaemonized 标记已在后台子进程中
const envDaemonized = "EPMD_DAEMONIZED"

// daemonize 以新会话重新启动自身并立即返回
//
// 子进程的标准输入输出指向 /dev/null，继承其余环境变量。
func daemonize(args []string) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("daemonize: %w", err)
	}
	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("daemonize: %w", err)
	}
	defer devNull.Close()

	cmd := exec.Command(exe, args...)
	cmd.Env = append(os.Environ(), envDaemonized+"=1")
	cmd.Stdin = devNull
	cmd.Stdout = devNull
	cmd.Stderr = devNull
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("daemonize: %w", err)
	}
	cliLogger.Info("已转入后台", "pid", cmd.Process.Pid)
	return cmd.Process.Release()
}
