//go:build !unix

package tcp

import "syscall"

// reuseControl 非 unix 平台使用运行时默认的套接字选项
func reuseControl(_, _ string, _ syscall.RawConn) error {
	return nil
}
