//go:build unix

package tcp

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/unix"
)

// reuseControl 绑定前设置 SO_REUSEADDR，IPv6 另设 IPV6_V6ONLY
func reuseControl(network, _ string, c syscall.RawConn) error {
	var opErr error
	err := c.Control(func(fd uintptr) {
		if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
			opErr = fmt.Errorf("set SO_REUSEADDR: %w", err)
			return
		}

		if network == "tcp6" {
			if err := unix.SetsockoptInt(int(fd), unix.IPPROTO_IPV6, unix.IPV6_V6ONLY, 1); err != nil {
				opErr = fmt.Errorf("set IPV6_V6ONLY: %w", err)
			}
		}
	})

	if err != nil {
		return err
	}
	return opErr
}
