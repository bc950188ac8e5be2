//go:build !unix

package main

import "errors"

const envDaemonized = "EPMD_DAEMONIZED"

func daemonize([]string) error {
	return errors.New("daemonize: not supported on this platform")
}
