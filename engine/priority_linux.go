//go:build linux

package engine

import "golang.org/x/sys/unix"

// setThreadPriority sets the nice value of the calling OS thread. The
// goroutine must be locked to its thread.
func setThreadPriority(nice int) error {
	if nice == 0 {
		return nil
	}
	return unix.Setpriority(unix.PRIO_PROCESS, unix.Gettid(), nice)
}
