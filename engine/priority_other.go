//go:build !linux

package engine

func setThreadPriority(int) error { return nil }
