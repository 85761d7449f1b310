//go:build !linux

package cpu

// SetThreadAffinity is a no-op where sched_setaffinity doesn't exist.
func SetThreadAffinity(mask uint32) error { return nil }
