package cpu

import "golang.org/x/sys/unix"

// SetThreadAffinity binds the calling thread to the CPUs in mask.
// Must run on the emulation (main) thread, never from the scaler's
// apply worker.
func SetThreadAffinity(mask uint32) error {
	var set unix.CPUSet
	for i := 0; i < 32; i++ {
		if mask&(1<<uint(i)) != 0 {
			set.Set(i)
		}
	}
	return unix.SchedSetaffinity(0, &set)
}
