package util

import "runtime"

// DefaultWorkerCount returns the worker count used for parallel batch
// parsing when the caller does not pin one: twice the CPU count, clamped
// to the range [4, 32].
func DefaultWorkerCount() int {
	n := runtime.NumCPU() * 2
	if n < 4 {
		n = 4
	}
	if n > 32 {
		n = 32
	}
	return n
}

// WorkerCount returns override when positive, otherwise DefaultWorkerCount().
func WorkerCount(override int) int {
	if override > 0 {
		return override
	}
	return DefaultWorkerCount()
}
