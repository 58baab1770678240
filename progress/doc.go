// Package progress defines primitives for reporting the progress of work
// items submitted to an executor. Updates are pushed through Delta values so
// the processor and executor never share counters directly.
package progress
