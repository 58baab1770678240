// Package processor hosts the capacity-bounded consumer that executes queued
// work items. On every refresh cycle the processor restores its capacity and
// dispatches at most that many items from the queue, each in its own goroutine.
package processor
