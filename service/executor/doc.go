// Package executor owns every submitted work item and feeds pending ones to
// a capacity-bounded processor. Views over pending, completed and failed
// items are computed from the item collection on every call.
package executor
