// Package progress provides a lightweight tracker that keeps aggregated work
// item counters (total, pending, running, completed, failed) for an executor.

package progress

import (
	"sync"
	"time"
)

// Delta represents an incremental counter change emitted by the executor or
// processor. The fields are signed and therefore can be either positive
// (increment) or negative (decrement).
type Delta struct {
	Total     int
	Pending   int
	Running   int
	Completed int
	Failed    int
}

// Progress keeps aggregated work item counters. It is safe for concurrent use.
type Progress struct {
	Name      string
	StartedAt time.Time

	TotalItems     int
	PendingItems   int
	RunningItems   int
	CompletedItems int
	FailedItems    int

	sync.Mutex
	onChange func(Progress)
}

// New creates a tracker
func New(name string, onChange func(Progress)) *Progress {
	return &Progress{Name: name, StartedAt: time.Now(), onChange: onChange}
}

// Update applies the supplied delta to the tracker. If an onChange callback
// has been registered it is invoked with a copy of the updated tracker outside
// the critical section.
func (p *Progress) Update(d Delta) {
	if p == nil {
		return
	}

	p.Lock()
	p.TotalItems += d.Total
	p.PendingItems += d.Pending
	p.RunningItems += d.Running
	p.CompletedItems += d.Completed
	p.FailedItems += d.Failed
	snapshot := p.copy()
	cb := p.onChange
	p.Unlock()

	if cb != nil {
		cb(snapshot)
	}
}

// Snapshot returns a copy of the tracker suitable for read-only inspection.
func (p *Progress) Snapshot() Progress {
	if p == nil {
		return Progress{}
	}
	p.Lock()
	defer p.Unlock()
	return p.copy()
}

func (p *Progress) copy() Progress {
	return Progress{
		Name:           p.Name,
		StartedAt:      p.StartedAt,
		TotalItems:     p.TotalItems,
		PendingItems:   p.PendingItems,
		RunningItems:   p.RunningItems,
		CompletedItems: p.CompletedItems,
		FailedItems:    p.FailedItems,
	}
}

// OnChange registers a callback that is invoked after every Update. Passing
// nil disables the callback.
func (p *Progress) OnChange(cb func(Progress)) {
	if p == nil {
		return
	}
	p.Lock()
	p.onChange = cb
	p.Unlock()
}
