// Package work defines the unit of asynchronous execution run by processors.
package work

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/viant/fluxmesh/errs"
	"github.com/viant/fluxmesh/internal/clock"
	"github.com/viant/fluxmesh/model/element"
)

// Status represents work item lifecycle state
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

// IsTerminal returns true for completed and failed statuses
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Event is the contract a processor uses to drive a work item
type Event interface {
	element.Entity
	// Status returns current status
	Status() Status
	// Start marks the event as processing, it fails unless the event is pending.
	Start() error
	// Invoke runs the event logic and records its outcome
	Invoke(ctx context.Context) error
	// Fail records a failure unless the event already reached a terminal status
	Fail(err error)
}

// Func represents work item logic
type Func func(ctx context.Context) (interface{}, error)

// Item is the default Event implementation
type Item struct {
	element.Element
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	fn   Func

	mux         sync.RWMutex
	status      Status
	result      interface{}
	err         error
	startedAt   *time.Time
	completedAt *time.Time
	done        chan struct{}
}

// Snapshot is a read-only copy of an item state
type Snapshot struct {
	ID          string                 `json:"id" yaml:"id"`
	CreatedAt   time.Time              `json:"created_at" yaml:"created_at"`
	Metadata    map[string]interface{} `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Name        string                 `json:"name,omitempty" yaml:"name,omitempty"`
	Status      Status                 `json:"status" yaml:"status"`
	Result      interface{}            `json:"result,omitempty" yaml:"result,omitempty"`
	Error       string                 `json:"error,omitempty" yaml:"error,omitempty"`
	StartedAt   *time.Time             `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	Duration    time.Duration          `json:"duration,omitempty" yaml:"duration,omitempty"`
}

// New creates a pending work item
func New(name string, fn Func) *Item {
	return &Item{
		Element: element.New(),
		Name:    name,
		fn:      fn,
		status:  StatusPending,
		done:    make(chan struct{}),
	}
}

// Status returns item status
func (i *Item) Status() Status {
	i.mux.RLock()
	defer i.mux.RUnlock()
	return i.status
}

// Result returns item result
func (i *Item) Result() interface{} {
	i.mux.RLock()
	defer i.mux.RUnlock()
	return i.result
}

// Err returns the recorded failure
func (i *Item) Err() error {
	i.mux.RLock()
	defer i.mux.RUnlock()
	return i.err
}

// Duration returns the execution duration, zero until terminal
func (i *Item) Duration() time.Duration {
	i.mux.RLock()
	defer i.mux.RUnlock()
	return i.duration()
}

func (i *Item) duration() time.Duration {
	if i.startedAt == nil || i.completedAt == nil {
		return 0
	}
	return i.completedAt.Sub(*i.startedAt)
}

// Done returns a channel closed once the item reaches a terminal status
func (i *Item) Done() <-chan struct{} {
	return i.done
}

// Start marks item as processing
func (i *Item) Start() error {
	i.mux.Lock()
	defer i.mux.Unlock()
	if i.status != StatusPending {
		return errs.Validation("work item %v: cannot start from status %v", i.ID, i.status)
	}
	i.status = StatusProcessing
	now := clock.Now()
	i.startedAt = &now
	return nil
}

// Invoke runs item logic; the returned error is also recorded on the item.
func (i *Item) Invoke(ctx context.Context) (err error) {
	if i.Status() == StatusPending {
		if err = i.Start(); err != nil {
			return err
		}
	}
	if i.fn == nil {
		err = errs.Execution(fmt.Errorf("work item %v: no function", i.ID))
		i.Fail(err)
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			err = errs.Execution(fmt.Errorf("work item %v panicked: %v", i.ID, r))
			i.Fail(err)
		}
	}()
	result, fnErr := i.fn(ctx)
	if fnErr != nil {
		err = errs.Execution(fnErr)
		i.Fail(err)
		return err
	}
	i.complete(result)
	return nil
}

func (i *Item) complete(result interface{}) {
	i.mux.Lock()
	defer i.mux.Unlock()
	if i.status.IsTerminal() {
		return
	}
	i.status = StatusCompleted
	i.result = result
	i.finish()
}

// Fail records a failure
func (i *Item) Fail(err error) {
	i.mux.Lock()
	defer i.mux.Unlock()
	if i.status.IsTerminal() {
		return
	}
	if err == nil {
		err = errs.Execution(fmt.Errorf("work item %v failed", i.ID))
	}
	i.status = StatusFailed
	i.err = err
	i.finish()
}

func (i *Item) finish() {
	now := clock.Now()
	if i.startedAt == nil {
		i.startedAt = &now
	}
	i.completedAt = &now
	close(i.done)
}

// Snapshot returns a copy of the item state
func (i *Item) Snapshot() Snapshot {
	i.mux.RLock()
	defer i.mux.RUnlock()
	ret := Snapshot{
		ID:          i.ID.String(),
		CreatedAt:   i.CreatedAt,
		Metadata:    i.Metadata,
		Name:        i.Name,
		Status:      i.status,
		Result:      i.result,
		StartedAt:   i.startedAt,
		CompletedAt: i.completedAt,
		Duration:    i.duration(),
	}
	if i.err != nil {
		ret.Error = i.err.Error()
	}
	return ret
}

// MarshalJSON encodes the item snapshot
func (i *Item) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.Snapshot())
}

// Wait blocks until the item is terminal or ctx is done
func Wait(ctx context.Context, events ...*Item) error {
	for _, event := range events {
		select {
		case <-event.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
