package worker

import (
	"context"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/viant/fluxmesh/errs"
)

// Retry strategies
const (
	RetryFixed       = "fixed"
	RetryExponential = "exponential"
	RetryNone        = "none"
)

type (
	// Handler performs a task on a converted input
	Handler func(ctx context.Context, input interface{}) (interface{}, error)

	// Task represents a named unit of work
	Task struct {
		Name    string       `json:"name" yaml:"name"`
		Input   reflect.Type `json:"-" yaml:"-"`
		Handler Handler      `json:"-" yaml:"-"`
		Policy  Policy       `json:"policy,omitempty" yaml:"policy,omitempty"`
	}

	// Policy controls task concurrency and retries
	Policy struct {
		Capacity int    `json:"capacity,omitempty" yaml:"capacity,omitempty"`
		Retry    *Retry `json:"retry,omitempty" yaml:"retry,omitempty"`
	}

	// Retry strategy for task
	Retry struct {
		Type       string        `json:"type,omitempty" yaml:"type,omitempty"` // fixed, exponential, none
		MaxRetries int           `json:"maxRetries,omitempty" yaml:"maxRetries,omitempty"`
		Delay      time.Duration `json:"delay,omitempty" yaml:"delay,omitempty"`
		Multiplier float64       `json:"multiplier,omitempty" yaml:"multiplier,omitempty"` // exponential multiplier (>1)
		MaxDelay   time.Duration `json:"maxDelay,omitempty" yaml:"maxDelay,omitempty"`
	}
)

// Registry holds tasks by name
type Registry struct {
	mux   sync.RWMutex
	tasks map[string]*Task
}

// Register adds tasks; names must be unique
func (r *Registry) Register(tasks ...*Task) error {
	r.mux.Lock()
	defer r.mux.Unlock()
	for _, task := range tasks {
		if task == nil || task.Name == "" {
			return errs.Configuration("task name was empty")
		}
		if task.Handler == nil {
			return errs.Configuration("task %v has no handler", task.Name)
		}
		if task.Policy.Capacity < 0 {
			return errs.Configuration("task %v capacity must be positive, got %v", task.Name, task.Policy.Capacity)
		}
		if _, ok := r.tasks[task.Name]; ok {
			return errs.Configuration("task %v already registered", task.Name)
		}
	}
	for _, task := range tasks {
		r.tasks[task.Name] = task
	}
	return nil
}

// Lookup returns a task by name
func (r *Registry) Lookup(name string) (*Task, error) {
	r.mux.RLock()
	defer r.mux.RUnlock()
	task, ok := r.tasks[name]
	if !ok {
		return nil, errs.Lookup("task %v not found", name)
	}
	return task, nil
}

// Names returns sorted task names
func (r *Registry) Names() []string {
	r.mux.RLock()
	defer r.mux.RUnlock()
	ret := make([]string, 0, len(r.tasks))
	for name := range r.tasks {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret
}

// NewRegistry creates a registry
func NewRegistry(tasks ...*Task) (*Registry, error) {
	ret := &Registry{tasks: map[string]*Task{}}
	if err := ret.Register(tasks...); err != nil {
		return nil, err
	}
	return ret, nil
}
