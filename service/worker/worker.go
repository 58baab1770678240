package worker

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/viant/fluxmesh/errs"
	"github.com/viant/fluxmesh/logging"
	"github.com/viant/fluxmesh/metric"
	"github.com/viant/fluxmesh/model/work"
	"github.com/viant/fluxmesh/service/executor"
	"github.com/viant/fluxmesh/tracing"
	"github.com/viant/structology/conv"
)

const defaultRetryDelay = 100 * time.Millisecond

// Worker performs registered tasks, each task on its own capacity-bounded executor
type Worker struct {
	registry   *Registry
	converter  *conv.Converter
	refresh    time.Duration
	maxRetries int
	retryDelay time.Duration
	logger     logging.Logger
	metrics    *metric.Metrics

	mux       sync.Mutex
	running   bool
	ctx       context.Context
	executors map[string]*executor.Service
}

// New creates a worker for the registry
func New(registry *Registry, options ...Option) (*Worker, error) {
	if registry == nil {
		return nil, errs.Configuration("task registry was nil")
	}
	convOptions := conv.DefaultOptions()
	convOptions.IgnoreUnmapped = true
	convOptions.ClonePointerData = true
	ret := &Worker{
		registry:   registry,
		converter:  conv.NewConverter(convOptions),
		refresh:    10 * time.Millisecond,
		retryDelay: defaultRetryDelay,
		logger:     logging.NoOp(),
		executors:  map[string]*executor.Service{},
	}
	for _, opt := range options {
		opt(ret)
	}
	if ret.refresh < 0 {
		return nil, errs.Configuration("refresh interval must not be negative, got %v", ret.refresh)
	}
	return ret, nil
}

// Registry returns task registry
func (w *Worker) Registry() *Registry {
	return w.registry
}

// Start starts task executors
func (w *Worker) Start(ctx context.Context) error {
	w.mux.Lock()
	defer w.mux.Unlock()
	if w.running {
		return nil
	}
	w.running = true
	w.ctx = context.WithoutCancel(ctx)
	for _, exec := range w.executors {
		if err := exec.Start(w.ctx); err != nil {
			return err
		}
	}
	return nil
}

// Stop stops task executors; in-flight attempts run to completion
func (w *Worker) Stop() {
	w.mux.Lock()
	defer w.mux.Unlock()
	if !w.running {
		return
	}
	w.running = false
	for _, exec := range w.executors {
		exec.Stop()
	}
}

func (w *Worker) executor(task *Task) (*executor.Service, error) {
	w.mux.Lock()
	defer w.mux.Unlock()
	if !w.running {
		return nil, errs.Validation("worker is not running")
	}
	if exec, ok := w.executors[task.Name]; ok {
		return exec, nil
	}
	capacity := task.Policy.Capacity
	if capacity == 0 {
		capacity = 1
	}
	exec, err := executor.New(
		executor.WithName(task.Name),
		executor.WithCapacity(capacity),
		executor.WithRefreshInterval(w.refresh),
		executor.WithLogger(logging.With(w.logger, "task", task.Name)),
		executor.WithMetrics(w.metrics),
	)
	if err != nil {
		return nil, err
	}
	if err = exec.Start(w.ctx); err != nil {
		return nil, err
	}
	w.executors[task.Name] = exec
	return exec, nil
}

// Perform runs the named task and waits for its output. Failed attempts are
// retried according to the task retry policy, each attempt as a new work item.
func (w *Worker) Perform(ctx context.Context, name string, input interface{}) (output interface{}, err error) {
	ctx, span := tracing.StartSpan(ctx, fmt.Sprintf("worker.Perform %s", name), tracing.KindInternal)
	defer func() { tracing.EndSpan(span, err) }()
	span.WithAttributes(map[string]string{"task.name": name})

	task, err := w.registry.Lookup(name)
	if err != nil {
		return nil, err
	}
	if input, err = w.convert(task, input); err != nil {
		return nil, err
	}
	exec, err := w.executor(task)
	if err != nil {
		return nil, err
	}
	for attempt := 0; ; attempt++ {
		span.WithCount("attempts", attempt+1)
		output, err = w.attempt(ctx, exec, task, input)
		if err == nil {
			return output, nil
		}
		retry, delay := w.shouldRetry(task.Policy.Retry, attempt)
		if !retry || ctx.Err() != nil {
			return nil, err
		}
		w.logger.Warn("retrying task", "task", name, "attempt", attempt+1, "delay", delay, "error", err)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, err
		case <-timer.C:
		}
	}
}

func (w *Worker) attempt(ctx context.Context, exec *executor.Service, task *Task, input interface{}) (interface{}, error) {
	item := work.New(task.Name, func(ctx context.Context) (interface{}, error) {
		return task.Handler(ctx, input)
	})
	if err := exec.AppendContext(ctx, item); err != nil {
		return nil, err
	}
	defer func() { _ = exec.Items().Exclude(item) }()
	if err := exec.Forward(ctx); err != nil {
		return nil, err
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-item.Done():
	}
	if item.Status() == work.StatusFailed {
		return nil, item.Err()
	}
	return item.Result(), nil
}

func (w *Worker) convert(task *Task, input interface{}) (interface{}, error) {
	if task.Input == nil || input == nil {
		return input, nil
	}
	if reflect.TypeOf(input) == task.Input {
		return input, nil
	}
	target := task.Input
	if target.Kind() == reflect.Ptr {
		target = target.Elem()
	}
	instance := reflect.New(target)
	if err := w.converter.Convert(input, instance.Interface()); err != nil {
		return nil, errs.Validation("invalid %v input for task %v: %v", task.Input.String(), task.Name, err)
	}
	if task.Input.Kind() == reflect.Ptr {
		return instance.Interface(), nil
	}
	return instance.Elem().Interface(), nil
}
