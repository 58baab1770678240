package processor

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/viant/fluxmesh/errs"
	"github.com/viant/fluxmesh/logging"
	"github.com/viant/fluxmesh/metric"
	"github.com/viant/fluxmesh/model/work"
	"github.com/viant/fluxmesh/progress"
	"github.com/viant/fluxmesh/service/event"
	"github.com/viant/fluxmesh/service/messaging"
	"github.com/viant/fluxmesh/service/messaging/memory"
	"github.com/viant/fluxmesh/tracing"
)

// ErrorHandler is invoked with the failure and the failed item
type ErrorHandler func(err error, item work.Event)

// Service dispatches queued work items within capacity bounds
type Service struct {
	name         string
	config       Config
	queue        messaging.Buffer[work.Event]
	errorHandler ErrorHandler
	permission   Permission
	logger       logging.Logger
	metrics      *metric.Metrics
	progress     *progress.Progress
	publisher    *event.Publisher[work.Event]

	mux        sync.Mutex
	pass       sync.Mutex
	available  int
	running    bool
	shutdownCh chan struct{}
	loopDone   chan struct{}
	inflight   sync.WaitGroup
}

// New creates a processor
func New(options ...Option) (*Service, error) {
	s := &Service{
		name:   "processor",
		config: DefaultConfig(),
	}
	for _, opt := range options {
		opt(s)
	}
	if err := s.config.Validate(); err != nil {
		return nil, err
	}
	if s.queue == nil {
		s.queue = memory.NewQueue[work.Event](memory.Config{DeadLetter: true})
	}
	if s.logger == nil {
		s.logger = logging.NoOp()
	}
	s.available = s.config.Capacity
	return s, nil
}

// Name returns processor name
func (s *Service) Name() string {
	return s.name
}

// Capacity returns the configured capacity
func (s *Service) Capacity() int {
	return s.config.Capacity
}

// RefreshInterval returns the delay between cycles
func (s *Service) RefreshInterval() time.Duration {
	return s.config.RefreshInterval
}

// Available returns remaining capacity in the current cycle
func (s *Service) Available() int {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.available
}

// Len returns number of queued items
func (s *Service) Len() int {
	return s.queue.Size()
}

// Running returns true while the execute loop runs
func (s *Service) Running() bool {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.running
}

// Enqueue adds an item to the queue, it never blocks.
func (s *Service) Enqueue(ctx context.Context, item work.Event) error {
	if item == nil {
		return errs.Validation("nil work item")
	}
	return s.queue.Publish(ctx, &item)
}

// Drain removes and returns all queued items in order. It waits for a
// processing pass in progress, so items denied by the pass are included.
func (s *Service) Drain() []work.Event {
	s.pass.Lock()
	defer s.pass.Unlock()
	return s.queue.Drain()
}

// DeadLetters returns failed items when the queue keeps a dead letter list
func (s *Service) DeadLetters() []work.Event {
	if dlq, ok := s.queue.(interface{ DLQ() []work.Event }); ok {
		return dlq.DLQ()
	}
	return nil
}

// Replenish restores available capacity
func (s *Service) Replenish() {
	s.mux.Lock()
	s.available = s.config.Capacity
	s.mux.Unlock()
	s.metrics.Capacity(s.name, s.queue.Size(), s.config.Capacity)
}

// acquire takes one capacity slot together with the queue head
func (s *Service) acquire() (messaging.Message[work.Event], bool) {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.available <= 0 {
		return nil, false
	}
	msg, ok := s.queue.TryConsume()
	if !ok {
		return nil, false
	}
	s.available--
	return msg, true
}

// Process dispatches queued items up to the available capacity and returns
// the number of dispatched items. Dispatched items run in the background on a
// context detached from ctx cancellation.
func (s *Service) Process(ctx context.Context) (dispatched int, err error) {
	ctx, span := tracing.StartSpan(ctx, "processor.Process", tracing.KindInternal)
	defer func() {
		span.WithCount("dispatched", dispatched)
		tracing.EndSpan(span, err)
	}()
	span.WithAttributes(map[string]string{"processor": s.name})
	s.pass.Lock()
	defer s.pass.Unlock()
	execCtx := context.WithoutCancel(ctx)
	var denied []work.Event
	for {
		msg, ok := s.acquire()
		if !ok {
			break
		}
		item := *msg.T()
		if s.permission != nil && !s.permission(ctx, item) {
			_ = msg.Ack()
			denied = append(denied, item)
			continue
		}
		if err := item.Start(); err != nil {
			_ = msg.Ack()
			s.logger.Warn("skipping work item", "processor", s.name, "item", item.Identity().String(), "error", err)
			continue
		}
		dispatched++
		s.metrics.ItemDispatched(s.name)
		s.progress.Update(progress.Delta{Pending: -1, Running: 1})
		s.publish(ctx, event.TypeDispatched, item, nil)
		s.inflight.Add(1)
		go s.run(execCtx, item, msg)
	}
	for _, item := range denied {
		if err = s.Enqueue(ctx, item); err != nil {
			return dispatched, err
		}
	}
	s.metrics.Capacity(s.name, s.queue.Size(), s.Available())
	return dispatched, nil
}

func (s *Service) run(ctx context.Context, item work.Event, msg messaging.Message[work.Event]) {
	defer s.inflight.Done()
	var err error
	defer func() {
		if r := recover(); r != nil {
			err = errs.Execution(fmt.Errorf("work item %v panicked: %v", item.Identity(), r))
		}
		if err == nil && item.Status() == work.StatusFailed {
			err = errs.Execution(fmt.Errorf("work item %v failed", item.Identity()))
		}
		s.complete(item, msg, err)
	}()
	err = item.Invoke(ctx)
}

func (s *Service) complete(item work.Event, msg messaging.Message[work.Event], err error) {
	if err == nil {
		_ = msg.Ack()
		s.metrics.ItemCompleted(s.name)
		s.progress.Update(progress.Delta{Running: -1, Completed: 1})
		s.publish(context.Background(), event.TypeCompleted, item, nil)
		return
	}
	item.Fail(err)
	_ = msg.Nack(err)
	s.metrics.ItemFailed(s.name)
	s.progress.Update(progress.Delta{Running: -1, Failed: 1})
	s.publish(context.Background(), event.TypeFailed, item, err)
	s.logger.Warn("work item failed", "processor", s.name, "item", item.Identity().String(), "error", err)
	if s.errorHandler != nil {
		s.errorHandler(err, item)
	}
}

func (s *Service) publish(ctx context.Context, eventType string, item work.Event, err error) {
	if s.publisher == nil {
		return
	}
	eventContext := &event.Context{Source: s.name, ItemID: item.Identity().String(), EventType: eventType}
	if timed, ok := item.(interface{ Duration() time.Duration }); ok {
		eventContext.TimeTakenMs = int(timed.Duration().Milliseconds())
	}
	if err != nil {
		eventContext.Error = err.Error()
	}
	if pubErr := s.publisher.Publish(ctx, event.NewEvent(eventContext, item)); pubErr != nil {
		s.logger.Warn("failed to publish event", "processor", s.name, "event", eventType, "error", pubErr)
	}
}

// Wait blocks until all dispatched items finish or ctx is done
func (s *Service) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) begin() (chan struct{}, chan struct{}, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.running {
		return nil, nil, errs.Validation("processor %v is already running", s.name)
	}
	s.running = true
	s.shutdownCh = make(chan struct{})
	s.loopDone = make(chan struct{})
	return s.shutdownCh, s.loopDone, nil
}

// Execute runs processing cycles until Stop is called or ctx is done. Each
// cycle restores capacity, dispatches queued items and waits the refresh interval.
func (s *Service) Execute(ctx context.Context) error {
	shutdownCh, loopDone, err := s.begin()
	if err != nil {
		return err
	}
	return s.loop(ctx, shutdownCh, loopDone)
}

// Start runs Execute in the background; it is a no-op when already running.
func (s *Service) Start(ctx context.Context) {
	shutdownCh, loopDone, err := s.begin()
	if err != nil {
		return
	}
	go func() {
		if err := s.loop(ctx, shutdownCh, loopDone); err != nil {
			s.logger.Error("processor loop stopped", "processor", s.name, "error", err)
		}
	}()
}

func (s *Service) loop(ctx context.Context, shutdownCh, loopDone chan struct{}) error {
	defer func() {
		s.mux.Lock()
		s.running = false
		s.mux.Unlock()
		close(loopDone)
	}()
	s.logger.Debug("processor started", "processor", s.name, "capacity", s.config.Capacity)
	for {
		select {
		case <-shutdownCh:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		s.Replenish()
		if _, err := s.Process(ctx); err != nil {
			s.logger.Error("processing cycle failed", "processor", s.name, "error", err)
		}
		if s.config.RefreshInterval <= 0 {
			runtime.Gosched()
			continue
		}
		timer := time.NewTimer(s.config.RefreshInterval)
		select {
		case <-shutdownCh:
			timer.Stop()
			return nil
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Stop requests the execute loop to exit and waits until it does. Queued
// items are retained and in-flight items keep running.
func (s *Service) Stop() {
	s.mux.Lock()
	if !s.running {
		s.mux.Unlock()
		return
	}
	select {
	case <-s.shutdownCh:
	default:
		close(s.shutdownCh)
	}
	loopDone := s.loopDone
	s.mux.Unlock()
	<-loopDone
}
