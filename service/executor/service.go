package executor

import (
	"context"
	"reflect"
	"time"

	"github.com/viant/fluxmesh/errs"
	"github.com/viant/fluxmesh/internal/lock"
	"github.com/viant/fluxmesh/logging"
	"github.com/viant/fluxmesh/metric"
	"github.com/viant/fluxmesh/model/pile"
	"github.com/viant/fluxmesh/model/progression"
	"github.com/viant/fluxmesh/model/work"
	"github.com/viant/fluxmesh/progress"
	"github.com/viant/fluxmesh/service/event"
	"github.com/viant/fluxmesh/service/processor"
)

// Status summarizes executor state
type Status struct {
	Queued    int `json:"queued"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

// Service owns submitted work items and their processor
type Service struct {
	name             string
	config           processor.Config
	itemTypes        []reflect.Type
	strictType       bool
	errorHandler     processor.ErrorHandler
	permission       processor.Permission
	logger           logging.Logger
	metrics          *metric.Metrics
	progressListener func(progress.Progress)
	publisher        *event.Publisher[work.Event]

	items     *pile.Pile[work.Event]
	pending   *progression.Progression
	processor *processor.Service
	progress  *progress.Progress
	mux       *lock.Mutex
}

// New creates an executor
func New(options ...Option) (*Service, error) {
	s := &Service{
		name:    "executor",
		config:  processor.DefaultConfig(),
		pending: &progression.Progression{},
		mux:     lock.New(),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NoOp()
	}
	var err error
	if s.items, err = pile.New[work.Event](pile.WithItemTypes(s.itemTypes...), pile.WithStrictType(s.strictType)); err != nil {
		return nil, err
	}
	s.progress = progress.New(s.name, s.progressListener)
	if s.processor, err = s.newProcessor(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Service) newProcessor() (*processor.Service, error) {
	return processor.New(
		processor.WithName(s.name),
		processor.WithConfig(s.config),
		processor.WithErrorHandler(s.errorHandler),
		processor.WithPermission(s.permission),
		processor.WithLogger(s.logger),
		processor.WithMetrics(s.metrics),
		processor.WithProgress(s.progress),
		processor.WithPublisher(s.publisher),
	)
}

// Name returns executor name
func (s *Service) Name() string {
	return s.name
}

// Items returns the collection of every submitted item
func (s *Service) Items() *pile.Pile[work.Event] {
	return s.items
}

// Processor returns the active processor or nil when stopped
func (s *Service) Processor() *processor.Service {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.processor
}

// Progress returns progress counters
func (s *Service) Progress() progress.Progress {
	return s.progress.Snapshot()
}

// Append records an item and marks it pending; appending a known item is a no-op.
func (s *Service) Append(item work.Event) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.append(item)
}

// AppendContext is the context-aware form of Append
func (s *Service) AppendContext(ctx context.Context, item work.Event) error {
	if err := s.mux.LockContext(ctx); err != nil {
		return err
	}
	defer s.mux.Unlock()
	return s.append(item)
}

func (s *Service) append(item work.Event) error {
	if item == nil {
		return errs.Validation("nil work item")
	}
	if s.items.Contains(item) {
		return nil
	}
	if err := s.items.Include(item); err != nil {
		return err
	}
	if err := s.pending.Append(item.Identity()); err != nil {
		return err
	}
	s.progress.Update(progress.Delta{Total: 1, Pending: 1})
	return nil
}

// Forward moves pending items to the processor queue in order and runs one
// processing pass. Pending items stay put while the executor is stopped.
func (s *Service) Forward(ctx context.Context) error {
	if err := s.mux.LockContext(ctx); err != nil {
		return err
	}
	proc := s.processor
	if proc == nil {
		s.mux.Unlock()
		return nil
	}
	err := s.forward(ctx, proc)
	s.mux.Unlock()
	if err != nil {
		return err
	}
	_, err = proc.Process(ctx)
	return err
}

func (s *Service) forward(ctx context.Context, proc *processor.Service) error {
	for s.pending.Len() > 0 {
		key, _ := s.pending.At(0)
		item, err := s.items.Get(key)
		if err != nil {
			return err
		}
		if err = proc.Enqueue(ctx, item); err != nil {
			return err
		}
		_, _ = s.pending.PopLeft()
	}
	return nil
}

// Start recreates the processor if needed, forwards pending items and starts
// the processing loop.
func (s *Service) Start(ctx context.Context) error {
	if err := s.mux.LockContext(ctx); err != nil {
		return err
	}
	if s.processor == nil {
		proc, err := s.newProcessor()
		if err != nil {
			s.mux.Unlock()
			return err
		}
		s.processor = proc
	}
	proc := s.processor
	err := s.forward(ctx, proc)
	s.mux.Unlock()
	if err != nil {
		return err
	}
	proc.Start(ctx)
	s.logger.Info("executor started", "executor", s.name, "capacity", s.config.Capacity)
	return nil
}

// Stop stops the processing loop and tears the processor down. Queued items
// that were not dispatched return to the head of the pending sequence;
// in-flight items run to completion.
func (s *Service) Stop() {
	s.mux.Lock()
	proc := s.processor
	s.mux.Unlock()
	if proc == nil {
		return
	}
	proc.Stop()
	s.mux.Lock()
	defer s.mux.Unlock()
	var undispatched []interface{}
	for _, item := range proc.Drain() {
		undispatched = append(undispatched, item.Identity())
	}
	if len(undispatched) > 0 {
		_ = s.pending.Insert(0, undispatched...)
	}
	s.processor = nil
	s.logger.Info("executor stopped", "executor", s.name, "pending", s.pending.Len())
}

func (s *Service) filter(status work.Status) *pile.Pile[work.Event] {
	return s.items.Filter(func(item work.Event) bool { return item.Status() == status })
}

// PendingItems returns items not yet dispatched
func (s *Service) PendingItems() *pile.Pile[work.Event] {
	return s.filter(work.StatusPending)
}

// ProcessingItems returns running items
func (s *Service) ProcessingItems() *pile.Pile[work.Event] {
	return s.filter(work.StatusProcessing)
}

// CompletedItems returns completed items
func (s *Service) CompletedItems() *pile.Pile[work.Event] {
	return s.filter(work.StatusCompleted)
}

// FailedItems returns failed items
func (s *Service) FailedItems() *pile.Pile[work.Event] {
	return s.filter(work.StatusFailed)
}

// Status returns queue and execution counters
func (s *Service) Status() Status {
	ret := Status{}
	s.mux.Lock()
	ret.Queued = s.pending.Len()
	if s.processor != nil {
		ret.Queued += s.processor.Len()
	}
	s.mux.Unlock()
	s.items.Range(func(item work.Event) bool {
		switch item.Status() {
		case work.StatusProcessing:
			ret.Active++
		case work.StatusCompleted:
			ret.Completed++
		case work.StatusFailed:
			ret.Failed++
		}
		return true
	})
	return ret
}

// Wait blocks until every submitted item reaches a terminal status or ctx is done.
func (s *Service) Wait(ctx context.Context) error {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		done := true
		s.items.Range(func(item work.Event) bool {
			if !item.Status().IsTerminal() {
				done = false
				return false
			}
			return true
		})
		if done {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
