package fluxmesh

import (
	"context"
	"fmt"

	"github.com/viant/fluxmesh/logging"
	"github.com/viant/fluxmesh/metric"
	"github.com/viant/fluxmesh/model/types"
	"github.com/viant/fluxmesh/model/work"
	"github.com/viant/fluxmesh/progress"
	"github.com/viant/fluxmesh/service/branch"
	"github.com/viant/fluxmesh/service/event"
	"github.com/viant/fluxmesh/service/exchange"
	"github.com/viant/fluxmesh/service/executor"
	"github.com/viant/fluxmesh/service/processor"
	"github.com/viant/fluxmesh/service/worker"
	"github.com/viant/fluxmesh/tracing"
)

// Service wires the executor, task worker and mail exchange
type Service struct {
	config           *Config
	logger           logging.Logger
	metrics          *metric.Metrics
	types            *types.Registry
	tasks            []*worker.Task
	sources          []exchange.Source
	errorHandler     processor.ErrorHandler
	permission       processor.Permission
	progressListener func(progress.Progress)
	eventHandler     func(*event.Event[work.Event])
	tracingErr       error

	executor *executor.Service
	worker   *worker.Worker
	exchange *exchange.Service
	listener *event.Listener[work.Event]
}

// New creates a service with DefaultConfig
func New(options ...Option) (*Service, error) {
	return NewFromConfig(DefaultConfig(), options...)
}

// NewFromConfig creates a service from config
func NewFromConfig(config *Config, options ...Option) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	s := &Service{config: config, types: types.NewRegistry()}
	for _, opt := range options {
		opt(s)
	}
	if s.tracingErr != nil {
		return nil, fmt.Errorf("failed to initialise tracing: %w", s.tracingErr)
	}
	if err := s.init(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Service) init() error {
	if s.logger == nil {
		s.logger = logging.New(s.config.Logging)
	}
	if tracingConfig := s.config.Tracing; tracingConfig.Enabled {
		if err := tracing.Init(tracing.Config{Service: tracingConfig.Service, Version: tracingConfig.Version, OutputFile: tracingConfig.OutputFile}); err != nil {
			return fmt.Errorf("failed to initialise tracing: %w", err)
		}
	}
	itemTypes, err := s.types.Resolve(s.config.Pile.ItemTypes...)
	if err != nil {
		return err
	}
	var publisher *event.Publisher[work.Event]
	if s.eventHandler != nil {
		publisher = event.NewPublisher[work.Event](nil)
		s.listener = event.NewListener(publisher, s.eventHandler)
	}
	refresh := s.config.Processor.RefreshInterval()
	if s.executor, err = executor.New(
		executor.WithCapacity(s.config.Processor.Capacity),
		executor.WithRefreshInterval(refresh),
		executor.WithItemTypes(itemTypes...),
		executor.WithStrictType(s.config.Pile.StrictType),
		executor.WithErrorHandler(s.errorHandler),
		executor.WithPermission(s.permission),
		executor.WithLogger(logging.With(s.logger, "component", "executor")),
		executor.WithMetrics(s.metrics),
		executor.WithProgressListener(s.progressListener),
		executor.WithPublisher(publisher),
	); err != nil {
		return err
	}
	tasks, err := worker.NewRegistry(s.tasks...)
	if err != nil {
		return err
	}
	if s.worker, err = worker.New(tasks,
		worker.WithRefreshInterval(refresh),
		worker.WithLogger(logging.With(s.logger, "component", "worker")),
		worker.WithMetrics(s.metrics),
	); err != nil {
		return err
	}
	s.exchange, err = exchange.New(
		exchange.WithSources(s.sources...),
		exchange.WithRefreshInterval(s.config.Exchange.RefreshInterval()),
		exchange.WithStrictRouting(s.config.Exchange.Strict),
		exchange.WithLogger(logging.With(s.logger, "component", "exchange")),
		exchange.WithMetrics(s.metrics),
	)
	return err
}

// Config returns service config
func (s *Service) Config() *Config {
	return s.config
}

// Types returns type registry
func (s *Service) Types() *types.Registry {
	return s.types
}

// Executor returns work item executor
func (s *Service) Executor() *executor.Service {
	return s.executor
}

// Worker returns task worker
func (s *Service) Worker() *worker.Worker {
	return s.worker
}

// Exchange returns mail exchange
func (s *Service) Exchange() *exchange.Service {
	return s.exchange
}

// Submit appends work items to the executor
func (s *Service) Submit(ctx context.Context, items ...work.Event) error {
	for _, item := range items {
		if err := s.executor.AppendContext(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

// Perform runs a registered task and returns its output
func (s *Service) Perform(ctx context.Context, task string, input interface{}) (interface{}, error) {
	return s.worker.Perform(ctx, task, input)
}

// NewBranch creates a branch registered with the exchange
func (s *Service) NewBranch(name string) (*branch.Branch, error) {
	ret := branch.New(name)
	if err := s.exchange.AddSource(ret); err != nil {
		return nil, err
	}
	return ret, nil
}

// Start starts the executor loop, task worker and mail exchange loop
func (s *Service) Start(ctx context.Context) error {
	if s.listener != nil {
		s.listener.Start(ctx)
	}
	if err := s.executor.Start(ctx); err != nil {
		return err
	}
	if err := s.worker.Start(ctx); err != nil {
		return err
	}
	s.exchange.Start(ctx, s.config.Exchange.RefreshInterval())
	s.logger.Info("service started", "capacity", s.config.Processor.Capacity, "tasks", len(s.tasks))
	return nil
}

// Stop stops all loops; in-flight work runs to completion
func (s *Service) Stop() {
	s.exchange.Stop()
	s.worker.Stop()
	s.executor.Stop()
	if s.listener != nil {
		s.listener.Stop()
	}
	s.logger.Info("service stopped")
}
