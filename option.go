package fluxmesh

import (
	"reflect"

	"github.com/viant/fluxmesh/logging"
	"github.com/viant/fluxmesh/metric"
	"github.com/viant/fluxmesh/model/work"
	"github.com/viant/fluxmesh/progress"
	"github.com/viant/fluxmesh/service/event"
	"github.com/viant/fluxmesh/service/exchange"
	"github.com/viant/fluxmesh/service/processor"
	"github.com/viant/fluxmesh/service/worker"
	"github.com/viant/fluxmesh/tracing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option represents service option
type Option func(s *Service)

// WithLogger sets the logger shared by all components
func WithLogger(logger logging.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics sets metrics shared by all components
func WithMetrics(metrics *metric.Metrics) Option {
	return func(s *Service) {
		s.metrics = metrics
	}
}

// WithTypes registers types that config item type names resolve to
func WithTypes(types ...reflect.Type) Option {
	return func(s *Service) {
		s.types.Register(types...)
	}
}

// WithTasks registers worker tasks
func WithTasks(tasks ...*worker.Task) Option {
	return func(s *Service) {
		s.tasks = append(s.tasks, tasks...)
	}
}

// WithSources registers initial mail sources
func WithSources(sources ...exchange.Source) Option {
	return func(s *Service) {
		s.sources = append(s.sources, sources...)
	}
}

// WithErrorHandler sets a callback invoked for every failed work item
func WithErrorHandler(handler processor.ErrorHandler) Option {
	return func(s *Service) {
		s.errorHandler = handler
	}
}

// WithPermission sets the executor dispatch permission hook
func WithPermission(permission processor.Permission) Option {
	return func(s *Service) {
		s.permission = permission
	}
}

// WithProgressListener sets executor progress callback
func WithProgressListener(listener func(progress.Progress)) Option {
	return func(s *Service) {
		s.progressListener = listener
	}
}

// WithEventListener sets a handler receiving work item lifecycle events
func WithEventListener(handler func(*event.Event[work.Event])) Option {
	return func(s *Service) {
		s.eventHandler = handler
	}
}

// WithTracing installs the stdout span exporter, writing to outputFile when set.
// The first successful initialisation in the process wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		s.tracingErr = tracing.Init(tracing.Config{Service: serviceName, Version: serviceVersion, OutputFile: outputFile})
	}
}

// WithTracingExporter installs a custom span exporter
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		s.tracingErr = tracing.InitWithExporter(tracing.Config{Service: serviceName, Version: serviceVersion}, exporter)
	}
}
