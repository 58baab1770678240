package processor

import (
	"time"

	"github.com/viant/fluxmesh/logging"
	"github.com/viant/fluxmesh/metric"
	"github.com/viant/fluxmesh/model/work"
	"github.com/viant/fluxmesh/progress"
	"github.com/viant/fluxmesh/service/event"
	"github.com/viant/fluxmesh/service/messaging"
)

// Option represents processor option
type Option func(*Service)

// WithConfig sets processor configuration
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithCapacity sets the number of items dispatched per cycle
func WithCapacity(capacity int) Option {
	return func(s *Service) {
		s.config.Capacity = capacity
	}
}

// WithRefreshInterval sets the delay between cycles
func WithRefreshInterval(interval time.Duration) Option {
	return func(s *Service) {
		s.config.RefreshInterval = interval
	}
}

// WithQueue sets the backing queue implementation
func WithQueue(queue messaging.Buffer[work.Event]) Option {
	return func(s *Service) {
		s.queue = queue
	}
}

// WithErrorHandler sets a callback invoked for every failed item
func WithErrorHandler(handler ErrorHandler) Option {
	return func(s *Service) {
		s.errorHandler = handler
	}
}

// WithPermission sets a hook consulted before an item is dispatched
func WithPermission(permission Permission) Option {
	return func(s *Service) {
		s.permission = permission
	}
}

// WithName sets the processor name used in logs and metrics
func WithName(name string) Option {
	return func(s *Service) {
		s.name = name
	}
}

// WithLogger sets logger
func WithLogger(logger logging.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics sets metrics
func WithMetrics(metrics *metric.Metrics) Option {
	return func(s *Service) {
		s.metrics = metrics
	}
}

// WithProgress sets progress tracker
func WithProgress(tracker *progress.Progress) Option {
	return func(s *Service) {
		s.progress = tracker
	}
}

// WithPublisher sets a publisher notified of item dispatch and completion
func WithPublisher(publisher *event.Publisher[work.Event]) Option {
	return func(s *Service) {
		s.publisher = publisher
	}
}
