package executor

import (
	"reflect"
	"time"

	"github.com/viant/fluxmesh/logging"
	"github.com/viant/fluxmesh/metric"
	"github.com/viant/fluxmesh/model/work"
	"github.com/viant/fluxmesh/progress"
	"github.com/viant/fluxmesh/service/event"
	"github.com/viant/fluxmesh/service/processor"
)

// Option represents executor option
type Option func(*Service)

// WithName sets executor name
func WithName(name string) Option {
	return func(s *Service) {
		s.name = name
	}
}

// WithConfig sets processor configuration
func WithConfig(config processor.Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithCapacity sets processor capacity
func WithCapacity(capacity int) Option {
	return func(s *Service) {
		s.config.Capacity = capacity
	}
}

// WithRefreshInterval sets processor refresh interval
func WithRefreshInterval(interval time.Duration) Option {
	return func(s *Service) {
		s.config.RefreshInterval = interval
	}
}

// WithItemTypes restricts accepted work item types
func WithItemTypes(types ...reflect.Type) Option {
	return func(s *Service) {
		s.itemTypes = append(s.itemTypes, types...)
	}
}

// WithStrictType requires exact work item type match
func WithStrictType(strict bool) Option {
	return func(s *Service) {
		s.strictType = strict
	}
}

// WithErrorHandler sets a callback invoked for every failed item
func WithErrorHandler(handler processor.ErrorHandler) Option {
	return func(s *Service) {
		s.errorHandler = handler
	}
}

// WithPermission sets processor dispatch permission hook
func WithPermission(permission processor.Permission) Option {
	return func(s *Service) {
		s.permission = permission
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

// WithProgressListener registers a callback invoked on every progress change
func WithProgressListener(listener func(progress.Progress)) Option {
	return func(s *Service) {
		s.progressListener = listener
	}
}

// WithPublisher sets a publisher notified of item lifecycle events
func WithPublisher(publisher *event.Publisher[work.Event]) Option {
	return func(s *Service) {
		s.publisher = publisher
	}
}
