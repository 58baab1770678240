package exchange

import (
	"time"

	"github.com/viant/fluxmesh/logging"
	"github.com/viant/fluxmesh/metric"
)

// Option represents exchange option
type Option func(*Service)

// WithSources registers initial sources
func WithSources(sources ...Source) Option {
	return func(s *Service) {
		s.initial = append(s.initial, sources...)
	}
}

// WithRefreshInterval sets the delay between Execute cycles
func WithRefreshInterval(interval time.Duration) Option {
	return func(s *Service) {
		s.refresh = interval
	}
}

// WithStrictRouting makes Collect fail on mail addressed to an unknown source
func WithStrictRouting(strict bool) Option {
	return func(s *Service) {
		s.strict = strict
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
