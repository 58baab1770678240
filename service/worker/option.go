package worker

import (
	"time"

	"github.com/viant/fluxmesh/logging"
	"github.com/viant/fluxmesh/metric"
)

// Option represents worker option
type Option func(*Worker)

// WithRefreshInterval sets executors refresh interval
func WithRefreshInterval(interval time.Duration) Option {
	return func(w *Worker) {
		w.refresh = interval
	}
}

// WithRetry sets retry defaults used when a task does not define them
func WithRetry(maxRetries int, delay time.Duration) Option {
	return func(w *Worker) {
		w.maxRetries = maxRetries
		w.retryDelay = delay
	}
}

// WithLogger sets logger
func WithLogger(logger logging.Logger) Option {
	return func(w *Worker) {
		w.logger = logger
	}
}

// WithMetrics sets metrics shared by task executors
func WithMetrics(metrics *metric.Metrics) Option {
	return func(w *Worker) {
		w.metrics = metrics
	}
}
