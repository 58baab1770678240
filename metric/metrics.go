// Package metric exposes prometheus collectors for processors and mail mediators.
//
// All methods are nil-safe: components built without metrics pass a nil
// *Metrics and every call becomes a no-op.
package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups fluxmesh collectors
type Metrics struct {
	Dispatched        *prometheus.CounterVec
	Completed         *prometheus.CounterVec
	Failed            *prometheus.CounterVec
	QueueDepth        *prometheus.GaugeVec
	AvailableCapacity *prometheus.GaugeVec
	MailCollected     prometheus.Counter
	MailDelivered     prometheus.Counter
	MailDiscarded     prometheus.Counter
}

// New creates collectors under namespace
func New(namespace string) *Metrics {
	processorLabels := []string{"processor"}
	return &Metrics{
		Dispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "processor", Name: "dispatched_total",
			Help: "Number of work items dispatched for execution",
		}, processorLabels),
		Completed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "processor", Name: "completed_total",
			Help: "Number of work items completed",
		}, processorLabels),
		Failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "processor", Name: "failed_total",
			Help: "Number of work items failed",
		}, processorLabels),
		QueueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "processor", Name: "queue_depth",
			Help: "Number of queued work items",
		}, processorLabels),
		AvailableCapacity: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "processor", Name: "available_capacity",
			Help: "Remaining dispatch capacity in the current cycle",
		}, processorLabels),
		MailCollected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "mail", Name: "collected_total",
			Help: "Number of mails collected from outboxes",
		}),
		MailDelivered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "mail", Name: "delivered_total",
			Help: "Number of mails delivered to inboxes",
		}),
		MailDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "mail", Name: "discarded_total",
			Help: "Number of mails discarded for unknown or deleted sources",
		}),
	}
}

// Collectors returns all collectors
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.Dispatched, m.Completed, m.Failed, m.QueueDepth, m.AvailableCapacity,
		m.MailCollected, m.MailDelivered, m.MailDiscarded,
	}
}

// Register registers all collectors with registerer
func (m *Metrics) Register(registerer prometheus.Registerer) error {
	for _, collector := range m.Collectors() {
		if err := registerer.Register(collector); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry creates a dedicated prometheus registry with fluxmesh collectors
func NewRegistry(namespace string) (*prometheus.Registry, *Metrics, error) {
	registry := prometheus.NewRegistry()
	metrics := New(namespace)
	if err := metrics.Register(registry); err != nil {
		return nil, nil, err
	}
	return registry, metrics, nil
}

// ItemDispatched records a dispatch
func (m *Metrics) ItemDispatched(processor string) {
	if m == nil {
		return
	}
	m.Dispatched.WithLabelValues(processor).Inc()
}

// ItemCompleted records a completion
func (m *Metrics) ItemCompleted(processor string) {
	if m == nil {
		return
	}
	m.Completed.WithLabelValues(processor).Inc()
}

// ItemFailed records a failure
func (m *Metrics) ItemFailed(processor string) {
	if m == nil {
		return
	}
	m.Failed.WithLabelValues(processor).Inc()
}

// Capacity records queue depth and available capacity
func (m *Metrics) Capacity(processor string, queued, available int) {
	if m == nil {
		return
	}
	m.QueueDepth.WithLabelValues(processor).Set(float64(queued))
	m.AvailableCapacity.WithLabelValues(processor).Set(float64(available))
}

// Collected records collected mails
func (m *Metrics) Collected(count int) {
	if m == nil || count == 0 {
		return
	}
	m.MailCollected.Add(float64(count))
}

// Delivered records delivered mails
func (m *Metrics) Delivered(count int) {
	if m == nil || count == 0 {
		return
	}
	m.MailDelivered.Add(float64(count))
}

// Discarded records discarded mails
func (m *Metrics) Discarded(count int) {
	if m == nil || count == 0 {
		return
	}
	m.MailDiscarded.Add(float64(count))
}
