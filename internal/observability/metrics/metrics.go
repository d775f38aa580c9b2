// Package metrics registers the service's Prometheus collectors. Everything
// lands in the default registry and is served by the /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	mutations      *prometheus.CounterVec
	backendOps     *prometheus.CounterVec
	notifierPolls  *prometheus.CounterVec
	notifierEvents *prometheus.CounterVec
	notifierErrors *prometheus.CounterVec
	subscribers    prometheus.Gauge
}

func New() *Metrics {
	return &Metrics{
		mutations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "peppers",
			Name:      "mutations_total",
			Help:      "Completed list mutations by operation.",
		}, []string{"operation"}),
		backendOps: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "peppers",
			Name:      "backend_operations_total",
			Help:      "Key-value backend operations by kind and outcome.",
		}, []string{"operation", "outcome"}),
		notifierPolls: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "peppers",
			Subsystem: "notifier",
			Name:      "polls_total",
			Help:      "Revision polls issued by subscription loops.",
		}, []string{"tenant_id"}),
		notifierEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "peppers",
			Subsystem: "notifier",
			Name:      "events_total",
			Help:      "Events delivered to subscribers by reason.",
		}, []string{"reason"}),
		notifierErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "peppers",
			Subsystem: "notifier",
			Name:      "poll_errors_total",
			Help:      "Failed revision polls.",
		}, []string{"tenant_id"}),
		subscribers: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "peppers",
			Subsystem: "notifier",
			Name:      "subscribers",
			Help:      "Open change-stream subscriptions.",
		}),
	}
}

func (m *Metrics) RecordMutation(operation string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(operation).Inc()
}

func (m *Metrics) RecordBackendOp(operation, outcome string) {
	if m == nil {
		return
	}
	m.backendOps.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) SubscriberOpened() {
	if m == nil {
		return
	}
	m.subscribers.Inc()
}

func (m *Metrics) SubscriberClosed() {
	if m == nil {
		return
	}
	m.subscribers.Dec()
}

// OnPoll, OnEvent and OnPollError let Metrics observe subscription loops.

func (m *Metrics) OnPoll(tenantID string) {
	if m == nil {
		return
	}
	m.notifierPolls.WithLabelValues(tenantID).Inc()
}

func (m *Metrics) OnEvent(tenantID string, reason string) {
	if m == nil {
		return
	}
	m.notifierEvents.WithLabelValues(reason).Inc()
}

func (m *Metrics) OnPollError(tenantID string) {
	if m == nil {
		return
	}
	m.notifierErrors.WithLabelValues(tenantID).Inc()
}
