// Package metrics defines the Prometheus collectors for the event organizer.
// Collectors are registered on the default registry and exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Mutations counts committed mutations by kind (add, update, delete,
	// import). Incremented strictly after commit, alongside the broadcast.
	Mutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eventorganizer_mutations_total",
		Help: "Committed event mutations by kind.",
	}, []string{"kind"})

	// LongPollWaiters tracks the number of long-poll waiters currently
	// registered.
	LongPollWaiters = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "eventorganizer_longpoll_waiters",
		Help: "Long-poll waiters currently pending.",
	})

	// LongPollDeliveries counts long-poll waiters resolved with a mutation.
	LongPollDeliveries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eventorganizer_longpoll_deliveries_total",
		Help: "Long-poll waiters fulfilled with a mutation.",
	})

	// LongPollTimeouts counts long-poll waiters that resolved with the
	// timeout sentinel.
	LongPollTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eventorganizer_longpoll_timeouts_total",
		Help: "Long-poll waiters that timed out without a mutation.",
	})

	// PushDeliveries counts notifications delivered to push-stream clients,
	// by topic.
	PushDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eventorganizer_push_deliveries_total",
		Help: "Notifications delivered to push subscribers by topic.",
	}, []string{"topic"})

	// StreamClients tracks the number of connected push-stream clients.
	StreamClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "eventorganizer_stream_clients",
		Help: "Connected push-stream clients.",
	})

	// RequestDuration observes HTTP request latency by method, route and
	// status.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "eventorganizer_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
