// Package metrics exposes Prometheus collectors for store traffic and HTTP
// requests on a private registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Registry = prometheus.NewRegistry()

	StoreOps = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tourdesk",
		Name:      "store_operations_total",
		Help:      "Document store operations by collection, operation and outcome.",
	}, []string{"collection", "op", "outcome"})

	StoreLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tourdesk",
		Name:      "store_operation_seconds",
		Help:      "Document store operation latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op"})

	PrefetchState = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "tourdesk",
		Name:      "prefetch_state",
		Help:      "1 for the current prefetch state, 0 otherwise.",
	}, []string{"state"})

	Inquiries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tourdesk",
		Name:      "inquiries_total",
		Help:      "Quote form submissions by outcome.",
	}, []string{"outcome"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		StoreOps, StoreLatency, PrefetchState, Inquiries,
	)
}

// ObserveStore records one store call.
func ObserveStore(collection, op string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	StoreOps.WithLabelValues(collection, op, outcome).Inc()
	StoreLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// SetPrefetchState marks state as the active one.
func SetPrefetchState(state string, all []string) {
	for _, s := range all {
		v := 0.0
		if s == state {
			v = 1
		}
		PrefetchState.WithLabelValues(s).Set(v)
	}
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
