// Package observability exposes the feed counters to Prometheus.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "chatfeed"

// FeedMetrics groups every metric of the feed engine.
// Each instance registers itself on the given registerer, tests use a private registry.
type FeedMetrics struct {
	MessagesSent           prometheus.Counter
	MessagesDeleted        prometheus.Counter
	PagesServed            prometheus.Counter
	Invalidations          prometheus.Counter
	CoalescedInvalidations prometheus.Counter
	Recomputations         prometheus.Counter
	RecomputeFailures      prometheus.Counter
	SnapshotsPushed        prometheus.Counter
	PushFailures           prometheus.Counter
	ActiveSubscriptions    prometheus.Gauge
	RecomputeDuration      prometheus.Histogram
}

func NewFeedMetrics(reg prometheus.Registerer) *FeedMetrics {
	factory := promauto.With(reg)
	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help})
	}
	return &FeedMetrics{
		MessagesSent:           counter("messages_sent_total", "Messages inserted"),
		MessagesDeleted:        counter("messages_deleted_total", "Soft deletes applied"),
		PagesServed:            counter("pages_served_total", "History pages returned to clients"),
		Invalidations:          counter("invalidations_total", "Room invalidations published"),
		CoalescedInvalidations: counter("invalidations_coalesced_total", "Invalidations absorbed by another recomputation"),
		Recomputations:         counter("live_recomputations_total", "First page recomputations"),
		RecomputeFailures:      counter("live_recompute_failures_total", "First page recomputations that failed"),
		SnapshotsPushed:        counter("snapshots_pushed_total", "Snapshots handed to subscribers"),
		PushFailures:           counter("snapshot_push_failures_total", "Snapshots a subscriber could not accept"),
		ActiveSubscriptions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_subscriptions",
			Help:      "Live view subscriptions currently registered",
		}),
		RecomputeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "live_recompute_duration_seconds",
			Help:      "Time spent recomputing a room first page",
			Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25},
		}),
	}
}
