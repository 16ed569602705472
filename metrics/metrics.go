// Package metrics provides standardized Prometheus metrics for the
// route matching and link generation engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "routecore"

	// OutcomeMatched and friends are the values of the outcome label.
	OutcomeMatched   = "matched"
	OutcomeNoMatch   = "no_match"
	OutcomeGenerated = "generated"
	OutcomeNotFound  = "not_found"
	OutcomeAmbiguous = "ambiguous"
)

// RouterMetrics holds all Prometheus metrics of a router instance.
type RouterMetrics struct {
	MatchesTotal           *prometheus.CounterVec
	LinksTotal             *prometheus.CounterVec
	RebuildsTotal          prometheus.Counter
	RebuildDurationSeconds prometheus.Histogram
	SkippedEndpointsTotal  prometheus.Counter
	InboundEntries         prometheus.Gauge
	OutboundEntries        prometheus.Gauge
}

// NewRouterMetrics creates a RouterMetrics instance with all collectors
// registered on the given registerer. Pass
// prometheus.DefaultRegisterer for the global registry.
func NewRouterMetrics(reg prometheus.Registerer) *RouterMetrics {
	factory := promauto.With(reg)

	return &RouterMetrics{
		MatchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "matches_total",
				Help:      "Total number of match attempts by outcome",
			},
			[]string{"outcome"},
		),
		LinksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "links_total",
				Help:      "Total number of link generations by outcome",
			},
			[]string{"outcome"},
		),
		RebuildsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rebuilds_total",
				Help:      "Total number of route table rebuilds",
			},
		),
		RebuildDurationSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "rebuild_duration_seconds",
				Help:      "Route table rebuild duration",
				Buckets:   prometheus.DefBuckets,
			},
		),
		SkippedEndpointsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "skipped_endpoints_total",
				Help:      "Total number of endpoints skipped during rebuilds",
			},
		),
		InboundEntries: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "inbound_entries",
				Help:      "Inbound route table size of the current snapshot",
			},
		),
		OutboundEntries: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "outbound_entries",
				Help:      "Outbound route table size of the current snapshot",
			},
		),
	}
}

// RecordMatch records one match attempt.
func (m *RouterMetrics) RecordMatch(outcome string) {
	if m == nil {
		return
	}
	m.MatchesTotal.WithLabelValues(outcome).Inc()
}

// RecordLink records one link generation.
func (m *RouterMetrics) RecordLink(outcome string) {
	if m == nil {
		return
	}
	m.LinksTotal.WithLabelValues(outcome).Inc()
}

// RecordRebuild records a completed route table rebuild.
func (m *RouterMetrics) RecordRebuild(duration time.Duration, inbound, outbound, skipped int) {
	if m == nil {
		return
	}
	m.RebuildsTotal.Inc()
	m.RebuildDurationSeconds.Observe(duration.Seconds())
	m.SkippedEndpointsTotal.Add(float64(skipped))
	m.InboundEntries.Set(float64(inbound))
	m.OutboundEntries.Set(float64(outbound))
}
