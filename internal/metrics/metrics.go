package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "email_triage"

// Metrics holds the prometheus collectors of the triage pipeline.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry          *prometheus.Registry
	classifications   *prometheus.CounterVec
	fallbackCalls     *prometheus.CounterVec
	batchItems        *prometheus.CounterVec
	cacheLookups      *prometheus.CounterVec
	analyticsFailures prometheus.Counter
	latency           prometheus.Histogram
}

// New creates the collectors on a dedicated registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifications_total",
			Help:      "Classified emails by category and subcategory.",
		}, []string{"category", "subcategory", "ai_fallback"}),
		fallbackCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallback_calls_total",
			Help:      "AI fallback calls by model and outcome.",
		}, []string{"model", "outcome"}),
		batchItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_items_total",
			Help:      "Batch items by status.",
		}, []string{"status"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Result cache lookups by outcome.",
		}, []string{"result"}),
		analyticsFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analytics_failures_total",
			Help:      "Analytics hand-offs that failed.",
		}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "classification_duration_seconds",
			Help:      "Time spent analyzing one email.",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5, 15, 30},
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.classifications,
		m.fallbackCalls,
		m.batchItems,
		m.cacheLookups,
		m.analyticsFailures,
		m.latency,
	)

	return m
}

// Handler serves the registry in the prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveClassification counts a classification and its latency
func (m *Metrics) ObserveClassification(category, subcategory string, aiFallback bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	fallback := "false"
	if aiFallback {
		fallback = "true"
	}
	m.classifications.WithLabelValues(category, subcategory, fallback).Inc()
	m.latency.Observe(elapsed.Seconds())
}

// FallbackCall counts one AI fallback attempt
func (m *Metrics) FallbackCall(model, outcome string) {
	if m == nil {
		return
	}
	m.fallbackCalls.WithLabelValues(model, outcome).Inc()
}

// BatchItem counts one processed batch item
func (m *Metrics) BatchItem(success bool) {
	if m == nil {
		return
	}
	status := "failed"
	if success {
		status = "successful"
	}
	m.batchItems.WithLabelValues(status).Inc()
}

// CacheLookup counts a cache hit or miss
func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// AnalyticsFailure counts a failed analytics hand-off
func (m *Metrics) AnalyticsFailure() {
	if m == nil {
		return
	}
	m.analyticsFailures.Inc()
}
