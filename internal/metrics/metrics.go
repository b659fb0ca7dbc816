// Package metrics exposes engine counters on a caller-supplied registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "lcverify"

type Metrics struct {
	Extractions        *prometheus.CounterVec
	ExtractionDuration *prometheus.HistogramVec
	Findings           *prometheus.CounterVec
	Analyses           *prometheus.CounterVec
	CacheHits          prometheus.Counter
}

// New registers the collectors on reg. Pass prometheus.NewRegistry() in tests
// to keep them isolated.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Document extractions by method and outcome.",
		}, []string{"method", "outcome"}),
		ExtractionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_duration_seconds",
			Help:      "Time spent extracting fields from one document.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"document_type"}),
		Findings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "findings_total",
			Help:      "Findings emitted by kind and severity.",
		}, []string{"kind", "severity"}),
		Analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Document set analyses by recommendation.",
		}, []string{"recommendation"}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extraction_cache_hits_total",
			Help:      "Extractions served from the content cache.",
		}),
	}
	reg.MustRegister(m.Extractions, m.ExtractionDuration, m.Findings, m.Analyses, m.CacheHits)
	return m
}
