// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	global *Metrics
	once   sync.Once
)

// Metrics groups the notegest collectors. All names carry the "notegest_"
// prefix.
type Metrics struct {
	// Automation
	AutomationCalls    *prometheus.CounterVec
	AutomationDuration *prometheus.HistogramVec
	AutomationRetries  prometheus.Counter

	// Pipeline
	PagesExtracted prometheus.Counter
	PageFailures   prometheus.Counter
	ChunksTotal    *prometheus.CounterVec
	EntriesTotal   prometheus.Counter
	RunsTotal      *prometheus.CounterVec

	// Jobs
	JobsQueued prometheus.Gauge
}

// Get returns the shared collectors, registering them on first use.
func Get() *Metrics {
	once.Do(func() {
		global = &Metrics{
			AutomationCalls: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "notegest_automation_calls_total",
					Help: "OneNote automation calls by operation and outcome",
				},
				[]string{"op", "outcome"},
			),
			AutomationDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "notegest_automation_call_duration_seconds",
					Help:    "Duration of OneNote automation calls",
					Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
				},
				[]string{"op"},
			),
			AutomationRetries: promauto.NewCounter(prometheus.CounterOpts{
				Name: "notegest_automation_retries_total",
				Help: "Automation calls retried after a busy error",
			}),
			PagesExtracted: promauto.NewCounter(prometheus.CounterOpts{
				Name: "notegest_pages_extracted_total",
				Help: "Pages with non-empty text",
			}),
			PageFailures: promauto.NewCounter(prometheus.CounterOpts{
				Name: "notegest_page_failures_total",
				Help: "Pages whose content could not be read",
			}),
			ChunksTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "notegest_chunks_total",
					Help: "Chunks produced, by validation result",
				},
				[]string{"result"}, // "accepted" or "rejected"
			),
			EntriesTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "notegest_entries_total",
				Help: "Entries exported",
			}),
			RunsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "notegest_runs_total",
					Help: "Pipeline runs by outcome",
				},
				[]string{"outcome"},
			),
			JobsQueued: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "notegest_jobs_queued",
				Help: "Extraction jobs waiting for a worker",
			}),
		}
	})
	return global
}
