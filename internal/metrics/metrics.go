// Package metrics exposes Prometheus collectors for strip operations.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	FilesProcessed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mobiless_files_processed_total",
		Help: "Containers processed, by outcome",
	}, []string{"result"})

	BytesRemoved = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mobiless_source_bytes_removed_total",
		Help: "Total bytes of source records removed",
	})

	SectionsRemoved = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mobiless_source_sections_removed_total",
		Help: "Total number of source records removed",
	})

	ProcessSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "mobiless_process_seconds",
		Help:    "Time spent parsing and compacting one container",
		Buckets: prometheus.DefBuckets,
	})
)

// Outcome labels for FilesProcessed.
const (
	ResultStripped  = "stripped"
	ResultUnchanged = "unchanged"
	ResultInvalid   = "invalid"
)

func init() {
	prometheus.MustRegister(FilesProcessed, BytesRemoved, SectionsRemoved, ProcessSeconds)
}

// Observe records the outcome of one container.
func Observe(result string, sections, bytes int, elapsedSeconds float64) {
	FilesProcessed.WithLabelValues(result).Inc()
	if sections > 0 {
		SectionsRemoved.Add(float64(sections))
		BytesRemoved.Add(float64(bytes))
	}
	ProcessSeconds.Observe(elapsedSeconds)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
