// Package metrics provides Prometheus metrics for the news pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchTotal counts fetch attempts per source.
	FetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "medai",
			Name:      "fetch_total",
			Help:      "Total number of source fetch attempts",
		},
		[]string{"source", "status"},
	)

	// FetchedItems counts raw items returned per source.
	FetchedItems = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "medai",
			Name:      "fetched_items_total",
			Help:      "Total number of raw items returned by sources",
		},
		[]string{"source"},
	)

	// DroppedRecords counts records removed by the pipeline.
	DroppedRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "medai",
			Name:      "dropped_records_total",
			Help:      "Total number of records dropped by the pipeline",
		},
		[]string{"reason"},
	)

	PipelineDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "medai",
			Name:      "pipeline_duration_seconds",
			Help:      "Duration of full aggregation runs in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		},
	)

	// PipelineRecords is the size of the last aggregated result set.
	PipelineRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "medai",
			Name:      "pipeline_records",
			Help:      "Number of records returned by the last aggregation run",
		},
	)
)

// RecordFetch records one fetch attempt for a source.
func RecordFetch(source string, items int, err error) {
	if err != nil {
		FetchTotal.WithLabelValues(source, "error").Inc()
		return
	}
	FetchTotal.WithLabelValues(source, "ok").Inc()
	FetchedItems.WithLabelValues(source).Add(float64(items))
}

func RecordDropped(reason string, n int) {
	if n <= 0 {
		return
	}
	DroppedRecords.WithLabelValues(reason).Add(float64(n))
}

// RecordRun records a completed aggregation run.
func RecordRun(seconds float64, records int) {
	PipelineDuration.Observe(seconds)
	PipelineRecords.Set(float64(records))
}
