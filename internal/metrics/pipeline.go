// Package metrics provides Prometheus metrics for room stamp extraction runs.
//
// A batch run is short-lived, so instead of serving /metrics the collected
// values are written to a node-exporter textfile at the end of the run.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics contains all Prometheus metrics of the extraction pipeline.
// All methods are safe to call on a nil receiver, which records nothing.
type PipelineMetrics struct {
	StageDuration   *prometheus.HistogramVec
	ImagesProcessed *prometheus.CounterVec
	Detections      *prometheus.CounterVec
	Clusters        prometheus.Counter
	NoisePoints     prometheus.Counter
	Fields          prometheus.Counter
	Rooms           prometheus.Counter
	Failures        *prometheus.CounterVec
	registry        *prometheus.Registry
}

// NewPipelineMetrics creates the pipeline metrics and registers them with
// registry.
func NewPipelineMetrics(registry *prometheus.Registry) (*PipelineMetrics, error) {
	m := &PipelineMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register pipeline metrics: %w", err)
	}
	return m, nil
}

func (m *PipelineMetrics) initMetrics() {
	m.StageDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "roomstamp_stage_duration_seconds",
		Help:    "Duration of pipeline stages in seconds.",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 14),
	}, []string{"stage"})

	m.ImagesProcessed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roomstamp_images_processed_total",
		Help: "Total number of processed drawings by outcome.",
	}, []string{"status"})

	m.Detections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roomstamp_detections_total",
		Help: "Total number of detector outputs by merge outcome.",
	}, []string{"outcome"})

	m.Clusters = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "roomstamp_clusters_total",
		Help: "Total number of element clusters.",
	})

	m.NoisePoints = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "roomstamp_noise_points_total",
		Help: "Total number of elements dropped as clustering noise.",
	})

	m.Fields = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "roomstamp_fields_total",
		Help: "Total number of assembled fields.",
	})

	m.Rooms = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "roomstamp_rooms_total",
		Help: "Total number of rooms written to floors.",
	})

	m.Failures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roomstamp_failures_total",
		Help: "Total number of failed drawings by stage.",
	}, []string{"stage"})
}

// ObserveStage records the duration of one stage in seconds.
func (m *PipelineMetrics) ObserveStage(stage string, seconds float64) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(seconds)
}

// RecordMerge counts kept and dropped detections of one drawing.
func (m *PipelineMetrics) RecordMerge(kept, lowConfidence, duplicates int) {
	if m == nil {
		return
	}
	m.Detections.WithLabelValues("kept").Add(float64(kept))
	m.Detections.WithLabelValues("low_confidence").Add(float64(lowConfidence))
	m.Detections.WithLabelValues("duplicate").Add(float64(duplicates))
}

// RecordClusters counts clusters and noise points of one drawing.
func (m *PipelineMetrics) RecordClusters(clusters, noise int) {
	if m == nil {
		return
	}
	m.Clusters.Add(float64(clusters))
	m.NoisePoints.Add(float64(noise))
}

// RecordFloor counts the fields and rooms of one drawing.
func (m *PipelineMetrics) RecordFloor(fields, rooms int) {
	if m == nil {
		return
	}
	m.Fields.Add(float64(fields))
	m.Rooms.Add(float64(rooms))
}

// RecordSuccess counts a completed drawing.
func (m *PipelineMetrics) RecordSuccess() {
	if m == nil {
		return
	}
	m.ImagesProcessed.WithLabelValues("success").Inc()
}

// RecordFailure counts a drawing that failed in stage.
func (m *PipelineMetrics) RecordFailure(stage string) {
	if m == nil {
		return
	}
	m.ImagesProcessed.WithLabelValues("failed").Inc()
	m.Failures.WithLabelValues(stage).Inc()
}

// WriteTextfile writes every metric of the registry to path in the text
// exposition format, for the node-exporter textfile collector.
func (m *PipelineMetrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}

// Describe implements the prometheus.Collector interface.
func (m *PipelineMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.StageDuration.Describe(ch)
	m.ImagesProcessed.Describe(ch)
	m.Detections.Describe(ch)
	ch <- m.Clusters.Desc()
	ch <- m.NoisePoints.Desc()
	ch <- m.Fields.Desc()
	ch <- m.Rooms.Desc()
	m.Failures.Describe(ch)
}

// Collect implements the prometheus.Collector interface.
func (m *PipelineMetrics) Collect(ch chan<- prometheus.Metric) {
	m.StageDuration.Collect(ch)
	m.ImagesProcessed.Collect(ch)
	m.Detections.Collect(ch)
	ch <- m.Clusters
	ch <- m.NoisePoints
	ch <- m.Fields
	ch <- m.Rooms
	m.Failures.Collect(ch)
}
