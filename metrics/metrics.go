// Package metrics exposes Prometheus collectors for the adventure service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "story_adventure"

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "path"},
	)

	// Generation stages: arc, turn, image, speech, nextframe.
	StageTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "stage_total",
			Help:      "Total number of generation stage runs by outcome",
		},
		[]string{"stage", "status"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "stage_duration_seconds",
			Help:      "Generation stage duration in seconds",
			Buckets:   []float64{.25, .5, 1, 2.5, 5, 10, 20, 45, 90},
		},
		[]string{"stage"},
	)

	StoriesStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "story",
			Name:      "started_total",
			Help:      "Total number of stories started",
		},
	)
)

// ObserveStage records one run of a generation stage that began at start.
func ObserveStage(stage string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	StageTotal.WithLabelValues(stage, status).Inc()
	StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
