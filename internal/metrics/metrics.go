// Package metrics exposes Prometheus instrumentation for segmentation runs
// and workspace housekeeping.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "folio"

// Run outcome labels.
const (
	StatusSuccess  = "success"
	StatusDegraded = "degraded"
	StatusFailed   = "failed"
)

// Pipeline holds the segmentation metrics on a private registry.
type Pipeline struct {
	registry *prometheus.Registry

	runsTotal          *prometheus.CounterVec
	runDuration        *prometheus.HistogramVec
	runsInFlight       prometheus.Gauge
	pagesTotal         prometheus.Counter
	fallbacksTotal     prometheus.Counter
	extractionFailures prometheus.Counter
	missingPages       prometheus.Counter
	reclaimedTotal     *prometheus.CounterVec
}

// New creates the pipeline metrics and registers them, together with the
// Go runtime and process collectors, on a fresh registry.
func New() *Pipeline {
	registry := prometheus.NewRegistry()

	runsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "segmentation",
			Name:      "runs_total",
			Help:      "Total segmentation runs by outcome.",
		},
		[]string{"status"},
	)
	runDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "segmentation",
			Name:      "run_duration_seconds",
			Help:      "Segmentation run duration in seconds by outcome.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"status"},
	)
	runsInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "segmentation",
			Name:      "runs_in_flight",
			Help:      "Number of segmentation runs currently executing.",
		},
	)
	pagesTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "segmentation",
			Name:      "pages_total",
			Help:      "Total pages processed by successful runs.",
		},
	)
	fallbacksTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "classification",
			Name:      "fallbacks_total",
			Help:      "Runs that fell back to a single whole-document group.",
		},
	)
	extractionFailures := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extraction",
			Name:      "page_failures_total",
			Help:      "Pages whose text extraction failed or timed out.",
		},
	)
	missingPages := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "materialize",
			Name:      "missing_pages_total",
			Help:      "Pages left out of every output because their group could not be written.",
		},
	)
	reclaimedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "workspace",
			Name:      "reclaimed_total",
			Help:      "Expired workspaces removed by sweeps.",
		},
		[]string{"trigger"},
	)

	registry.MustRegister(
		runsTotal,
		runDuration,
		runsInFlight,
		pagesTotal,
		fallbacksTotal,
		extractionFailures,
		missingPages,
		reclaimedTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Pipeline{
		registry:           registry,
		runsTotal:          runsTotal,
		runDuration:        runDuration,
		runsInFlight:       runsInFlight,
		pagesTotal:         pagesTotal,
		fallbacksTotal:     fallbacksTotal,
		extractionFailures: extractionFailures,
		missingPages:       missingPages,
		reclaimedTotal:     reclaimedTotal,
	}
}

// Registry returns the underlying registry.
func (p *Pipeline) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Pipeline) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// StartRun marks a run as in flight.
func (p *Pipeline) StartRun() {
	p.runsInFlight.Inc()
}

// RunOutcome summarizes a finished run for recording.
type RunOutcome struct {
	Duration           time.Duration
	Failed             bool
	TotalPages         int
	Fallback           bool
	ExtractionFailures int
	MissingPages       int
}

// FinishRun records a finished run. A successful run with any absorbed
// degradation counts as degraded.
func (p *Pipeline) FinishRun(o RunOutcome) {
	p.runsInFlight.Dec()

	status := StatusSuccess
	switch {
	case o.Failed:
		status = StatusFailed
	case o.Fallback || o.ExtractionFailures > 0 || o.MissingPages > 0:
		status = StatusDegraded
	}

	p.runsTotal.WithLabelValues(status).Inc()
	p.runDuration.WithLabelValues(status).Observe(o.Duration.Seconds())

	if o.Failed {
		return
	}

	p.pagesTotal.Add(float64(o.TotalPages))
	if o.Fallback {
		p.fallbacksTotal.Inc()
	}
	if o.ExtractionFailures > 0 {
		p.extractionFailures.Add(float64(o.ExtractionFailures))
	}
	if o.MissingPages > 0 {
		p.missingPages.Add(float64(o.MissingPages))
	}
}

// RecordSweep counts workspaces reclaimed by a sweep. trigger is
// "schedule" or "manual".
func (p *Pipeline) RecordSweep(trigger string, reclaimed int) {
	if trigger == "" {
		trigger = "unknown"
	}
	p.reclaimedTotal.WithLabelValues(trigger).Add(float64(reclaimed))
}
