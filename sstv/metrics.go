package sstv

/*
 * Metrics
 *
 * Same field-of-metrics struct shape as the teacher's PrometheusMetrics
 * (prometheus.go), but registered into a caller-supplied
 * prometheus.Registerer instead of promauto's global default registry.
 * The teacher can get away with a single global registry because it runs
 * one process per deployment; this engine must support two independent
 * controller instances in the same process (spec.md 5), and promauto's
 * package-level registration would make that impossible without metric
 * name collisions. Wiring a Registerer in is optional: a nil Registerer
 * disables metrics entirely rather than panicking.
 */

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the optional Prometheus instrumentation for a single
// Controller. A zero-value Metrics (nil counters) is safe to use; every
// method is a no-op when its counter was never registered.
type Metrics struct {
	framesDecoded   prometheus.Counter
	linesDecoded    prometheus.Counter
	syncLosses      prometheus.Counter
	visFailures     prometheus.Counter
	decodeDurations prometheus.Histogram
}

// NewMetrics registers a fresh set of counters into reg and returns them.
// A nil reg yields a Metrics whose methods are all no-ops.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}

	m := &Metrics{
		framesDecoded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sstv_frames_decoded_total",
			Help: "Total number of SSTV frames decoded.",
		}),
		linesDecoded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sstv_lines_decoded_total",
			Help: "Total number of pixel rows written to the image buffer.",
		}),
		syncLosses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sstv_sync_losses_total",
			Help: "Total number of sync searches that found no sync lock.",
		}),
		visFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sstv_vis_detection_failures_total",
			Help: "Total number of VIS detection attempts that fell back to the default mode.",
		}),
		decodeDurations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sstv_push_samples_seconds",
			Help:    "Wall-clock time spent inside a single push_samples call.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(m.framesDecoded, m.linesDecoded, m.syncLosses, m.visFailures, m.decodeDurations)
	return m
}

func (m *Metrics) incFramesDecoded() {
	if m == nil || m.framesDecoded == nil {
		return
	}
	m.framesDecoded.Inc()
}

func (m *Metrics) incLinesDecoded() {
	if m == nil || m.linesDecoded == nil {
		return
	}
	m.linesDecoded.Inc()
}

func (m *Metrics) incSyncLosses() {
	if m == nil || m.syncLosses == nil {
		return
	}
	m.syncLosses.Inc()
}

func (m *Metrics) incVisFailures() {
	if m == nil || m.visFailures == nil {
		return
	}
	m.visFailures.Inc()
}

func (m *Metrics) observeDecodeDuration(seconds float64) {
	if m == nil || m.decodeDurations == nil {
		return
	}
	m.decodeDurations.Observe(seconds)
}
