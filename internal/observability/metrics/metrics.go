package metrics

import "github.com/prometheus/client_golang/prometheus"

// EngineMetrics exposes counters/histograms for the availability and
// materialization flows.
type EngineMetrics struct {
	availabilityChecks *prometheus.CounterVec
	conflictReasons    *prometheus.CounterVec
	bookingsCreated    prometheus.Counter
	checkLatency       prometheus.Histogram
}

func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	m := &EngineMetrics{
		availabilityChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wellness",
			Subsystem: "availability",
			Name:      "checks_total",
			Help:      "Total quote availability checks by overall outcome",
		}, []string{"outcome"}),
		conflictReasons: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wellness",
			Subsystem: "availability",
			Name:      "conflicts_total",
			Help:      "Per-therapist disqualifications by reason",
		}, []string{"reason"}),
		bookingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wellness",
			Subsystem: "bookings",
			Name:      "materialized_total",
			Help:      "Total booking rows created by the materializer",
		}),
		checkLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wellness",
			Subsystem: "availability",
			Name:      "check_latency_seconds",
			Help:      "Latency of full-quote availability checks",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.availabilityChecks, m.conflictReasons, m.bookingsCreated, m.checkLatency)
	return m
}

func (m *EngineMetrics) ObserveCheck(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.availabilityChecks.WithLabelValues(outcome).Inc()
	m.checkLatency.Observe(seconds)
}

func (m *EngineMetrics) ObserveConflict(reason string) {
	if m == nil {
		return
	}
	m.conflictReasons.WithLabelValues(reason).Inc()
}

func (m *EngineMetrics) ObserveMaterialized(count int) {
	if m == nil {
		return
	}
	m.bookingsCreated.Add(float64(count))
}
