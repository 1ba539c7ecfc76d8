// Package confmetrics exports Prometheus metrics about configuration
// loads: how often each role parsed the BFD configuration, with what
// outcome, and how much data the parse produced.
package confmetrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wolfguard/failoverd/internal/bfdcfg"
)

const (
	namespace = "failoverd"
	subsystem = "config"
)

// Label names for configuration metrics.
const (
	labelRole   = "role"
	labelResult = "result"
)

// Result label values for the loads counter.
const (
	resultOK    = "ok"
	resultError = "error"
)

// Collector holds all configuration-load Prometheus metrics.
type Collector struct {
	// Loads counts configuration load attempts per role and result.
	// A load counts as "error" only when the file could not be parsed
	// at all; individual rejected instances still yield "ok".
	Loads *prometheus.CounterVec

	// ParseErrors counts per-keyword and per-instance configuration
	// errors accumulated across loads.
	ParseErrors *prometheus.CounterVec

	// ParseWarnings counts informational findings (sensible-maximum
	// exceeded, max_hops clamping) accumulated across loads.
	ParseWarnings *prometheus.CounterVec

	// Instances tracks the number of committed BFD instances from the
	// most recent load, per role. Only the monitor role reports a
	// non-zero value.
	Instances *prometheus.GaugeVec

	// TrackedRefs tracks the number of tracked instance references
	// from the most recent load, per role.
	TrackedRefs *prometheus.GaugeVec
}

// NewCollector creates a Collector with all configuration metrics
// registered against the provided prometheus.Registerer. If reg is nil,
// prometheus.DefaultRegisterer is used.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := newMetrics()

	reg.MustRegister(
		c.Loads,
		c.ParseErrors,
		c.ParseWarnings,
		c.Instances,
		c.TrackedRefs,
	)

	return c
}

// newMetrics creates all Prometheus metric vectors without registering them.
func newMetrics() *Collector {
	return &Collector{
		Loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "loads_total",
			Help:      "Total BFD configuration load attempts per role and result.",
		}, []string{labelRole, labelResult}),

		ParseErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "parse_errors_total",
			Help:      "Total configuration errors (rejected values, discarded instances).",
		}, []string{labelRole}),

		ParseWarnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "parse_warnings_total",
			Help:      "Total informational configuration findings.",
		}, []string{labelRole}),

		Instances: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "instances",
			Help:      "BFD instances committed by the most recent configuration load.",
		}, []string{labelRole}),

		TrackedRefs: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "tracked_refs",
			Help:      "Tracked BFD instance references from the most recent configuration load.",
		}, []string{labelRole}),
	}
}

// ObserveLoad records the outcome of one Loader run: the load counter,
// the accumulated error and warning counts, and the result-list sizes.
func (c *Collector) ObserveLoad(l *bfdcfg.Loader, err error) {
	role := l.Role().String()

	result := resultOK
	if err != nil {
		result = resultError
	}
	c.Loads.WithLabelValues(role, result).Inc()

	stats := l.Stats()
	c.ParseErrors.WithLabelValues(role).Add(float64(stats.Errors))
	c.ParseWarnings.WithLabelValues(role).Add(float64(stats.Warnings))

	c.Instances.WithLabelValues(role).Set(float64(len(l.Instances)))
	c.TrackedRefs.WithLabelValues(role).Set(float64(len(l.VRRPTracked) + len(l.CheckerTracked)))
}
