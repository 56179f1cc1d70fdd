package metrics

import "github.com/prometheus/client_golang/prometheus"

// UpstreamMetrics exposes counters/histograms for Mapleime GraphQL calls.
type UpstreamMetrics struct {
	callsTotal  *prometheus.CounterVec
	callLatency *prometheus.HistogramVec
}

func NewUpstreamMetrics(reg prometheus.Registerer) *UpstreamMetrics {
	m := &UpstreamMetrics{
		callsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mapleime",
			Subsystem: "upstream",
			Name:      "calls_total",
			Help:      "Total Mapleime GraphQL calls",
		}, []string{"operation", "status"}),
		callLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mapleime",
			Subsystem: "upstream",
			Name:      "call_latency_seconds",
			Help:      "Latency of Mapleime GraphQL calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.callsTotal, m.callLatency)
	return m
}

func (m *UpstreamMetrics) ObserveCall(operation string, ok bool, seconds float64) {
	if m == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "error"
	}
	m.callsTotal.WithLabelValues(operation, status).Inc()
	m.callLatency.WithLabelValues(operation).Observe(seconds)
}

// ActionMetrics counts executed appointment actions by outcome.
type ActionMetrics struct {
	actionsTotal *prometheus.CounterVec
	rejected     prometheus.Counter
}

func NewActionMetrics(reg prometheus.Registerer) *ActionMetrics {
	m := &ActionMetrics{
		actionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mapleime",
			Subsystem: "actions",
			Name:      "executed_total",
			Help:      "Appointment actions executed against upstream",
		}, []string{"action", "outcome"}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mapleime",
			Subsystem: "actions",
			Name:      "rejected_inflight_total",
			Help:      "Actions rejected locally because one was already in flight",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.actionsTotal, m.rejected)
	return m
}

func (m *ActionMetrics) ObserveAction(action string, success bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.actionsTotal.WithLabelValues(action, outcome).Inc()
}

func (m *ActionMetrics) ObserveRejected() {
	if m == nil {
		return
	}
	m.rejected.Inc()
}
