package metrics

import "github.com/prometheus/client_golang/prometheus"

// ClosureMetrics counts sale-closure workflow transitions.
type ClosureMetrics struct {
	transitions *prometheus.CounterVec
}

// NewClosureMetrics registers the workflow counter on the provided registerer.
func NewClosureMetrics(reg prometheus.Registerer) *ClosureMetrics {
	if reg == nil {
		return &ClosureMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "closure_workflow_total",
		Help: "Sale closure workflow transitions by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(transitions)
	return &ClosureMetrics{transitions: transitions}
}

// IncSubmitted counts an accepted closure submission.
func (c *ClosureMetrics) IncSubmitted() { c.inc("submitted") }

// IncValidated counts an admin validation.
func (c *ClosureMetrics) IncValidated() { c.inc("validated") }

// IncRejected counts an admin rejection.
func (c *ClosureMetrics) IncRejected() { c.inc("rejected") }

func (c *ClosureMetrics) inc(outcome string) {
	if c == nil || c.transitions == nil {
		return
	}
	c.transitions.WithLabelValues(outcome).Inc()
}
