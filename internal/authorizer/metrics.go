package authorizer

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/openarchive/authz/types"
)

// decisionMetrics counts authorization decisions. A nil receiver is a
// no-op so the engine never branches on whether metrics are wired.
type decisionMetrics struct {
	decisions *prometheus.CounterVec
}

func newDecisionMetrics(reg prometheus.Registerer) *decisionMetrics {
	m := &decisionMetrics{
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "authz",
			Name:      "decisions_total",
			Help:      "Authorization decisions by action, outcome, and source.",
		}, []string{"action", "outcome", "source"}),
	}
	reg.MustRegister(m.decisions)
	return m
}

func (m *decisionMetrics) observe(act types.Action, d types.Decision) {
	if m == nil {
		return
	}

	outcome := "deny"
	if d.Allowed {
		outcome = "allow"
	}
	m.decisions.WithLabelValues(act.String(), outcome, string(d.Source)).Inc()
}
