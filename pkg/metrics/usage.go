package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// UsageMetrics counts entitlement decisions per plan and resource kind.
type UsageMetrics struct {
	denied   *prometheus.CounterVec
	recorded *prometheus.CounterVec
}

// NewUsageMetrics registers the entitlement metrics on the provided registerer.
func NewUsageMetrics(reg prometheus.Registerer) *UsageMetrics {
	if reg == nil {
		return &UsageMetrics{}
	}
	denied := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "entitlement_denied_total",
		Help: "Entitlement checks rejected because the plan quota was reached.",
	}, []string{"plan", "kind"})
	recorded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "entitlement_consumed_total",
		Help: "Usage units recorded after successful resource creation.",
	}, []string{"plan", "kind"})
	reg.MustRegister(denied, recorded)
	return &UsageMetrics{denied: denied, recorded: recorded}
}

// IncDenied increments the denial counter for the plan/kind pair.
func (u *UsageMetrics) IncDenied(plan, kind string) {
	if u == nil || u.denied == nil {
		return
	}
	u.denied.WithLabelValues(plan, kind).Inc()
}

// IncRecorded increments the consumption counter for the plan/kind pair.
func (u *UsageMetrics) IncRecorded(plan, kind string) {
	if u == nil || u.recorded == nil {
		return
	}
	u.recorded.WithLabelValues(plan, kind).Inc()
}
