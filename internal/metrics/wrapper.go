package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

// Registry bundles a private Prometheus registry with the process collectors
// and the service metrics registered on it.
type Registry struct {
	reg     *prometheus.Registry
	Metrics *Metrics
}

// NewRegistry creates a registry with Go runtime and process collectors
// plus all service metrics.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Registry{
		reg:     reg,
		Metrics: NewWithRegistry(reg),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// FailureRate returns internal failures over all attempted predictions, or 0
// before anything has been recorded.
func (r *Registry) FailureRate() float64 {
	families, err := r.reg.Gather()
	if err != nil {
		return 0
	}

	var ok, failed float64
	for _, mf := range families {
		switch mf.GetName() {
		case "ml_predictions_total":
			ok = counterSum(mf)
		case "ml_failures_total":
			failed = counterSum(mf)
		}
	}

	if ok+failed == 0 {
		return 0
	}
	return failed / (ok + failed)
}

func counterSum(mf *dto.MetricFamily) float64 {
	var sum float64
	for _, m := range mf.GetMetric() {
		sum += m.GetCounter().GetValue()
	}
	return sum
}
