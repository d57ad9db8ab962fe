package daemon

import (
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	promcollect "github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"git.home.luguber.info/inful/printwatch/internal/controller"
)

// Metrics exposes the controller's counters and gauges through a dedicated
// Prometheus registry. Everything is read at scrape time from the
// controller snapshot, so the loop itself carries no metrics plumbing.
type Metrics struct {
	registry *prom.Registry
}

// NewMetrics builds the registry for the given controller.
func NewMetrics(ctrl *controller.Controller) *Metrics {
	registry := prom.NewRegistry()

	snap := func() controller.Snapshot { return ctrl.GetSnapshot() }

	registry.MustRegister(
		prom.NewCounterFunc(prom.CounterOpts{
			Namespace: "printwatch", Name: "polls_total",
			Help: "Total poll cycles executed",
		}, func() float64 { return float64(snap().Polls) }),
		prom.NewCounterFunc(prom.CounterOpts{
			Namespace: "printwatch", Name: "poll_errors_total",
			Help: "Poll cycles that failed to probe the print service",
		}, func() float64 { return float64(snap().PollErrors) }),
		prom.NewCounterFunc(prom.CounterOpts{
			Namespace: "printwatch", Name: "activations_total",
			Help: "Power-on switch actions",
		}, func() float64 { return float64(snap().Activations) }),
		prom.NewCounterFunc(prom.CounterOpts{
			Namespace: "printwatch", Name: "deactivations_total",
			Help: "Power-off switch actions",
		}, func() float64 { return float64(snap().Deactivations) }),
		prom.NewGaugeFunc(prom.GaugeOpts{
			Namespace: "printwatch", Name: "power_state",
			Help: "Tracked printer power state (1 on, 0 off)",
		}, func() float64 {
			if ctrl.PowerOn() {
				return 1
			}
			return 0
		}),
		prom.NewGaugeFunc(prom.GaugeOpts{
			Namespace: "printwatch", Name: "active_jobs",
			Help: "Job count from the last successful poll",
		}, func() float64 { return float64(ctrl.ActiveJobs()) }),
		prom.NewGaugeFunc(prom.GaugeOpts{
			Namespace: "printwatch", Name: "idle_seconds",
			Help: "Seconds since a job was last observed",
		}, func() float64 { return ctrl.IdleFor().Seconds() }),
	)

	registry.MustRegister(
		promcollect.NewGoCollector(),
		promcollect.NewProcessCollector(promcollect.ProcessCollectorOpts{}),
	)

	return &Metrics{registry: registry}
}

// Handler returns the scrape endpoint handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
