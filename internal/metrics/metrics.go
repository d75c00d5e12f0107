// Package metrics exposes the Prometheus counters/gauges carried from
// the Python originals' prometheus_client usage.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	ServiceUp    prometheus.Gauge
	RequestCount *prometheus.CounterVec
}

func New(service string) *Registry {
	r := &Registry{
		ServiceUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: service + "_up",
			Help: "1 if the service is up and accepting requests",
		}),
		RequestCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: service + "_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
	}
	prometheus.MustRegister(r.ServiceUp, r.RequestCount)
	r.ServiceUp.Set(1)
	return r
}

func (r *Registry) Handler() http.Handler {
	return promhttp.Handler()
}
