package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/laundry-sim/laundry-sim/sim/forecast"
)

// Metrics are the server's prometheus collectors.
type Metrics struct {
	requests *prometheus.CounterVec
	rejected *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer, svc *forecast.Service) *Metrics {
	f := promauto.With(reg)
	f.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "laundry_forecast_ready",
		Help: "1 when the forecast model is loaded, 0 otherwise",
	}, func() float64 {
		if svc.Status() == nil {
			return 1
		}
		return 0
	})
	return &Metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "laundry_http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"route", "code"}),
		rejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "laundry_forecast_rejected_total",
			Help: "Forecast requests rejected before prediction, by reason",
		}, []string{"reason"}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "laundry_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}, []string{"route"}),
	}
}
