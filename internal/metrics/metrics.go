// Package metrics registers prometheus series describing agent vitals and order flow.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HeartbeatsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "heartbeats_total", Help: "Agent heartbeat cycles processed"},
	)
	SignalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "signals_total", Help: "Signals produced by the strategy"},
		[]string{"action"},
	)
	OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "orders_total", Help: "Orders executed against the paper exchange"},
		[]string{"symbol", "side"},
	)
	OrdersRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "orders_rejected_total", Help: "Orders rejected before or during execution"},
		[]string{"reason"},
	)
	GMACLevel = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "gmac_level", Help: "Current agent resource (GMAC) level"},
	)
	Goodwill = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "goodwill_total", Help: "Accumulated agent reputation"},
	)
)

func init() {
	prometheus.MustRegister(HeartbeatsTotal, SignalsTotal, OrdersTotal, OrdersRejectedTotal, GMACLevel, Goodwill)
}

func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
