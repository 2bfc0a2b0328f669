package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PatternsDetected = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "oiobot_patterns_detected_total",
		Help: "Detected OIO patterns",
	})

	CyclesOpened = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "oiobot_cycles_opened_total",
		Help: "Trading cycles activated",
	})

	CyclesClosed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "oiobot_cycles_closed_total",
		Help: "Trading cycles terminated and reset",
	})

	OrdersPlaced = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "oiobot_orders_placed_total",
		Help: "Pending orders placed, by role",
	}, []string{"role"})

	OrdersRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "oiobot_orders_rejected_total",
		Help: "Broker rejections, by role and reject class",
	}, []string{"role", "class"})

	TakeProfitAdjustments = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "oiobot_tp_adjustments_total",
		Help: "Shared take-profit adjustments applied to both legs",
	})

	CycleActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "oiobot_cycle_active",
		Help: "1 while a trading cycle is active",
	})
)

func init() {
	prometheus.MustRegister(
		PatternsDetected,
		CyclesOpened,
		CyclesClosed,
		OrdersPlaced,
		OrdersRejected,
		TakeProfitAdjustments,
		CycleActive,
	)
}

// Serve поднимает /metrics на отдельном адресе. Блокирует вызывающего.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}
