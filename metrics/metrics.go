// Package metrics exposes Prometheus metrics for the options maker.
package metrics

import (
	"fmt"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the Prometheus series updated by the trade loop.
type Collector struct {
	Cycles         prometheus.Counter
	CyclesSkipped  prometheus.Counter
	QuotesUpdated  prometheus.Counter
	OrdersPlaced   *prometheus.CounterVec
	OrdersCanceled prometheus.Counter
	FillsSeen      prometheus.Counter
	Errors         prometheus.Counter
	StockMid       prometheus.Gauge
	NetDelta       prometheus.Gauge
	Position       *prometheus.GaugeVec
	CycleDuration  prometheus.Histogram
}

// NewCollector 注册并返回所有指标。
func NewCollector() *Collector {
	return &Collector{
		Cycles: promauto.NewCounter(prometheus.CounterOpts{
			Name: "maker_cycles_total",
			Help: "Completed trade loop cycles",
		}),
		CyclesSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "maker_cycles_skipped_total",
			Help: "Cycles skipped because the stock book had no midpoint",
		}),
		QuotesUpdated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "maker_quotes_updated_total",
			Help: "Per-instrument quote updates",
		}),
		OrdersPlaced: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "maker_orders_placed_total",
			Help: "Orders inserted, by side",
		}, []string{"side"}),
		OrdersCanceled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "maker_orders_canceled_total",
			Help: "Outstanding orders pulled before re-quoting",
		}),
		FillsSeen: promauto.NewCounter(prometheus.CounterOpts{
			Name: "maker_fills_seen_total",
			Help: "Trades reported by the exchange poll",
		}),
		Errors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "maker_errors_total",
			Help: "Per-instrument update errors",
		}),
		StockMid: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "maker_stock_mid",
			Help: "Stock midpoint used for pricing",
		}),
		NetDelta: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "maker_net_delta",
			Help: "Aggregate delta exposure including the stock position",
		}),
		Position: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "maker_position",
			Help: "Signed position per instrument",
		}, []string{"instrument"}),
		CycleDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "maker_cycle_duration_seconds",
			Help:    "Wall time of one full quoting cycle",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// Serve starts the /metrics endpoint on addr. The listener is bound
// synchronously so a bad address fails at startup instead of in the
// serving goroutine.
func Serve(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("metrics listen on %s: %w", addr, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		_ = http.Serve(ln, mux)
	}()
	return nil
}
