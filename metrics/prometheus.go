package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Counter: total commands consumed from the bus
	CommandsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_commands_processed_total",
			Help: "Total number of commands consumed from the message bus",
		},
		[]string{"type"},
	)

	// Counter: commands dropped because they could not be decoded or validated
	CommandsDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_commands_dropped_total",
			Help: "Total number of inbound commands discarded without touching book state",
		},
		[]string{"type"},
	)

	// Counter: total orders received by the matching core
	OrdersReceivedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_orders_received_total",
			Help: "Total number of orders admitted into matching",
		},
		[]string{"symbol", "side", "type"},
	)

	// Counter: orders rejected at admission
	OrdersRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_orders_rejected_total",
			Help: "Total number of orders rejected at admission",
		},
		[]string{"symbol", "reason"},
	)

	// Counter: cancel outcomes
	OrdersCancelledTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_orders_cancelled_total",
			Help: "Total number of cancel commands by outcome",
		},
		[]string{"success"},
	)

	// Counter: total trades executed
	TradesExecutedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_trades_executed_total",
			Help: "Total number of trades executed",
		},
		[]string{"symbol"},
	)

	// Counter: stop orders fired by a trade touching their trigger
	StopOrdersTriggeredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_stop_orders_triggered_total",
			Help: "Total number of dormant stop orders converted to limit orders",
		},
		[]string{"symbol", "side"},
	)

	// Counter: best-effort publish failures (events, snapshots, trades cache)
	PublishFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_publish_failures_total",
			Help: "Total number of downstream publish or snapshot failures (non-fatal)",
		},
		[]string{"target"},
	)

	// Histogram: end-to-end command processing latency
	CommandLatencySeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "engine_command_latency_seconds",
			Help:    "Time taken to process one command, matching included",
			Buckets: prometheus.ExponentialBuckets(0.00001, 2, 15), // 10µs to ~160ms
		},
		[]string{"type"},
	)

	// Gauge: current number of price levels per side
	CurrentOrderbookDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "engine_orderbook_depth",
			Help: "Current number of price levels in the order book",
		},
		[]string{"symbol", "side"},
	)

	// Gauges: best bid/ask prices
	BestBidPrice = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "engine_best_bid_price",
			Help: "Current best bid price in the order book",
		},
		[]string{"symbol"},
	)

	BestAskPrice = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "engine_best_ask_price",
			Help: "Current best ask price in the order book",
		},
		[]string{"symbol"},
	)
)

// UpdateOrderbookDepth sets the depth gauge for one side of a book.
func UpdateOrderbookDepth(symbol, side string, depth float64) {
	CurrentOrderbookDepth.WithLabelValues(symbol, side).Set(depth)
}

// UpdateBestPrices sets the best bid/ask gauges for a symbol. A zero value
// means the side is empty.
func UpdateBestPrices(symbol string, bestBid, bestAsk float64) {
	BestBidPrice.WithLabelValues(symbol).Set(bestBid)
	BestAskPrice.WithLabelValues(symbol).Set(bestAsk)
}
