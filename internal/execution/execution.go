// Package execution defines order payloads shared by the paper exchange and
// the (stubbed) live path.
package execution

import (
	"time"

	"github.com/rs/zerolog"

	"vitalbot/internal/metrics"
)

// Side enumerates order directions.
type Side string

const (
	// Buy indicates a long order.
	Buy Side = "BUY"
	// Sell indicates a short order.
	Sell Side = "SELL"
)

// OrderType distinguishes reference-price fills from fixed-price fills.
type OrderType string

const (
	Market OrderType = "MARKET"
	Limit  OrderType = "LIMIT"
)

// Order represents a placement request.
type Order struct {
	Symbol     string // BASE_QUOTE convention, e.g. ETH_USDT
	Side       Side
	Type       OrderType
	Qty        float64
	LimitPrice float64 // honored only for LIMIT orders
}

// Result reports the outcome of an order attempt. Err is a human-readable
// reason and is only set when Success is false.
type Result struct {
	Success bool
	OrderID string
	Symbol  string
	Side    Side
	Qty     float64
	Price   float64
	Err     string
}

// Fill is the durable record of an executed order.
type Fill struct {
	OrderID string    `json:"order_id"`
	Symbol  string    `json:"symbol"`
	Side    Side      `json:"side"`
	Qty     float64   `json:"qty"`
	Price   float64   `json:"price"`
	Ts      time.Time `json:"ts"`
}

// LiveExecutor is the non-paper path. Real venue connectivity is deliberately
// not implemented; every submission is refused.
type LiveExecutor struct{ log zerolog.Logger }

// NewLiveExecutor wraps a zerolog logger for future order submissions.
func NewLiveExecutor(log zerolog.Logger) *LiveExecutor { return &LiveExecutor{log: log} }

// Submit refuses the order and records the rejection.
func (e *LiveExecutor) Submit(order Order) Result {
	metrics.OrdersRejectedTotal.WithLabelValues("live_disabled").Inc()
	e.log.Error().Str("sym", order.Symbol).Str("side", string(order.Side)).Float64("qty", order.Qty).Msg("live trading not implemented")
	return Result{Success: false, Symbol: order.Symbol, Side: order.Side, Err: "Live trading not implemented"}
}
