// Package paper simulates order execution against an in-memory balance sheet.
package paper

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"vitalbot/internal/execution"
)

// PriceSource supplies the reference price used to fill market orders.
type PriceSource interface {
	LastPrice(symbol string) (float64, bool)
}

// FillRecorder captures executed paper fills for later inspection.
type FillRecorder interface {
	Record(execution.Fill)
}

// Exchange holds per-currency balances and executes orders against a fetched
// reference price. A debit can never drive a balance negative: an order that
// would do so fails atomically with no partial effect.
type Exchange struct {
	mu       sync.Mutex
	balances map[string]float64
	prices   PriceSource
	recorder FillRecorder
	now      func() time.Time
}

// NewExchange seeds the balance sheet and wires the reference price source.
func NewExchange(starting map[string]float64, prices PriceSource) *Exchange {
	balances := make(map[string]float64, len(starting))
	for cur, amount := range starting {
		if amount < 0 {
			amount = 0
		}
		balances[cur] = amount
	}
	return &Exchange{
		balances: balances,
		prices:   prices,
		now:      time.Now,
	}
}

// SetRecorder attaches a fill recorder; pass nil to disable recording.
func (e *Exchange) SetRecorder(r FillRecorder) {
	e.mu.Lock()
	e.recorder = r
	e.mu.Unlock()
}

// Balances returns a defensive copy of the current balance sheet.
func (e *Exchange) Balances() map[string]float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]float64, len(e.balances))
	for cur, amount := range e.balances {
		out[cur] = amount
	}
	return out
}

// PlaceOrder resolves the execution price, checks funds sufficiency, and
// mutates the balance sheet in a single check-then-act step.
func (e *Exchange) PlaceOrder(order execution.Order) execution.Result {
	fail := func(reason string) execution.Result {
		return execution.Result{Symbol: order.Symbol, Side: order.Side, Err: reason}
	}

	if order.Qty <= 0 {
		return fail("Quantity must be positive")
	}

	price := order.LimitPrice
	if order.Type != execution.Limit || price <= 0 {
		last, ok := e.prices.LastPrice(order.Symbol)
		if !ok || last <= 0 {
			return fail("Failed to get ticker price")
		}
		price = last
	}

	base, quote, err := splitSymbol(order.Symbol)
	if err != nil {
		return fail(err.Error())
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	switch order.Side {
	case execution.Buy:
		cost := order.Qty * price
		if e.balances[quote] < cost {
			return fail("Insufficient balance")
		}
		e.balances[quote] -= cost
		e.balances[base] += order.Qty

	case execution.Sell:
		if e.balances[base] < order.Qty {
			return fail("Insufficient balance")
		}
		e.balances[base] -= order.Qty
		e.balances[quote] += order.Qty * price

	default:
		return fail("Unknown order side")
	}

	ts := e.now()
	result := execution.Result{
		Success: true,
		OrderID: fmt.Sprintf("PAPER_%d", ts.UnixMilli()),
		Symbol:  order.Symbol,
		Side:    order.Side,
		Qty:     order.Qty,
		Price:   price,
	}
	if e.recorder != nil {
		e.recorder.Record(execution.Fill{
			OrderID: result.OrderID,
			Symbol:  order.Symbol,
			Side:    order.Side,
			Qty:     order.Qty,
			Price:   price,
			Ts:      ts,
		})
	}
	return result
}

// splitSymbol breaks a BASE_QUOTE pair into its currencies.
func splitSymbol(symbol string) (base, quote string, err error) {
	parts := strings.Split(symbol, "_")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid symbol %q", symbol)
	}
	return parts[0], parts[1], nil
}
