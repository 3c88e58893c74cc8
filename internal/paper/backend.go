package paper

import (
	"context"

	"vitalbot/internal/execution"
	"vitalbot/internal/market"
)

// Backend combines a market data source with the paper exchange into the
// single trading capability the agent consumes.
type Backend struct {
	source   market.Source
	exchange *Exchange
}

// NewBackend wires a source and exchange together. The exchange should have
// been constructed with the same source as its PriceSource so market orders
// fill at the latest observed price.
func NewBackend(source market.Source, exchange *Exchange) *Backend {
	return &Backend{source: source, exchange: exchange}
}

// GetMarketData delegates to the underlying source.
func (b *Backend) GetMarketData(ctx context.Context, symbols []string) (market.Snapshot, error) {
	return b.source.GetMarketData(ctx, symbols)
}

// GetBalance returns a read-only snapshot of exchange balances.
func (b *Backend) GetBalance() map[string]float64 {
	return b.exchange.Balances()
}

// PlaceOrder executes against the paper exchange.
func (b *Backend) PlaceOrder(order execution.Order) execution.Result {
	return b.exchange.PlaceOrder(order)
}
