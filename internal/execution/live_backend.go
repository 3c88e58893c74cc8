package execution

import (
	"context"

	"vitalbot/internal/market"
)

// LiveBackend pairs a market source with the refusing executor so the agent
// loop can run with paper trading disabled: data flows, balances read empty,
// and every order attempt is rejected instead of settled.
type LiveBackend struct {
	source   market.Source
	executor *LiveExecutor
}

// NewLiveBackend wires the live (non-settling) backend.
func NewLiveBackend(source market.Source, executor *LiveExecutor) *LiveBackend {
	return &LiveBackend{source: source, executor: executor}
}

// GetMarketData delegates to the underlying source.
func (b *LiveBackend) GetMarketData(ctx context.Context, symbols []string) (market.Snapshot, error) {
	return b.source.GetMarketData(ctx, symbols)
}

// GetBalance reports no funds; there is no live account integration.
func (b *LiveBackend) GetBalance() map[string]float64 {
	return map[string]float64{}
}

// PlaceOrder refuses the order via the live executor.
func (b *LiveBackend) PlaceOrder(order Order) Result {
	return b.executor.Submit(order)
}
