// Package strategy contains trading signal generation logic over market snapshots.
package strategy

import (
	"strings"

	"vitalbot/internal/config"
	"vitalbot/internal/market"
	sig "vitalbot/internal/signal"
)

// Strategy defines behaviour shared by strategy implementations used by the agent.
type Strategy interface {
	// Analyze scores every symbol in the snapshot and returns the single
	// strongest signal, or a neutral HOLD when nothing qualifies.
	Analyze(snapshot market.Snapshot) sig.Signal
	Name() string
}

// Build returns a strategy implementation matching the configured mode.
func Build(mode string, params config.StrategyParams) Strategy {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "momentum":
		return NewMomentum(params)
	default:
		return NewMomentum(params)
	}
}
