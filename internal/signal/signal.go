// Package signal standardizes payloads shared between the strategy layer and
// the agent decision loop.
package signal

// Action enumerates the directional decisions a strategy can emit.
type Action string

const (
	// Buy indicates a long entry.
	Buy Action = "BUY"
	// Sell indicates a short entry or exit.
	Sell Action = "SELL"
	// Hold indicates no trade this cycle.
	Hold Action = "HOLD"
)

// Signal expresses the single trading decision produced by a strategy pass.
type Signal struct {
	Symbol     string
	Action     Action
	Confidence float64 // in [0,1]
	Price      float64
	RSI        float64
	Momentum   float64
	Reasons    []string
	Strength   int // aggregated rule votes; positive long bias, negative short bias
}

// HoldSignal constructs the neutral signal returned when no symbol qualifies.
func HoldSignal(reason string) Signal {
	return Signal{Action: Hold, Confidence: 0, Reasons: []string{reason}}
}
