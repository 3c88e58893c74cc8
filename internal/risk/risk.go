// Package risk provides guard-rails applied before orders reach the exchange.
package risk

// Limits caps how much size a single trade may take on. A zero cap disables
// the check.
type Limits struct {
	MaxNotionalPerTrade float64
}

// Allow reports whether the proposed notional fits within the limits.
func (l Limits) Allow(notional float64) bool {
	if l.MaxNotionalPerTrade <= 0 {
		return true
	}
	return notional <= l.MaxNotionalPerTrade
}
