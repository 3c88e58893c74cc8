// Package indicator provides technical indicator calculations over closing
// price series. All functions are pure and degrade to neutral defaults when
// the series is too short; they never return errors.
package indicator

// RSI computes the Relative Strength Index over the trailing period window.
// Fewer than period+1 samples yields the neutral value 50. A window with no
// losses yields 100.
func RSI(prices []float64, period int) float64 {
	if period <= 0 || len(prices) < period+1 {
		return 50.0
	}

	var gain, loss float64
	for i := len(prices) - period; i < len(prices); i++ {
		delta := prices[i] - prices[i-1]
		if delta > 0 {
			gain += delta
		} else {
			loss += -delta
		}
	}
	avgGain := gain / float64(period)
	avgLoss := loss / float64(period)

	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}

// SMA computes the simple moving average of the trailing period values. A
// short series degrades to the last available price, an empty series to 0.
func SMA(prices []float64, period int) float64 {
	if len(prices) == 0 {
		return 0
	}
	if period <= 0 || len(prices) < period {
		return prices[len(prices)-1]
	}
	var sum float64
	for _, px := range prices[len(prices)-period:] {
		sum += px
	}
	return sum / float64(period)
}

// Momentum computes the fractional price change against the price period
// samples back. Returns 0 when there is insufficient history or the anchor
// price is zero.
func Momentum(prices []float64, period int) float64 {
	if period <= 0 || len(prices) < period {
		return 0
	}
	anchor := prices[len(prices)-period]
	if anchor == 0 {
		return 0
	}
	return (prices[len(prices)-1] - anchor) / anchor
}
