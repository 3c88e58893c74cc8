package strategy

import (
	"fmt"
	"math"
	"sort"

	"vitalbot/internal/config"
	"vitalbot/internal/indicator"
	"vitalbot/internal/market"
	sig "vitalbot/internal/signal"
)

// confidenceDivisor normalizes rule votes into a confidence score. Kept at 8
// even though the achievable vote magnitude is 5, so confidence never
// saturates; recalibrating it would shift every threshold downstream.
const confidenceDivisor = 8.0

// Momentum scores each symbol with RSI, moving-average crossover, and price
// momentum votes, then surfaces the strongest directional signal.
type Momentum struct {
	rsiPeriod      int
	rsiOversold    float64
	rsiOverbought  float64
	maFast         int
	maSlow         int
	momentumPeriod int
}

// NewMomentum builds the strategy, substituting conventional defaults for
// zero-valued parameters.
func NewMomentum(params config.StrategyParams) *Momentum {
	m := &Momentum{
		rsiPeriod:      params.RSIPeriod,
		rsiOversold:    params.RSIOversold,
		rsiOverbought:  params.RSIOverbought,
		maFast:         params.MAFast,
		maSlow:         params.MASlow,
		momentumPeriod: params.MomentumPeriod,
	}
	if m.rsiPeriod <= 0 {
		m.rsiPeriod = 14
	}
	if m.rsiOversold <= 0 {
		m.rsiOversold = 30
	}
	if m.rsiOverbought <= 0 {
		m.rsiOverbought = 70
	}
	if m.maFast <= 0 {
		m.maFast = 10
	}
	if m.maSlow <= 0 {
		m.maSlow = 30
	}
	if m.momentumPeriod <= 0 {
		m.momentumPeriod = 10
	}
	return m
}

// Name returns the identifier for the strategy implementation.
func (m *Momentum) Name() string { return "Momentum" }

// Analyze evaluates every symbol with enough candle history and returns the
// signal with the largest absolute vote count. Symbols are visited in sorted
// order so ties resolve deterministically to the first symbol encountered.
func (m *Momentum) Analyze(snapshot market.Snapshot) sig.Signal {
	symbols := make([]string, 0, len(snapshot))
	for sym := range snapshot {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	var best sig.Signal
	var have bool
	for _, sym := range symbols {
		book := snapshot[sym]
		if len(book.Candles) < m.maSlow {
			continue
		}
		candidate := m.score(sym, book)
		if !have || abs(candidate.Strength) > abs(best.Strength) {
			best = candidate
			have = true
		}
	}
	if !have {
		return sig.HoldSignal("No data")
	}
	return best
}

func (m *Momentum) score(symbol string, book market.Book) sig.Signal {
	closes := make([]float64, len(book.Candles))
	for i, c := range book.Candles {
		closes[i] = c.Close
	}
	price := closes[len(closes)-1]

	rsi := indicator.RSI(closes, m.rsiPeriod)
	maFast := indicator.SMA(closes, m.maFast)
	maSlow := indicator.SMA(closes, m.maSlow)
	momentum := indicator.Momentum(closes, m.momentumPeriod)

	strength := 0
	var reasons []string

	if rsi < m.rsiOversold {
		strength += 2
		reasons = append(reasons, fmt.Sprintf("RSI oversold (%.1f)", rsi))
	} else if rsi > m.rsiOverbought {
		strength -= 2
		reasons = append(reasons, fmt.Sprintf("RSI overbought (%.1f)", rsi))
	}

	if maFast > maSlow*1.01 {
		strength += 2
		reasons = append(reasons, "MA bullish crossover")
	} else if maFast < maSlow*0.99 {
		strength -= 2
		reasons = append(reasons, "MA bearish crossover")
	}

	if momentum > 0.02 {
		strength++
		reasons = append(reasons, fmt.Sprintf("Strong momentum (%.2f%%)", momentum*100))
	} else if momentum < -0.02 {
		strength--
		reasons = append(reasons, fmt.Sprintf("Weak momentum (%.2f%%)", momentum*100))
	}

	action := sig.Hold
	if strength >= 3 {
		action = sig.Buy
	} else if strength <= -3 {
		action = sig.Sell
	}

	return sig.Signal{
		Symbol:     symbol,
		Action:     action,
		Confidence: math.Min(float64(abs(strength))/confidenceDivisor, 1.0),
		Price:      price,
		RSI:        rsi,
		Momentum:   momentum,
		Reasons:    reasons,
		Strength:   strength,
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
