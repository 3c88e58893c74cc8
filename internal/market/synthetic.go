package market

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"vitalbot/internal/config"
)

const (
	defaultSyntheticBasePrice = 100.0
	defaultSyntheticCandles   = 50
)

// Synthetic emits deterministic random-walk candles seeded from configuration.
// Successive GetMarketData calls continue each symbol's walk, so the same seed
// always reproduces the same price history.
type Synthetic struct {
	priceBoard
	mu      sync.Mutex
	rng     *rand.Rand
	base    map[string]float64
	drift   float64 // fractional per-candle drift
	candles int
	walks   map[string][]Candle
	clock   func() time.Time
}

// NewSynthetic constructs the offline source from the synthetic config leaf.
func NewSynthetic(cfg config.Synthetic) *Synthetic {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	base := make(map[string]float64, len(cfg.BasePrices))
	for sym, px := range cfg.BasePrices {
		base[sym] = px
	}
	return &Synthetic{
		priceBoard: newPriceBoard(),
		rng:        rand.New(rand.NewSource(seed)),
		base:       base,
		drift:      cfg.DriftBps / 10_000,
		candles:    defaultSyntheticCandles,
		walks:      make(map[string][]Candle),
		clock:      time.Now,
	}
}

// GetMarketData advances each symbol's walk by one candle and returns the full
// trailing window plus a ticker derived from the latest close.
func (s *Synthetic) GetMarketData(_ context.Context, symbols []string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock().Unix()
	snapshot := make(Snapshot, len(symbols))
	for _, sym := range symbols {
		walk := s.walks[sym]
		if len(walk) == 0 {
			walk = s.seedWalk(sym, now)
		} else {
			walk = append(walk[1:], s.nextCandle(walk[len(walk)-1].Close, now))
		}
		s.walks[sym] = walk

		last := walk[len(walk)-1].Close
		s.mark(sym, last)

		candles := make([]Candle, len(walk))
		copy(candles, walk)
		snapshot[sym] = Book{
			Ticker: Ticker{
				Symbol:    sym,
				Last:      last,
				Bid:       last * 0.999,
				Ask:       last * 1.001,
				Volume:    walk[len(walk)-1].Volume,
				Timestamp: now,
			},
			Candles: candles,
		}
	}
	return snapshot, nil
}

func (s *Synthetic) seedWalk(sym string, now int64) []Candle {
	px := s.base[sym]
	if px <= 0 {
		px = defaultSyntheticBasePrice
	}
	walk := make([]Candle, 0, s.candles)
	ts := now - int64(s.candles)*60
	for i := 0; i < s.candles; i++ {
		c := s.nextCandle(px, ts)
		walk = append(walk, c)
		px = c.Close
		ts += 60
	}
	return walk
}

func (s *Synthetic) nextCandle(prev float64, ts int64) Candle {
	variance := (s.rng.Float64()*2 - 1) * 0.02
	close := prev * (1 + variance + s.drift)
	return Candle{
		Timestamp: ts,
		Open:      close * 0.998,
		High:      close * 1.002,
		Low:       close * 0.997,
		Close:     close,
		Volume:    1000 + s.rng.Float64()*9000,
	}
}
