// Package market hosts pluggable market data sources feeding the agent loop.
package market

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"vitalbot/internal/config"
)

const (
	// ProviderSynthetic emits deterministic random-walk candles (useful for tests/offline work).
	ProviderSynthetic = "synthetic"
	// ProviderCryptoCom polls the Crypto.com public REST API for tickers and candlesticks.
	ProviderCryptoCom = "cryptocom"
	// ProviderBinance aggregates live Binance trade streams into candles.
	ProviderBinance = "binance"
)

// Ticker models the top-of-book quote for a symbol.
type Ticker struct {
	Symbol    string
	Last      float64
	Bid       float64
	Ask       float64
	Volume    float64
	Timestamp int64
}

// Candle is a single OHLCV bar.
type Candle struct {
	Timestamp int64
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// Book bundles the current ticker with recent candles for one symbol.
type Book struct {
	Ticker  Ticker
	Candles []Candle
}

// Snapshot maps symbols to their market view for a single analysis pass.
// It is built fresh per cycle and never mutated after being returned.
type Snapshot map[string]Book

// Source abstracts a market data provider. LastPrice exposes the most recent
// trade/ticker price so the paper exchange can resolve market-order fills.
type Source interface {
	GetMarketData(ctx context.Context, symbols []string) (Snapshot, error)
	LastPrice(symbol string) (float64, bool)
}

// Streamer is implemented by sources that pump a background feed and must be
// started before snapshots carry data.
type Streamer interface {
	Source
	Run(ctx context.Context) error
}

// New constructs a source backed by the configured provider.
func New(log zerolog.Logger, cfg config.Market) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderSynthetic:
		return NewSynthetic(cfg.Synthetic), nil
	case ProviderCryptoCom:
		return NewCryptoCom(log, cfg.BaseURL, cfg.Timeframe, cfg.CandleCount), nil
	case ProviderBinance:
		return NewBinance(log, cfg.Symbols, cfg.CandleIntervalSecs, cfg.CandleCount), nil
	default:
		return nil, fmt.Errorf("unknown market provider %q", cfg.Provider)
	}
}

// priceBoard tracks the latest observed price per symbol for reference fills.
type priceBoard struct {
	mu   sync.RWMutex
	last map[string]float64
}

func newPriceBoard() priceBoard {
	return priceBoard{last: make(map[string]float64)}
}

func (b *priceBoard) mark(symbol string, px float64) {
	if symbol == "" || px <= 0 {
		return
	}
	b.mu.Lock()
	b.last[symbol] = px
	b.mu.Unlock()
}

// LastPrice returns the most recent price observed for symbol.
func (b *priceBoard) LastPrice(symbol string) (float64, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	px, ok := b.last[symbol]
	return px, ok
}
