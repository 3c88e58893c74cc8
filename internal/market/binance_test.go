package market

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestBinanceCandleBucketing(t *testing.T) {
	src := NewBinance(zerolog.Nop(), []string{"ETH_USDT"}, 60, 50)

	base := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	src.recordTrade("ETH_USDT", 2000, 1, base)
	src.recordTrade("ETH_USDT", 2010, 2, base.Add(10*time.Second))
	src.recordTrade("ETH_USDT", 1995, 1, base.Add(30*time.Second))
	// crosses into the next bucket, closing the first candle
	src.recordTrade("ETH_USDT", 2005, 1, base.Add(70*time.Second))

	snap, err := src.GetMarketData(context.Background(), []string{"ETH_USDT"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	candles := snap["ETH_USDT"].Candles
	if len(candles) != 2 {
		t.Fatalf("expected closed candle plus open bucket, got %d", len(candles))
	}

	first := candles[0]
	if first.Open != 2000 || first.High != 2010 || first.Low != 1995 || first.Close != 1995 {
		t.Fatalf("unexpected first candle: %+v", first)
	}
	if first.Volume != 4 {
		t.Fatalf("expected volume 4, got %.f", first.Volume)
	}
	if candles[1].Close != 2005 {
		t.Fatalf("open bucket should track the latest trade, got %+v", candles[1])
	}

	if px, ok := src.LastPrice("ETH_USDT"); !ok || px != 2005 {
		t.Fatalf("expected last price 2005, got %.2f", px)
	}
}

func TestBinanceOmitsQuietSymbols(t *testing.T) {
	src := NewBinance(zerolog.Nop(), []string{"ETH_USDT", "BTC_USDT"}, 60, 50)
	src.recordTrade("ETH_USDT", 2000, 1, time.Now())

	snap, _ := src.GetMarketData(context.Background(), []string{"ETH_USDT", "BTC_USDT"})
	if _, ok := snap["BTC_USDT"]; ok {
		t.Fatalf("symbol without trades should be omitted")
	}
	if _, ok := snap["ETH_USDT"]; !ok {
		t.Fatalf("expected ETH_USDT book")
	}
}

func TestBinanceStreamNames(t *testing.T) {
	if streamName("ETH_USDT") != "ethusdt" {
		t.Fatalf("unexpected stream name: %s", streamName("ETH_USDT"))
	}
	src := NewBinance(zerolog.Nop(), []string{"ETH_USDT"}, 60, 50)
	if got := src.symbolForStream("ethusdt@trade"); got != "ETH_USDT" {
		t.Fatalf("expected reverse mapping, got %q", got)
	}
	if got := src.symbolForStream("dogeusdt@trade"); got != "" {
		t.Fatalf("unexpected mapping for unknown stream: %q", got)
	}
}
