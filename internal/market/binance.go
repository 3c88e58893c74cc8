package market

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rs/zerolog"
)

type binanceEnvelope struct {
	Stream string       `json:"stream"`
	Data   binanceTrade `json:"data"`
}

type binanceTrade struct {
	Price        string `json:"p"`
	Quantity     string `json:"q"`
	TradeTime    int64  `json:"T"`
	IsBuyerMaker bool   `json:"m"`
}

// Binance subscribes to public trade streams and rolls incoming trades into
// fixed-interval OHLCV candles per symbol. Run must be started before
// GetMarketData returns anything useful.
type Binance struct {
	priceBoard
	log        zerolog.Logger
	symbols    []string
	interval   time.Duration
	maxCandles int

	mu       sync.Mutex
	builders map[string]*candleBuilder
	history  map[string][]Candle
}

// candleBuilder accumulates trades for the currently open bucket.
type candleBuilder struct {
	bucket                        int64
	open, high, low, close, total float64
	trades                        int
}

// NewBinance constructs the stream-backed source. Symbols follow the
// BASE_QUOTE convention and are translated to stream names internally.
func NewBinance(log zerolog.Logger, symbols []string, intervalSecs, maxCandles int) *Binance {
	if intervalSecs <= 0 {
		intervalSecs = 60
	}
	if maxCandles <= 0 {
		maxCandles = 50
	}
	return &Binance{
		priceBoard: newPriceBoard(),
		log:        log,
		symbols:    append([]string(nil), symbols...),
		interval:   time.Duration(intervalSecs) * time.Second,
		maxCandles: maxCandles,
		builders:   make(map[string]*candleBuilder),
		history:    make(map[string][]Candle),
	}
}

// GetMarketData snapshots the accumulated candles; symbols with no observed
// trades yet are omitted.
func (b *Binance) GetMarketData(_ context.Context, symbols []string) (Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	snapshot := make(Snapshot, len(symbols))
	for _, sym := range symbols {
		history := b.history[sym]
		builder := b.builders[sym]
		if len(history) == 0 && (builder == nil || builder.trades == 0) {
			continue
		}

		candles := make([]Candle, 0, len(history)+1)
		candles = append(candles, history...)
		if builder != nil && builder.trades > 0 {
			candles = append(candles, builder.candle())
		}

		last := candles[len(candles)-1].Close
		snapshot[sym] = Book{
			Ticker: Ticker{
				Symbol:    sym,
				Last:      last,
				Bid:       last * 0.999,
				Ask:       last * 1.001,
				Volume:    candles[len(candles)-1].Volume,
				Timestamp: time.Now().Unix(),
			},
			Candles: candles,
		}
	}
	return snapshot, nil
}

// Run connects to the combined trade stream and consumes until the context is
// canceled, reconnecting with capped backoff on transport errors.
func (b *Binance) Run(ctx context.Context) error {
	if len(b.symbols) == 0 {
		return fmt.Errorf("binance source requires at least one symbol")
	}

	streams := make([]string, len(b.symbols))
	for i, sym := range b.symbols {
		streams[i] = streamName(sym) + "@trade"
	}
	url := fmt.Sprintf("wss://stream.binance.com:9443/stream?streams=%s", strings.Join(streams, "/"))

	backoff := time.Second
	const maxBackoff = 30 * time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := b.consumeStream(ctx, url); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.log.Warn().Err(err).Msg("binance stream disconnected, retrying")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoff = time.Duration(math.Min(float64(maxBackoff), float64(backoff)*1.8))
			continue
		}
		return nil
	}
}

func (b *Binance) consumeStream(ctx context.Context, url string) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	b.log.Info().Strs("symbols", b.symbols).Msg("connected binance trade stream")

	conn.SetReadLimit(1 << 20)
	conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(30 * time.Second))
		return nil
	})

	pingCtx, pingCancel := context.WithCancel(ctx)
	defer pingCancel()
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					b.log.Warn().Err(err).Msg("binance ping failed")
					return
				}
			case <-pingCtx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var env binanceEnvelope
		if err := json.Unmarshal(message, &env); err != nil {
			b.log.Warn().Err(err).Msg("failed to decode binance message")
			continue
		}
		symbol := b.symbolForStream(env.Stream)
		if symbol == "" {
			continue
		}
		px, err := strconv.ParseFloat(env.Data.Price, 64)
		if err != nil {
			b.log.Warn().Err(err).Msg("invalid price from binance")
			continue
		}
		qty, err := strconv.ParseFloat(env.Data.Quantity, 64)
		if err != nil {
			b.log.Warn().Err(err).Msg("invalid quantity from binance")
			continue
		}
		b.recordTrade(symbol, px, qty, time.UnixMilli(env.Data.TradeTime))
	}
}

func (b *Binance) recordTrade(symbol string, px, qty float64, ts time.Time) {
	b.mark(symbol, px)

	bucket := ts.Truncate(b.interval).Unix()
	b.mu.Lock()
	defer b.mu.Unlock()

	builder := b.builders[symbol]
	if builder == nil {
		builder = &candleBuilder{}
		b.builders[symbol] = builder
	}
	if builder.trades > 0 && builder.bucket != bucket {
		history := append(b.history[symbol], builder.candle())
		if len(history) > b.maxCandles {
			history = history[len(history)-b.maxCandles:]
		}
		b.history[symbol] = history
		*builder = candleBuilder{}
	}
	if builder.trades == 0 {
		builder.bucket = bucket
		builder.open = px
		builder.high = px
		builder.low = px
	}
	builder.close = px
	builder.high = math.Max(builder.high, px)
	builder.low = math.Min(builder.low, px)
	builder.total += qty
	builder.trades++
}

func (c *candleBuilder) candle() Candle {
	return Candle{
		Timestamp: c.bucket,
		Open:      c.open,
		High:      c.high,
		Low:       c.low,
		Close:     c.close,
		Volume:    c.total,
	}
}

func (b *Binance) symbolForStream(stream string) string {
	parts := strings.Split(stream, "@")
	if len(parts) == 0 || parts[0] == "" {
		return ""
	}
	for _, sym := range b.symbols {
		if streamName(sym) == parts[0] {
			return sym
		}
	}
	return ""
}

func streamName(symbol string) string {
	return strings.ToLower(strings.ReplaceAll(symbol, "_", ""))
}
