package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const defaultCryptoComBaseURL = "https://api.crypto.com/v2/"

// CryptoCom polls the Crypto.com public REST API for tickers and candlesticks.
// Per-symbol failures are logged and skipped so one bad instrument never
// poisons the whole snapshot.
type CryptoCom struct {
	priceBoard
	log         zerolog.Logger
	client      *http.Client
	baseURL     string
	timeframe   string
	candleCount int
}

type cryptoComEnvelope struct {
	Code   int             `json:"code"`
	Result json.RawMessage `json:"result"`
}

type cryptoComTickerResult struct {
	Data []cryptoComTicker `json:"data"`
}

type cryptoComTicker struct {
	Ask       json.Number `json:"a"`
	Bid       json.Number `json:"b"`
	Volume    json.Number `json:"v"`
	Timestamp int64       `json:"t"`
}

type cryptoComCandleResult struct {
	Data []cryptoComCandle `json:"data"`
}

type cryptoComCandle struct {
	Timestamp int64       `json:"t"`
	Open      json.Number `json:"o"`
	High      json.Number `json:"h"`
	Low       json.Number `json:"l"`
	Close     json.Number `json:"c"`
	Volume    json.Number `json:"v"`
}

// NewCryptoCom constructs the REST-backed source.
func NewCryptoCom(log zerolog.Logger, baseURL, timeframe string, candleCount int) *CryptoCom {
	if baseURL == "" {
		baseURL = defaultCryptoComBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	if timeframe == "" {
		timeframe = "5m"
	}
	if candleCount <= 0 {
		candleCount = 50
	}
	return &CryptoCom{
		priceBoard:  newPriceBoard(),
		log:         log,
		client:      &http.Client{Timeout: 10 * time.Second},
		baseURL:     baseURL,
		timeframe:   timeframe,
		candleCount: candleCount,
	}
}

// GetMarketData fetches ticker and candles for every symbol; symbols missing
// either piece are omitted from the snapshot.
func (c *CryptoCom) GetMarketData(ctx context.Context, symbols []string) (Snapshot, error) {
	snapshot := make(Snapshot, len(symbols))
	for _, sym := range symbols {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ticker, err := c.getTicker(ctx, sym)
		if err != nil {
			c.log.Warn().Err(err).Str("symbol", sym).Msg("ticker fetch failed")
			continue
		}
		candles, err := c.getCandles(ctx, sym)
		if err != nil {
			c.log.Warn().Err(err).Str("symbol", sym).Msg("candle fetch failed")
			continue
		}
		if len(candles) == 0 {
			continue
		}
		c.mark(sym, ticker.Last)
		snapshot[sym] = Book{Ticker: ticker, Candles: candles}
	}
	return snapshot, nil
}

func (c *CryptoCom) getTicker(ctx context.Context, symbol string) (Ticker, error) {
	var result cryptoComTickerResult
	if err := c.get(ctx, "public/get-ticker", symbol, nil, &result); err != nil {
		return Ticker{}, err
	}
	if len(result.Data) == 0 {
		return Ticker{}, fmt.Errorf("no ticker data for %s", symbol)
	}
	raw := result.Data[0]
	// The venue reports the latest trade under "a"; bid under "b".
	last := numberToFloat(raw.Ask)
	return Ticker{
		Symbol:    symbol,
		Last:      last,
		Bid:       numberToFloat(raw.Bid),
		Ask:       last,
		Volume:    numberToFloat(raw.Volume),
		Timestamp: raw.Timestamp,
	}, nil
}

func (c *CryptoCom) getCandles(ctx context.Context, symbol string) ([]Candle, error) {
	var result cryptoComCandleResult
	params := url.Values{"timeframe": {c.timeframe}}
	if err := c.get(ctx, "public/get-candlestick", symbol, params, &result); err != nil {
		return nil, err
	}
	data := result.Data
	if len(data) > c.candleCount {
		data = data[len(data)-c.candleCount:]
	}
	candles := make([]Candle, 0, len(data))
	for _, raw := range data {
		candles = append(candles, Candle{
			Timestamp: raw.Timestamp,
			Open:      numberToFloat(raw.Open),
			High:      numberToFloat(raw.High),
			Low:       numberToFloat(raw.Low),
			Close:     numberToFloat(raw.Close),
			Volume:    numberToFloat(raw.Volume),
		})
	}
	return candles, nil
}

func (c *CryptoCom) get(ctx context.Context, path, symbol string, params url.Values, out any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("instrument_name", symbol)
	endpoint := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status %d", path, resp.StatusCode)
	}

	var envelope cryptoComEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	if envelope.Code != 0 {
		return fmt.Errorf("%s returned code %d", path, envelope.Code)
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return fmt.Errorf("decode %s result: %w", path, err)
	}
	return nil
}

func numberToFloat(n json.Number) float64 {
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil {
		return 0
	}
	return f
}
