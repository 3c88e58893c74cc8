// Package agent implements the resource-gated decision engine driving the
// trading loop: a depleting GMAC budget, a goodwill counter, and a survival
// state machine that modulates confidence thresholds and position sizing.
//
// All agent state is mutated by the single loop goroutine; callers must not
// invoke Heartbeat concurrently.
package agent

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"vitalbot/internal/config"
	"vitalbot/internal/execution"
	"vitalbot/internal/market"
	"vitalbot/internal/metrics"
	"vitalbot/internal/risk"
	sig "vitalbot/internal/signal"
	"vitalbot/internal/strategy"
)

// Backend abstracts the market data and order execution capability the agent
// consumes. Swapping the implementation switches between paper venues.
type Backend interface {
	GetMarketData(ctx context.Context, symbols []string) (market.Snapshot, error)
	GetBalance() map[string]float64
	PlaceOrder(order execution.Order) execution.Result
}

// Params bundles every decision knob of the agent. Build it with
// ParamsFromConfig so profile defaults are applied consistently.
type Params struct {
	Name                     string
	InitialGMAC              float64
	HeartbeatCost            float64
	APICallCost              float64
	InferenceCost            float64
	TradeCost                float64
	Thresholds               Thresholds
	ConfidenceNormal         float64
	ConfidenceSurvival       float64
	PositionFractionNormal   float64
	PositionFractionSurvival float64
	GoodwillIncrement        int
	TradeReward              float64
	CycleInterval            time.Duration
	Symbols                  []string
}

// ParamsFromConfig translates the config leaf into agent parameters, filling
// zero-valued fields from the named profile (conservative by default).
func ParamsFromConfig(cfg config.Agent, symbols []string) Params {
	p := Params{
		Name:                     cfg.Name,
		InitialGMAC:              cfg.InitialGMAC,
		HeartbeatCost:            cfg.HeartbeatCost,
		APICallCost:              cfg.APICallCost,
		InferenceCost:            cfg.InferenceCost,
		TradeCost:                cfg.TradeCost,
		Thresholds:               Thresholds{Death: cfg.DeathThreshold, Critical: cfg.CriticalThreshold, Survival: cfg.SurvivalThreshold},
		ConfidenceNormal:         cfg.ConfidenceNormal,
		ConfidenceSurvival:       cfg.ConfidenceSurvival,
		PositionFractionNormal:   cfg.PositionFractionNormal,
		PositionFractionSurvival: cfg.PositionFractionSurvival,
		GoodwillIncrement:        cfg.GoodwillIncrement,
		TradeReward:              cfg.TradeRewardGMAC,
		CycleInterval:            time.Duration(cfg.CycleIntervalMs) * time.Millisecond,
		Symbols:                  append([]string(nil), symbols...),
	}
	if p.Name == "" {
		p.Name = "Agent"
	}
	if p.InitialGMAC == 0 {
		p.InitialGMAC = 1000
	}
	if p.HeartbeatCost == 0 {
		p.HeartbeatCost = 1
	}
	if p.APICallCost == 0 {
		p.APICallCost = 0.5
	}
	if p.InferenceCost == 0 {
		p.InferenceCost = 2
	}
	if p.TradeCost == 0 {
		p.TradeCost = 5
	}
	if p.Thresholds == (Thresholds{}) {
		p.Thresholds = Thresholds{Death: 0, Critical: 100, Survival: 300}
	}
	if p.GoodwillIncrement == 0 {
		p.GoodwillIncrement = 10
	}
	if p.CycleInterval <= 0 {
		p.CycleInterval = 2 * time.Second
	}

	aggressive := strings.EqualFold(cfg.Profile, "aggressive")
	if p.ConfidenceNormal == 0 {
		if aggressive {
			p.ConfidenceNormal = 0.50
		} else {
			p.ConfidenceNormal = 0.70
		}
	}
	if p.ConfidenceSurvival == 0 {
		if aggressive {
			p.ConfidenceSurvival = 0.65
		} else {
			p.ConfidenceSurvival = 0.85
		}
	}
	if p.PositionFractionNormal == 0 {
		if aggressive {
			p.PositionFractionNormal = 0.20
		} else {
			p.PositionFractionNormal = 0.10
		}
	}
	if p.PositionFractionSurvival == 0 {
		if aggressive {
			p.PositionFractionSurvival = 0.10
		} else {
			p.PositionFractionSurvival = 0.05
		}
	}
	return p
}

// Position is an append-only record of an opened position. Positions are
// log-only: nothing in the agent closes or reconciles them against PnL.
type Position struct {
	Symbol     string
	Side       execution.Side
	EntryPrice float64
	Qty        float64
	Ts         time.Time
}

// Status is a point-in-time view of agent vitals and counters.
type Status struct {
	Name           string
	GMAC           float64
	Goodwill       int
	Alive          bool
	Mode           Mode
	Heartbeats     int
	TradesExecuted int
	WinningTrades  int
	LosingTrades   int
	TotalPnL       float64
	DailyPnL       float64
	DailyTrades    int
	Positions      []Position
}

// Agent owns the GMAC budget and runs the per-cycle decision protocol.
type Agent struct {
	log     zerolog.Logger
	params  Params
	strat   strategy.Strategy
	backend Backend
	limits  risk.Limits

	gmac     float64
	goodwill int
	alive    bool
	mode     Mode

	heartbeats int
	trades     int
	wins       int
	losses     int
	totalPnL   float64
	// daily counters are monotonic: no day-boundary reset exists
	dailyPnL    float64
	dailyTrades int
	positions   []Position

	now func() time.Time
}

// New constructs a live agent with a full GMAC budget.
func New(log zerolog.Logger, params Params, strat strategy.Strategy, backend Backend, limits risk.Limits) *Agent {
	a := &Agent{
		log:     log.With().Str("agent", params.Name).Logger(),
		params:  params,
		strat:   strat,
		backend: backend,
		limits:  limits,
		gmac:    params.InitialGMAC,
		alive:   true,
		mode:    ModeFor(params.InitialGMAC, params.Thresholds),
		now:     time.Now,
	}
	metrics.GMACLevel.Set(a.gmac)
	metrics.Goodwill.Set(float64(a.goodwill))
	a.log.Info().Float64("gmac", a.gmac).Str("strategy", strat.Name()).Msg("agent initialized")
	return a
}

// Status returns a snapshot of agent vitals.
func (a *Agent) Status() Status {
	positions := make([]Position, len(a.positions))
	copy(positions, a.positions)
	return Status{
		Name:           a.params.Name,
		GMAC:           a.gmac,
		Goodwill:       a.goodwill,
		Alive:          a.alive,
		Mode:           a.mode,
		Heartbeats:     a.heartbeats,
		TradesExecuted: a.trades,
		WinningTrades:  a.wins,
		LosingTrades:   a.losses,
		TotalPnL:       a.totalPnL,
		DailyPnL:       a.dailyPnL,
		DailyTrades:    a.dailyTrades,
		Positions:      positions,
	}
}

// Heartbeat processes one decision cycle. It returns false once the agent is
// dead; dead heartbeats are no-ops and leave every counter unchanged.
func (a *Agent) Heartbeat(ctx context.Context) bool {
	if !a.alive {
		return false
	}

	a.heartbeats++
	metrics.HeartbeatsTotal.Inc()
	a.spend(a.params.HeartbeatCost)

	a.log.Info().
		Int("heartbeat", a.heartbeats).
		Float64("gmac", a.gmac).
		Int("goodwill", a.goodwill).
		Int("trades", a.trades).
		Float64("pnl", a.totalPnL).
		Msg("heartbeat")

	mode := a.refreshMode()
	if !a.alive {
		return false
	}
	if mode == ModeCritical {
		a.log.Warn().Float64("gmac", a.gmac).Msg("critical mode - skipping analysis to conserve GMAC")
		return true
	}

	snapshot := a.fetchMarketData(ctx)
	decision := a.analyze(snapshot)
	if decision.Action == sig.Hold {
		a.log.Info().Msg("no trade signal")
		return true
	}

	threshold := a.params.ConfidenceNormal
	if mode == ModeSurvival {
		threshold = a.params.ConfidenceSurvival
	}
	if decision.Confidence < threshold {
		a.log.Info().
			Float64("confidence", decision.Confidence).
			Float64("threshold", threshold).
			Msg("signal below confidence threshold")
		metrics.OrdersRejectedTotal.WithLabelValues("confidence").Inc()
		return true
	}

	a.executeTrade(decision, mode)
	return true
}

// Run drives heartbeats at the configured cadence until the agent dies or the
// context is canceled.
func (a *Agent) Run(ctx context.Context) {
	ticker := time.NewTicker(a.params.CycleInterval)
	defer ticker.Stop()
	for {
		if !a.Heartbeat(ctx) {
			a.log.Error().Msg("agent stopped - GMAC depleted")
			return
		}
		select {
		case <-ctx.Done():
			a.log.Info().Msg("agent loop canceled")
			return
		case <-ticker.C:
		}
	}
}

func (a *Agent) spend(cost float64) {
	a.gmac -= cost
	metrics.GMACLevel.Set(a.gmac)
}

// refreshMode recomputes the survival state from the current GMAC level,
// logging transitions. A death transition flips the absorbing alive flag.
func (a *Agent) refreshMode() Mode {
	mode := ModeFor(a.gmac, a.params.Thresholds)
	if mode != a.mode {
		switch mode {
		case ModeDead:
			a.log.Error().Float64("gmac", a.gmac).Msg("agent died - GMAC depleted")
		case ModeCritical:
			a.log.Error().Float64("gmac", a.gmac).Msg("entering CRITICAL mode")
		case ModeSurvival:
			a.log.Warn().Float64("gmac", a.gmac).Msg("entering SURVIVAL mode")
		case ModeNormal:
			a.log.Info().Float64("gmac", a.gmac).Msg("back to NORMAL mode")
		}
		a.mode = mode
	}
	if mode == ModeDead {
		a.alive = false
	}
	return mode
}

// fetchMarketData debits the per-symbol API cost and pulls a snapshot.
// Backend failures are absorbed: the cycle proceeds with no data.
func (a *Agent) fetchMarketData(ctx context.Context) market.Snapshot {
	a.spend(a.params.APICallCost * float64(len(a.params.Symbols)))
	snapshot, err := a.backend.GetMarketData(ctx, a.params.Symbols)
	if err != nil {
		a.log.Warn().Err(err).Msg("market data fetch failed")
		return market.Snapshot{}
	}
	return snapshot
}

func (a *Agent) analyze(snapshot market.Snapshot) sig.Signal {
	a.spend(a.params.InferenceCost)
	decision := a.strat.Analyze(snapshot)
	metrics.SignalsTotal.WithLabelValues(string(decision.Action)).Inc()
	if decision.Action != sig.Hold {
		a.log.Info().
			Str("action", string(decision.Action)).
			Str("symbol", decision.Symbol).
			Float64("confidence", decision.Confidence).
			Strs("reasons", decision.Reasons).
			Msg("signal")
	}
	return decision
}

func (a *Agent) executeTrade(decision sig.Signal, mode Mode) {
	a.spend(a.params.TradeCost)

	fraction := a.params.PositionFractionNormal
	if mode == ModeSurvival {
		fraction = a.params.PositionFractionSurvival
	}

	balances := a.backend.GetBalance()
	quote := quoteCurrency(decision.Symbol)
	available := balances[quote]
	qty := available * fraction / decision.Price

	notional := qty * decision.Price
	if !a.limits.Allow(notional) {
		a.log.Warn().Float64("notional", notional).Msg("trade blocked by notional cap")
		metrics.OrdersRejectedTotal.WithLabelValues("notional_cap").Inc()
		return
	}

	side := execution.Buy
	if decision.Action == sig.Sell {
		side = execution.Sell
	}
	result := a.backend.PlaceOrder(execution.Order{
		Symbol: decision.Symbol,
		Side:   side,
		Type:   execution.Market,
		Qty:    qty,
	})
	if !result.Success {
		a.log.Error().Str("reason", result.Err).Msg("trade failed")
		metrics.OrdersRejectedTotal.WithLabelValues("exchange").Inc()
		return
	}

	a.trades++
	a.dailyTrades++
	metrics.OrdersTotal.WithLabelValues(result.Symbol, string(result.Side)).Inc()
	a.positions = append(a.positions, Position{
		Symbol:     result.Symbol,
		Side:       result.Side,
		EntryPrice: result.Price,
		Qty:        result.Qty,
		Ts:         a.now(),
	})
	a.goodwill += a.params.GoodwillIncrement
	metrics.Goodwill.Set(float64(a.goodwill))
	if a.params.TradeReward > 0 {
		a.gmac += a.params.TradeReward
		metrics.GMACLevel.Set(a.gmac)
	}

	a.log.Info().
		Str("side", string(result.Side)).
		Str("symbol", result.Symbol).
		Float64("qty", result.Qty).
		Float64("price", result.Price).
		Str("order_id", result.OrderID).
		Int("goodwill", a.goodwill).
		Msg("trade executed")
}

// quoteCurrency extracts the quote leg of a BASE_QUOTE symbol; sizing always
// keys off the quote balance regardless of side.
func quoteCurrency(symbol string) string {
	if i := strings.IndexByte(symbol, '_'); i >= 0 && i+1 < len(symbol) {
		return symbol[i+1:]
	}
	return symbol
}
