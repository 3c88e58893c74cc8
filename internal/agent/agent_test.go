package agent

import (
	"context"
	"math"
	"testing"

	"github.com/rs/zerolog"

	"vitalbot/internal/config"
	"vitalbot/internal/execution"
	"vitalbot/internal/market"
	"vitalbot/internal/risk"
	sig "vitalbot/internal/signal"
)

type fixedStrategy struct{ out sig.Signal }

func (f fixedStrategy) Analyze(market.Snapshot) sig.Signal { return f.out }
func (f fixedStrategy) Name() string                       { return "fixed" }

type fakeBackend struct {
	snapshot  market.Snapshot
	fetchErr  error
	balances  map[string]float64
	fetches   int
	orders    []execution.Order
	failOrder bool
}

func (b *fakeBackend) GetMarketData(_ context.Context, _ []string) (market.Snapshot, error) {
	b.fetches++
	return b.snapshot, b.fetchErr
}

func (b *fakeBackend) GetBalance() map[string]float64 { return b.balances }

func (b *fakeBackend) PlaceOrder(order execution.Order) execution.Result {
	b.orders = append(b.orders, order)
	if b.failOrder {
		return execution.Result{Symbol: order.Symbol, Side: order.Side, Err: "Insufficient balance"}
	}
	return execution.Result{
		Success: true,
		OrderID: "PAPER_1",
		Symbol:  order.Symbol,
		Side:    order.Side,
		Qty:     order.Qty,
		Price:   2000,
	}
}

func testParams() Params {
	return Params{
		Name:                     "test",
		InitialGMAC:              1000,
		HeartbeatCost:            1,
		APICallCost:              0.5,
		InferenceCost:            2,
		TradeCost:                5,
		Thresholds:               Thresholds{Death: 0, Critical: 100, Survival: 300},
		ConfidenceNormal:         0.70,
		ConfidenceSurvival:       0.85,
		PositionFractionNormal:   0.10,
		PositionFractionSurvival: 0.05,
		GoodwillIncrement:        10,
		Symbols:                  []string{"ETH_USDT"},
	}
}

func buySignal(confidence float64) sig.Signal {
	return sig.Signal{Symbol: "ETH_USDT", Action: sig.Buy, Confidence: confidence, Price: 2000, Strength: 4}
}

func TestHeartbeatDebitsCycleCosts(t *testing.T) {
	backend := &fakeBackend{balances: map[string]float64{"USDT": 1000}}
	a := New(zerolog.Nop(), testParams(), fixedStrategy{out: sig.HoldSignal("No data")}, backend, risk.Limits{})

	if !a.Heartbeat(context.Background()) {
		t.Fatalf("expected live heartbeat")
	}
	status := a.Status()
	// heartbeat 1 + api 0.5 (one symbol) + inference 2
	if math.Abs(status.GMAC-996.5) > 1e-9 {
		t.Fatalf("expected GMAC 996.5, got %.4f", status.GMAC)
	}
	if status.Heartbeats != 1 || status.TradesExecuted != 0 {
		t.Fatalf("unexpected counters: %+v", status)
	}
	if backend.fetches != 1 {
		t.Fatalf("expected one market fetch, got %d", backend.fetches)
	}
}

func TestCriticalModeSkipsAnalysis(t *testing.T) {
	params := testParams()
	params.InitialGMAC = 101 // one heartbeat lands exactly on the critical boundary
	backend := &fakeBackend{balances: map[string]float64{"USDT": 1000}}
	a := New(zerolog.Nop(), params, fixedStrategy{out: buySignal(1.0)}, backend, risk.Limits{})

	if !a.Heartbeat(context.Background()) {
		t.Fatalf("critical agent is still alive")
	}
	status := a.Status()
	if status.Mode != ModeCritical {
		t.Fatalf("expected CRITICAL, got %s", status.Mode)
	}
	if status.GMAC != 100 {
		t.Fatalf("only the heartbeat cost should be paid, got %.4f", status.GMAC)
	}
	if backend.fetches != 0 || len(backend.orders) != 0 {
		t.Fatalf("critical mode must skip fetch and trading")
	}
}

func TestDeathIsAbsorbing(t *testing.T) {
	params := testParams()
	params.InitialGMAC = 0.5
	backend := &fakeBackend{balances: map[string]float64{"USDT": 1000}}
	a := New(zerolog.Nop(), params, fixedStrategy{out: buySignal(1.0)}, backend, risk.Limits{})

	if a.Heartbeat(context.Background()) {
		t.Fatalf("expected death on first heartbeat")
	}
	status := a.Status()
	if status.Alive || status.Mode != ModeDead {
		t.Fatalf("expected dead agent, got %+v", status)
	}
	if status.Heartbeats != 1 {
		t.Fatalf("expected a single counted heartbeat, got %d", status.Heartbeats)
	}

	for i := 0; i < 3; i++ {
		if a.Heartbeat(context.Background()) {
			t.Fatalf("dead heartbeat must fail")
		}
	}
	after := a.Status()
	if after.Heartbeats != status.Heartbeats || after.GMAC != status.GMAC {
		t.Fatalf("dead heartbeats mutated state: %+v vs %+v", status, after)
	}
	if backend.fetches != 0 {
		t.Fatalf("dead agent must not fetch market data")
	}
}

func TestConfidenceGateRejectsWeakSignal(t *testing.T) {
	backend := &fakeBackend{balances: map[string]float64{"USDT": 1000}}
	a := New(zerolog.Nop(), testParams(), fixedStrategy{out: buySignal(0.5)}, backend, risk.Limits{})

	if !a.Heartbeat(context.Background()) {
		t.Fatalf("expected live heartbeat")
	}
	if len(backend.orders) != 0 {
		t.Fatalf("signal below threshold must not trade")
	}
	// no trade cost beyond heartbeat/api/inference
	if got := a.Status().GMAC; math.Abs(got-996.5) > 1e-9 {
		t.Fatalf("unexpected GMAC after rejection: %.4f", got)
	}
}

func TestTradeExecutesAtLoweredThreshold(t *testing.T) {
	params := testParams()
	params.ConfidenceNormal = 0.5
	backend := &fakeBackend{balances: map[string]float64{"USDT": 1000}}
	a := New(zerolog.Nop(), params, fixedStrategy{out: buySignal(0.5)}, backend, risk.Limits{})

	if !a.Heartbeat(context.Background()) {
		t.Fatalf("expected live heartbeat")
	}
	if len(backend.orders) != 1 {
		t.Fatalf("expected one order, got %d", len(backend.orders))
	}
	order := backend.orders[0]
	if order.Side != execution.Buy || order.Type != execution.Market {
		t.Fatalf("unexpected order: %+v", order)
	}
	// qty = quote balance * fraction / price = 1000 * 0.10 / 2000
	if math.Abs(order.Qty-0.05) > 1e-9 {
		t.Fatalf("expected qty 0.05, got %.6f", order.Qty)
	}

	status := a.Status()
	if status.TradesExecuted != 1 || status.DailyTrades != 1 {
		t.Fatalf("trade counters not updated: %+v", status)
	}
	if status.Goodwill != 10 {
		t.Fatalf("expected goodwill 10, got %d", status.Goodwill)
	}
	if len(status.Positions) != 1 || status.Positions[0].EntryPrice != 2000 {
		t.Fatalf("position log not updated: %+v", status.Positions)
	}
	// trade cost paid on top of the analysis costs
	if math.Abs(status.GMAC-991.5) > 1e-9 {
		t.Fatalf("expected GMAC 991.5, got %.4f", status.GMAC)
	}
}

func TestSurvivalModeRaisesThresholdAndShrinksSize(t *testing.T) {
	params := testParams()
	params.InitialGMAC = 300.5 // first heartbeat crosses into SURVIVAL
	backend := &fakeBackend{balances: map[string]float64{"USDT": 1000}}
	a := New(zerolog.Nop(), params, fixedStrategy{out: buySignal(0.80)}, backend, risk.Limits{})

	if !a.Heartbeat(context.Background()) {
		t.Fatalf("expected live heartbeat")
	}
	if a.Status().Mode != ModeSurvival {
		t.Fatalf("expected SURVIVAL, got %s", a.Status().Mode)
	}
	if len(backend.orders) != 0 {
		t.Fatalf("0.80 confidence must fail the 0.85 survival bar")
	}

	// strong enough signal trades at the survival fraction
	a.strat = fixedStrategy{out: buySignal(0.90)}
	if !a.Heartbeat(context.Background()) {
		t.Fatalf("expected live heartbeat")
	}
	if len(backend.orders) != 1 {
		t.Fatalf("expected one order, got %d", len(backend.orders))
	}
	if qty := backend.orders[0].Qty; math.Abs(qty-1000*0.05/2000) > 1e-9 {
		t.Fatalf("expected survival-sized qty 0.025, got %.6f", qty)
	}
}

func TestFailedOrderLeavesCountersUnchanged(t *testing.T) {
	params := testParams()
	params.ConfidenceNormal = 0.5
	backend := &fakeBackend{balances: map[string]float64{"USDT": 1000}, failOrder: true}
	a := New(zerolog.Nop(), params, fixedStrategy{out: buySignal(0.9)}, backend, risk.Limits{})

	if !a.Heartbeat(context.Background()) {
		t.Fatalf("expected live heartbeat")
	}
	status := a.Status()
	if status.TradesExecuted != 0 || status.Goodwill != 0 || len(status.Positions) != 0 {
		t.Fatalf("failed order must not update trade state: %+v", status)
	}
	// the trade-attempt cost is still paid
	if math.Abs(status.GMAC-991.5) > 1e-9 {
		t.Fatalf("expected GMAC 991.5, got %.4f", status.GMAC)
	}
}

func TestNotionalCapBlocksTrade(t *testing.T) {
	params := testParams()
	params.ConfidenceNormal = 0.5
	backend := &fakeBackend{balances: map[string]float64{"USDT": 1000}}
	a := New(zerolog.Nop(), params, fixedStrategy{out: buySignal(0.9)}, backend, risk.Limits{MaxNotionalPerTrade: 50})

	if !a.Heartbeat(context.Background()) {
		t.Fatalf("expected live heartbeat")
	}
	// qty 0.05 * price 2000 = notional 100 > cap 50
	if len(backend.orders) != 0 {
		t.Fatalf("expected notional cap to block the order")
	}
}

func TestFetchFailureTreatedAsNoData(t *testing.T) {
	backend := &fakeBackend{fetchErr: context.DeadlineExceeded, balances: map[string]float64{"USDT": 1000}}
	strat := fixedStrategy{out: sig.HoldSignal("No data")}
	a := New(zerolog.Nop(), testParams(), strat, backend, risk.Limits{})

	if !a.Heartbeat(context.Background()) {
		t.Fatalf("fetch failure must not kill the agent")
	}
	if len(backend.orders) != 0 {
		t.Fatalf("no orders expected on a failed fetch")
	}
}

func TestParamsFromConfigProfiles(t *testing.T) {
	conservative := ParamsFromConfig(config.Agent{Profile: "conservative"}, []string{"ETH_USDT"})
	if conservative.ConfidenceNormal != 0.70 || conservative.ConfidenceSurvival != 0.85 {
		t.Fatalf("unexpected conservative thresholds: %+v", conservative)
	}
	if conservative.PositionFractionNormal != 0.10 || conservative.PositionFractionSurvival != 0.05 {
		t.Fatalf("unexpected conservative fractions: %+v", conservative)
	}

	aggressive := ParamsFromConfig(config.Agent{Profile: "aggressive"}, nil)
	if aggressive.ConfidenceNormal != 0.50 || aggressive.ConfidenceSurvival != 0.65 {
		t.Fatalf("unexpected aggressive thresholds: %+v", aggressive)
	}
	if aggressive.PositionFractionNormal != 0.20 || aggressive.PositionFractionSurvival != 0.10 {
		t.Fatalf("unexpected aggressive fractions: %+v", aggressive)
	}

	explicit := ParamsFromConfig(config.Agent{Profile: "aggressive", ConfidenceNormal: 0.9}, nil)
	if explicit.ConfidenceNormal != 0.9 {
		t.Fatalf("explicit value must win over profile default")
	}
}
