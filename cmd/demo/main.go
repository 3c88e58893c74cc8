// Binary demo runs a fixed number of agent cycles against the synthetic
// market source, with no config file or network access required.
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"vitalbot/internal/agent"
	"vitalbot/internal/config"
	"vitalbot/internal/market"
	"vitalbot/internal/paper"
	"vitalbot/internal/risk"
	"vitalbot/internal/strategy"
	"vitalbot/internal/util"
)

func main() {
	cycles := flag.Int("cycles", 5, "number of heartbeat cycles to run")
	delay := flag.Duration("delay", 2*time.Second, "pause between cycles")
	seed := flag.Int64("seed", 42, "synthetic walk seed")
	flag.Parse()

	log := util.NewConsoleLogger("info")

	symbols := []string{"ETH_USDT", "BTC_USDT"}
	source := market.NewSynthetic(config.Synthetic{
		Seed:     *seed,
		DriftBps: 10,
		BasePrices: map[string]float64{
			"ETH_USDT": 2000,
			"BTC_USDT": 40000,
		},
	})
	exchange := paper.NewExchange(map[string]float64{"USDT": 1000, "ETH": 0, "BTC": 0}, source)
	blotter := paper.NewBlotter(*cycles)
	exchange.SetRecorder(blotter)
	backend := paper.NewBackend(source, exchange)

	params := agent.ParamsFromConfig(config.Agent{Name: "Demo-Agent", Profile: "aggressive"}, symbols)
	strat := strategy.Build("momentum", config.StrategyParams{})
	a := agent.New(log, params, strat, backend, risk.Limits{})

	ctx := context.Background()
	for i := 0; i < *cycles; i++ {
		fmt.Printf("\n[Cycle %d/%d]\n", i+1, *cycles)
		if !a.Heartbeat(ctx) {
			fmt.Println("agent stopped")
			break
		}
		if i+1 < *cycles {
			time.Sleep(*delay)
		}
	}

	status := a.Status()
	fmt.Println("\n--- Final Status ---")
	fmt.Printf("Agent:      %s\n", status.Name)
	fmt.Printf("GMAC:       %.2f\n", status.GMAC)
	fmt.Printf("Goodwill:   %d\n", status.Goodwill)
	fmt.Printf("Heartbeats: %d\n", status.Heartbeats)
	fmt.Printf("Trades:     %d\n", status.TradesExecuted)
	fmt.Printf("Balances:   %v\n", exchange.Balances())
	for _, fill := range blotter.Snapshot() {
		fmt.Printf("Fill: %s %s %.6f @ %.2f (%s)\n", fill.Side, fill.Symbol, fill.Qty, fill.Price, fill.OrderID)
	}
}
