// Binary live runs the agent loop against the live execution path. Order
// submission is not implemented; every order is refused and counted, which
// makes this a dry-run harness for real market data feeds.
package main

import (
	"context"
	"os"
	ossignal "os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"vitalbot/internal/agent"
	"vitalbot/internal/config"
	"vitalbot/internal/execution"
	"vitalbot/internal/market"
	"vitalbot/internal/metrics"
	"vitalbot/internal/risk"
	"vitalbot/internal/strategy"
	"vitalbot/internal/util"
)

const defaultConfigPath = "internal/config/config.yaml"

func main() {
	_ = godotenv.Load()

	configPath := os.Getenv("VITALBOT_CONFIG")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	log := util.NewLogger(os.Getenv("LOG_LEVEL"))

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	_ = metrics.Serve(cfg.App.MetricsAddr)

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	source, err := market.New(log, cfg.Market)
	if err != nil {
		log.Fatal().Err(err).Msg("market source")
	}
	if streamer, ok := source.(market.Streamer); ok {
		go func() {
			if err := streamer.Run(ctx); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("market stream stopped")
				cancel()
			}
		}()
	}

	log.Warn().Msg("live execution is a dry run: all orders will be refused")
	backend := execution.NewLiveBackend(source, execution.NewLiveExecutor(log))

	params := agent.ParamsFromConfig(cfg.Agent, cfg.Market.Symbols)
	strat := strategy.Build(cfg.Strategy.Mode, cfg.Strategy.Params)
	limits := risk.Limits{MaxNotionalPerTrade: cfg.Risk.MaxNotionalPerTrade}

	a := agent.New(log, params, strat, backend, limits)
	a.Run(ctx)

	status := a.Status()
	log.Info().
		Float64("gmac", status.GMAC).
		Int("heartbeats", status.Heartbeats).
		Bool("alive", status.Alive).
		Msg("final status")
}
