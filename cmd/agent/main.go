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
	"vitalbot/internal/paper"
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
	if cfg.App.LogLevel != "" && os.Getenv("LOG_LEVEL") == "" {
		log = util.NewLogger(cfg.App.LogLevel)
	}

	_ = metrics.Serve(cfg.App.MetricsAddr)
	log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")

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

	var backend agent.Backend
	if cfg.Paper.Enabled {
		exchange := paper.NewExchange(cfg.Paper.StartingBalances, source)
		if cfg.Paper.FillsPath != "" {
			recorder, err := paper.NewJSONLRecorder(cfg.Paper.FillsPath)
			if err != nil {
				log.Fatal().Err(err).Msg("open fill recorder")
			}
			defer recorder.Close()
			exchange.SetRecorder(recorder)
		}
		backend = paper.NewBackend(source, exchange)
		log.Info().Interface("balances", cfg.Paper.StartingBalances).Msg("paper exchange seeded")
	} else {
		backend = execution.NewLiveBackend(source, execution.NewLiveExecutor(log))
		log.Warn().Msg("paper trading disabled - orders will be refused")
	}

	params := agent.ParamsFromConfig(cfg.Agent, cfg.Market.Symbols)
	strat := strategy.Build(cfg.Strategy.Mode, cfg.Strategy.Params)
	limits := risk.Limits{MaxNotionalPerTrade: cfg.Risk.MaxNotionalPerTrade}

	a := agent.New(log, params, strat, backend, limits)
	a.Run(ctx)

	status := a.Status()
	log.Info().
		Float64("gmac", status.GMAC).
		Int("goodwill", status.Goodwill).
		Int("heartbeats", status.Heartbeats).
		Int("trades", status.TradesExecuted).
		Bool("alive", status.Alive).
		Msg("final status")
}
