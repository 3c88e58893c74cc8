package config

import (
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	path := filepath.Join("testdata", "config.yaml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.App.Name != "vitalbot-test" {
		t.Fatalf("unexpected App.Name: %s", cfg.App.Name)
	}
	if cfg.Agent.InitialGMAC != 1000 {
		t.Fatalf("unexpected initial GMAC: %.2f", cfg.Agent.InitialGMAC)
	}
	if cfg.Agent.SurvivalThreshold != 300 || cfg.Agent.CriticalThreshold != 100 || cfg.Agent.DeathThreshold != 0 {
		t.Fatalf("unexpected thresholds: %+v", cfg.Agent)
	}
	if cfg.Agent.ConfidenceNormal != 0.70 || cfg.Agent.ConfidenceSurvival != 0.85 {
		t.Fatalf("unexpected confidence thresholds: %+v", cfg.Agent)
	}
	if cfg.Agent.PositionFractionSurvival != 0.05 {
		t.Fatalf("unexpected survival fraction: %.2f", cfg.Agent.PositionFractionSurvival)
	}
	if cfg.Strategy.Mode != "momentum" {
		t.Fatalf("unexpected strategy mode: %s", cfg.Strategy.Mode)
	}
	if cfg.Strategy.Params.RSIPeriod != 14 || cfg.Strategy.Params.MASlow != 30 {
		t.Fatalf("unexpected strategy params: %+v", cfg.Strategy.Params)
	}
	if len(cfg.Market.Symbols) != 2 || cfg.Market.Symbols[0] != "ETH_USDT" {
		t.Fatalf("unexpected symbols: %+v", cfg.Market.Symbols)
	}
	if cfg.Market.Synthetic.BasePrices["ETH_USDT"] != 2000 {
		t.Fatalf("unexpected synthetic base price: %+v", cfg.Market.Synthetic.BasePrices)
	}
	if cfg.Risk.MaxNotionalPerTrade != 500 {
		t.Fatalf("unexpected max notional: %.2f", cfg.Risk.MaxNotionalPerTrade)
	}
	if !cfg.Paper.Enabled || cfg.Paper.StartingBalances["USDT"] != 1000 {
		t.Fatalf("unexpected paper settings: %+v", cfg.Paper)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestValidateThresholdOrdering(t *testing.T) {
	cfg := &Config{}
	cfg.Agent = Agent{InitialGMAC: 1000, DeathThreshold: 100, CriticalThreshold: 50, SurvivalThreshold: 300}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected ordering error for death >= critical")
	}

	cfg.Agent = Agent{InitialGMAC: 1000, DeathThreshold: 0, CriticalThreshold: 100, SurvivalThreshold: 100}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected ordering error for critical >= survival")
	}

	cfg.Agent = Agent{InitialGMAC: 1000, DeathThreshold: 0, CriticalThreshold: 100, SurvivalThreshold: 300}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateMAWindows(t *testing.T) {
	cfg := &Config{}
	cfg.Agent = Agent{InitialGMAC: 1000, DeathThreshold: 0, CriticalThreshold: 100, SurvivalThreshold: 300}
	cfg.Strategy.Params = StrategyParams{MAFast: 30, MASlow: 10}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for fast >= slow MA window")
	}
}
