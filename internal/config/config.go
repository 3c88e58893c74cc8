// Package config exposes strongly typed application configuration structs loaded from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// App captures process-wide runtime settings such as name, environment, metrics, and logging levels.
type App struct {
	Name        string `yaml:"name"`
	Env         string `yaml:"env"`
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
}

// Agent encodes the resource budget and decision knobs of the trading agent.
// Zero-valued confidence/sizing fields are filled in from the named profile
// at construction time.
type Agent struct {
	Name                     string  `yaml:"name"`
	Profile                  string  `yaml:"profile"` // conservative|aggressive
	InitialGMAC              float64 `yaml:"initial_gmac"`
	HeartbeatCost            float64 `yaml:"heartbeat_cost"`
	APICallCost              float64 `yaml:"api_call_cost"` // charged per symbol per fetch
	InferenceCost            float64 `yaml:"inference_cost"`
	TradeCost                float64 `yaml:"trade_cost"`
	DeathThreshold           float64 `yaml:"death_threshold"`
	CriticalThreshold        float64 `yaml:"critical_threshold"`
	SurvivalThreshold        float64 `yaml:"survival_threshold"`
	ConfidenceNormal         float64 `yaml:"confidence_normal"`
	ConfidenceSurvival       float64 `yaml:"confidence_survival"`
	PositionFractionNormal   float64 `yaml:"position_fraction_normal"`
	PositionFractionSurvival float64 `yaml:"position_fraction_survival"`
	GoodwillIncrement        int     `yaml:"goodwill_increment"`
	TradeRewardGMAC          float64 `yaml:"trade_reward_gmac"`
	CycleIntervalMs          int     `yaml:"cycle_interval_ms"`
}

// StrategyParams groups tunable knobs for a strategy implementation.
type StrategyParams struct {
	RSIPeriod      int     `yaml:"rsi_period"`
	RSIOversold    float64 `yaml:"rsi_oversold"`
	RSIOverbought  float64 `yaml:"rsi_overbought"`
	MAFast         int     `yaml:"ma_fast"`
	MASlow         int     `yaml:"ma_slow"`
	MomentumPeriod int     `yaml:"momentum_period"`
}

// Strategy specifies which strategy is active along with the parameter bundle.
type Strategy struct {
	Mode   string         `yaml:"mode"`
	Params StrategyParams `yaml:"params"`
}

// Synthetic configures the deterministic offline market source.
type Synthetic struct {
	Seed       int64              `yaml:"seed"`
	BasePrices map[string]float64 `yaml:"base_prices"`
	DriftBps   float64            `yaml:"drift_bps"` // per-candle drift applied on top of the walk
}

// Market describes the market data provider and its connectivity parameters.
type Market struct {
	Provider           string    `yaml:"provider"` // synthetic|cryptocom|binance
	Symbols            []string  `yaml:"symbols"`  // BASE_QUOTE convention, e.g. ETH_USDT
	BaseURL            string    `yaml:"base_url"`
	Timeframe          string    `yaml:"timeframe"`
	CandleCount        int       `yaml:"candle_count"`
	CandleIntervalSecs int       `yaml:"candle_interval_secs"`
	Synthetic          Synthetic `yaml:"synthetic"`
}

// Risk encodes guard-rails for how much size the agent may take on per trade.
type Risk struct {
	MaxNotionalPerTrade float64 `yaml:"max_notional_per_trade"`
}

// Paper captures paper-trading settings: the seeded ledger and fill recording.
type Paper struct {
	Enabled          bool               `yaml:"enabled"`
	StartingBalances map[string]float64 `yaml:"starting_balances"`
	FillsPath        string             `yaml:"fills_path"`
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App      App      `yaml:"app"`
	Agent    Agent    `yaml:"agent"`
	Strategy Strategy `yaml:"strategy"`
	Market   Market   `yaml:"market"`
	Risk     Risk     `yaml:"risk"`
	Paper    Paper    `yaml:"paper"`
}

// Load reads a YAML file from disk and hydrates a Config struct.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Save persists a Config struct to disk as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate enforces cross-field invariants that would otherwise surface as
// silent misbehavior deep inside the agent loop.
func (c *Config) Validate() error {
	a := c.Agent
	if !(a.DeathThreshold < a.CriticalThreshold && a.CriticalThreshold < a.SurvivalThreshold) {
		return fmt.Errorf("agent thresholds must satisfy death < critical < survival (got %.2f, %.2f, %.2f)",
			a.DeathThreshold, a.CriticalThreshold, a.SurvivalThreshold)
	}
	if a.InitialGMAC <= a.DeathThreshold {
		return fmt.Errorf("initial_gmac %.2f must exceed death_threshold %.2f", a.InitialGMAC, a.DeathThreshold)
	}
	p := c.Strategy.Params
	if p.MAFast != 0 && p.MASlow != 0 && p.MAFast >= p.MASlow {
		return fmt.Errorf("ma_fast %d must be shorter than ma_slow %d", p.MAFast, p.MASlow)
	}
	return nil
}
