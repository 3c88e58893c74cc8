package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"vitalbot/internal/config"
)

const defaultConfigPath = "internal/config/config.yaml"

func main() {
	reader := bufio.NewReader(os.Stdin)

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	for {
		fmt.Println("\n=== VitalBot Control ===")
		fmt.Println("1) Show configuration summary")
		fmt.Println("2) Edit GMAC budget and survival thresholds")
		fmt.Println("3) Edit trading knobs (confidence, sizing, risk)")
		fmt.Println("4) Save config")
		fmt.Println("5) Launch agent")
		fmt.Println("6) Reload config from disk")
		fmt.Println("0) Exit")
		fmt.Print("Select option: ")

		input, _ := reader.ReadString('\n')
		choice := strings.TrimSpace(input)

		switch choice {
		case "1":
			printSummary(cfg)
		case "2":
			editBudget(reader, cfg)
		case "3":
			editTrading(reader, cfg)
		case "4":
			if err := saveConfig(cfg); err != nil {
				fmt.Fprintf(os.Stderr, "save failed: %v\n", err)
			} else {
				fmt.Println("config saved")
			}
		case "5":
			launchAgent(reader)
		case "6":
			reloaded, err := loadConfig()
			if err != nil {
				fmt.Fprintf(os.Stderr, "reload failed: %v\n", err)
			} else {
				cfg = reloaded
				fmt.Println("config reloaded")
			}
		case "0":
			return
		default:
			fmt.Println("unknown option")
		}
	}
}

func printSummary(cfg *config.Config) {
	fmt.Println("\n--- Configuration Summary ---")
	fmt.Printf("Agent: %s (profile %s)\n", cfg.Agent.Name, cfg.Agent.Profile)
	fmt.Printf("Initial GMAC: %.2f\n", cfg.Agent.InitialGMAC)
	fmt.Printf("Thresholds: death %.2f | critical %.2f | survival %.2f\n",
		cfg.Agent.DeathThreshold, cfg.Agent.CriticalThreshold, cfg.Agent.SurvivalThreshold)
	fmt.Printf("Costs: heartbeat %.2f | api %.2f | inference %.2f | trade %.2f\n",
		cfg.Agent.HeartbeatCost, cfg.Agent.APICallCost, cfg.Agent.InferenceCost, cfg.Agent.TradeCost)
	fmt.Printf("Confidence: normal %.2f | survival %.2f\n", cfg.Agent.ConfidenceNormal, cfg.Agent.ConfidenceSurvival)
	fmt.Printf("Position fraction: normal %.2f | survival %.2f\n",
		cfg.Agent.PositionFractionNormal, cfg.Agent.PositionFractionSurvival)
	fmt.Printf("Per-trade notional cap: $%.2f\n", cfg.Risk.MaxNotionalPerTrade)
	fmt.Println("Symbols:", strings.Join(cfg.Market.Symbols, ", "))
	fmt.Printf("Provider: %s | paper trading: %v\n", cfg.Market.Provider, cfg.Paper.Enabled)
}

func editBudget(reader *bufio.Reader, cfg *config.Config) {
	fmt.Println("\n--- Edit GMAC Budget ---")
	cfg.Agent.InitialGMAC = promptFloat(reader, "Initial GMAC", cfg.Agent.InitialGMAC)
	cfg.Agent.DeathThreshold = promptFloat(reader, "Death threshold", cfg.Agent.DeathThreshold)
	cfg.Agent.CriticalThreshold = promptFloat(reader, "Critical threshold", cfg.Agent.CriticalThreshold)
	cfg.Agent.SurvivalThreshold = promptFloat(reader, "Survival threshold", cfg.Agent.SurvivalThreshold)
	cfg.Agent.HeartbeatCost = promptFloat(reader, "Heartbeat cost", cfg.Agent.HeartbeatCost)
	cfg.Agent.TradeCost = promptFloat(reader, "Trade cost", cfg.Agent.TradeCost)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
}

func editTrading(reader *bufio.Reader, cfg *config.Config) {
	fmt.Println("\n--- Edit Trading Knobs ---")
	cfg.Agent.ConfidenceNormal = promptFloat(reader, "Confidence threshold (normal)", cfg.Agent.ConfidenceNormal)
	cfg.Agent.ConfidenceSurvival = promptFloat(reader, "Confidence threshold (survival)", cfg.Agent.ConfidenceSurvival)
	cfg.Agent.PositionFractionNormal = promptFloat(reader, "Position fraction (normal)", cfg.Agent.PositionFractionNormal)
	cfg.Agent.PositionFractionSurvival = promptFloat(reader, "Position fraction (survival)", cfg.Agent.PositionFractionSurvival)
	cfg.Risk.MaxNotionalPerTrade = promptFloat(reader, "Max notional per trade (USD)", cfg.Risk.MaxNotionalPerTrade)
}

func launchAgent(reader *bufio.Reader) {
	fmt.Println("Launching agent (Ctrl+C to stop)...")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := exec.CommandContext(ctx, "go", "run", "./cmd/agent")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	if err := cmd.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start agent: %v\n", err)
		return
	}

	go func() {
		_ = cmd.Wait()
		cancel()
	}()

	fmt.Print("\nPress ENTER to stop the agent and return to menu...")
	_, _ = reader.ReadString('\n')
	cancel()
	time.Sleep(500 * time.Millisecond)
}

func promptFloat(reader *bufio.Reader, label string, current float64) float64 {
	fmt.Printf("%s [%.2f]: ", label, current)
	line, _ := reader.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return current
	}
	val, err := strconv.ParseFloat(line, 64)
	if err != nil {
		fmt.Printf("invalid number, keeping %.2f\n", current)
		return current
	}
	return val
}

func loadConfig() (*config.Config, error) {
	return config.Load(locateConfig())
}

func saveConfig(cfg *config.Config) error {
	return config.Save(locateConfig(), cfg)
}

func locateConfig() string {
	if filepath.IsAbs(defaultConfigPath) {
		return defaultConfigPath
	}
	return filepath.Clean(defaultConfigPath)
}
