// Package config carries the runtime configuration (YAML-loaded with
// defaults) and the static domain tables: industry classification,
// turnover benchmarks, valuation weights, and cache lifetimes.
package config

import (
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/riskrank/riskrank/internal/market"
)

// Config is the runtime configuration for one process.
type Config struct {
	CacheDir    string `yaml:"cache_dir"`
	OutputDir   string `yaml:"output_dir"`
	MonitorAddr string `yaml:"monitor_addr"`

	// ReportingPeriod pins all fundamentals reads to one fiscal quarter.
	ReportingPeriod market.ReportingPeriod `yaml:"reporting_period"`

	// PeerFetchLimit bounds concurrent peer-data fetches. 1 keeps the
	// pipeline sequential.
	PeerFetchLimit int `yaml:"peer_fetch_limit"`

	// PeerSampleMax caps the valuation peer sample.
	PeerSampleMax int `yaml:"peer_sample_max"`

	// ProviderInterval is the minimum spacing between upstream calls.
	ProviderInterval time.Duration `yaml:"provider_interval"`

	Retry    RetryConfig    `yaml:"retry"`
	Weights  Weights        `yaml:"weights"`
	Backtest BacktestConfig `yaml:"backtest"`
}

// RetryConfig controls the resilient fetch wrapper.
type RetryConfig struct {
	MaxRetries int           `yaml:"max_retries"`
	BaseDelay  time.Duration `yaml:"base_delay"`
	Exponent   float64       `yaml:"exponent"`
}

// Weights are the composite sub-score weights. They must sum to 1.
type Weights struct {
	FinancialHealth     float64 `yaml:"financial_health"`
	Volatility          float64 `yaml:"volatility"`
	Valuation           float64 `yaml:"valuation"`
	HistoricalValuation float64 `yaml:"historical_valuation"`
	Trend               float64 `yaml:"trend"`
	Turnover            float64 `yaml:"turnover"`
	Momentum            float64 `yaml:"momentum"`
}

// Sum adds up all sub-score weights.
func (w Weights) Sum() float64 {
	return w.FinancialHealth + w.Volatility + w.Valuation +
		w.HistoricalValuation + w.Trend + w.Turnover + w.Momentum
}

// Validate rejects weight sets that do not sum to 1 within 1e-9.
func (w Weights) Validate() error {
	if math.Abs(w.Sum()-1.0) > 1e-9 {
		return fmt.Errorf("composite weights sum to %.12f, want 1", w.Sum())
	}
	return nil
}

// BacktestConfig controls the backtest driver.
type BacktestConfig struct {
	RebalanceDays  int `yaml:"rebalance_days"`
	MinHistoryDays int `yaml:"min_history_days"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		CacheDir:         "./cache",
		OutputDir:        "./out",
		MonitorAddr:      ":8090",
		ReportingPeriod:  market.ReportingPeriod{Year: 2025, Quarter: 3},
		PeerFetchLimit:   1,
		PeerSampleMax:    50,
		ProviderInterval: 500 * time.Millisecond,
		Retry: RetryConfig{
			MaxRetries: 3,
			BaseDelay:  time.Second,
			Exponent:   2.0,
		},
		Weights: Weights{
			FinancialHealth:     0.25,
			Volatility:          0.16,
			Valuation:           0.18,
			HistoricalValuation: 0.12,
			Trend:               0.10,
			Turnover:            0.12,
			Momentum:            0.07,
		},
		Backtest: BacktestConfig{
			RebalanceDays:  30,
			MinHistoryDays: 30,
		},
	}
}

// Load reads a YAML config file over the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, cfg.Weights.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Weights.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
