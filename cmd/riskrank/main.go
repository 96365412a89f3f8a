package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/riskrank/riskrank/internal/cache"
	"github.com/riskrank/riskrank/internal/config"
	applog "github.com/riskrank/riskrank/internal/log"
	"github.com/riskrank/riskrank/internal/providers"
	"github.com/riskrank/riskrank/internal/score"
)

const (
	appName = "riskrank"
	version = "v1.2.0"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339

	var (
		configPath string
		logLevel   string
	)

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Composite risk scoring for A-share equities",
		Version: version,
		Long: `riskrank scores listed companies on a 0-100 composite built from
financial health, relative and historical valuation, volatility,
trend, turnover, and momentum, then maps the result to a risk tier.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			applog.Setup(logLevel)
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (trace|debug|info|warn|error)")

	rootCmd.AddCommand(
		newAnalyzeCmd(&configPath),
		newBacktestCmd(&configPath),
		newCacheCmd(&configPath),
		newMonitorCmd(&configPath),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildStack wires config, cache, providers, and the analyzer.
func buildStack(configPath string) (config.Config, *providers.Client, *score.Analyzer, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, nil, nil, fmt.Errorf("load config: %w", err)
	}
	store, err := cache.NewStore(cfg.CacheDir)
	if err != nil {
		return config.Config{}, nil, nil, fmt.Errorf("open cache: %w", err)
	}
	client := providers.NewClient(cfg, store)
	analyzer := score.NewAnalyzer(cfg, client.Bundle())
	return cfg, client, analyzer, nil
}
