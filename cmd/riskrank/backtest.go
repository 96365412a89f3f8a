package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/riskrank/riskrank/internal/backtest"
)

func newBacktestCmd(configPath *string) *cobra.Command {
	var (
		startStr      string
		endStr        string
		rebalanceDays int
	)

	cmd := &cobra.Command{
		Use:   "backtest <code> [code...]",
		Short: "Replay the scorer over a historical window",
		Long: `Scores every instrument at each rebalance date in the window,
attaches forward returns, and writes the run artifacts (JSONL, CSV,
summary, report) under the output directory.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, client, analyzer, err := buildStack(*configPath)
			if err != nil {
				return err
			}

			start, err := time.Parse("2006-01-02", startStr)
			if err != nil {
				return fmt.Errorf("parse --start: %w", err)
			}
			end := time.Now()
			if endStr != "" {
				end, err = time.Parse("2006-01-02", endStr)
				if err != nil {
					return fmt.Errorf("parse --end: %w", err)
				}
			}
			if rebalanceDays <= 0 {
				rebalanceDays = cfg.Backtest.RebalanceDays
			}

			runner := backtest.NewRunner(backtest.Config{
				Codes:         args,
				Start:         start,
				End:           end,
				RebalanceDays: rebalanceDays,
				OutputDir:     cfg.OutputDir,
			}, analyzer, client)

			results, err := runner.Run(cmd.Context())
			if err != nil {
				return err
			}

			writer, err := backtest.NewWriter(cfg.OutputDir, results.RunID)
			if err != nil {
				return err
			}
			if err := writer.WriteAll(results); err != nil {
				return err
			}

			log.Info().Str("dir", writer.Dir()).Msg("artifacts written")
			if results.Metrics.RankCorrelation != nil {
				fmt.Printf("rank correlation: %.3f\n", *results.Metrics.RankCorrelation)
			}
			if results.Metrics.SeparationRate != nil {
				fmt.Printf("tier separation: %.1f%% of windows\n", *results.Metrics.SeparationRate*100)
			}
			fmt.Printf("artifacts: %s\n", writer.Dir())
			return nil
		},
	}

	cmd.Flags().StringVar(&startStr, "start", "", "Window start (YYYY-MM-DD, required)")
	cmd.Flags().StringVar(&endStr, "end", "", "Window end (YYYY-MM-DD, default today)")
	cmd.Flags().IntVar(&rebalanceDays, "rebalance-days", 0, "Days between scoring dates (default from config)")
	_ = cmd.MarkFlagRequired("start")
	return cmd
}
