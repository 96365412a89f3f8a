package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/riskrank/riskrank/internal/score"
)

func newAnalyzeCmd(configPath *string) *cobra.Command {
	var (
		asOfStr    string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <code> [code...]",
		Short: "Score one or more instruments",
		Long: `Runs the full composite analysis for each instrument code and prints
the report. Codes accept bare six-digit form or exchange-prefixed
(sh.600000, 600000.SZ).`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, analyzer, err := buildStack(*configPath)
			if err != nil {
				return err
			}

			asOf := time.Now()
			if asOfStr != "" {
				asOf, err = time.Parse("2006-01-02", asOfStr)
				if err != nil {
					return fmt.Errorf("parse --as-of: %w", err)
				}
			}

			for _, code := range args {
				report, err := analyzer.AnalyzeAsOf(cmd.Context(), code, asOf)
				if err != nil {
					return fmt.Errorf("analyze %s: %w", code, err)
				}
				if jsonOutput {
					enc := json.NewEncoder(os.Stdout)
					enc.SetIndent("", "  ")
					if err := enc.Encode(report); err != nil {
						return err
					}
					continue
				}
				printReport(report)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&asOfStr, "as-of", "", "Score with price data capped at this date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the full report as JSON")
	return cmd
}

func printReport(r *score.Report) {
	fmt.Printf("%s %s [%s]\n", r.Code, r.Name, r.Industry)
	fmt.Printf("  综合评分 %.2f  等级 %s\n", r.Composite, r.Tier)

	rows := []struct {
		label string
		sub   score.SubScore
	}{
		{"财务健康", r.FinancialHealth},
		{"相对估值", r.Valuation},
		{"历史估值", r.HistoricalValuation},
		{"波动率", r.Volatility},
		{"趋势", r.Trend},
		{"换手率", r.Turnover},
		{"动量", r.Momentum},
	}
	for _, row := range rows {
		fmt.Printf("  %-6s %6.1f  %s\n", row.label, row.sub.Score, row.sub.Status)
	}

	if len(r.Warnings) > 0 {
		fmt.Println("  预警:")
		for _, w := range r.Warnings {
			fmt.Printf("    - %s\n", w)
		}
	}
	if r.Summary != nil && len(r.Summary.Hints) > 0 {
		fmt.Println("  提示:")
		for _, h := range r.Summary.Hints {
			fmt.Printf("    - %s\n", h)
		}
	}
}
