package backtest

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/riskrank/riskrank/internal/score"
)

// Writer persists run artifacts under outputDir/<run-id>/.
type Writer struct {
	dir string
}

// NewWriter creates the artifact directory for one run.
func NewWriter(outputDir, runID string) (*Writer, error) {
	dir := filepath.Join(outputDir, runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	return &Writer{dir: dir}, nil
}

// Dir returns the artifact directory.
func (w *Writer) Dir() string { return w.dir }

// WriteAll emits every artifact for the run.
func (w *Writer) WriteAll(results *Results) error {
	if err := w.writeJSONL(results); err != nil {
		return err
	}
	if err := w.writeCSV(results); err != nil {
		return err
	}
	if err := w.writeSummary(results); err != nil {
		return err
	}
	return w.writeReport(results)
}

// writeJSONL writes one window per line, with the full results object
// as the final line.
func (w *Writer) writeJSONL(results *Results) error {
	f, err := os.Create(filepath.Join(w.dir, "results.jsonl"))
	if err != nil {
		return fmt.Errorf("create results file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, window := range results.Windows {
		if err := enc.Encode(window); err != nil {
			return fmt.Errorf("encode window: %w", err)
		}
	}
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	return nil
}

// writeCSV flattens every snapshot into one row for spreadsheet work.
func (w *Writer) writeCSV(results *Results) error {
	f, err := os.Create(filepath.Join(w.dir, "snapshots.csv"))
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"as_of", "code", "composite", "tier", "forward_return", "error"}); err != nil {
		return err
	}
	for _, window := range results.Windows {
		for _, snap := range window.Snapshots {
			fwd := ""
			if snap.ForwardReturn != nil {
				fwd = strconv.FormatFloat(*snap.ForwardReturn, 'f', 6, 64)
			}
			row := []string{
				snap.AsOf.Format("2006-01-02"),
				snap.Code,
				strconv.FormatFloat(snap.Composite, 'f', 2, 64),
				string(snap.Tier),
				fwd,
				snap.Err,
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func (w *Writer) writeSummary(results *Results) error {
	f, err := os.Create(filepath.Join(w.dir, "summary.json"))
	if err != nil {
		return fmt.Errorf("create summary file: %w", err)
	}
	defer f.Close()

	summary := map[string]any{
		"run_id":            results.RunID,
		"period":            fmt.Sprintf("%s to %s", results.Config.Start.Format("2006-01-02"), results.Config.End.Format("2006-01-02")),
		"rebalance_days":    results.Config.RebalanceDays,
		"processed_windows": results.ProcessedWindows,
		"skipped_windows":   results.SkippedWindows,
		"scored_snapshots":  results.Metrics.ScoredSnapshots,
		"error_count":       results.Metrics.ErrorCount,
	}
	if results.Metrics.OverallForwardReturn != nil {
		summary["overall_forward_return"] = *results.Metrics.OverallForwardReturn
	}
	if results.Metrics.RankCorrelation != nil {
		summary["rank_correlation"] = *results.Metrics.RankCorrelation
	}
	if results.Metrics.SeparationRate != nil {
		summary["separation_rate"] = *results.Metrics.SeparationRate
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}

// writeReport renders the human-readable digest.
func (w *Writer) writeReport(results *Results) error {
	var b strings.Builder

	b.WriteString("# Backtest Report\n\n")
	b.WriteString(fmt.Sprintf("**Run**: %s\n", results.RunID))
	b.WriteString(fmt.Sprintf("**Generated**: %s\n", results.FinishedAt.Format("2006-01-02 15:04:05 MST")))
	b.WriteString(fmt.Sprintf("**Period**: %s to %s, rebalanced every %d days\n\n",
		results.Config.Start.Format("2006-01-02"), results.Config.End.Format("2006-01-02"),
		results.Config.RebalanceDays))

	b.WriteString("## Coverage\n\n")
	b.WriteString(fmt.Sprintf("- **Windows**: %d processed, %d skipped of %d\n",
		results.ProcessedWindows, results.SkippedWindows, results.TotalWindows))
	b.WriteString(fmt.Sprintf("- **Snapshots**: %d scored, %d failed\n\n",
		results.Metrics.ScoredSnapshots, results.Metrics.FailedSnapshots))

	b.WriteString("## Predictive Quality\n\n")
	if results.Metrics.OverallForwardReturn != nil {
		b.WriteString(fmt.Sprintf("- **Overall forward return**: %.2f%% per window\n", *results.Metrics.OverallForwardReturn*100))
	}
	if results.Metrics.RankCorrelation != nil {
		b.WriteString(fmt.Sprintf("- **Rank correlation** (score vs forward return): %.3f\n", *results.Metrics.RankCorrelation))
	} else {
		b.WriteString("- **Rank correlation**: insufficient data\n")
	}
	if results.Metrics.SeparationRate != nil {
		b.WriteString(fmt.Sprintf("- **Tier separation rate**: %.1f%% of windows\n", *results.Metrics.SeparationRate*100))
	}
	b.WriteString("\n")

	b.WriteString("## Outcomes by Tier\n\n")
	if len(results.Metrics.TierStats) > 0 {
		b.WriteString("| Tier | Count | Avg Score | Avg Fwd Return | Win Rate |\n")
		b.WriteString("|------|------:|----------:|---------------:|---------:|\n")
		for _, tier := range []score.Tier{score.TierLow, score.TierMedium, score.TierHigh, score.TierCritical} {
			stat, ok := results.Metrics.TierStats[tier]
			if !ok {
				continue
			}
			b.WriteString(fmt.Sprintf("| %s | %d | %.1f | %.2f%% | %.1f%% |\n",
				stat.Tier, stat.Count, stat.AvgComposite,
				stat.AvgForwardReturn*100, stat.WinRate*100))
		}
		b.WriteString("\n")
	} else {
		b.WriteString("No scored snapshots.\n\n")
	}

	if results.Metrics.ErrorCount > 0 {
		b.WriteString("## Errors\n\n")
		b.WriteString(fmt.Sprintf("%d snapshots failed. Samples:\n\n", results.Metrics.ErrorCount))
		for i, e := range results.Metrics.Errors {
			b.WriteString(fmt.Sprintf("%d. %s\n", i+1, e))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Artifacts\n\n")
	for _, name := range []string{"results.jsonl", "snapshots.csv", "summary.json", "report.md"} {
		b.WriteString(fmt.Sprintf("- `%s`\n", filepath.Join(w.dir, name)))
	}

	return os.WriteFile(filepath.Join(w.dir, "report.md"), []byte(b.String()), 0o644)
}
