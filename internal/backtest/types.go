// Package backtest replays the composite scorer over a historical
// window and measures how well the risk tiers separated subsequent
// returns.
package backtest

import (
	"context"
	"time"

	"github.com/riskrank/riskrank/internal/score"
)

// Scorer produces a point-in-time report. *score.Analyzer satisfies it.
type Scorer interface {
	AnalyzeAsOf(ctx context.Context, code string, asOf time.Time) (*score.Report, error)
}

// Config drives one backtest run.
type Config struct {
	Codes []string  `json:"codes"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	// RebalanceDays is the spacing between scoring dates and the
	// forward-return horizon.
	RebalanceDays int    `json:"rebalance_days"`
	OutputDir     string `json:"output_dir"`
}

// Snapshot is one instrument scored at one rebalance date.
type Snapshot struct {
	Code      string     `json:"code"`
	AsOf      time.Time  `json:"as_of"`
	Composite float64    `json:"composite"`
	Tier      score.Tier `json:"tier"`
	// ForwardReturn is the simple return over the following rebalance
	// period, nil when the forward series was unavailable.
	ForwardReturn *float64 `json:"forward_return,omitempty"`
	Err           string   `json:"error,omitempty"`
}

// Window is one rebalance date across all instruments.
type Window struct {
	AsOf        time.Time   `json:"as_of"`
	Snapshots   []*Snapshot `json:"snapshots"`
	ScoredCount int         `json:"scored_count"`
	FailedCount int         `json:"failed_count"`
}

// Results is the complete output of one run.
type Results struct {
	RunID            string    `json:"run_id"`
	Config           Config    `json:"config"`
	StartedAt        time.Time `json:"started_at"`
	FinishedAt       time.Time `json:"finished_at"`
	TotalWindows     int       `json:"total_windows"`
	ProcessedWindows int       `json:"processed_windows"`
	SkippedWindows   int       `json:"skipped_windows"`
	Windows          []*Window `json:"windows"`
	Metrics          *Summary  `json:"metrics"`
}
