package backtest

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	applog "github.com/riskrank/riskrank/internal/log"
	"github.com/riskrank/riskrank/internal/market"
	"github.com/riskrank/riskrank/internal/providers"
)

// ErrSpanTooShort means the window cannot fit a single rebalance
// period plus its forward horizon.
var ErrSpanTooShort = errors.New("backtest: span shorter than one rebalance period")

// Runner replays the scorer over the configured window.
type Runner struct {
	cfg    Config
	scorer Scorer
	prices providers.MarketData
	clock  func() time.Time
}

// NewRunner wires a runner. The market data source serves the forward
// return series.
func NewRunner(cfg Config, scorer Scorer, prices providers.MarketData) *Runner {
	return &Runner{
		cfg:    cfg,
		scorer: scorer,
		prices: prices,
		clock:  time.Now,
	}
}

// SetClock overrides the wall clock, for tests.
func (r *Runner) SetClock(clock func() time.Time) {
	r.clock = clock
}

// Run scores every instrument at each rebalance date, attaches the
// forward return over the following period, and aggregates the
// predictive-quality metrics.
func (r *Runner) Run(ctx context.Context) (*Results, error) {
	if len(r.cfg.Codes) == 0 {
		return nil, errors.New("backtest: no instruments")
	}
	period := time.Duration(r.cfg.RebalanceDays) * 24 * time.Hour
	if period <= 0 || r.cfg.End.Sub(r.cfg.Start) < period {
		return nil, ErrSpanTooShort
	}

	results := &Results{
		RunID:     uuid.New().String(),
		Config:    r.cfg,
		StartedAt: r.clock(),
	}
	log.Info().Str("run_id", results.RunID).
		Time("start", r.cfg.Start).Time("end", r.cfg.End).
		Int("rebalance_days", r.cfg.RebalanceDays).
		Int("instruments", len(r.cfg.Codes)).
		Msg("backtest starting")

	// The last rebalance date still needs a full forward period.
	last := r.cfg.End.Add(-period)
	expected := int(last.Sub(r.cfg.Start)/period) + 1
	progress := applog.NewProgress("backtest", expected)

	for asOf := r.cfg.Start; !asOf.After(last); asOf = asOf.Add(period) {
		results.TotalWindows++
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		window := r.runWindow(ctx, asOf, asOf.Add(period))
		progress.Step(asOf.Format("2006-01-02"))
		if window.ScoredCount == 0 {
			results.SkippedWindows++
			log.Warn().Time("as_of", asOf).Msg("window skipped, nothing scored")
			continue
		}
		results.ProcessedWindows++
		results.Windows = append(results.Windows, window)
	}
	progress.Done()

	results.Metrics = summarize(results.Windows)
	results.FinishedAt = r.clock()
	log.Info().Str("run_id", results.RunID).
		Int("processed", results.ProcessedWindows).
		Int("skipped", results.SkippedWindows).
		Msg("backtest finished")
	return results, nil
}

func (r *Runner) runWindow(ctx context.Context, asOf, horizon time.Time) *Window {
	window := &Window{AsOf: asOf}
	for _, code := range r.cfg.Codes {
		snap := &Snapshot{Code: code, AsOf: asOf}
		report, err := r.scorer.AnalyzeAsOf(ctx, code, asOf)
		if err != nil {
			snap.Err = err.Error()
			window.FailedCount++
			window.Snapshots = append(window.Snapshots, snap)
			continue
		}
		snap.Composite = report.Composite
		snap.Tier = report.Tier
		snap.ForwardReturn = r.forwardReturn(ctx, code, asOf, horizon)
		window.ScoredCount++
		window.Snapshots = append(window.Snapshots, snap)
	}
	return window
}

// forwardReturn is the simple close-to-close return from the last bar
// at or before asOf to the last bar at or before horizon.
func (r *Runner) forwardReturn(ctx context.Context, code string, asOf, horizon time.Time) *float64 {
	calendarDays := int(horizon.Sub(asOf).Hours()/24) + 10
	series, err := r.prices.PriceSeries(ctx, code, calendarDays, horizon)
	if err != nil || len(series) == 0 {
		return nil
	}
	base := closeAtOrBefore(series, asOf)
	final := closeAtOrBefore(series, horizon)
	if base <= 0 || final <= 0 {
		return nil
	}
	ret := final/base - 1
	return &ret
}

func closeAtOrBefore(series []market.PricePoint, t time.Time) float64 {
	for i := len(series) - 1; i >= 0; i-- {
		if !series[i].Date.After(t) {
			return series[i].Close
		}
	}
	return 0
}
