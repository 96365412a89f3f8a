package backtest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskrank/riskrank/internal/market"
	"github.com/riskrank/riskrank/internal/providers"
	"github.com/riskrank/riskrank/internal/score"
)

// fixedScorer returns a canned composite per code.
type fixedScorer struct {
	scores map[string]float64
	fail   map[string]bool
}

func (s *fixedScorer) AnalyzeAsOf(_ context.Context, code string, asOf time.Time) (*score.Report, error) {
	if s.fail[code] {
		return nil, errors.New("upstream unavailable")
	}
	c := s.scores[code]
	return &score.Report{
		Code:      code,
		Composite: c,
		Tier:      score.TierFor(c),
		AsOf:      asOf,
	}, nil
}

// driftMarket serves a daily series with a constant per-day drift per
// code, so forward returns are deterministic.
type driftMarket struct {
	start time.Time
	drift map[string]float64
}

func (m *driftMarket) PriceSeries(_ context.Context, code string, days int, asOf time.Time) ([]market.PricePoint, error) {
	drift := m.drift[code]
	var series []market.PricePoint
	for d := 0; d < 400; d++ {
		date := m.start.AddDate(0, 0, d)
		if date.After(asOf) {
			break
		}
		series = append(series, market.PricePoint{
			Date:  date,
			Close: 100 * (1 + drift*float64(d)),
		})
	}
	if len(series) > days {
		series = series[len(series)-days:]
	}
	return series, nil
}

func (m *driftMarket) IndexSeries(ctx context.Context, code string, days int, asOf time.Time) ([]market.PricePoint, error) {
	return m.PriceSeries(ctx, code, days, asOf)
}

func (m *driftMarket) Instrument(context.Context, string) (market.Instrument, error) {
	return market.Instrument{}, market.ErrInstrumentNotFound
}

func (m *driftMarket) TurnoverPct(context.Context, string) (float64, error) { return 0, nil }

func (m *driftMarket) Valuation(context.Context, string) (providers.ValuationSnapshot, error) {
	return providers.ValuationSnapshot{}, nil
}

func (m *driftMarket) ValuationHistory(context.Context, string, int) ([]providers.ValuationSnapshot, error) {
	return nil, nil
}

func (m *driftMarket) Dividends(context.Context, string, int) ([]providers.DividendRecord, error) {
	return nil, nil
}

func testConfig(t *testing.T) (Config, *fixedScorer, *driftMarket) {
	t.Helper()
	start := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	cfg := Config{
		Codes:         []string{"600000", "600001", "600002", "600003"},
		Start:         start,
		End:           start.AddDate(0, 0, 90),
		RebalanceDays: 30,
		OutputDir:     t.TempDir(),
	}
	scorer := &fixedScorer{
		scores: map[string]float64{
			"600000": 85, "600001": 60, "600002": 30, "600003": 10,
		},
		fail: map[string]bool{},
	}
	// safer names drift up, riskier ones down
	prices := &driftMarket{
		start: start.AddDate(0, 0, -30),
		drift: map[string]float64{
			"600000": 0.004, "600001": 0.002, "600002": -0.002, "600003": -0.004,
		},
	}
	return cfg, scorer, prices
}

func TestRunProducesWindows(t *testing.T) {
	cfg, scorer, prices := testConfig(t)
	r := NewRunner(cfg, scorer, prices)
	now := time.Date(2025, 8, 25, 12, 0, 0, 0, time.UTC)
	r.SetClock(func() time.Time { return now })

	results, err := r.Run(context.Background())
	require.NoError(t, err)

	// 90-day span, 30-day period: windows at day 0, 30, 60
	assert.Equal(t, 3, results.TotalWindows)
	assert.Equal(t, 3, results.ProcessedWindows)
	assert.Zero(t, results.SkippedWindows)
	assert.NotEmpty(t, results.RunID)
	assert.Equal(t, now, results.StartedAt)

	for _, window := range results.Windows {
		assert.Equal(t, 4, window.ScoredCount)
		for _, snap := range window.Snapshots {
			require.NotNil(t, snap.ForwardReturn, snap.Code)
		}
	}
}

func TestRunMetricsSeparateTiers(t *testing.T) {
	cfg, scorer, prices := testConfig(t)
	r := NewRunner(cfg, scorer, prices)

	results, err := r.Run(context.Background())
	require.NoError(t, err)
	m := results.Metrics

	require.NotNil(t, m.RankCorrelation)
	// higher composite was built to mean better forward returns
	assert.Greater(t, *m.RankCorrelation, 0.9)

	require.NotNil(t, m.SeparationRate)
	assert.Equal(t, 1.0, *m.SeparationRate)

	// the overall return is the plain mean of every forward return
	var sum float64
	var n int
	for _, window := range results.Windows {
		for _, snap := range window.Snapshots {
			if snap.Err == "" && snap.ForwardReturn != nil {
				sum += *snap.ForwardReturn
				n++
			}
		}
	}
	require.NotZero(t, n)
	require.NotNil(t, m.OverallForwardReturn)
	assert.InDelta(t, sum/float64(n), *m.OverallForwardReturn, 1e-12)

	low := m.TierStats[score.TierLow]
	require.NotNil(t, low)
	critical := m.TierStats[score.TierCritical]
	require.NotNil(t, critical)
	assert.Greater(t, low.AvgForwardReturn, critical.AvgForwardReturn)
	assert.Equal(t, 1.0, low.WinRate)
	assert.Zero(t, critical.WinRate)
}

func TestRunRecordsFailures(t *testing.T) {
	cfg, scorer, prices := testConfig(t)
	scorer.fail["600003"] = true
	r := NewRunner(cfg, scorer, prices)

	results, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, results.Metrics.FailedSnapshots)
	assert.Equal(t, 9, results.Metrics.ScoredSnapshots)
	assert.NotEmpty(t, results.Metrics.Errors)
	assert.Contains(t, results.Metrics.Errors[0], "600003")
}

func TestRunRejectsShortSpan(t *testing.T) {
	cfg, scorer, prices := testConfig(t)
	cfg.End = cfg.Start.AddDate(0, 0, 10)
	_, err := NewRunner(cfg, scorer, prices).Run(context.Background())
	assert.ErrorIs(t, err, ErrSpanTooShort)
}

func TestSpearman(t *testing.T) {
	rho, ok := spearman([]float64{1, 2, 3, 4}, []float64{10, 20, 30, 40})
	require.True(t, ok)
	assert.InDelta(t, 1.0, rho, 1e-9)

	rho, ok = spearman([]float64{1, 2, 3, 4}, []float64{40, 30, 20, 10})
	require.True(t, ok)
	assert.InDelta(t, -1.0, rho, 1e-9)

	// ties share their average rank
	rho, ok = spearman([]float64{1, 2, 2, 3}, []float64{1, 2, 2, 3})
	require.True(t, ok)
	assert.InDelta(t, 1.0, rho, 1e-9)

	_, ok = spearman([]float64{1, 2}, []float64{1, 2})
	assert.False(t, ok)
	_, ok = spearman([]float64{5, 5, 5}, []float64{1, 2, 3})
	assert.False(t, ok)
}

func TestWriterArtifacts(t *testing.T) {
	cfg, scorer, prices := testConfig(t)
	r := NewRunner(cfg, scorer, prices)
	results, err := r.Run(context.Background())
	require.NoError(t, err)

	w, err := NewWriter(cfg.OutputDir, results.RunID)
	require.NoError(t, err)
	require.NoError(t, w.WriteAll(results))

	for _, name := range []string{"results.jsonl", "snapshots.csv", "summary.json", "report.md"} {
		info, err := os.Stat(filepath.Join(w.Dir(), name))
		require.NoError(t, err, name)
		assert.Positive(t, info.Size(), name)
	}

	report, err := os.ReadFile(filepath.Join(w.Dir(), "report.md"))
	require.NoError(t, err)
	assert.Contains(t, string(report), "Rank correlation")
	assert.Contains(t, string(report), "Overall forward return")
	assert.Contains(t, string(report), results.RunID)

	summary, err := os.ReadFile(filepath.Join(w.Dir(), "summary.json"))
	require.NoError(t, err)
	assert.Contains(t, string(summary), "overall_forward_return")
}
