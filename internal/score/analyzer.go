package score

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/riskrank/riskrank/internal/config"
	"github.com/riskrank/riskrank/internal/indicators"
	"github.com/riskrank/riskrank/internal/industry"
	"github.com/riskrank/riskrank/internal/market"
	"github.com/riskrank/riskrank/internal/metrics"
	"github.com/riskrank/riskrank/internal/providers"
)

// Series depths per engine, in trading days.
const (
	trendDays    = 300
	momentumDays = 90
	volDays      = 252
	marketDays   = 505
	histValDays  = 1095

	// peerVolSample bounds how many peers feed the industry average
	// volatility.
	peerVolSample = 10
)

// Analyzer runs the full composite analysis of one instrument.
type Analyzer struct {
	cfg      config.Config
	prov     providers.Bundle
	industry *industry.Engine
}

// NewAnalyzer wires the analyzer.
func NewAnalyzer(cfg config.Config, prov providers.Bundle) *Analyzer {
	return &Analyzer{
		cfg:      cfg,
		prov:     prov,
		industry: industry.NewEngine(prov.Classifier, cfg.PeerFetchLimit),
	}
}

// Analyze scores an instrument as of now.
func (a *Analyzer) Analyze(ctx context.Context, rawCode string) (*Report, error) {
	return a.AnalyzeAsOf(ctx, rawCode, time.Now())
}

// AnalyzeAsOf scores an instrument with price data capped at asOf.
// Statement and roster data always reflect the pinned reporting
// period.
func (a *Analyzer) AnalyzeAsOf(ctx context.Context, rawCode string, asOf time.Time) (*Report, error) {
	timer := prometheus.NewTimer(metrics.AnalysisDuration)
	defer timer.ObserveDuration()

	code, err := market.NormalizeCode(rawCode)
	if err != nil {
		return nil, err
	}

	inst, err := a.prov.Market.Instrument(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("resolve instrument %s: %w", code, err)
	}
	industryCat, err := a.industry.Classify(ctx, code)
	if err != nil {
		log.Warn().Str("code", code).Err(err).Msg("classification unavailable, using catch-all")
		industryCat = config.DefaultIndustry
	}
	capGroup := config.CapGroupFor(inst.CirculatingCap)

	trendSeries, err := a.prov.Market.PriceSeries(ctx, code, trendDays, asOf)
	if err != nil {
		return nil, fmt.Errorf("price series %s: %w", code, err)
	}
	momentumSeries := tail(trendSeries, momentumDays)
	volSeries := tail(trendSeries, volDays)

	peers, err := a.industry.Peers(ctx, industryCat, code)
	if err != nil {
		log.Warn().Str("industry", industryCat).Err(err).Msg("no peer roster, peer comparisons neutral")
		peers = nil
	}

	trend := ScoreTrend(trendSeries)
	momentum := ScoreMomentum(momentumSeries, capGroup)
	volatility := a.scoreVolatility(ctx, code, volSeries, peers, asOf)
	turnover := a.scoreTurnover(ctx, code, capGroup, industryCat)
	valuation := a.scoreValuation(ctx, code, inst, industryCat, peers)
	histVal := a.scoreHistorical(ctx, code)
	financial := a.scoreFinancial(ctx, code, inst, industryCat, peers)

	composite, tier := Aggregate(a.cfg.Weights,
		financial.Score, volatility.Score, valuation.Score, histVal.Score,
		trend.Score, turnover.Score, momentum.Score)

	report := &Report{
		Code:                code,
		Name:                inst.Name,
		Industry:            industryCat,
		Composite:           composite,
		Tier:                tier,
		FinancialHealth:     SubScore{Score: financial.Score, Status: financial.WarningLevel},
		Valuation:           SubScore{Score: valuation.Score, Status: valuation.Status},
		HistoricalValuation: SubScore{Score: histVal.Score, Status: histVal.Status},
		Volatility:          SubScore{Score: volatility.Score, Status: volatility.Level},
		Trend:               SubScore{Score: trend.Score, Status: trend.State},
		Turnover:            SubScore{Score: turnover.Score, Status: turnover.Status},
		Momentum:            SubScore{Score: momentum.Score, Status: momentum.Status},
		Warnings:            collectWarnings(inst, financial, trend),
		AsOf:                asOf,
		GeneratedAt:         time.Now(),
	}
	report.Summary = BuildSummary(a.cfg.Weights, report)

	metrics.AnalysesCompleted.WithLabelValues(string(tier)).Inc()
	log.Info().Str("code", code).Str("industry", industryCat).
		Float64("composite", composite).Str("tier", string(tier)).
		Msg("analysis complete")
	return report, nil
}

func tail(series []market.PricePoint, n int) []market.PricePoint {
	if len(series) <= n {
		return series
	}
	return series[len(series)-n:]
}

func (a *Analyzer) scoreVolatility(ctx context.Context, code string, volSeries []market.PricePoint, peers []string, asOf time.Time) VolatilityResult {
	indexSeries, err := a.prov.Market.IndexSeries(ctx, market.BenchmarkIndex, marketDays, asOf)
	if err != nil {
		log.Warn().Err(err).Msg("benchmark index series unavailable")
		indexSeries = nil
	}

	benchmarkVol := indicators.AnnualizedVolatility(market.DailyReturns(tail(indexSeries, volDays)))
	sample := peers
	if len(sample) > peerVolSample {
		sample = sample[:peerVolSample]
	}
	peerVols := a.industry.PeerValues(ctx, sample, func(ctx context.Context, peer string) (*float64, error) {
		s, err := a.prov.Market.PriceSeries(ctx, peer, volDays, asOf)
		if err != nil {
			return nil, err
		}
		v := indicators.AnnualizedVolatility(market.DailyReturns(s))
		if v == 0 {
			return nil, nil
		}
		return &v, nil
	})
	if len(peerVols) > 0 {
		benchmarkVol = indicators.Mean(peerVols)
	}

	return ScoreVolatility(volSeries, indexSeries, benchmarkVol)
}

func (a *Analyzer) scoreTurnover(ctx context.Context, code string, capGroup config.CapGroup, industryCat string) TurnoverResult {
	actual, err := a.prov.Market.TurnoverPct(ctx, code)
	if err != nil {
		log.Warn().Str("code", code).Err(err).Msg("turnover unavailable, scoring neutral")
		return TurnoverResult{Score: 50, CapGroup: capGroup.Name, Status: "数据缺失"}
	}
	return ScoreTurnover(actual, capGroup, industryCat)
}

func (a *Analyzer) scoreValuation(ctx context.Context, code string, inst market.Instrument, industryCat string, peers []string) ValuationResult {
	current, err := a.prov.Market.Valuation(ctx, code)
	if err != nil {
		log.Warn().Str("code", code).Err(err).Msg("valuation snapshot unavailable")
	}

	sample := peers
	if len(sample) > a.cfg.PeerSampleMax {
		sample = sample[:a.cfg.PeerSampleMax]
	}
	peerVals := a.collectPeerValuations(ctx, sample)

	macro, err := a.prov.Macro.Snapshot(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("macro snapshot unavailable, neutral environment")
		macro = providers.MacroSnapshot{TreasuryYield10Y: 2.8, M2Growth: 9.0, BenchmarkPE: 15.0}
	}

	return ScoreValuation(ValuationInputs{
		Current:          current,
		PeerValuations:   peerVals,
		Macro:            macro,
		Industry:         industryCat,
		IsLeader:         config.IsIndustryLeader(industryCat, code),
		DividendYieldPct: a.dividendYield(ctx, code, inst.Price),
	})
}

// collectPeerValuations gathers peer multiples with the same bounded
// fan-out the percentile engine uses.
func (a *Analyzer) collectPeerValuations(ctx context.Context, peers []string) []providers.ValuationSnapshot {
	var mu sync.Mutex
	var out []providers.ValuationSnapshot

	limit := a.cfg.PeerFetchLimit
	if limit < 1 {
		limit = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, peer := range peers {
		peer := peer
		g.Go(func() error {
			snap, err := a.prov.Market.Valuation(gctx, peer)
			if err != nil {
				log.Debug().Str("peer", peer).Err(err).Msg("peer valuation unavailable")
				return nil
			}
			mu.Lock()
			out = append(out, snap)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// dividendYield is the two-year average cash yield in percent, nil
// without dividend history or a usable price.
func (a *Analyzer) dividendYield(ctx context.Context, code string, price float64) *float64 {
	if price <= 0 {
		return nil
	}
	records, err := a.prov.Market.Dividends(ctx, code, 2)
	if err != nil || len(records) == 0 {
		return nil
	}
	var sum float64
	for _, r := range records {
		sum += r.CashPerShare
	}
	y := sum / 2 / price * 100
	return &y
}

func (a *Analyzer) scoreHistorical(ctx context.Context, code string) HistoricalValuationResult {
	current, err := a.prov.Market.Valuation(ctx, code)
	if err != nil {
		return HistoricalValuationResult{Score: 50, Status: "数据缺失"}
	}
	history, err := a.prov.Market.ValuationHistory(ctx, code, histValDays)
	if err != nil {
		log.Warn().Str("code", code).Err(err).Msg("valuation history unavailable")
		history = nil
	}
	return ScoreHistoricalValuation(current, history)
}

func (a *Analyzer) scoreFinancial(ctx context.Context, code string, inst market.Instrument, industryCat string, peers []string) FinancialResult {
	period := a.cfg.ReportingPeriod
	profit, err := a.prov.Fundamentals.Profit(ctx, code, period)
	if err != nil {
		log.Warn().Str("code", code).Err(err).Msg("profit statement unavailable")
	}
	cashflow, err := a.prov.Fundamentals.CashFlow(ctx, code, period)
	if err != nil {
		log.Warn().Str("code", code).Err(err).Msg("cash flow statement unavailable")
	}
	balance, err := a.prov.Fundamentals.Balance(ctx, code, period)
	if err != nil {
		log.Warn().Str("code", code).Err(err).Msg("balance statement unavailable")
	}
	trend, err := a.prov.Fundamentals.ProfitTrend(ctx, code)
	if err != nil {
		log.Warn().Str("code", code).Err(err).Msg("profit trend unavailable")
	}

	pcts := FinancialPercentiles{
		ROE:          a.peerPercentile(ctx, peers, profit.ROE, func(p providers.ProfitSnapshot, c providers.CashFlowSnapshot) *float64 { return p.ROE }, period),
		NetMargin:    a.peerPercentile(ctx, peers, profit.NetMargin, func(p providers.ProfitSnapshot, c providers.CashFlowSnapshot) *float64 { return p.NetMargin }, period),
		GrossMargin:  a.peerPercentile(ctx, peers, profit.GrossMargin, func(p providers.ProfitSnapshot, c providers.CashFlowSnapshot) *float64 { return p.GrossMargin }, period),
		EPS:          a.peerPercentile(ctx, peers, profit.EPS, func(p providers.ProfitSnapshot, c providers.CashFlowSnapshot) *float64 { return p.EPS }, period),
		OpCFPerShare: a.peerPercentile(ctx, peers, opCFPerShare(profit, cashflow), func(p providers.ProfitSnapshot, c providers.CashFlowSnapshot) *float64 { return opCFPerShare(p, c) }, period),
		CFOToRevenue: a.peerPercentile(ctx, peers, cashflow.CFOToRevenue, func(p providers.ProfitSnapshot, c providers.CashFlowSnapshot) *float64 { return c.CFOToRevenue }, period),
	}

	return ScoreFinancialHealth(FinancialInputs{
		Industry:    industryCat,
		RawLabel:    inst.Industry,
		Profit:      profit,
		CashFlow:    cashflow,
		Balance:     balance,
		Trend:       trend,
		IsST:        inst.SpecialStatus,
		Percentiles: pcts,
	})
}

// peerPercentile ranks the subject value against one statement metric
// across the peer set. All statement metrics rank higher-is-better.
func (a *Analyzer) peerPercentile(ctx context.Context, peers []string, value *float64,
	pick func(providers.ProfitSnapshot, providers.CashFlowSnapshot) *float64,
	period market.ReportingPeriod) float64 {

	if value == nil || len(peers) == 0 {
		return industry.NeutralPercentile
	}
	peerValues := a.industry.PeerValues(ctx, peers, func(ctx context.Context, peer string) (*float64, error) {
		profit, err := a.prov.Fundamentals.Profit(ctx, peer, period)
		if err != nil {
			return nil, err
		}
		cashflow, err := a.prov.Fundamentals.CashFlow(ctx, peer, period)
		if err != nil {
			return nil, err
		}
		return pick(profit, cashflow), nil
	})
	pct, _ := industry.PercentileAndAverage(value, peerValues, industry.HigherIsBetter)
	return pct
}

// opCFPerShare derives operating cash flow per share from the quality
// ratio and the profit statement.
func opCFPerShare(p providers.ProfitSnapshot, c providers.CashFlowSnapshot) *float64 {
	if c.CFOToNetProfit == nil || p.NetProfit == nil || p.TotalShare == nil || *p.TotalShare == 0 {
		return nil
	}
	v := *c.CFOToNetProfit * *p.NetProfit / *p.TotalShare
	return &v
}

func collectWarnings(inst market.Instrument, fin FinancialResult, trend TrendResult) []string {
	var warnings []string
	if inst.SpecialStatus {
		warnings = append(warnings, "ST标的")
	}
	if fin.ConsecutiveLoss {
		warnings = append(warnings, "连续两年亏损")
	}
	if fin.NegativeCF3Y {
		warnings = append(warnings, "连续三年经营现金流为负")
	}
	warnings = append(warnings, fin.WarningSignals...)
	if trend.Conversion >= 80 {
		warnings = append(warnings, "趋势"+trend.WarningLevel)
	}
	return warnings
}
