// Package providers defines the upstream data interfaces and their
// HTTP adapters. Every adapter reads through the file cache and the
// retry wrapper; a malformed numeric field becomes a nil value, never
// an error.
package providers

import (
	"context"
	"time"

	"github.com/riskrank/riskrank/internal/market"
)

// ProfitSnapshot is one reporting period of profitability figures.
// Nil means the field was absent or unparseable upstream.
type ProfitSnapshot struct {
	ROE         *float64 `json:"roe"`          // percent
	NetMargin   *float64 `json:"net_margin"`   // percent
	GrossMargin *float64 `json:"gross_margin"` // percent
	EPS         *float64 `json:"eps"`          // CNY per share
	NetProfit   *float64 `json:"net_profit"`   // CNY
	TotalShare  *float64 `json:"total_share"`  // shares outstanding
}

// CashFlowSnapshot is one reporting period of cash-flow quality ratios.
type CashFlowSnapshot struct {
	CFOToNetProfit *float64 `json:"cfo_to_net_profit"`
	CFOToRevenue   *float64 `json:"cfo_to_revenue"`
}

// BalanceSnapshot is one reporting period of solvency ratios.
type BalanceSnapshot struct {
	CurrentRatio  *float64 `json:"current_ratio"`
	QuickRatio    *float64 `json:"quick_ratio"`
	InterestCover *float64 `json:"interest_cover"` // EBIT / interest expense
}

// ValuationSnapshot holds the three valuation multiples. Nil means the
// multiple is meaningless for the instrument (negative earnings etc).
type ValuationSnapshot struct {
	Date time.Time `json:"date,omitempty"`
	PE   *float64  `json:"pe"`
	PB   *float64  `json:"pb"`
	PS   *float64  `json:"ps"`
}

// DividendRecord is one fiscal year of cash dividends, already reduced
// to per-share terms.
type DividendRecord struct {
	Year         int     `json:"year"`
	CashPerShare float64 `json:"cash_per_share"` // CNY
}

// ProfitTrend carries the multi-year figures the risk-flag checks read.
type ProfitTrend struct {
	// NetProfits holds the two most recent full-year net profits,
	// newest first.
	NetProfits []float64 `json:"net_profits"`
	// OperatingCashFlows holds the three most recent full-year
	// operating cash flows, newest first.
	OperatingCashFlows []float64 `json:"operating_cash_flows"`
}

// MacroSnapshot is the market-environment context for valuation
// adjustment. Absent series fall back to their long-run defaults.
type MacroSnapshot struct {
	TreasuryYield10Y float64 `json:"treasury_yield_10y"` // percent
	M2Growth         float64 `json:"m2_growth"`          // percent YoY
	BenchmarkPE      float64 `json:"benchmark_pe"`       // CSI 300 PE(TTM)
}

// MarketData serves daily market series and instrument facts.
type MarketData interface {
	// PriceSeries returns up to days daily bars ending at or before
	// asOf, date-ascending, with returns filled.
	PriceSeries(ctx context.Context, code string, days int, asOf time.Time) ([]market.PricePoint, error)
	// IndexSeries is PriceSeries for an exchange-prefixed index code.
	IndexSeries(ctx context.Context, indexCode string, days int, asOf time.Time) ([]market.PricePoint, error)
	// Instrument resolves name, raw industry label, latest price,
	// circulating cap, and special-treatment status.
	Instrument(ctx context.Context, code string) (market.Instrument, error)
	// TurnoverPct is the latest daily turnover rate, in percent.
	TurnoverPct(ctx context.Context, code string) (float64, error)
	// Valuation is the current PE/PB/PS snapshot.
	Valuation(ctx context.Context, code string) (ValuationSnapshot, error)
	// ValuationHistory returns up to days of daily valuation
	// snapshots, date-ascending.
	ValuationHistory(ctx context.Context, code string, days int) ([]ValuationSnapshot, error)
	// Dividends returns per-share cash dividends for the last years
	// fiscal years.
	Dividends(ctx context.Context, code string, years int) ([]DividendRecord, error)
}

// Fundamentals serves reporting-period financial statements.
type Fundamentals interface {
	Profit(ctx context.Context, code string, period market.ReportingPeriod) (ProfitSnapshot, error)
	CashFlow(ctx context.Context, code string, period market.ReportingPeriod) (CashFlowSnapshot, error)
	Balance(ctx context.Context, code string, period market.ReportingPeriod) (BalanceSnapshot, error)
	ProfitTrend(ctx context.Context, code string) (ProfitTrend, error)
}

// Classifier resolves industry membership.
type Classifier interface {
	// IndustryLabel is the raw classifier label for a code.
	IndustryLabel(ctx context.Context, code string) (string, error)
	// Peers lists the codes classified under a level-1 category.
	Peers(ctx context.Context, industry string) ([]string, error)
}

// Macro serves the market-environment series.
type Macro interface {
	Snapshot(ctx context.Context) (MacroSnapshot, error)
}

// Bundle groups the four provider facets the pipeline consumes.
type Bundle struct {
	Market       MarketData
	Fundamentals Fundamentals
	Classifier   Classifier
	Macro        Macro
}
