package providers

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

// Long-run defaults used when a macro series cannot be fetched. The
// valuation adjustment degrades toward neutral rather than failing.
const (
	defaultTreasuryYield = 2.8
	defaultM2Growth      = 9.0
	defaultBenchmarkPE   = 15.0
)

// Snapshot implements Macro. Each series is fetched independently;
// failures leave that series at its default.
func (c *Client) Snapshot(ctx context.Context) (MacroSnapshot, error) {
	key := "macro_snapshot"
	return cached(ctx, c, key, "macro", func(ctx context.Context) (MacroSnapshot, error) {
		snap := MacroSnapshot{
			TreasuryYield10Y: defaultTreasuryYield,
			M2Growth:         defaultM2Growth,
			BenchmarkPE:      defaultBenchmarkPE,
		}
		if v, err := c.latestValue(ctx, "treasury_yield",
			"RPT_BOND_TREASURY_YIELD", "YIELD_10Y", "TRADE_DATE"); err == nil {
			snap.TreasuryYield10Y = v
		} else {
			log.Warn().Err(err).Msg("treasury yield unavailable, using default")
		}
		if v, err := c.latestValue(ctx, "m2_growth",
			"RPT_ECONOMY_CURRENCY_SUPPLY", "BASIC_CURRENCY_SAME", "REPORT_DATE"); err == nil {
			snap.M2Growth = v
		} else {
			log.Warn().Err(err).Msg("M2 growth unavailable, using default")
		}
		if v, err := c.latestValue(ctx, "benchmark_pe",
			"RPT_INDEX_VALUATION", "PE_TTM", "TRADE_DATE"); err == nil {
			snap.BenchmarkPE = v
		} else {
			log.Warn().Err(err).Msg("benchmark index PE unavailable, using default")
		}
		return snap, nil
	})
}

// latestValue reads the newest row of one datacenter series.
func (c *Client) latestValue(ctx context.Context, op, report, column, dateColumn string) (float64, error) {
	url := fmt.Sprintf("%s?reportName=%s&columns=%s,%s&sortColumns=%s&sortTypes=-1&pageSize=1&pageNumber=1",
		dataCenter, report, dateColumn, column, dateColumn)
	body, err := c.getJSON(ctx, op, url)
	if err != nil {
		return 0, err
	}
	rows := gjson.GetBytes(body, "result.data").Array()
	if len(rows) == 0 {
		return 0, fmt.Errorf("%s: empty series", op)
	}
	v := floatField(rows[0], column)
	if v == nil {
		return 0, fmt.Errorf("%s: non-numeric %s", op, column)
	}
	return *v, nil
}
