package providers

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/riskrank/riskrank/internal/market"
)

func periodEnd(p market.ReportingPeriod) string {
	switch p.Quarter {
	case 1:
		return fmt.Sprintf("%d-03-31", p.Year)
	case 2:
		return fmt.Sprintf("%d-06-30", p.Year)
	case 3:
		return fmt.Sprintf("%d-09-30", p.Year)
	default:
		return fmt.Sprintf("%d-12-31", p.Year)
	}
}

// mainReport fetches the consolidated main-indicator row for one
// reporting period.
func (c *Client) mainReport(ctx context.Context, code string, period market.ReportingPeriod) (gjson.Result, error) {
	key := fmt.Sprintf("fin_main_%s_%s", code, period)
	body, err := cached(ctx, c, key, "financials", func(ctx context.Context) ([]byte, error) {
		url := fmt.Sprintf("%s?reportName=RPT_DMSK_FN_MAIN"+
			"&columns=SECURITY_CODE,REPORT_DATE,WEIGHTAVG_ROE,NETPROFIT_MARGIN,GROSS_PROFIT_MARGIN,EPSJB,"+
			"PARENT_NETPROFIT,TOTAL_SHARE,NETCASH_OPERATE,TOTAL_OPERATE_INCOME,CURRENT_RATIO,QUICK_RATIO,EBIT_INTEREST"+
			"&filter=(SECURITY_CODE=%%22%s%%22)(REPORT_DATE=%%27%s%%27)&pageSize=1&pageNumber=1",
			dataCenter, code, periodEnd(period))
		return c.getJSON(ctx, "financials", url)
	})
	if err != nil {
		return gjson.Result{}, err
	}
	rows := gjson.GetBytes(body, "result.data").Array()
	if len(rows) == 0 {
		// absent statements degrade to an all-nil snapshot
		return gjson.Result{}, nil
	}
	return rows[0], nil
}

// Profit implements Fundamentals.
func (c *Client) Profit(ctx context.Context, code string, period market.ReportingPeriod) (ProfitSnapshot, error) {
	row, err := c.mainReport(ctx, code, period)
	if err != nil {
		return ProfitSnapshot{}, err
	}
	return ProfitSnapshot{
		ROE:         floatField(row, "WEIGHTAVG_ROE"),
		NetMargin:   floatField(row, "NETPROFIT_MARGIN"),
		GrossMargin: floatField(row, "GROSS_PROFIT_MARGIN"),
		EPS:         floatField(row, "EPSJB"),
		NetProfit:   floatField(row, "PARENT_NETPROFIT"),
		TotalShare:  floatField(row, "TOTAL_SHARE"),
	}, nil
}

// CashFlow implements Fundamentals. The two quality ratios are derived
// locally from the statement figures.
func (c *Client) CashFlow(ctx context.Context, code string, period market.ReportingPeriod) (CashFlowSnapshot, error) {
	row, err := c.mainReport(ctx, code, period)
	if err != nil {
		return CashFlowSnapshot{}, err
	}
	cfo := floatField(row, "NETCASH_OPERATE")
	profit := floatField(row, "PARENT_NETPROFIT")
	revenue := floatField(row, "TOTAL_OPERATE_INCOME")

	var snap CashFlowSnapshot
	if cfo != nil && profit != nil && *profit != 0 {
		v := *cfo / *profit
		snap.CFOToNetProfit = &v
	}
	if cfo != nil && revenue != nil && *revenue != 0 {
		v := *cfo / *revenue
		snap.CFOToRevenue = &v
	}
	return snap, nil
}

// Balance implements Fundamentals.
func (c *Client) Balance(ctx context.Context, code string, period market.ReportingPeriod) (BalanceSnapshot, error) {
	row, err := c.mainReport(ctx, code, period)
	if err != nil {
		return BalanceSnapshot{}, err
	}
	return BalanceSnapshot{
		CurrentRatio:  floatField(row, "CURRENT_RATIO"),
		QuickRatio:    floatField(row, "QUICK_RATIO"),
		InterestCover: floatField(row, "EBIT_INTEREST"),
	}, nil
}

// ProfitTrend implements Fundamentals: the two most recent full-year
// net profits and three most recent full-year operating cash flows.
func (c *Client) ProfitTrend(ctx context.Context, code string) (ProfitTrend, error) {
	key := "fin_trend_" + code
	return cached(ctx, c, key, "net_profit_2y", func(ctx context.Context) (ProfitTrend, error) {
		url := fmt.Sprintf("%s?reportName=RPT_DMSK_FN_MAIN"+
			"&columns=REPORT_DATE,PARENT_NETPROFIT,NETCASH_OPERATE"+
			"&filter=(SECURITY_CODE=%%22%s%%22)(REPORT_TYPE=%%22年报%%22)"+
			"&sortColumns=REPORT_DATE&sortTypes=-1&pageSize=3&pageNumber=1",
			dataCenter, code)
		body, err := c.getJSON(ctx, "profit_trend", url)
		if err != nil {
			return ProfitTrend{}, err
		}
		var trend ProfitTrend
		for i, row := range gjson.GetBytes(body, "result.data").Array() {
			if i < 2 {
				if v := floatField(row, "PARENT_NETPROFIT"); v != nil {
					trend.NetProfits = append(trend.NetProfits, *v)
				}
			}
			if v := floatField(row, "NETCASH_OPERATE"); v != nil {
				trend.OperatingCashFlows = append(trend.OperatingCashFlows, *v)
			}
		}
		return trend, nil
	})
}
