package providers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/riskrank/riskrank/internal/market"
)

// secID renders the Eastmoney security id: market 1 for Shanghai,
// 0 for Shenzhen.
func secID(code string) string {
	bare := code
	if i := strings.IndexByte(code, '.'); i >= 0 {
		bare = code[i+1:]
	}
	if strings.HasPrefix(code, "sh.") || (len(bare) > 0 && bare[0] == '6') {
		return "1." + bare
	}
	if strings.HasPrefix(code, "sz.") {
		return "0." + bare
	}
	return "0." + bare
}

func parseKlines(body []byte) []market.PricePoint {
	rows := gjson.GetBytes(body, "data.klines").Array()
	out := make([]market.PricePoint, 0, len(rows))
	for _, row := range rows {
		parts := strings.Split(row.String(), ",")
		if len(parts) < 7 {
			continue
		}
		date, err := time.Parse("2006-01-02", parts[0])
		if err != nil {
			continue
		}
		open, err1 := strconv.ParseFloat(parts[1], 64)
		closeV, err2 := strconv.ParseFloat(parts[2], 64)
		high, err3 := strconv.ParseFloat(parts[3], 64)
		low, err4 := strconv.ParseFloat(parts[4], 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			continue
		}
		volume, _ := strconv.ParseFloat(parts[5], 64)
		amount, _ := strconv.ParseFloat(parts[6], 64)
		out = append(out, market.PricePoint{
			Date: date, Open: open, High: high, Low: low, Close: closeV,
			Volume: volume, Amount: amount,
		})
	}
	return out
}

// klineQuery anchors the fetch at the as-of date so a historical
// request returns the window ending there, not the latest bars.
func klineQuery(secid string, days int, end time.Time) string {
	return fmt.Sprintf("%s?secid=%s&fields1=f1,f2,f3&fields2=f51,f52,f53,f54,f55,f56,f57&klt=101&fqt=1&end=%s&lmt=%d",
		klineURL, secid, end.Format("20060102"), days)
}

func (c *Client) fetchSeries(ctx context.Context, op, code string, days int, end time.Time) ([]market.PricePoint, error) {
	key := fmt.Sprintf("%s_%s_%d_%s", op, code, days, end.Format("20060102"))
	return cached(ctx, c, key, "prices", func(ctx context.Context) ([]market.PricePoint, error) {
		body, err := c.getJSON(ctx, op, klineQuery(secID(code), days, end))
		if err != nil {
			return nil, err
		}
		series := parseKlines(body)
		if len(series) == 0 {
			return nil, &ProviderError{Provider: providerName, Op: op,
				Err: fmt.Errorf("no bars for %s: %w", code, market.ErrInstrumentNotFound)}
		}
		return series, nil
	})
}

// PriceSeries implements MarketData. Bars after asOf are dropped even
// when the upstream ignores the end anchor; an empty window is an
// error, never a silently short series.
func (c *Client) PriceSeries(ctx context.Context, code string, days int, asOf time.Time) ([]market.PricePoint, error) {
	series, err := c.fetchSeries(ctx, "prices", code, days, asOf)
	if err != nil {
		return nil, err
	}
	series = market.TruncateAfter(series, asOf)
	if len(series) == 0 {
		return nil, &ProviderError{Provider: providerName, Op: "prices",
			Err: fmt.Errorf("no bars at or before %s for %s", asOf.Format("2006-01-02"), code)}
	}
	return market.FillReturns(series), nil
}

// IndexSeries implements MarketData.
func (c *Client) IndexSeries(ctx context.Context, indexCode string, days int, asOf time.Time) ([]market.PricePoint, error) {
	series, err := c.fetchSeries(ctx, "index", indexCode, days, asOf)
	if err != nil {
		return nil, err
	}
	series = market.TruncateAfter(series, asOf)
	if len(series) == 0 {
		return nil, &ProviderError{Provider: providerName, Op: "index",
			Err: fmt.Errorf("no bars at or before %s for %s", asOf.Format("2006-01-02"), indexCode)}
	}
	return market.FillReturns(series), nil
}

// quote fetches the realtime snapshot fields once per cache window.
type quoteSnapshot struct {
	Name           string  `json:"name"`
	Industry       string  `json:"industry"`
	Price          float64 `json:"price"`
	CirculatingCap float64 `json:"circulating_cap"`
	TurnoverPct    float64 `json:"turnover_pct"`
}

func (c *Client) quote(ctx context.Context, code string) (quoteSnapshot, error) {
	key := "quote_" + code
	return cached(ctx, c, key, "basic_info", func(ctx context.Context) (quoteSnapshot, error) {
		// f43 price, f58 name, f117 circulating cap, f127 industry, f168 turnover
		url := fmt.Sprintf("%s?secid=%s&fields=f43,f58,f117,f127,f168", quoteURL, secID(code))
		body, err := c.getJSON(ctx, "quote", url)
		if err != nil {
			return quoteSnapshot{}, err
		}
		data := gjson.GetBytes(body, "data")
		if !data.Exists() || data.Type == gjson.Null {
			return quoteSnapshot{}, &ProviderError{Provider: providerName, Op: "quote",
				Err: fmt.Errorf("no quote for %s: %w", code, market.ErrInstrumentNotFound)}
		}
		// price and turnover arrive scaled by 100
		return quoteSnapshot{
			Name:           data.Get("f58").String(),
			Industry:       data.Get("f127").String(),
			Price:          data.Get("f43").Float() / 100,
			CirculatingCap: data.Get("f117").Float() / 1e8,
			TurnoverPct:    data.Get("f168").Float() / 100,
		}, nil
	})
}

// Instrument implements MarketData.
func (c *Client) Instrument(ctx context.Context, code string) (market.Instrument, error) {
	q, err := c.quote(ctx, code)
	if err != nil {
		return market.Instrument{}, err
	}
	return market.Instrument{
		Code:           code,
		Name:           q.Name,
		Industry:       q.Industry,
		Price:          q.Price,
		CirculatingCap: q.CirculatingCap,
		SpecialStatus:  strings.Contains(q.Name, "ST"),
	}, nil
}

// TurnoverPct implements MarketData.
func (c *Client) TurnoverPct(ctx context.Context, code string) (float64, error) {
	q, err := c.quote(ctx, code)
	if err != nil {
		return 0, err
	}
	return q.TurnoverPct, nil
}

func parseValuationRows(body []byte) []ValuationSnapshot {
	rows := gjson.GetBytes(body, "result.data").Array()
	out := make([]ValuationSnapshot, 0, len(rows))
	for _, row := range rows {
		snap := ValuationSnapshot{
			PE: floatField(row, "PE_TTM"),
			PB: floatField(row, "PB_MRQ"),
			PS: floatField(row, "PS_TTM"),
		}
		if d := row.Get("TRADE_DATE").String(); len(d) >= 10 {
			if t, err := time.Parse("2006-01-02", d[:10]); err == nil {
				snap.Date = t
			}
		}
		out = append(out, snap)
	}
	return out
}

// floatField reads a numeric column, nil when absent or non-numeric.
func floatField(row gjson.Result, name string) *float64 {
	v := row.Get(name)
	if !v.Exists() || v.Type == gjson.Null {
		return nil
	}
	if v.Type == gjson.String {
		f, err := strconv.ParseFloat(strings.TrimSpace(v.String()), 64)
		if err != nil {
			return nil
		}
		return &f
	}
	f := v.Float()
	return &f
}

// ValuationHistory implements MarketData.
func (c *Client) ValuationHistory(ctx context.Context, code string, days int) ([]ValuationSnapshot, error) {
	key := fmt.Sprintf("valuation_hist_%s_%d", code, days)
	return cached(ctx, c, key, "valuation_range", func(ctx context.Context) ([]ValuationSnapshot, error) {
		url := fmt.Sprintf("%s?reportName=RPT_VALUATIONSTATUS&columns=TRADE_DATE,PE_TTM,PB_MRQ,PS_TTM"+
			"&filter=(SECURITY_CODE=%%22%s%%22)&sortColumns=TRADE_DATE&sortTypes=1&pageSize=%d&pageNumber=1",
			dataCenter, code, days)
		body, err := c.getJSON(ctx, "valuation_history", url)
		if err != nil {
			return nil, err
		}
		return parseValuationRows(body), nil
	})
}

// Valuation implements MarketData.
func (c *Client) Valuation(ctx context.Context, code string) (ValuationSnapshot, error) {
	key := "valuation_" + code
	return cached(ctx, c, key, "valuation", func(ctx context.Context) (ValuationSnapshot, error) {
		url := fmt.Sprintf("%s?reportName=RPT_VALUATIONSTATUS&columns=TRADE_DATE,PE_TTM,PB_MRQ,PS_TTM"+
			"&filter=(SECURITY_CODE=%%22%s%%22)&sortColumns=TRADE_DATE&sortTypes=-1&pageSize=1&pageNumber=1",
			dataCenter, code)
		body, err := c.getJSON(ctx, "valuation", url)
		if err != nil {
			return ValuationSnapshot{}, err
		}
		rows := parseValuationRows(body)
		if len(rows) == 0 {
			return ValuationSnapshot{}, nil
		}
		return rows[0], nil
	})
}

// Dividends implements MarketData. Upstream reports cash dividends per
// ten shares; the per-share figure is stored.
func (c *Client) Dividends(ctx context.Context, code string, years int) ([]DividendRecord, error) {
	key := fmt.Sprintf("dividend_%s_%d", code, years)
	return cached(ctx, c, key, "dividend", func(ctx context.Context) ([]DividendRecord, error) {
		url := fmt.Sprintf("%s?reportName=RPT_SHAREBONUS_DET&columns=REPORT_DATE,PRETAX_BONUS_RMB"+
			"&filter=(SECURITY_CODE=%%22%s%%22)&sortColumns=REPORT_DATE&sortTypes=-1&pageSize=%d&pageNumber=1",
			dataCenter, code, years*4)
		body, err := c.getJSON(ctx, "dividends", url)
		if err != nil {
			return nil, err
		}
		perYear := map[int]float64{}
		for _, row := range gjson.GetBytes(body, "result.data").Array() {
			d := row.Get("REPORT_DATE").String()
			if len(d) < 4 {
				continue
			}
			year, err := strconv.Atoi(d[:4])
			if err != nil {
				continue
			}
			if v := floatField(row, "PRETAX_BONUS_RMB"); v != nil {
				perYear[year] += *v / 10
			}
		}
		out := make([]DividendRecord, 0, len(perYear))
		for year, v := range perYear {
			out = append(out, DividendRecord{Year: year, CashPerShare: v})
		}
		return out, nil
	})
}
